package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// PrintMigrated prints how many migrations ran
func PrintMigrated(w io.Writer, applied int) {
	if applied == 0 {
		fmt.Fprintln(w, "Schema is up to date.")
		return
	}
	fmt.Fprintf(w, "Applied %d migration(s).\n", applied)
}

// PrintMigrationStatus prints one line per known migration
func PrintMigrationStatus(w io.Writer, statuses []storage.MigrationStatus) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tMIGRATION\tSTATE\tAPPLIED AT")
	for _, st := range statuses {
		state, at := "pending", "-"
		if st.Applied {
			state = "applied"
			at = st.AppliedAt.Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%05d\t%s\t%s\t%s\n", st.Version, st.Path, state, at)
	}
	_ = tw.Flush()
}

// PrintBulkSummary prints the result of a bulk rule run
func PrintBulkSummary(w io.Writer, result *rules.BulkResult) {
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Summary: Processed=%d Updated=%d\n", result.Processed, result.Updated)

	if len(result.Diagnostics) > 0 {
		fmt.Fprintln(w, "\nSkipped rules:")
		for _, d := range result.Diagnostics {
			fmt.Fprintf(w, "  - %s (%s): %s\n", d.RuleName, d.RuleID, d.Message)
		}
	}
}

// PrintRuleStats prints totals followed by a table of rules in priority order
func PrintRuleStats(w io.Writer, stats rules.Stats, ruleSet []rules.Rule) {
	fmt.Fprintf(w, "Rules: %d (%d active)  Matches: %d\n\n", stats.TotalRules, stats.ActiveRules, stats.TotalMatches)
	if len(ruleSet) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIORITY\tNAME\tPATTERN\tACTIVE\tMATCHES\tLAST MATCHED")
	for _, r := range ruleSet {
		last := "never"
		if r.LastMatchedAt != nil {
			last = r.LastMatchedAt.Format(time.DateTime)
		}
		pattern := r.Pattern
		if r.IsRegex {
			pattern = "/" + pattern + "/"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%d\t%s\n", r.Priority, r.Name, pattern, r.Active, r.MatchCount, last)
	}
	_ = tw.Flush()
}
