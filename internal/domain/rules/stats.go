package rules

// Stats summarizes a rule set.
type Stats struct {
	TotalRules   int `json:"totalRules"`
	ActiveRules  int `json:"activeRules"`
	TotalMatches int `json:"totalMatches"`
}

// ComputeStats counts rules and their accumulated matches.
func ComputeStats(rules []Rule) Stats {
	var s Stats
	for _, r := range rules {
		s.TotalRules++
		if r.Active {
			s.ActiveRules++
		}
		s.TotalMatches += r.MatchCount
	}
	return s
}
