package splitter

import (
	"context"
)

// Member is a person belonging to a shared-expense group.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Group is a shared-expense group as seen by the split engine. Stored
// default values are already normalized into Values by the repository.
type Group struct {
	ID             string
	Name           string
	DefaultMethod  Kind
	DefaultValues  Values
	Members        []Member
	AutoIncludeAll bool
	DefaultPayer   string
}

// GroupRepository looks up groups for group-default resolution.
// A nil group with a nil error means the group does not exist.
type GroupRepository interface {
	GetGroup(ctx context.Context, id string) (*Group, error)
}

// Resolution records how a requested method became the method actually
// computed.
type Resolution struct {
	Requested Kind   `json:"requested"`
	Resolved  Kind   `json:"resolved"`
	GroupID   string `json:"group_id,omitempty"`
	FellBack  bool   `json:"fell_back"`
	Reason    string `json:"reason,omitempty"`
}

// resolve substitutes a GroupDefault with the group's stored default. It
// runs once: a stored default of group_default resolves to Equal.
func resolve(ctx context.Context, m Method, groups GroupRepository) (Method, Resolution) {
	gd, ok := m.(GroupDefault)
	if !ok {
		return m, Resolution{Requested: m.Kind(), Resolved: m.Kind()}
	}

	res := Resolution{Requested: KindGroupDefault, GroupID: gd.GroupID}
	fallback := func(reason string) (Method, Resolution) {
		res.Resolved = KindEqual
		res.FellBack = true
		res.Reason = reason
		return Equal{}, res
	}

	if groups == nil || gd.GroupID == "" {
		return fallback("no group selected")
	}
	group, err := groups.GetGroup(ctx, gd.GroupID)
	if err != nil {
		return fallback("group lookup failed: " + err.Error())
	}
	if group == nil {
		return fallback("group not found")
	}

	values := Values{}
	if len(group.DefaultValues) > 0 {
		values = group.DefaultValues.Clone()
	}

	var resolved Method
	switch group.DefaultMethod {
	case KindPercentage:
		resolved = Percentage{Values: values}
	case KindCustom:
		resolved = Custom{Values: values}
	case KindShares:
		resolved = Shares{Values: values}
	case KindEqual:
		resolved = Equal{}
	case "":
		return fallback("group has no default split method")
	default:
		return fallback("group default method " + string(group.DefaultMethod) + " cannot be used")
	}

	res.Resolved = resolved.Kind()
	return resolved, res
}

// GroupParticipants builds the participant selection for a group
// transaction. With AutoIncludeAll and no explicit selection every member
// takes part. An empty payer falls back to the group's default payer.
func GroupParticipants(group *Group, selected []string, payerID string) ([]Participant, string) {
	if payerID == "" && group != nil {
		payerID = group.DefaultPayer
	}

	names := make(map[string]string)
	if group != nil {
		for _, m := range group.Members {
			names[m.ID] = m.Name
		}
	}

	ids := selected
	if len(ids) == 0 && group != nil && group.AutoIncludeAll {
		ids = make([]string, 0, len(group.Members))
		for _, m := range group.Members {
			ids = append(ids, m.ID)
		}
	}

	participants := make([]Participant, 0, len(ids))
	for _, id := range ids {
		participants = append(participants, Participant{ID: id, Name: names[id]})
	}
	if payerID != "" {
		if _, ok := names[payerID]; ok {
			participants = withPayer(participants, payerID, names[payerID])
		}
	}
	return participants, payerID
}
