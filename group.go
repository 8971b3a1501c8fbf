package govalid

// Group identifies a validation group. Groups are open-world: any non-empty
// string is a valid plain group without prior registration. An identifier
// registered as a sequence (see WithSequence) expands into its members when
// requested.
type Group string

// Default is the implicit group. It is enforced when a call requests no
// groups, and it is the group a constraint with no declared groups applies
// to.
const Default Group = "default"

// PlannedGroup is one step of a resolved group execution plan, as reported
// by Validator.GroupPlan.
type PlannedGroup struct {
	Group    Group
	Sequence Group // empty when the group is not part of a sequence
}

// InSequence reports whether the step belongs to a sequence run.
func (p PlannedGroup) InSequence() bool { return p.Sequence != "" }
