package govalid

// chainEntry is one group to execute, tagged with the sequence it expanded
// from (empty for plain groups). Entries are immutable once appended.
type chainEntry struct {
	group    Group
	sequence Group
}

func (e chainEntry) inSequence() bool { return e.sequence != "" }

// groupChain is an ordered, sequence-aware execution plan consumed through a
// forward-only cursor. Entries expanded from one sequence are contiguous and
// share its tag, which is what makes skipSequence well-defined.
type groupChain struct {
	entries []chainEntry
	pos     int
}

func (c *groupChain) hasNext() bool { return c.pos < len(c.entries) }

func (c *groupChain) next() chainEntry {
	e := c.entries[c.pos]
	c.pos++
	return e
}

// skipSequence advances the cursor past the remaining contiguous entries
// tagged with the given sequence. Entries of other sequences and plain
// groups are left for the caller to consume.
func (c *groupChain) skipSequence(seq Group) {
	for c.pos < len(c.entries) && c.entries[c.pos].sequence == seq {
		c.pos++
	}
}

// append adds a (group, sequence) entry unless an identical one is already
// present; the first occurrence wins for ordering.
func (c *groupChain) append(g Group, seq Group) {
	for _, e := range c.entries {
		if e.group == g && e.sequence == seq {
			return
		}
	}
	c.entries = append(c.entries, chainEntry{group: g, sequence: seq})
}

// expandGroups turns the requested group identifiers into an execution plan.
// Identifiers registered in sequences expand, transitively, into their
// members, each tagged with the outermost requested sequence so a failure
// anywhere in the composition suppresses the rest of it. The caller
// substitutes Default for an empty request before calling; requested must
// not be empty here.
func expandGroups(sequences map[Group][]Group, requested []Group) (*groupChain, error) {
	chain := &groupChain{}
	for _, g := range requested {
		if g == "" {
			return nil, &GroupDefinitionError{Group: g, Reason: "empty group identifier"}
		}
		if members, ok := sequences[g]; ok {
			seen := map[Group]bool{g: true}
			if err := appendSequence(chain, sequences, g, members, seen); err != nil {
				return nil, err
			}
			continue
		}
		chain.append(g, "")
	}
	return chain, nil
}

// appendSequence flattens a sequence's members into the chain under the root
// sequence tag. seen holds the identifiers on the current expansion stack;
// meeting one again means the composition references itself.
func appendSequence(chain *groupChain, sequences map[Group][]Group, root Group, members []Group, seen map[Group]bool) error {
	for _, m := range members {
		if m == "" {
			return &GroupDefinitionError{Group: root, Reason: "empty group identifier in sequence"}
		}
		inner, ok := sequences[m]
		if !ok {
			chain.append(m, root)
			continue
		}
		if seen[m] {
			return &GroupDefinitionError{Group: m, Reason: "cyclic sequence composition"}
		}
		seen[m] = true
		if err := appendSequence(chain, sequences, root, inner, seen); err != nil {
			return err
		}
		delete(seen, m)
	}
	return nil
}
