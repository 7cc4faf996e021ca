package object

// Linearize computes the resolution order for cls from its declared bases.
// It merges [cls], each base's own cached order, and the declared base list,
// repeatedly taking the first sequence head that appears in no other
// sequence's tail. Ties resolve toward the leftmost declared base, which is
// what gives multiple inheritance its depth-first, left-to-right character.
//
// The function is pure: it reads only cls.Bases and each base's cached order,
// and fails with a *HierarchyError when the declared ordering contradicts a
// base's own precedence.
func Linearize(cls *Class) ([]*Class, error) {
	seqs := make([][]*Class, 0, len(cls.Bases)+2)
	seqs = append(seqs, []*Class{cls})
	for _, base := range cls.Bases {
		seqs = append(seqs, append([]*Class(nil), base.mro...))
	}
	seqs = append(seqs, append([]*Class(nil), cls.Bases...))

	var order []*Class
	for {
		seqs = pruneEmpty(seqs)
		if len(seqs) == 0 {
			return order, nil
		}
		head := selectHead(seqs)
		if head == nil {
			return nil, &HierarchyError{Class: cls.Name, Bases: baseNames(cls.Bases)}
		}
		order = append(order, head)
		for i, seq := range seqs {
			seqs[i] = removeClass(seq, head)
		}
	}
}

// selectHead returns the first sequence head absent from every other
// sequence's tail, or nil when no candidate is valid.
func selectHead(seqs [][]*Class) *Class {
	for _, seq := range seqs {
		head := seq[0]
		if !inAnyTail(seqs, head) {
			return head
		}
	}
	return nil
}

func inAnyTail(seqs [][]*Class, cand *Class) bool {
	for _, seq := range seqs {
		for _, c := range seq[1:] {
			if c == cand {
				return true
			}
		}
	}
	return false
}

func pruneEmpty(seqs [][]*Class) [][]*Class {
	out := seqs[:0]
	for _, seq := range seqs {
		if len(seq) > 0 {
			out = append(out, seq)
		}
	}
	return out
}

func removeClass(seq []*Class, target *Class) []*Class {
	out := seq[:0]
	for _, c := range seq {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

func baseNames(bases []*Class) []string {
	names := make([]string, len(bases))
	for i, b := range bases {
		names[i] = b.Name
	}
	return names
}
