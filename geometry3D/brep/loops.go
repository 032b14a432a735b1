package brep

/*
SplitLoops separates compound loops. A wire loop (or shell loop) that contains
every member of another, smaller loop is taken to be an outer boundary with
that loop as a hole: the hole's members are removed from it and the face (or
volume) of the same id becomes [outer, hole].

Loops are visited in ascending id order and only the first hole found for a
loop is split off, so an outer loop with several holes keeps all but one of
them. The number of splits is returned.
*/
func (s *Store) SplitLoops(kind Kind) (splits int, err error) {
	var (
		loops  map[int]Loop
		attach func(outer, hole int)
	)
	switch kind {
	case WireLoopKind:
		loops = s.WireLoops
		attach = func(outer, hole int) { s.Faces[outer] = Face{outer, hole} }
	case ShellLoopKind:
		loops = s.ShellLoops
		attach = func(outer, hole int) { s.Volumes[outer] = Volume{outer, hole} }
	default:
		err = &EntityError{Kind: kind, Err: ErrInvalidParameter, Detail: "only wire and shell loops can be split"}
		return
	}
	ids := SortedIDs(loops)
	for _, a := range ids {
		for _, b := range ids {
			if a == b || len(loops[b]) == 0 {
				continue
			}
			if rest, ok := removeSubset(loops[a], loops[b]); ok {
				loops[a] = rest
				attach(a, b)
				splits++
				break
			}
		}
	}
	return
}

// removeSubset removes one occurrence of every member of sub from outer,
// matching members regardless of sign. It fails unless sub is a strict
// subset of outer.
func removeSubset(outer, sub Loop) (Loop, bool) {
	if len(sub) >= len(outer) {
		return nil, false
	}
	count := make(map[int]int, len(outer))
	for _, m := range outer {
		count[abs(m)]++
	}
	for _, m := range sub {
		if count[abs(m)] == 0 {
			return nil, false
		}
		count[abs(m)]--
	}
	rest := make(Loop, 0, len(outer)-len(sub))
	for _, m := range outer {
		if count[abs(m)] > 0 {
			rest = append(rest, m)
			count[abs(m)]--
		}
	}
	return rest, true
}
