package brep

import "github.com/notargets/gofoam/types"

// DefaultTolerance is the L1 distance below which two points are one point.
const DefaultTolerance = 1e-10

// DuplicateReport counts the entities removed by RemoveDuplicates.
type DuplicateReport struct {
	Points, Edges, WireLoops int
}

// Total returns the number of removed entities of all kinds.
func (r DuplicateReport) Total() int { return r.Points + r.Edges + r.WireLoops }

/*
RemoveDuplicates merges numerically identical entities in dependency order:
points closer than tol (L1), then edges joining the same two points, then wire
loops made of the same edges. Every group of duplicates collapses onto its
lowest id and all references to the removed ids are rewritten. Volumes are
never merged, two coincident cells are still two cells.

A removed wire loop takes the face of the same id with it; if the surviving
loop had no face of its own the removed face moves to the surviving id.
*/
func (s *Store) RemoveDuplicates(tol float64) (rep DuplicateReport) {
	pointRed := s.duplicatePoints(tol)
	rep.Points = pointRed.Len()
	for id, e := range s.Edges {
		s.Edges[id] = Edge{redirect(pointRed, e[0]), redirect(pointRed, e[1])}
	}

	edgeRed := duplicateKeys(s.Edges, func(e Edge) types.EdgeKey {
		return types.NewEdgeKey([2]int(e))
	})
	rep.Edges = edgeRed.Len()
	for _, from := range edgeRed.from {
		delete(s.Edges, from)
	}
	for _, loop := range s.WireLoops {
		redirectMembers(edgeRed, loop)
	}

	loopRed := duplicateKeys(s.WireLoops, func(l Loop) types.MemberKey {
		return types.NewMemberKey(l)
	})
	rep.WireLoops = loopRed.Len()
	s.removeWireLoops(loopRed)
	return
}

func (s *Store) duplicatePoints(tol float64) *redirectTable {
	ids := SortedIDs(s.Points)
	ix := newPointIndex(s, ids)
	ds := newDisjointSet(len(ids))
	for _, id := range ids {
		for _, other := range ix.within(s.Points[id].X, tol) {
			if other != id {
				ds.union(id, other)
			}
		}
	}
	red := ds.redirects(ids)
	for _, from := range red.from {
		delete(s.Points, from)
	}
	return red
}

// duplicateKeys groups the entities of m sharing the same key. The lowest id
// of every group is its canonical id; the result maps every other id to it.
func duplicateKeys[V any, K comparable](m map[int]V, key func(V) K) *redirectTable {
	ids := SortedIDs(m)
	first := make(map[K]int, len(ids))
	ds := newDisjointSet(len(ids))
	for _, id := range ids {
		k := key(m[id])
		if canon, ok := first[k]; ok {
			ds.union(canon, id)
			continue
		}
		first[k] = id
	}
	return ds.redirects(ids)
}

func (s *Store) removeWireLoops(red *redirectTable) {
	if red.Len() == 0 {
		return
	}
	for _, from := range red.from {
		to, _ := red.to.Get(from)
		delete(s.WireLoops, from)
		if f, ok := s.Faces[from]; ok {
			if _, taken := s.Faces[to]; !taken {
				s.Faces[to] = f
			}
			delete(s.Faces, from)
		}
	}
	for _, f := range s.Faces {
		redirectMembers(red, f)
	}
	// faces share ids with their defining loops, so the same table
	// redirects every face reference
	for _, shell := range s.ShellLoops {
		redirectMembers(red, shell)
	}
	for i, pp := range s.Periodic {
		s.Periodic[i].Dst = redirect(red, pp.Dst)
		s.Periodic[i].Src = redirect(red, pp.Src)
	}
	for _, g := range s.PhysicalSurfaces {
		redirectMembers(red, g.Members)
	}
}

func redirect(red *redirectTable, id int) int {
	if to, ok := red.to.Get(abs(id)); ok {
		return sign(id) * to
	}
	return id
}

func redirectMembers[S ~[]int](red *redirectTable, members S) {
	for i, m := range members {
		members[i] = redirect(red, m)
	}
}
