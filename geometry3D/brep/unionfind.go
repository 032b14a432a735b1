package brep

import "github.com/kamstrup/intmap"

// disjointSet groups duplicate ids. The representative of every group is its
// smallest member, so merging always redirects to the lowest id.
type disjointSet struct {
	parent *intmap.Map[int, int]
}

func newDisjointSet(capacity int) *disjointSet {
	return &disjointSet{parent: intmap.New[int, int](capacity)}
}

func (ds *disjointSet) find(x int) int {
	root := x
	for {
		p, ok := ds.parent.Get(root)
		if !ok || p == root {
			break
		}
		root = p
	}
	// path compression
	for x != root {
		p, _ := ds.parent.Get(x)
		ds.parent.Put(x, root)
		x = p
	}
	return root
}

func (ds *disjointSet) union(a, b int) {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		ds.parent.Put(rb, ra)
	} else {
		ds.parent.Put(ra, rb)
	}
}

// redirectTable maps removed ids onto their canonical id. from keeps the
// removed ids in the order they were added.
type redirectTable struct {
	to   *intmap.Map[int, int]
	from []int
}

func (r *redirectTable) Len() int { return len(r.from) }

// redirects returns id -> representative for every id of ids that is not its
// own representative, in the order of ids.
func (ds *disjointSet) redirects(ids []int) *redirectTable {
	red := &redirectTable{to: intmap.New[int, int](len(ids))}
	for _, id := range ids {
		if root := ds.find(id); root != id {
			red.to.Put(id, root)
			red.from = append(red.from, id)
		}
	}
	return red
}
