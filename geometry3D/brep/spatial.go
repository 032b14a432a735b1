package brep

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// idPoint is a point coordinate tagged with its entity id, stored in the k-d tree.
type idPoint struct {
	id int
	x  r3.Vec
}

func (p idPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(idPoint)
	switch d {
	case 0:
		return p.x.X - q.x.X
	case 1:
		return p.x.Y - q.x.Y
	case 2:
		return p.x.Z - q.x.Z
	}
	panic("illegal dimension")
}

func (p idPoint) Dims() int { return 3 }

// Distance is the squared Euclidean distance, as the tree's pruning expects.
func (p idPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(idPoint)
	return r3.Norm2(r3.Sub(p.x, q.x))
}

type idPoints []idPoint

func (p idPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p idPoints) Len() int                              { return len(p) }
func (p idPoints) Pivot(d kdtree.Dim) int                { return idPlane{idPoints: p, Dim: d}.Pivot() }
func (p idPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

type idPlane struct {
	kdtree.Dim
	idPoints
}

func (p idPlane) Less(i, j int) bool {
	return p.idPoints[i].Compare(p.idPoints[j], p.Dim) < 0
}
func (p idPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p idPlane) Slice(start, end int) kdtree.SortSlicer {
	return idPlane{Dim: p.Dim, idPoints: p.idPoints[start:end]}
}
func (p idPlane) Swap(i, j int) {
	p.idPoints[i], p.idPoints[j] = p.idPoints[j], p.idPoints[i]
}

// radiusKeeper keeps every tree point within a fixed squared radius of q.
// Max reports the query itself at the radius, never a nil sentinel, so the
// tree does not pop a kept point after the search.
type radiusKeeper struct {
	q     idPoint
	r2    float64
	found kdtree.Heap
}

func (k *radiusKeeper) Keep(c kdtree.ComparableDist) {
	if c.Dist <= k.r2 {
		k.found = append(k.found, c)
	}
}

func (k *radiusKeeper) Max() kdtree.ComparableDist {
	return kdtree.ComparableDist{Comparable: k.q, Dist: k.r2}
}
func (k *radiusKeeper) Len() int                   { return len(k.found) }
func (k *radiusKeeper) Less(i, j int) bool         { return k.found[i].Dist < k.found[j].Dist }
func (k *radiusKeeper) Swap(i, j int)              { k.found[i], k.found[j] = k.found[j], k.found[i] }
func (k *radiusKeeper) Push(x interface{})         { k.found = append(k.found, x.(kdtree.ComparableDist)) }
func (k *radiusKeeper) Pop() (i interface{}) {
	n := len(k.found) - 1
	i, k.found = k.found[n], k.found[:n]
	return i
}

// pointIndex answers "which points lie within an L1 tolerance of x". The tree
// is searched with an L2 ball of the same radius, which contains the L1 ball,
// and the candidates are then filtered with the L1 test.
type pointIndex struct {
	tree  *kdtree.Tree
	empty bool
}

func newPointIndex(s *Store, ids []int) *pointIndex {
	if len(ids) == 0 {
		return &pointIndex{empty: true}
	}
	pts := make(idPoints, len(ids))
	for i, id := range ids {
		pts[i] = idPoint{id: id, x: s.Points[id].X}
	}
	return &pointIndex{tree: kdtree.New(pts, false)}
}

// within returns the ids of the indexed points q with |q - x|_1 < tol, ascending.
func (ix *pointIndex) within(x r3.Vec, tol float64) (ids []int) {
	if ix.empty {
		return nil
	}
	q := idPoint{x: x}
	keep := &radiusKeeper{q: q, r2: tol * tol}
	ix.tree.NearestSet(keep, q)
	for _, c := range keep.found {
		p := c.Comparable.(idPoint)
		if l1Distance(p.x, x) < tol {
			ids = append(ids, p.id)
		}
	}
	sort.Ints(ids)
	return
}

func l1Distance(a, b r3.Vec) float64 {
	d := r3.Sub(a, b)
	return math.Abs(d.X) + math.Abs(d.Y) + math.Abs(d.Z)
}
