// Package brep holds the boundary representation of a cellular solid as
// integer keyed entity collections, together with the topology repairs the
// foam pipeline applies to it: duplicate merging, wall synthesis, compound
// loop splitting and periodic face pairing.
package brep

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point is a vertex of the geometry. Sizing carries the optional fourth field
// of the persisted record (a mesh size or a named size variable) verbatim.
type Point struct {
	X      r3.Vec
	Sizing string
}

// Edge is an ordered pair of point ids.
type Edge [2]int

// Loop is an ordered list of signed member ids: edges for a wire loop, faces
// for a shell loop. The sign encodes traversal direction.
type Loop []int

// Face lists wire loop ids, the first is the outer boundary and the rest are holes.
type Face []int

// Volume lists shell loop ids, the first is the outer shell and the rest are holes.
type Volume []int

// PeriodicPair states that face Dst is the image of face Src under Translation.
type PeriodicPair struct {
	Dst, Src    int
	Translation r3.Vec
}

// PhysicalGroup tags a set of faces or volumes. Name is set when the group
// was declared through a quoted name rather than a number.
type PhysicalGroup struct {
	Name    string
	Members []int
}

// Store is the in-memory entity collection of one pipeline run.
type Store struct {
	Points           map[int]Point
	Edges            map[int]Edge
	WireLoops        map[int]Loop
	Faces            map[int]Face
	ShellLoops       map[int]Loop
	Volumes          map[int]Volume
	Periodic         []PeriodicPair
	PhysicalSurfaces map[int]PhysicalGroup
	PhysicalVolumes  map[int]PhysicalGroup
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		Points:           make(map[int]Point),
		Edges:            make(map[int]Edge),
		WireLoops:        make(map[int]Loop),
		Faces:            make(map[int]Face),
		ShellLoops:       make(map[int]Loop),
		Volumes:          make(map[int]Volume),
		PhysicalSurfaces: make(map[int]PhysicalGroup),
		PhysicalVolumes:  make(map[int]PhysicalGroup),
	}
}

// Clone returns a deep copy sharing no slices with the receiver.
func (s *Store) Clone() *Store {
	c := NewStore()
	for id, p := range s.Points {
		c.Points[id] = p
	}
	for id, e := range s.Edges {
		c.Edges[id] = e
	}
	for id, l := range s.WireLoops {
		c.WireLoops[id] = append(Loop(nil), l...)
	}
	for id, f := range s.Faces {
		c.Faces[id] = append(Face(nil), f...)
	}
	for id, l := range s.ShellLoops {
		c.ShellLoops[id] = append(Loop(nil), l...)
	}
	for id, v := range s.Volumes {
		c.Volumes[id] = append(Volume(nil), v...)
	}
	c.Periodic = append([]PeriodicPair(nil), s.Periodic...)
	for id, g := range s.PhysicalSurfaces {
		c.PhysicalSurfaces[id] = PhysicalGroup{Name: g.Name, Members: append([]int(nil), g.Members...)}
	}
	for id, g := range s.PhysicalVolumes {
		c.PhysicalVolumes[id] = PhysicalGroup{Name: g.Name, Members: append([]int(nil), g.Members...)}
	}
	return c
}

// Len returns the number of entities of a kind.
func (s *Store) Len(kind Kind) int {
	switch kind {
	case PointKind:
		return len(s.Points)
	case EdgeKind:
		return len(s.Edges)
	case WireLoopKind:
		return len(s.WireLoops)
	case FaceKind:
		return len(s.Faces)
	case ShellLoopKind:
		return len(s.ShellLoops)
	case VolumeKind:
		return len(s.Volumes)
	case PeriodicKind:
		return len(s.Periodic)
	case PhysicalSurfaceKind:
		return len(s.PhysicalSurfaces)
	case PhysicalVolumeKind:
		return len(s.PhysicalVolumes)
	}
	return 0
}

// Counts returns the entity count of every kind.
func (s *Store) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, k := range Kinds() {
		counts[k] = s.Len(k)
	}
	return counts
}

// SortedIDs returns the keys of an entity collection in ascending order.
func SortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func maxID[V any](m map[int]V) (max int) {
	for id := range m {
		if id > max {
			max = id
		}
	}
	return
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

func sign(i int) int {
	if i < 0 {
		return -1
	}
	return 1
}

// EdgePoints returns the endpoint ids of an edge.
func (s *Store) EdgePoints(id int) (ends [2]int, err error) {
	e, ok := s.Edges[abs(id)]
	if !ok {
		err = dangling(EdgeKind, abs(id), "edge is not defined")
		return
	}
	for _, p := range e {
		if _, ok := s.Points[p]; !ok {
			err = dangling(EdgeKind, abs(id), "references missing point %d", p)
			return
		}
	}
	return [2]int(e), nil
}

// FacePoints returns the sorted unique point ids reachable from a face
// through its wire loops and their edges.
func (s *Store) FacePoints(id int) ([]int, error) {
	seen := make(map[int]struct{})
	if err := s.collectFacePoints(abs(id), seen); err != nil {
		return nil, err
	}
	return sortedSet(seen), nil
}

// VolumePoints returns the sorted unique point ids reachable from a volume
// through its shells, faces, loops and edges.
func (s *Store) VolumePoints(id int) ([]int, error) {
	vol, ok := s.Volumes[id]
	if !ok {
		return nil, dangling(VolumeKind, id, "volume is not defined")
	}
	seen := make(map[int]struct{})
	for _, sl := range vol {
		shell, ok := s.ShellLoops[abs(sl)]
		if !ok {
			return nil, dangling(VolumeKind, id, "references missing shell loop %d", abs(sl))
		}
		for _, f := range shell {
			if err := s.collectFacePoints(abs(f), seen); err != nil {
				return nil, err
			}
		}
	}
	return sortedSet(seen), nil
}

func (s *Store) collectFacePoints(id int, seen map[int]struct{}) error {
	face, ok := s.Faces[id]
	if !ok {
		return dangling(FaceKind, id, "face is not defined")
	}
	for _, wl := range face {
		loop, ok := s.WireLoops[abs(wl)]
		if !ok {
			return dangling(FaceKind, id, "references missing wire loop %d", abs(wl))
		}
		for _, e := range loop {
			ends, err := s.EdgePoints(e)
			if err != nil {
				return err
			}
			seen[ends[0]] = struct{}{}
			seen[ends[1]] = struct{}{}
		}
	}
	return nil
}

func sortedSet(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
