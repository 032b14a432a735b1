package brep

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// addBox appends an axis aligned cube with its own points, edges, loops,
// faces, shell and volume to s and returns the volume id. Faces share ids
// with their wire loops, the volume with its shell.
func addBox(s *Store, lo r3.Vec, size float64) int {
	var (
		p0 = maxID(s.Points)
		e0 = maxID(s.Edges)
		l0 = max(maxID(s.WireLoops), maxID(s.Faces))
		v0 = max(maxID(s.ShellLoops), maxID(s.Volumes))
	)
	for i := 0; i < 8; i++ {
		s.Points[p0+1+i] = Point{X: r3.Vec{
			X: lo.X + size*float64(i&1),
			Y: lo.Y + size*float64(i>>1&1),
			Z: lo.Z + size*float64(i>>2&1),
		}}
	}
	edgeID := make(map[[2]int]int)
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				e0++
				s.Edges[e0] = Edge{p0 + 1 + i, p0 + 1 + (i | bit)}
				edgeID[[2]int{i, i | bit}] = e0
			}
		}
	}
	var shell Loop
	lid := l0
	for _, axis := range []int{1, 2, 4} {
		var u, v int
		switch axis {
		case 1:
			u, v = 2, 4
		case 2:
			u, v = 1, 4
		case 4:
			u, v = 1, 2
		}
		for _, side := range []int{0, axis} {
			cycle := []int{side, side | u, side | u | v, side | v}
			var loop Loop
			for k := range cycle {
				a, b := cycle[k], cycle[(k+1)%4]
				if a < b {
					loop = append(loop, edgeID[[2]int{a, b}])
				} else {
					loop = append(loop, -edgeID[[2]int{b, a}])
				}
			}
			lid++
			s.WireLoops[lid] = loop
			s.Faces[lid] = Face{lid}
			shell = append(shell, lid)
		}
	}
	s.ShellLoops[v0+1] = shell
	s.Volumes[v0+1] = Volume{v0 + 1}
	return v0 + 1
}

// twoBoxes returns two unit cubes touching at x = 1, each with its own copy
// of the shared face.
func twoBoxes() *Store {
	s := NewStore()
	addBox(s, r3.Vec{}, 1)
	addBox(s, r3.Vec{X: 1}, 1)
	return s
}
