package brep

import (
	"fmt"

	"github.com/kamstrup/intmap"
	"gonum.org/v1/gonum/spatial/r3"
)

type wallIDs struct {
	point, edge, loop, shell int
}

func newWallIDs(s *Store) *wallIDs {
	return &wallIDs{
		point: maxID(s.Points),
		edge:  maxID(s.Edges),
		loop:  max(maxID(s.WireLoops), maxID(s.Faces)),
		shell: max(maxID(s.ShellLoops), maxID(s.Volumes)),
	}
}

/*
CreateWalls shrinks every volume of s towards its centroid. Each point p of a
volume is copied to p + w*(c - p), where c is the mean of the volume's points,
and the volume's faces are rebuilt over the copies into a new shell.

Two stores are returned, both deduplicated with tol:
  - cells is a copy of s holding the new entities too, with the id of the new
    shell appended to the shell list of the volume it was made from. The
    shell id is also the id of the wall volume in walls.
  - walls holds only the new entities plus one volume per new shell.

s itself is left untouched.
*/
func CreateWalls(s *Store, w, tol float64) (cells, walls *Store, err error) {
	if !(w > 0 && w < 1) {
		err = &EntityError{Kind: -1, Err: ErrInvalidParameter, Detail: fmt.Sprintf("wall factor %g is outside (0,1)", w)}
		return
	}
	cells, walls = s.Clone(), NewStore()
	next := newWallIDs(s)
	for _, vid := range SortedIDs(s.Volumes) {
		if err = s.shrinkVolume(vid, w, next, cells, walls); err != nil {
			return nil, nil, err
		}
	}
	cells.RemoveDuplicates(tol)
	walls.RemoveDuplicates(tol)
	return
}

func (s *Store) shrinkVolume(vid int, w float64, next *wallIDs, cells, walls *Store) error {
	pts, err := s.VolumePoints(vid)
	if err != nil {
		return err
	}
	if len(pts) == 0 {
		return &EntityError{Kind: VolumeKind, ID: vid, Err: ErrEmptyVolume}
	}
	var c r3.Vec
	for _, p := range pts {
		c = r3.Add(c, s.Points[p].X)
	}
	c = r3.Scale(1/float64(len(pts)), c)

	pointMap := intmap.New[int, int](len(pts))
	for _, p := range pts {
		old := s.Points[p]
		next.point++
		np := Point{X: r3.Add(old.X, r3.Scale(w, r3.Sub(c, old.X))), Sizing: old.Sizing}
		cells.Points[next.point] = np
		walls.Points[next.point] = np
		pointMap.Put(p, next.point)
	}

	next.shell++
	shellID := next.shell
	var shell Loop
	for _, sl := range s.Volumes[vid] {
		for _, f := range s.ShellLoops[abs(sl)] {
			if len(s.Faces[abs(f)]) == 0 {
				continue
			}
			shell = append(shell, sign(f)*s.mirrorFace(abs(f), pointMap, next, cells, walls))
		}
	}
	cells.ShellLoops[shellID] = shell
	walls.ShellLoops[shellID] = append(Loop(nil), shell...)
	walls.Volumes[shellID] = Volume{shellID}
	cells.Volumes[vid] = append(cells.Volumes[vid], shellID)
	return nil
}

// mirrorFace rebuilds a face over the mapped points and returns the new face
// id, which is also the id of its outer wire loop. The face has at least one
// wire loop and every point of it is in pointMap.
func (s *Store) mirrorFace(fid int, pointMap *intmap.Map[int, int], next *wallIDs, cells, walls *Store) int {
	var face Face
	for _, wl := range s.Faces[fid] {
		var loop Loop
		for _, e := range s.WireLoops[abs(wl)] {
			old := s.Edges[abs(e)]
			a, _ := pointMap.Get(old[0])
			b, _ := pointMap.Get(old[1])
			next.edge++
			cells.Edges[next.edge] = Edge{a, b}
			walls.Edges[next.edge] = Edge{a, b}
			loop = append(loop, sign(e)*next.edge)
		}
		next.loop++
		cells.WireLoops[next.loop] = loop
		walls.WireLoops[next.loop] = append(Loop(nil), loop...)
		face = append(face, next.loop)
	}
	cells.Faces[face[0]] = face
	walls.Faces[face[0]] = append(Face(nil), face...)
	return face[0]
}
