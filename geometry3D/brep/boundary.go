package brep

import (
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// FacesInPlane returns the faces whose points all lie within tol of the plane
// x[axis] = coord, ascending. axis is 0, 1 or 2.
func (s *Store) FacesInPlane(coord float64, axis int, tol float64) (faces []int, err error) {
	if axis < 0 || axis > 2 {
		return nil, &EntityError{Kind: -1, Err: ErrInvalidParameter, Detail: "axis must be 0, 1 or 2"}
	}
	for _, f := range SortedIDs(s.Faces) {
		pts, err := s.FacePoints(f)
		if err != nil {
			return nil, err
		}
		if len(pts) == 0 {
			continue
		}
		inPlane := true
		for _, p := range pts {
			x := s.Points[p].X
			if math.Abs([3]float64{x.X, x.Y, x.Z}[axis]-coord) > tol {
				inPlane = false
				break
			}
		}
		if inPlane {
			faces = append(faces, f)
		}
	}
	return
}

/*
BoundaryFaces returns the faces bounding exactly one volume, excluding the ids
in exclude, ascending. Incidence is counted through the volume x face matrix

	A[v][f] = number of times the shells of volume v list face f

whose column sums A^T 1 give the number of volumes sharing each face.
*/
func (s *Store) BoundaryFaces(exclude []int) (faces []int, err error) {
	var (
		volumes = SortedIDs(s.Volumes)
		faceIDs = SortedIDs(s.Faces)
	)
	if len(volumes) == 0 || len(faceIDs) == 0 {
		return
	}
	col := make(map[int]int, len(faceIDs))
	for j, f := range faceIDs {
		col[f] = j
	}
	VToF := sparse.NewDOK(len(volumes), len(faceIDs))
	for i, v := range volumes {
		for _, sl := range s.Volumes[v] {
			shell, ok := s.ShellLoops[abs(sl)]
			if !ok {
				return nil, dangling(VolumeKind, v, "references missing shell loop %d", abs(sl))
			}
			for _, f := range shell {
				j, ok := col[abs(f)]
				if !ok {
					return nil, dangling(ShellLoopKind, abs(sl), "references missing face %d", abs(f))
				}
				VToF.Set(i, j, VToF.At(i, j)+1)
			}
		}
	}
	ones := make([]float64, len(volumes))
	for i := range ones {
		ones[i] = 1
	}
	var counts mat.VecDense
	counts.MulVec(VToF.ToCSR().T(), mat.NewVecDense(len(ones), ones))

	skip := make(map[int]struct{}, len(exclude))
	for _, f := range exclude {
		skip[abs(f)] = struct{}{}
	}
	for j, f := range faceIDs {
		if _, ok := skip[f]; ok {
			continue
		}
		if counts.AtVec(j) == 1 {
			faces = append(faces, f)
		}
	}
	return
}
