package brep

import (
	"github.com/kamstrup/intmap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gofoam/types"
)

/*
PeriodicFaces pairs the given faces under the translation t. Point i of a face
corresponds to point j of another face when |x_i + t - x_j|_1 < tol, the lowest
such j being used. A face whose points all have correspondents is paired with
the face whose point set equals the translated one.

Pairs are returned as (face, partner) in the order of faces. Faces with an
unmapped point, or whose image is not one of faces, are not periodic along t
and are left out.
*/
func (s *Store) PeriodicFaces(faces []int, t r3.Vec, tol float64) (pairs [][2]int, err error) {
	facePoints := make([][]int, len(faces))
	seen := make(map[int]struct{})
	for i, f := range faces {
		if facePoints[i], err = s.FacePoints(f); err != nil {
			return nil, err
		}
		for _, p := range facePoints[i] {
			seen[p] = struct{}{}
		}
	}
	boundary := sortedSet(seen)
	ix := newPointIndex(s, boundary)
	image := intmap.New[int, int](len(boundary))
	for _, p := range boundary {
		if js := ix.within(r3.Add(s.Points[p].X, t), tol); len(js) > 0 {
			image.Put(p, js[0])
		}
	}

	byPoints := make(map[types.MemberKey]int, len(faces))
	for i, f := range faces {
		key := types.NewMemberKey(facePoints[i])
		if _, ok := byPoints[key]; !ok {
			byPoints[key] = f
		}
	}
	for i, f := range faces {
		if len(facePoints[i]) == 0 {
			continue
		}
		mapped := make([]int, 0, len(facePoints[i]))
		for _, p := range facePoints[i] {
			j, ok := image.Get(p)
			if !ok {
				break
			}
			mapped = append(mapped, j)
		}
		if len(mapped) != len(facePoints[i]) {
			continue
		}
		if partner, ok := byPoints[types.NewMemberKey(mapped)]; ok {
			pairs = append(pairs, [2]int{f, partner})
		}
	}
	return
}

// AddPeriodic records every (face, partner) pair as face being the image of
// partner translated by -t, the form the mesher expects.
func (s *Store) AddPeriodic(pairs [][2]int, t r3.Vec) {
	for _, p := range pairs {
		s.Periodic = append(s.Periodic, PeriodicPair{Dst: p[0], Src: p[1], Translation: r3.Scale(-1, t)})
	}
}
