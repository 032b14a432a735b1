// Package geofile reads and writes the entity statements of gmsh .geo
// geometry scripts, the text form shared by the tessellator, this toolkit and
// the mesher.
package geofile

import (
	"strings"

	"github.com/notargets/gofoam/geometry3D/brep"
)

type keyword struct {
	Kind  brep.Kind
	Name  string
	Order int // position of the kind in written files
}

// keywords is ordered by Order, so that every statement only references
// statements written before it.
var keywords = [...]keyword{
	{brep.PointKind, "Point", 0},
	{brep.EdgeKind, "Line", 1},
	{brep.WireLoopKind, "Line Loop", 2},
	{brep.FaceKind, "Plane Surface", 3},
	{brep.ShellLoopKind, "Surface Loop", 4},
	{brep.VolumeKind, "Volume", 5},
	{brep.PeriodicKind, "Periodic Surface", 6},
	{brep.PhysicalSurfaceKind, "Physical Surface", 7},
	{brep.PhysicalVolumeKind, "Physical Volume", 8},
}

// readAliases are additional spellings accepted on read only.
var readAliases = map[string]brep.Kind{
	"Surface": brep.FaceKind,
}

// KindOf resolves a statement keyword, with any run of blanks between words,
// to the entity kind it declares.
func KindOf(name string) (brep.Kind, bool) {
	name = strings.Join(strings.Fields(name), " ")
	for _, kw := range keywords {
		if kw.Name == name {
			return kw.Kind, true
		}
	}
	k, ok := readAliases[name]
	return k, ok
}

// Keyword returns the keyword written for a kind.
func Keyword(kind brep.Kind) string {
	for _, kw := range keywords {
		if kw.Kind == kind {
			return kw.Name
		}
	}
	return ""
}
