package geofile

import (
	"bytes"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis aligned domain, entities are selected from it with a small
// margin so that faces lying on its sides are included.
type Box struct {
	Min, Max r3.Vec
}

// UnitBox is the periodic domain of a tessellated foam.
var UnitBox = Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}}

const boxMargin = 1e-6

func (b Box) selector(min, max r3.Vec) string {
	return fmt.Sprintf("{%g, %g, %g, %g, %g, %g}",
		min.X-boxMargin, min.Y-boxMargin, min.Z-boxMargin,
		max.X+boxMargin, max.Y+boxMargin, max.Z+boxMargin)
}

func (b Box) all() string { return b.selector(b.Min, b.Max) }

// Sizing holds the target element sizes near points, near edges and inside cells.
type Sizing struct {
	Point, Edge, Cell float64
}

/*
MeshConfig returns a gmsh script that merges input and grades the mesh from
Sizing.Point at the geometry points and Sizing.Edge along its edges up to
Sizing.Cell three cell sizes away, through threshold fields on distance fields.
*/
func MeshConfig(input string, box Box, sz Sizing, charLength float64) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Merge %q;\n", input)
	fmt.Fprintf(&buf, "e1() = Line In BoundingBox %s;\n", box.all())
	fmt.Fprintf(&buf, "Mesh.CharacteristicLengthMax = %g;\n", charLength)
	fmt.Fprintf(&buf, "psize = %g;\n", sz.Point)
	fmt.Fprintf(&buf, "esize = %g;\n", sz.Edge)
	fmt.Fprintf(&buf, "csize = %g;\n", sz.Cell)
	fmt.Fprintf(&buf, "p1() = Point In BoundingBox %s;\n", box.all())
	buf.WriteString(`Field[1] = Distance;
Field[1].NodesList = {p1()};
Field[2] = Threshold;
Field[2].IField = 1;
Field[2].LcMin = psize;
Field[2].LcMax = csize;
Field[2].DistMin = 0;
Field[2].DistMax = 3*csize;
Field[3] = Distance;
Field[3].NNodesByEdge = 10;
Field[3].EdgesList = {e1()};
Field[4] = Threshold;
Field[4].IField = 3;
Field[4].LcMin = esize;
Field[4].LcMax = csize;
Field[4].DistMin = 0;
Field[4].DistMax = 3*csize;
Field[5] = Min;
Field[5].FieldsList = {2, 4};
Background Field = 5;
Mesh.CharacteristicLengthExtendFromBoundary = 0;
`)
	return buf.Bytes()
}

/*
MergeAndLabel returns a gmsh script merging the solids of inputs in order.
The volumes of the i-th input inside box, less those of earlier inputs, form
physical volume i+1. The box sides normal to x and y are declared periodic.
*/
func MergeAndLabel(inputs []string, box Box) []byte {
	var buf bytes.Buffer
	for i, in := range inputs {
		fmt.Fprintf(&buf, "Merge %q;\n", in)
		fmt.Fprintf(&buf, "v%d() = Volume In BoundingBox %s;\n", i+1, box.all())
		for j := 0; j < i; j++ {
			fmt.Fprintf(&buf, "v%d() -= v%d();\n", i+1, j+1)
		}
		fmt.Fprintf(&buf, "Physical Volume(%d) = {v%d()};\n", i+1, i+1)
	}
	lo, hi := box.Min, box.Max
	fmt.Fprintf(&buf, "s1() = Surface In BoundingBox %s;\n", box.selector(lo, r3.Vec{X: lo.X, Y: hi.Y, Z: hi.Z}))
	fmt.Fprintf(&buf, "s2() = Surface In BoundingBox %s;\n", box.selector(r3.Vec{X: hi.X, Y: lo.Y, Z: lo.Z}, hi))
	fmt.Fprintf(&buf, "s3() = Surface In BoundingBox %s;\n", box.selector(lo, r3.Vec{X: hi.X, Y: lo.Y, Z: hi.Z}))
	fmt.Fprintf(&buf, "s4() = Surface In BoundingBox %s;\n", box.selector(r3.Vec{X: lo.X, Y: hi.Y, Z: lo.Z}, hi))
	fmt.Fprintf(&buf, "Periodic Surface {s2()} = {s1()} Translate{%g,0,0};\n", hi.X-lo.X)
	fmt.Fprintf(&buf, "Periodic Surface {s4()} = {s3()} Translate{0,%g,0};\n", hi.Y-lo.Y)
	return buf.Bytes()
}

// Geo2Brep returns a gmsh script converting a geometry script to a BREP file.
func Geo2Brep(geo, brep string) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, KernelHeader)
	fmt.Fprintf(&buf, "Merge %q;\n", geo)
	fmt.Fprintf(&buf, "Save %q;\n", brep)
	return buf.Bytes()
}
