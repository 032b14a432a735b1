package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/notargets/gofoam/geometry3D/geofile"
	"github.com/notargets/gofoam/morphology"
)

// Parameters obtained from the YAML input file
type FoamParameters struct {
	Title         string         `yaml:"Title"`
	Filename      string         `yaml:"Filename"`      // base name of every artifact, e.g. Foam -> FoamCells.geo
	WallThickness float64        `yaml:"WallThickness"` // shrink factor in (0,1)
	Tolerance     float64        `yaml:"Tolerance"`     // duplicate merge tolerance
	BoxMethod     string         `yaml:"BoxMethod"`     // none, gmsh or occ
	Mesh          MeshParameters `yaml:"Mesh"`
}

type MeshParameters struct {
	PointSize            float64 `yaml:"PointSize"`
	EdgeSize             float64 `yaml:"EdgeSize"`
	CellSize             float64 `yaml:"CellSize"`
	CharacteristicLength float64 `yaml:"CharacteristicLength"`
}

func NewFoamParameters() *FoamParameters {
	return &FoamParameters{
		Filename:      "Foam",
		WallThickness: 0.02,
		Tolerance:     morphology.DefaultOptions().Tolerance,
		BoxMethod:     "none",
		Mesh: MeshParameters{
			PointSize:            0.025,
			EdgeSize:             0.025,
			CellSize:             0.025,
			CharacteristicLength: 0.1,
		},
	}
}

// Parse overlays the YAML in data on the current values.
func (fp *FoamParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, fp)
}

func (fp *FoamParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", fp.Title)
	fmt.Printf("[%s]\t\t\t= Filename\n", fp.Filename)
	fmt.Printf("%8.5f\t\t= WallThickness\n", fp.WallThickness)
	fmt.Printf("%8.2e\t\t= Tolerance\n", fp.Tolerance)
	fmt.Printf("[%s]\t\t\t= BoxMethod\n", fp.BoxMethod)
	fmt.Printf("%8.5f %8.5f %8.5f\t= Mesh sizes (point, edge, cell)\n",
		fp.Mesh.PointSize, fp.Mesh.EdgeSize, fp.Mesh.CellSize)
	fmt.Printf("%8.5f\t\t= CharacteristicLength\n", fp.Mesh.CharacteristicLength)
}

// MorphologyOptions returns the pipeline options these parameters select,
// checking the ones the pipeline would reject late.
func (fp *FoamParameters) MorphologyOptions() (opts morphology.Options, err error) {
	opts = morphology.DefaultOptions()
	if !(fp.WallThickness > 0 && fp.WallThickness < 1) {
		err = fmt.Errorf("WallThickness %g is outside (0,1)", fp.WallThickness)
		return
	}
	if fp.Tolerance <= 0 {
		err = fmt.Errorf("Tolerance must be positive, got %g", fp.Tolerance)
		return
	}
	if opts.BoxMethod, err = morphology.NewBoxMethod(fp.BoxMethod); err != nil {
		return
	}
	opts.WallThickness = fp.WallThickness
	opts.Tolerance = fp.Tolerance
	return
}

func (fp *FoamParameters) Sizing() geofile.Sizing {
	return geofile.Sizing{Point: fp.Mesh.PointSize, Edge: fp.Mesh.EdgeSize, Cell: fp.Mesh.CellSize}
}
