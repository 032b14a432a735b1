package morphology

import (
	"fmt"
	"strings"

	"github.com/notargets/gofoam/geometry3D/brep"
)

// StepError names the pipeline step a fatal error came from.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// BoxMethod selects how a tessellated foam is wrapped into the periodic box.
type BoxMethod uint8

const (
	BoxNone BoxMethod = iota // input is already boxed
	BoxGmsh
	BoxOCC
)

var boxMethodNames = [...]string{"none", "gmsh", "occ"}

func (m BoxMethod) String() string {
	if int(m) >= len(boxMethodNames) {
		return "unknown"
	}
	return boxMethodNames[m]
}

func NewBoxMethod(name string) (BoxMethod, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return BoxNone, nil
	case "pythonocc":
		return BoxOCC, nil
	}
	for i, n := range boxMethodNames {
		if n == name {
			return BoxMethod(i), nil
		}
	}
	return BoxNone, fmt.Errorf("unknown box method %q, use one of %s", name, strings.Join(boxMethodNames[:], ", "))
}

// check fails for the methods needing boolean operations of a geometry
// kernel, none of which is driven from here.
func (m BoxMethod) check() error {
	if m == BoxNone {
		return nil
	}
	return &brep.EntityError{Kind: -1, Err: brep.ErrUnsupportedKernelMethod, Detail: m.String()}
}
