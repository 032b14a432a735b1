// Package morphology runs the geometry repair steps between tessellation and
// meshing: wall synthesis on the tessellated cells, and finalisation of the
// boxed foam (deduplication, loop splitting, boundary and periodic faces).
package morphology

import (
	"fmt"
	"log"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/gofoam/geometry3D/brep"
	"github.com/notargets/gofoam/geometry3D/geofile"
)

// Recorder receives pipeline measurements. A nil Recorder in Options
// discards them.
type Recorder interface {
	ObserveStep(step string, d time.Duration)
	AddMerges(rep brep.DuplicateReport)
	AddWalls(n int)
	AddSplits(kind brep.Kind, n int)
	AddPeriodicPairs(axis string, n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStep(string, time.Duration) {}
func (nopRecorder) AddMerges(brep.DuplicateReport)    {}
func (nopRecorder) AddWalls(int)                      {}
func (nopRecorder) AddSplits(brep.Kind, int)          {}
func (nopRecorder) AddPeriodicPairs(string, int)      {}

type Options struct {
	WallThickness     float64 // shrink factor w in (0,1)
	Tolerance         float64 // duplicate merge, L1
	PlaneTolerance    float64 // distance from a box side
	PeriodicTolerance float64 // point correspondence, L1
	Domain            geofile.Box
	BoxMethod         BoxMethod
	Verbose           bool
	Metrics           Recorder
}

func DefaultOptions() Options {
	return Options{
		WallThickness:     0.02,
		Tolerance:         brep.DefaultTolerance,
		PlaneTolerance:    1e-8,
		PeriodicTolerance: 1e-8,
		Domain:            geofile.UnitBox,
	}
}

func (o *Options) recorder() Recorder {
	if o.Metrics == nil {
		return nopRecorder{}
	}
	return o.Metrics
}

// step times fn, reports it and wraps its error with the step name.
func (o *Options) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	o.recorder().ObserveStep(name, time.Since(start))
	if err != nil {
		return &StepError{Step: name, Err: err}
	}
	if o.Verbose {
		log.Printf("%s done in %v", name, time.Since(start))
	}
	return nil
}

/*
AddWalls turns a tessellated foam into cells and walls. Physical surfaces from
the tessellator are dropped and loop orientation is stripped before each cell
is shrunk by opts.WallThickness. Both outputs are deduplicated.
*/
func AddWalls(s *brep.Store, opts Options) (cells, walls *brep.Store, err error) {
	err = opts.step("strip orientation", func() error {
		s.PhysicalSurfaces = make(map[int]brep.PhysicalGroup)
		s.StripOrientation()
		return nil
	})
	if err != nil {
		return
	}
	err = opts.step("create walls", func() (err error) {
		cells, walls, err = brep.CreateWalls(s, opts.WallThickness, opts.Tolerance)
		return
	})
	if err != nil {
		return nil, nil, err
	}
	opts.recorder().AddWalls(walls.Len(brep.VolumeKind))
	if opts.Verbose {
		log.Printf("%d cells, %d walls", cells.Len(brep.VolumeKind), walls.Len(brep.VolumeKind))
	}
	return
}

// Report is what Finalize found.
type Report struct {
	Duplicates              brep.DuplicateReport
	WireSplits, ShellSplits int
	Bottom, Top, Other      []int // boundary faces on z min, on z max, elsewhere
	PeriodicX, PeriodicY    [][2]int
}

func (r *Report) Print() {
	fmt.Printf("Removed duplicates: %d points, %d lines, %d line loops\n",
		r.Duplicates.Points, r.Duplicates.Edges, r.Duplicates.WireLoops)
	fmt.Printf("Split loops: %d line loops, %d surface loops\n", r.WireSplits, r.ShellSplits)
	fmt.Printf("Z=min surface IDs: %v\n", r.Bottom)
	fmt.Printf("Z=max surface IDs: %v\n", r.Top)
	fmt.Printf("other boundary surface IDs: %v\n", r.Other)
	fmt.Printf("surface IDs periodic in X: %v\n", r.PeriodicX)
	fmt.Printf("surface IDs periodic in Y: %v\n", r.PeriodicY)
}

/*
Finalize prepares a boxed foam for meshing, in place:

	remove duplicates -> split line loops -> split surface loops ->
	faces on the z sides -> other boundary faces -> periodic pairs in x, y ->
	physical volume 1 of all volumes -> referential integrity

The first failing step aborts the pipeline with a *StepError.
*/
func Finalize(s *brep.Store, opts Options) (rep *Report, err error) {
	var (
		rec = opts.recorder()
		box = opts.Domain
	)
	rep = &Report{}
	if err = opts.step("box", opts.BoxMethod.check); err != nil {
		return nil, err
	}
	steps := []struct {
		name string
		fn   func() error
	}{
		{"remove duplicates", func() error {
			rep.Duplicates = s.RemoveDuplicates(opts.Tolerance)
			rec.AddMerges(rep.Duplicates)
			return nil
		}},
		{"split line loops", func() (err error) {
			rep.WireSplits, err = s.SplitLoops(brep.WireLoopKind)
			rec.AddSplits(brep.WireLoopKind, rep.WireSplits)
			return
		}},
		{"split surface loops", func() (err error) {
			rep.ShellSplits, err = s.SplitLoops(brep.ShellLoopKind)
			rec.AddSplits(brep.ShellLoopKind, rep.ShellSplits)
			return
		}},
		{"plane surfaces", func() (err error) {
			if rep.Bottom, err = s.FacesInPlane(box.Min.Z, 2, opts.PlaneTolerance); err != nil {
				return
			}
			rep.Top, err = s.FacesInPlane(box.Max.Z, 2, opts.PlaneTolerance)
			return
		}},
		{"other surfaces", func() (err error) {
			exclude := append(append([]int(nil), rep.Bottom...), rep.Top...)
			rep.Other, err = s.BoundaryFaces(exclude)
			return
		}},
		{"periodic x", func() (err error) {
			t := r3.Vec{X: box.Max.X - box.Min.X}
			if rep.PeriodicX, err = s.PeriodicFaces(rep.Other, t, opts.PeriodicTolerance); err != nil {
				return
			}
			s.AddPeriodic(rep.PeriodicX, t)
			rec.AddPeriodicPairs("x", len(rep.PeriodicX))
			return
		}},
		{"periodic y", func() (err error) {
			t := r3.Vec{Y: box.Max.Y - box.Min.Y}
			if rep.PeriodicY, err = s.PeriodicFaces(rep.Other, t, opts.PeriodicTolerance); err != nil {
				return
			}
			s.AddPeriodic(rep.PeriodicY, t)
			rec.AddPeriodicPairs("y", len(rep.PeriodicY))
			return
		}},
		{"physical volume", func() error {
			s.PhysicalVolumes = map[int]brep.PhysicalGroup{
				1: {Members: brep.SortedIDs(s.Volumes)},
			}
			return nil
		}},
		{"validate", s.Validate},
	}
	for _, st := range steps {
		if err = opts.step(st.name, st.fn); err != nil {
			return nil, err
		}
	}
	if opts.Verbose {
		rep.Print()
	}
	return rep, nil
}
