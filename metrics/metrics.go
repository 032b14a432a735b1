// Package metrics records what a pipeline run did as Prometheus series. A batch
// run writes them once, at exit, to a node exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/notargets/gofoam/geometry3D/brep"
)

const namespace = "gofoam"

// Recorder implements morphology.Recorder on its own registry.
type Recorder struct {
	reg      *prometheus.Registry
	steps    *prometheus.HistogramVec
	merges   *prometheus.CounterVec
	walls    prometheus.Counter
	splits   *prometheus.CounterVec
	periodic *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		steps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of pipeline steps.",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 10),
		}, []string{"step"}),
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_removed_total",
			Help:      "Entities removed as duplicates, by kind.",
		}, []string{"kind"}),
		walls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "walls_created_total",
			Help:      "Wall volumes synthesized.",
		}),
		splits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loop_splits_total",
			Help:      "Loops split into an outer loop and a hole, by kind.",
		}, []string{"kind"}),
		periodic: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "periodic_pairs_total",
			Help:      "Periodic face pairs found, by axis.",
		}, []string{"axis"}),
	}
	r.reg.MustRegister(r.steps, r.merges, r.walls, r.splits, r.periodic)
	return r
}

// Registry exposes the series, for tests and an optional push.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

func (r *Recorder) ObserveStep(step string, d time.Duration) {
	r.steps.WithLabelValues(step).Observe(d.Seconds())
}

func (r *Recorder) AddMerges(rep brep.DuplicateReport) {
	r.merges.WithLabelValues(brep.PointKind.String()).Add(float64(rep.Points))
	r.merges.WithLabelValues(brep.EdgeKind.String()).Add(float64(rep.Edges))
	r.merges.WithLabelValues(brep.WireLoopKind.String()).Add(float64(rep.WireLoops))
}

func (r *Recorder) AddWalls(n int) { r.walls.Add(float64(n)) }

func (r *Recorder) AddSplits(kind brep.Kind, n int) {
	r.splits.WithLabelValues(kind.String()).Add(float64(n))
}

func (r *Recorder) AddPeriodicPairs(axis string, n int) {
	r.periodic.WithLabelValues(axis).Add(float64(n))
}

// WriteTextfile writes every series to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
