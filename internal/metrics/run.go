// Package metrics records the timings and outcomes of a comparison run in a
// Prometheus registry that can be written out as a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "abcompare"

// Outcome labels for subprocess counts.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder holds the metrics of a single run. It owns a private registry so
// that runs never share state.
type Recorder struct {
	registry *prometheus.Registry

	stateDuration *prometheus.GaugeVec
	subprocesses  *prometheus.CounterVec
	reachability  *prometheus.GaugeVec
	hostCPU       prometheus.Gauge
	hostMemory    prometheus.Gauge
	runSuccess    prometheus.Gauge
}

// NewRecorder creates a Recorder with all run metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stateDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_duration_seconds",
			Help:      "Wall-clock time spent in each run state.",
		}, []string{"state"}),
		subprocesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subprocess_total",
			Help:      "Foreground commands run, by outcome.",
		}, []string{"outcome"}),
		reachability: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reachability_attempts",
			Help:      "Probes needed before a variant server answered.",
		}, []string{"variant"}),
		hostCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_cpu_percent",
			Help:      "Host CPU usage sampled before the comparison.",
		}),
		hostMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_memory_percent",
			Help:      "Host memory usage sampled before the comparison.",
		}),
		runSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_success",
			Help:      "1 when the comparison completed, 0 otherwise.",
		}),
	}
	r.registry.MustRegister(r.stateDuration, r.subprocesses, r.reachability, r.hostCPU, r.hostMemory, r.runSuccess)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveState records the time spent in state.
func (r *Recorder) ObserveState(state string, d time.Duration) {
	r.stateDuration.WithLabelValues(state).Set(d.Seconds())
}

// ObserveSubprocess counts a finished foreground command.
func (r *Recorder) ObserveSubprocess(err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	r.subprocesses.WithLabelValues(outcome).Inc()
}

// ObserveReachability records how many probes a variant server needed.
func (r *Recorder) ObserveReachability(variant string, attempts int) {
	r.reachability.WithLabelValues(variant).Set(float64(attempts))
}

// ObserveHost records a host load sample.
func (r *Recorder) ObserveHost(cpuPercent, memPercent float64) {
	r.hostCPU.Set(cpuPercent)
	r.hostMemory.Set(memPercent)
}

// SetRunSuccess records the overall outcome.
func (r *Recorder) SetRunSuccess(ok bool) {
	if ok {
		r.runSuccess.Set(1)
		return
	}
	r.runSuccess.Set(0)
}

// WriteToTextfile writes every metric to path in the text exposition
// format. The file is replaced atomically.
func (r *Recorder) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
