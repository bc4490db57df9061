package runner

import "github.com/prometheus/client_golang/prometheus"

// runnerMetrics is registered lazily per ReactiveRunner instance, mirroring
// tool.newCallDurationMetric's per-instance registration so multiple
// runners in tests don't collide on a shared registry (spec.md §6.5).
type runnerMetrics struct {
	ticks           *prometheus.CounterVec
	hotLoopWarnings *prometheus.CounterVec
}

func newRunnerMetrics(registerer prometheus.Registerer) *runnerMetrics {
	m := &runnerMetrics{
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "btflow",
			Subsystem: "runner",
			Name:      "ticks_total",
			Help:      "Total ticks executed by a ReactiveRunner's run loop.",
		}, []string{"thread_id"}),
		hotLoopWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "btflow",
			Subsystem: "runner",
			Name:      "hot_loop_warnings_total",
			Help:      "Hot-loop warnings emitted (more than 1.5x max_fps ticks in under a second).",
		}, []string{"thread_id"}),
	}
	if registerer != nil {
		registerer.MustRegister(m.ticks, m.hotLoopWarnings)
	}
	return m
}
