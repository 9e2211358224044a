package cubegate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// movesSubmitted counts accepted and rejected move requests.
	// Labels: axis, result (accepted, rejected)
	movesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cubegate",
		Subsystem: "engine",
		Name:      "moves_submitted_total",
		Help:      "Move requests received by the sequencer",
	}, []string{"axis", "result"})

	// movesCompleted counts moves reaching DONE.
	// Labels: status (ok, timeout, error)
	movesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cubegate",
		Subsystem: "engine",
		Name:      "moves_completed_total",
		Help:      "Moves that reached DONE",
	}, []string{"status"})

	// moveDuration measures APPLYING start to DONE, animation included.
	moveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cubegate",
		Subsystem: "engine",
		Name:      "move_duration_seconds",
		Help:      "Time from APPLYING to DONE per move",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.2, 0.3, 0.5, 1, 2, 5},
	})

	// queueDepth is the number of PENDING moves.
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cubegate",
		Subsystem: "engine",
		Name:      "queue_depth",
		Help:      "Moves waiting in the sequencer queue",
	})

	// faceTransitions counts solved/unsolved edges per face.
	// Labels: face, transition
	faceTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cubegate",
		Subsystem: "engine",
		Name:      "face_transitions_total",
		Help:      "Face solved-status transitions",
	}, []string{"face", "transition"})

	// resets counts accepted and rejected reset requests.
	// Labels: result (accepted, rejected)
	resets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cubegate",
		Subsystem: "engine",
		Name:      "resets_total",
		Help:      "Reset requests",
	}, []string{"result"})

	// consistencyFaults counts fatal engine corruption events.
	consistencyFaults = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "cubegate",
		Subsystem: "engine",
		Name:      "consistency_faults_total",
		Help:      "Internal consistency violations detected",
	})
)
