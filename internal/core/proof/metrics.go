package proof

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 生成证明次数
	proveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "proofsql",
		Subsystem: "query",
		Name:      "prove_total",
		Help:      "Total number of query proofs attempted, by outcome",
	}, []string{"outcome"})

	// 验证次数
	verifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "proofsql",
		Subsystem: "query",
		Name:      "verify_total",
		Help:      "Total number of query proof verifications, by outcome",
	}, []string{"outcome"})

	// 证明耗时
	proveDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "proofsql",
		Subsystem: "query",
		Name:      "prove_duration_seconds",
		Help:      "Duration of query proof generation in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	// 验证耗时
	verifyDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "proofsql",
		Subsystem: "query",
		Name:      "verify_duration_seconds",
		Help:      "Duration of query proof verification in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	// 编码后证明大小
	proofSizeBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "proofsql",
		Subsystem: "query",
		Name:      "proof_size_bytes",
		Help:      "Size of encoded query proofs in bytes",
		Buckets:   prometheus.ExponentialBuckets(1024, 2, 12),
	})
)

const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeRejected = "rejected"
)
