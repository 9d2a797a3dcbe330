package account

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "starkgo",
		Subsystem: "account",
		Name:      "submissions_total",
		Help:      "Number of transactions accepted by the node.",
	})
	nonceRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "starkgo",
		Subsystem: "account",
		Name:      "nonce_retries_total",
		Help:      "Number of resubmissions after a nonce conflict.",
	})
)
