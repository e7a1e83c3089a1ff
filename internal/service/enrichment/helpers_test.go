package enrichment

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func testPolicy() Policy {
	return Policy{
		DispatchInterval:  time.Hour,
		BacklogInterval:   time.Hour,
		BacklogBatchSize:  10,
		MaxRetries:        3,
		RetryDelay:        time.Hour,
		AnalysisTimeout:   time.Second,
		ContextIdeasLimit: 50,
		TagWorkers:        4,
	}
}
