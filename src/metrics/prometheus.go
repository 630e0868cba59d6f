package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"socialdex/src/datamodels"
)

var (
	ObservationsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "socialdex",
		Name:      "observations_written_total",
		Help:      "Follower observations written by the crawler.",
	})

	CrawlFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialdex",
		Name:      "crawl_failures_total",
		Help:      "Authors skipped during a crawl, by platform.",
	}, []string{"platform"})

	IndexBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialdex",
		Name:      "index_builds_total",
		Help:      "Index builds by outcome.",
	}, []string{"outcome"})

	IndexBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "socialdex",
		Name:      "index_build_duration_seconds",
		Help:      "Wall time of a full index build.",
		Buckets:   prometheus.DefBuckets,
	})

	IndexWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "socialdex",
		Name:      "index_write_errors_total",
		Help:      "Failed index writer calls.",
	})

	IndexLastValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "socialdex",
		Name:      "index_last_value",
		Help:      "Latest value of each index, in units of the display divisor.",
	}, []string{"index"})
)

// PrometheusIndexWriter exports the last value of each index as a gauge.
type PrometheusIndexWriter struct{}

func NewPrometheusIndexWriter() *PrometheusIndexWriter {
	return &PrometheusIndexWriter{}
}

// Write replaces every gauge, so indices missing from this run stop being exported.
func (w *PrometheusIndexWriter) Write(ctx context.Context, result *datamodels.IndexResult) error {
	IndexLastValue.Reset()
	for name, series := range result.Indices {
		if len(series.Points) == 0 {
			continue
		}
		IndexLastValue.WithLabelValues(name).Set(series.Points[len(series.Points)-1].Value)
	}
	return nil
}

func (w *PrometheusIndexWriter) Close() error {
	return nil
}
