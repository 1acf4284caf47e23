package admission

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	admissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skypark",
		Name:      "admissions_total",
		Help:      "入场请求总数，按设施和结果区分",
	}, []string{"attraction", "result"})

	exitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skypark",
		Name:      "exits_total",
		Help:      "离场请求总数，按设施和结果区分",
	}, []string{"attraction", "result"})

	occupancyGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "skypark",
		Name:      "occupancy",
		Help:      "设施当前在园人数",
	}, []string{"attraction"})

	scoringDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skypark",
		Name:      "scoring_duration_seconds",
		Help:      "入场计分耗时",
		Buckets:   prometheus.DefBuckets,
	})
)

// RecordAdmission 记录一次入场请求的结果。
func RecordAdmission(attraction, result string) {
	admissionsTotal.WithLabelValues(attraction, result).Inc()
}

// RecordExit 记录一次离场请求的结果。
func RecordExit(attraction, result string) {
	exitsTotal.WithLabelValues(attraction, result).Inc()
}

// SetOccupancy 更新设施在园人数指标。
func SetOccupancy(attraction string, occupancy int64) {
	occupancyGauge.WithLabelValues(attraction).Set(float64(occupancy))
}
