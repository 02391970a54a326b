package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const NAMESPACE = "navigatorx"

// Metrics. prometheus collectors for intersection analysis and the http api.
type Metrics struct {
	IntersectionsBuilt   prometheus.Counter
	RoadsMerged          prometheus.Counter
	JoiningRoadsAdjusted prometheus.Counter
	AnalysisDuration     prometheus.Histogram
	httpDuration         *prometheus.HistogramVec
	responseStatusCode   *prometheus.CounterVec
	totalRequests        *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IntersectionsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "intersections_built_total",
			Help:      "The total number of intersections built from the road graph",
		}),
		RoadsMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "segregated_roads_merged_total",
			Help:      "The total number of road pairs merged into one arm",
		}),
		JoiningRoadsAdjusted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "joining_roads_adjusted_total",
			Help:      "The total number of arms whose angle was corrected for a nearby joining road",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: NAMESPACE,
			Name:      "intersection_analysis_duration_seconds",
			Help:      "The duration of analysing all incoming roads of one node",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05}, // 0.001 = 1ms
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: NAMESPACE,
			Name:      "request_duration_seconds",
			Help:      "The duration of request",
			Buckets:   []float64{0.05, 0.1, 0.15, 0.2, 0.25, 0.3},
		}, []string{"method", "path"}),
		responseStatusCode: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: NAMESPACE,
				Name:      "response_status_code",
				Help:      "The status code of http response",
			}, []string{"status", "method", "path"},
		),
		totalRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: NAMESPACE,
				Name:      "total_requests",
				Help:      "The total number of requests",
			}, []string{"path", "method", "status"},
		),
	}
	reg.MustRegister(m.IntersectionsBuilt, m.RoadsMerged, m.JoiningRoadsAdjusted, m.AnalysisDuration,
		m.httpDuration, m.responseStatusCode, m.totalRequests)
	return m
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func PromeHttpMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			rw := newResponseWriter(w)
			timer := prometheus.NewTimer(m.httpDuration.With(prometheus.Labels{"method": r.Method, "path": path}))

			next.ServeHTTP(rw, r)

			status := strconv.Itoa(rw.statusCode)
			m.responseStatusCode.With(prometheus.Labels{"status": status, "method": r.Method, "path": path}).Inc()
			m.totalRequests.With(prometheus.Labels{"path": path, "method": r.Method, "status": status}).Inc()
			timer.ObserveDuration()
		})
	}
}

// ObserveAnalysis. records one analysed node.
func (m *Metrics) ObserveAnalysis(start time.Time, intersections, merged, adjusted int) {
	m.IntersectionsBuilt.Add(float64(intersections))
	m.RoadsMerged.Add(float64(merged))
	m.JoiningRoadsAdjusted.Add(float64(adjusted))
	m.AnalysisDuration.Observe(time.Since(start).Seconds())
}
