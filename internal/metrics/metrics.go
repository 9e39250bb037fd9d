package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// API request metrics
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screentime_api_requests_total",
			Help: "Total number of API requests processed",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screentime_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Activity metrics
	SessionsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screentime_sessions_recorded_total",
			Help: "Total app-usage sessions recorded",
		},
		[]string{"session_type"},
	)

	SessionMinutesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screentime_session_minutes_recorded_total",
			Help: "Total app-usage minutes recorded",
		},
		[]string{"session_type"},
	)

	FocusMinutesCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "screentime_focus_minutes_completed_total",
			Help: "Total completed focus minutes",
		},
	)

	NudgesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screentime_nudges_recorded_total",
			Help: "Total nudges recorded",
		},
		[]string{"response"},
	)

	// Analysis metrics
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screentime_analysis_duration_seconds",
			Help:    "Time spent computing a report",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"report"},
	)

	AnalysisFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screentime_analysis_failures_total",
			Help: "Reports that failed because the store could not be read",
		},
		[]string{"report"},
	)

	// RiskLevel is 1 for the most recently computed risk level and 0 for the others.
	RiskLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "screentime_behavior_risk_level",
			Help: "Most recently computed behavior risk level",
		},
		[]string{"level"},
	)

	// Retention metrics
	RetentionDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "screentime_retention_deleted_total",
			Help: "Activity records removed by the retention job",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		SessionsRecorded,
		SessionMinutesRecorded,
		FocusMinutesCompleted,
		NudgesRecorded,
		AnalysisDuration,
		AnalysisFailures,
		RiskLevel,
		RetentionDeleted,
	)
}

// SetRiskLevel marks level as the current risk level.
func SetRiskLevel(level string) {
	for _, l := range []string{"low", "medium", "high"} {
		value := 0.0
		if l == level {
			value = 1
		}
		RiskLevel.WithLabelValues(l).Set(value)
	}
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: Handler(),
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Handler returns the mux serving /metrics and /health.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		var err error
		if s.listener != nil {
			s.logger.Debug().Msg("Using systemd socket-activated metrics listener")
			err = s.server.Serve(s.listener)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
