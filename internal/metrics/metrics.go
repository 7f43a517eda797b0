package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Usage metrics
	UsageMinutesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusd_usage_minutes_recorded_total",
			Help: "Total usage minutes recorded",
		},
		[]string{"category"},
	)

	// Alert metrics
	AlertsFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusd_alerts_fired_total",
			Help: "Total alerts shown to the user",
		},
		[]string{"kind"},
	)

	AlertsDismissed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusd_alerts_dismissed_total",
			Help: "Total alerts dismissed by the user",
		},
		[]string{"kind"},
	)

	RemindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focusd_reminders_sent_total",
			Help: "Total daily task reminders sent",
		},
	)

	// Streak metrics
	RewardsUnlocked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "focusd_rewards_unlocked_total",
			Help: "Total streak milestone rewards unlocked",
		},
	)

	StreakCurrentDays = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "focusd_streak_current_days",
			Help: "Length of the current focus streak in days",
		},
	)

	StreakLongestDays = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "focusd_streak_longest_days",
			Help: "Length of the longest recorded focus streak in days",
		},
	)
)

func init() {
	prometheus.MustRegister(
		UsageMinutesRecorded,
		AlertsFired,
		AlertsDismissed,
		RemindersSent,
		RewardsUnlocked,
		StreakCurrentDays,
		StreakLongestDays,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
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
