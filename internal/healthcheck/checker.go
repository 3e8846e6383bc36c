package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Status struct {
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	LatencyMS int64     `json:"latency_ms"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker answers readiness probes by pinging the dataset on demand.
type Checker struct {
	store   Pinger
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewChecker(store Pinger, timeout time.Duration, logger *zap.Logger) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		store:   store,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *Checker) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := c.now()
	err := c.store.Ping(ctx)
	status := Status{
		Status:    "ok",
		LatencyMS: c.now().Sub(start).Milliseconds(),
		CheckedAt: start.UTC(),
	}
	if err != nil {
		c.logger.Warn("Dataset health check failed", zap.Error(err))
		status.Status = "unavailable"
		status.Error = err.Error()
	}
	return status
}

func (c *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := c.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if status.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}
