// Package monitor polls the deployed Space's runtime on a cron schedule and
// publishes each result as an event.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"
	"github.com/mtzanidakis/gse/internal/config"
	"github.com/mtzanidakis/gse/internal/hfspace"
	"github.com/mtzanidakis/gse/internal/metrics"
	"github.com/mtzanidakis/gse/internal/natsbus"
)

var ErrNotConfigured = errors.New("hf username, space name and token are required")

// RuntimeFetcher is satisfied by *hfspace.Client.
type RuntimeFetcher interface {
	Runtime(ctx context.Context, repoID string) (*hfspace.Runtime, error)
}

// Status is the payload of a space status event.
type Status struct {
	RepoID    string  `json:"repo_id"`
	Stage     string  `json:"stage,omitempty"`
	Hardware  *string `json:"hardware"`
	Requested *string `json:"requested"`
	Error     string  `json:"error,omitempty"`
}

type Monitor struct {
	fetcher RuntimeFetcher
	repoID  string
	expr    string
	pub     natsbus.Publisher
	metrics *metrics.Metrics
}

// New validates the schedule and credentials. Callers skip the monitor when
// cfg.Schedule is empty.
func New(cfg config.MonitorConfig, hf config.HFConfig, pub natsbus.Publisher, m *metrics.Metrics) (*Monitor, error) {
	if !gronx.New().IsValid(cfg.Schedule) {
		return nil, fmt.Errorf("invalid monitor schedule: %q", cfg.Schedule)
	}

	user, _ := hf.Username.Get()
	space, _ := hf.SpaceName.Get()
	token, _ := hf.Token.Get()
	if user == "" || space == "" || token == "" {
		return nil, ErrNotConfigured
	}

	return &Monitor{
		fetcher: hfspace.NewClient(hf.Endpoint, token),
		repoID:  hfspace.RepoID(user, space),
		expr:    cfg.Schedule,
		pub:     pub,
		metrics: m,
	}, nil
}

// Start runs until ctx is cancelled, checking the Space at every cron tick.
func (m *Monitor) Start(ctx context.Context) {
	slog.Info("space monitor started", "repo", m.repoID, "schedule", m.expr)

	for {
		next, err := gronx.NextTickAfter(m.expr, time.Now(), false)
		if err != nil {
			slog.Error("space monitor schedule failed", "error", err)
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("space monitor stopped")
			return
		case <-timer.C:
			if _, err := m.Check(ctx); err != nil {
				slog.Warn("space status check failed", "repo", m.repoID, "error", err)
			}
		}
	}
}

// Check fetches the runtime once and publishes the result, including failures.
func (m *Monitor) Check(ctx context.Context) (Status, error) {
	st := Status{RepoID: m.repoID}

	rt, err := m.fetcher.Runtime(ctx, m.repoID)
	if err != nil {
		st.Error = err.Error()
	} else {
		st.Stage = rt.Stage
		st.Hardware = rt.Hardware.Current
		st.Requested = rt.Hardware.Requested
	}

	if m.metrics != nil {
		m.metrics.SpaceChecked(err)
	}
	if pubErr := m.pub.PublishJSON(natsbus.TopicEventsSpaceStatus, natsbus.NewEvent("space.status", st)); pubErr != nil {
		slog.Warn("publish space status failed", "error", pubErr)
	}
	return st, err
}
