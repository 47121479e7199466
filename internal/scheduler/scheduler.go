package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/payalert-labs/payalert/internal/config"
	"github.com/payalert-labs/payalert/internal/reminder"
	"github.com/payalert-labs/payalert/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler triggers per-mode reminder sweeps from in-process cron
// entries, for deployments without an external cron hitting the HTTP
// trigger endpoint.
type Scheduler struct {
	cron     *cron.Cron
	dispatch *service.DispatchService
	log      *logrus.Logger
	timeout  time.Duration
}

// New wires one cron entry per configured mode expression. An empty
// expression disables that mode's entry.
func New(cfg *config.Config, dispatch *service.DispatchService, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		dispatch: dispatch,
		log:      log,
		timeout:  cfg.Reminder.SweepTimeout,
	}
	if s.timeout <= 0 {
		s.timeout = 2 * time.Minute
	}

	entries := []struct {
		mode reminder.Mode
		spec string
	}{
		{reminder.ModeMorning, cfg.Cron.Morning},
		{reminder.ModeAfternoon, cfg.Cron.Afternoon},
		{reminder.ModeEvening, cfg.Cron.Evening},
	}
	for _, entry := range entries {
		spec := strings.TrimSpace(entry.spec)
		if spec == "" {
			continue
		}
		mode := entry.mode
		if _, err := s.cron.AddFunc(spec, func() { s.runOnce(mode) }); err != nil {
			return nil, fmt.Errorf("cron spec for %s: %w", mode, err)
		}
	}
	return s, nil
}

// Start begins firing scheduled sweeps.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling; running sweeps finish under their own timeout.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runOnce(mode reminder.Mode) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	result, err := s.dispatch.RunSweep(ctx, mode, time.Now())
	if err != nil {
		s.log.WithError(err).WithField("mode", string(mode)).Error("scheduled sweep failed")
		return
	}
	if len(result.Errors) > 0 {
		s.log.WithFields(logrus.Fields{
			"mode":   string(mode),
			"errors": len(result.Errors),
		}).Warn("scheduled sweep finished with delivery errors")
	}
}
