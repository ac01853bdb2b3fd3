// Package scheduler drives the draw lifecycle from outside the ledger: it
// opens draws on the hourly and daily slots, executes them once due and pays
// executed draws out.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/selector"
	"github.com/ArowuTest/jackpot-ledger/internal/services"
	"golang.org/x/exp/slog"
)

// Config controls which cadences the scheduler opens and how often it runs.
type Config struct {
	Interval time.Duration
	Hourly   bool
	Daily    bool
	// DailyHour is the UTC hour of the daily draw.
	DailyHour int
	// MinJackpot skips opening a draw whose pool is below it.
	MinJackpot uint64
}

// Report counts what one pass did.
type Report struct {
	Created   int
	Executed  int
	Cancelled int
	Paid      int
	Failed    int
}

// Scheduler calls the lottery service as the operator identity.
type Scheduler struct {
	svc      services.LotteryService
	selector services.WinnerSelector
	operator string
	cfg      Config
	now      func() time.Time
}

// New creates a Scheduler
func New(svc services.LotteryService, sel services.WinnerSelector, operator string, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Scheduler{
		svc:      svc,
		selector: sel,
		operator: operator,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Run executes a pass every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "interval", s.cfg.Interval, "hourly", s.cfg.Hourly, "daily", s.cfg.Daily)
	for {
		s.RunOnce(ctx)
		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single pass: pay, execute, then create.
func (s *Scheduler) RunOnce(ctx context.Context) Report {
	var report Report

	state, err := s.svc.GetLotteryState(ctx)
	if err != nil {
		slog.Error("Scheduler cannot read ledger state", "error", err)
		report.Failed++
		return report
	}
	if state.IsPaused || state.EmergencyStop {
		slog.Info("Scheduler idle while suspended", "isPaused", state.IsPaused, "emergencyStop", state.EmergencyStop)
		return report
	}

	now := s.now()
	s.payProcessing(ctx, &report)
	s.executeDue(ctx, now, &report)
	s.createNext(ctx, now, &report)

	if report != (Report{}) {
		slog.Info("Scheduler pass complete", "created", report.Created, "executed", report.Executed,
			"cancelled", report.Cancelled, "paid", report.Paid, "failed", report.Failed)
	}
	return report
}

func (s *Scheduler) payProcessing(ctx context.Context, report *Report) {
	draws, err := s.svc.ListDraws(ctx, models.DrawStatusProcessing)
	if err != nil {
		slog.Error("Failed to list processing draws", "error", err)
		report.Failed++
		return
	}
	for _, d := range draws {
		if _, err := s.svc.PayWinner(ctx, d.Winner, d.Cadence, d.SequenceID); err != nil {
			slog.Error("Payout failed", "draw", d.ID, "error", err)
			report.Failed++
			continue
		}
		report.Paid++
	}
}

func (s *Scheduler) executeDue(ctx context.Context, now time.Time, report *Report) {
	draws, err := s.svc.ListDraws(ctx, models.DrawStatusPending)
	if err != nil {
		slog.Error("Failed to list pending draws", "error", err)
		report.Failed++
		return
	}
	for _, d := range draws {
		if now.Before(d.ScheduledTime) {
			continue
		}
		_, err := s.svc.ExecuteWithSelector(ctx, s.operator, d.Cadence, d.SequenceID, s.selector)
		switch {
		case err == nil:
			report.Executed++
		case unexecutable(err):
			// The frozen snapshot can never satisfy execution; close the draw
			// so the cadence keeps moving.
			if _, cerr := s.svc.CancelLottery(ctx, s.operator, d.Cadence, d.SequenceID, reason(err)); cerr != nil {
				slog.Error("Failed to cancel draw", "draw", d.ID, "error", cerr)
				report.Failed++
				continue
			}
			report.Cancelled++
		default:
			slog.Error("Draw execution failed", "draw", d.ID, "error", err)
			report.Failed++
		}
	}
}

func (s *Scheduler) createNext(ctx context.Context, now time.Time, report *Report) {
	// Executions earlier in the pass moved the pools.
	state, err := s.svc.GetLotteryState(ctx)
	if err != nil {
		slog.Error("Scheduler cannot read ledger state", "error", err)
		report.Failed++
		return
	}
	pending, err := s.svc.ListDraws(ctx, models.DrawStatusPending)
	if err != nil {
		slog.Error("Failed to list pending draws", "error", err)
		report.Failed++
		return
	}

	for _, cadence := range models.Cadences {
		if !s.enabled(cadence) {
			continue
		}
		// An open draw already holds a snapshot of the live pool; a second
		// one would be paid from the same funds.
		if hasPending(pending, cadence) {
			continue
		}
		slot := NextSlot(cadence, now, s.cfg.DailyHour)
		if pool := state.Pool(cadence); pool == 0 || pool < s.cfg.MinJackpot {
			slog.Debug("Pool too small to open a draw", "cadence", cadence, "pool", pool)
			continue
		}

		sequence := state.DrawCount(cadence) + 1
		draw, err := s.svc.CreateLottery(ctx, s.operator, services.CreateDrawRequest{
			Cadence:       cadence,
			ScheduledTime: slot,
			SequenceID:    &sequence,
		})
		if err != nil {
			slog.Error("Failed to create draw", "cadence", cadence, "slot", slot, "error", err)
			report.Failed++
			continue
		}
		state.SetDrawCount(cadence, draw.SequenceID)
		report.Created++
	}
}

func (s *Scheduler) enabled(c models.Cadence) bool {
	if c == models.CadenceDaily {
		return s.cfg.Daily
	}
	return s.cfg.Hourly
}

// NextSlot returns the next scheduled time of a cadence strictly after now:
// the top of the next hour, or the next occurrence of dailyHour UTC.
func NextSlot(c models.Cadence, now time.Time, dailyHour int) time.Time {
	now = now.UTC()
	if c == models.CadenceHourly {
		return now.Truncate(time.Hour).Add(time.Hour)
	}
	slot := time.Date(now.Year(), now.Month(), now.Day(), dailyHour, 0, 0, 0, time.UTC)
	if !slot.After(now) {
		slot = slot.AddDate(0, 0, 1)
	}
	return slot
}

func hasPending(draws []*models.Draw, c models.Cadence) bool {
	for _, d := range draws {
		if d.Cadence == c {
			return true
		}
	}
	return false
}

func unexecutable(err error) bool {
	return errors.Is(err, models.ErrNoParticipants) ||
		errors.Is(err, models.ErrInsufficientJackpot) ||
		errors.Is(err, selector.ErrNoTickets)
}

func reason(err error) string {
	var lerr *models.LotteryError
	if errors.As(err, &lerr) {
		return lerr.Name
	}
	return "no eligible tickets"
}
