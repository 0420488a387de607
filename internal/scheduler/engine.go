package scheduler

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/harunnryd/kioku/internal/briefing"
	"github.com/harunnryd/kioku/internal/config"
	"github.com/harunnryd/kioku/internal/store"

	"github.com/robfig/cron/v3"
)

// Engine runs the daemon's periodic maintenance: sweeping sessions that were
// left open past the idle limit, and refreshing exported briefings. Record
// mutations only mark the store dirty; the autosave loop owns persistence.
type Engine struct {
	store     *store.Store
	generator *briefing.Generator
	cron      *cron.Cron

	sweepSchedule    string
	briefingSchedule string
	maxIdle          time.Duration
	exportPath       string

	now func() time.Time
}

func NewEngine(st *store.Store, gen *briefing.Generator, cfg config.SchedulerConfig, exportPath string) (*Engine, error) {
	maxIdle, err := config.DurationOrDefault(cfg.MaxSessionIdle, config.DefaultSchedulerMaxSessionIdle)
	if err != nil {
		return nil, fmt.Errorf("parse max session idle: %w", err)
	}

	sweepSchedule := cfg.SweepSchedule
	if sweepSchedule == "" {
		sweepSchedule = config.DefaultSchedulerSweep
	}
	briefingSchedule := cfg.BriefingSchedule
	if briefingSchedule == "" {
		briefingSchedule = config.DefaultSchedulerBriefing
	}

	return &Engine{
		store:            st,
		generator:        gen,
		cron:             cron.New(),
		sweepSchedule:    sweepSchedule,
		briefingSchedule: briefingSchedule,
		maxIdle:          maxIdle,
		exportPath:       exportPath,
		now:              time.Now,
	}, nil
}

func (e *Engine) Start() error {
	if _, err := e.cron.AddFunc(e.sweepSchedule, func() {
		if n := e.SweepStaleSessions(); n > 0 {
			slog.Info("Swept stale sessions", "count", n)
		}
	}); err != nil {
		return fmt.Errorf("register sweep job: %w", err)
	}

	if e.exportPath != "" {
		if _, err := e.cron.AddFunc(e.briefingSchedule, e.RefreshBriefings); err != nil {
			return fmt.Errorf("register briefing job: %w", err)
		}
	}

	e.cron.Start()
	slog.Info("Scheduler started", "sweep", e.sweepSchedule, "briefing", e.briefingSchedule)
	return nil
}

// Stop halts scheduling and waits for any running job to finish.
func (e *Engine) Stop() {
	ctx := e.cron.Stop()
	<-ctx.Done()
	slog.Info("Scheduler stopped")
}

// SweepStaleSessions closes every open session whose entry time is older
// than the idle limit, stamping the exit at entry+maxIdle. Returns how many
// sessions were closed.
func (e *Engine) SweepStaleSessions() int {
	cutoff := e.now().UTC().Add(-e.maxIdle)

	closed := 0
	for _, projectID := range e.store.ProjectIDs() {
		for _, session := range e.store.GetSessionsByProject(projectID) {
			if session.ExitTime != nil || session.EntryTime.After(cutoff) {
				continue
			}
			exit := session.EntryTime.Add(e.maxIdle)
			session.ExitTime = &exit
			e.store.SaveSession(session)
			closed++
		}
	}
	return closed
}

// RefreshBriefings exports a plain-text briefing per project to the
// configured directory.
func (e *Engine) RefreshBriefings() {
	if err := os.MkdirAll(e.exportPath, 0755); err != nil {
		slog.Error("Failed to create briefing export dir", "path", e.exportPath, "error", err)
		return
	}

	for _, projectID := range e.store.ProjectIDs() {
		b := e.generator.ForProject(projectID)
		path := filepath.Join(e.exportPath, projectID+".txt")
		if err := b.Export(path); err != nil {
			slog.Error("Failed to export briefing", "project", projectID, "error", err)
		}
	}
}
