// Package scheduler is the periodic ticker that fires scheduled-triggered
// workflow invocations: one ticker per timezone, a Start/Stop lifecycle,
// and a callback invoked on every tick.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	alcron "github.com/alaingilbert/cron"
)

// Callback is invoked every time a scheduled trigger node's cron
// expression fires.
type Callback func(job Job)

// Job binds one scheduled-trigger node to the workflow it belongs to.
type Job struct {
	WorkflowID      string
	WorkflowVersion int
	NodeID          string
	CronExpr        string
	Timezone        string
}

func (j Job) key() string {
	return fmt.Sprintf("%s/%s", j.WorkflowID, j.NodeID)
}

type entry struct {
	cron *alcron.Cron
	id   alcron.EntryID
}

// Scheduler owns one alaingilbert/cron ticker per distinct timezone and
// registers one cron entry per scheduled trigger node.
type Scheduler struct {
	mu       sync.Mutex
	logger   *slog.Logger
	callback Callback
	tickers  map[string]*alcron.Cron
	entries  map[string]entry
	started  bool
}

// New builds a Scheduler. callback fires, on its own goroutine, every
// time a registered job's schedule ticks.
func New(logger *slog.Logger, callback Callback) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger:   logger.With("module", "scheduler"),
		callback: callback,
		tickers:  map[string]*alcron.Cron{},
		entries:  map[string]entry{},
	}
}

// Schedule registers or replaces the ticker entry for one scheduled
// trigger node. Safe to call before or after Start.
func (s *Scheduler) Schedule(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unschedule(j.key())

	loc, err := resolveLocation(j.Timezone)
	if err != nil {
		s.logger.Warn("unknown timezone, falling back to UTC", "timezone", j.Timezone, "error", err)
		loc = time.UTC
	}

	c, ok := s.tickers[loc.String()]
	if !ok {
		c = alcron.New().WithLocation(loc).WithSeconds().Build()
		if s.started {
			c.Start()
		}
		s.tickers[loc.String()] = c
	}

	spec := normalizeSpec(j.CronExpr)
	id, err := c.AddFunc(spec, func(context.Context, *alcron.Cron, alcron.JobRun) error {
		s.fire(j)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scheduler: register %s: %w", j.key(), err)
	}
	s.entries[j.key()] = entry{cron: c, id: id}
	s.logger.Info("scheduled trigger registered",
		"workflow_id", j.WorkflowID, "node_id", j.NodeID,
		"cron_expression", j.CronExpr, "timezone", loc.String())
	return nil
}

// Unschedule removes a previously registered job, if any.
func (s *Scheduler) Unschedule(workflowID, nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unschedule(Job{WorkflowID: workflowID, NodeID: nodeID}.key())
}

func (s *Scheduler) unschedule(key string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}
	e.cron.Remove(e.id)
	delete(s.entries, key)
}

// Start begins ticking every registered ticker. Jobs scheduled after
// Start start ticking immediately on registration.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	for _, c := range s.tickers {
		c.Start()
	}
}

// Stop drains every ticker, waiting for in-flight callback dispatches
// that were already in progress to be handed off.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	tickers := make([]*alcron.Cron, 0, len(s.tickers))
	for _, c := range s.tickers {
		tickers = append(tickers, c)
	}
	s.started = false
	s.mu.Unlock()

	for _, c := range tickers {
		select {
		case <-c.Stop():
		case <-ctx.Done():
		}
	}
}

func (s *Scheduler) fire(j Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled callback panicked", "workflow_id", j.WorkflowID, "node_id", j.NodeID, "panic", r)
		}
	}()
	s.logger.Info("scheduled trigger fired", "workflow_id", j.WorkflowID, "node_id", j.NodeID)
	go s.callback(j)
}

func resolveLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(tz)
}

// normalizeSpec pads a 5-field standard expression with a leading
// seconds field so both accepted shapes resolve through the same
// 6-field parser the ticker runs on.
func normalizeSpec(expr string) string {
	fields := strings.Fields(expr)
	if len(fields) == 5 {
		return "0 " + expr
	}
	return expr
}
