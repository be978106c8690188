/*
watcher.go - Background deadline watcher

PURPOSE:
  Periodically scans the portfolio for project deadlines (105-day delivery,
  physical work, placed-in-service) that are overdue or coming up, and logs
  them. The latest scan is kept for inspection.

DESIGN:
  - Runs on a cron schedule (robfig/cron)
  - Runs one check immediately on start
  - Reads projects through the Portfolio, never writes

CONFIGURATION:
  - Schedule: Cron expression or descriptor (default: "@every 1h")
  - Window: Days around today to report (default: DefaultAlertWindow)
  - Enabled: Whether watcher is active (default: true)

USAGE:
  watcher := NewDeadlineWatcher(portfolio)
  if err := watcher.Start(); err != nil { ... }
  // ... later
  watcher.Stop()

SEE ALSO:
  - handlers.go: ListAlerts endpoint (same computation, on demand)
  - safeharbor/alerts.go: UpcomingDeadlines
*/
package api

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/warp/safe-harbor-engine/generic"
	"github.com/warp/safe-harbor-engine/safeharbor"
)

// DefaultWatchSchedule checks deadlines once an hour.
const DefaultWatchSchedule = "@every 1h"

// DeadlineWatcher logs project deadline alerts on a schedule.
type DeadlineWatcher struct {
	Portfolio *safeharbor.Portfolio
	Schedule  string
	Window    int
	Enabled   bool

	now func() time.Time

	cron *cron.Cron
	wg   sync.WaitGroup
	mu   sync.Mutex

	lastMu    sync.RWMutex
	lastCheck time.Time
	lastAlert []safeharbor.Alert
}

// NewDeadlineWatcher creates a new watcher.
func NewDeadlineWatcher(portfolio *safeharbor.Portfolio) *DeadlineWatcher {
	return &DeadlineWatcher{
		Portfolio: portfolio,
		Schedule:  DefaultWatchSchedule,
		Window:    DefaultAlertWindow,
		Enabled:   true,
		now:       time.Now,
	}
}

// Start begins the watcher. An invalid Schedule is an error.
func (dw *DeadlineWatcher) Start() error {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if !dw.Enabled {
		log.Println("[Watcher] Disabled, not starting")
		return nil
	}
	if dw.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(dw.Schedule, func() { dw.check(context.Background()) }); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", dw.Schedule, err)
	}
	dw.cron = c
	c.Start()

	// Run immediately on start
	dw.wg.Add(1)
	go func() {
		defer dw.wg.Done()
		dw.check(context.Background())
	}()

	log.Printf("[Watcher] Started with schedule: %s", dw.Schedule)
	return nil
}

// Stop stops the watcher and waits for a running check to finish.
func (dw *DeadlineWatcher) Stop() {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.cron != nil {
		<-dw.cron.Stop().Done()
		dw.wg.Wait()
		dw.cron = nil
		log.Println("[Watcher] Stopped")
	}
}

// RunNow triggers an immediate check and returns its alerts.
func (dw *DeadlineWatcher) RunNow(ctx context.Context) ([]safeharbor.Alert, error) {
	return dw.check(ctx)
}

func (dw *DeadlineWatcher) check(ctx context.Context) ([]safeharbor.Alert, error) {
	now := dw.now()

	projects, err := dw.Portfolio.List(ctx)
	if err != nil {
		log.Printf("[Watcher] Error listing projects: %v", err)
		return nil, err
	}

	alerts := safeharbor.UpcomingDeadlines(projects, generic.FromTime(now), dw.Window)

	overdue := 0
	for _, a := range alerts {
		if a.Severity == safeharbor.SeverityOverdue {
			overdue++
		}
		log.Printf("[Watcher] %s: %s for %q on %s (%d days)",
			a.Severity, a.Deadline, a.ProjectName, a.Date, a.DaysRemaining)
	}
	if len(alerts) > 0 {
		log.Printf("[Watcher] Completed: %d alerts, %d overdue", len(alerts), overdue)
	}

	dw.lastMu.Lock()
	dw.lastCheck = now
	dw.lastAlert = alerts
	dw.lastMu.Unlock()

	return alerts, nil
}

// LastAlerts returns the alerts from the most recent check and when it ran.
func (dw *DeadlineWatcher) LastAlerts() ([]safeharbor.Alert, time.Time) {
	dw.lastMu.RLock()
	defer dw.lastMu.RUnlock()
	return append([]safeharbor.Alert(nil), dw.lastAlert...), dw.lastCheck
}

// NextRun returns when the next scheduled check will occur, or the zero
// time when the watcher isn't running.
func (dw *DeadlineWatcher) NextRun() time.Time {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.cron == nil {
		return time.Time{}
	}
	entries := dw.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
