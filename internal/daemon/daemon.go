package daemon

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/eventloom/eventloom/internal/engine"
)

// Daemon drives the engine's periodic overdue re-evaluation on a fixed
// cadence. The engine itself never reads the wall clock for this; the
// daemon is the one place that does.
type Daemon struct {
	cron     *cron.Cron
	engine   *engine.Engine
	interval time.Duration
	logf     func(format string, args ...any)
}

func New(eng *engine.Engine, interval time.Duration) (*Daemon, error) {
	if eng == nil {
		return nil, fmt.Errorf("daemon: nil engine")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("daemon: interval must be positive, got %s", interval)
	}
	return &Daemon{
		cron:     cron.New(cron.WithSeconds()),
		engine:   eng,
		interval: interval,
		logf:     log.Printf,
	}, nil
}

// Start runs one immediate re-evaluation pass so overdue tasks get
// notified right at launch, then schedules the recurring cadence.
func (d *Daemon) Start(ctx context.Context) error {
	d.reevaluate(ctx)

	spec := fmt.Sprintf("@every %ds", int(d.interval.Seconds()))
	if _, err := d.cron.AddFunc(spec, func() { d.reevaluate(ctx) }); err != nil {
		return fmt.Errorf("daemon: schedule reevaluation: %w", err)
	}
	d.cron.Start()
	return nil
}

// Stop halts the cadence and waits for any in-flight pass to finish.
func (d *Daemon) Stop() {
	<-d.cron.Stop().Done()
}

func (d *Daemon) reevaluate(ctx context.Context) {
	if err := d.engine.Reevaluate(ctx, time.Now()); err != nil {
		d.logf("daemon: reevaluate: %v", err)
	}
}
