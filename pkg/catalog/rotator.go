package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/platinummonkey/samonya/pkg/observability"
	"github.com/robfig/cron/v3"
)

// DefaultRotationSchedule runs just after midnight
const DefaultRotationSchedule = "1 0 * * *"

// DailyInspiration is the trio shown on the dashboard for one day
type DailyInspiration struct {
	Date         string `json:"date"`
	Quote        string `json:"quote"`
	MarketingTip string `json:"marketing_tip"`
	DesignIdea   string `json:"design_idea"`
}

// Rotator picks the day's inspiration on a cron schedule
type Rotator struct {
	provider Provider
	logger   *observability.Logger
	now      func() time.Time
	cron     *cron.Cron
	current  atomic.Pointer[DailyInspiration]
}

// NewRotator creates a rotator and computes today's pick immediately
func NewRotator(provider Provider, logger *observability.Logger) *Rotator {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	r := &Rotator{
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
	r.Rotate()
	return r
}

// Pick selects the entries for the day containing t. Each list advances by
// one entry per day so the three lists drift independently.
func Pick(in Inspiration, t time.Time) DailyInspiration {
	day := int(t.UTC().Unix() / 86400)
	return DailyInspiration{
		Date:         t.UTC().Format("2006-01-02"),
		Quote:        pickEntry(in.Quotes, day),
		MarketingTip: pickEntry(in.MarketingTips, day),
		DesignIdea:   pickEntry(in.DesignIdeas, day),
	}
}

func pickEntry(list []string, day int) string {
	if len(list) == 0 {
		return ""
	}
	return list[day%len(list)]
}

// Rotate recomputes the current pick
func (r *Rotator) Rotate() {
	pick := Pick(r.provider.Current().Inspiration, r.now())
	r.current.Store(&pick)
	r.logger.WithField("date", pick.Date).Debug("Inspiration rotated")
}

// Today returns the current pick
func (r *Rotator) Today() DailyInspiration {
	return *r.current.Load()
}

// Start schedules rotation. An empty schedule uses DefaultRotationSchedule.
func (r *Rotator) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultRotationSchedule
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		defer observability.RecoverPanic(r.logger, "inspiration rotation")
		r.Rotate()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule inspiration rotation: %w", err)
	}
	r.cron = c
	c.Start()
	r.logger.WithField("schedule", schedule).Info("Inspiration rotator started")
	return nil
}

// Stop halts the scheduler and waits for a running rotation to finish
func (r *Rotator) Stop(ctx context.Context) error {
	if r.cron == nil {
		return nil
	}
	select {
	case <-r.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
