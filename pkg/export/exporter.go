package export

import (
	"context"
	"time"

	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/gate"
	"github.com/platinummonkey/samonya/pkg/observability"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentUploads bounds parallel Store.Put calls per export
const maxConcurrentUploads = 4

// Exporter builds artifacts and stores them
type Exporter struct {
	store   Store
	gate    *gate.Gate
	logger  *observability.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// Options configures an Exporter
type Options struct {
	Store   Store
	Gate    *gate.Gate
	Logger  *observability.Logger
	Metrics *observability.Metrics
	Now     func() time.Time
}

// NewExporter creates an exporter. A nil Store means InlineStore.
func NewExporter(opts Options) *Exporter {
	if opts.Store == nil {
		opts.Store = InlineStore{}
	}
	if opts.Gate == nil {
		opts.Gate = gate.New(opts.Metrics)
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Exporter{
		store:   opts.Store,
		gate:    opts.Gate,
		logger:  opts.Logger.WithField("component", "export"),
		metrics: opts.Metrics,
		now:     opts.Now,
	}
}

// Export builds the artifacts of content and stores them concurrently.
// Locations come back in artifact order.
func (e *Exporter) Export(ctx context.Context, sessionID string, tier catalog.Tier, toolName, content string, format Format) ([]Location, error) {
	if err := e.gate.CheckDownload(tier); err != nil {
		e.observe(format, "denied")
		return nil, err
	}

	artifacts, err := Build(content, toolName, format, tier, e.now())
	if err != nil {
		e.observe(format, "invalid")
		return nil, err
	}
	if len(artifacts) == 0 {
		e.observe(format, "empty")
		return nil, ErrNothingToExport
	}

	locations := make([]Location, len(artifacts))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentUploads)
	for i, a := range artifacts {
		i, a := i, a
		eg.Go(func() error {
			loc, err := e.store.Put(egCtx, sessionID, a)
			if err != nil {
				return err
			}
			locations[i] = loc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		e.logger.WithError(err).WithField("session_id", sessionID).Error("Export upload failed")
		e.observe(format, "failed")
		return nil, err
	}

	e.logger.WithFields(map[string]interface{}{
		"session_id": sessionID,
		"format":     format,
		"artifacts":  len(locations),
	}).Info("Exported content")
	e.observe(format, "ok")
	return locations, nil
}

func (e *Exporter) observe(format Format, result string) {
	if e.metrics != nil {
		e.metrics.ExportsTotal.WithLabelValues(string(format), result).Inc()
	}
}
