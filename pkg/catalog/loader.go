package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/platinummonkey/samonya/pkg/observability"
	"gopkg.in/yaml.v3"
)

// Override is the YAML shape of a catalog override file. Sections that are
// absent keep their compiled-in values.
//
//	plans:
//	  - id: STARTER
//	    name: Starter Pack
//	    price_usd: "$1.00"
//	    credits: 150
//	costs:
//	  default: 2
//	  image_surcharge: 2
//	  chat_message: 1
//	  tools:
//	    LOGO_GENERATOR: 4
//	tools:
//	  LOGO_GENERATOR:
//	    description: Logos in seconds.
type Override struct {
	Plans       []Plan                  `yaml:"plans"`
	Costs       *Costs                  `yaml:"costs"`
	Tools       map[ToolID]ToolOverride `yaml:"tools"`
	Inspiration *InspirationOverride    `yaml:"inspiration"`
}

// ToolOverride replaces display text of an existing tool
type ToolOverride struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

// InspirationOverride replaces any non-empty feed list
type InspirationOverride struct {
	Quotes        []string `yaml:"quotes"`
	MarketingTips []string `yaml:"marketing_tips"`
	DesignIdeas   []string `yaml:"design_ideas"`
}

// Load reads the override file at path and applies it to Default()
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse applies a YAML override document to Default()
func Parse(data []byte) (*Catalog, error) {
	var o Override
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	c := Default()
	if err := o.apply(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return c, nil
}

func (o Override) apply(c *Catalog) error {
	if len(o.Plans) > 0 {
		c.Plans = o.Plans
	}

	if o.Costs != nil {
		if o.Costs.Default > 0 {
			c.Costs.Default = o.Costs.Default
		}
		if o.Costs.ImageSurcharge > 0 {
			c.Costs.ImageSurcharge = o.Costs.ImageSurcharge
		}
		if o.Costs.ChatMessage > 0 {
			c.Costs.ChatMessage = o.Costs.ChatMessage
		}
		for id, cost := range o.Costs.Tools {
			c.Costs.Tools[id] = cost
		}
	}

	for id, to := range o.Tools {
		idx := -1
		for i := range c.Tools {
			if c.Tools[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownTool, id)
		}
		if to.Name != "" {
			c.Tools[idx].Name = to.Name
		}
		if to.Description != "" {
			c.Tools[idx].Description = to.Description
		}
		if to.Icon != "" {
			c.Tools[idx].Icon = to.Icon
		}
	}

	if in := o.Inspiration; in != nil {
		if len(in.Quotes) > 0 {
			c.Inspiration.Quotes = in.Quotes
		}
		if len(in.MarketingTips) > 0 {
			c.Inspiration.MarketingTips = in.MarketingTips
		}
		if len(in.DesignIdeas) > 0 {
			c.Inspiration.DesignIdeas = in.DesignIdeas
		}
	}
	return nil
}

// Watch reloads holder from path whenever the file is written or recreated.
// The parent directory is watched so editors that replace the file are seen.
// A file that fails to load leaves the previous catalog in place. Watch
// blocks until ctx is done.
func Watch(ctx context.Context, path string, holder *Holder, logger *observability.Logger) error {
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	log := logger.WithField("path", abs)
	log.Info("Watching catalog file for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := holder.LoadFile(abs); err != nil {
				log.WithError(err).Warn("Catalog reload failed, keeping previous catalog")
				continue
			}
			log.Info("Catalog reloaded")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("Catalog watcher error")
		}
	}
}
