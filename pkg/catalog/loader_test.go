package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/platinummonkey/samonya/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overrideYAML = `
plans:
  - id: STARTER
    name: Starter Pack
    price_usd: "$1.00"
    credits: 150
    features: ["150 Credits"]
costs:
  image_surcharge: 3
  tools:
    LOGO_GENERATOR: 4
tools:
  LOGO_GENERATOR:
    description: Logos in seconds.
inspiration:
  quotes: ["Keep going."]
`

func TestParse_Override(t *testing.T) {
	c, err := Parse([]byte(overrideYAML))
	require.NoError(t, err)

	require.Len(t, c.Plans, 1)
	assert.Equal(t, 150, c.Plans[0].Credits)

	assert.Equal(t, 4, c.Costs.Tools[ToolLogoGenerator])
	assert.Equal(t, 10, c.Costs.Tools[ToolBrandKit])
	assert.Equal(t, 3, c.Costs.ImageSurcharge)
	assert.Equal(t, 2, c.Costs.Default)
	assert.Equal(t, 1, c.Costs.ChatMessage)

	logo, err := c.Tool(ToolLogoGenerator)
	require.NoError(t, err)
	assert.Equal(t, "Logos in seconds.", logo.Description)
	assert.Equal(t, "AI Logo Generator", logo.Name)

	assert.Equal(t, []string{"Keep going."}, c.Inspiration.Quotes)
	assert.Len(t, c.Inspiration.DesignIdeas, 4)

	// defaults are not shared between snapshots
	assert.Equal(t, 5, Default().Costs.Tools[ToolLogoGenerator])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "plans: ["},
		{"unknown tool", "tools:\n  TIME_MACHINE:\n    name: x\n"},
		{"free plan", "plans:\n  - id: FREE\n    name: Free\n    credits: 6\n"},
		{"zero credits", "plans:\n  - id: STARTER\n    name: S\n    credits: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestHolder_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(overrideYAML), 0644))

	h := NewHolder(Default())
	require.NoError(t, h.LoadFile(path))
	assert.Len(t, h.Current().Plans, 1)

	assert.Error(t, h.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Len(t, h.Current().Plans, 1)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("costs:\n  default: 2\n"), 0644))

	h := NewHolder(Default())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, h, observability.NewNopLogger()) }()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(overrideYAML), 0644))

	assert.Eventually(t, func() bool {
		return len(h.Current().Plans) == 1
	}, 2*time.Second, 20*time.Millisecond)

	// a broken file keeps the last good catalog
	require.NoError(t, os.WriteFile(path, []byte("plans: ["), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, h.Current().Plans, 1)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
