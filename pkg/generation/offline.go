package generation

import (
	"context"
	"fmt"
	"strings"
)

// placeholderPNG is a 1x1 transparent PNG
const placeholderPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// OfflineGenerator answers without a model. It renders the inputs as a
// markdown brief and, for visual requests, a placeholder image.
type OfflineGenerator struct{}

// Generate implements Generator
func (OfflineGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", req.ToolName)
	for _, in := range req.Inputs {
		if in.Value == "" {
			continue
		}
		fmt.Fprintf(&b, "- **%s**: %s\n", in.Key, in.Value)
	}
	b.WriteString("\n_Offline draft. Configure an OpenAI API key for full generations._\n")
	if req.Visual {
		b.WriteString(EncodeImage("image/png", placeholderPNG))
	}
	return b.String(), nil
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate implements Generator
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
