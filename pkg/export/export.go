package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/gate"
	"github.com/platinummonkey/samonya/pkg/generation"
)

// Format is a download format
type Format string

const (
	FormatTXT  Format = "txt"
	FormatPDF  Format = "pdf"
	FormatMP3  Format = "mp3"
	FormatJSON Format = "json"
)

// Formats lists the supported formats in menu order
var Formats = []Format{FormatTXT, FormatPDF, FormatMP3, FormatJSON}

const (
	audioHeader    = "[SAMONYA AI AUDIO SCRIPT]\n[FORMAT: MP3]\n\n"
	documentHeader = "[SAMONYA AI BUSINESS DOCUMENT]\n\n"

	// Watermark is appended to free-tier exports
	Watermark = "\n\n(Watermark: Created by Samonya AIMS Market – Upgrade to remove)"
)

var (
	ErrUnknownFormat   = errors.New("unknown export format")
	ErrNothingToExport = errors.New("nothing to export")
)

// ParseFormat validates s; the empty string means txt
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatTXT, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// MIME is the content type of the text artifact
func (f Format) MIME() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/plain"
}

// Kind distinguishes artifacts
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Artifact is one downloadable file
type Artifact struct {
	Filename string `json:"filename"`
	MIME     string `json:"mime"`
	Kind     Kind   `json:"kind"`
	Data     []byte `json:"-"`
}

// Render applies the format header and, for the free tier, the watermark
func Render(content string, format Format, tier catalog.Tier) string {
	switch format {
	case FormatMP3:
		content = audioHeader + content
	case FormatPDF:
		content = documentHeader + content
	}
	if tier == catalog.TierFree {
		content += Watermark
	}
	return content
}

// Build produces the artifacts for content. The free tier is refused with a
// *gate.UpgradeRequiredError. Images that fail to decode are skipped.
func Build(content, toolName string, format Format, tier catalog.Tier, now time.Time) ([]Artifact, error) {
	if !gate.CanDownload(tier) {
		return nil, &gate.UpgradeRequiredError{Tier: tier, Action: gate.ActionDownload}
	}
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	stamp := now.UnixMilli()
	base := fileStem(toolName)

	text, images := generation.SplitContent(Render(content, format, tier))

	var artifacts []Artifact
	for _, uri := range images {
		img, err := generation.ParseDataURI(uri)
		if err != nil {
			continue
		}
		name := fmt.Sprintf("Samonya_%s_Image_%d.png", base, stamp)
		if n := len(artifacts); n > 0 {
			// keep names unique within one export
			name = fmt.Sprintf("Samonya_%s_Image_%d_%d.png", base, stamp, n+1)
		}
		artifacts = append(artifacts, Artifact{
			Filename: name,
			MIME:     img.MIME,
			Kind:     KindImage,
			Data:     img.Data,
		})
	}
	if text != "" {
		artifacts = append(artifacts, Artifact{
			Filename: fmt.Sprintf("Samonya_%s_Content_%d.%s", base, stamp, format),
			MIME:     format.MIME(),
			Kind:     KindText,
			Data:     []byte(text),
		})
	}
	return artifacts, nil
}

func fileStem(toolName string) string {
	return strings.Join(strings.Fields(toolName), "_")
}
