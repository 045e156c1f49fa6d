package generation

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ImageMarker prefixes an inline image line in generated content
const ImageMarker = "IMAGE_BASE64:"

// ErrInvalidDataURI is returned for malformed image data URIs
var ErrInvalidDataURI = errors.New("invalid data URI")

// EncodeImage renders a sentinel line for base64 image data
func EncodeImage(mime, b64 string) string {
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("\n%sdata:%s;base64,%s\n", ImageMarker, mime, b64)
}

// SplitContent separates prose from inline images. The returned text has
// every marker line removed and is trimmed; images are the data URIs that
// followed each marker, in order.
func SplitContent(content string) (text string, images []string) {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		if idx := strings.Index(line, ImageMarker); idx >= 0 {
			images = append(images, strings.TrimSpace(line[idx+len(ImageMarker):]))
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n")), images
}

// Image is a decoded data URI
type Image struct {
	MIME string
	Data []byte
}

// ParseDataURI decodes data:<mime>;base64,<payload>
func ParseDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Image{}, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return Image{}, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	if mime == "" {
		mime = "image/png"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}
	return Image{MIME: mime, Data: data}, nil
}
