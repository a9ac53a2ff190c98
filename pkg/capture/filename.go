package capture

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"net/url"
	"strings"

	"github.com/godseye/godseye/pkg/defaults"
)

// ArtifactName builds the deterministic screenshot filename for a target:
// zero-padded index, sanitized host, extension. The index prefix keeps
// artifacts sorted in scan order and unique even when hosts collide.
func ArtifactName(index int, rawURL, format string) string {
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	ext := "png"
	if format == "jpeg" {
		ext = "jpg"
	}
	return fmt.Sprintf("%03d_%s.%s", index, SanitizeHost(host), ext)
}

// SanitizeHost maps a hostname (possibly with port) to a filesystem-safe
// token: lower-cased, with anything outside [a-z0-9.-] replaced by an
// underscore, truncated to the filename cap.
func SanitizeHost(host string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(host) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if len(s) > defaults.FilenameCap {
		s = s[:defaults.FilenameCap]
	}
	if s == "" {
		s = "unknown"
	}
	return s
}

// pngToJPEG re-encodes a PNG screenshot as JPEG.
func pngToJPEG(data []byte, quality int) ([]byte, error) {
	if quality <= 0 {
		quality = defaults.JPEGQuality
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
