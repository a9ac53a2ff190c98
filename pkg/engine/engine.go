// Package engine abstracts the headless browser behind a small Capture
// interface. The only implementation drives Chrome over the DevTools
// protocol; everything above it (retry, scheduling, classification)
// depends on the interface so it can be tested with a fake.
package engine

import (
	"context"
	"time"
)

// WaitMode selects how long the engine lets a page settle before the
// screenshot is taken.
type WaitMode string

const (
	WaitFast     WaitMode = "fast"
	WaitBalanced WaitMode = "balanced"
	WaitThorough WaitMode = "thorough"
)

// Valid reports whether the mode is one of the recognized values.
func (m WaitMode) Valid() bool {
	switch m {
	case WaitFast, WaitBalanced, WaitThorough:
		return true
	}
	return false
}

// Cookie is a browser cookie attached to a request or observed on the
// final page.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"http_only,omitempty"`
}

// TLSInfo describes the certificate presented by the final page's origin.
type TLSInfo struct {
	Protocol string    `json:"protocol"`
	Issuer   string    `json:"issuer"`
	Subject  string    `json:"subject"`
	NotAfter time.Time `json:"not_after"`
	KeyType  string    `json:"key_type,omitempty"`
	SANCount int       `json:"san_count,omitempty"`
}

// Request describes one page capture.
type Request struct {
	URL       string
	Wait      WaitMode
	ViewportW int
	ViewportH int
	UserAgent string
	Headers   map[string]string
	Cookies   []Cookie
	InjectJS  string
	FullPage  bool
	Timeout   time.Duration
}

// Snapshot is everything the engine observed while rendering one page.
// Header names are lower-cased.
type Snapshot struct {
	RequestedURL  string
	FinalURL      string
	Status        int
	Title         string
	HTML          string
	Headers       map[string]string
	Image         []byte
	RedirectChain []string
	Console       []string
	Cookies       []Cookie
	TLS           *TLSInfo
	Elapsed       time.Duration
}

// Engine renders pages and returns snapshots. Capture is safe for
// concurrent use; Close tears down the underlying browser.
type Engine interface {
	Capture(ctx context.Context, req Request) (*Snapshot, error)
	Close() error
}
