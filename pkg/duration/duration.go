// Package duration provides canonical time constants for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all time-based configuration.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.PageTimeout)
//	WaitFor: duration.BrowserIdle,
//
// DO NOT use hardcoded time.Duration values like `8 * time.Second` anywhere.
// Instead, reference the appropriate constant from this package.
package duration

import "time"

// ============================================================================
// PAGE CAPTURE TIMEOUTS
// ============================================================================
//
// Use these to bound a single browser navigation + screenshot.
// ============================================================================

const (
	// PageTimeout is the default per-target navigation deadline (8s)
	PageTimeout = 8 * time.Second

	// PageTimeoutMax is the upper bound accepted from configuration (5min)
	PageTimeoutMax = 5 * time.Minute

	// BrowserStartup bounds Chrome allocator startup (20s)
	BrowserStartup = 20 * time.Second

	// BrowserIdle is the settle wait after load events fire (500ms)
	BrowserIdle = 500 * time.Millisecond

	// InjectSettle is the pause after injected JavaScript runs (300ms)
	InjectSettle = 300 * time.Millisecond
)

// ============================================================================
// WAIT-MODE TIERS
// ============================================================================
//
// Each wait mode pairs a load-event timeout with a network-idle timeout.
// The engine treats both as best-effort: expiry is not an error.
// ============================================================================

const (
	// WaitFastLoad / WaitFastIdle back the "fast" wait mode
	WaitFastLoad = 500 * time.Millisecond
	WaitFastIdle = 1 * time.Second

	// WaitBalancedLoad / WaitBalancedIdle back the "balanced" wait mode
	WaitBalancedLoad = 2 * time.Second
	WaitBalancedIdle = 3 * time.Second

	// WaitThoroughLoad / WaitThoroughIdle back the "thorough" wait mode
	WaitThoroughLoad = 4 * time.Second
	WaitThoroughIdle = 6 * time.Second
)

// ============================================================================
// RETRY/SCHEDULING INTERVALS
// ============================================================================

const (
	// RetryBase is the initial backoff between capture attempts (300ms)
	RetryBase = 300 * time.Millisecond

	// RetryMax caps any single backoff delay (5s)
	RetryMax = 5 * time.Second

	// ProgressInterval is the live progress refresh rate (500ms)
	ProgressInterval = 500 * time.Millisecond
)
