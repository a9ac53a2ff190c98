// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all runtime configuration defaults.
//
// Usage:
//
//	cfg.Concurrency = defaults.Concurrency
//	cfg.DiffThreshold = defaults.DiffThreshold
//
// DO NOT use hardcoded values like `Concurrency: 5` anywhere.
// Instead, reference the appropriate constant from this package.
package defaults

// Version is the current Gods Eye version
const Version = "1.0.0"

// ============================================================================
// SCAN SETTINGS
// ============================================================================

const (
	// Concurrency is the default number of parallel capture workers (5)
	Concurrency = 5

	// ConcurrencyMax is the highest accepted worker count (100)
	ConcurrencyMax = 100

	// Retries is the default retry count after a failed capture attempt (2)
	Retries = 2

	// RetriesMax is the highest accepted retry count (10)
	RetriesMax = 10
)

// ============================================================================
// VIEWPORT PRESETS
// ============================================================================

const (
	// ViewportWidth / ViewportHeight are the default desktop viewport
	ViewportWidth  = 1920
	ViewportHeight = 1080
)

// ViewportPreset maps a named device preset to its dimensions.
type ViewportPreset struct {
	Width  int
	Height int
}

// ViewportPresets are the named viewport shortcuts accepted on the CLI.
var ViewportPresets = map[string]ViewportPreset{
	"desktop": {Width: 1920, Height: 1080},
	"laptop":  {Width: 1366, Height: 768},
	"tablet":  {Width: 768, Height: 1024},
	"mobile":  {Width: 375, Height: 812},
}

// ============================================================================
// DIFF SETTINGS
// ============================================================================

const (
	// DiffThreshold is the per-block pixel intensity threshold on a 0-255
	// scale above which a block counts as changed (10)
	DiffThreshold = 10

	// DiffBlockSize is the block-diff granularity in pixels (8)
	DiffBlockSize = 8

	// IntensityMax is the upper bound of the pixel intensity scale (255)
	IntensityMax = 255
)

// ============================================================================
// CAPTURE LIMITS
// ============================================================================

const (
	// ConsoleLogCap bounds retained browser console lines per target (50)
	ConsoleLogCap = 50

	// CookieCap bounds retained cookies per target (30)
	CookieCap = 30

	// FingerprintHTMLCap bounds HTML inspected for tech fingerprints (80 KB)
	FingerprintHTMLCap = 80_000

	// CategoryHTMLCap bounds HTML inspected for page categorization (30 KB)
	CategoryHTMLCap = 30_000

	// FilenameCap bounds sanitized hostnames in artifact names (200)
	FilenameCap = 200
)

// ============================================================================
// INPUT SETTINGS
// ============================================================================

// CIDRPorts are the default ports probed when expanding a CIDR range.
var CIDRPorts = []int{80, 443, 8080, 8443}

// ============================================================================
// OUTPUT SETTINGS
// ============================================================================

const (
	// OutputDir is the default run directory
	OutputDir = "gods_eye_report"

	// ScreenshotsDir is the artifact subdirectory for page captures
	ScreenshotsDir = "screenshots"

	// DiffsDir is the artifact subdirectory for diff heatmaps/composites
	DiffsDir = "diffs"

	// ResultsFile is the persisted result-set filename (resume + diff state)
	ResultsFile = "results.json"

	// ReportFile is the HTML report filename
	ReportFile = "report.html"

	// JPEGQuality is the default JPEG screenshot quality (80)
	JPEGQuality = 80
)

// ============================================================================
// EXIT CODES
// ============================================================================

const (
	// ExitOK means the scan completed
	ExitOK = 0

	// ExitUsage means invalid configuration or input
	ExitUsage = 2

	// ExitRunFailure means the scan aborted before completing
	ExitRunFailure = 1
)
