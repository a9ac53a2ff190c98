// Package config holds all CLI configuration for a scan run.
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/godseye/godseye/pkg/defaults"
	"github.com/godseye/godseye/pkg/duration"
	"github.com/godseye/godseye/pkg/engine"
	"github.com/godseye/godseye/pkg/input"
)

// Config holds all CLI configuration options
type Config struct {
	// Target settings
	TargetURLs input.StringSliceFlag // Repeated/comma-separated -u targets
	ListFile   string                // File containing target URLs
	NmapFile   string                // Nmap XML with discovered services
	CIDR       string                // CIDR range to expand
	Ports      input.StringSliceFlag // Ports probed per CIDR host
	StdinInput bool                  // Read targets from stdin
	Excludes   input.StringSliceFlag // Regex patterns to drop targets

	// Execution settings
	Concurrency int           // Parallel capture workers
	Interval    time.Duration // Minimum spacing between dispatches
	Timeout     time.Duration // Per-attempt page deadline
	Retries     int           // Retries after a failed attempt
	Wait        string        // Wait mode: fast, balanced, thorough
	Resume      bool          // Skip targets already captured in OutputDir

	// Browser settings
	ViewportSpec string // Preset name or WIDTHxHEIGHT
	ViewportW    int    // Parsed viewport width
	ViewportH    int    // Parsed viewport height
	UserAgent    string // User-Agent override
	HeaderSpecs  input.StringSliceFlag
	CookieSpecs  input.StringSliceFlag
	InjectJS     string // JavaScript evaluated after load
	FullPage     bool   // Capture the whole page, not just the viewport
	Format       string // png or jpeg
	Quality      int    // JPEG quality, 1-100
	ChromePath   string // Explicit Chrome binary
	Proxy        string // Proxy URL for the browser
	IgnoreTLS    bool   // Ignore certificate errors

	// Diff settings
	CompareDir    string // Baseline run directory (enables the diff phase)
	DiffThreshold int    // Per-block luminance threshold
	DiffBlockSize int    // Block edge in pixels

	// Output settings
	OutputDir string // Run directory for artifacts and reports
	HTML      bool   // Write report.html
	CSV       bool   // Write results.csv
	PDF       bool   // Write report.pdf
	Verbose   bool   // Debug logging to the console
	Silent    bool   // No progress UI
	NoColor   bool   // Disable colored output

	// Profile
	ProfileFile string // YAML profile; explicit flags win over it

	ShowVersion bool // Print the version and exit
}

// ParseFlags parses command line arguments and returns Config
func ParseFlags(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("godseye", flag.ContinueOnError)

	// === INPUT ===
	fs.Var(&cfg.TargetURLs, "u", "Target URL(s) - comma-separated or repeated")
	fs.Var(&cfg.TargetURLs, "target", "Target URL(s)")
	fs.StringVar(&cfg.ListFile, "l", "", "File containing target URLs")
	fs.StringVar(&cfg.ListFile, "list", "", "Target list file (alias)")
	fs.StringVar(&cfg.NmapFile, "nmap", "", "Nmap XML file with HTTP services")
	fs.StringVar(&cfg.CIDR, "cidr", "", "CIDR range to expand into targets")
	fs.Var(&cfg.Ports, "port", "Port probed per CIDR host (repeatable)")
	fs.BoolVar(&cfg.StdinInput, "stdin", false, "Read targets from stdin")
	fs.Var(&cfg.Excludes, "exclude", "Regex of targets to skip (repeatable)")

	// === EXECUTION ===
	fs.IntVar(&cfg.Concurrency, "concurrency", defaults.Concurrency, "Concurrent capture workers")
	fs.IntVar(&cfg.Concurrency, "c", defaults.Concurrency, "Concurrent workers (alias)")
	interval := fs.Float64("interval", 0, "Minimum seconds between dispatches (0 = none)")
	timeout := fs.Float64("timeout", duration.PageTimeout.Seconds(), "Per-attempt page timeout in seconds")
	fs.IntVar(&cfg.Retries, "retries", defaults.Retries, "Retries after a failed capture")
	fs.StringVar(&cfg.Wait, "wait", string(engine.WaitBalanced), "Wait mode: fast, balanced, thorough")
	fs.BoolVar(&cfg.Resume, "resume", false, "Resume an interrupted run in the output directory")

	// === BROWSER ===
	fs.StringVar(&cfg.ViewportSpec, "viewport", "desktop", "Viewport preset or WIDTHxHEIGHT")
	fs.StringVar(&cfg.UserAgent, "ua", "", "User-Agent override")
	fs.Var(&cfg.HeaderSpecs, "H", "Extra request header NAME:VALUE (repeatable)")
	fs.Var(&cfg.CookieSpecs, "cookie", "Cookie NAME=VALUE (repeatable)")
	fs.StringVar(&cfg.InjectJS, "inject", "", "JavaScript evaluated after page load")
	fs.BoolVar(&cfg.FullPage, "full-page", false, "Capture the full page height")
	fs.StringVar(&cfg.Format, "fmt", "png", "Screenshot format: png, jpeg")
	fs.IntVar(&cfg.Quality, "quality", defaults.JPEGQuality, "JPEG quality 1-100")
	fs.StringVar(&cfg.ChromePath, "chrome", "", "Path to the Chrome binary")
	fs.StringVar(&cfg.Proxy, "proxy", "", "HTTP/SOCKS5 proxy for the browser")
	fs.StringVar(&cfg.Proxy, "x", "", "Proxy (alias)")
	fs.BoolVar(&cfg.IgnoreTLS, "k", false, "Ignore TLS certificate errors")
	fs.BoolVar(&cfg.IgnoreTLS, "ignore-tls", false, "Ignore TLS errors (alias)")

	// === DIFF ===
	fs.StringVar(&cfg.CompareDir, "compare", "", "Baseline run directory to diff against")
	fs.IntVar(&cfg.DiffThreshold, "diff-threshold", defaults.DiffThreshold, "Per-block change threshold (0-255)")
	fs.IntVar(&cfg.DiffBlockSize, "diff-block", defaults.DiffBlockSize, "Diff block size in pixels")

	// === OUTPUT ===
	fs.StringVar(&cfg.OutputDir, "o", defaults.OutputDir, "Run output directory")
	fs.StringVar(&cfg.OutputDir, "output", defaults.OutputDir, "Run output directory (alias)")
	fs.BoolVar(&cfg.HTML, "html", true, "Write the HTML report")
	fs.BoolVar(&cfg.CSV, "csv", false, "Write results.csv")
	fs.BoolVar(&cfg.PDF, "pdf", false, "Write report.pdf")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose console logging")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose (alias)")
	fs.BoolVar(&cfg.Silent, "silent", false, "Silent mode - no progress UI")
	fs.BoolVar(&cfg.Silent, "s", false, "Silent (alias)")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output")

	// === PROFILE ===
	fs.StringVar(&cfg.ProfileFile, "profile", "", "YAML profile with saved settings")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Interval = time.Duration(*interval * float64(time.Second))
	cfg.Timeout = time.Duration(*timeout * float64(time.Second))

	if cfg.ShowVersion {
		return cfg, nil
	}

	if cfg.ProfileFile != "" {
		if err := applyProfile(cfg, cfg.ProfileFile, fs); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on anything out of range so a bad run dies before
// the browser starts.
func (c *Config) Validate() error {
	if len(c.TargetURLs) == 0 && c.ListFile == "" && c.NmapFile == "" && c.CIDR == "" && !c.StdinInput {
		return fmt.Errorf("target required: use -u, -l, -nmap, -cidr, or -stdin")
	}
	if c.Concurrency < 1 || c.Concurrency > defaults.ConcurrencyMax {
		return fmt.Errorf("concurrency %d out of range 1-%d", c.Concurrency, defaults.ConcurrencyMax)
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must not be negative")
	}
	if c.Timeout <= 0 || c.Timeout > duration.PageTimeoutMax {
		return fmt.Errorf("timeout out of range (0, %s]", duration.PageTimeoutMax)
	}
	if c.Retries < 0 || c.Retries > defaults.RetriesMax {
		return fmt.Errorf("retries %d out of range 0-%d", c.Retries, defaults.RetriesMax)
	}
	if !engine.WaitMode(c.Wait).Valid() {
		return fmt.Errorf("wait mode %q not one of fast, balanced, thorough", c.Wait)
	}
	if c.Format != "png" && c.Format != "jpeg" {
		return fmt.Errorf("format %q not one of png, jpeg", c.Format)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality %d out of range 1-100", c.Quality)
	}
	if c.DiffThreshold < 0 || c.DiffThreshold > defaults.IntensityMax {
		return fmt.Errorf("diff threshold %d out of range 0-%d", c.DiffThreshold, defaults.IntensityMax)
	}
	if c.DiffBlockSize <= 0 {
		return fmt.Errorf("diff block size must be positive")
	}

	w, h, err := ParseViewport(c.ViewportSpec)
	if err != nil {
		return err
	}
	c.ViewportW, c.ViewportH = w, h
	return nil
}

// ParseViewport resolves a preset name or an explicit WIDTHxHEIGHT pair.
func ParseViewport(spec string) (int, int, error) {
	if preset, ok := defaults.ViewportPresets[strings.ToLower(spec)]; ok {
		return preset.Width, preset.Height, nil
	}
	var w, h int
	if _, err := fmt.Sscanf(spec, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("viewport %q: want a preset (desktop, laptop, tablet, mobile) or WIDTHxHEIGHT", spec)
	}
	return w, h, nil
}

// ParseHeaders splits repeated NAME:VALUE header flags.
func ParseHeaders(specs []string) (map[string]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(specs))
	for _, spec := range specs {
		name, value, ok := strings.Cut(spec, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("header %q: want NAME:VALUE", spec)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers, nil
}

// ParseCookies splits repeated NAME=VALUE cookie flags.
func ParseCookies(specs []string) ([]engine.Cookie, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	cookies := make([]engine.Cookie, 0, len(specs))
	for _, spec := range specs {
		name, value, ok := strings.Cut(spec, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("cookie %q: want NAME=VALUE", spec)
		}
		cookies = append(cookies, engine.Cookie{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	return cookies, nil
}
