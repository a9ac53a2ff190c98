package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile is the YAML shape of a saved settings file. Every field is a
// pointer so absent keys are distinguishable from zero values.
type Profile struct {
	Concurrency   *int     `yaml:"concurrency"`
	Interval      *float64 `yaml:"interval"`
	Timeout       *float64 `yaml:"timeout"`
	Retries       *int     `yaml:"retries"`
	Wait          *string  `yaml:"wait"`
	Viewport      *string  `yaml:"viewport"`
	UserAgent     *string  `yaml:"user_agent"`
	Headers       []string `yaml:"headers"`
	Cookies       []string `yaml:"cookies"`
	InjectJS      *string  `yaml:"inject"`
	FullPage      *bool    `yaml:"full_page"`
	Format        *string  `yaml:"format"`
	Quality       *int     `yaml:"quality"`
	ChromePath    *string  `yaml:"chrome"`
	Proxy         *string  `yaml:"proxy"`
	IgnoreTLS     *bool    `yaml:"ignore_tls"`
	DiffThreshold *int     `yaml:"diff_threshold"`
	DiffBlockSize *int     `yaml:"diff_block"`
	HTML          *bool    `yaml:"html"`
	CSV           *bool    `yaml:"csv"`
	PDF           *bool    `yaml:"pdf"`
}

// applyProfile fills in settings from a YAML profile, but only for flags
// the user did not set explicitly: the command line always wins.
func applyProfile(cfg *Config, path string, fs *flag.FlagSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parsing profile %s: %w", path, err)
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if p.Concurrency != nil && !set["concurrency"] && !set["c"] {
		cfg.Concurrency = *p.Concurrency
	}
	if p.Interval != nil && !set["interval"] {
		cfg.Interval = time.Duration(*p.Interval * float64(time.Second))
	}
	if p.Timeout != nil && !set["timeout"] {
		cfg.Timeout = time.Duration(*p.Timeout * float64(time.Second))
	}
	if p.Retries != nil && !set["retries"] {
		cfg.Retries = *p.Retries
	}
	if p.Wait != nil && !set["wait"] {
		cfg.Wait = *p.Wait
	}
	if p.Viewport != nil && !set["viewport"] {
		cfg.ViewportSpec = *p.Viewport
	}
	if p.UserAgent != nil && !set["ua"] {
		cfg.UserAgent = *p.UserAgent
	}
	if len(p.Headers) > 0 && !set["H"] {
		cfg.HeaderSpecs = p.Headers
	}
	if len(p.Cookies) > 0 && !set["cookie"] {
		cfg.CookieSpecs = p.Cookies
	}
	if p.InjectJS != nil && !set["inject"] {
		cfg.InjectJS = *p.InjectJS
	}
	if p.FullPage != nil && !set["full-page"] {
		cfg.FullPage = *p.FullPage
	}
	if p.Format != nil && !set["fmt"] {
		cfg.Format = *p.Format
	}
	if p.Quality != nil && !set["quality"] {
		cfg.Quality = *p.Quality
	}
	if p.ChromePath != nil && !set["chrome"] {
		cfg.ChromePath = *p.ChromePath
	}
	if p.Proxy != nil && !set["proxy"] && !set["x"] {
		cfg.Proxy = *p.Proxy
	}
	if p.IgnoreTLS != nil && !set["k"] && !set["ignore-tls"] {
		cfg.IgnoreTLS = *p.IgnoreTLS
	}
	if p.DiffThreshold != nil && !set["diff-threshold"] {
		cfg.DiffThreshold = *p.DiffThreshold
	}
	if p.DiffBlockSize != nil && !set["diff-block"] {
		cfg.DiffBlockSize = *p.DiffBlockSize
	}
	if p.HTML != nil && !set["html"] {
		cfg.HTML = *p.HTML
	}
	if p.CSV != nil && !set["csv"] {
		cfg.CSV = *p.CSV
	}
	if p.PDF != nil && !set["pdf"] {
		cfg.PDF = *p.PDF
	}
	return nil
}
