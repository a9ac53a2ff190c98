package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/godseye/godseye/pkg/config"
	"github.com/godseye/godseye/pkg/defaults"
)

const bannerArt = `
   ________  ____  _____    _______  ______
  / ____/ / / / / / ___/   / ____/\ \/ / __/
 / / __/ / / / /  \__ \   / __/    \  / _/
/ /_/ / /_/ / /  ___/ /  / /___    / / /___
\____/\____/_/  /____/  /_____/   /_/_____/
`

// Banner prints the startup banner and version badge.
func Banner(w io.Writer) {
	fmt.Fprintln(w, BannerStyle.Render(bannerArt))
	fmt.Fprintf(w, "  %s %s\n\n",
		MutedStyle.Render("web recon screenshots + visual diff"),
		VersionStyle.Render("v"+defaults.Version))
}

// RunConfig echoes the effective settings before the scan starts.
func RunConfig(w io.Writer, cfg *config.Config, targets int) {
	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n",
			ConfigLabelStyle.Render(label),
			ConfigValueStyle.Render(value))
	}

	fmt.Fprintln(w, SectionStyle.Render("Run configuration"))
	row("targets", fmt.Sprintf("%d", targets))
	row("concurrency", fmt.Sprintf("%d", cfg.Concurrency))
	if cfg.Interval > 0 {
		row("interval", cfg.Interval.String())
	}
	row("timeout", cfg.Timeout.String())
	row("retries", fmt.Sprintf("%d", cfg.Retries))
	row("wait", cfg.Wait)
	row("viewport", fmt.Sprintf("%dx%d", cfg.ViewportW, cfg.ViewportH))
	row("output", cfg.OutputDir)
	if cfg.CompareDir != "" {
		row("baseline", cfg.CompareDir)
	}
	if cfg.Resume {
		row("resume", "enabled")
	}
	fmt.Fprintln(w)
}

// Elapsed formats a run duration for display.
func Elapsed(d time.Duration) string {
	return d.Round(10 * time.Millisecond).String()
}
