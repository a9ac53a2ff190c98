package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/godseye/godseye/pkg/duration"
	"github.com/godseye/godseye/pkg/scan"
)

// ProgressBar renders a single-line live progress display, redrawn on a
// ticker and on every completed capture.
type ProgressBar struct {
	w       io.Writer
	width   int
	started time.Time

	mu      sync.Mutex
	latest  scan.Progress
	running bool
	done    chan struct{}
}

// NewProgressBar sizes the bar for the current terminal.
func NewProgressBar(w io.Writer) *ProgressBar {
	width := 40
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 60 {
			width = tw - 50
			if width > 60 {
				width = 60
			}
		}
	}
	return &ProgressBar{
		w:       w,
		width:   width,
		started: time.Now(),
		done:    make(chan struct{}),
	}
}

// Start begins periodic redraws.
func (p *ProgressBar) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(duration.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.draw()
			case <-p.done:
				return
			}
		}
	}()
}

// Update records the latest counters; safe to call from scan workers.
func (p *ProgressBar) Update(prog scan.Progress) {
	p.mu.Lock()
	p.latest = prog
	p.mu.Unlock()
	p.draw()
}

// Stop ends the redraws and prints the final state on its own line.
func (p *ProgressBar) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.done)
	p.mu.Unlock()

	p.draw()
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) draw() {
	p.mu.Lock()
	prog := p.latest
	p.mu.Unlock()

	if prog.Total == 0 {
		return
	}

	ratio := float64(prog.Done) / float64(prog.Total)
	filled := int(ratio * float64(p.width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	elapsed := time.Since(p.started)
	var eta string
	if prog.Done > 0 && prog.Done < prog.Total {
		remaining := time.Duration(float64(elapsed) / float64(prog.Done) * float64(prog.Total-prog.Done))
		eta = " eta " + remaining.Round(time.Second).String()
	}

	line := fmt.Sprintf("\r  %s %3.0f%% %d/%d  %s %s %s%s ",
		BannerStyle.Render(bar),
		ratio*100,
		prog.Done, prog.Total,
		SuccessStyle.Render(fmt.Sprintf("ok:%d", prog.Succeeded)),
		ErrorStyle.Render(fmt.Sprintf("fail:%d", prog.Failed)),
		MutedStyle.Render(fmt.Sprintf("resumed:%d", prog.Resumed)),
		MutedStyle.Render(eta))
	fmt.Fprint(p.w, line)
}
