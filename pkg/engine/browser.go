package engine

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/godseye/godseye/pkg/defaults"
	"github.com/godseye/godseye/pkg/duration"
)

// Options configures the shared Chrome process.
type Options struct {
	ChromePath string
	Proxy      string
	IgnoreTLS  bool
}

// Browser is the chromedp-backed Engine. One Chrome process is shared by
// all captures; each Capture runs in its own tab.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewBrowser launches Chrome and verifies it is responsive.
func NewBrowser(ctx context.Context, opts Options) (*Browser, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{},
		chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if opts.IgnoreTLS {
		allocOpts = append(allocOpts, chromedp.Flag("ignore-certificate-errors", true))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	startCtx, startCancel := context.WithTimeout(browserCtx, duration.BrowserStartup)
	defer startCancel()
	if err := chromedp.Run(startCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	return &Browser{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         browserCtx,
		cancel:      browserCancel,
	}, nil
}

// Close shuts down the Chrome process.
func (b *Browser) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}

// waitTimes returns the post-load settle delay and the idle delay for a
// wait mode.
func waitTimes(mode WaitMode) (load, idle time.Duration) {
	switch mode {
	case WaitFast:
		return duration.WaitFastLoad, duration.WaitFastIdle
	case WaitThorough:
		return duration.WaitThoroughLoad, duration.WaitThoroughIdle
	default:
		return duration.WaitBalancedLoad, duration.WaitBalancedIdle
	}
}

// pageState accumulates DevTools events for the capture in flight. The
// listener goroutine and the task goroutine both touch it, so every
// access goes through the mutex.
type pageState struct {
	mu        sync.Mutex
	status    int
	headers   map[string]string
	redirects []string
	console   []string
	tls       *TLSInfo
	mainReq   network.RequestID
}

func (s *pageState) handle(ev interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		if e.Type != network.ResourceTypeDocument {
			return
		}
		s.mainReq = e.RequestID
		if e.RedirectResponse != nil {
			s.redirects = append(s.redirects, e.Request.URL)
		}
	case *network.EventResponseReceived:
		if e.Type != network.ResourceTypeDocument || e.RequestID != s.mainReq {
			return
		}
		s.status = int(e.Response.Status)
		s.headers = make(map[string]string, len(e.Response.Headers))
		for k, v := range e.Response.Headers {
			s.headers[strings.ToLower(k)] = fmt.Sprint(v)
		}
		if sd := e.Response.SecurityDetails; sd != nil {
			info := &TLSInfo{
				Protocol: sd.Protocol,
				Issuer:   sd.Issuer,
				Subject:  sd.SubjectName,
				KeyType:  sd.KeyExchange,
				SANCount: len(sd.SanList),
			}
			if sd.ValidTo != nil {
				info.NotAfter = sd.ValidTo.Time().UTC()
			}
			s.tls = info
		}
	case *runtime.EventConsoleAPICalled:
		if len(s.console) >= defaults.ConsoleLogCap {
			return
		}
		var parts []string
		for _, arg := range e.Args {
			if arg.Value != nil {
				parts = append(parts, string(arg.Value))
			} else if arg.Description != "" {
				parts = append(parts, arg.Description)
			}
		}
		if msg := strings.Join(parts, " "); msg != "" {
			s.console = append(s.console, fmt.Sprintf("[%s] %s", e.Type, msg))
		}
	}
}

// Capture renders one page in a fresh tab and returns the snapshot. The
// page is given the wait mode's settle time after navigation, optional
// JavaScript is injected, and the screenshot is taken last.
func (b *Browser) Capture(ctx context.Context, req Request) (*Snapshot, error) {
	start := time.Now()

	tabCtx, tabCancel := chromedp.NewContext(b.ctx)
	defer tabCancel()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = duration.PageTimeout
	}
	runCtx, runCancel := context.WithTimeout(tabCtx, timeout)
	defer runCancel()

	// The caller's context only gates the start and the waits; the tab's
	// own timeout bounds everything else.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state := &pageState{}
	chromedp.ListenTarget(runCtx, func(ev interface{}) {
		state.handle(ev)
	})

	loadWait, idleWait := waitTimes(req.Wait)

	var (
		title    string
		pageHTML string
		finalURL string
		shot     []byte
		cookies  []Cookie
	)

	tasks := chromedp.Tasks{
		network.Enable(),
	}
	if req.UserAgent != "" {
		tasks = append(tasks, emulation.SetUserAgentOverride(req.UserAgent))
	}
	if req.ViewportW > 0 && req.ViewportH > 0 {
		tasks = append(tasks, chromedp.EmulateViewport(int64(req.ViewportW), int64(req.ViewportH)))
	}
	if len(req.Headers) > 0 {
		extra := make(network.Headers, len(req.Headers))
		for k, v := range req.Headers {
			extra[k] = v
		}
		tasks = append(tasks, network.SetExtraHTTPHeaders(extra))
	}
	if len(req.Cookies) > 0 {
		tasks = append(tasks, setCookies(req.URL, req.Cookies))
	}

	tasks = append(tasks,
		chromedp.Navigate(req.URL),
		chromedp.Sleep(loadWait),
	)
	if req.InjectJS != "" {
		tasks = append(tasks,
			chromedp.Evaluate(req.InjectJS, nil),
			chromedp.Sleep(duration.InjectSettle),
		)
	}
	tasks = append(tasks,
		chromedp.Sleep(idleWait),
		chromedp.Location(&finalURL),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &pageHTML, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			got, err := storage.GetCookies().Do(ctx)
			if err != nil {
				return nil // cookies are best-effort
			}
			for _, c := range got {
				if len(cookies) >= defaults.CookieCap {
					break
				}
				cookies = append(cookies, Cookie{
					Name:     c.Name,
					Value:    c.Value,
					Domain:   c.Domain,
					Path:     c.Path,
					Secure:   c.Secure,
					HTTPOnly: c.HTTPOnly,
				})
			}
			return nil
		}),
	)
	// Always PNG; format conversion happens at save time.
	if req.FullPage {
		tasks = append(tasks, chromedp.FullScreenshot(&shot, 100))
	} else {
		tasks = append(tasks, chromedp.CaptureScreenshot(&shot))
	}

	if err := chromedp.Run(runCtx, tasks); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", req.URL, err)
	}

	state.mu.Lock()
	snap := &Snapshot{
		RequestedURL:  req.URL,
		FinalURL:      finalURL,
		Status:        state.status,
		Title:         title,
		HTML:          pageHTML,
		Headers:       state.headers,
		Image:         shot,
		RedirectChain: append([]string(nil), state.redirects...),
		Console:       append([]string(nil), state.console...),
		Cookies:       cookies,
		TLS:           state.tls,
		Elapsed:       time.Since(start),
	}
	state.mu.Unlock()

	if snap.Headers == nil {
		snap.Headers = map[string]string{}
	}
	return snap, nil
}

// setCookies installs the request cookies before navigation, defaulting
// the domain to the target host.
func setCookies(rawURL string, cookies []Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		host := ""
		if u, err := url.Parse(rawURL); err == nil {
			host = u.Hostname()
		}
		for _, c := range cookies {
			domain := c.Domain
			if domain == "" {
				domain = host
			}
			path := c.Path
			if path == "" {
				path = "/"
			}
			expires := cdp.TimeSinceEpoch(time.Now().Add(24 * time.Hour))
			err := network.SetCookie(c.Name, c.Value).
				WithDomain(domain).
				WithPath(path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly).
				WithExpires(&expires).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("setting cookie %s: %w", c.Name, err)
			}
		}
		return nil
	})
}
