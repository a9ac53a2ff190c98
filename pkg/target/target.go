// Package target defines the scan target and the ordered, indexed queue
// the scheduler drains. Indices are assigned exactly once, in input order,
// after deduplication and exclusion filtering; they name output artifacts
// and never change during a run.
package target

import (
	"net/url"
	"strings"
)

// Target is one URL scheduled for capture, identified by a stable
// 1-based sequence index.
type Target struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
}

// Queue is the ordered, deduplicated target list for one run.
type Queue struct {
	targets []Target
}

// NewQueue assigns 1-based indices to an already normalized, deduplicated,
// exclusion-filtered URL list.
func NewQueue(urls []string) *Queue {
	targets := make([]Target, len(urls))
	for i, u := range urls {
		targets[i] = Target{Index: i + 1, URL: u}
	}
	return &Queue{targets: targets}
}

// Targets returns the full queue in index order.
func (q *Queue) Targets() []Target {
	return q.targets
}

// Len returns the number of queued targets.
func (q *Queue) Len() int {
	return len(q.targets)
}

// NormalizeURL canonicalizes a URL for cross-run identity matching:
// scheme and host are lowercased, default ports dropped, and a bare "/"
// path trimmed. Resume and diff both key prior results by this form, so
// index drift between runs with different input sets cannot mismatch.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Host[:strings.LastIndex(u.Host, ":")]
	}
	if u.Path == "/" && u.RawQuery == "" && u.Fragment == "" {
		u.Path = ""
	}
	return u.String()
}
