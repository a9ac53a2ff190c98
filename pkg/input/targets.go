// Package input consolidates target enumeration: URL list files, stdin
// pipes, Nmap XML output, and CIDR range expansion, plus the exclusion
// and deduplication filters applied before targets are indexed.
package input

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/godseye/godseye/pkg/defaults"
)

// Source consolidates all target input methods.
type Source struct {
	URLs     []string // -u flag: direct targets
	ListFile string   // -l flag: file containing URLs
	NmapXML  string   // -nmap flag: Nmap XML output
	CIDR     string   // -cidr flag: network range
	Ports    []int    // ports paired with CIDR expansion
	Stdin    bool     // read piped stdin when no other source is set
	Exclude  []string // -exclude regex patterns
}

// Collect returns the deduplicated, normalized, exclusion-filtered target
// list in input order. Index assignment happens downstream, after this
// filtering, so indices stay stable for the whole run.
func (s *Source) Collect() ([]string, error) {
	var urls []string

	urls = append(urls, normalizeLines(s.URLs)...)

	if s.NmapXML != "" {
		nmapURLs, err := ReadNmapXML(s.NmapXML)
		if err != nil {
			return nil, fmt.Errorf("parsing nmap xml: %w", err)
		}
		urls = append(urls, nmapURLs...)
	}

	if s.CIDR != "" {
		ports := s.Ports
		if len(ports) == 0 {
			ports = defaults.CIDRPorts
		}
		cidrURLs, err := ExpandCIDR(s.CIDR, ports)
		if err != nil {
			return nil, fmt.Errorf("expanding cidr: %w", err)
		}
		urls = append(urls, cidrURLs...)
	}

	if s.ListFile != "" {
		lines, err := ReadURLFile(s.ListFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, lines...)
	} else if s.NmapXML == "" && s.CIDR == "" && s.Stdin {
		lines, err := readStdin()
		if err != nil {
			return nil, err
		}
		urls = append(urls, normalizeLines(lines)...)
	}

	urls, err := applyExcludes(urls, s.Exclude)
	if err != nil {
		return nil, err
	}

	return dedupe(urls), nil
}

// ReadURLFile reads a URL list file, decoding legacy encodings so that
// lists exported from Windows tooling (UTF-16, cp1252) still parse.
func ReadURLFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading url file: %w", err)
	}
	decoded, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("cannot read url file %s: %w", path, err)
	}
	return normalizeLines(splitLines(decoded)), nil
}

// decodeText turns raw list-file bytes into UTF-8. A BOM picks the
// decoder outright; without one, valid UTF-8 is taken as is and the
// Windows single-byte encodings are the fallback. The x/text decoders
// substitute U+FFFD instead of failing, so any decode that produced
// replacement runes is rejected rather than passed on as garbage.
func decodeText(raw []byte) ([]byte, error) {
	if bytes.HasPrefix(raw, []byte{0xFF, 0xFE}) || bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(raw)
		if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
			return nil, fmt.Errorf("invalid utf-16")
		}
		return decoded, nil
	}

	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(raw) {
		return raw, nil
	}

	for _, dec := range []*encoding.Decoder{
		charmap.Windows1252.NewDecoder(),
		charmap.ISO8859_1.NewDecoder(),
	} {
		decoded, err := dec.Bytes(raw)
		if err != nil || !utf8.Valid(decoded) || bytes.ContainsRune(decoded, utf8.RuneError) {
			continue
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("unsupported encoding")
}

func readStdin() ([]string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, err
	}
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		// Not a pipe.
		return nil, nil
	}
	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return nil, err
	}
	return splitLines(data), nil
}

func splitLines(data []byte) []string {
	return strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
}

// normalizeLines filters comments/blanks and defaults the scheme to http.
func normalizeLines(lines []string) []string {
	var urls []string
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}
		if !strings.HasPrefix(ln, "http://") && !strings.HasPrefix(ln, "https://") {
			ln = "http://" + ln
		}
		urls = append(urls, ln)
	}
	return urls
}

// applyExcludes drops URLs matching any of the given regex patterns.
func applyExcludes(urls []string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return urls, nil
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}

	kept := urls[:0:0]
	for _, u := range urls {
		excluded := false
		for _, re := range compiled {
			if re.MatchString(u) {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, u)
		}
	}
	return kept, nil
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}
