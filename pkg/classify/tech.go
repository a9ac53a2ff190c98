package classify

import (
	"regexp"

	"github.com/godseye/godseye/pkg/defaults"
)

// headerPattern fingerprints a technology from one response header.
type headerPattern struct {
	header  string
	pattern *regexp.Regexp
	label   string
}

var headerPatterns = []headerPattern{
	{"server", regexp.MustCompile(`(?i)nginx`), "Nginx"},
	{"server", regexp.MustCompile(`(?i)apache`), "Apache"},
	{"server", regexp.MustCompile(`(?i)cloudflare`), "Cloudflare"},
	{"server", regexp.MustCompile(`(?i)microsoft-iis`), "IIS"},
	{"server", regexp.MustCompile(`(?i)LiteSpeed`), "LiteSpeed"},
	{"server", regexp.MustCompile(`(?i)openresty`), "OpenResty"},
	{"server", regexp.MustCompile(`(?i)caddy`), "Caddy"},
	{"server", regexp.MustCompile(`(?i)gunicorn`), "Gunicorn"},
	{"server", regexp.MustCompile(`(?i)envoy`), "Envoy"},
	{"x-powered-by", regexp.MustCompile(`(?i)php`), "PHP"},
	{"x-powered-by", regexp.MustCompile(`(?i)asp\.net`), "ASP.NET"},
	{"x-powered-by", regexp.MustCompile(`(?i)express`), "Express"},
	{"x-powered-by", regexp.MustCompile(`(?i)next\.?js`), "Next.js"},
	{"x-powered-by", regexp.MustCompile(`(?i)nuxt`), "Nuxt.js"},
	{"via", regexp.MustCompile(`(?i)varnish`), "Varnish"},
	{"via", regexp.MustCompile(`(?i)cloudfront`), "CloudFront"},
	{"x-generator", regexp.MustCompile(`(?i)drupal`), "Drupal"},
	{"x-generator", regexp.MustCompile(`(?i)wordpress`), "WordPress"},
}

// htmlPattern fingerprints a technology from page markup.
type htmlPattern struct {
	pattern *regexp.Regexp
	label   string
}

var htmlPatterns = []htmlPattern{
	{regexp.MustCompile(`(?i)wp-content|wp-includes|/wp-json`), "WordPress"},
	{regexp.MustCompile(`(?i)Joomla!`), "Joomla"},
	{regexp.MustCompile(`(?i)sites/default/files|drupal\.js`), "Drupal"},
	{regexp.MustCompile(`(?i)cdn\.shopify\.com|Shopify\.theme`), "Shopify"},
	{regexp.MustCompile(`(?i)__next|_next/static`), "Next.js"},
	{regexp.MustCompile(`(?i)__nuxt|_nuxt/`), "Nuxt.js"},
	{regexp.MustCompile(`(?i)react(?:\.production|dom)`), "React"},
	{regexp.MustCompile(`(?i)vue\.?js|v-cloak|__vue`), "Vue.js"},
	{regexp.MustCompile(`(?i)ng-version|angular`), "Angular"},
	{regexp.MustCompile(`(?i)laravel|csrf.*laravel`), "Laravel"},
	{regexp.MustCompile(`(?i)csrfmiddlewaretoken.*django|__django`), "Django"},
	{regexp.MustCompile(`(?i)csrf-token.*authenticity_token|rails`), "Rails"},
	{regexp.MustCompile(`(?i)jquery`), "jQuery"},
	{regexp.MustCompile(`(?i)bootstrap(?:\.min)?\.(?:css|js)`), "Bootstrap"},
	{regexp.MustCompile(`(?i)tailwindcss|tailwind`), "Tailwind"},
	{regexp.MustCompile(`(?i)google-analytics|gtag|ga\.js`), "Google Analytics"},
	{regexp.MustCompile(`(?i)googleapis\.com/ajax|fonts\.googleapis`), "Google APIs"},
	{regexp.MustCompile(`(?i)cloudflare`), "Cloudflare"},
	{regexp.MustCompile(`(?i)gatsby`), "Gatsby"},
	{regexp.MustCompile(`(?i)svelte`), "Svelte"},
}

// Fingerprint detects technologies from response headers and page HTML.
// Header evidence is checked first, then the first 80 KB of markup; each
// label is reported once, in detection order.
func Fingerprint(headers map[string]string, pageHTML string) []string {
	var techs []string
	seen := make(map[string]bool)

	for _, hp := range headerPatterns {
		val := headers[hp.header]
		if val != "" && hp.pattern.MatchString(val) && !seen[hp.label] {
			techs = append(techs, hp.label)
			seen[hp.label] = true
		}
	}

	snippet := pageHTML
	if len(snippet) > defaults.FingerprintHTMLCap {
		snippet = snippet[:defaults.FingerprintHTMLCap]
	}
	for _, hp := range htmlPatterns {
		if !seen[hp.label] && hp.pattern.MatchString(snippet) {
			techs = append(techs, hp.label)
			seen[hp.label] = true
		}
	}
	return techs
}
