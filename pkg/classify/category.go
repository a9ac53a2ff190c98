package classify

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/godseye/godseye/pkg/defaults"
)

// Category labels what kind of page a capture landed on.
type Category string

const (
	CategoryNone              Category = ""
	CategoryLogin             Category = "Login Page"
	CategoryAdmin             Category = "Admin Panel"
	CategoryAPIDocs           Category = "API Docs"
	CategoryDefaultPage       Category = "Default Page"
	CategoryAccessDenied      Category = "Access Denied"
	CategoryNotFound          Category = "Not Found"
	CategoryParked            Category = "Parked Domain"
	CategoryUnderConstruction Category = "Under Construction"
	CategoryWAF               Category = "WAF/Firewall"
)

type categoryPattern struct {
	pattern  *regexp.Regexp
	category Category
}

// Ordered: first match wins.
var categoryPatterns = []categoryPattern{
	{regexp.MustCompile(`(?i)sign.?in|log.?in|auth`), CategoryLogin},
	{regexp.MustCompile(`(?i)admin|dashboard|cpanel|wp-admin|phpmyadmin`), CategoryAdmin},
	{regexp.MustCompile(`(?i)swagger|api.?doc|redoc|openapi`), CategoryAPIDocs},
	{regexp.MustCompile(`(?i)it works!|default.*page|welcome to nginx|apache.*default|iis.*windows`), CategoryDefaultPage},
	{regexp.MustCompile(`(?i)403 forbidden|401 unauthorized|access denied`), CategoryAccessDenied},
	{regexp.MustCompile(`(?i)404 not found|page not found`), CategoryNotFound},
	{regexp.MustCompile(`(?i)parked.*domain|buy this domain|domain.*sale|sedoparking|godaddy`), CategoryParked},
	{regexp.MustCompile(`(?i)under construction|coming soon|maintenance`), CategoryUnderConstruction},
	{regexp.MustCompile(`(?i)blocked|firewall|waf|captcha|challenge|cf-browser-verification|attention required`), CategoryWAF},
}

// Categorize labels a page from its title and markup. A password input
// anywhere in the document is the strongest login signal and is checked
// structurally before the text patterns run.
func Categorize(title, pageHTML string) Category {
	snippet := pageHTML
	if len(snippet) > defaults.CategoryHTMLCap {
		snippet = snippet[:defaults.CategoryHTMLCap]
	}

	if hasPasswordInput(snippet) {
		return CategoryLogin
	}

	combined := title + " " + snippet
	for _, cp := range categoryPatterns {
		if cp.pattern.MatchString(combined) {
			return cp.category
		}
	}
	return CategoryNone
}

// hasPasswordInput walks the markup for <input type="password">.
func hasPasswordInput(pageHTML string) bool {
	tok := html.NewTokenizer(strings.NewReader(pageHTML))
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tok.TagName()
			if string(name) != "input" {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = tok.TagAttr()
				if string(key) == "type" && strings.EqualFold(string(val), "password") {
					return true
				}
			}
		}
	}
}
