// Package classify holds the rule-based classifiers applied to fetched
// pages: security header grading, technology fingerprinting, and page
// categorization. Everything here is a stateless transformation over
// already-fetched data, callable independently of the scan pipeline.
package classify

// Grade is a security-header letter grade.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// SecurityHeaders are the recognized hardening headers, lower-cased.
var SecurityHeaders = []string{
	"strict-transport-security",
	"content-security-policy",
	"x-frame-options",
	"x-content-type-options",
	"referrer-policy",
	"permissions-policy",
}

// GradeHeaders grades a response's security posture by counting which of
// the recognized headers are present: 5-6 -> A, 4 -> B, 3 -> C,
// 1-2 -> D, 0 -> F. Header names in the map must be lower-cased.
func GradeHeaders(headers map[string]string) (Grade, []string) {
	var present []string
	for _, h := range SecurityHeaders {
		if _, ok := headers[h]; ok {
			present = append(present, h)
		}
	}
	switch n := len(present); {
	case n >= 5:
		return GradeA, present
	case n == 4:
		return GradeB, present
	case n == 3:
		return GradeC, present
	case n >= 1:
		return GradeD, present
	default:
		return GradeF, present
	}
}
