package diff

import (
	"sort"
	"strconv"
	"strings"

	"github.com/godseye/godseye/pkg/capture"
)

// Field names reported by the content diff.
const (
	FieldStatus       = "status"
	FieldCategory     = "category"
	FieldTitle        = "title"
	FieldGrade        = "security_grade"
	FieldTechnologies = "technologies"
)

// FieldChange records one non-visual field that differs between runs.
type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// structural reports whether the change is one of the strong signals
// (status code or page category) that escalate severity on their own.
func (c FieldChange) structural() bool {
	return c.Field == FieldStatus || c.Field == FieldCategory
}

// ContentDiff compares the non-visual fields of two captures. The
// returned changes are ordered by signal strength: status and category
// first, then title, grade, and technologies.
func ContentDiff(prior, cur *capture.Result) []FieldChange {
	var changes []FieldChange

	if prior.Status != cur.Status {
		changes = append(changes, FieldChange{
			Field:  FieldStatus,
			Before: strconv.Itoa(prior.Status),
			After:  strconv.Itoa(cur.Status),
		})
	}
	if prior.Category != cur.Category {
		changes = append(changes, FieldChange{
			Field:  FieldCategory,
			Before: prior.Category,
			After:  cur.Category,
		})
	}
	if prior.Title != cur.Title {
		changes = append(changes, FieldChange{
			Field:  FieldTitle,
			Before: prior.Title,
			After:  cur.Title,
		})
	}
	if prior.SecurityGrade != cur.SecurityGrade {
		changes = append(changes, FieldChange{
			Field:  FieldGrade,
			Before: prior.SecurityGrade,
			After:  cur.SecurityGrade,
		})
	}
	if before, after, changed := techDelta(prior.Technologies, cur.Technologies); changed {
		changes = append(changes, FieldChange{
			Field:  FieldTechnologies,
			Before: before,
			After:  after,
		})
	}
	return changes
}

// techDelta compares technology sets order-insensitively.
func techDelta(prior, cur []string) (before, after string, changed bool) {
	a := append([]string(nil), prior...)
	b := append([]string(nil), cur...)
	sort.Strings(a)
	sort.Strings(b)
	before = strings.Join(a, ", ")
	after = strings.Join(b, ", ")
	return before, after, before != after
}
