package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/godseye/godseye/pkg/capture"
)

func TestContentDiffReportsEveryField(t *testing.T) {
	prior := &capture.Result{
		Status:        200,
		Title:         "Welcome",
		Category:      "Login Page",
		SecurityGrade: "B",
		Technologies:  []string{"Nginx", "PHP"},
	}
	cur := &capture.Result{
		Status:        503,
		Title:         "Service Unavailable",
		Category:      "",
		SecurityGrade: "F",
		Technologies:  []string{"Nginx"},
	}

	changes := ContentDiff(prior, cur)
	assert.Len(t, changes, 5)

	fields := make([]string, len(changes))
	for i, c := range changes {
		fields[i] = c.Field
	}
	assert.Equal(t, []string{
		FieldStatus, FieldCategory, FieldTitle, FieldGrade, FieldTechnologies,
	}, fields)
}

func TestContentDiffNoChanges(t *testing.T) {
	r := &capture.Result{Status: 200, Title: "Home", SecurityGrade: "A"}
	assert.Empty(t, ContentDiff(r, r))
}

func TestContentDiffTechOrderInsensitive(t *testing.T) {
	prior := &capture.Result{Technologies: []string{"React", "Nginx"}}
	cur := &capture.Result{Technologies: []string{"Nginx", "React"}}
	assert.Empty(t, ContentDiff(prior, cur))
}

func TestFieldChangeStructural(t *testing.T) {
	assert.True(t, FieldChange{Field: FieldStatus}.structural())
	assert.True(t, FieldChange{Field: FieldCategory}.structural())
	assert.False(t, FieldChange{Field: FieldTitle}.structural())
	assert.False(t, FieldChange{Field: FieldGrade}.structural())
	assert.False(t, FieldChange{Field: FieldTechnologies}.structural())
}
