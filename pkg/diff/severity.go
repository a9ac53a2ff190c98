package diff

// Severity classifies how much a target changed between runs.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityNone     Severity = "none"

	// SeverityNew marks a target with no prior capture to compare against.
	SeverityNew Severity = "new"
)

// Severity thresholds on the visual change percentage. All bounds are
// exclusive: a diff of exactly 50.00% does not reach critical territory.
const (
	criticalPercent = 50.0
	highPercent     = 30.0
	mediumPercent   = 5.0
	lowPercent      = 0.5
)

// Classify folds the visual change percentage and the content-field
// changes into one severity:
//
//	critical: >50% visual change combined with a status or category change
//	high:     >30% visual change, or any status/category change
//	medium:   >5% visual change, or any title/grade/technology change
//	low:      >0.5% visual change
//	none:     everything below that
func Classify(percent float64, changes []FieldChange) Severity {
	structural := false
	for _, c := range changes {
		if c.structural() {
			structural = true
			break
		}
	}

	switch {
	case percent > criticalPercent && structural:
		return SeverityCritical
	case percent > highPercent || structural:
		return SeverityHigh
	case percent > mediumPercent || len(changes) > 0:
		return SeverityMedium
	case percent > lowPercent:
		return SeverityLow
	default:
		return SeverityNone
	}
}

// ArtifactWorthy reports whether the change is big enough to justify
// writing heatmap and composite images.
func ArtifactWorthy(percent float64) bool {
	return percent > lowPercent
}
