package scoring

import (
	"fmt"

	"HazardDrill/internal/locale"
)

// GradeBand maps a score range to a letter grade. A band covers scores from
// Min (inclusive) up to the next higher band's Min.
type GradeBand struct {
	Label   string      `json:"label"`
	Min     float64     `json:"min"`
	XPBonus int         `json:"xp_bonus"`
	Title   locale.Text `json:"title,omitempty"`
}

func validateBands(bands []GradeBand) error {
	if len(bands) == 0 {
		return fmt.Errorf("%w: no grade bands", ErrInvalidConfig)
	}
	for i, b := range bands {
		if b.Label == "" {
			return fmt.Errorf("%w: grade band %d has no label", ErrInvalidConfig, i)
		}
		if i > 0 && b.Min >= bands[i-1].Min {
			return fmt.Errorf("%w: grade bands must be strictly descending (%s >= %s)", ErrInvalidConfig, b.Label, bands[i-1].Label)
		}
	}
	return nil
}

// GradeFor returns the first band whose minimum score is reached. Scores
// below every minimum fall into the last band.
func GradeFor(score float64, bands []GradeBand) GradeBand {
	if len(bands) == 0 {
		return GradeBand{}
	}
	for _, b := range bands {
		if score >= b.Min {
			return b
		}
	}
	return bands[len(bands)-1]
}

// StandardBands is the A+ to D scale with its XP bonuses.
func StandardBands(bottomMin float64) []GradeBand {
	return []GradeBand{
		{Label: "A+", Min: 95, XPBonus: 100, Title: locale.EnHi("Outstanding", "उत्कृष्ट")},
		{Label: "A", Min: 85, XPBonus: 75, Title: locale.EnHi("Excellent", "बहुत बढ़िया")},
		{Label: "B", Min: 75, XPBonus: 50, Title: locale.EnHi("Good", "अच्छा")},
		{Label: "C", Min: 65, XPBonus: 25, Title: locale.EnHi("Satisfactory", "संतोषजनक")},
		{Label: "D", Min: bottomMin, XPBonus: 0, Title: locale.EnHi("Needs improvement", "सुधार आवश्यक")},
	}
}
