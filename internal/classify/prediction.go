package classify

import (
	"regexp"
	"strconv"
	"strings"
)

var predictionPattern = regexp.MustCompile(`^(.+?)\s*\(\s*(-?[0-9]+(?:\.[0-9]+)?)\s*%\s*\)$`)

// Prediction is a structured view of classification text of the form
// "<label> (<confidence>%)". HasConfidence is false when the text does not
// follow that form, in which case Label is the whole text.
type Prediction struct {
	Label         string
	Confidence    float64
	HasConfidence bool
}

func ParsePrediction(text string) Prediction {
	text = strings.TrimSpace(text)
	m := predictionPattern.FindStringSubmatch(text)
	if m == nil {
		return Prediction{Label: text}
	}
	confidence, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Prediction{Label: text}
	}
	return Prediction{
		Label:         strings.TrimSpace(m[1]),
		Confidence:    confidence,
		HasConfidence: true,
	}
}

// IsPothole reports whether the label names a pothole.
func (p Prediction) IsPothole() bool {
	return strings.EqualFold(p.Label, "pothole")
}
