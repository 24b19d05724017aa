package classify

import "testing"

func TestParsePrediction(t *testing.T) {
	cases := []struct {
		in         string
		label      string
		confidence float64
		has        bool
	}{
		{"pothole (87.23%)", "pothole", 87.23, true},
		{"  normal(90%) \n", "normal", 90, true},
		{"random ( 5.5 % )", "random", 5.5, true},
		{"pothole", "pothole", 0, false},
		{"Error: Could not read image", "Error: Could not read image", 0, false},
		{"", "", 0, false},
	}

	for _, tc := range cases {
		got := ParsePrediction(tc.in)
		if got.Label != tc.label || got.Confidence != tc.confidence || got.HasConfidence != tc.has {
			t.Errorf("ParsePrediction(%q) = %+v", tc.in, got)
		}
	}
}

func TestIsPothole(t *testing.T) {
	if !ParsePrediction("Pothole (70.00%)").IsPothole() {
		t.Error("expected pothole")
	}
	if ParsePrediction("normal (70.00%)").IsPothole() {
		t.Error("normal is not a pothole")
	}
}
