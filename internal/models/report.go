package models

import (
	"strconv"
	"time"
)

// Form field names shared by the analyse endpoint and the report client.
const (
	FieldImage     = "image"
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldAccuracy  = "accuracy"
	FieldTimestamp = "timestamp"
)

// TimestampLayout matches the ISO-8601 millisecond form browsers emit.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Location is a single geolocation fix taken when permissions are granted.
type Location struct {
	Latitude   float64
	Longitude  float64
	Accuracy   float64
	CapturedAt time.Time
}

// Fields renders the fix as the four scalar form values sent with a report.
func (l Location) Fields() LocationFields {
	return LocationFields{
		Latitude:  strconv.FormatFloat(l.Latitude, 'f', -1, 64),
		Longitude: strconv.FormatFloat(l.Longitude, 'f', -1, 64),
		Accuracy:  strconv.FormatFloat(l.Accuracy, 'f', -1, 64),
		Timestamp: l.CapturedAt.UTC().Format(TimestampLayout),
	}
}

// LocationFields are the location values as opaque strings. The server never
// parses them; it echoes them back untouched.
type LocationFields struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Accuracy  string `json:"accuracy"`
	Timestamp string `json:"timestamp"`
}

// ReportSubmission is one outbound report: the captured image plus its fix.
type ReportSubmission struct {
	Image    []byte
	MIME     string
	Filename string
	Location LocationFields
}

// ClassificationResult wraps the trimmed output of the classification step.
type ClassificationResult struct {
	ArtifactID string
	Text       string
	Cached     bool
	Duration   time.Duration
}
