package domain

import (
	"fmt"
	"time"
)

const (
	FormatHTML = "html"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Artifact is one rendered output of an audit, uploaded as a single object.
type Artifact struct {
	Format  string
	Content []byte
}

// ContentType of the artifact, html for anything unknown.
func (a Artifact) ContentType() string {
	switch a.Format {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	default:
		return "text/html"
	}
}

func (a Artifact) Extension() string {
	switch a.Format {
	case FormatCSV, FormatJSON:
		return a.Format
	default:
		return FormatHTML
	}
}

// ObjectPath is where the artifact lands in the reports bucket.
func (a Artifact) ObjectPath(targetID string, at time.Time) string {
	return fmt.Sprintf("%s/report_%s.%s", targetID, at.UTC().Format(time.RFC3339), a.Extension())
}

// Report is what an audit engine produces for one target.
type Report struct {
	Artifacts []Artifact
	Result    *Result
}
