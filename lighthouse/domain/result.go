package domain

import (
	"bytes"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/goccy/go-json"
)

// Result is the part of a Lighthouse result (LHR) this service reads.
type Result struct {
	RequestedURL      string              `json:"requestedUrl"`
	FinalURL          string              `json:"finalUrl,omitempty"`
	FinalDisplayedURL string              `json:"finalDisplayedUrl,omitempty"`
	FetchTime         time.Time           `json:"fetchTime"`
	UserAgent         string              `json:"userAgent"`
	ConfigSettings    ConfigSettings      `json:"configSettings"`
	Categories        map[string]Category `json:"categories"`
	Audits            map[string]Audit    `json:"audits"`
}

type ConfigSettings struct {
	FormFactor string `json:"formFactor"`
}

type Category struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Score     *float64   `json:"score"`
	AuditRefs []AuditRef `json:"auditRefs,omitempty"`
}

type AuditRef struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

type Audit struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Score        *float64 `json:"score"`
	NumericValue *float64 `json:"numericValue,omitempty"`
	DisplayValue string   `json:"displayValue,omitempty"`
}

// ParseResult decodes a Lighthouse JSON report.
func ParseResult(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}

	return &r, nil
}

func (r *Result) URL() string {
	if r.FinalDisplayedURL != "" {
		return r.FinalDisplayedURL
	}

	if r.FinalURL != "" {
		return r.FinalURL
	}

	return r.RequestedURL
}

func (r *Result) categoryScore(id string) bigquery.NullFloat64 {
	c, ok := r.Categories[id]
	if !ok || c.Score == nil {
		return bigquery.NullFloat64{}
	}

	return bigquery.NullFloat64{Float64: *c.Score, Valid: true}
}

func (r *Result) auditValue(id string) bigquery.NullFloat64 {
	a, ok := r.Audits[id]
	if !ok || a.NumericValue == nil {
		return bigquery.NullFloat64{}
	}

	return bigquery.NullFloat64{Float64: *a.NumericValue, Valid: true}
}

// ReportRow is one warehouse row, scoped to its target through SiteID.
type ReportRow struct {
	FetchTime              time.Time            `bigquery:"fetch_time" json:"fetch_time"`
	SiteURL                string               `bigquery:"site_url" json:"site_url"`
	SiteID                 string               `bigquery:"site_id" json:"site_id"`
	UserAgent              string               `bigquery:"user_agent" json:"user_agent"`
	EmulatedAs             string               `bigquery:"emulated_as" json:"emulated_as"`
	Performance            bigquery.NullFloat64 `bigquery:"performance" json:"performance"`
	Accessibility          bigquery.NullFloat64 `bigquery:"accessibility" json:"accessibility"`
	BestPractices          bigquery.NullFloat64 `bigquery:"best_practices" json:"best_practices"`
	SEO                    bigquery.NullFloat64 `bigquery:"seo" json:"seo"`
	PWA                    bigquery.NullFloat64 `bigquery:"pwa" json:"pwa"`
	FirstContentfulPaint   bigquery.NullFloat64 `bigquery:"first_contentful_paint" json:"first_contentful_paint"`
	LargestContentfulPaint bigquery.NullFloat64 `bigquery:"largest_contentful_paint" json:"largest_contentful_paint"`
	SpeedIndex             bigquery.NullFloat64 `bigquery:"speed_index" json:"speed_index"`
	Interactive            bigquery.NullFloat64 `bigquery:"interactive" json:"interactive"`
	TotalBlockingTime      bigquery.NullFloat64 `bigquery:"total_blocking_time" json:"total_blocking_time"`
	CumulativeLayoutShift  bigquery.NullFloat64 `bigquery:"cumulative_layout_shift" json:"cumulative_layout_shift"`
}

// NewReportRow flattens a result into the warehouse schema.
func NewReportRow(targetID string, r *Result) ReportRow {
	return ReportRow{
		FetchTime:              r.FetchTime,
		SiteURL:                r.URL(),
		SiteID:                 targetID,
		UserAgent:              r.UserAgent,
		EmulatedAs:             r.ConfigSettings.FormFactor,
		Performance:            r.categoryScore("performance"),
		Accessibility:          r.categoryScore("accessibility"),
		BestPractices:          r.categoryScore("best-practices"),
		SEO:                    r.categoryScore("seo"),
		PWA:                    r.categoryScore("pwa"),
		FirstContentfulPaint:   r.auditValue("first-contentful-paint"),
		LargestContentfulPaint: r.auditValue("largest-contentful-paint"),
		SpeedIndex:             r.auditValue("speed-index"),
		Interactive:            r.auditValue("interactive"),
		TotalBlockingTime:      r.auditValue("total-blocking-time"),
		CumulativeLayoutShift:  r.auditValue("cumulative-layout-shift"),
	}
}

// ReportRowSchema is the load schema of the reports table.
func ReportRowSchema() (bigquery.Schema, error) {
	return bigquery.InferSchema(ReportRow{})
}

// NDJSON encodes rows as newline delimited JSON, the load source format.
func NDJSON(rows ...ReportRow) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}
