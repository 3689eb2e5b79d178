package runner

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/doitintl/hello/lighthouse/lighthouse/domain"
)

var csvHeader = []string{
	"requestedUrl", "finalUrl", "fetchTime", "category", "category score",
	"audit id", "audit title", "score", "numericValue", "displayValue",
}

func sortedCategoryIDs(r *domain.Result) []string {
	ids := make([]string, 0, len(r.Categories))
	for id := range r.Categories {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

func formatScore(score *float64) string {
	if score == nil {
		return ""
	}

	return strconv.FormatFloat(*score, 'f', -1, 64)
}

// renderCSV writes one row per audit reference of every category.
func renderCSV(r *domain.Result) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, id := range sortedCategoryIDs(r) {
		c := r.Categories[id]

		for _, ref := range c.AuditRefs {
			a := r.Audits[ref.ID]

			var numeric string
			if a.NumericValue != nil {
				numeric = strconv.FormatFloat(*a.NumericValue, 'f', -1, 64)
			}

			row := []string{
				r.RequestedURL, r.URL(), r.FetchTime.UTC().Format("2006-01-02T15:04:05.000Z"),
				id, formatScore(c.Score),
				ref.ID, a.Title, formatScore(a.Score), numeric, a.DisplayValue,
			}

			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

var summaryMetrics = []string{
	"first-contentful-paint",
	"largest-contentful-paint",
	"speed-index",
	"interactive",
	"total-blocking-time",
	"cumulative-layout-shift",
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// tableCell keeps report text inside a single markdown table cell.
func tableCell(s string) string {
	return cellEscaper.Replace(s)
}

func summaryMarkdown(r *domain.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Lighthouse report for %s\n\n", r.URL())
	fmt.Fprintf(&sb, "Fetched at %s, form factor %s.\n\n", r.FetchTime.UTC().Format("2006-01-02 15:04:05 MST"), r.ConfigSettings.FormFactor)

	sb.WriteString("## Categories\n\n| Category | Score |\n|---|---|\n")

	for _, id := range sortedCategoryIDs(r) {
		c := r.Categories[id]

		score := "n/a"
		if c.Score != nil {
			score = strconv.Itoa(int(*c.Score*100 + 0.5))
		}

		fmt.Fprintf(&sb, "| %s | %s |\n", tableCell(c.Title), score)
	}

	sb.WriteString("\n## Metrics\n\n| Audit | Value |\n|---|---|\n")

	for _, id := range summaryMetrics {
		a, ok := r.Audits[id]
		if !ok {
			continue
		}

		title := a.Title
		if title == "" {
			title = id
		}

		fmt.Fprintf(&sb, "| %s | %s |\n", tableCell(title), tableCell(a.DisplayValue))
	}

	return sb.String()
}

// renderHTML renders a summary page; the remote engine has no report renderer.
// Raw HTML in audited page data is dropped.
func renderHTML(r *domain.Result) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML,
		Title: "Lighthouse report for " + r.URL(),
	})

	return markdown.ToHTML([]byte(summaryMarkdown(r)), p, renderer)
}
