package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Placeholder keeps the document skeleton identical regardless of how
// much of the review was filled in.
const Placeholder = "No response provided."

// Section is one labelled free-text block of the rendered review.
type Section struct {
	Label string
	Text  string
}

// Document is the fully resolved input to the renderer. All text has
// already been sanitized.
type Document struct {
	CycleName    string
	CycleStart   time.Time
	CycleEnd     time.Time
	EmployeeName string
	Employee     string
	Department   string
	ManagerName  string
	Manager      string
	Status       string
	Sections     []Section
	Feedback     string

	MeetingDate         *time.Time
	RatingPerformance   *int
	RatingCollaboration *int
	RatingGrowth        *int
	HasRatings          bool

	UpdatedAt      time.Time
	UpdatedByEmail string
	GeneratedAt    time.Time
}

var documentTemplate = template.Must(template.New("review").Funcs(template.FuncMap{
	"orPlaceholder": func(s string) string {
		if s == "" {
			return Placeholder
		}
		return s
	},
	"rating": func(r *int) string {
		if r == nil {
			return "N/A"
		}
		return fmt.Sprintf("%d / 5", *r)
	},
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"dateptr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("January 2, 2006")
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; font-size: 12px; }
  h1 { font-size: 20px; border-bottom: 2px solid #2c3e50; padding-bottom: 8px; }
  h3 { font-size: 13px; color: #2c3e50; margin-bottom: 4px; }
  .meta { background: #f5f6fa; padding: 12px; margin: 12px 0; }
  .meta-item { margin: 2px 0; }
  .section { margin: 14px 0; page-break-inside: avoid; }
  .section p { margin: 0; white-space: pre-wrap; }
  .placeholder { color: #888; font-style: italic; }
  .footer { margin-top: 24px; border-top: 1px solid #ccc; padding-top: 8px; font-size: 10px; color: #666; }
</style>
</head>
<body>
<h1>Performance Review</h1>
<div class="meta">
  <div class="meta-item"><strong>Cycle:</strong> {{.CycleName}} ({{date .CycleStart}} &ndash; {{date .CycleEnd}})</div>
  <div class="meta-item"><strong>Employee:</strong> {{.EmployeeName}} ({{.Employee}})</div>
  <div class="meta-item"><strong>Department:</strong> {{orPlaceholder .Department}}</div>
  <div class="meta-item"><strong>Manager:</strong> {{if .ManagerName}}{{.ManagerName}} ({{.Manager}}){{else}}{{orPlaceholder .Manager}}{{end}}</div>
  <div class="meta-item"><strong>Status:</strong> {{.Status}}</div>
  {{if .MeetingDate}}<div class="meta-item"><strong>Meeting:</strong> {{dateptr .MeetingDate}}</div>{{end}}
</div>
{{range .Sections}}
<div class="section">
  <h3>{{.Label}}</h3>
  {{if .Text}}<p>{{.Text}}</p>{{else}}<p class="placeholder">{{orPlaceholder .Text}}</p>{{end}}
</div>
{{end}}
<div class="section">
  <h3>Manager Feedback</h3>
  {{if .Feedback}}<p>{{.Feedback}}</p>{{else}}<p class="placeholder">{{orPlaceholder .Feedback}}</p>{{end}}
</div>
{{if .HasRatings}}
<div class="section">
  <h3>Ratings</h3>
  <p><strong>Performance:</strong> {{rating .RatingPerformance}}</p>
  <p><strong>Collaboration:</strong> {{rating .RatingCollaboration}}</p>
  <p><strong>Growth:</strong> {{rating .RatingGrowth}}</p>
</div>
{{end}}
<div class="footer">
  Last updated {{date .UpdatedAt}}{{if .UpdatedByEmail}} by {{.UpdatedByEmail}}{{end}}.
  Generated {{date .GeneratedAt}}.
</div>
</body>
</html>
`))

// RenderHTML produces the printable HTML for a resolved document.
func RenderHTML(doc *Document) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("execute review template: %w", err)
	}
	return buf.String(), nil
}
