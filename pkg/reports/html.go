package reports

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/platinummonkey/tally/pkg/analytics"
)

// HTMLRenderer renders activity reports to HTML
type HTMLRenderer struct {
	template *template.Template
}

// NewHTMLRenderer creates a new HTML renderer
func NewHTMLRenderer() *HTMLRenderer {
	tmpl := template.Must(template.New("report").Funcs(template.FuncMap{
		"total": totalCount,
		"title": activityTitle,
	}).Parse(htmlTemplate))

	return &HTMLRenderer{template: tmpl}
}

type section struct {
	Type    analytics.ActivityType
	Buckets []analytics.Bucket
}

// Render renders the report with its generation time
func (r *HTMLRenderer) Render(report *analytics.ActivityReport, generatedAt time.Time) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("report is nil")
	}

	data := struct {
		*analytics.ActivityReport
		Subject     string
		GeneratedAt string
		Sections    []section
	}{
		ActivityReport: report,
		Subject:        subjectLabel(report),
		GeneratedAt:    generatedAt.UTC().Format(time.RFC3339),
		Sections:       sections(report.Statistics),
	}

	var buf bytes.Buffer
	if err := r.template.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// sections orders statistics by the canonical activity order
func sections(stats analytics.Statistics) []section {
	out := make([]section, 0, len(stats))
	for _, t := range []analytics.ActivityType{analytics.ActivityPosts, analytics.ActivityLikes, analytics.ActivityComments} {
		if buckets, ok := stats[t]; ok {
			out = append(out, section{Type: t, Buckets: buckets})
		}
	}
	// Anything outside the canonical set goes last, alphabetically
	var extra []section
	for t, buckets := range stats {
		switch t {
		case analytics.ActivityPosts, analytics.ActivityLikes, analytics.ActivityComments:
			continue
		}
		extra = append(extra, section{Type: t, Buckets: buckets})
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Type < extra[j].Type })
	return append(out, extra...)
}

func subjectLabel(report *analytics.ActivityReport) string {
	if report.SubjectID == nil {
		return string(report.Kind)
	}
	return fmt.Sprintf("%s %d", report.Kind, *report.SubjectID)
}

func totalCount(buckets []analytics.Bucket) int {
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	return total
}

func activityTitle(t analytics.ActivityType) string {
	switch t {
	case analytics.ActivityPosts:
		return "Posts"
	case analytics.ActivityLikes:
		return "Likes"
	case analytics.ActivityComments:
		return "Comments"
	default:
		return string(t)
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Activity report - {{ .Subject }}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif; color: #333; margin: 2rem; }
        h1 { font-size: 1.6rem; margin-bottom: 0.25rem; }
        .meta { color: #666; margin-bottom: 1.5rem; }
        table { border-collapse: collapse; margin-bottom: 1.5rem; min-width: 320px; }
        th, td { border: 1px solid #ddd; padding: 0.4rem 0.8rem; text-align: left; }
        th { background: #f5f5f5; }
        td.count { text-align: right; }
        .empty { color: #999; font-style: italic; }
    </style>
</head>
<body>
    <h1>Activity report for {{ .Subject }}</h1>
    <div class="meta">Period: {{ .Period }} &middot; Interval: {{ .Interval }} &middot; Generated {{ .GeneratedAt }}</div>
{{- range .Sections }}
    <h2>{{ title .Type }} ({{ total .Buckets }})</h2>
    {{- if .Buckets }}
    <table>
        <thead><tr><th>Bucket</th><th>Count</th></tr></thead>
        <tbody>
        {{- range .Buckets }}
            <tr><td>{{ .Label }}</td><td class="count">{{ .Count }}</td></tr>
        {{- end }}
        </tbody>
    </table>
    {{- else }}
    <p class="empty">No activity in this period.</p>
    {{- end }}
{{- else }}
    <p class="empty">No statistics.</p>
{{- end }}
</body>
</html>
`
