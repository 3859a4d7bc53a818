package dashboard

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/dshills/reviewloop/internal/history"
)

const maxSnippet = 1200

var pageTmpl = template.Must(template.New("dashboard").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8"><title>Review Dashboard</title>
  <style>
    body{font-family:system-ui,Segoe UI,Roboto,Helvetica,Arial;margin:24px}
    header{margin-bottom:20px}
    .metrics{display:flex;gap:20px;flex-wrap:wrap}
    .card{padding:12px;border-radius:8px;background:#f6f8fa;min-width:180px}
    .chart{border:1px solid #ddd;padding:6px;background:white;margin-bottom:12px}
    pre{background:#111;color:#dcdcdc;padding:12px;border-radius:6px;overflow:auto}
  </style>
</head>
<body>
  <header>
    <h1>Adaptive PR Review Dashboard</h1>
    <p>Generated: {{.GeneratedAt}}</p>
  </header>

  <section class="metrics">
    <div class="card"><strong>Total reviews</strong><div>{{.Summary.TotalReviews}}</div></div>
    <div class="card"><strong>Avg priority</strong><div>{{.AvgPriority}}</div></div>
    <div class="card"><strong>High risk %</strong><div>{{.Summary.RiskRatio}}%</div></div>
    <div class="card"><strong>Recent trend</strong><div>{{.Trend}}</div></div>
  </section>

  <h2>Charts</h2>
  <div class="chart">{{.PriorityChart}}</div>
  <div class="chart">{{.CategoryChart}}</div>
  <div class="chart">{{.RiskChart}}</div>

  <h2>Latest Review (snippet)</h2>
  <pre>{{.Snippet}}</pre>

  <footer style="margin-top:24px;color:#666">Adaptive PR Review Dashboard</footer>
</body>
</html>`))

type pageData struct {
	GeneratedAt   string
	Summary       Summary
	AvgPriority   string
	Trend         string
	PriorityChart template.HTML
	CategoryChart template.HTML
	RiskChart     template.HTML
	Snippet       string
}

// RenderHTML builds the self-contained dashboard page. Charts are
// inline SVG so the page works without any assets or scripts.
func RenderHTML(s Summary, entries []history.Entry, reviewSnippet string) (string, error) {
	if len(reviewSnippet) > maxSnippet {
		reviewSnippet = reviewSnippet[:maxSnippet]
	}
	avg := "n/a"
	if s.AvgPriority != nil {
		avg = fmt.Sprintf("%.2f", *s.AvgPriority)
	}
	trend := s.RecentTrend
	if trend == "" {
		trend = "n/a"
	}
	data := pageData{
		GeneratedAt:   nowISO(),
		Summary:       s,
		AvgPriority:   avg,
		Trend:         trend,
		PriorityChart: template.HTML(priorityChart(history.Scores(entries))),
		CategoryChart: template.HTML(categoryChart(entries)),
		RiskChart:     template.HTML(riskChart(entries)),
		Snippet:       reviewSnippet,
	}
	var b strings.Builder
	if err := pageTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering dashboard: %w", err)
	}
	return b.String(), nil
}

// priorityChart draws priority scores over time as an SVG polyline.
func priorityChart(scores []float64) string {
	const w, h = 640, 160
	if len(scores) == 0 {
		return emptyChart("Priority Score over Reviews")
	}
	step := float64(w-40) / float64(max(len(scores)-1, 1))
	var points []string
	for i, v := range scores {
		x := 20 + float64(i)*step
		y := float64(h-20) - v/100*float64(h-40)
		points = append(points, fmt.Sprintf("%.1f,%.1f", x, y))
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">
<text x="20" y="14" font-size="12">Priority Score over Reviews</text>
<polyline fill="none" stroke="#0969da" stroke-width="2" points="%s"/>
</svg>`, w, h, strings.Join(points, " "))
}

// categoryChart draws the per-category review counts as SVG bars.
func categoryChart(entries []history.Entry) string {
	counts := map[string]int{}
	for _, e := range entries {
		cat := e.Category
		if cat == "" {
			cat = "uncategorized"
		}
		counts[cat]++
	}
	if len(counts) == 0 {
		return emptyChart("Category distribution")
	}
	cats := make([]string, 0, len(counts))
	maxCount := 0
	for c, n := range counts {
		cats = append(cats, c)
		if n > maxCount {
			maxCount = n
		}
	}
	sort.Strings(cats)

	const w, h = 640, 180
	barW := (w - 40) / len(cats)
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`+"\n", w, h)
	fmt.Fprintf(&b, `<text x="20" y="14" font-size="12">Category distribution</text>`+"\n")
	for i, cat := range cats {
		n := counts[cat]
		barH := float64(n) / float64(maxCount) * float64(h-60)
		x := 20 + i*barW
		y := float64(h-30) - barH
		fmt.Fprintf(&b, `<rect x="%d" y="%.1f" width="%d" height="%.1f" fill="#2da44e"/>`+"\n", x, y, barW-8, barH)
		fmt.Fprintf(&b, `<text x="%d" y="%d" font-size="10">%s (%d)</text>`+"\n", x, h-14, template.HTMLEscapeString(cat), n)
	}
	b.WriteString("</svg>")
	return b.String()
}

// riskChart draws the rolling share of high-risk reviews over a
// 5-review window as an SVG polyline.
func riskChart(entries []history.Entry) string {
	const window = 5
	if len(entries) == 0 {
		return emptyChart("High-risk ratio (rolling window)")
	}
	flags := make([]float64, len(entries))
	for i, e := range entries {
		if e.HighRisk {
			flags[i] = 1
		}
	}
	ratios := make([]float64, len(flags))
	for i := range flags {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum := 0.0
		for _, v := range flags[lo : i+1] {
			sum += v
		}
		ratios[i] = sum / float64(i+1-lo) * 100
	}

	const w, h = 640, 160
	step := float64(w-40) / float64(max(len(ratios)-1, 1))
	var points []string
	for i, v := range ratios {
		x := 20 + float64(i)*step
		y := float64(h-20) - v/100*float64(h-40)
		points = append(points, fmt.Sprintf("%.1f,%.1f", x, y))
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">
<text x="20" y="14" font-size="12">High-risk ratio (rolling window)</text>
<polyline fill="none" stroke="#cf222e" stroke-width="2" points="%s"/>
</svg>`, w, h, strings.Join(points, " "))
}

func emptyChart(title string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="640" height="60">
<text x="20" y="14" font-size="12">%s</text>
<text x="20" y="40" font-size="11" fill="#666">no data yet</text>
</svg>`, title)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
