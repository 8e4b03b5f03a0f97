package service

import (
	"fmt"
	"html"
	"strings"

	"storyloom/internal/domain/models/docsystem"

	"github.com/tidwall/gjson"
)

const maxScore = 10

// parseAnalysis reads the model's JSON critique. Models sometimes wrap the
// object in prose or a code fence, so only the outermost {...} is parsed.
func parseAnalysis(raw string) (docsystem.AnalysisData, docsystem.AnalysisScore, error) {
	var data docsystem.AnalysisData
	var score docsystem.AnalysisScore

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return data, score, fmt.Errorf("analysis response contains no JSON object")
	}
	body := raw[start : end+1]
	if !gjson.Valid(body) {
		return data, score, fmt.Errorf("analysis response is not valid JSON")
	}

	result := gjson.Parse(body)
	data.Summary = strings.TrimSpace(result.Get("summary").String())

	criterion := func(name string) (string, int) {
		v := result.Get(name)
		if v.IsObject() {
			return strings.TrimSpace(v.Get("feedback").String()), clampScore(v.Get("score").Int())
		}
		return strings.TrimSpace(v.String()), 0
	}

	data.Clarity, score.Depth.Clarity = criterion("clarity")
	data.Pacing, score.Depth.Pacing = criterion("pacing")
	data.Characterization, score.Depth.Characterization = criterion("characterization")
	data.Dialogue, score.Depth.Dialogue = criterion("dialogue")
	data.Prose, score.Depth.Prose = criterion("prose")

	if overall := result.Get("overall"); overall.Exists() {
		score.Overall = clampScore(overall.Int())
	} else {
		d := score.Depth
		score.Overall = (d.Clarity + d.Pacing + d.Characterization + d.Dialogue + d.Prose) / len(docsystem.AnalysisCriteria)
	}

	if data == (docsystem.AnalysisData{}) {
		return data, score, fmt.Errorf("analysis response has no feedback")
	}
	return data, score, nil
}

func clampScore(v int64) int {
	switch {
	case v < 0:
		return 0
	case v > maxScore:
		return maxScore
	default:
		return int(v)
	}
}

// renderAnalysisHTML renders the critique for display next to the document
func renderAnalysisHTML(data docsystem.AnalysisData, score docsystem.AnalysisScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>Overall: %d/%d</h3>", score.Overall, maxScore)
	if data.Summary != "" {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(data.Summary))
	}

	rows := []struct {
		label    string
		feedback string
		score    int
	}{
		{"Clarity", data.Clarity, score.Depth.Clarity},
		{"Pacing", data.Pacing, score.Depth.Pacing},
		{"Characterization", data.Characterization, score.Depth.Characterization},
		{"Dialogue", data.Dialogue, score.Depth.Dialogue},
		{"Prose", data.Prose, score.Depth.Prose},
	}
	for _, r := range rows {
		if r.feedback == "" {
			continue
		}
		fmt.Fprintf(&b, "<h4>%s (%d/%d)</h4><p>%s</p>", r.label, r.score, maxScore, html.EscapeString(r.feedback))
	}
	return b.String()
}
