package docsystem

import "time"

// AnalysisCriteria lists the criteria every analysis scores, in display order.
var AnalysisCriteria = []string{"clarity", "pacing", "characterization", "dialogue", "prose"}

// Document is a titled unit of writing embedded in a Project.
type Document struct {
	ID            string               `json:"id" bson:"id"`
	Title         string               `json:"title" bson:"title"`
	Content       string               `json:"content" bson:"content"` // HTML
	OutlineNotes  *string              `json:"outlineNotes,omitempty" bson:"outlineNotes,omitempty"`
	AnalysisData  AnalysisData         `json:"analysisData" bson:"analysisData"`
	AnalysisScore AnalysisScore        `json:"analysisScore" bson:"analysisScore"`
	AnalysisHTML  *string              `json:"analysisHtml,omitempty" bson:"analysisHtml,omitempty"`
	Highlights    map[string]Highlight `json:"highlights,omitempty" bson:"highlights,omitempty"`
	CreatedAt     time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// AnalysisData holds per-criterion text feedback from the last analysis
type AnalysisData struct {
	Summary          string `json:"summary" bson:"summary"`
	Clarity          string `json:"clarity" bson:"clarity"`
	Pacing           string `json:"pacing" bson:"pacing"`
	Characterization string `json:"characterization" bson:"characterization"`
	Dialogue         string `json:"dialogue" bson:"dialogue"`
	Prose            string `json:"prose" bson:"prose"`
}

// DepthScores are the 0-10 sub-scores per criterion
type DepthScores struct {
	Clarity          int `json:"clarity" bson:"clarity"`
	Pacing           int `json:"pacing" bson:"pacing"`
	Characterization int `json:"characterization" bson:"characterization"`
	Dialogue         int `json:"dialogue" bson:"dialogue"`
	Prose            int `json:"prose" bson:"prose"`
}

// AnalysisScore is the numeric result of the last analysis
type AnalysisScore struct {
	Overall int         `json:"overall" bson:"overall"`
	Depth   DepthScores `json:"depth" bson:"depth"`
}

// Highlight is an inline annotation with rewrite suggestions
type Highlight struct {
	Text        string   `json:"text" bson:"text"`
	Suggestions []string `json:"suggestions" bson:"suggestions"`
}

// NewDocument returns a document with empty analysis and zeroed scores.
func NewDocument(id, title, content string, now time.Time) Document {
	return Document{
		ID:        id,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Normalize fills defaults for sparse stored documents.
func (d *Document) Normalize() {
	if d.Highlights == nil {
		d.Highlights = map[string]Highlight{}
	}
	for id, h := range d.Highlights {
		if h.Suggestions == nil {
			h.Suggestions = []string{}
			d.Highlights[id] = h
		}
	}
}
