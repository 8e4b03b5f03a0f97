package docsystem

import (
	"strings"
	"time"
)

// ProjectType selects fiction or nonfiction workflows
type ProjectType string

const (
	ProjectTypeFiction    ProjectType = "fiction"
	ProjectTypeNonfiction ProjectType = "nonfiction"
)

// ParseProjectType maps free input onto a project type.
// Anything that is not "nonfiction" is treated as fiction.
func ParseProjectType(s string) ProjectType {
	if ProjectType(strings.ToLower(strings.TrimSpace(s))) == ProjectTypeNonfiction {
		return ProjectTypeNonfiction
	}
	return ProjectTypeFiction
}

// Project is the top-level user-owned container. Documents are embedded and
// their slice order is the canonical display order.
type Project struct {
	ID            string      `json:"id" bson:"_id"`
	UserID        string      `json:"userId" bson:"userId"`
	Title         string      `json:"title" bson:"title"`
	ProjectType   ProjectType `json:"projectType" bson:"projectType"`
	AuthorStyleID *string     `json:"authorStyleId" bson:"authorStyleId"`
	BookStyleID   *string     `json:"bookStyleId" bson:"bookStyleId"`
	Documents     []Document  `json:"documents" bson:"documents"`
	Metadata      JSONMap     `json:"metadata" bson:"metadata"`
	Version       int64       `json:"version" bson:"version"` // Incremented on every write
	CreatedAt     time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// DocumentIndex returns the position of the document with the given id, or -1.
func (p *Project) DocumentIndex(docID string) int {
	for i := range p.Documents {
		if p.Documents[i].ID == docID {
			return i
		}
	}
	return -1
}

// Normalize fills in values that older or sparse records may lack.
// Applied once at the repository boundary on every read.
func (p *Project) Normalize() {
	if p.ProjectType != ProjectTypeNonfiction {
		p.ProjectType = ProjectTypeFiction
	}
	if p.Documents == nil {
		p.Documents = []Document{}
	}
	if p.Metadata == nil {
		p.Metadata = JSONMap{}
	}
	for i := range p.Documents {
		p.Documents[i].Normalize()
	}
}
