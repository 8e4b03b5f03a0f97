package docsystem

import "encoding/json"

// JSONMap is a free-form JSON object stored as JSONB / BSON document
type JSONMap map[string]interface{}

// MetadataKeyNonfiction namespaces the nonfiction workflow state in project metadata.
const MetadataKeyNonfiction = "nonfiction"

// Merge shallow-merges partial into m. Top-level keys are replaced wholesale,
// nested objects are never merged, and a nil value removes the key.
func (m JSONMap) Merge(partial JSONMap) {
	for k, v := range partial {
		if v == nil {
			delete(m, k)
			continue
		}
		m[k] = v
	}
}

// BookSetup captures the nonfiction book template and target length
type BookSetup struct {
	Template string `json:"template"`
	Length   string `json:"length"`
}

// OutlineSection is one {title, notes} entry of an outline
type OutlineSection struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

// Outline is an ordered list of sections for a topic
type Outline struct {
	Topic    string           `json:"topic"`
	Sections []OutlineSection `json:"sections"`
}

// NonfictionMetadata is the typed view of metadata["nonfiction"]
type NonfictionMetadata struct {
	BookSetup *BookSetup `json:"bookSetup,omitempty"`
	Outline   *Outline   `json:"outline,omitempty"`
}

// Nonfiction extracts the nonfiction namespace. A missing namespace yields an empty value.
func (m JSONMap) Nonfiction() (*NonfictionMetadata, error) {
	raw, ok := m[MetadataKeyNonfiction]
	if !ok || raw == nil {
		return &NonfictionMetadata{}, nil
	}

	// Re-marshal to get a typed view regardless of the store's decoded map type
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var nf NonfictionMetadata
	if err := json.Unmarshal(data, &nf); err != nil {
		return nil, err
	}
	return &nf, nil
}

// SetNonfiction replaces the nonfiction namespace.
func (m JSONMap) SetNonfiction(nf *NonfictionMetadata) error {
	data, err := json.Marshal(nf)
	if err != nil {
		return err
	}

	var asMap map[string]interface{}
	if err := json.Unmarshal(data, &asMap); err != nil {
		return err
	}

	m[MetadataKeyNonfiction] = asMap
	return nil
}
