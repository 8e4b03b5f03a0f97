package style

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Kind distinguishes the two style record families
type Kind string

const (
	KindAuthor Kind = "author"
	KindBook   Kind = "book"
)

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	return k == KindAuthor || k == KindBook
}

// Style is an AuthorStyle or BookStyle record: a named set of categorical
// writing preferences. Attributes may be sparse in storage; reads normalize them.
type Style struct {
	ID           string            `json:"id" bson:"_id"`
	UserID       string            `json:"userId" bson:"userId"`
	Kind         Kind              `json:"kind" bson:"kind"`
	Name         string            `json:"name" bson:"name"`
	Attributes   map[string]string `json:"-" bson:"attributes"` // category -> value
	DefaultStyle bool              `json:"defaultStyle" bson:"defaultStyle"`
	CreatedAt    time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// MarshalJSON flattens categorical attributes next to the record fields,
// e.g. {"id":..., "name":..., "narrativeVoice":"First-person", "defaultStyle":true}.
func (s Style) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(s.Attributes)+7)
	for k, v := range s.Attributes {
		m[k] = v
	}
	m["id"] = s.ID
	m["userId"] = s.UserID
	m["kind"] = s.Kind
	m["name"] = s.Name
	m["defaultStyle"] = s.DefaultStyle
	m["createdAt"] = s.CreatedAt
	m["updatedAt"] = s.UpdatedAt
	return json.Marshal(m)
}

// Get returns the attribute value for a category, or "" when unset
func (s *Style) Get(category string) string {
	if s == nil || s.Attributes == nil {
		return ""
	}
	return s.Attributes[category]
}

// reservedKeys are record fields that never count as categorical attributes
var reservedKeys = map[string]bool{
	"id": true, "_id": true, "userId": true, "kind": true,
	"name": true, "defaultStyle": true, "createdAt": true, "updatedAt": true,
}

// Fields is a partial style payload. Nil pointers and absent attributes mean
// "leave unchanged" on update; on create every categorical attribute is required.
type Fields struct {
	Name         *string
	DefaultStyle *bool
	Attributes   map[string]string
}

// UnmarshalJSON reads a flat style object. String values that are not record
// fields are collected as categorical attributes; the service filters them
// against the vocabulary.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.Attributes = map[string]string{}
	for k, v := range raw {
		switch k {
		case "name":
			var name string
			if err := json.Unmarshal(v, &name); err != nil {
				return fmt.Errorf("name must be a string")
			}
			f.Name = &name
		case "defaultStyle":
			var def bool
			if err := json.Unmarshal(v, &def); err != nil {
				return fmt.Errorf("defaultStyle must be a boolean")
			}
			f.DefaultStyle = &def
		default:
			if reservedKeys[k] || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				continue
			}
			var value string
			if err := json.Unmarshal(v, &value); err != nil {
				return fmt.Errorf("%s must be a string", k)
			}
			f.Attributes[k] = value
		}
	}
	return nil
}
