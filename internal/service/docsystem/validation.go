package docsystem

import (
	"errors"
	"fmt"
	"strings"

	"storyloom/internal/config"
	"storyloom/internal/domain"
	models "storyloom/internal/domain/models/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// validationError wraps an ozzo error as a domain validation failure
func validationError(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// notBlank rejects strings that are empty after trimming
var notBlank = validation.By(func(value interface{}) error {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return errors.New("cannot be blank")
		}
	case *string:
		if v != nil && strings.TrimSpace(*v) == "" {
			return errors.New("cannot be blank")
		}
	}
	return nil
})

// uuidRef accepts a nil or well-formed UUID reference
var uuidRef = validation.By(func(value interface{}) error {
	ref, _ := value.(*string)
	if ref == nil {
		return nil
	}
	if _, err := uuid.Parse(*ref); err != nil {
		return errors.New("must be a valid UUID")
	}
	return nil
})

// uuidID requires a canonical UUID string
var uuidID = validation.By(func(value interface{}) error {
	id, _ := value.(string)
	if len(id) != 36 {
		return errors.New("must be a valid UUID")
	}
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("must be a valid UUID")
	}
	return nil
})

// validateProjectID rejects a malformed project id before the store sees it
func validateProjectID(id string) error {
	if err := validation.Validate(id, validation.Required, uuidID); err != nil {
		return validationError(validation.Errors{"id": err})
	}
	return nil
}

// validateDocumentRef rejects a malformed project or document id
func validateDocumentRef(projectID, docID string) error {
	err := validation.Errors{
		"id":    validation.Validate(projectID, validation.Required, uuidID),
		"docId": validation.Validate(docID, validation.Required, uuidID),
	}.Filter()
	if err != nil {
		return validationError(err)
	}
	return nil
}

// validateDocumentTitle checks a title destined for a document
func validateDocumentTitle(title string) error {
	return validation.Validate(title,
		validation.Required,
		notBlank,
		validation.RuneLength(1, config.MaxDocumentTitleLength),
	)
}

// validateDocumentSet checks a full client-supplied document list: titles in
// range and no id used twice. Empty ids are allowed and assigned later.
func validateDocumentSet(docs []models.Document) error {
	seen := make(map[string]bool, len(docs))
	for i, doc := range docs {
		if doc.ID != "" {
			if err := validation.Validate(doc.ID, uuidID); err != nil {
				return validationError(fmt.Errorf("documents[%d].id: %v", i, err))
			}
			if seen[doc.ID] {
				return validationError(fmt.Errorf("documents[%d]: duplicate id %q", i, doc.ID))
			}
			seen[doc.ID] = true
		}
		if err := validation.Validate(doc.Title, validation.RuneLength(0, config.MaxDocumentTitleLength)); err != nil {
			return validationError(fmt.Errorf("documents[%d].title: %v", i, err))
		}
	}
	return nil
}

// validatePermutation checks that submitted names exactly the documents in current,
// each once.
func validatePermutation(current, submitted []models.Document) error {
	if len(submitted) == 0 {
		return validationError(errors.New("documents: cannot be blank"))
	}
	if len(submitted) != len(current) {
		return validationError(fmt.Errorf("documents: expected %d entries, got %d", len(current), len(submitted)))
	}

	known := make(map[string]bool, len(current))
	for _, doc := range current {
		known[doc.ID] = true
	}

	seen := make(map[string]bool, len(submitted))
	for i, doc := range submitted {
		if !known[doc.ID] {
			return validationError(fmt.Errorf("documents[%d]: unknown id %q", i, doc.ID))
		}
		if seen[doc.ID] {
			return validationError(fmt.Errorf("documents[%d]: duplicate id %q", i, doc.ID))
		}
		seen[doc.ID] = true
	}
	return nil
}
