package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"storyloom/internal/config"
	"storyloom/internal/domain"
	"storyloom/internal/domain/models/style"
	"storyloom/internal/domain/repositories"
	"storyloom/internal/domain/services"
	"storyloom/internal/vocabulary"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// StyleService implements the StyleService interface
type StyleService struct {
	styleRepo repositories.StyleRepository
	txManager repositories.TransactionManager
	vocab     *vocabulary.Registry
	logger    *slog.Logger
}

// NewStyleService creates a new style service
func NewStyleService(
	styleRepo repositories.StyleRepository,
	txManager repositories.TransactionManager,
	vocab *vocabulary.Registry,
	logger *slog.Logger,
) services.StyleService {
	return &StyleService{
		styleRepo: styleRepo,
		txManager: txManager,
		vocab:     vocab,
		logger:    logger,
	}
}

// List returns the user's styles of a kind, normalized, with at most one default
func (s *StyleService) List(ctx context.Context, userID string, kind style.Kind) ([]style.Style, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}

	styles, err := s.styleRepo.List(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	if styles == nil {
		styles = []style.Style{}
	}

	for i := range styles {
		s.vocab.Normalize(&styles[i])
	}

	if n := reconcileDefaults(styles); n > 1 {
		s.logger.Warn("multiple default styles stored",
			"kind", kind,
			"user_id", userID,
			"count", n,
		)
	}

	return styles, nil
}

// reconcileDefaults keeps defaultStyle only on the most recently updated default
// and returns how many defaults were stored.
func reconcileDefaults(styles []style.Style) int {
	winner := -1
	count := 0
	for i := range styles {
		if !styles[i].DefaultStyle {
			continue
		}
		count++
		if winner < 0 || styles[i].UpdatedAt.After(styles[winner].UpdatedAt) {
			winner = i
		}
	}
	for i := range styles {
		styles[i].DefaultStyle = i == winner
	}
	return count
}

// Create validates and stores a new style. Marking it default clears the previous default.
func (s *StyleService) Create(ctx context.Context, userID string, kind style.Kind, fields *style.Fields) (*style.Style, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	if err := s.validateCreate(kind, fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	st := &style.Style{
		ID:           uuid.NewString(),
		UserID:       userID,
		Kind:         kind,
		Name:         strings.TrimSpace(*fields.Name),
		Attributes:   make(map[string]string, len(fields.Attributes)),
		DefaultStyle: fields.DefaultStyle != nil && *fields.DefaultStyle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for k, v := range fields.Attributes {
		st.Attributes[k] = v
	}

	err := s.withDefaultSwitch(ctx, st, func(ctx context.Context) error {
		return s.styleRepo.Create(ctx, st)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("style created",
		"id", st.ID,
		"kind", kind,
		"default", st.DefaultStyle,
		"user_id", userID,
	)

	s.vocab.Normalize(st)
	return st, nil
}

// Update applies a partial update. Marking a style default clears the previous default.
func (s *StyleService) Update(ctx context.Context, userID string, kind style.Kind, id string, fields *style.Fields) (*style.Style, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	if err := validateStyleID(id); err != nil {
		return nil, err
	}
	if err := s.validateUpdate(kind, fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	st, err := s.styleRepo.GetByID(ctx, kind, id, userID)
	if err != nil {
		return nil, err
	}

	becomesDefault := !st.DefaultStyle && fields.DefaultStyle != nil && *fields.DefaultStyle

	if fields.Name != nil {
		st.Name = strings.TrimSpace(*fields.Name)
	}
	if fields.DefaultStyle != nil {
		st.DefaultStyle = *fields.DefaultStyle
	}
	if st.Attributes == nil {
		st.Attributes = map[string]string{}
	}
	for k, v := range fields.Attributes {
		st.Attributes[k] = v
	}
	st.UpdatedAt = time.Now()

	write := func(ctx context.Context) error {
		return s.styleRepo.Update(ctx, st)
	}
	if becomesDefault {
		err = s.withDefaultSwitch(ctx, st, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("style updated",
		"id", st.ID,
		"kind", kind,
		"default", st.DefaultStyle,
		"user_id", userID,
	)

	s.vocab.Normalize(st)
	return st, nil
}

// withDefaultSwitch runs write, first clearing the user's other defaults when
// st is default. Both writes share a transaction where the store supports one.
// Losing a race against a concurrent default switch is retried.
func (s *StyleService) withDefaultSwitch(ctx context.Context, st *style.Style, write repositories.TxFn) error {
	if !st.DefaultStyle {
		return write(ctx)
	}

	var err error
	for attempt := 1; attempt <= config.MaxMutationAttempts; attempt++ {
		err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
			if err := s.styleRepo.ClearDefault(ctx, st.Kind, st.UserID, st.ID); err != nil {
				return err
			}
			return write(ctx)
		})
		if !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		s.logger.Debug("default style switch lost race, retrying",
			"id", st.ID,
			"attempt", attempt,
		)
	}
	return err
}

// Delete removes a style. Projects that reference it fall back to defaults.
func (s *StyleService) Delete(ctx context.Context, userID string, kind style.Kind, id string) error {
	if err := validateKind(kind); err != nil {
		return err
	}
	if err := validateStyleID(id); err != nil {
		return err
	}

	if err := s.styleRepo.Delete(ctx, kind, id, userID); err != nil {
		return err
	}

	s.logger.Info("style deleted",
		"id", id,
		"kind", kind,
		"user_id", userID,
	)

	return nil
}

// Resolve picks the style to prompt with: the referenced one, the user's default,
// or the vocabulary defaults, in that order.
func (s *StyleService) Resolve(ctx context.Context, userID string, kind style.Kind, id *string) (*style.Style, error) {
	if err := validateKind(kind); err != nil {
		return nil, err
	}

	if id != nil && *id != "" {
		st, err := s.styleRepo.GetByID(ctx, kind, *id, userID)
		switch {
		case err == nil:
			s.vocab.Normalize(st)
			return st, nil
		case errors.Is(err, domain.ErrNotFound):
			s.logger.Debug("style reference dangling, using default",
				"id", *id,
				"kind", kind,
				"user_id", userID,
			)
		default:
			return nil, err
		}
	}

	styles, err := s.List(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	for i := range styles {
		if styles[i].DefaultStyle {
			return &styles[i], nil
		}
	}

	return s.vocab.Fallback(kind), nil
}

func validateKind(kind style.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown style kind %q", domain.ErrValidation, kind)
	}
	return nil
}

// validateStyleID rejects ids that are not canonical UUIDs
func validateStyleID(id string) error {
	err := validation.Validate(id, validation.Required, validation.By(func(value interface{}) error {
		v, _ := value.(string)
		if _, err := uuid.Parse(v); err != nil || len(v) != 36 {
			return errors.New("must be a valid UUID")
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("%w: id: %v", domain.ErrValidation, err)
	}
	return nil
}

var styleName = []validation.Rule{
	validation.By(func(value interface{}) error {
		name, _ := value.(*string)
		if name != nil && strings.TrimSpace(*name) == "" {
			return errors.New("cannot be blank")
		}
		return nil
	}),
	validation.By(func(value interface{}) error {
		name, _ := value.(*string)
		if name == nil {
			return nil
		}
		return validation.Validate(strings.TrimSpace(*name), validation.RuneLength(1, config.MaxStyleNameLength))
	}),
}

// validateCreate requires a name and a vocabulary value for every category
func (s *StyleService) validateCreate(kind style.Kind, fields *style.Fields) error {
	if fields == nil {
		return errors.New("body: cannot be blank")
	}

	errs := validation.Errors{
		"name": validation.Validate(fields.Name, append([]validation.Rule{validation.NotNil}, styleName...)...),
	}
	for _, cat := range s.vocab.Categories(kind) {
		value, ok := fields.Attributes[cat.Key]
		if !ok || value == "" {
			errs[cat.Key] = errors.New("cannot be blank")
		}
	}
	s.validateAttributes(kind, fields.Attributes, errs)
	return errs.Filter()
}

// validateUpdate checks only the fields present in the payload
func (s *StyleService) validateUpdate(kind style.Kind, fields *style.Fields) error {
	if fields == nil {
		return errors.New("body: cannot be blank")
	}

	errs := validation.Errors{
		"name": validation.Validate(fields.Name, styleName...),
	}
	s.validateAttributes(kind, fields.Attributes, errs)
	return errs.Filter()
}

// validateAttributes rejects unknown categories and values outside the vocabulary
func (s *StyleService) validateAttributes(kind style.Kind, attrs map[string]string, errs validation.Errors) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := attrs[key]
		cat, ok := s.vocab.Category(kind, key)
		if !ok {
			errs[key] = fmt.Errorf("is not a %s style field", kind)
			continue
		}
		if value == "" {
			if _, set := errs[key]; !set {
				errs[key] = errors.New("cannot be blank")
			}
			continue
		}
		if !cat.Allows(value) {
			errs[key] = fmt.Errorf("must be one of: %s", strings.Join(cat.Names(), ", "))
		}
	}
}
