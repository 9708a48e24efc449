package mapping

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"

	"mapper-engine/internal/diagnostic"
	"mapper-engine/internal/match"
	"mapper-engine/internal/schema"
)

const (
	suggestThreshold = 0.6
	maxSuggestions   = 3
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func metadataValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	return validate
}

// ValidateMetadata checks the form part of a definition.
func ValidateMetadata(m *Metadata) error {
	if m == nil {
		return errors.New("metadata is nil")
	}

	return metadataValidator().Struct(m)
}

// validateMetadata records one diagnostic per failing metadata field.
func validateMetadata(res *diagnostic.Diagnostics, m *Metadata) {
	err := ValidateMetadata(m)
	if err == nil {
		return
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		res.AddError("invalid_metadata", err.Error(), "", "")
		return
	}

	for _, fe := range fieldErrs {
		res.AddError("invalid_metadata", metadataMessage(fe), "", fe.Namespace())
	}
}

func metadataMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "excludesall":
		return fmt.Sprintf("%s must not contain any of %q", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// nearest returns the paths of list most similar to a missing path.
func nearest(list schema.FlatList, missing string) []string {
	type scored struct {
		key   string
		score float64
	}

	var hits []scored

	for _, f := range list {
		if score := match.NameSimilarity(f.Key(), missing); score >= suggestThreshold {
			hits = append(hits, scored{f.Key(), score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]string, 0, min(len(hits), maxSuggestions))
	for _, h := range hits[:min(len(hits), maxSuggestions)] {
		out = append(out, h.key)
	}

	return out
}
