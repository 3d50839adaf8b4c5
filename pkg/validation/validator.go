// Package validation checks API request payloads before they reach the
// analysis engine, so handler code can assume well-formed identifiers.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// ATT&CK identifier patterns
	tacticIDPattern     = regexp.MustCompile(`^TA\d{4}$`)
	techniqueIDPattern  = regexp.MustCompile(`^T\d{4}(\.\d{3})?$`)
	groupIDPattern      = regexp.MustCompile(`^G\d{4}$`)
	mitigationIDPattern = regexp.MustCompile(`^M\d{4}$`)
	dataSourceIDPattern = regexp.MustCompile(`^DS\d{4}$`)
)

func init() {
	validate = validator.New()
	// Registration only fails for malformed tags, which is a programming
	// error.
	must(validate.RegisterValidation("tactic_id", matchFunc(tacticIDPattern)))
	must(validate.RegisterValidation("technique_id", matchFunc(techniqueIDPattern)))
	must(validate.RegisterValidation("group_id", matchFunc(groupIDPattern)))
	must(validate.RegisterValidation("mitigation_id", matchFunc(mitigationIDPattern)))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func matchFunc(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

// PathRequest asks for an attack path between two kill-chain stages.
type PathRequest struct {
	StartTactic           string `json:"start_tactic" validate:"required,tactic_id"`
	EndTactic             string `json:"end_tactic" validate:"required,tactic_id"`
	GroupID               string `json:"group_id,omitempty" validate:"omitempty,group_id"`
	Platform              string `json:"platform,omitempty" validate:"omitempty,max=50"`
	MaxTechniquesPerStage int    `json:"max_techniques_per_stage,omitempty" validate:"omitempty,min=1,max=100"`
}

// GapsRequest asks for a mitigation coverage report over a set of groups.
type GapsRequest struct {
	GroupIDs            []string `json:"group_ids" validate:"required,min=1,max=25,dive,group_id"`
	TechniqueFilter     []string `json:"technique_filter,omitempty" validate:"omitempty,max=200,dive,technique_id"`
	ExcludedMitigations []string `json:"excluded_mitigations,omitempty" validate:"omitempty,max=100,dive,mitigation_id"`
}

// TraverseRequest asks for a bounded relationship traversal from a technique.
type TraverseRequest struct {
	TechniqueID string   `json:"technique_id" validate:"required,technique_id"`
	Types       []string `json:"relationship_types,omitempty" validate:"omitempty,max=5"`
	Depth       int      `json:"depth,omitempty" validate:"omitempty,min=1,max=3"`
}

// ValidatePathRequest validates an attack-path request. Range ordering and
// identifier existence are the engine's concern, not the payload's.
func ValidatePathRequest(req *PathRequest) error {
	if req == nil {
		return errors.New("path request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateGapsRequest validates a coverage-gap request.
func ValidateGapsRequest(req *GapsRequest) error {
	if req == nil {
		return errors.New("gaps request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateTraverseRequest validates a traversal request. Relationship type
// names are free-form here; the engine rejects unknown ones.
func ValidateTraverseRequest(req *TraverseRequest) error {
	if req == nil {
		return errors.New("traverse request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateEntityID accepts any well-formed ATT&CK identifier, whatever the
// entity kind.
func ValidateEntityID(id string) error {
	if id == "" {
		return errors.New("entity ID cannot be empty")
	}
	for _, p := range []*regexp.Regexp{tacticIDPattern, techniqueIDPattern, groupIDPattern, mitigationIDPattern, dataSourceIDPattern} {
		if p.MatchString(id) {
			return nil
		}
	}
	return fmt.Errorf("entity ID '%s' does not match any known identifier format", id)
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "tactic_id":
			return fmt.Errorf("%s: must be a tactic ID of the form TAnnnn", field)
		case "technique_id":
			return fmt.Errorf("%s: must be a technique ID of the form Tnnnn or Tnnnn.nnn", field)
		case "group_id":
			return fmt.Errorf("%s: must be a group ID of the form Gnnnn", field)
		case "mitigation_id":
			return fmt.Errorf("%s: must be a mitigation ID of the form Mnnnn", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
