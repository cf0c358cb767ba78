package genmedia

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
)

// Validation errors
var (
	ErrMissingProjectLocation   = errors.New("project and location are required")
	ErrEmptyPrompt              = errors.New("prompt cannot be empty")
	ErrImageCountOutOfRange     = errors.New("number of images out of range")
	ErrUnsupportedModel         = errors.New("unsupported model")
	ErrUnsupportedAspectRatio   = errors.New("unsupported aspect ratio")
	ErrUnsupportedSafetyLevel   = errors.New("unsupported safety filter level")
	ErrUnsupportedPersonSetting = errors.New("unsupported person generation policy")
	ErrInvalidSeed              = errors.New("seed must be -1 or between 0 and 2147483647")
)

// ValidateLocation checks the identifiers needed to build a client.
func ValidateLocation(project, location string) error {
	if project == "" || location == "" {
		return ErrMissingProjectLocation
	}
	return nil
}

// ValidatePrompt validates a text prompt.
func ValidatePrompt(prompt string) error {
	if prompt == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// ValidateRequest validates the remaining request fields. Project and
// location are checked separately by ValidateLocation.
func ValidateRequest(req GenerationRequest) error {
	if err := ValidatePrompt(req.Prompt); err != nil {
		return err
	}

	if req.NumberOfImages < MinImages || req.NumberOfImages > MaxImages {
		return fmt.Errorf("%w: %d (allowed %d-%d)", ErrImageCountOutOfRange, req.NumberOfImages, MinImages, MaxImages)
	}

	if !lo.Contains(Models, req.Model) {
		return fmt.Errorf("%w: %s", ErrUnsupportedModel, req.Model)
	}
	if !lo.Contains(AspectRatios, req.AspectRatio) {
		return fmt.Errorf("%w: %s", ErrUnsupportedAspectRatio, req.AspectRatio)
	}
	if !lo.Contains(SafetyFilterLevels, req.SafetyFilterLevel) {
		return fmt.Errorf("%w: %s", ErrUnsupportedSafetyLevel, req.SafetyFilterLevel)
	}
	if !lo.Contains(PersonGenerations, req.PersonGeneration) {
		return fmt.Errorf("%w: %s", ErrUnsupportedPersonSetting, req.PersonGeneration)
	}

	// the service takes a 32-bit seed
	if req.Seed < SeedUnset || req.Seed > math.MaxInt32 {
		return fmt.Errorf("%w: %d", ErrInvalidSeed, req.Seed)
	}

	return nil
}
