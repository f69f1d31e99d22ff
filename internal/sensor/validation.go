package sensor

import (
	"fmt"
	"regexp"
)

// slugPattern constrains slugs to MQTT-topic and URL safe characters.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// maxNameLength bounds display names to keep API payloads sane.
const maxNameLength = 128

// Validate checks a sensor definition before persistence.
//
// Returns:
//   - error: ErrValidation describing the first problem found, or nil
func (s *TwilightSensor) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(s.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrValidation, maxNameLength)
	}
	if s.Slug == "" {
		return fmt.Errorf("%w: slug is required", ErrValidation)
	}
	if !slugPattern.MatchString(s.Slug) {
		return fmt.Errorf("%w: slug %q must be lowercase alphanumeric with hyphens", ErrValidation, s.Slug)
	}
	if s.PositionSource == "" {
		return fmt.Errorf("%w: position_source is required", ErrValidation)
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("%w: mode %q must be sunrise or sunset", ErrValidation, s.Mode)
	}
	return nil
}
