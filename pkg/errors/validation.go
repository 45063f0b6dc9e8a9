package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// blueprintNameRegex matches names usable as file stems and document keys.
var blueprintNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateBlueprintName validates a blueprint name for safety and correctness.
// Names are used as file stems, so anything that could escape the blueprint
// directory is rejected.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences or separators
//   - Maximum length of 128 characters
func ValidateBlueprintName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidBlueprint, "blueprint name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidBlueprint, "blueprint name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidBlueprint, "blueprint name contains invalid control characters")
		}
	}

	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidBlueprint, "blueprint name cannot contain path components: %q", name)
	}

	if !blueprintNameRegex.MatchString(name) {
		return New(ErrCodeInvalidBlueprint, "invalid blueprint name: %q", name)
	}

	return nil
}

// ValidateStep checks that a 1-based step number is usable.
func ValidateStep(step int) error {
	if step < 1 {
		return New(ErrCodeInvalidInput, "step must be >= 1, got %d", step)
	}
	return nil
}

// ValidateDirection checks a navigation direction sent by an acknowledgment
// client. Only "next" and "back" are accepted.
func ValidateDirection(direction string) error {
	switch direction {
	case "next", "back":
		return nil
	}
	return New(ErrCodeInvalidDirection, "direction must be next or back, got %q", direction)
}
