package errors

import (
	"testing"
)

func TestValidateBlueprintName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "house", false},
		{"valid with dash", "small-house", false},
		{"valid with underscore", "small_house", false},
		{"valid with dot", "house.v2", false},
		{"valid with digits", "tower3", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 200)), true},
		{"path traversal", "../secret", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"leading dot", ".hidden", true},
		{"spaces", "my house", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBlueprintName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBlueprintName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidBlueprint) {
				t.Errorf("ValidateBlueprintName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateStep(t *testing.T) {
	for _, step := range []int{1, 2, 100} {
		if err := ValidateStep(step); err != nil {
			t.Errorf("ValidateStep(%d) = %v, want nil", step, err)
		}
	}
	for _, step := range []int{0, -1} {
		if err := ValidateStep(step); !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateStep(%d) = %v, want INVALID_INPUT", step, err)
		}
	}
}

func TestValidateDirection(t *testing.T) {
	for _, d := range []string{"next", "back"} {
		if err := ValidateDirection(d); err != nil {
			t.Errorf("ValidateDirection(%q) = %v, want nil", d, err)
		}
	}
	for _, d := range []string{"", "Next", "forward", "up"} {
		if err := ValidateDirection(d); !Is(err, ErrCodeInvalidDirection) {
			t.Errorf("ValidateDirection(%q) = %v, want INVALID_DIRECTION", d, err)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidPlacement,
		ErrCodeInvalidFormat,
		ErrCodeInvalidDirection,
		ErrCodeInvalidBlueprint,
		ErrCodeNotFound,
		ErrCodeBlueprintNotFound,
		ErrCodeSessionNotFound,
		ErrCodeSessionExpired,
		ErrCodeRenderFailed,
		ErrCodeUnavailable,
		ErrCodeInternal,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
