package errors

import (
	"testing"
)

func TestValidateDocumentID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "0b3c1d5e-8f7a-4c2b-9d1e-2f3a4b5c6d7e", false},

		{"empty", "", true},
		{"not a uuid", "board-1", true},
		{"upper case", "0B3C1D5E-8F7A-4C2B-9D1E-2F3A4B5C6D7E", true},
		{"braced", "{0b3c1d5e-8f7a-4c2b-9d1e-2f3a4b5c6d7e}", true},
		{"urn prefix", "urn:uuid:0b3c1d5e-8f7a-4c2b-9d1e-2f3a4b5c6d7e", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidID) {
				t.Errorf("ValidateDocumentID(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateDesignator(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"component", "R1", false},
		{"pin number", "2", false},
		{"pin polarity", "-", false},
		{"dotted pin", "A.1", false},

		{"empty", "", true},
		{"dots only", "..", true},
		{"space", "R 1", true},
		{"slash", "R1/2", true},
		{"too long", "X123456789012345678901234567890123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDesignator(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDesignator(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	if err := ValidateFormat("svg", "json", "dot", "svg"); err != nil {
		t.Errorf("ValidateFormat(svg) error = %v", err)
	}
	err := ValidateFormat("png", "json", "dot", "svg")
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormat(png) error = %v, want INVALID_FORMAT", err)
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "boards/amp.json", false},
		{"valid nested", "lib/power/ldo.json", false},
		{"valid filename only", "board.json", false},
		{"valid with dots", "v1.2.3/board.json", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidSnapshot,
		ErrCodeInvalidConfig,
		ErrCodeInvalidFormat,
		ErrCodeInvalidID,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeDocumentNotFound,
		ErrCodeFileNotFound,
		ErrCodeStorage,
		ErrCodeCache,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
