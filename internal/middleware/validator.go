package middleware

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Input validation and sanitization utilities

// AllowedUploadTypes is the MIME allow-list for report uploads.
var AllowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/svg+xml":   true,
	"application/pdf": true,
}

// MaxUploadBytes is the report upload size limit (10 MiB).
const MaxUploadBytes = 10 << 20

// ValidateMIME checks the declared upload type against the allow-list.
func ValidateMIME(mime string) error {
	if !AllowedUploadTypes[NormalizeMIME(mime)] {
		return fmt.Errorf("invalid file type. Only JPEG, PNG, SVG, and PDF files are allowed")
	}
	return nil
}

// NormalizeMIME strips parameters and lowercases.
func NormalizeMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}

// MaxFileNameLength matches the file_name column, in characters.
const MaxFileNameLength = 255

// SanitizeFileName keeps only the base name as valid UTF-8, without control
// characters, cut to MaxFileNameLength on a character boundary.
func SanitizeFileName(name string) string {
	name = strings.ToValidUTF8(name, "")
	name = SanitizeString(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	if utf8.RuneCountInString(name) > MaxFileNameLength {
		name = string([]rune(name)[:MaxFileNameLength])
	}
	return name
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateSessionToken accepts uuid-formatted tokens only.
func ValidateSessionToken(token string) error {
	if token == "" {
		return fmt.Errorf("session token cannot be empty")
	}
	if _, err := uuid.Parse(token); err != nil {
		return fmt.Errorf("invalid session token format")
	}
	return nil
}

// ValidateID validates record id format (uuid)
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid id format")
	}
	return nil
}
