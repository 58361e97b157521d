package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ValidateIdentifier checks a node id, room name or building name supplied
// by a caller. It rejects empty and oversized values and anything carrying
// control characters, which never appear in graph descriptions.
func ValidateIdentifier(kind, value string) error {
	if value == "" {
		return New(ErrCodeInvalidQuery, "%s cannot be empty", kind)
	}

	const maxLength = 256
	if len(value) > maxLength {
		return New(ErrCodeInvalidQuery, "%s too long (max %d characters)", kind, maxLength)
	}

	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidQuery, "%s contains invalid control characters", kind)
		}
	}
	return nil
}

// roomRefRegex matches "<building>:<room>" with a non-empty building name.
var roomRefRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+:[^:]+$`)

// ValidateRoomRef validates the textual form of a building-qualified room.
func ValidateRoomRef(ref string) error {
	if err := ValidateIdentifier("room reference", ref); err != nil {
		return err
	}
	if !roomRefRegex.MatchString(ref) {
		return New(ErrCodeInvalidQuery, "room reference %q must look like <building>:<room>", ref)
	}
	return nil
}

// ValidateCoordinates validates a WGS84 latitude/longitude pair.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return New(ErrCodeInvalidQuery, "coordinates must be finite numbers")
	}
	if lat < -90 || lat > 90 {
		return New(ErrCodeInvalidQuery, "latitude %.6f out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return New(ErrCodeInvalidQuery, "longitude %.6f out of range [-180, 180]", lon)
	}
	return nil
}

// ValidatePath validates a file path relative to the data directory.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// localeRegex matches short locale tags such as "en" or "fr".
var localeRegex = regexp.MustCompile(`^[a-z]{2}$`)

// ValidateLocale validates an instruction locale tag. Empty means default.
func ValidateLocale(locale string) error {
	if locale == "" {
		return nil
	}
	if !localeRegex.MatchString(locale) {
		return New(ErrCodeInvalidQuery, "invalid locale %q", locale)
	}
	return nil
}
