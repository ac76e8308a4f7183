package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds cell names and layer labels.
const maxNameLength = 256

// ValidateCellName validates a cell display name.
// Display names need not be unique, but they must be printable so that
// exchange writers and the CLI can show them.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No '#' (reserved as the separator of Key)
//   - Maximum length of 256 characters
func ValidateCellName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "cell name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "cell name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "cell name contains invalid control characters")
		}
	}

	if strings.Contains(name, "#") {
		return New(ErrCodeInvalidInput, "cell name cannot contain '#': %q", name)
	}

	return nil
}

// layerRegex matches process-layer labels such as "metal1", "poly" or "nwell.drawing".
var layerRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:/-]*$`)

// ValidateLayer validates a process-layer label for a leaf cell.
func ValidateLayer(layer string) error {
	if layer == "" {
		return New(ErrCodeInvalidInput, "layer label cannot be empty")
	}

	if len(layer) > maxNameLength {
		return New(ErrCodeInvalidInput, "layer label too long (max %d characters)", maxNameLength)
	}

	if !layerRegex.MatchString(layer) {
		return New(ErrCodeInvalidInput, "invalid layer label: %q", layer)
	}

	return nil
}

// ValidateRef validates a document-local reference handle.
// Refs are used in layout documents to address cells independently of
// their (possibly repeated) display names.
func ValidateRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidInput, "ref cannot be empty")
	}
	if len(ref) > maxNameLength {
		return New(ErrCodeInvalidInput, "ref too long (max %d characters)", maxNameLength)
	}
	for _, r := range ref {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "ref contains whitespace or control characters: %q", ref)
		}
	}
	return nil
}
