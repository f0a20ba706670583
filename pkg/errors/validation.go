package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxLabelLength bounds node labels accepted from forms and the API.
const MaxLabelLength = 256

// ValidateLabel checks a node label entered in a form.
// Leading and trailing whitespace does not count towards emptiness.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeEmptyLabel, "label cannot be empty")
	}
	if len(label) > MaxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", MaxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidateEdgeEndpoints checks the source and target chosen for an edge.
// Both must be set and they must differ.
func ValidateEdgeEndpoints(source, target string) error {
	if source == "" || target == "" {
		return New(ErrCodeMissingEndpoint, "select both a source and a target node")
	}
	if source == target {
		return New(ErrCodeSelfLoop, "source and target must be different nodes")
	}
	return nil
}

// ValidateSelection checks that an entity was chosen before an edit or delete.
func ValidateSelection(id string) error {
	if id == "" {
		return New(ErrCodeNoSelection, "nothing selected")
	}
	return nil
}

// ValidateID validates an entity identifier supplied from outside the process,
// such as a URL path segment or a CLI argument.
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "id contains invalid characters")
		}
	}
	return nil
}

var namespacePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{0,63}$`)

// ValidateNamespace validates a storage namespace. An empty namespace is
// allowed and selects the unprefixed keys.
func ValidateNamespace(ns string) error {
	if ns == "" {
		return nil
	}
	if !namespacePattern.MatchString(ns) {
		return New(ErrCodeInvalidNamespace, "invalid namespace %q: use letters, digits, '.', '_' or '-' (max 64)", ns)
	}
	if strings.Contains(ns, "..") {
		return New(ErrCodeInvalidNamespace, "namespace cannot contain '..'")
	}
	return nil
}
