package html2pdf

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// validationWindow bounds how much of the payload the prefix check inspects.
const validationWindow = 64

// ValidateHTML is a heuristic syntactic gate: it rejects payloads that are
// empty, not decodable as text, or that do not start with an HTML document
// root. It deliberately does not parse or normalize the document — it only
// exists to refuse obviously non-HTML input before a subprocess is spawned.
func ValidateHTML(content string) error {
	if content == "" {
		return ErrEmptyHTML
	}
	if !utf8.ValidString(content) {
		return fmt.Errorf("%w: payload is not valid UTF-8", ErrInvalidHTML)
	}

	head := strings.TrimLeftFunc(content, isSpace)
	if len(head) > validationWindow {
		head = head[:validationWindow]
	}
	head = strings.ToLower(head)

	if !strings.HasPrefix(head, "<!doctype") && !strings.HasPrefix(head, "<html") {
		return fmt.Errorf("%w: document must start with <!doctype or <html", ErrInvalidHTML)
	}
	return nil
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
