package svg

import (
	"bytes"
	"errors"
	"regexp"
)

// Attribute values may be double-quoted, single-quoted or bare. A bare value
// never ends in "/" so self-closing tags keep their slash.
const attrValue = `("[^"]*"|'[^']*'|[^\s"'>]*[^\s"'>/])`

var (
	selfClosingScript = regexp.MustCompile(`(?is)<\s*script\b[^>]*/\s*>`)
	scriptTagPattern  = regexp.MustCompile(`(?is)<\s*script\b.*?(<\s*/\s*script\s*>|\z)`)
	foreignPattern    = regexp.MustCompile(`(?is)<\s*foreignObject\b.*?(<\s*/\s*foreignObject\s*>|\z)`)
	eventAttrPattern  = regexp.MustCompile(`(?is)[\s/]on[a-z]+\s*=\s*` + attrValue)
	scriptHrefPattern = regexp.MustCompile(`(?is)\s(xlink:)?href\s*=\s*("\s*javascript:[^"]*"|'\s*javascript:[^']*'|javascript:[^\s"'>]*[^\s"'>/])`)
)

var ErrNotSVG = errors.New("not an svg document")

// Sanitize strips scripts, embedded HTML, event handlers and javascript: links
// so uploaded drawings can be served inline from the public site. An
// unterminated script or foreignObject element is removed up to the end of
// the document.
func Sanitize(input []byte) ([]byte, error) {
	if !bytes.Contains(bytes.ToLower(input), []byte("<svg")) {
		return nil, ErrNotSVG
	}

	clean := selfClosingScript.ReplaceAll(input, nil)
	clean = scriptTagPattern.ReplaceAll(clean, nil)
	clean = foreignPattern.ReplaceAll(clean, nil)
	clean = eventAttrPattern.ReplaceAll(clean, nil)
	clean = scriptHrefPattern.ReplaceAll(clean, nil)

	return clean, nil
}
