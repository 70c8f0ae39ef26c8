package caption

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TextTransform is the case transform applied to caption text before
// measurement and drawing, so layout width matches the rendered width.
type TextTransform string

const (
	TransformNone       TextTransform = "none"
	TransformUppercase  TextTransform = "uppercase"
	TransformLowercase  TextTransform = "lowercase"
	TransformCapitalize TextTransform = "capitalize"
)

// TransformText applies the transform to text. Capitalize upper-cases the
// first letter of each word and leaves the rest untouched. A cases.Caser is
// built per call because casers are not safe for concurrent use.
func TransformText(text string, transform TextTransform) string {
	switch transform {
	case TransformUppercase:
		return strings.ToUpper(text)
	case TransformLowercase:
		return strings.ToLower(text)
	case TransformCapitalize:
		return cases.Title(language.Und, cases.NoLower).String(text)
	default:
		return text
	}
}
