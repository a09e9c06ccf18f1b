package mustache

import (
	"reflect"
	"strings"
)

// EscapeFunc transforms an interpolated value's string form before it is
// written to the output.
type EscapeFunc func(string) string

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"/", "&#x2F;",
	"`", "&#x60;",
	"=", "&#x3D;",
)

// EscapeHTML is the default escape function. It replaces the characters
// & < > " ' / ` = with their HTML entity equivalents.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

var defaultEscapePtr = reflect.ValueOf(EscapeFunc(EscapeHTML)).Pointer()

// isDefaultEscape reports whether fn is EscapeHTML itself. The numeric
// bypass in variable interpolation applies only to the default escaper,
// never to a custom escaper that merely behaves the same.
func isDefaultEscape(fn EscapeFunc) bool {
	if fn == nil {
		return true
	}
	return reflect.ValueOf(fn).Pointer() == defaultEscapePtr
}
