// Package template substitutes named variables into user-defined request
// body templates for generic_json slots.
//
// Placeholders have the form {{name}} where name consists of word
// characters ([A-Za-z0-9_]); whitespace inside the braces is ignored, so
// {{ model }} and {{model}} are equivalent. Substitution is purely textual:
// the caller decides whether a value must already be JSON-encoded (for
// example messages_json is inserted as a raw JSON array).
package template

import "regexp"

// Well-known variables available to generic_json body templates.
const (
	VarModel        = "model"
	VarMessagesJSON = "messages_json"
)

// DefaultBody is used when a generic_json slot has no body template.
const DefaultBody = `{"messages":{{messages_json}}}`

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Substitute replaces every {{name}} placeholder in tmpl with vars[name].
// Unknown names are replaced with the empty string. Text that does not form
// a complete placeholder is left untouched.
func Substitute(tmpl string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholder.FindStringSubmatch(match)[1]
		return vars[name]
	})
}

// Names returns the distinct placeholder names used by tmpl, in order of
// first appearance.
func Names(tmpl string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
