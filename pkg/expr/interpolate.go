package expr

import (
	"errors"
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// HasInterpolation reports whether s contains a {{...}} expression.
func HasInterpolation(s string) bool {
	open := strings.Index(s, openDelim)
	return open >= 0 && strings.Index(s[open:], closeDelim) > 0
}

// Interpolate replaces every {{expr}} occurrence in tmpl with the stringified
// result of evaluating expr against the scope.
//
// Interpolation is fail-soft: a failing expression renders as the empty
// string and rendering continues for the rest of the template. The returned
// error joins all failures so the caller can report them; the returned string
// is always usable.
func Interpolate(tmpl string, s *Scope) (string, error) {
	if !strings.Contains(tmpl, openDelim) {
		return tmpl, nil
	}

	var b strings.Builder
	var errs []error
	rest := tmpl
	for {
		open := strings.Index(rest, openDelim)
		if open < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		rest = rest[open+len(openDelim):]

		close := strings.Index(rest, closeDelim)
		if close < 0 {
			// Unterminated delimiter: emit literally.
			b.WriteString(openDelim)
			b.WriteString(rest)
			break
		}
		src := strings.TrimSpace(rest[:close])
		rest = rest[close+len(closeDelim):]

		if src == "" {
			continue
		}
		v, err := EvalString(src, s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		b.WriteString(Stringify(v))
	}
	return b.String(), errors.Join(errs...)
}
