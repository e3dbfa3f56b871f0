// Package idpat resolves raw election identifiers into their canonical
// parts. A Rule splits an ID into base and split suffix, either at the
// last occurrence of a configured separator or through a simple pattern
// with {name} placeholders, and joins the parts back so that Join is a
// left inverse of Split. A PrefixTable maps externally assigned IDs to
// the organization that issued them.
package idpat

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholder regexes accepted in simple patterns. The suffix placeholder
// of a split pattern must be one of these.
var placeholders = map[string]string{
	"number":  "[0-9]+",
	"digit":   "[0-9]",
	"letter":  "[A-Za-z]",
	"letters": "[A-Za-z]+",
	"word":    `\w+`,
	"any":     ".*",
}

var placeholderRef = regexp.MustCompile(`\{([a-z]+)(\?)?\}`)

// PatternMismatchError reports an ID that a pattern-only rule could not
// take apart.
type PatternMismatchError struct {
	Kind    string
	ID      string
	Pattern string
}

func (e *PatternMismatchError) Error() string {
	return fmt.Sprintf("%s [%s] does not match split pattern [%s]", e.Kind, e.ID, e.Pattern)
}

// UnknownPrefixError reports an external ID that matched no configured
// prefix while strict resolution was requested.
type UnknownPrefixError struct {
	ID string
}

func (e *UnknownPrefixError) Error() string {
	return fmt.Sprintf("external ID [%s] matches no configured prefix", e.ID)
}

// Rule knows how to split an ID of one entity kind into base and suffix
// and to join the parts back. The zero value is unusable; build rules
// with NewRule.
type Rule struct {
	kind      string
	separator string
	pattern   string
	re        *regexp.Regexp
	suffixRe  *regexp.Regexp
	mid       string
}

// NewRule builds a split rule for one entity kind ("precinct",
// "district", ...). separator and pattern may each be empty; when both
// are set the separator drives the split and the pattern validates
// suffixes. A pattern is a literal string containing exactly one {base}
// placeholder, optionally followed by one literal run and one suffix
// placeholder such as {letter}; a trailing ? inside the braces marks the
// suffix optional.
func NewRule(kind, separator, pattern string) (*Rule, error) {
	r := &Rule{kind: kind, separator: separator, pattern: pattern}
	if pattern == "" {
		return r, nil
	}
	base := strings.Index(pattern, "{base}")
	if base < 0 {
		return nil, fmt.Errorf("split pattern [%s] has no {base} placeholder", pattern)
	}
	if base != 0 {
		return nil, fmt.Errorf("split pattern [%s] must start with {base}", pattern)
	}
	rest := pattern[len("{base}"):]
	if strings.Contains(rest, "{base}") {
		return nil, fmt.Errorf("split pattern [%s] repeats {base}", pattern)
	}
	refs := placeholderRef.FindAllStringSubmatchIndex(rest, -1)
	if len(refs) > 1 {
		return nil, fmt.Errorf("split pattern [%s] has more than one suffix placeholder", pattern)
	}
	if len(refs) == 0 {
		if rest != "" {
			return nil, fmt.Errorf("split pattern [%s] has literal text but no suffix placeholder", pattern)
		}
		r.re = regexp.MustCompile(`^(.+)$`)
		return r, nil
	}
	ref := refs[0]
	if rest[ref[1]:] != "" {
		return nil, fmt.Errorf("split pattern [%s] must end with its suffix placeholder", pattern)
	}
	name := rest[ref[2]:ref[3]]
	ph, ok := placeholders[name]
	if !ok {
		return nil, fmt.Errorf("split pattern [%s] uses unknown placeholder {%s}", pattern, name)
	}
	r.mid = rest[:ref[0]]
	optional := ref[4] >= 0
	suffix := "(" + ph + ")"
	mid := regexp.QuoteMeta(r.mid)
	if optional {
		suffix = "(?:" + mid + "(" + ph + "))?"
	} else {
		suffix = mid + suffix
	}
	r.re = regexp.MustCompile(`^(.+?)` + suffix + `$`)
	r.suffixRe = regexp.MustCompile(`^(?:` + ph + `)$`)
	return r, nil
}

// Kind returns the entity kind the rule was built for.
func (r *Rule) Kind() string {
	return r.kind
}

// Split takes an ID apart into base and split suffix. A configured
// separator splits at its last occurrence. Without one, or when the
// separator is absent, the pattern is applied; an ID a pattern-only rule
// cannot match is a PatternMismatchError, while with a separator
// configured the whole ID is simply the base.
func (r *Rule) Split(id string) (string, string, error) {
	if id == "" {
		return "", "", nil
	}
	if r.separator != "" {
		if i := strings.LastIndex(id, r.separator); i >= 0 {
			return id[:i], id[i+len(r.separator):], nil
		}
	}
	if r.re != nil {
		m := r.re.FindStringSubmatch(id)
		if m != nil {
			if len(m) > 2 {
				return m[1], m[2], nil
			}
			return m[1], "", nil
		}
		if r.separator == "" {
			return "", "", &PatternMismatchError{Kind: r.kind, ID: id, Pattern: r.pattern}
		}
	}
	return id, "", nil
}

// Join reassembles an ID from parts produced by Split.
func (r *Rule) Join(base, suffix string) string {
	if suffix == "" {
		return base
	}
	if r.separator != "" {
		return base + r.separator + suffix
	}
	return base + r.mid + suffix
}

// ValidSuffix reports whether a split suffix satisfies the configured
// pattern. Rules without a pattern accept every suffix.
func (r *Rule) ValidSuffix(suffix string) bool {
	if suffix == "" || r.suffixRe == nil {
		return true
	}
	return r.suffixRe.MatchString(suffix)
}
