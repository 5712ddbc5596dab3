// Package validate holds the client-side field rules for the auth and entry
// forms. Passing validation only means a request is worth sending; the
// service still has the final say.
package validate

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"
)

var ErrEmptyCategoryName = errors.New("category name cannot be empty")

// PasswordSymbols is the punctuation set a new password must draw from.
// LoginPasswordSymbols is the narrower set the login form accepts; it
// lacks the double quote.
const (
	PasswordSymbols      = `!@#$%^&*(),.?":{}|<>`
	LoginPasswordSymbols = `!@#$%^&*(),.?:{}|<>`
)

var (
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
	digitRe  = regexp.MustCompile(`[0-9]`)
	letterRe = regexp.MustCompile(`[a-zA-Z]`)
	symbolRe = regexp.MustCompile(`[` + regexp.QuoteMeta(PasswordSymbols) + `]`)

	loginSymbolRe = regexp.MustCompile(`[` + regexp.QuoteMeta(LoginPasswordSymbols) + `]`)
)

// Errors maps a form field to the first rule message it failed.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+e[f])
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for name, or "".
func (e Errors) Field(name string) string {
	return e[name]
}

// Rule returns a non-empty message when value fails.
type Rule func(value string) string

func Required(msg string) Rule {
	return func(v string) string {
		if strings.TrimSpace(v) == "" {
			return msg
		}
		return ""
	}
}

func MinLen(n int, msg string) Rule {
	return func(v string) string {
		if len([]rune(v)) < n {
			return msg
		}
		return ""
	}
}

func Match(re *regexp.Regexp, msg string) Rule {
	return func(v string) string {
		if !re.MatchString(v) {
			return msg
		}
		return ""
	}
}

func Email(msg string) Rule {
	return Match(emailRe, msg)
}

// Layout requires v to parse with the given time layout.
func Layout(layout, msg string) Rule {
	return func(v string) string {
		if _, err := time.Parse(layout, strings.TrimSpace(v)); err != nil {
			return msg
		}
		return ""
	}
}

func Equals(other func() string, msg string) Rule {
	return func(v string) string {
		if v != other() {
			return msg
		}
		return ""
	}
}

// Func adapts rules to the func(string) error shape form widgets expect.
func Func(rules ...Rule) func(string) error {
	return func(v string) error {
		if msg := first(v, rules); msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

// Field pairs a value with its rules for Check.
type Field struct {
	Name  string
	Value string
	Rules []Rule
}

// Check evaluates every field and returns Errors, or nil when all pass.
func Check(fields ...Field) error {
	errs := Errors{}
	for _, f := range fields {
		if msg := first(f.Value, f.Rules); msg != "" {
			errs[f.Name] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func first(v string, rules []Rule) string {
	for _, r := range rules {
		if msg := r(v); msg != "" {
			return msg
		}
	}
	return ""
}
