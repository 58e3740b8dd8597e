// Package validate holds the registration input rules.
//
// The same rules run in two places: the registration service (the
// authoritative check, it cannot be bypassed) and the submission client
// (a pre-flight check that saves a round trip). Both call Check, so the
// two can never disagree about what is valid.
//
// The plain functions (Email, PasswordLength, PasswordBytes, Required) are exported for
// callers that need a single rule. Check wires them into a
// go-playground/validator instance as custom tags so whole request
// structs can be validated from their validate:"..." struct tags.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password accepted, in characters.
const MinPasswordLength = 8

// MaxPasswordBytes is the longest password accepted, in bytes. bcrypt
// ignores anything past it.
const MaxPasswordBytes = 72

// emailPattern: one or more characters that are neither whitespace nor
// "@", then "@", then the same class, ".", and the same class again.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rule names a validation rule. The values are the validator tags.
type Rule string

const (
	RuleRequired Rule = "notblank"
	RuleEmail    Rule = "emailfmt"
	RulePassword Rule = "password"
	RulePassMax  Rule = "pwmax"
	RuleTerms    Rule = "accepted"
)

// Failure is a single failing field.
// Field is the JSON name of the field (e.g. "email", "terms").
type Failure struct {
	Field string
	Rule  Rule
}

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// PasswordLength reports whether s is at least MinPasswordLength
// characters long.
func PasswordLength(s string) bool {
	return utf8.RuneCountInString(s) >= MinPasswordLength
}

// PasswordBytes reports whether s fits in MaxPasswordBytes.
func PasswordBytes(s string) bool {
	return len(s) <= MaxPasswordBytes
}

// Required reports whether every field is non-empty after trimming.
func Required(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// Validator wraps a configured *validator.Validate.
// A single instance is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the registration tags registered.
// It panics only if a tag cannot be registered, which is a programming
// error caught by the first test run.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names ("firstname") instead of Go names ("Firstname").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	must(v.RegisterValidation(string(RuleRequired), func(fl validator.FieldLevel) bool {
		return Required(fl.Field().String())
	}))
	must(v.RegisterValidation(string(RuleEmail), func(fl validator.FieldLevel) bool {
		return Email(fl.Field().String())
	}))
	must(v.RegisterValidation(string(RulePassword), func(fl validator.FieldLevel) bool {
		return PasswordLength(fl.Field().String())
	}))
	must(v.RegisterValidation(string(RulePassMax), func(fl validator.FieldLevel) bool {
		return PasswordBytes(fl.Field().String())
	}))
	must(v.RegisterValidation(string(RuleTerms), func(fl validator.FieldLevel) bool {
		f := fl.Field()
		return f.Kind() == reflect.Bool && f.Bool()
	}))

	return &Validator{v: v}
}

// Check validates a request struct and returns one Failure per failing
// field, in field declaration order. A nil result means the value is
// valid. validator stops at the first failing tag of a field, so a blank
// field is reported as RuleRequired only.
func (val *Validator) Check(s any) []Failure {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: s was not a struct. Treat the whole
		// value as missing rather than panicking in a request path.
		return []Failure{{Field: "", Rule: RuleRequired}}
	}

	failures := make([]Failure, 0, len(verrs))
	for _, fe := range verrs {
		failures = append(failures, Failure{Field: fe.Field(), Rule: Rule(fe.Tag())})
	}
	return failures
}

// Has reports whether any failure uses one of the given rules.
func Has(failures []Failure, rules ...Rule) bool {
	for _, f := range failures {
		for _, r := range rules {
			if f.Rule == r {
				return true
			}
		}
	}
	return false
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
