// Package validation evaluates form submissions against per step rule tables.
package validation

import (
	"net/url"
	"strings"
	"time"

	"bookvideolink/internal/models"
)

// FieldError is one failed rule, rendered beside its field and in the error summary.
type FieldError struct {
	FieldID string `json:"fieldId"`
	Text    string `json:"text"`
}

type Errors []FieldError

// For returns the message for the field, or "".
func (e Errors) For(field string) string {
	for _, fe := range e {
		if fe.FieldID == field {
			return fe.Text
		}
	}
	return ""
}

func (e Errors) Has(field string) bool {
	return e.For(field) != ""
}

// Input is what a rule can see: the posted form and the journey it belongs to.
type Input struct {
	Values url.Values
	Draft  *models.BookingDraft
	Now    time.Time

	// Candidates lists, per room field, the rooms offered on the page.
	// A field without an entry is not checked against a list.
	Candidates map[string][]string

	// Slots holds the interval each room field would be booked for.
	Slots map[string]models.Interval
}

// Get returns the trimmed value of a field.
func (in Input) Get(field string) string {
	return strings.TrimSpace(in.Values.Get(field))
}

// All returns the non blank values of a multi value field.
func (in Input) All(field string) []string {
	var out []string
	for _, v := range in.Values[field] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (in Input) now() time.Time {
	if in.Now.IsZero() {
		return time.Now()
	}
	return in.Now
}

// Rule is a predicate over the input and the message shown when it fails.
type Rule struct {
	Check   func(Input) bool
	Message string
}

type FieldRules struct {
	Field string
	Rules []Rule
}

// Table is an ordered list of fields, each with ordered rules.
type Table []FieldRules

// Validate reports the first failing rule of every field, in table order.
func (t Table) Validate(in Input) Errors {
	var errs Errors
	for _, fr := range t {
		for _, r := range fr.Rules {
			if !r.Check(in) {
				errs = append(errs, FieldError{FieldID: fr.Field, Text: r.Message})
				break
			}
		}
	}
	return errs
}

func field(name string, rules ...Rule) FieldRules {
	return FieldRules{Field: name, Rules: rules}
}

func rule(check func(Input) bool, message string) Rule {
	return Rule{Check: check, Message: message}
}
