package rules

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// Matches reports whether rule applies to msg.
//
// A rule applies when its subject equals the message subject, or when the
// wildcard flag is exactly "Yes" and the message subject starts with the rule
// subject. Both comparisons ignore case. A rule without a subject never
// applies.
func Matches(rule *models.Rule, msg *models.Message) bool {
	if rule == nil || msg == nil {
		return false
	}
	subject := models.Value(rule.Subject)
	if subject == "" {
		return false
	}

	want := fold(subject)
	got := fold(msg.Name)

	if got == want {
		return true
	}
	if models.Value(rule.WildcardSearch) == models.WildcardEnabled && strings.HasPrefix(got, want) {
		return true
	}
	return false
}

// EqualFold compares a and b under Unicode case folding
func EqualFold(a, b string) bool {
	return fold(a) == fold(b)
}

// cases.Caser is stateful, so one is built per call
func fold(s string) string {
	return cases.Fold().String(s)
}
