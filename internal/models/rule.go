package models

// Rule one row of the mapping table. Nil fields are absent cells.
type Rule struct {
	Row            int
	Subject        *string
	WildcardSearch *string
	Organization   *string
	Pathway        *string
	TaskType       *string
	Extra          map[string]string
}

// WildcardEnabled flag value enabling subject prefix matching
const WildcardEnabled = "Yes"

// Value returns *s or "" when s is nil
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// HasActions reports whether the rule names any action
func (r *Rule) HasActions() bool {
	return r.Organization != nil || r.Pathway != nil || r.TaskType != nil
}
