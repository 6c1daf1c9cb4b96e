package rules

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/odense-rpa/postmester-medcom/internal/models"
)

// ErrNoRules the sheet contained a header but no usable rows
var ErrNoRules = errors.New("mapping not loaded: no rule rows found")

// Column header names as used in the production sheet, with English aliases
var headerToField = map[string]string{
	"Emne":                        "subject",
	"Subject":                     "subject",
	"Wildcard søgning i emnefelt": "wildcard",
	"Wildcard search":             "wildcard",
	"Organisation":                "organization",
	"Organization":                "organization",
	"Forløb":                      "pathway",
	"Pathway":                     "pathway",
	"Opgavetype":                  "task_type",
	"Task type":                   "task_type",
}

// Table loaded rule table. It is immutable after Load and safe to share.
type Table struct {
	source string
	rules  []models.Rule
}

// Rules returns the rules in sheet order
func (t *Table) Rules() []models.Rule {
	out := make([]models.Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Len number of rules
func (t *Table) Len() int { return len(t.rules) }

// Source file the table was loaded from
func (t *Table) Source() string { return t.source }

// NewTable builds a table from rules already in memory
func NewTable(rules []models.Rule) *Table {
	out := make([]models.Rule, len(rules))
	copy(out, rules)
	return &Table{source: "memory", rules: out}
}

// Load reads the first sheet of the workbook at path
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping from Excel file '%s': %w", path, err)
	}
	defer file.Close()

	table, err := LoadReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping from Excel file '%s': %w", path, err)
	}
	table.source = path
	return table, nil
}

// LoadReader reads the first sheet of a workbook from r. Row 1 is the
// header; cells are trimmed and empty cells are absent.
func LoadReader(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(f.GetActiveSheetIndex())
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, errors.New("worksheet could not be loaded")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("header row is missing")
	}

	headers := make(map[int]string)
	for i, h := range rows[0] {
		if h = strings.TrimSpace(h); h != "" {
			headers[i] = h
		}
	}
	if len(headers) == 0 {
		return nil, errors.New("header row is empty")
	}

	table := &Table{}
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		rule, ok := parseRow(rows[rowIdx], headers)
		if !ok {
			continue
		}
		rule.Row = rowIdx + 1
		table.rules = append(table.rules, rule)
	}

	if len(table.rules) == 0 {
		return nil, ErrNoRules
	}
	return table, nil
}

func parseRow(row []string, headers map[int]string) (models.Rule, bool) {
	var rule models.Rule
	found := false

	for colIdx, header := range headers {
		if colIdx >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[colIdx])
		if value == "" {
			continue
		}
		found = true

		v := value
		switch headerToField[header] {
		case "subject":
			rule.Subject = &v
		case "wildcard":
			rule.WildcardSearch = &v
		case "organization":
			rule.Organization = &v
		case "pathway":
			rule.Pathway = &v
		case "task_type":
			rule.TaskType = &v
		default:
			if rule.Extra == nil {
				rule.Extra = make(map[string]string)
			}
			rule.Extra[header] = v
		}
	}

	return rule, found
}
