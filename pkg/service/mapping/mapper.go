// Package mapping suggests how spreadsheet columns map onto the control library schema
// and turns mapped spreadsheet rows into controls.
package mapping

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
)

// ErrTitleNotMapped is returned by RequireTitle when no column targets the title field
var ErrTitleNotMapped = goerr.New("title field is not mapped")

// Mapper evaluates an ordered rule table
type Mapper struct {
	rules []Rule
}

// New creates a Mapper. Without rules, DefaultRules is used.
func New(rules ...Rule) *Mapper {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Mapper{rules: rules}
}

// SuggestMappings returns one mapping per column, in column order. The first rule whose
// keywords match decides the column. Each target can be claimed by only one column, so
// when that rule's target is already taken the column stays unmapped. Unmatched
// columns get an empty target and confidence 0.
func (m *Mapper) SuggestMappings(columns []string) []model.ColumnMapping {
	claimed := make(map[types.TargetField]bool)
	mappings := make([]model.ColumnMapping, len(columns))

	for i, column := range columns {
		mappings[i] = model.ColumnMapping{SourceColumn: column}
		lower := strings.ToLower(column)

		for _, rule := range m.rules {
			if !rule.Matches(lower) {
				continue
			}
			if claimed[rule.Target] {
				break
			}

			claimed[rule.Target] = true
			mappings[i].TargetField = rule.Target
			mappings[i].Confidence = rule.Confidence
			mappings[i].Reasoning = rule.Reason
			break
		}
	}

	return mappings
}

// SuggestMappings runs the default rule table
func SuggestMappings(columns []string) []model.ColumnMapping {
	return New().SuggestMappings(columns)
}

// UpdateMapping forces column to field with confidence 1.0 and returns a new slice.
// Other columns already mapped to field keep their mapping, so duplicates are possible.
// An unknown column is appended as a new mapping.
func UpdateMapping(mappings []model.ColumnMapping, column string, field types.TargetField) []model.ColumnMapping {
	updated := make([]model.ColumnMapping, len(mappings))
	copy(updated, mappings)

	manual := model.ColumnMapping{
		SourceColumn: column,
		TargetField:  field,
		Confidence:   1.0,
		Reasoning:    "Manually assigned",
	}
	if !field.IsMapped() {
		manual.Confidence = 0
		manual.Reasoning = "Manually unmapped"
	}

	for i := range updated {
		if updated[i].SourceColumn == column {
			updated[i] = manual
			return updated
		}
	}
	return append(updated, manual)
}

// RequireTitle returns ErrTitleNotMapped unless at least one mapping targets the title field
func RequireTitle(mappings []model.ColumnMapping) error {
	for _, m := range mappings {
		if m.TargetField == types.TargetFieldTitle {
			return nil
		}
	}
	return goerr.Wrap(ErrTitleNotMapped, "at least one column must be mapped to title")
}

// DuplicateTargets returns the targets claimed by more than one mapping
func DuplicateTargets(mappings []model.ColumnMapping) []types.TargetField {
	counts := make(map[types.TargetField]int)
	var dups []types.TargetField
	for _, m := range mappings {
		if !m.TargetField.IsMapped() {
			continue
		}
		counts[m.TargetField]++
		if counts[m.TargetField] == 2 {
			dups = append(dups, m.TargetField)
		}
	}
	return dups
}
