package model

import "github.com/secmon-lab/cottus/pkg/domain/types"

// ColumnMapping maps one spreadsheet column to a control library field.
// TargetField is types.TargetFieldNone when the column is not mapped.
type ColumnMapping struct {
	SourceColumn string            `json:"source_column"`
	TargetField  types.TargetField `json:"target_field"`
	Confidence   float64           `json:"confidence"`
	Reasoning    string            `json:"reasoning,omitempty"`
}
