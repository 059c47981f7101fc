package mapping

import (
	"strings"

	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
)

// Apply builds the field values of one row. Mappings are applied in order, so
// when several columns target the same field the last one wins. Columns missing
// from header or row are skipped.
func Apply(mappings []model.ColumnMapping, header []string, row []string) map[types.TargetField]string {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, exists := index[h]; !exists {
			index[h] = i
		}
	}

	values := make(map[types.TargetField]string)
	for _, m := range mappings {
		if !m.TargetField.IsMapped() {
			continue
		}
		i, ok := index[m.SourceColumn]
		if !ok || i >= len(row) {
			continue
		}
		values[m.TargetField] = strings.TrimSpace(row[i])
	}
	return values
}

// BuildControl converts applied values into a control of frameworkID.
// It returns false when the row has no title.
func BuildControl(frameworkID model.FrameworkID, values map[types.TargetField]string) (*model.Control, bool) {
	title := values[types.TargetFieldTitle]
	if title == "" {
		return nil, false
	}

	return &model.Control{
		ID:                     model.NewControlID(),
		FrameworkID:            frameworkID,
		Code:                   values[types.TargetFieldControlCode],
		Title:                  title,
		Description:            values[types.TargetFieldDescription],
		Domain:                 values[types.TargetFieldDomain],
		Subcategory:            values[types.TargetFieldSubcategory],
		ControlType:            values[types.TargetFieldControlType],
		Guidance:               values[types.TargetFieldGuidance],
		ImplementationGuidance: values[types.TargetFieldImplementationGuidance],
		ReferenceLinks:         splitLinks(values[types.TargetFieldReferenceLinks]),
		SecurityFunction:       values[types.TargetFieldSecurityFunction],
	}, true
}

func splitLinks(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ',' || r == ';'
	})

	var links []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			links = append(links, f)
		}
	}
	return links
}
