package mapping

import (
	"strings"

	"github.com/secmon-lab/cottus/pkg/domain/types"
)

// Rule suggests Target for any column whose lower-cased name contains one of Keywords
type Rule struct {
	Target     types.TargetField
	Keywords   []string
	Confidence float64
	Reason     string
}

// Matches reports whether the lower-cased column contains any keyword
func (r Rule) Matches(lowerColumn string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowerColumn, kw) {
			return true
		}
	}
	return false
}

// DefaultRules is evaluated top to bottom. More specific fields come before the
// generic ones they contain, e.g. implementation_guidance before guidance and
// subcategory before domain ("category").
var DefaultRules = []Rule{
	{
		Target:     types.TargetFieldControlCode,
		Keywords:   []string{"code", "control id", "control_id", "controlid", "identifier", "ref id"},
		Confidence: 0.95,
		Reason:     "Column name indicates a control identifier",
	},
	{
		Target:     types.TargetFieldImplementationGuidance,
		Keywords:   []string{"implementation"},
		Confidence: 0.9,
		Reason:     "Column name mentions implementation guidance",
	},
	{
		Target:     types.TargetFieldReferenceLinks,
		Keywords:   []string{"reference", "link", "url"},
		Confidence: 0.85,
		Reason:     "Column name indicates reference links",
	},
	{
		Target:     types.TargetFieldSecurityFunction,
		Keywords:   []string{"function", "csf"},
		Confidence: 0.8,
		Reason:     "Column name indicates a security function",
	},
	{
		Target:     types.TargetFieldSubcategory,
		Keywords:   []string{"subcategory", "sub-category", "sub category"},
		Confidence: 0.85,
		Reason:     "Column name indicates a subcategory",
	},
	{
		Target:     types.TargetFieldDomain,
		Keywords:   []string{"domain", "category", "family"},
		Confidence: 0.85,
		Reason:     "Column name indicates a control domain or family",
	},
	{
		Target:     types.TargetFieldControlType,
		Keywords:   []string{"type"},
		Confidence: 0.8,
		Reason:     "Column name indicates a control type",
	},
	{
		Target:     types.TargetFieldGuidance,
		Keywords:   []string{"guidance", "guide"},
		Confidence: 0.8,
		Reason:     "Column name indicates guidance",
	},
	{
		Target:     types.TargetFieldDescription,
		Keywords:   []string{"description", "desc", "detail", "requirement", "statement"},
		Confidence: 0.9,
		Reason:     "Column name indicates a description",
	},
	{
		Target:     types.TargetFieldTitle,
		Keywords:   []string{"title", "name"},
		Confidence: 0.9,
		Reason:     "Column name indicates a title",
	},
}
