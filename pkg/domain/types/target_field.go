package types

// TargetField is a column of the control library schema that spreadsheet columns can be mapped to.
// The zero value means the source column is not mapped.
type TargetField string

const (
	TargetFieldNone                   TargetField = ""
	TargetFieldControlCode            TargetField = "control_code"
	TargetFieldTitle                  TargetField = "title"
	TargetFieldDescription            TargetField = "description"
	TargetFieldDomain                 TargetField = "domain"
	TargetFieldSubcategory            TargetField = "subcategory"
	TargetFieldControlType            TargetField = "control_type"
	TargetFieldGuidance               TargetField = "guidance"
	TargetFieldImplementationGuidance TargetField = "implementation_guidance"
	TargetFieldReferenceLinks         TargetField = "reference_links"
	TargetFieldSecurityFunction       TargetField = "security_function"
)

// AllTargetFields returns the target field catalog
func AllTargetFields() []TargetField {
	return []TargetField{
		TargetFieldControlCode,
		TargetFieldTitle,
		TargetFieldDescription,
		TargetFieldDomain,
		TargetFieldSubcategory,
		TargetFieldControlType,
		TargetFieldGuidance,
		TargetFieldImplementationGuidance,
		TargetFieldReferenceLinks,
		TargetFieldSecurityFunction,
	}
}

// IsValid reports whether the field is part of the catalog. TargetFieldNone is not valid.
func (f TargetField) IsValid() bool {
	switch f {
	case TargetFieldControlCode,
		TargetFieldTitle,
		TargetFieldDescription,
		TargetFieldDomain,
		TargetFieldSubcategory,
		TargetFieldControlType,
		TargetFieldGuidance,
		TargetFieldImplementationGuidance,
		TargetFieldReferenceLinks,
		TargetFieldSecurityFunction:
		return true
	default:
		return false
	}
}

// IsMapped reports whether the field is anything other than TargetFieldNone
func (f TargetField) IsMapped() bool {
	return f != TargetFieldNone
}

// String returns the string representation of the target field
func (f TargetField) String() string {
	return string(f)
}
