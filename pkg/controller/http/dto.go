package http

import (
	"time"

	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
)

type bandDTO struct {
	Label       string `json:"label"`
	Color       string `json:"color,omitempty"`
	MinScore    int    `json:"min_score"`
	MaxScore    int    `json:"max_score"`
	Description string `json:"description,omitempty"`
}

func toBandDTO(b *model.Band) *bandDTO {
	if b == nil {
		return nil
	}
	return &bandDTO{
		Label:       b.Label,
		Color:       b.Color,
		MinScore:    b.MinScore,
		MaxScore:    b.MaxScore,
		Description: b.Description,
	}
}

func toBands(dtos []bandDTO) []model.Band {
	bands := make([]model.Band, len(dtos))
	for i, d := range dtos {
		bands[i] = model.Band{
			Label:       d.Label,
			Color:       d.Color,
			MinScore:    d.MinScore,
			MaxScore:    d.MaxScore,
			Description: d.Description,
		}
	}
	return bands
}

type appetiteDTO struct {
	ID          model.AppetiteID `json:"id"`
	Name        string           `json:"name"`
	Bands       []bandDTO        `json:"bands"`
	Tolerance   int              `json:"tolerance"`
	Description string           `json:"description,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toAppetiteDTO(a *model.RiskAppetite) *appetiteDTO {
	dto := &appetiteDTO{
		ID:          a.ID,
		Name:        a.Name,
		Bands:       make([]bandDTO, len(a.Bands)),
		Tolerance:   a.Tolerance,
		Description: a.Description,
		UpdatedAt:   a.UpdatedAt,
	}
	for i := range a.Bands {
		dto.Bands[i] = *toBandDTO(&a.Bands[i])
	}
	return dto
}

type riskDTO struct {
	ID                 model.RiskID            `json:"id"`
	Title              string                  `json:"title"`
	Description        string                  `json:"description,omitempty"`
	CategoryID         types.CategoryID        `json:"category_id,omitempty"`
	Owner              string                  `json:"owner,omitempty"`
	InherentSeverity   types.Severity          `json:"inherent_severity"`
	InherentLikelihood types.Likelihood        `json:"inherent_likelihood"`
	Treatment          types.TreatmentStrategy `json:"treatment,omitempty"`
	AppetiteID         model.AppetiteID        `json:"appetite_id,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

func toRiskDTO(r *model.Risk) *riskDTO {
	return &riskDTO{
		ID:                 r.ID,
		Title:              r.Title,
		Description:        r.Description,
		CategoryID:         r.CategoryID,
		Owner:              r.Owner,
		InherentSeverity:   r.InherentSeverity,
		InherentLikelihood: r.InherentLikelihood,
		Treatment:          r.Treatment,
		AppetiteID:         r.AppetiteID,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// riskInput is the writable part of a risk
type riskInput struct {
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	CategoryID         types.CategoryID        `json:"category_id"`
	Owner              string                  `json:"owner"`
	InherentSeverity   string                  `json:"inherent_severity"`
	InherentLikelihood string                  `json:"inherent_likelihood"`
	Treatment          types.TreatmentStrategy `json:"treatment"`
	AppetiteID         model.AppetiteID        `json:"appetite_id"`
}

func (in *riskInput) toModel(id model.RiskID) (*model.Risk, error) {
	severity, err := types.ParseSeverity(in.InherentSeverity)
	if err != nil {
		return nil, err
	}
	likelihood, err := types.ParseLikelihood(in.InherentLikelihood)
	if err != nil {
		return nil, err
	}
	return &model.Risk{
		ID:                 id,
		Title:              in.Title,
		Description:        in.Description,
		CategoryID:         in.CategoryID,
		Owner:              in.Owner,
		InherentSeverity:   severity,
		InherentLikelihood: likelihood,
		Treatment:          in.Treatment,
		AppetiteID:         in.AppetiteID,
	}, nil
}

type controlImplementationDTO struct {
	ControlID             model.ControlID            `json:"control_id"`
	Status                types.ImplementationStatus `json:"status"`
	EffectivenessEstimate *int                       `json:"effectiveness_estimate,omitempty"`
	Notes                 string                     `json:"notes,omitempty"`
	UpdatedAt             time.Time                  `json:"updated_at,omitzero"`
}

func toControlImplementationDTOs(impls []*model.ControlImplementation) []controlImplementationDTO {
	dtos := make([]controlImplementationDTO, len(impls))
	for i, impl := range impls {
		dtos[i] = controlImplementationDTO{
			ControlID:             impl.ControlID,
			Status:                impl.Status,
			EffectivenessEstimate: impl.EffectivenessEstimate,
			Notes:                 impl.Notes,
			UpdatedAt:             impl.UpdatedAt,
		}
	}
	return dtos
}

func (d *controlImplementationDTO) toModel(riskID model.RiskID) *model.ControlImplementation {
	return &model.ControlImplementation{
		RiskID:                riskID,
		ControlID:             d.ControlID,
		Status:                d.Status,
		EffectivenessEstimate: d.EffectivenessEstimate,
		Notes:                 d.Notes,
	}
}

type residualDTO struct {
	Severity      types.Severity   `json:"severity"`
	Likelihood    types.Likelihood `json:"likelihood"`
	Score         int              `json:"score"`
	Level         types.RiskLevel  `json:"level"`
	InherentScore int              `json:"inherent_score"`
	Effectiveness float64          `json:"effectiveness"`
}

func toResidualDTO(r *model.ResidualRisk) *residualDTO {
	return &residualDTO{
		Severity:      r.Severity,
		Likelihood:    r.Likelihood,
		Score:         r.Score,
		Level:         r.Level,
		InherentScore: r.InherentScore,
		Effectiveness: r.Effectiveness,
	}
}

type assessmentDTO struct {
	RiskID           model.RiskID     `json:"risk_id"`
	RiskTitle        string           `json:"risk_title"`
	InherentScore    int              `json:"inherent_score"`
	InherentLevel    types.RiskLevel  `json:"inherent_level"`
	Residual         *residualDTO     `json:"residual"`
	AppetiteID       model.AppetiteID `json:"appetite_id,omitempty"`
	Band             *bandDTO         `json:"band"`
	Tolerance        int              `json:"tolerance,omitempty"`
	ExceedsTolerance bool             `json:"exceeds_tolerance"`
}

func toAssessmentDTO(a *model.Assessment) *assessmentDTO {
	return &assessmentDTO{
		RiskID:           a.RiskID,
		RiskTitle:        a.RiskTitle,
		InherentScore:    a.InherentScore,
		InherentLevel:    a.InherentLevel,
		Residual:         toResidualDTO(a.Residual),
		AppetiteID:       a.AppetiteID,
		Band:             toBandDTO(a.Band),
		Tolerance:        a.Tolerance,
		ExceedsTolerance: a.ExceedsTolerance,
	}
}

type frameworkDTO struct {
	ID          model.FrameworkID `json:"id"`
	Name        string            `json:"name"`
	Version     string            `json:"version,omitempty"`
	Description string            `json:"description,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func toFrameworkDTO(f *model.Framework) *frameworkDTO {
	return &frameworkDTO{
		ID:          f.ID,
		Name:        f.Name,
		Version:     f.Version,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

type controlDTO struct {
	ID                     model.ControlID `json:"id"`
	Code                   string          `json:"code,omitempty"`
	Title                  string          `json:"title"`
	Description            string          `json:"description,omitempty"`
	Domain                 string          `json:"domain,omitempty"`
	Subcategory            string          `json:"subcategory,omitempty"`
	ControlType            string          `json:"control_type,omitempty"`
	Guidance               string          `json:"guidance,omitempty"`
	ImplementationGuidance string          `json:"implementation_guidance,omitempty"`
	ReferenceLinks         []string        `json:"reference_links,omitempty"`
	SecurityFunction       string          `json:"security_function,omitempty"`
}

func toControlDTOs(controls []*model.Control) []controlDTO {
	dtos := make([]controlDTO, len(controls))
	for i, c := range controls {
		dtos[i] = controlDTO{
			ID:                     c.ID,
			Code:                   c.Code,
			Title:                  c.Title,
			Description:            c.Description,
			Domain:                 c.Domain,
			Subcategory:            c.Subcategory,
			ControlType:            c.ControlType,
			Guidance:               c.Guidance,
			ImplementationGuidance: c.ImplementationGuidance,
			ReferenceLinks:         c.ReferenceLinks,
			SecurityFunction:       c.SecurityFunction,
		}
	}
	return dtos
}
