package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/usecase"
)

func listRisksHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		risks, err := uc.ListRisks(ctx)
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		resp := make([]*riskDTO, len(risks))
		for i, risk := range risks {
			resp[i] = toRiskDTO(risk)
		}
		writeJSON(ctx, w, http.StatusOK, map[string]any{"risks": resp})
	}
}

func createRiskHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req riskInput
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}
		risk, err := req.toModel("")
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		created, err := uc.CreateRisk(ctx, risk)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusCreated, toRiskDTO(created))
	}
}

func getRiskHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		risk, err := uc.GetRisk(ctx, model.RiskID(chi.URLParam(r, "id")))
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, toRiskDTO(risk))
	}
}

func updateRiskHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req riskInput
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}
		risk, err := req.toModel(model.RiskID(chi.URLParam(r, "id")))
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		updated, err := uc.UpdateRisk(ctx, risk)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, toRiskDTO(updated))
	}
}

func deleteRiskHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := uc.DeleteRisk(ctx, model.RiskID(chi.URLParam(r, "id"))); err != nil {
			handleError(ctx, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listRiskControlsHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		riskID := model.RiskID(chi.URLParam(r, "id"))
		if _, err := uc.GetRisk(ctx, riskID); err != nil {
			handleError(ctx, w, err)
			return
		}

		impls, err := uc.ListControlImplementations(ctx, riskID)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, map[string]any{"controls": toControlImplementationDTOs(impls)})
	}
}

// replaceRiskControlsHandler makes the request body the complete control set of the risk
func replaceRiskControlsHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	type request struct {
		Controls []controlImplementationDTO `json:"controls"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		riskID := model.RiskID(chi.URLParam(r, "id"))

		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}

		impls := make([]*model.ControlImplementation, len(req.Controls))
		for i := range req.Controls {
			impls[i] = req.Controls[i].toModel(riskID)
		}

		saved, err := uc.ReplaceControlImplementations(ctx, riskID, impls)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, map[string]any{"controls": toControlImplementationDTOs(saved)})
	}
}

func assessRiskHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		assessment, err := uc.Assess(ctx,
			model.RiskID(chi.URLParam(r, "id")),
			model.AppetiteID(r.URL.Query().Get("appetite_id")),
		)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, toAssessmentDTO(assessment))
	}
}

func assessAllHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		assessments, err := uc.AssessAll(ctx)
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		resp := make([]*assessmentDTO, len(assessments))
		for i, a := range assessments {
			resp[i] = toAssessmentDTO(a)
		}
		writeJSON(ctx, w, http.StatusOK, map[string]any{"assessments": resp})
	}
}
