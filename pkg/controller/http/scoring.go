package http

import (
	"net/http"

	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/secmon-lab/cottus/pkg/service/mapping"
	"github.com/secmon-lab/cottus/pkg/usecase"
)

func scoreHandler(uc *usecase.ScoringUseCase) http.HandlerFunc {
	type request struct {
		Severity   string           `json:"severity"`
		Likelihood string           `json:"likelihood"`
		AppetiteID model.AppetiteID `json:"appetite_id"`
		Bands      []bandDTO        `json:"bands"`
	}
	type response struct {
		Score int             `json:"score"`
		Level types.RiskLevel `json:"level"`
		Band  *bandDTO        `json:"band"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}
		severity, err := types.ParseSeverity(req.Severity)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		likelihood, err := types.ParseLikelihood(req.Likelihood)
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		result, err := uc.Score(ctx, usecase.ScoreInput{
			Severity:   severity,
			Likelihood: likelihood,
			AppetiteID: req.AppetiteID,
			Bands:      toBands(req.Bands),
		})
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, response{
			Score: result.Score,
			Level: result.Level,
			Band:  toBandDTO(result.Band),
		})
	}
}

func residualHandler(uc *usecase.ScoringUseCase) http.HandlerFunc {
	type request struct {
		Severity   string                     `json:"severity"`
		Likelihood string                     `json:"likelihood"`
		Controls   []controlImplementationDTO `json:"controls"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}
		severity, err := types.ParseSeverity(req.Severity)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		likelihood, err := types.ParseLikelihood(req.Likelihood)
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		controls := make([]model.ControlImplementation, len(req.Controls))
		for i := range req.Controls {
			controls[i] = *req.Controls[i].toModel("")
		}

		residual, err := uc.Residual(ctx, severity, likelihood, controls)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, toResidualDTO(residual))
	}
}

func suggestMappingsHandler() http.HandlerFunc {
	type request struct {
		Columns []string `json:"columns"`
	}
	type response struct {
		Mappings []model.ColumnMapping `json:"mappings"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, response{Mappings: mapping.SuggestMappings(req.Columns)})
	}
}
