package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/usecase"
)

func listAppetitesHandler(uc *usecase.AppetiteUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		appetites, err := uc.ListAppetites(ctx)
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		resp := make([]*appetiteDTO, len(appetites))
		for i, a := range appetites {
			resp[i] = toAppetiteDTO(a)
		}
		writeJSON(ctx, w, http.StatusOK, map[string]any{"appetites": resp})
	}
}

// putAppetiteHandler serves both POST /appetites and PUT /appetites/{id}.
// Without an ID in the path a new profile is created.
func putAppetiteHandler(uc *usecase.AppetiteUseCase) http.HandlerFunc {
	type request struct {
		Name        string    `json:"name"`
		Bands       []bandDTO `json:"bands"`
		Tolerance   int       `json:"tolerance"`
		Description string    `json:"description"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}

		id := model.AppetiteID(chi.URLParam(r, "id"))
		saved, err := uc.PutAppetite(ctx, &model.RiskAppetite{
			ID:          id,
			Name:        req.Name,
			Bands:       toBands(req.Bands),
			Tolerance:   req.Tolerance,
			Description: req.Description,
		})
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		status := http.StatusOK
		if id == "" {
			status = http.StatusCreated
		}
		writeJSON(ctx, w, status, toAppetiteDTO(saved))
	}
}

func getAppetiteHandler(uc *usecase.AppetiteUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		appetite, err := uc.GetAppetite(ctx, model.AppetiteID(chi.URLParam(r, "id")))
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, toAppetiteDTO(appetite))
	}
}

func deleteAppetiteHandler(uc *usecase.AppetiteUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := uc.DeleteAppetite(ctx, model.AppetiteID(chi.URLParam(r, "id"))); err != nil {
			handleError(ctx, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
