package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/secmon-lab/cottus/pkg/usecase"
	"github.com/secmon-lab/cottus/pkg/utils/safe"
)

// uploadFormField is the multipart field carrying the spreadsheet
const uploadFormField = "file"

func listFrameworksHandler(uc *usecase.ImportUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		frameworks, err := uc.ListFrameworks(ctx)
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		resp := make([]*frameworkDTO, len(frameworks))
		for i, f := range frameworks {
			resp[i] = toFrameworkDTO(f)
		}
		writeJSON(ctx, w, http.StatusOK, map[string]any{"frameworks": resp})
	}
}

func createFrameworkHandler(uc *usecase.ImportUseCase) http.HandlerFunc {
	type request struct {
		Name        string `json:"name"`
		Version     string `json:"version"`
		Description string `json:"description"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}

		created, err := uc.CreateFramework(ctx, &model.Framework{
			Name:        req.Name,
			Version:     req.Version,
			Description: req.Description,
		})
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusCreated, toFrameworkDTO(created))
	}
}

func getFrameworkHandler(uc *usecase.ImportUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		fw, err := uc.GetFramework(ctx, model.FrameworkID(chi.URLParam(r, "id")))
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, toFrameworkDTO(fw))
	}
}

func deleteFrameworkHandler(uc *usecase.ImportUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := uc.DeleteFramework(ctx, model.FrameworkID(chi.URLParam(r, "id"))); err != nil {
			handleError(ctx, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listControlsHandler(uc *usecase.ImportUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		controls, err := uc.ListControls(ctx, model.FrameworkID(chi.URLParam(r, "id")))
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, map[string]any{"controls": toControlDTOs(controls)})
	}
}

// previewHandler accepts a multipart spreadsheet upload, stores it and returns the
// suggested column mappings. The returned storage_key is passed to the import endpoint.
func previewHandler(uc *usecase.ImportUseCase, maxUploadSize int64) http.HandlerFunc {
	type response struct {
		StorageKey string                `json:"storage_key"`
		Columns    []string              `json:"columns"`
		SampleRows [][]string            `json:"sample_rows"`
		RowCount   int                   `json:"row_count"`
		Mappings   []model.ColumnMapping `json:"mappings"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if _, err := uc.GetFramework(ctx, model.FrameworkID(chi.URLParam(r, "id"))); err != nil {
			handleError(ctx, w, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		file, header, err := r.FormFile(uploadFormField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				handleError(ctx, w, goerr.Wrap(errInvalidRequest, "uploaded file is too large", goerr.V("limit", maxUploadSize)))
				return
			}
			handleError(ctx, w, goerr.Wrap(errInvalidRequest, "multipart field is missing", goerr.V("field", uploadFormField)))
			return
		}
		defer safe.Close(ctx, file)

		key, err := uc.Upload(ctx, header.Filename, file)
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		preview, err := uc.Preview(ctx, key)
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, response{
			StorageKey: preview.StorageKey,
			Columns:    preview.Columns,
			SampleRows: preview.SampleRows,
			RowCount:   preview.RowCount,
			Mappings:   preview.Mappings,
		})
	}
}

func importHandler(uc *usecase.ImportUseCase) http.HandlerFunc {
	type request struct {
		StorageKey string                `json:"storage_key"`
		Mappings   []model.ColumnMapping `json:"mappings"`
		Replace    bool                  `json:"replace"`
		DryRun     bool                  `json:"dry_run"`
	}
	type response struct {
		FrameworkID      model.FrameworkID   `json:"framework_id"`
		Imported         int                 `json:"imported"`
		Skipped          int                 `json:"skipped"`
		Replaced         int                 `json:"replaced"`
		DuplicateTargets []types.TargetField `json:"duplicate_targets,omitempty"`
		Controls         []controlDTO        `json:"controls,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(ctx, w, err)
			return
		}
		if req.StorageKey == "" {
			handleError(ctx, w, goerr.Wrap(model.ErrMissingRequired, "storage_key is required"))
			return
		}

		result, err := uc.Import(ctx, usecase.ImportInput{
			FrameworkID: model.FrameworkID(chi.URLParam(r, "id")),
			StorageKey:  req.StorageKey,
			Mappings:    req.Mappings,
			Replace:     req.Replace,
			DryRun:      req.DryRun,
		})
		if err != nil {
			handleError(ctx, w, err)
			return
		}

		resp := response{
			FrameworkID:      result.FrameworkID,
			Imported:         result.Imported,
			Skipped:          result.Skipped,
			Replaced:         result.Replaced,
			DuplicateTargets: result.DuplicateTargets,
		}
		if req.DryRun {
			resp.Controls = toControlDTOs(result.Controls)
		}
		writeJSON(ctx, w, http.StatusOK, resp)
	}
}
