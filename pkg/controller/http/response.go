package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/secmon-lab/cottus/pkg/service/mapping"
	"github.com/secmon-lab/cottus/pkg/service/spreadsheet"
	"github.com/secmon-lab/cottus/pkg/usecase"
	"github.com/secmon-lab/cottus/pkg/utils/errutil"
	"github.com/secmon-lab/cottus/pkg/utils/safe"
)

// maxJSONBodySize limits JSON request bodies
const maxJSONBodySize = 1 << 20

var errInvalidRequest = goerr.New("invalid request")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return goerr.Wrap(errInvalidRequest, "request body is empty")
		}
		return goerr.Wrap(errInvalidRequest, "failed to decode request body", goerr.V("error", err.Error()))
	}
	return nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}

// handleError writes err with the status code of the sentinel it wraps
func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	errutil.HandleHTTP(ctx, w, err, statusOf(err))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, types.ErrInvalidArgument),
		errors.Is(err, model.ErrMissingRequired),
		errors.Is(err, spreadsheet.ErrUnsupportedFormat),
		errors.Is(err, spreadsheet.ErrEmptySheet):
		return http.StatusBadRequest

	case errors.Is(err, usecase.ErrRiskNotFound),
		errors.Is(err, usecase.ErrControlNotFound),
		errors.Is(err, usecase.ErrFrameworkNotFound),
		errors.Is(err, usecase.ErrAppetiteNotFound),
		errors.Is(err, usecase.ErrObjectNotFound):
		return http.StatusNotFound

	case errors.Is(err, mapping.ErrTitleNotMapped):
		return http.StatusUnprocessableEntity

	case errors.Is(err, usecase.ErrBlobStoreNotConfigured):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
