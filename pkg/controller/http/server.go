package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/cottus/pkg/usecase"
	"github.com/secmon-lab/cottus/pkg/utils/logging"
)

// defaultMaxUploadSize limits framework spreadsheets uploaded for preview
const defaultMaxUploadSize = 32 << 20

type Server struct {
	router        *chi.Mux
	maxUploadSize int64
}

type Options func(*Server)

// WithMaxUploadSize sets the largest accepted spreadsheet upload in bytes
func WithMaxUploadSize(size int64) Options {
	return func(s *Server) {
		s.maxUploadSize = size
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		maxUploadSize: defaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/score", scoreHandler(uc.Scoring))
		r.Post("/residual", residualHandler(uc.Scoring))
		r.Post("/mappings/suggest", suggestMappingsHandler())

		r.Route("/risks", func(r chi.Router) {
			r.Get("/", listRisksHandler(uc.Risk))
			r.Post("/", createRiskHandler(uc.Risk))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getRiskHandler(uc.Risk))
				r.Put("/", updateRiskHandler(uc.Risk))
				r.Delete("/", deleteRiskHandler(uc.Risk))
				r.Get("/controls", listRiskControlsHandler(uc.Risk))
				r.Put("/controls", replaceRiskControlsHandler(uc.Risk))
				r.Get("/assessment", assessRiskHandler(uc.Risk))
			})
		})
		r.Get("/assessments", assessAllHandler(uc.Risk))

		r.Route("/appetites", func(r chi.Router) {
			r.Get("/", listAppetitesHandler(uc.Appetite))
			r.Post("/", putAppetiteHandler(uc.Appetite))
			r.Get("/{id}", getAppetiteHandler(uc.Appetite))
			r.Put("/{id}", putAppetiteHandler(uc.Appetite))
			r.Delete("/{id}", deleteAppetiteHandler(uc.Appetite))
		})

		r.Route("/frameworks", func(r chi.Router) {
			r.Get("/", listFrameworksHandler(uc.Import))
			r.Post("/", createFrameworkHandler(uc.Import))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getFrameworkHandler(uc.Import))
				r.Delete("/", deleteFrameworkHandler(uc.Import))
				r.Get("/controls", listControlsHandler(uc.Import))
				r.Post("/preview", previewHandler(uc.Import, s.maxUploadSize))
				r.Post("/import", importHandler(uc.Import))
			})
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
