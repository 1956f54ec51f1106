package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/medinsight/internal/application/analysis"
	apppersons "github.com/bryanwahyu/medinsight/internal/application/persons"
	"github.com/bryanwahyu/medinsight/internal/domain/medicines"
	"github.com/bryanwahyu/medinsight/internal/domain/persons"
	"github.com/bryanwahyu/medinsight/internal/logger"
	"github.com/bryanwahyu/medinsight/internal/middleware"
)

// multipartSlack covers multipart framing on top of the file itself.
const multipartSlack = 1 << 20

type Options struct {
	UserTokens     map[string]string
	AllowedOrigins []string
	SecureCookie   bool
	Limiter        *middleware.RateLimiter
	Checkers       map[string]middleware.HealthChecker
}

type Router struct {
	analysis *appanalysis.Service
	persons  *apppersons.Service
	log      *logger.Logger
}

func NewRouter(analysis *appanalysis.Service, persons *apppersons.Service, log *logger.Logger, opts Options) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	r := &Router{analysis: analysis, persons: persons, log: log}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins(opts.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Handle("/metrics", middleware.MetricsHandler())

	limiter := opts.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(10, 1)
	}

	mux.Route("/api", func(api chi.Router) {
		api.Use(middleware.Identify(opts.UserTokens, opts.SecureCookie))
		api.Use(middleware.LoggingMiddleware(log))

		api.Group(func(gated chi.Router) {
			gated.Use(middleware.RateLimitMiddleware(limiter))
			gated.Post("/reports/upload", r.wrap(r.handleUpload))
			gated.Post("/medicines/search", r.wrap(r.handleMedicineSearch))
		})
		api.Get("/reports/{id}", r.wrap(r.handleGetReport))
		api.Get("/medicines/popular", r.wrap(r.handlePopular))
		api.Get("/usage", r.wrap(r.handleUsage))

		api.Group(func(authed chi.Router) {
			authed.Use(middleware.RequireUser)
			authed.Get("/user/history", r.wrap(r.handleHistory))
			authed.Get("/persons", r.wrap(r.handleListPersons))
			authed.Post("/persons", r.wrap(r.handleCreatePerson))
			authed.Get("/persons/{id}", r.wrap(r.handleGetPerson))
			authed.Put("/persons/{id}", r.wrap(r.handleUpdatePerson))
			authed.Delete("/persons/{id}", r.wrap(r.handleDeletePerson))
		})
	})

	return mux
}

func origins(configured []string) []string {
	if len(configured) == 0 {
		return []string{"http://localhost:5173", "http://localhost:5000"}
	}
	return configured
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var ae *appanalysis.Error
		switch {
		case errors.As(err, &ae):
			status := statusFor(ae.Kind)
			if status >= 500 {
				r.log.Error("request failed", "path", req.URL.Path, "kind", ae.Kind, "error", err)
			}
			middleware.WriteJSON(w, status, middleware.ErrorResponse{Message: ae.Message, RequiresAuth: ae.RequiresAuth})
		case errors.Is(err, persons.ErrNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Person not found")
		case errors.Is(err, persons.ErrNameMissing), errors.Is(err, persons.ErrInvalidSex):
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			r.log.Error("request failed", "path", req.URL.Path, "error", err)
			middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
	}
}

func statusFor(k appanalysis.Kind) int {
	switch k {
	case appanalysis.KindValidation, appanalysis.KindExtraction:
		return http.StatusBadRequest
	case appanalysis.KindUsageLimit:
		return http.StatusForbidden
	case appanalysis.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func caller(req *http.Request) appanalysis.Caller {
	id, _ := middleware.IdentityFrom(req.Context())
	return appanalysis.Caller{Authenticated: id.Authenticated, UserID: id.UserID, SessionToken: id.SessionToken}
}

// POST /api/reports/upload (multipart: file, personId?)
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, middleware.MaxUploadBytes+multipartSlack)
	if err := req.ParseMultipartForm(middleware.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return appanalysis.Validation("File too large. Maximum size is 10MB.")
		}
		return appanalysis.Validation("No file uploaded")
	}
	defer req.MultipartForm.RemoveAll()

	file, header, err := req.FormFile("file")
	if err != nil {
		return appanalysis.Validation("No file uploaded")
	}
	defer file.Close()
	if header.Size > middleware.MaxUploadBytes {
		return appanalysis.Validation("File too large. Maximum size is 10MB.")
	}

	data, err := io.ReadAll(io.LimitReader(file, middleware.MaxUploadBytes+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if len(data) > middleware.MaxUploadBytes {
		return appanalysis.Validation("File too large. Maximum size is 10MB.")
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	if err := middleware.ValidateMIME(mime); err != nil {
		return appanalysis.Validation("Invalid file type. Only JPEG, PNG, SVG, and PDF files are allowed.")
	}

	res, err := r.analysis.HandleReportUpload(req.Context(), caller(req), appanalysis.UploadCommand{
		Data:     data,
		MimeType: middleware.NormalizeMIME(mime),
		FileName: middleware.SanitizeFileName(header.Filename),
		PersonID: req.FormValue("personId"),
	})
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, res)
	return nil
}

// POST /api/medicines/search {"medicineName": "...", "personId": "..."}
func (r *Router) handleMedicineSearch(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		MedicineName string `json:"medicineName"`
		PersonID     string `json:"personId"`
	}
	if err := json.NewDecoder(io.LimitReader(req.Body, 64<<10)).Decode(&body); err != nil {
		return appanalysis.Validation("Invalid request body")
	}
	res, err := r.analysis.HandleMedicineSearch(req.Context(), caller(req), appanalysis.SearchCommand{
		Name:     middleware.SanitizeString(body.MedicineName),
		PersonID: body.PersonID,
	})
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, res)
	return nil
}

// GET /api/reports/{id}
func (r *Router) handleGetReport(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if middleware.ValidateID(id) != nil {
		return appanalysis.NotFound(appanalysis.MsgReportNotFound)
	}
	rep, err := r.analysis.GetReport(req.Context(), id)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, struct {
		ID        string      `json:"id"`
		FileName  string      `json:"fileName"`
		Analysis  interface{} `json:"analysis"`
		CreatedAt time.Time   `json:"createdAt"`
	}{string(rep.ID), rep.FileName, rep.Analysis, rep.CreatedAt})
	return nil
}

// GET /api/medicines/popular
func (r *Router) handlePopular(w http.ResponseWriter, req *http.Request) error {
	middleware.WriteJSON(w, http.StatusOK, medicines.PopularMedicines())
	return nil
}

// GET /api/usage
func (r *Router) handleUsage(w http.ResponseWriter, req *http.Request) error {
	st, err := r.analysis.UsageStatus(req.Context(), caller(req))
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, st)
	return nil
}

// GET /api/user/history
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	h, err := r.analysis.UserHistory(req.Context(), caller(req).UserID)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, h)
	return nil
}

func decodePerson(req *http.Request) (apppersons.Input, error) {
	var in apppersons.Input
	dec := json.NewDecoder(io.LimitReader(req.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, appanalysis.Validation("Invalid person data")
	}
	in.Name = middleware.SanitizeString(in.Name)
	return in, nil
}

func (r *Router) handleListPersons(w http.ResponseWriter, req *http.Request) error {
	ps, err := r.persons.List(req.Context(), caller(req).UserID)
	if err != nil {
		return err
	}
	if ps == nil {
		ps = []*persons.Person{}
	}
	middleware.WriteJSON(w, http.StatusOK, ps)
	return nil
}

func (r *Router) handleCreatePerson(w http.ResponseWriter, req *http.Request) error {
	in, err := decodePerson(req)
	if err != nil {
		return err
	}
	p, err := r.persons.Create(req.Context(), caller(req).UserID, in)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusCreated, p)
	return nil
}

func (r *Router) handleGetPerson(w http.ResponseWriter, req *http.Request) error {
	p, err := r.persons.Get(req.Context(), caller(req).UserID, strings.TrimSpace(chi.URLParam(req, "id")))
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, p)
	return nil
}

func (r *Router) handleUpdatePerson(w http.ResponseWriter, req *http.Request) error {
	in, err := decodePerson(req)
	if err != nil {
		return err
	}
	p, err := r.persons.Update(req.Context(), caller(req).UserID, strings.TrimSpace(chi.URLParam(req, "id")), in)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, p)
	return nil
}

func (r *Router) handleDeletePerson(w http.ResponseWriter, req *http.Request) error {
	if err := r.persons.Delete(req.Context(), caller(req).UserID, strings.TrimSpace(chi.URLParam(req, "id"))); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
