package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/services"
	"github.com/gruzdev-dev/codex-recipes/pkg/identity"
	"github.com/gruzdev-dev/codex-recipes/pkg/logger"
)

type Handler struct {
	registry *services.Registry
	auth     *services.AuthService
	images   *services.ImageService
}

func NewHandler(registry *services.Registry, auth *services.AuthService, images *services.ImageService) *Handler {
	return &Handler{
		registry: registry,
		auth:     auth,
		images:   images,
	}
}

// RegisterRoutes mounts the API on router. Fixed paths are registered before
// the generic collection routes so they take precedence.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/authentication", h.Login).Methods(http.MethodPost)
	router.HandleFunc("/authentication", h.Logout).Methods(http.MethodDelete)

	router.HandleFunc("/favourites/{recipeId}", h.AddFavourite).Methods(http.MethodPost)
	router.HandleFunc("/favourites/{recipeId}", h.RemoveFavourite).Methods(http.MethodDelete)

	router.HandleFunc("/recipes/{id}/image", h.UploadImage).Methods(http.MethodPost)

	router.HandleFunc("/{collection}", h.Find).Methods(http.MethodGet)
	router.HandleFunc("/{collection}", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/{collection}/{id}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/{collection}/{id}", h.Update).Methods(http.MethodPut)
	router.HandleFunc("/{collection}/{id}", h.Patch).Methods(http.MethodPatch)
	router.HandleFunc("/{collection}/{id}", h.Remove).Methods(http.MethodDelete)
	router.HandleFunc("/{collection}/{id}/{relation}", h.Related).Methods(http.MethodGet)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	records, err := svc.Find(r.Context(), params(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	rec, err := svc.Get(r.Context(), mux.Vars(r)["id"], params(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	data, err := decodeRecord(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := svc.Create(r.Context(), data, params(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, (*services.EntityService).Update)
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, (*services.EntityService).Patch)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	rec, err := svc.Remove(r.Context(), mux.Vars(r)["id"], params(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) Related(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	result, err := h.registry.Related(r.Context(), vars["collection"], vars["id"], vars["relation"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) AddFavourite(w http.ResponseWriter, r *http.Request) {
	rec, err := h.registry.Favourites().Create(r.Context(), params(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) RemoveFavourite(w http.ResponseWriter, r *http.Request) {
	rec, err := h.registry.Favourites().Remove(r.Context(), params(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type uploadRequest struct {
	ContentType string `json:"contentType"`
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromCtx(r.Context())
	if id == nil {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}

	var req uploadRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.images.RequestUpload(r.Context(), mux.Vars(r)["id"], req.ContentType, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, _ := identity.FromCtx(r.Context())
	if id == nil {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	if err := h.auth.Logout(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type writeFunc func(*services.EntityService, context.Context, string, domain.Record, services.Params) (domain.Record, error)

func (h *Handler) write(w http.ResponseWriter, r *http.Request, fn writeFunc) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	data, err := decodeRecord(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := fn(svc, r.Context(), mux.Vars(r)["id"], data, params(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) service(w http.ResponseWriter, r *http.Request) (*services.EntityService, bool) {
	svc, err := h.registry.Service(mux.Vars(r)["collection"])
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return svc, true
}

// params collects the query filter, route vars and caller identity of r.
// Only the first value of a repeated query parameter is kept.
func params(r *http.Request) services.Params {
	query := domain.Filter{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}
	id, _ := identity.FromCtx(r.Context())
	return services.Params{
		Query:    query,
		Route:    mux.Vars(r),
		Identity: id,
	}
}

func decodeRecord(r *http.Request) (domain.Record, error) {
	data := domain.Record{}
	if err := decode(r, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrValidation, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).WithError(err).Error("request failed")
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConstraintViolation), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
