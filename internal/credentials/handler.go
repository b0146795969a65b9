package credentials

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/pkg/auth"
	"github.com/JaimeStill/lyceum/pkg/handlers"
	"github.com/JaimeStill/lyceum/pkg/pagination"
	"github.com/JaimeStill/lyceum/pkg/routes"
)

const maxBodySize = 16 << 10

// Handler serves the supervisor-only credential endpoints.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "credentials"),
		pagination: pagination,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/classes/{classid}/credentials",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "DELETE", Pattern: "/{credentialsid}", Handler: h.Delete},
		},
	}
}

// List returns a page of the class's credentials, optionally filtered by
// the servicetype query parameter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.supervisor(w, r)
	if !ok {
		return
	}

	var serviceType *ServiceType
	if raw := r.URL.Query().Get("servicetype"); raw != "" {
		t, err := ParseServiceType(raw)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		serviceType = &t
	}

	page := pagination.FromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), classID, serviceType, page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.supervisor(w, r)
	if !ok {
		return
	}

	var cmd CreateCommand
	if err := handlers.DecodeJSON(w, r, maxBodySize, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	cmd.ClassID = classID

	c, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	classID, ok := h.supervisor(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("credentialsid"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), classID, id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) supervisor(w http.ResponseWriter, r *http.Request) (string, bool) {
	classID := r.PathValue("classid")
	if err := auth.RequireSupervisor(auth.FromContext(r.Context()), classID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return "", false
	}
	return classID, true
}
