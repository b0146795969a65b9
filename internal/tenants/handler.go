package tenants

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/lyceum/pkg/auth"
	"github.com/JaimeStill/lyceum/pkg/handlers"
	"github.com/JaimeStill/lyceum/pkg/routes"
)

// Handler serves the class policy endpoints to supervisors.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "tenants"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/classes/{classid}/tenant",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Find},
			{Method: "PUT", Pattern: "", Handler: h.Update},
		},
	}
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classid")
	if err := auth.RequireSupervisor(auth.FromContext(r.Context()), classID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	t, err := h.sys.Find(r.Context(), classID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classid")
	if err := auth.RequireSupervisor(auth.FromContext(r.Context()), classID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var cmd UpdateCommand
	if err := handlers.DecodeJSON(w, r, 4<<10, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	t, err := h.sys.Update(r.Context(), classID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, t)
}
