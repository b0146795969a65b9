package training

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/pkg/auth"
	"github.com/JaimeStill/lyceum/pkg/handlers"
	"github.com/JaimeStill/lyceum/pkg/routes"
)

// maxLabelBody allows a base64 image in the data field.
const maxLabelBody = 12 << 20

// Handler serves the model endpoints of a project.
type Handler struct {
	sys      System
	projects projects.System
	logger   *slog.Logger
}

func NewHandler(sys System, projs projects.System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:      sys,
		projects: projs,
		logger:   logger.With("handler", "models"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: projects.Prefix + "/{projectid}/models",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/{modelid}/label", Handler: h.Test},
			{Method: "DELETE", Pattern: "/{modelid}", Handler: h.Delete},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, err := projects.Resolve(r, h.projects)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	recs, err := h.sys.ListModels(r.Context(), p)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, recs)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := projects.Resolve(r, h.projects)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	rec, err := h.sys.CreateModel(r.Context(), p)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, rec)
}

// Test labels a text, image or numbers payload with a trained model. The
// payload is checked before the project is loaded.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	if err := auth.Authorize(auth.FromContext(r.Context()), r.PathValue("classid"), r.PathValue("studentid")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var req TestRequest
	if err := handlers.DecodeJSON(w, r, maxLabelBody, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := req.Validate(); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	p, err := projects.Resolve(r, h.projects)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	results, err := h.sys.TestModel(r.Context(), p, r.PathValue("modelid"), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, results)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := projects.Resolve(r, h.projects)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := h.sys.DeleteModel(r.Context(), p, r.PathValue("modelid")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
