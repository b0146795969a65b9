package projects

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/lyceum/pkg/auth"
	"github.com/JaimeStill/lyceum/pkg/handlers"
	"github.com/JaimeStill/lyceum/pkg/routes"
)

const maxBodySize = 64 << 10

// Prefix is the route prefix every project-scoped group shares.
const Prefix = "/classes/{classid}/students/{studentid}/projects"

// Handler serves project endpoints.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "projects"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: Prefix,
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{projectid}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{projectid}", Handler: h.Delete},
		},
	}
}

// Resolve authorizes the caller for the {classid} and {studentid} path
// values and loads the project named by {projectid}.
func Resolve(r *http.Request, sys System) (*Project, error) {
	classID, studentID := r.PathValue("classid"), r.PathValue("studentid")

	if err := auth.Authorize(auth.FromContext(r.Context()), classID, studentID); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(r.PathValue("projectid"))
	if err != nil {
		return nil, ErrNotFound
	}

	return sys.Find(r.Context(), classID, studentID, id)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	classID, studentID := r.PathValue("classid"), r.PathValue("studentid")

	if err := auth.Authorize(auth.FromContext(r.Context()), classID, studentID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var cmd CreateCommand
	if err := handlers.DecodeJSON(w, r, maxBodySize, &cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	cmd.ClassID = classID
	cmd.UserID = studentID

	p, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, p)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	p, err := Resolve(r, h.sys)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := Resolve(r, h.sys)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := h.sys.Delete(r.Context(), p.ClassID, p.UserID, p.ID); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
