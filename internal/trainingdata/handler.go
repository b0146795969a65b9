package trainingdata

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/JaimeStill/lyceum/internal/projects"
	"github.com/JaimeStill/lyceum/pkg/formatting"
	"github.com/JaimeStill/lyceum/pkg/handlers"
	"github.com/JaimeStill/lyceum/pkg/routes"
)

const maxJSONBody = 64 << 10

// Handler accepts training examples for a project.
type Handler struct {
	sys          System
	projects     projects.System
	maxImageSize int64
	logger       *slog.Logger
}

func NewHandler(sys System, projs projects.System, maxImageSize int64, logger *slog.Logger) *Handler {
	return &Handler{
		sys:          sys,
		projects:     projs,
		maxImageSize: maxImageSize,
		logger:       logger.With("handler", "trainingdata"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: projects.Prefix + "/{projectid}/training",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Add},
		},
	}
}

// List returns the project's examples. Image bytes are omitted.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, err := projects.Resolve(r, h.projects)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	examples, err := h.sys.Examples(r.Context(), p)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, examples)
}

// Add stores one example. Text and numbers examples are JSON bodies; image
// examples are multipart forms with a "label" field and an "image" file.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	p, err := projects.Resolve(r, h.projects)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	var cmd AddCommand
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		cmd, err = h.readMultipart(w, r)
	} else {
		err = handlers.DecodeJSON(w, r, maxJSONBody, &cmd)
	}
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	ex, err := h.sys.Add(r.Context(), p, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, ex)
}

func (h *Handler) readMultipart(w http.ResponseWriter, r *http.Request) (AddCommand, error) {
	var cmd AddCommand

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageSize+(64<<10))
	if err := r.ParseMultipartForm(h.maxImageSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return cmd, fmt.Errorf("%w: limit %s", ErrTooLarge, formatting.FormatBytes(h.maxImageSize, 1))
		}
		return cmd, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cmd.Label = r.FormValue("label")

	file, header, err := r.FormFile("image")
	if err != nil {
		return cmd, fmt.Errorf("%w: image file required", ErrInvalid)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return cmd, fmt.Errorf("read image: %w", err)
	}

	cmd.Image = data
	cmd.ContentType = header.Header.Get("Content-Type")
	if cmd.ContentType == "" || cmd.ContentType == "application/octet-stream" {
		cmd.ContentType = http.DetectContentType(data)
	}

	return cmd, nil
}
