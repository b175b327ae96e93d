package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/timegraph/internal/workspace"
)

// Diagrams is the part of the workspace an export reads from.
type Diagrams interface {
	Get(diagramID string) (*workspace.Diagram, error)
	Document(diagramID string) (json.RawMessage, error)
	Render(diagramID string) (string, error)
	RenderPNG(diagramID string, w io.Writer) error
}

type format struct {
	contentType string
	ext         string
}

var formats = map[string]format{
	"png":      {contentType: "image/png", ext: "png"},
	"json":     {contentType: "application/json", ext: "json"},
	"commands": {contentType: "application/json", ext: "commands.json"},
}

// Handler serves diagram downloads.
type Handler struct {
	diagrams Diagrams
}

func NewHandler(diagrams Diagrams) *Handler {
	return &Handler{diagrams: diagrams}
}

// Export handles GET /diagrams/{diagramId}/export?format=png|json|commands.
// The file is sent as an attachment named after the diagram.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	diagramID := mux.Vars(r)["diagramId"]

	name := r.URL.Query().Get("format")
	if name == "" {
		name = "png"
	}
	f, ok := formats[name]
	if !ok {
		http.Error(w, "invalid format: must be png, json, or commands", http.StatusBadRequest)
		return
	}

	d, err := h.diagrams.Get(diagramID)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	switch name {
	case "png":
		err = h.diagrams.RenderPNG(diagramID, &buf)
	case "json":
		var doc json.RawMessage
		doc, err = h.diagrams.Document(diagramID)
		buf.Write(doc)
	case "commands":
		var commands string
		commands, err = h.diagrams.Render(diagramID)
		buf.WriteString(commands)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", f.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, fileName(d.Name), f.ext))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())

	slog.Info("export complete", "diagram", diagramID, "format", name, "size", buf.Len())
}

// fileName keeps letters, digits, '-' and '_' of name.
func fileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
	if strings.Trim(name, "-") == "" {
		return "diagram"
	}
	return name
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, workspace.ErrNotFound) {
		http.Error(w, "diagram not found", http.StatusNotFound)
		return
	}
	slog.Error("export failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
