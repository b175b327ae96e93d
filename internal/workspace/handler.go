package workspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/timegraph/internal/auth"
	"github.com/inamate/timegraph/internal/diagram"
	"github.com/inamate/timegraph/internal/engine"
	"github.com/inamate/timegraph/internal/viewport"
)

const maxDocumentSize = 4 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes registers the diagram endpoints on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/diagrams", h.List).Methods("GET")
	r.HandleFunc("/diagrams", h.Create).Methods("POST")
	r.HandleFunc("/diagrams/import", h.Import).Methods("POST")
	r.HandleFunc("/diagrams/{diagramId}", h.Get).Methods("GET")
	r.HandleFunc("/diagrams/{diagramId}", h.Delete).Methods("DELETE")
	r.HandleFunc("/diagrams/{diagramId}/document", h.Document).Methods("GET")
	r.HandleFunc("/diagrams/{diagramId}/document", h.Replace).Methods("PUT")
	r.HandleFunc("/diagrams/{diagramId}/render", h.Render).Methods("GET")
	r.HandleFunc("/diagrams/{diagramId}/preview.png", h.Preview).Methods("GET")
	r.HandleFunc("/diagrams/{diagramId}/hit", h.HitTest).Methods("GET")
	r.HandleFunc("/diagrams/{diagramId}/transform", h.Transform).Methods("POST")
	r.HandleFunc("/diagrams/{diagramId}/selection", h.Selection).Methods("POST")
	r.HandleFunc("/diagrams/{diagramId}/view", h.View).Methods("GET")
	r.HandleFunc("/diagrams/{diagramId}/view/pan", h.Pan).Methods("POST")
	r.HandleFunc("/diagrams/{diagramId}/view/zoom", h.Zoom).Methods("POST")
	r.HandleFunc("/diagrams/{diagramId}/view/resize", h.Resize).Methods("POST")
}

type createRequest struct {
	Name   string `json:"name"`
	Sample bool   `json:"sample"`
}

type selectionRequest struct {
	IDs []string `json:"ids"`
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type zoomRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Delta float64 `json:"delta"`
}

type resizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type viewResponse struct {
	Result string           `json:"result"`
	View   engine.ViewState `json:"view"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	d, err := h.service.Create(req.Name, userID, req.Sample)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	d, err := h.service.Import(data, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.service.List(userID))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(mux.Vars(r)["diagramId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := h.service.Delete(mux.Vars(r)["diagramId"], userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Document(mux.Vars(r)["diagramId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	d, err := h.service.Replace(mux.Vars(r)["diagramId"], data)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	commands, err := h.service.Render(mux.Vars(r)["diagramId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, commands)
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.RenderPNG(mux.Vars(r)["diagramId"], &buf); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *Handler) HitTest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x and y are required"})
		return
	}
	all, _ := strconv.ParseBool(q.Get("all"))

	ids, err := h.service.HitTest(mux.Vars(r)["diagramId"], x, y, all)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	var op diagram.Op
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	version, err := h.service.Transform(mux.Vars(r)["diagramId"], op)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"version": version})
}

func (h *Handler) Selection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	bounds, err := h.service.SelectionBounds(mux.Vars(r)["diagramId"], req.IDs)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bounds)
}

func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.View(mux.Vars(r)["diagramId"])
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) Pan(w http.ResponseWriter, r *http.Request) {
	var req panRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	res, v, err := h.service.Pan(mux.Vars(r)["diagramId"], req.DX, req.DY)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewResponse{Result: res.String(), View: v})
}

func (h *Handler) Zoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	res, v, err := h.service.Zoom(mux.Vars(r)["diagramId"], req.X, req.Y, req.Delta)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewResponse{Result: res.String(), View: v})
}

func (h *Handler) Resize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	res, v, err := h.service.Resize(mux.Vars(r)["diagramId"], req.Width, req.Height)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewResponse{Result: res.String(), View: v})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, ErrMissingName):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
	case errors.Is(err, diagram.ErrUnknownElement):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, diagram.ErrInvalidDocument),
		errors.Is(err, diagram.ErrDuplicateID),
		errors.Is(err, diagram.ErrUnknownLayer),
		errors.Is(err, diagram.ErrUnknownStation),
		errors.Is(err, diagram.ErrUnknownTrain),
		errors.Is(err, diagram.ErrUnknownOp),
		errors.Is(err, diagram.ErrInvalidScale),
		errors.Is(err, diagram.ErrInvalidAngle),
		errors.Is(err, diagram.ErrInvalidOrigin),
		errors.Is(err, viewport.ErrOutsideView),
		errors.Is(err, viewport.ErrViewLargerThanBorder):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
