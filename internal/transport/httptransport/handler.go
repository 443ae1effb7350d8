package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/awmpietro/quantum-dilemma/internal/app"
	"github.com/awmpietro/quantum-dilemma/internal/transport/sessiondto"
)

type Handler struct {
	svc    app.SessionService
	logger *zap.Logger
}

func NewHandler(svc app.SessionService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the session routes on mux. The metrics route is mounted
// by the caller, which owns the registry.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/session/start", h.Start)
	mux.HandleFunc("/session/choice", h.Choose)
	mux.HandleFunc("/session/reset", h.Reset)
	mux.HandleFunc("/session/query", h.Query)
	mux.HandleFunc("/narrative", h.Narrative)
	mux.HandleFunc("/healthz", h.Healthz)
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in sessiondto.StartRequest
	if !h.decode(w, r, &in) {
		return
	}

	out, err := h.svc.Start(in.GraphDOT)
	if err != nil {
		h.fail(w, "start failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sessiondto.NewSessionResponse(out))
}

// Choose applies a choice. Stale or malformed choices are answered with 200
// and an "ignored" field, never an error status.
func (h *Handler) Choose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in sessiondto.ChoiceRequest
	if !h.decode(w, r, &in) {
		return
	}

	out, err := h.svc.Choose(in.GraphDOT, in.Timelines, in.TimelineID, in.ChoiceID)
	if err != nil {
		h.fail(w, "choice failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sessiondto.NewSessionResponse(out))
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in sessiondto.StartRequest
	if !h.decode(w, r, &in) {
		return
	}

	out, err := h.svc.Reset(in.GraphDOT)
	if err != nil {
		h.fail(w, "reset failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sessiondto.NewSessionResponse(out))
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in sessiondto.QueryRequest
	if !h.decode(w, r, &in) {
		return
	}

	matches, err := h.svc.Query(in.GraphDOT, in.Timelines, in.Where)
	if err != nil {
		h.fail(w, "query failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sessiondto.NewQueryResponse(matches))
}

// Narrative describes the server's narrative.
func (h *Handler) Narrative(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info, err := h.svc.Narrative("")
	if err != nil {
		h.fail(w, "narrative failed", err)
		return
	}
	writeJSON(w, http.StatusOK, sessiondto.NewNarrativeResponse(info))
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	// An empty body decodes as {}, as in the Lambda transport.
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, sessiondto.BadRequest("invalid json", err))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, summary string, err error) {
	status, body := sessiondto.NewErrorResponse(summary, err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(summary, zap.Error(err))
	} else {
		h.logger.Debug(summary, zap.String("code", body.Code), zap.Error(err))
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
