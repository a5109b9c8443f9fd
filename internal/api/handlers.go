// Package api provides HTTP handlers for the prediction service.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/symptomcheck/predictor-service/internal/catalog"
	"github.com/symptomcheck/predictor-service/internal/encoder"
	"github.com/symptomcheck/predictor-service/internal/predictor"
	"github.com/symptomcheck/predictor-service/internal/session"
	"github.com/symptomcheck/predictor-service/pkg/types"
)

const (
	maxBodyBytes      = 1 << 20
	noSymptomsWarning = "no symptoms selected"
)

// Handler holds the dependencies for HTTP handlers.
type Handler struct {
	catalog     *catalog.Catalog
	encoder     *encoder.Encoder
	predictor   predictor.Predictor
	sessions    *session.Store
	backend     string
	predictions atomic.Int64
}

// NewHandler creates a Handler. The predictor is shared read-only by all requests.
func NewHandler(c *catalog.Catalog, enc *encoder.Encoder, p predictor.Predictor, sessions *session.Store, backend string) *Handler {
	return &Handler{
		catalog:   c,
		encoder:   enc,
		predictor: p,
		sessions:  sessions,
		backend:   backend,
	}
}

// HandleSymptoms handles GET /symptoms requests.
func (h *Handler) HandleSymptoms(w http.ResponseWriter, r *http.Request) {
	symptoms := h.catalog.Symptoms()
	resp := types.SymptomsResponse{
		Symptoms: make([]types.SymptomInfo, len(symptoms)),
		Count:    len(symptoms),
	}
	for i, s := range symptoms {
		resp.Symptoms[i] = types.SymptomInfo{
			Name:     s.Name,
			Label:    catalog.Label(s.Name),
			Severity: s.Severity,
		}
	}
	sendJSON(w, http.StatusOK, resp)
}

// HandlePredict handles POST /predict requests.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req types.PredictRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	symptoms := make([]string, 0, len(req.Symptoms))
	for _, s := range req.Symptoms {
		if name := catalog.NormalizeName(s); name != "" {
			symptoms = append(symptoms, name)
		}
	}

	h.predict(w, symptoms)
}

// HandleCreateSession handles POST /sessions requests.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	sendJSON(w, http.StatusCreated, sessionResponse(sess))
}

// HandleGetSession handles GET /sessions/{id} requests.
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		sendSessionError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, sessionResponse(sess))
}

// HandleDeleteSession handles DELETE /sessions/{id} requests.
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(mux.Vars(r)["id"]); err != nil {
		sendSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddSymptom handles POST /sessions/{id}/symptoms requests.
func (h *Handler) HandleAddSymptom(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req types.AddSymptomRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	name := strings.TrimSpace(req.Symptom)
	if req.Custom {
		name = catalog.NormalizeName(name)
	}
	if name == "" {
		sendError(w, http.StatusBadRequest, "symptom is required")
		return
	}

	if _, err := h.sessions.Get(id); err != nil {
		sendSessionError(w, err)
		return
	}

	known := h.encoder.Known(name)
	if !known && h.encoder.Policy() == encoder.Reject {
		sendUnknown(w, h.encoder.Unknown(name))
		return
	}

	var added bool
	sess, err := h.sessions.Update(id, func(sel *session.Selection) error {
		added = sel.Add(name)
		return nil
	})
	if err != nil {
		sendSessionError(w, err)
		return
	}

	var msg string
	switch {
	case !added:
		msg = name + " already added."
	case !known:
		msg = "Added custom symptom " + name + "; it is not in the catalog and will be ignored."
	case req.Custom:
		msg = "Added custom symptom: " + name
	default:
		msg = "Added symptom: " + name
	}

	sendJSON(w, http.StatusOK, types.AddSymptomResponse{
		Session: sessionResponse(sess),
		Symptom: name,
		Added:   added,
		Message: msg,
	})
}

// HandleRemoveSymptom handles DELETE /sessions/{id}/symptoms/{name} requests.
func (h *Handler) HandleRemoveSymptom(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	errNotSelected := errors.New("symptom not selected")

	sess, err := h.sessions.Update(vars["id"], func(sel *session.Selection) error {
		if !sel.Remove(vars["name"]) {
			return errNotSelected
		}
		return nil
	})
	switch {
	case errors.Is(err, errNotSelected):
		sendError(w, http.StatusNotFound, "Symptom not selected: "+vars["name"])
	case err != nil:
		sendSessionError(w, err)
	default:
		sendJSON(w, http.StatusOK, sessionResponse(sess))
	}
}

// HandleResetSymptoms handles DELETE /sessions/{id}/symptoms requests.
func (h *Handler) HandleResetSymptoms(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Update(mux.Vars(r)["id"], func(sel *session.Selection) error {
		sel.Reset()
		return nil
	})
	if err != nil {
		sendSessionError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, sessionResponse(sess))
}

// HandleSessionPredict handles POST /sessions/{id}/predict requests.
func (h *Handler) HandleSessionPredict(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		sendSessionError(w, err)
		return
	}
	h.predict(w, sess.Symptoms)
}

// HandleHealth handles GET /health requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, types.HealthResponse{
		Status:          "ok",
		CatalogSize:     h.catalog.Len(),
		ModelDimensions: h.predictor.Dimensions(),
	})
}

// HandleStats handles GET /stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, types.StatsResponse{
		CatalogSize:     h.catalog.Len(),
		ModelDimensions: h.predictor.Dimensions(),
		ModelBackend:    h.backend,
		Encoding:        string(h.encoder.Encoding()),
		UnknownPolicy:   string(h.encoder.Policy()),
		Sessions:        h.sessions.Count(),
		Predictions:     h.predictions.Load(),
	})
}

// predict runs encode then predict for one selection. An empty selection
// never reaches the model.
func (h *Handler) predict(w http.ResponseWriter, symptoms []string) {
	if symptoms == nil {
		symptoms = []string{}
	}
	if len(symptoms) == 0 {
		sendJSON(w, http.StatusOK, types.PredictResponse{Warning: noSymptomsWarning, Symptoms: symptoms})
		return
	}

	start := time.Now()

	vec, err := h.encoder.Encode(symptoms)
	if err != nil {
		var unknownErr *encoder.UnknownSymptomError
		switch {
		case errors.Is(err, encoder.ErrNoSymptoms):
			sendJSON(w, http.StatusOK, types.PredictResponse{Warning: noSymptomsWarning, Symptoms: symptoms})
		case errors.As(err, &unknownErr):
			sendUnknown(w, unknownErr)
		default:
			log.Printf("Encode failed: %v", err)
			sendError(w, http.StatusInternalServerError, "Failed to encode symptoms: "+err.Error())
		}
		return
	}

	label, err := h.predictor.Predict(vec)
	if err != nil {
		if errors.Is(err, predictor.ErrDimensionMismatch) {
			sendError(w, http.StatusBadRequest, "Model input error: "+err.Error())
			return
		}
		log.Printf("Prediction failed: %v", err)
		sendError(w, http.StatusInternalServerError, "Prediction failed: "+err.Error())
		return
	}
	h.predictions.Add(1)

	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	sendJSON(w, http.StatusOK, types.PredictResponse{
		Label:      label,
		Encoding:   string(h.encoder.Encoding()),
		Dimensions: len(vec),
		Symptoms:   symptoms,
		Latency:    latencyMs,
	})
}

func sessionResponse(s session.Session) types.SessionResponse {
	return types.SessionResponse{
		ID:        s.ID,
		Symptoms:  s.Symptoms,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func sendUnknown(w http.ResponseWriter, err *encoder.UnknownSymptomError) {
	sendJSON(w, http.StatusUnprocessableEntity, types.ErrorResponse{
		Error:       err.Error(),
		Unknown:     err.Names,
		Suggestions: err.Suggestions,
	})
}

func sendSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		sendError(w, http.StatusNotFound, "Session not found")
		return
	}
	sendError(w, http.StatusInternalServerError, err.Error())
}

func sendError(w http.ResponseWriter, status int, msg string) {
	sendJSON(w, status, types.ErrorResponse{Error: msg})
}

// sendJSON sends a JSON response with the given status code.
func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
