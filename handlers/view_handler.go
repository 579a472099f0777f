package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"greenhouse-forecaster/analytics"
	"greenhouse-forecaster/models"
	"greenhouse-forecaster/render"
)

type ViewHandler struct {
	engine *analytics.Engine
	log    zerolog.Logger
}

func NewViewHandler(engine *analytics.Engine, log zerolog.Logger) *ViewHandler {
	return &ViewHandler{
		engine: engine,
		log:    log.With().Str("component", "http").Logger(),
	}
}

// Routes registers the API on r.
func (h *ViewHandler) Routes(r *mux.Router) {
	r.HandleFunc("/health", instrument("/health", HealthCheck)).Methods("GET")
	r.HandleFunc("/channels", instrument("/channels", h.HandleChannels)).Methods("GET")
	r.HandleFunc("/view/{channel}", instrument("/view", h.HandleView)).Methods("GET")
	r.HandleFunc("/chart/{channel}.png", instrument("/chart", h.HandleChart)).Methods("GET")
	r.HandleFunc("/forecast/run", instrument("/forecast/run", h.HandleRunForecast)).Methods("POST")
	r.HandleFunc("/forecast/{channel}", instrument("/forecast", h.HandleForecast)).Methods("GET")
}

type channelInfo struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Discrete bool   `json:"discrete"`
}

type viewResponse struct {
	Label    string `json:"label"`
	Discrete bool   `json:"discrete"`
	models.FusedView
}

func (h *ViewHandler) HandleChannels(w http.ResponseWriter, r *http.Request) {
	channels := h.engine.Catalog().Channels()
	out := make([]channelInfo, 0, len(channels))
	for _, ch := range channels {
		out = append(out, channelInfo{ID: ch.ID, Label: ch.Label, Discrete: ch.Discrete})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ViewHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	view, ch, err := h.engine.View(r.Context(), mux.Vars(r)["channel"])
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewResponse{Label: ch.Label, Discrete: ch.Discrete, FusedView: view})
}

func (h *ViewHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	view, ch, err := h.engine.View(r.Context(), mux.Vars(r)["channel"])
	if err != nil {
		h.writeLookupError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := render.PNG(&buf, view, ch.Label); err != nil {
		if errors.Is(err, models.ErrNothingToRender) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.log.Error().Err(err).Str("channel", ch.ID).Msg("Chart render failed")
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *ViewHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	rec, ok, err := h.engine.LatestForecast(r.Context(), mux.Vars(r)["channel"])
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	if !ok {
		http.Error(w, "No forecast available yet", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (h *ViewHandler) HandleRunForecast(w http.ResponseWriter, r *http.Request) {
	report := h.engine.Tick(r.Context(), time.Now().UTC())
	writeJSON(w, http.StatusOK, report)
}

func (h *ViewHandler) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrUnknownChannel) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.log.Error().Err(err).Msg("Request failed")
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument records request count and latency under a fixed endpoint label.
func instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		requestDurationSeconds.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
	}
}
