package statusapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dorian305/rtls-client/internal/application"
	"github.com/dorian305/rtls-client/internal/ports"
	"github.com/gorilla/mux"
)

// Pipeline is the part of the orchestrator exposed over HTTP.
type Pipeline interface {
	Status() application.Status
	Reconnect()
}

// NewRouter serves /health, /status, /reconnect and, when metrics is not
// nil, /metrics.
func NewRouter(pipeline Pipeline, metrics http.Handler, clock ports.Clock) *mux.Router {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)

	r.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, toResponse(pipeline.Status(), clock.Now()))
	}).Methods(http.MethodGet)

	r.HandleFunc("/reconnect", func(w http.ResponseWriter, _ *http.Request) {
		pipeline.Reconnect()
		w.WriteHeader(http.StatusAccepted)
	}).Methods(http.MethodPost)

	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	return r
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
