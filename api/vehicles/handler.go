package vehicles

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/fleetsim/core/model"
	"github.com/kilianp07/fleetsim/core/vehicle"
)

// Fleet is the read side of the fleet manager.
type Fleet interface {
	States() []model.Report
	Vehicle(id string) (*vehicle.Vehicle, bool)
	ListObservers() []string
}

// Register mounts the status endpoints on mux:
//
//	GET /api/vehicles        every vehicle extrapolated to now
//	GET /api/vehicles/{id}   one vehicle
//	GET /api/observers       registered observer endpoints
func Register(mux *http.ServeMux, f Fleet) {
	mux.Handle("GET /api/vehicles", NewStatusHandler(f))
	mux.HandleFunc("GET /api/vehicles/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		v, ok := f.Vehicle(id)
		if !ok {
			http.Error(w, "vehicle not found", http.StatusNotFound)
			return
		}
		writeJSON(w, model.NewReport(id, v.Position()))
	})
	mux.HandleFunc("GET /api/observers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.ListObservers())
	})
}

// NewStatusHandler returns an HTTP handler listing the state of every vehicle.
func NewStatusHandler(f Fleet) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, f.States())
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
