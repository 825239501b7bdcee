// Package api serves the simulation state over HTTP for reporting and
// visualization collaborators. GET endpoints are public read-only views of
// the model's aggregate accessors; the intervention POST requires a bearer
// token; a WebSocket endpoint streams the per-step metric series live.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/talgya/floodsim/internal/econ"
	"github.com/talgya/floodsim/internal/model"
	"github.com/talgya/floodsim/internal/persistence"
)

// Server serves one simulation run.
type Server struct {
	Mdl      *model.Model
	DB       *persistence.DB
	RunID    string
	Port     int
	AdminKey string // bearer token for POST endpoints; empty disables them

	stream *Stream
}

// Start begins serving in a goroutine and returns the live metrics stream so
// the caller can wire it to the model's per-step hook.
func (s *Server) Start() *Stream {
	s.stream = NewStream()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/metrics", s.handleMetrics)
	mux.HandleFunc("/api/v1/metrics/history", s.handleMetricsHistory)
	mux.HandleFunc("/api/v1/rivers", s.handleRivers)
	mux.HandleFunc("/api/v1/shelters", s.handleShelters)
	mux.HandleFunc("/api/v1/sectors", s.handleSectors)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stream", s.stream.Handle)
	mux.HandleFunc("/api/v1/intervention", s.adminOnly(s.handleIntervention))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return s.stream
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

// handleStatus returns the run identity and the headline aggregates.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"run_id":     s.RunID,
		"step":       s.Mdl.CurrentStep(),
		"rivers":     len(s.Mdl.Rivers),
		"households": len(s.Mdl.Households),
		"shelters":   len(s.Mdl.ShelterSet),
		"sectors":    len(s.Mdl.Sectors),
		"metrics":    s.Mdl.Snapshot(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Mdl.Snapshot())
}

func (s *Server) handleMetricsHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no database attached", http.StatusNotFound)
		return
	}
	rows, err := s.DB.MetricsHistory(s.RunID)
	if err != nil {
		http.Error(w, "history query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleRivers(w http.ResponseWriter, r *http.Request) {
	type riverEntry struct {
		Name         string  `json:"name"`
		WaterLevel   float64 `json:"water_level"`
		FlowRate     float64 `json:"flow_rate"`
		FloodStatus  string  `json:"flood_status"`
		WarningLevel int     `json:"warning_level"`
	}
	out := make([]riverEntry, 0, len(s.Mdl.Rivers))
	for _, river := range s.Mdl.Rivers {
		out = append(out, riverEntry{
			Name:         river.Name,
			WaterLevel:   river.WaterLevel,
			FlowRate:     river.FlowRate,
			FloodStatus:  river.FloodStatus,
			WarningLevel: river.WarningLevel,
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleShelters(w http.ResponseWriter, r *http.Request) {
	out := make([]any, 0, len(s.Mdl.ShelterSet))
	for _, shelter := range s.Mdl.ShelterSet {
		out = append(out, shelter.Report())
	}
	writeJSON(w, out)
}

func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	out := make([]econ.Report, 0, len(s.Mdl.Sectors))
	for _, sector := range s.Mdl.Sectors {
		out = append(out, sector.EconomicReport())
	}
	writeJSON(w, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no database attached", http.StatusNotFound)
		return
	}
	events, err := s.DB.RecentEvents(s.RunID, 50)
	if err != nil {
		http.Error(w, "events query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

// handleIntervention applies a policy intervention to economic agents.
// Body: {"policy": "subsidy", "magnitude": 0.2, "sector": "agriculture"}.
func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Policy    string  `json:"policy"`
		Magnitude float64 `json:"magnitude"`
		Sector    string  `json:"sector"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	switch econ.PolicyType(req.Policy) {
	case econ.PolicySubsidy, econ.PolicyInsurance, econ.PolicyRecovery, econ.PolicyInfrastructure:
	default:
		http.Error(w, "unknown policy type", http.StatusBadRequest)
		return
	}

	applied := s.Mdl.Intervene(econ.PolicyType(req.Policy), req.Magnitude, req.Sector)
	writeJSON(w, map[string]any{"applied": applied})
}

// adminOnly gates a handler on the bearer token. With no AdminKey configured
// the endpoint is disabled outright.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token != s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
