package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"rabbitmq-guard/internal/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

func (s *Server) GetAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	severity := r.URL.Query().Get("severity")
	search := r.URL.Query().Get("search")

	alerts := s.store.Alerts(limit, severity, search)
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) GetAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	alert, ok := s.store.Alert(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Alert not found")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) GetRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Rules())
}

// StreamAlerts upgrades to a websocket and forwards live alerts until the
// client goes away.
func (s *Server) StreamAlerts(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	sub := &storage.Subscriber{
		ID:       uuid.NewString(),
		Channel:  make(chan storage.StoredAlert, 100),
		Severity: r.URL.Query().Get("severity"),
	}
	s.store.Subscribe(sub)
	defer s.store.Unsubscribe(sub)

	// Drain client messages so pongs are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case alert, ok := <-sub.Channel:
			if !ok {
				return
			}
			if err := conn.WriteJSON(alert); err != nil {
				s.logger.Errorf("WebSocket write error: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
