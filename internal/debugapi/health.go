package debugapi

import (
	"encoding/json"
	"net/http"
	"time"
)

// MQTTStatus is the subset of mqttclient.Client the health handler needs.
type MQTTStatus interface {
	IsConnected() bool
}

// StoreStatus is the subset of topicstore.Store the health handler needs.
type StoreStatus interface {
	Topics() []string
}

// HealthResponse is the JSON body of GET /api/v1/health.
type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
	TopicCount    int               `json:"topic_count"`
}

// HealthHandler reports the liveness of the MQTT connection and a coarse
// view of the retention store, for an operator or the companion GUI
// process to poll — there is no broker-side health to report since the
// engine owns no server, only a client connection.
type HealthHandler struct {
	mqtt      MQTTStatus
	store     StoreStatus
	version   string
	startTime time.Time
}

// NewHealthHandler builds a HealthHandler. mqtt may be nil before the
// first successful connect.
func NewHealthHandler(mqtt MQTTStatus, store StoreStatus, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{mqtt: mqtt, store: store, version: version, startTime: startTime}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"

	if h.mqtt == nil {
		checks["mqtt"] = "not_configured"
	} else if h.mqtt.IsConnected() {
		checks["mqtt"] = "ok"
	} else {
		checks["mqtt"] = "disconnected"
		status = "degraded"
	}

	topicCount := 0
	if h.store != nil {
		topicCount = len(h.store.Topics())
	}

	resp := HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
		TopicCount:    topicCount,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
