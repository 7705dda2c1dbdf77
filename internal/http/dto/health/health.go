// Package health contiene los DTOs de status y readyz.
package health

// StatusResponse GET /v1/status: conectividad con el warehouse.
type StatusResponse struct {
	Connected bool   `json:"connected"`
	Mode      string `json:"mode"` // connected | demo
	Driver    string `json:"driver"`
	Dataset   string `json:"dataset"`
	Message   string `json:"message"`
}

// ReadyzResponse GET /readyz.
type ReadyzResponse struct {
	Status     string            `json:"status"` // ready | degraded | unavailable
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components"`
}
