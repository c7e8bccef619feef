package server

import "time"

// LivenessResponse is a common type for responding to K8S style liveness checks.
type LivenessResponse struct {
	RespondedAt time.Time `json:"responded_at"`
}

// ReadinessResponse is a common type for responding to K8S style readiness checks.
type ReadinessResponse struct {
	RespondedAt time.Time `json:"responded_at"`
}

// StartedResponse is a common type for responding to K8S style startup checks.
type StartedResponse struct {
	RespondedAt time.Time `json:"responded_at"`
}

// GameStatus is one game row of the status page.
type GameStatus struct {
	Name           string
	Description    string
	Songs          int
	Versions       []string
	CatalogVersion uint64
	LoadedAt       time.Time
}

// StatusData is the status page template context.
type StatusData struct {
	Name      string
	Version   string
	APIPrefix string
	Games     []GameStatus
}
