// internal/api/activities/models.go
package activities

import "mergington-activities/internal/models"

// ActivitiesResponse is the body of GET /activities, keyed by activity name.
type ActivitiesResponse map[string]models.ActivitySnapshot

type MessageResponse struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	Status string            `json:"status"`
	Failed map[string]string `json:"failed,omitempty"`
}
