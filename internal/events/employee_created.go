package events

import "time"

const (
	EmployeeLifecycleTopic = "hr.employee.lifecycle.v1"

	EventTypeEmployeeCreated = "employee_created"
)

// EmployeeCreatedEvent is published by the onboarding service. Only
// employee_created is consumed here; other event types on the topic are
// skipped.
type EmployeeCreatedEvent struct {
	EventType  string    `json:"event_type"`
	EmployeeID string    `json:"employee_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
