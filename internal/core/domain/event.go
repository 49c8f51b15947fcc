package domain

import "time"

// EventType names an outbound notification.
type EventType string

const (
	EventWithdrawalSubmitted  EventType = "withdrawal.submitted"
	EventReviewerAssigned     EventType = "workflow.reviewer_assigned"
	EventWorkflowTransitioned EventType = "workflow.transitioned"
	EventWorkflowStalled      EventType = "workflow.stalled"
)

// WorkflowEvent is emitted after a write commits. Consumers receive it asynchronously.
type WorkflowEvent struct {
	EventID         string        `json:"eventID"`
	Type            EventType     `json:"type"`
	CompanyID       string        `json:"companyID"`
	WorkflowID      string        `json:"workflowID"`
	RequestID       string        `json:"requestID,omitempty"`
	ActorID         string        `json:"actorID"`
	Action          Action        `json:"action,omitempty"`
	FromState       WorkflowState `json:"fromState,omitempty"`
	ToState         WorkflowState `json:"toState,omitempty"`
	EscalationLevel int           `json:"escalationLevel"`
	OccurredAt      time.Time     `json:"occurredAt"`
}
