package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a domain event emitted for external indexing and
// dashboards.
type EventType string

const (
	EventContributionReceived   EventType = "contribution_received"
	EventCampaignFunded         EventType = "campaign_funded"
	EventCampaignFailed         EventType = "campaign_failed"
	EventRefundClaimed          EventType = "refund_claimed"
	EventBudgetSubmitted        EventType = "budget_submitted"
	EventBudgetApproved         EventType = "budget_approved"
	EventBudgetRejected         EventType = "budget_rejected"
	EventMilestoneReleased      EventType = "milestone_released"
	EventDistributionCalculated EventType = "distribution_calculated"
	EventShareClaimed           EventType = "share_claimed"
)

// Event carries the entity keys and resulting amount of a committed state
// transition. BudgetID is the zero UUID for campaign-level events and
// Party is empty when no single party is involved.
type Event struct {
	Type       EventType `json:"type"`
	CampaignID uuid.UUID `json:"campaign_id"`
	BudgetID   uuid.UUID `json:"budget_id,omitempty"`
	Party      string    `json:"party,omitempty"`
	Amount     int64     `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}
