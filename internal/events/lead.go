package events

import (
	"strconv"
	"time"

	"github.com/whrealtors/realty-web/internal/leads"
)

// LeadCreatedV1 is emitted once a customer enquiry has been stored.
type LeadCreatedV1 struct {
	LeadID    int64     `json:"lead_id"`
	ProjectID string    `json:"project_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (LeadCreatedV1) EventType() string {
	return "lead.created.v1"
}

// NewLeadCreated copies the stored lead into the event payload.
func NewLeadCreated(lead *leads.Lead) LeadCreatedV1 {
	return LeadCreatedV1{
		LeadID:    lead.ID,
		ProjectID: lead.ProjectID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		CreatedAt: lead.CreatedAt.UTC(),
	}
}

// leadAggregate keys events per project so one project's leads stay ordered.
func leadAggregate(lead *leads.Lead) string {
	if lead.ProjectID != "" {
		return "project:" + lead.ProjectID
	}
	return "lead:" + strconv.FormatInt(lead.ID, 10)
}
