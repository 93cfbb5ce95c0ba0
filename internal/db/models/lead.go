package models

import "time"

// LeadStatus is the workflow state of a lead.
type LeadStatus string

// LeadPriority ranks leads in the admin panel.
type LeadPriority string

const (
	// LeadStatusNew is the state of a freshly submitted lead.
	LeadStatusNew LeadStatus = "new"
	// LeadStatusInProgress means a manager is working on the lead.
	LeadStatusInProgress LeadStatus = "in_progress"
	// LeadStatusCompleted means the request was fulfilled.
	LeadStatusCompleted LeadStatus = "completed"
	// LeadStatusClosed means the lead was dropped.
	LeadStatusClosed LeadStatus = "closed"

	// LeadPriorityLow is the lowest priority.
	LeadPriorityLow LeadPriority = "low"
	// LeadPriorityMedium is the default priority.
	LeadPriorityMedium LeadPriority = "medium"
	// LeadPriorityHigh is a high priority.
	LeadPriorityHigh LeadPriority = "high"
	// LeadPriorityUrgent is the highest priority.
	LeadPriorityUrgent LeadPriority = "urgent"
)

// LeadStatuses lists every status in workflow order.
var LeadStatuses = []LeadStatus{LeadStatusNew, LeadStatusInProgress, LeadStatusCompleted, LeadStatusClosed}

// LeadPriorities lists every priority from low to urgent.
var LeadPriorities = []LeadPriority{LeadPriorityLow, LeadPriorityMedium, LeadPriorityHigh, LeadPriorityUrgent}

// Valid reports whether s is a known status.
func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}

	return false
}

// Valid reports whether p is a known priority.
func (p LeadPriority) Valid() bool {
	for _, v := range LeadPriorities {
		if v == p {
			return true
		}
	}

	return false
}

// Lead is a contact form submission tracked through the status/priority workflow.
type Lead struct {
	ID        uint64       `gorm:"primaryKey"                                 json:"id"`
	Name      string       `gorm:"size:255;not null"                          json:"name"`
	Phone     string       `gorm:"size:50;not null"                           json:"phone"`
	Email     string       `gorm:"size:255"                                   json:"email"`
	Company   string       `gorm:"size:255"                                   json:"company"`
	Message   string       `gorm:"type:text"                                  json:"message"`
	Consent   bool         `gorm:"not null"                                   json:"consent"`
	Source    string       `gorm:"size:50"                                    json:"source"`
	Status    LeadStatus   `gorm:"type:varchar(20);not null;default:'new';index"    json:"status"`
	Priority  LeadPriority `gorm:"type:varchar(20);not null;default:'medium';index" json:"priority"`
	Notes     string       `gorm:"type:text"                                  json:"notes"`
	CreatedAt time.Time    `gorm:"index"                                      json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
