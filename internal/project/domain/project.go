package domain

import "time"

// Status is the lifecycle state of a project.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusOpen     Status = "open"
	StatusClosed   Status = "closed"
	StatusArchived Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusOpen, StatusClosed, StatusArchived:
		return true
	}
	return false
}

// Project groups the parts list, suppliers and conversations of one RFQ.
type Project struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	OrgID          string    `json:"org_id" gorm:"index;not null"`
	Name           string    `json:"name" gorm:"not null"`
	Description    string    `json:"description,omitempty"`
	Status         Status    `json:"status" gorm:"default:draft"`
	PartsCount     int       `json:"parts_count,omitempty" gorm:"-"`
	SuppliersCount int       `json:"suppliers_count,omitempty" gorm:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p Project) EntityID() string { return p.ID }

// Patch holds the fields of an update request; nil fields are left untouched.
type Patch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

func (p Patch) Apply(project *Project) {
	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.Status != nil {
		project.Status = *p.Status
	}
}
