package domain

import (
	"time"

	"gorm.io/datatypes"
)

// GlobalKey is the bucket that mirrors every supplier regardless of project.
const GlobalKey = "global"

type Supplier struct {
	ID        string                      `json:"id" gorm:"primaryKey"`
	OrgID     string                      `json:"org_id" gorm:"index;not null"`
	ProjectID string                      `json:"project_id,omitempty" gorm:"index"`
	Name      string                      `json:"name" gorm:"not null"`
	Email     string                      `json:"email" gorm:"index;not null"`
	Phone     string                      `json:"phone,omitempty"`
	Address   string                      `json:"address,omitempty"`
	Tags      datatypes.JSONSlice[string] `json:"tags,omitempty"`
	Notes     string                      `json:"notes,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

func (s Supplier) EntityID() string { return s.ID }

// Clone returns a copy that shares no tag slice with s.
func (s Supplier) Clone() Supplier {
	if s.Tags != nil {
		s.Tags = append(make(datatypes.JSONSlice[string], 0, len(s.Tags)), s.Tags...)
	}
	return s
}

// BucketKey is the store bucket a supplier belongs to: its project, or the
// global bucket when it is not attached to one.
func (s Supplier) BucketKey() string {
	if s.ProjectID == "" {
		return GlobalKey
	}
	return s.ProjectID
}

type Patch struct {
	Name      *string   `json:"name,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	ProjectID *string   `json:"project_id,omitempty"`
}

func (p Patch) Apply(s *Supplier) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.Tags != nil {
		s.Tags = datatypes.JSONSlice[string](*p.Tags)
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
	if p.ProjectID != nil {
		s.ProjectID = *p.ProjectID
	}
}
