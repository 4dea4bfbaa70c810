package domain

import "time"

// User mirrors the identity provider's user record. It is created or refreshed
// from verified token claims; the identity provider stays the source of truth.
type User struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	ExternalID string    `json:"external_id" gorm:"uniqueIndex;not null"`
	OrgID      string    `json:"org_id" gorm:"index"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u User) EntityID() string { return u.ID }

// Identity is the claim set carried by a verified identity-provider token.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
	AvatarURL  string
	OrgID      string
	Role       string
}

// Changed reports whether the identity carries profile data that differs from u.
func (i Identity) Changed(u *User) bool {
	return u.Email != i.Email || u.Name != i.Name || u.AvatarURL != i.AvatarURL ||
		u.OrgID != i.OrgID || u.Role != i.Role
}
