package domain

// ItemCounter holds the last item number issued in a project. Numbers are
// never handed out twice, even after the items that carried them are deleted.
type ItemCounter struct {
	ProjectID string `gorm:"primaryKey"`
	OrgID     string `gorm:"index;not null"`
	Last      int    `gorm:"not null;default:0"`
}
