package repository

import authdomain "smartrfq/internal/auth/domain"

// UserRepository stores the local mirror of identity-provider users.
type UserRepository interface {
	Create(user *authdomain.User) error
	FindByID(id string) (*authdomain.User, error)
	FindByExternalID(externalID string) (*authdomain.User, error)
	Update(user *authdomain.User) error
}

// DeviceTokenRepository stores push-notification registrations.
type DeviceTokenRepository interface {
	SaveToken(userID, token, deviceInfo string) error
	GetTokensByUserID(userID string) ([]authdomain.DeviceToken, error)
	GetTokensByOrg(orgID string) ([]authdomain.DeviceToken, error)
	DeleteToken(userID, token string) error
	DeleteTokens(tokens []string) error
}
