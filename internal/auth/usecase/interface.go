package usecase

import (
	authdomain "smartrfq/internal/auth/domain"
	authdto "smartrfq/internal/auth/dto"
)

// AuthUsecase verifies identity tokens and keeps the user mirror current.
type AuthUsecase interface {
	// ValidateToken verifies an identity-provider token and returns the
	// mirrored user, creating or refreshing it from the claims.
	ValidateToken(token string) (*authdomain.User, error)
	ParseIdentity(token string) (*authdomain.Identity, error)
	SyncIdentity(identity *authdomain.Identity) (*authdomain.User, error)
	GetUser(id string) (*authdomain.User, error)

	RegisterDevice(userID string, req *authdto.RegisterDeviceRequest) error
	UnregisterDevice(userID, token string) error
	OrgDeviceTokens(orgID string) ([]string, error)
	DropDeviceTokens(tokens []string) error
}
