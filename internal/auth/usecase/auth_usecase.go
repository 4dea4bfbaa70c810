package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	authdomain "smartrfq/internal/auth/domain"
	authdto "smartrfq/internal/auth/dto"
	"smartrfq/internal/auth/repository"
	"smartrfq/pkg/apierr"
	"smartrfq/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IdentityClaims is the claim set issued by the identity provider.
type IdentityClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	OrgID   string `json:"org_id,omitempty"`
	OrgRole string `json:"org_role,omitempty"`
	jwt.RegisteredClaims
}

type authUsecase struct {
	userRepo   repository.UserRepository
	deviceRepo repository.DeviceTokenRepository
	config     *config.Config
}

func NewAuthUsecase(userRepo repository.UserRepository, deviceRepo repository.DeviceTokenRepository, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo:   userRepo,
		deviceRepo: deviceRepo,
		config:     cfg,
	}
}

func (u *authUsecase) ValidateToken(token string) (*authdomain.User, error) {
	identity, err := u.ParseIdentity(token)
	if err != nil {
		return nil, err
	}
	return u.SyncIdentity(identity)
}

func (u *authUsecase) ParseIdentity(tokenString string) (*authdomain.Identity, error) {
	var claims IdentityClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if u.config.IdentityIssuer != "" {
		opts = append(opts, jwt.WithIssuer(u.config.IdentityIssuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(u.config.IdentityJWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", apierr.ErrUnverified, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", apierr.ErrUnverified)
	}
	return &authdomain.Identity{
		ExternalID: claims.Subject,
		Email:      strings.ToLower(strings.TrimSpace(claims.Email)),
		Name:       claims.Name,
		AvatarURL:  claims.Picture,
		OrgID:      claims.OrgID,
		Role:       claims.OrgRole,
	}, nil
}

// SyncIdentity finds the mirror for identity, creating it on first sight
// and refreshing its profile when the claims changed.
func (u *authUsecase) SyncIdentity(identity *authdomain.Identity) (*authdomain.User, error) {
	user, err := u.userRepo.FindByExternalID(identity.ExternalID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &authdomain.User{
			ExternalID: identity.ExternalID,
			Email:      identity.Email,
			Name:       identity.Name,
			AvatarURL:  identity.AvatarURL,
			OrgID:      identity.OrgID,
			Role:       identity.Role,
		}
		if err := u.userRepo.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if identity.Changed(user) {
		user.Email = identity.Email
		user.Name = identity.Name
		user.AvatarURL = identity.AvatarURL
		user.OrgID = identity.OrgID
		user.Role = identity.Role
		if err := u.userRepo.Update(user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (u *authUsecase) GetUser(id string) (*authdomain.User, error) {
	user, err := u.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, apierr.ErrNotFound)
	}
	return user, nil
}

func (u *authUsecase) RegisterDevice(userID string, req *authdto.RegisterDeviceRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return fmt.Errorf("%w: token is required", apierr.ErrInvalid)
	}
	return u.deviceRepo.SaveToken(userID, req.Token, req.DeviceInfo)
}

func (u *authUsecase) UnregisterDevice(userID, token string) error {
	return u.deviceRepo.DeleteToken(userID, token)
}

func (u *authUsecase) OrgDeviceTokens(orgID string) ([]string, error) {
	records, err := u.deviceRepo.GetTokensByOrg(orgID)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(records))
	for _, r := range records {
		tokens = append(tokens, r.Token)
	}
	return tokens, nil
}

func (u *authUsecase) DropDeviceTokens(tokens []string) error {
	return u.deviceRepo.DeleteTokens(tokens)
}

// MintToken signs a development identity token with the shared secret. In
// production tokens come from the identity provider.
func MintToken(secret, issuer string, req authdto.DevTokenRequest, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("identity secret is empty")
	}
	subject := req.Subject
	if subject == "" {
		subject = "dev_" + uuid.New().String()
	}
	now := time.Now()
	claims := IdentityClaims{
		Email:   req.Email,
		Name:    req.Name,
		OrgID:   req.OrgID,
		OrgRole: req.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
