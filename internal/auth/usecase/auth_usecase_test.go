package usecase

import (
	"testing"
	"time"

	authdomain "smartrfq/internal/auth/domain"
	authdto "smartrfq/internal/auth/dto"
	"smartrfq/internal/auth/repository"
	"smartrfq/pkg/apierr"
	"smartrfq/pkg/config"
	"smartrfq/pkg/database"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "test-issuer"
)

func newTestUsecase(t *testing.T) AuthUsecase {
	t.Helper()
	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&authdomain.User{}, &authdomain.DeviceToken{}))
	cfg := &config.Config{IdentityJWTSecret: testSecret, IdentityIssuer: testIssuer}
	return NewAuthUsecase(repository.NewUserRepository(db), repository.NewDeviceTokenRepository(db), cfg)
}

func mint(t *testing.T, req authdto.DevTokenRequest) string {
	t.Helper()
	token, err := MintToken(testSecret, testIssuer, req, time.Hour)
	require.NoError(t, err)
	return token
}

func TestValidateToken_CreatesThenRefreshesMirror(t *testing.T) {
	uc := newTestUsecase(t)

	first, err := uc.ValidateToken(mint(t, authdto.DevTokenRequest{
		Subject: "idp_1", Email: "Buyer@Example.com", Name: "Buyer", OrgID: "org_a", Role: "admin",
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "buyer@example.com", first.Email)
	assert.Equal(t, "org_a", first.OrgID)

	second, err := uc.ValidateToken(mint(t, authdto.DevTokenRequest{
		Subject: "idp_1", Email: "buyer@example.com", Name: "Buyer Two", OrgID: "org_b", Role: "member",
	}))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Buyer Two", second.Name)
	assert.Equal(t, "org_b", second.OrgID)

	stored, err := uc.GetUser(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "org_b", stored.OrgID)
}

func TestParseIdentity_Rejects(t *testing.T) {
	uc := newTestUsecase(t)

	wrongSecret, err := MintToken("other-secret", testIssuer, authdto.DevTokenRequest{Subject: "x"}, time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := MintToken(testSecret, "someone-else", authdto.DevTokenRequest{Subject: "x"}, time.Hour)
	require.NoError(t, err)
	expired, err := MintToken(testSecret, testIssuer, authdto.DevTokenRequest{Subject: "x"}, -time.Minute)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: testIssuer},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": wrongSecret,
		"wrong issuer": wrongIssuer,
		"expired":      expired,
		"no expiry":    noExpiry,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := uc.ParseIdentity(token)
			require.Error(t, err)
			assert.ErrorIs(t, err, apierr.ErrUnverified)
		})
	}
}

func TestMintToken_GeneratesSubject(t *testing.T) {
	uc := newTestUsecase(t)
	identity, err := uc.ParseIdentity(mint(t, authdto.DevTokenRequest{Email: "a@b.c"}))
	require.NoError(t, err)
	assert.Contains(t, identity.ExternalID, "dev_")
}

func TestDevices_RegisterMovesAndDrops(t *testing.T) {
	uc := newTestUsecase(t)
	alice, err := uc.ValidateToken(mint(t, authdto.DevTokenRequest{Subject: "alice", OrgID: "org_a"}))
	require.NoError(t, err)
	bob, err := uc.ValidateToken(mint(t, authdto.DevTokenRequest{Subject: "bob", OrgID: "org_b"}))
	require.NoError(t, err)

	require.NoError(t, uc.RegisterDevice(alice.ID, &authdto.RegisterDeviceRequest{Token: "tok-1"}))
	require.NoError(t, uc.RegisterDevice(alice.ID, &authdto.RegisterDeviceRequest{Token: "tok-2"}))

	tokens, err := uc.OrgDeviceTokens("org_a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tok-1", "tok-2"}, tokens)

	// Same device signs in as another user.
	require.NoError(t, uc.RegisterDevice(bob.ID, &authdto.RegisterDeviceRequest{Token: "tok-2"}))
	tokens, err = uc.OrgDeviceTokens("org_a")
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1"}, tokens)

	require.NoError(t, uc.DropDeviceTokens([]string{"tok-1"}))
	require.NoError(t, uc.UnregisterDevice(bob.ID, "tok-2"))
	for _, org := range []string{"org_a", "org_b"} {
		tokens, err = uc.OrgDeviceTokens(org)
		require.NoError(t, err)
		assert.Empty(t, tokens)
	}

	err = uc.RegisterDevice(alice.ID, &authdto.RegisterDeviceRequest{Token: "  "})
	assert.ErrorIs(t, err, apierr.ErrInvalid)
}
