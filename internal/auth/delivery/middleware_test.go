package delivery

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	authdomain "smartrfq/internal/auth/domain"
	authdto "smartrfq/internal/auth/dto"
	"smartrfq/internal/auth/usecase"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	usecase.AuthUsecase
	users map[string]*authdomain.User
}

func (s *stubAuth) ValidateToken(token string) (*authdomain.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

func (s *stubAuth) GetUser(id string) (*authdomain.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("missing")
}

func (s *stubAuth) RegisterDevice(string, *authdto.RegisterDeviceRequest) error { return nil }

func newRouter(uc usecase.AuthUsecase, failures prometheus.Counter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(uc)
	api := r.Group("/api", AuthMiddleware(uc, failures))
	api.GET("/users/me", h.Me)
	api.POST("/users/sync", h.SyncUser)
	api.POST("/fcm/register", h.RegisterDevice)
	api.GET("/scope", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"org": c.GetString(OrgIDKey)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	uc := &stubAuth{users: map[string]*authdomain.User{
		"good":     {ID: "u1", OrgID: "org_a", Email: "a@example.com"},
		"personal": {ID: "u2"},
	}}
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "auth_failures"})
	r := newRouter(uc, failures)

	tests := []struct {
		name   string
		header string
		status int
		org    string
	}{
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", status: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "org scope", header: "Bearer good", status: http.StatusOK, org: "org_a"},
		{name: "personal scope", header: "Bearer personal", status: http.StatusOK, org: "user:u2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/scope", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tt.status, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.org, body["org"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(failures))
}

func TestAuthHandler_MeAndSync(t *testing.T) {
	uc := &stubAuth{users: map[string]*authdomain.User{"good": {ID: "u1", OrgID: "org_a", Name: "Buyer"}}}
	r := newRouter(uc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var me authdomain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "Buyer", me.Name)

	req = httptest.NewRequest(http.MethodPost, "/api/users/sync", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var synced struct {
		User authdomain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &synced))
	assert.Equal(t, "u1", synced.User.ID)
}

func TestAuthHandler_RegisterDeviceValidates(t *testing.T) {
	uc := &stubAuth{users: map[string]*authdomain.User{"good": {ID: "u1"}}}
	r := newRouter(uc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/fcm/register", nil)
	req.Header.Set("Authorization", "Bearer good")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
