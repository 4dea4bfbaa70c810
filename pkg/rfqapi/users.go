package rfqapi

import (
	"context"
	"net/http"

	authdomain "smartrfq/internal/auth/domain"
	authdto "smartrfq/internal/auth/dto"
)

func (c *Client) Me(ctx context.Context) (*authdomain.User, error) {
	return sendJSON[authdomain.User](ctx, c, "Me", http.MethodGet, "/api/users/me", "user", nil)
}

// SyncUser asks the backend to refresh its mirror of the identity user.
func (c *Client) SyncUser(ctx context.Context) (*authdomain.User, error) {
	return sendJSON[authdomain.User](ctx, c, "SyncUser", http.MethodPost, "/api/users/sync", "user", nil)
}

func (c *Client) RegisterDevice(ctx context.Context, token, deviceInfo string) error {
	return c.send(ctx, "RegisterDevice", http.MethodPost, "/api/fcm/register",
		authdto.RegisterDeviceRequest{Token: token, DeviceInfo: deviceInfo})
}
