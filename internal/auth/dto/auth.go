package dto

type RegisterDeviceRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"device_info"`
}

// DevTokenRequest describes the identity to mint a development token for.
type DevTokenRequest struct {
	Subject string
	Email   string
	Name    string
	OrgID   string
	Role    string
}
