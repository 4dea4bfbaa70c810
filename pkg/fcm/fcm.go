package fcm

import (
	"context"
	"fmt"

	"smartrfq/pkg/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Client wraps Firebase Cloud Messaging.
type Client struct {
	messagingClient *messaging.Client
	log             *logger.Logger
}

// NewClient creates an FCM client. An empty credentialsFile falls back to
// application default credentials.
func NewClient(ctx context.Context, credentialsFile string, log *logger.Logger) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log = log.With("component", "FCM")
	log.Info("fcm client initialized")
	return &Client{messagingClient: messagingClient, log: log}, nil
}

// Notification is the payload of one push.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
	// ClickAction is the app path opened from the notification.
	ClickAction string
}

// SendToDevices pushes n to every token and returns the tokens the service
// reported as no longer registered.
func (c *Client) SendToDevices(ctx context.Context, tokens []string, n Notification) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	if n.ClickAction != "" {
		data["click_action"] = n.ClickAction
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: n.Title,
				Body:  n.Body,
				Icon:  "/icon-192.svg",
			},
		},
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}
	c.log.Info("multicast sent", "success", response.SuccessCount, "failure", response.FailureCount)

	var stale []string
	for i, resp := range response.Responses {
		if resp.Success {
			continue
		}
		if messaging.IsUnregistered(resp.Error) {
			stale = append(stale, tokens[i])
			continue
		}
		c.log.Warn("push to device failed", "error", resp.Error)
	}
	return stale, nil
}
