package notification

import (
	"context"
	"fmt"

	"smartrfq/pkg/fcm"
	"smartrfq/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// TokenSource lists and prunes the push registrations of an organization.
type TokenSource interface {
	OrgDeviceTokens(orgID string) ([]string, error)
	DropDeviceTokens(tokens []string) error
}

// Pusher delivers one notification to a set of device tokens and returns the
// tokens that are no longer valid.
type Pusher interface {
	SendToDevices(ctx context.Context, tokens []string, n fcm.Notification) ([]string, error)
}

// Service sends organization-wide push notifications.
type Service struct {
	tokens   TokenSource
	pusher   Pusher
	failures prometheus.Counter
	log      *logger.Logger
}

func NewService(tokens TokenSource, pusher Pusher, failures prometheus.Counter, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{tokens: tokens, pusher: pusher, failures: failures, log: log.With("component", "Notification")}
}

// NotifyOrg pushes n to every device of the org and forgets stale tokens.
func (s *Service) NotifyOrg(ctx context.Context, orgID string, n fcm.Notification) error {
	if s == nil || s.pusher == nil {
		return nil
	}
	tokens, err := s.tokens.OrgDeviceTokens(orgID)
	if err != nil {
		return fmt.Errorf("load device tokens: %w", err)
	}
	if len(tokens) == 0 {
		s.log.Debug("no devices registered, push skipped", "org_id", orgID)
		return nil
	}

	stale, err := s.pusher.SendToDevices(ctx, tokens, n)
	if err != nil {
		if s.failures != nil {
			s.failures.Inc()
		}
		return err
	}
	if len(stale) > 0 {
		s.log.Info("dropping stale device tokens", "count", len(stale))
		if err := s.tokens.DropDeviceTokens(stale); err != nil {
			return fmt.Errorf("drop stale tokens: %w", err)
		}
	}
	return nil
}

// QuotationsReceived tells the org that a supplier reply produced quotes.
func (s *Service) QuotationsReceived(ctx context.Context, orgID, projectID, conversationID, supplierName string, count int) error {
	title := "New quotation"
	if supplierName != "" {
		title = fmt.Sprintf("Quotation from %s", supplierName)
	}
	body := fmt.Sprintf("%d item price(s) extracted", count)
	return s.NotifyOrg(ctx, orgID, fcm.Notification{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":            "quotation_extracted",
			"project_id":      projectID,
			"conversation_id": conversationID,
			"count":           fmt.Sprintf("%d", count),
		},
		ClickAction: buildClickAction(projectID),
	})
}

func buildClickAction(projectID string) string {
	if projectID == "" {
		return "/projects"
	}
	return fmt.Sprintf("/projects/%s/quotations", projectID)
}
