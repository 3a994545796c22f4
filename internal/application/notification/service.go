package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/bombers-push/internal/application/dispatch"
	"github.com/bombers-push/internal/domain"
	"github.com/bombers-push/internal/pkg/id"
	"github.com/bombers-push/internal/pkg/validate"
)

const (
	feedLimit      = 50
	deepLinkScheme = "bomber://"
)

// Service owns the notification lifecycle: authoring, the send trigger, the
// sent feed, and per-user read state.
type Service interface {
	Create(ctx context.Context, req domain.CreateNotificationRequest) (*domain.Notification, error)
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	// Send runs one send pass. Per-device failures stay local to the pass;
	// the call succeeds once every outcome has settled.
	Send(ctx context.Context, notificationID string) (*domain.Notification, error)
	Feed(ctx context.Context) ([]domain.Notification, error)
	Receipts(ctx context.Context, notificationID string) ([]domain.PushReceipt, error)
	MarkOpened(ctx context.Context, userID, notificationID string) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListSent(ctx context.Context, limit int32) ([]domain.Notification, error)
}

type receiptStore interface {
	ListByNotification(ctx context.Context, notificationID string) ([]domain.PushReceipt, error)
}

type userNotificationStore interface {
	MarkRead(ctx context.Context, userID, notificationID string) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, n *domain.Notification) ([]dispatch.Result, error)
}

type service struct {
	repo              notificationStore
	receipts          receiptStore
	userNotifications userNotificationStore
	dispatcher        dispatcher
	pushEnabled       bool
}

func NewService(
	repo notificationStore,
	receipts receiptStore,
	userNotifications userNotificationStore,
	dispatcher dispatcher,
	pushEnabled bool,
) Service {
	return &service{
		repo:              repo,
		receipts:          receipts,
		userNotifications: userNotifications,
		dispatcher:        dispatcher,
		pushEnabled:       pushEnabled,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateNotificationRequest) (*domain.Notification, error) {
	msgs := validate.Struct(req)

	if req.Audience.Empty() {
		msgs = append(msgs, "field 'Audience' must set all or at least one of roles, regions, teamIds, userIds")
	}
	if req.DeepLink != nil && !validDeepLink(*req.DeepLink) {
		msgs = append(msgs, fmt.Sprintf("field 'DeepLink' must start with %s or be an https URL", deepLinkScheme))
	}

	var scheduledAt *time.Time
	if req.ScheduledAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			msgs = append(msgs, "field 'ScheduledAt' must be an RFC 3339 timestamp")
		} else {
			utc := t.UTC()
			scheduledAt = &utc
		}
	}
	for k := range req.Data {
		if k == "" {
			msgs = append(msgs, "field 'Data' keys must be non-empty")
			break
		}
	}

	if msgs != nil {
		return nil, &domain.ValidationError{Fields: msgs}
	}

	platform := req.Platform
	if platform == "" {
		platform = domain.TargetBoth
	}
	status := domain.StatusDraft
	if scheduledAt != nil {
		status = domain.StatusQueued
	}

	now := time.Now().UTC()
	n := &domain.Notification{
		NotificationID: id.New(),
		Title:          req.Title,
		Body:           req.Body,
		ImageURL:       req.ImageURL,
		DeepLink:       req.DeepLink,
		Audience:       req.Audience,
		Platform:       platform,
		Status:         status,
		ScheduledAt:    scheduledAt,
		Data:           req.Data,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	return s.repo.Get(ctx, notificationID)
}

func (s *service) Send(ctx context.Context, notificationID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if !s.pushEnabled {
		return nil, fmt.Errorf("push disabled by configuration: %w", domain.ErrProviderNotConfigured)
	}

	results, err := s.dispatcher.Dispatch(ctx, n)
	if err != nil {
		return nil, err
	}

	delivered := 0
	for _, res := range results {
		if res.Outcome.Delivered {
			delivered++
		}
	}
	slog.Info("send pass complete",
		"notification", n.NotificationID,
		"devices", len(results),
		"delivered", delivered,
		"failed", len(results)-delivered)
	return n, nil
}

func (s *service) Feed(ctx context.Context) ([]domain.Notification, error) {
	return s.repo.ListSent(ctx, feedLimit)
}

func (s *service) Receipts(ctx context.Context, notificationID string) ([]domain.PushReceipt, error) {
	if _, err := s.repo.Get(ctx, notificationID); err != nil {
		return nil, err
	}
	return s.receipts.ListByNotification(ctx, notificationID)
}

func (s *service) MarkOpened(ctx context.Context, userID, notificationID string) error {
	return s.userNotifications.MarkRead(ctx, userID, notificationID)
}

func validDeepLink(link string) bool {
	if strings.HasPrefix(link, deepLinkScheme) {
		return true
	}
	u, err := url.Parse(link)
	return err == nil && u.Scheme == "https" && u.Host != ""
}
