package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bombers-push/internal/domain"
)

const (
	defaultWorkers = 8
	defaultTimeout = 10 * time.Second
)

// Sender is one provider adapter. Selection is purely by device platform.
type Sender interface {
	Send(ctx context.Context, device domain.Device, msg domain.PushMessage) domain.DeliveryOutcome
}

// Resolver expands an audience into target user IDs.
type Resolver interface {
	Resolve(ctx context.Context, spec domain.Audience) (map[string]struct{}, error)
}

type deviceFinder interface {
	DevicesFor(ctx context.Context, userIDs []string, platform string) ([]domain.Device, error)
}

type outcomeRecorder interface {
	Record(ctx context.Context, device domain.Device, notificationID string, outcome domain.DeliveryOutcome) error
}

type notificationStore interface {
	MarkSent(ctx context.Context, notificationID string, at time.Time) error
}

type userNotificationStore interface {
	PutIfAbsent(ctx context.Context, un *domain.UserNotification) error
}

// Result pairs one device with its delivery outcome.
type Result struct {
	Device  domain.Device
	Outcome domain.DeliveryOutcome
}

// Dispatcher fans one notification out to every matching device through a
// bounded worker pool and funnels every outcome into the receipt tracker.
type Dispatcher struct {
	resolver          Resolver
	devices           deviceFinder
	receipts          outcomeRecorder
	notifications     notificationStore
	userNotifications userNotificationStore
	senders           map[string]Sender
	workers           int
	timeout           time.Duration
}

func NewDispatcher(
	resolver Resolver,
	devices deviceFinder,
	receipts outcomeRecorder,
	notifications notificationStore,
	userNotifications userNotificationStore,
	senders map[string]Sender,
	workers int,
	timeout time.Duration,
) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		resolver:          resolver,
		devices:           devices,
		receipts:          receipts,
		notifications:     notifications,
		userNotifications: userNotifications,
		senders:           senders,
		workers:           workers,
		timeout:           timeout,
	}
}

// Dispatch runs one send pass: resolve the audience, find the devices, upsert
// the per-user read-state join, deliver concurrently, record every outcome,
// and finally mark the notification sent. A provider failure for one device
// never blocks the others; once started, the pass runs until every outcome
// has settled.
func (d *Dispatcher) Dispatch(ctx context.Context, n *domain.Notification) ([]Result, error) {
	userSet, err := d.resolver.Resolve(ctx, n.Audience)
	if err != nil {
		return nil, err
	}

	// An audience that resolves to nobody delivers to nobody. Without this
	// guard the device query below would run unconstrained and broadcast.
	if !n.Audience.All && len(userSet) == 0 {
		sentAt := time.Now().UTC()
		if err := d.notifications.MarkSent(ctx, n.NotificationID, sentAt); err != nil {
			return nil, err
		}
		n.Status = domain.StatusSent
		if n.SentAt == nil {
			n.SentAt = &sentAt
		}
		return nil, nil
	}

	// For an All audience the device query is unconstrained by user; the
	// platform filter alone narrows it.
	var userIDs []string
	if !n.Audience.All {
		userIDs = make([]string, 0, len(userSet))
		for userID := range userSet {
			userIDs = append(userIDs, userID)
		}
	}

	devices, err := d.devices.DevicesFor(ctx, userIDs, platformFilter(n.Platform))
	if err != nil {
		return nil, err
	}

	// Missing provider credentials are an operator error, not a per-device
	// outcome: abort before any provider call or receipt write.
	for _, dev := range devices {
		if d.senders[dev.Platform] == nil {
			return nil, fmt.Errorf("%s: %w", dev.Platform, domain.ErrProviderNotConfigured)
		}
	}

	// One join row per targeted user, regardless of device count, and
	// regardless of whether delivery to that user's devices succeeds.
	now := time.Now().UTC()
	for userID := range userSet {
		un := &domain.UserNotification{
			UserID:         userID,
			NotificationID: n.NotificationID,
			CreatedAt:      now,
		}
		if err := d.userNotifications.PutIfAbsent(ctx, un); err != nil {
			return nil, fmt.Errorf("upsert user notification: %w", err)
		}
	}

	results := d.fanOut(ctx, n, devices)

	for _, res := range results {
		if err := d.receipts.Record(ctx, res.Device, n.NotificationID, res.Outcome); err != nil {
			slog.Error("record receipt",
				"notification", n.NotificationID,
				"device", res.Device.DeviceID,
				"err", err)
		}
	}

	sentAt := time.Now().UTC()
	if err := d.notifications.MarkSent(ctx, n.NotificationID, sentAt); err != nil {
		return results, err
	}
	n.Status = domain.StatusSent
	if n.SentAt == nil {
		n.SentAt = &sentAt
	}
	return results, nil
}

// fanOut delivers to every device through a fixed-size worker pool. All
// outcomes are collected; no early abort.
func (d *Dispatcher) fanOut(ctx context.Context, n *domain.Notification, devices []domain.Device) []Result {
	msg := buildMessage(n)

	jobs := make(chan domain.Device)
	outcomes := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dev := range jobs {
				callCtx, cancel := context.WithTimeout(ctx, d.timeout)
				out := d.senders[dev.Platform].Send(callCtx, dev, msg)
				cancel()
				outcomes <- Result{Device: dev, Outcome: out}
			}
		}()
	}

	go func() {
		for _, dev := range devices {
			jobs <- dev
		}
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	results := make([]Result, 0, len(devices))
	for res := range outcomes {
		results = append(results, res)
	}
	return results
}

// buildMessage maps the notification onto the canonical provider payload. The
// deep link rides in the data map so both platforms receive it the same way.
func buildMessage(n *domain.Notification) domain.PushMessage {
	msg := domain.PushMessage{
		Title: n.Title,
		Body:  n.Body,
		Data:  n.Data,
	}
	if n.ImageURL != nil {
		msg.ImageURL = *n.ImageURL
	}
	if n.DeepLink != nil {
		data := make(map[string]string, len(n.Data)+1)
		for k, v := range n.Data {
			data[k] = v
		}
		data["deepLink"] = *n.DeepLink
		msg.Data = data
	}
	return msg
}

func platformFilter(target string) string {
	if target == domain.TargetBoth || target == "" {
		return ""
	}
	return target
}
