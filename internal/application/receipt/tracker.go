package receipt

import (
	"context"
	"time"

	"github.com/bombers-push/internal/domain"
)

// Tracker records per-device delivery outcomes and retires devices whose
// tokens a provider declared permanently invalid.
type Tracker interface {
	Record(ctx context.Context, device domain.Device, notificationID string, outcome domain.DeliveryOutcome) error
}

type receiptStore interface {
	RecordDelivered(ctx context.Context, notificationID, deviceID string, at time.Time) error
	RecordFailure(ctx context.Context, notificationID, deviceID, reason string) error
}

type deviceRetirer interface {
	Retire(ctx context.Context, deviceID string) error
}

type tracker struct {
	receipts receiptStore
	devices  deviceRetirer
}

func NewTracker(receipts receiptStore, devices deviceRetirer) Tracker {
	return &tracker{receipts: receipts, devices: devices}
}

// Record upserts the (device, notification) receipt. For permanent failures
// the receipt write ALWAYS lands before the device row is removed, so the
// failure stays observable even after the device disappears.
func (t *tracker) Record(ctx context.Context, device domain.Device, notificationID string, outcome domain.DeliveryOutcome) error {
	if outcome.Delivered {
		return t.receipts.RecordDelivered(ctx, notificationID, device.DeviceID, time.Now().UTC())
	}
	if err := t.receipts.RecordFailure(ctx, notificationID, device.DeviceID, outcome.Reason); err != nil {
		return err
	}
	if outcome.Permanent {
		return t.devices.Retire(ctx, device.DeviceID)
	}
	return nil
}
