package receipt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bombers-push/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hand-rolled spies here instead of mock.Mock: the permanent-failure case
// asserts call ordering, which a shared trace captures directly.

type spyReceipts struct {
	trace      *[]string
	failWrites bool
}

func (s *spyReceipts) RecordDelivered(_ context.Context, notificationID, deviceID string, _ time.Time) error {
	*s.trace = append(*s.trace, "delivered:"+notificationID+":"+deviceID)
	return nil
}

func (s *spyReceipts) RecordFailure(_ context.Context, notificationID, deviceID, reason string) error {
	if s.failWrites {
		return errors.New("receipt write failed")
	}
	*s.trace = append(*s.trace, "failure:"+notificationID+":"+deviceID+":"+reason)
	return nil
}

type spyRetirer struct{ trace *[]string }

func (s *spyRetirer) Retire(_ context.Context, deviceID string) error {
	*s.trace = append(*s.trace, "retire:"+deviceID)
	return nil
}

func newHarness(failWrites bool) (Tracker, *[]string) {
	trace := &[]string{}
	return NewTracker(&spyReceipts{trace: trace, failWrites: failWrites}, &spyRetirer{trace: trace}), trace
}

func TestRecord_Delivered(t *testing.T) {
	tr, trace := newHarness(false)
	err := tr.Record(context.Background(), domain.Device{DeviceID: "d1"}, "n1", domain.DeliveryOutcome{Delivered: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"delivered:n1:d1"}, *trace)
}

func TestRecord_TransientFailure_KeepsDevice(t *testing.T) {
	tr, trace := newHarness(false)
	err := tr.Record(context.Background(), domain.Device{DeviceID: "d1"}, "n1", domain.DeliveryOutcome{
		Reason: "Unavailable",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"failure:n1:d1:Unavailable"}, *trace)
}

func TestRecord_PermanentFailure_RetiresAfterReceiptWrite(t *testing.T) {
	tr, trace := newHarness(false)
	err := tr.Record(context.Background(), domain.Device{DeviceID: "d1"}, "n1", domain.DeliveryOutcome{
		Reason:    "Unregistered",
		Permanent: true,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"failure:n1:d1:Unregistered", "retire:d1"}, *trace)
}

func TestRecord_ReceiptWriteFails_DeviceSurvives(t *testing.T) {
	tr, trace := newHarness(true)
	err := tr.Record(context.Background(), domain.Device{DeviceID: "d1"}, "n1", domain.DeliveryOutcome{
		Reason:    "Unregistered",
		Permanent: true,
	})

	require.Error(t, err)
	assert.Empty(t, *trace)
}
