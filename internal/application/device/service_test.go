package device

import (
	"context"
	"errors"
	"testing"

	"github.com/bombers-push/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDeviceStore struct{ mock.Mock }

func (m *mockDeviceStore) Put(ctx context.Context, d *domain.Device) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
func (m *mockDeviceStore) GetByToken(ctx context.Context, token string) (*domain.Device, error) {
	args := m.Called(ctx, token)
	if d := args.Get(0); d != nil {
		return d.(*domain.Device), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDeviceStore) ListByUser(ctx context.Context, userID string) ([]domain.Device, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Device), args.Error(1)
}
func (m *mockDeviceStore) ListAll(ctx context.Context, platform string) ([]domain.Device, error) {
	args := m.Called(ctx, platform)
	return args.Get(0).([]domain.Device), args.Error(1)
}
func (m *mockDeviceStore) Update(ctx context.Context, deviceID string, updates map[string]interface{}) error {
	args := m.Called(ctx, deviceID, updates)
	return args.Error(0)
}
func (m *mockDeviceStore) Delete(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

const validToken = "abcdefghij"

func TestRegister_NewToken_CreatesDevice(t *testing.T) {
	repo := &mockDeviceStore{}
	repo.On("GetByToken", mock.Anything, validToken).Return(nil, domain.ErrNotFound)
	repo.On("Put", mock.Anything, mock.MatchedBy(func(d *domain.Device) bool {
		return d.DeviceID != "" && d.UserID == "u1" && d.Token == validToken
	})).Return(nil)

	svc := NewService(repo)
	d, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{
		UserID:   "u1",
		Platform: domain.PlatformIOS,
		Token:    validToken,
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", d.UserID)
	assert.Equal(t, domain.PlatformIOS, d.Platform)
	repo.AssertExpectations(t)
}

// Re-registering a known token keeps the device ID and hands ownership to the
// caller: last writer wins on shared family phones.
func TestRegister_ExistingToken_ReassignsOwner(t *testing.T) {
	existing := &domain.Device{DeviceID: "d1", UserID: "old-owner", Platform: domain.PlatformIOS, Token: validToken}
	repo := &mockDeviceStore{}
	repo.On("GetByToken", mock.Anything, validToken).Return(existing, nil)
	repo.On("Update", mock.Anything, "d1", map[string]interface{}{
		"user_id":     "new-owner",
		"platform":    domain.PlatformIOS,
		"app_version": "2.4.0",
	}).Return(nil)

	svc := NewService(repo)
	d, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{
		UserID:     "new-owner",
		Platform:   domain.PlatformIOS,
		Token:      validToken,
		AppVersion: "2.4.0",
	})

	require.NoError(t, err)
	assert.Equal(t, "d1", d.DeviceID)
	assert.Equal(t, "new-owner", d.UserID)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_ShortToken_Rejected(t *testing.T) {
	svc := NewService(&mockDeviceStore{})
	_, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{
		UserID:   "u1",
		Platform: domain.PlatformAndroid,
		Token:    "short",
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestRegister_UnknownPlatform_Rejected(t *testing.T) {
	svc := NewService(&mockDeviceStore{})
	_, err := svc.Register(context.Background(), domain.RegisterDeviceRequest{
		UserID:   "u1",
		Platform: "windows",
		Token:    validToken,
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestDevicesFor_EmptyUsers_ScansAll(t *testing.T) {
	repo := &mockDeviceStore{}
	repo.On("ListAll", mock.Anything, domain.PlatformIOS).Return([]domain.Device{{DeviceID: "d1"}}, nil)

	svc := NewService(repo)
	devices, err := svc.DevicesFor(context.Background(), nil, domain.PlatformIOS)

	require.NoError(t, err)
	assert.Len(t, devices, 1)
	repo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestDevicesFor_FiltersPlatformPerUser(t *testing.T) {
	repo := &mockDeviceStore{}
	repo.On("ListByUser", mock.Anything, "u1").Return([]domain.Device{
		{DeviceID: "d1", Platform: domain.PlatformIOS},
		{DeviceID: "d2", Platform: domain.PlatformAndroid},
	}, nil)

	svc := NewService(repo)
	devices, err := svc.DevicesFor(context.Background(), []string{"u1"}, domain.PlatformAndroid)

	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "d2", devices[0].DeviceID)
}

func TestRetire_DeletesDevice(t *testing.T) {
	repo := &mockDeviceStore{}
	repo.On("Delete", mock.Anything, "d1").Return(nil)

	svc := NewService(repo)
	require.NoError(t, svc.Retire(context.Background(), "d1"))
	repo.AssertExpectations(t)
}
