package device

import (
	"context"
	"errors"
	"time"

	"github.com/bombers-push/internal/domain"
	"github.com/bombers-push/internal/pkg/id"
	"github.com/bombers-push/internal/pkg/validate"
)

// Service is the device registry: one push-routable endpoint per physical
// install, keyed by provider token.
type Service interface {
	// Register upserts a device keyed by token. Re-registering an existing
	// token reassigns ownership to the request's user (last writer wins).
	Register(ctx context.Context, req domain.RegisterDeviceRequest) (*domain.Device, error)
	// DevicesFor returns devices owned by the given users, or every device
	// when userIDs is empty, optionally filtered to one platform.
	DevicesFor(ctx context.Context, userIDs []string, platform string) ([]domain.Device, error)
	// Retire hard-deletes a device whose token a provider reported as
	// permanently invalid.
	Retire(ctx context.Context, deviceID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Device, error)
}

type deviceStore interface {
	Put(ctx context.Context, d *domain.Device) error
	GetByToken(ctx context.Context, token string) (*domain.Device, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Device, error)
	ListAll(ctx context.Context, platform string) ([]domain.Device, error)
	Update(ctx context.Context, deviceID string, updates map[string]interface{}) error
	Delete(ctx context.Context, deviceID string) error
}

type service struct {
	repo deviceStore
}

func NewService(repo deviceStore) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, req domain.RegisterDeviceRequest) (*domain.Device, error) {
	if msgs := validate.Struct(req); msgs != nil {
		return nil, &domain.ValidationError{Fields: msgs}
	}

	now := time.Now().UTC()
	existing, err := s.repo.GetByToken(ctx, req.Token)
	switch {
	case err == nil:
		// Partial update: the row keeps its device_id and created_at, only
		// the ownership attributes move.
		updates := map[string]interface{}{
			"user_id":     req.UserID,
			"platform":    req.Platform,
			"app_version": req.AppVersion,
		}
		if err := s.repo.Update(ctx, existing.DeviceID, updates); err != nil {
			return nil, err
		}
		existing.UserID = req.UserID
		existing.Platform = req.Platform
		existing.AppVersion = req.AppVersion
		existing.UpdatedAt = now
		return existing, nil
	case errors.Is(err, domain.ErrNotFound):
		d := &domain.Device{
			DeviceID:   id.New(),
			UserID:     req.UserID,
			Platform:   req.Platform,
			Token:      req.Token,
			AppVersion: req.AppVersion,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.Put(ctx, d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, err
	}
}

func (s *service) DevicesFor(ctx context.Context, userIDs []string, platform string) ([]domain.Device, error) {
	if len(userIDs) == 0 {
		return s.repo.ListAll(ctx, platform)
	}
	var devices []domain.Device
	for _, userID := range userIDs {
		owned, err := s.repo.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, d := range owned {
			if platform == "" || d.Platform == platform {
				devices = append(devices, d)
			}
		}
	}
	return devices, nil
}

func (s *service) Retire(ctx context.Context, deviceID string) error {
	return s.repo.Delete(ctx, deviceID)
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Device, error) {
	return s.repo.ListByUser(ctx, userID)
}
