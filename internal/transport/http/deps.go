package http

import (
	"github.com/bombers-push/internal/application/dispatch"
	"github.com/bombers-push/internal/infrastructure/dynamo"
	jwtinfra "github.com/bombers-push/internal/infrastructure/jwt"
	s3infra "github.com/bombers-push/internal/infrastructure/s3"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo             *dynamo.UserRepo
	TeamRepo             *dynamo.TeamRepo
	DeviceRepo           *dynamo.DeviceRepo
	NotificationRepo     *dynamo.NotificationRepo
	ReceiptRepo          *dynamo.ReceiptRepo
	UserNotificationRepo *dynamo.UserNotificationRepo
	ImageStore           *s3infra.Store
	JWTProvider          *jwtinfra.Provider

	// Senders maps a device platform (domain.PlatformIOS / PlatformAndroid)
	// to its configured provider adapter. A nil or missing entry means the
	// provider is not configured and sends touching it are rejected.
	Senders map[string]dispatch.Sender
}
