package domain

import "time"

// Supported device platforms.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// Device is one push-routable endpoint. The provider token is the identity
// key: re-registering the same token reassigns the device to the new owner.
type Device struct {
	DeviceID   string    `json:"id" dynamodbav:"device_id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	Platform   string    `json:"platform" dynamodbav:"platform"`
	Token      string    `json:"token" dynamodbav:"token"`
	AppVersion string    `json:"app_version,omitempty" dynamodbav:"app_version"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

// RegisterDeviceRequest upserts a device keyed by token. Real provider tokens
// are long opaque strings; the length floor rejects obviously truncated values.
type RegisterDeviceRequest struct {
	UserID     string `json:"userId" validate:"required"`
	Platform   string `json:"platform" validate:"required,oneof=ios android"`
	Token      string `json:"token" validate:"required,min=10"`
	AppVersion string `json:"appVersion"`
}
