package domain

import "time"

// PushReceipt is the durable outcome of one delivery attempt, keyed by
// (notification, device). Repeated attempts upsert the same row; a later
// failure annotates the attempt but never erases an earlier delivered_at.
type PushReceipt struct {
	NotificationID string     `json:"notification_id" dynamodbav:"notification_id"`
	DeviceID       string     `json:"device_id" dynamodbav:"device_id"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty" dynamodbav:"delivered_at,omitempty"`
	FailureReason  *string    `json:"failure_reason,omitempty" dynamodbav:"failure_reason,omitempty"`
	UpdatedAt      time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// UserNotification is the per-user read-state join, created once per targeted
// user during a send pass.
type UserNotification struct {
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	NotificationID string    `json:"notification_id" dynamodbav:"notification_id"`
	IsRead         bool      `json:"is_read" dynamodbav:"is_read"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}
