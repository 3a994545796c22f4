package domain

import "time"

// Notification lifecycle states. Transitions are monotonic:
// draft -> queued -> sent, never backward.
const (
	StatusDraft  = "draft"
	StatusQueued = "queued"
	StatusSent   = "sent"
)

// Platform targets for a notification.
const (
	TargetBoth    = "both"
	TargetIOS     = "ios"
	TargetAndroid = "android"
)

// Audience declares who receives a notification. Either All is set, or at
// least one of the other facets is non-empty; resolution is the union of
// independently matched users.
type Audience struct {
	All     bool     `json:"all,omitempty" dynamodbav:"all"`
	Roles   []string `json:"roles,omitempty" dynamodbav:"roles,omitempty"`
	Regions []string `json:"regions,omitempty" dynamodbav:"regions,omitempty"`
	TeamIDs []string `json:"teamIds,omitempty" dynamodbav:"team_ids,omitempty"`
	UserIDs []string `json:"userIds,omitempty" dynamodbav:"user_ids,omitempty"`
}

// Empty reports whether the audience targets nobody.
func (a Audience) Empty() bool {
	return !a.All &&
		len(a.Roles) == 0 &&
		len(a.Regions) == 0 &&
		len(a.TeamIDs) == 0 &&
		len(a.UserIDs) == 0
}

// Notification is the aggregate root of a send pass.
type Notification struct {
	NotificationID string            `json:"id" dynamodbav:"notification_id"`
	Title          string            `json:"title" dynamodbav:"title"`
	Body           string            `json:"body" dynamodbav:"body"`
	ImageURL       *string           `json:"image_url,omitempty" dynamodbav:"image_url,omitempty"`
	DeepLink       *string           `json:"deep_link,omitempty" dynamodbav:"deep_link,omitempty"`
	Audience       Audience          `json:"audience" dynamodbav:"audience"`
	Platform       string            `json:"platform" dynamodbav:"platform"`
	Status         string            `json:"status" dynamodbav:"status"`
	ScheduledAt    *time.Time        `json:"scheduled_at,omitempty" dynamodbav:"scheduled_at,omitempty"`
	SentAt         *time.Time        `json:"sent_at,omitempty" dynamodbav:"sent_at,omitempty"`
	Data           map[string]string `json:"data,omitempty" dynamodbav:"data,omitempty"`
	CreatedAt      time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time         `json:"updated" dynamodbav:"updated_at"`
}

// CreateNotificationRequest authors a notification. ScheduledAt is RFC 3339;
// its presence forces the initial status to queued instead of draft.
type CreateNotificationRequest struct {
	Title       string            `json:"title" validate:"required,max=120"`
	Body        string            `json:"body" validate:"required,max=1024"`
	ImageURL    *string           `json:"imageUrl" validate:"omitempty,url"`
	DeepLink    *string           `json:"deepLink"`
	Platform    string            `json:"platform" validate:"omitempty,oneof=both ios android"`
	Audience    Audience          `json:"audience"`
	ScheduledAt *string           `json:"scheduledAt"`
	Data        map[string]string `json:"data"`
}
