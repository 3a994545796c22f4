package domain

// PushMessage is the canonical outbound payload handed to a provider adapter.
type PushMessage struct {
	Title    string
	Body     string
	ImageURL string
	Data     map[string]string
}

// DeliveryOutcome is the result of one provider call for one device.
// Permanent means the provider reported the token as gone for good and the
// device should be retired.
type DeliveryOutcome struct {
	Delivered bool
	Reason    string
	Permanent bool
}
