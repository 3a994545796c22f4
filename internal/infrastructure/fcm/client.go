package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/bombers-push/internal/config"
	"github.com/bombers-push/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

const messagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// Markers FCM uses for tokens that are gone for good. Matched
// case-insensitively so v1 error codes like UNREGISTERED also hit.
var permanentMarkers = []string{
	"not-registered",
	"unregistered",
	"invalid-registration",
}

// Client sends pushes through the FCM HTTP v1 API, authenticated with a
// service-account OAuth2 bearer token. The token source caches the token and
// refreshes it on expiry; no per-call reacquisition.
type Client struct {
	http     *http.Client
	endpoint string
	tokens   oauth2.TokenSource
}

func NewClient(cfg *config.Config) (*Client, error) {
	keyBytes, err := os.ReadFile(cfg.FCM.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("read fcm key: %w", err)
	}
	jwtCfg := &jwt.Config{
		Email:      cfg.FCM.ClientEmail,
		PrivateKey: keyBytes,
		Scopes:     []string{messagingScope},
		TokenURL:   google.JWTTokenURL,
	}
	return &Client{
		http:     &http.Client{},
		endpoint: fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", cfg.FCM.ProjectID),
		tokens:   jwtCfg.TokenSource(context.Background()),
	}, nil
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type androidNotification struct {
	Image     string `json:"image,omitempty"`
	ChannelID string `json:"channel_id"`
}

type androidConfig struct {
	Priority     string              `json:"priority"`
	Notification androidNotification `json:"notification"`
}

type message struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Android      androidConfig     `json:"android"`
	Data         map[string]string `json:"data,omitempty"`
}

// Send pushes one message to one registration token and classifies the response.
func (c *Client) Send(ctx context.Context, device domain.Device, msg domain.PushMessage) domain.DeliveryOutcome {
	tok, err := c.tokens.Token()
	if err != nil {
		return domain.DeliveryOutcome{Reason: fmt.Sprintf("fcm access token: %v", err)}
	}

	body, err := json.Marshal(map[string]message{
		"message": {
			Token:        device.Token,
			Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
			Android: androidConfig{
				Priority: "HIGH",
				Notification: androidNotification{
					Image:     msg.ImageURL,
					ChannelID: "default",
				},
			},
			Data: msg.Data,
		},
	})
	if err != nil {
		return domain.DeliveryOutcome{Reason: fmt.Sprintf("marshal message: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.DeliveryOutcome{Reason: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.DeliveryOutcome{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return domain.DeliveryOutcome{Delivered: true}
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	reason := strings.TrimSpace(string(respBody))
	if reason == "" {
		reason = fmt.Sprintf("fcm status %d", resp.StatusCode)
	}
	return domain.DeliveryOutcome{
		Reason:    reason,
		Permanent: isPermanent(reason),
	}
}

func isPermanent(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range permanentMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
