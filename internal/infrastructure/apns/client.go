package apns

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bombers-push/internal/config"
	"github.com/bombers-push/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/net/http2"
)

const (
	hostProduction = "https://api.push.apple.com"
	hostSandbox    = "https://api.sandbox.push.apple.com"

	// Apple accepts provider tokens between 20 and 60 minutes old; re-sign
	// well before the upper bound instead of per device.
	tokenLifetime = 50 * time.Minute
)

// Reasons in the invalid-token family. These will never succeed again, so the
// device gets retired.
var permanentReasons = map[string]bool{
	"BadDeviceToken":         true,
	"Unregistered":           true,
	"DeviceTokenNotForTopic": true,
}

// Client sends alert pushes over the APNs HTTP/2 API, authenticated with an
// ES256-signed provider token.
type Client struct {
	http   *http.Client
	host   string
	topic  string
	teamID string
	keyID  string
	key    *ecdsa.PrivateKey

	mu           sync.Mutex
	bearer       string
	bearerIssued time.Time
}

func NewClient(cfg *config.Config) (*Client, error) {
	keyBytes, err := os.ReadFile(cfg.APNS.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("read apns key: %w", err)
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse apns key: %w", err)
	}

	host := hostProduction
	if cfg.APNS.Sandbox {
		host = hostSandbox
	}

	return &Client{
		http: &http.Client{
			Transport: &http2.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		host:   host,
		topic:  cfg.APNS.Topic,
		teamID: cfg.APNS.TeamID,
		keyID:  cfg.APNS.KeyID,
		key:    key,
	}, nil
}

// providerToken returns the cached provider token, re-signing when it nears
// the end of its validity window.
func (c *Client) providerToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bearer != "" && time.Since(c.bearerIssued) < tokenLifetime {
		return c.bearer, nil
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": c.teamID,
		"iat": now.Unix(),
	})
	token.Header["kid"] = c.keyID
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign provider token: %w", err)
	}
	c.bearer = signed
	c.bearerIssued = now
	return signed, nil
}

type apsAlert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type aps struct {
	Alert apsAlert `json:"alert"`
	Sound string   `json:"sound"`
}

// Send pushes one alert to one device token and classifies the response.
func (c *Client) Send(ctx context.Context, device domain.Device, msg domain.PushMessage) domain.DeliveryOutcome {
	bearer, err := c.providerToken()
	if err != nil {
		return domain.DeliveryOutcome{Reason: err.Error()}
	}

	payload := map[string]interface{}{
		"aps": aps{
			Alert: apsAlert{Title: msg.Title, Body: msg.Body},
			Sound: "default",
		},
	}
	for k, v := range msg.Data {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.DeliveryOutcome{Reason: fmt.Sprintf("marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/3/device/"+device.Token, bytes.NewReader(body))
	if err != nil {
		return domain.DeliveryOutcome{Reason: err.Error()}
	}
	req.Header.Set("authorization", "bearer "+bearer)
	req.Header.Set("apns-topic", c.topic)
	req.Header.Set("apns-push-type", "alert")
	req.Header.Set("apns-priority", "10")
	req.Header.Set("content-type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.DeliveryOutcome{Reason: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apnsResp struct {
		Reason string `json:"reason"`
	}
	if len(respBody) > 0 {
		_ = json.Unmarshal(respBody, &apnsResp)
	}
	if apnsResp.Reason != "" {
		return domain.DeliveryOutcome{
			Reason:    apnsResp.Reason,
			Permanent: permanentReasons[apnsResp.Reason],
		}
	}
	if resp.StatusCode != http.StatusOK {
		return domain.DeliveryOutcome{Reason: fmt.Sprintf("apns status %d", resp.StatusCode)}
	}
	return domain.DeliveryOutcome{Delivered: true}
}
