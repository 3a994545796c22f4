package fcm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bombers-push/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{
		http:     srv.Client(),
		endpoint: srv.URL,
		tokens:   oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-access-token"}),
	}
}

func TestSend_Delivered(t *testing.T) {
	var gotAuth string
	var gotBody map[string]message

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"name":"projects/bombers/messages/123"}`))
	}))
	defer srv.Close()

	out := testClient(srv).Send(context.Background(), domain.Device{Token: "reg-token-1"}, domain.PushMessage{
		Title:    "Game day",
		Body:     "Kickoff at noon",
		ImageURL: "https://bombers-media.s3.amazonaws.com/notifications/abc.png",
		Data:     map[string]string{"gameId": "42"},
	})

	assert.True(t, out.Delivered)
	assert.Equal(t, "Bearer test-access-token", gotAuth)

	msg, ok := gotBody["message"]
	require.True(t, ok)
	assert.Equal(t, "reg-token-1", msg.Token)
	assert.Equal(t, "Game day", msg.Notification.Title)
	assert.Equal(t, "HIGH", msg.Android.Priority)
	assert.Equal(t, "default", msg.Android.Notification.ChannelID)
	assert.Equal(t, "https://bombers-media.s3.amazonaws.com/notifications/abc.png", msg.Android.Notification.Image)
	assert.Equal(t, "42", msg.Data["gameId"])
}

func TestSend_Unregistered_Permanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"status":"NOT_FOUND","details":[{"errorCode":"UNREGISTERED"}]}}`))
	}))
	defer srv.Close()

	out := testClient(srv).Send(context.Background(), domain.Device{Token: "gone"}, domain.PushMessage{})

	assert.False(t, out.Delivered)
	assert.True(t, out.Permanent)
	assert.Contains(t, out.Reason, "UNREGISTERED")
}

func TestSend_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"status":"INTERNAL"}}`))
	}))
	defer srv.Close()

	out := testClient(srv).Send(context.Background(), domain.Device{Token: "tok"}, domain.PushMessage{})

	assert.False(t, out.Delivered)
	assert.False(t, out.Permanent)
}

func TestIsPermanent_CaseInsensitive(t *testing.T) {
	assert.True(t, isPermanent("requested entity was not found: UNREGISTERED"))
	assert.True(t, isPermanent("messaging/registration-token-not-registered"))
	assert.True(t, isPermanent("messaging/invalid-registration-token"))
	assert.False(t, isPermanent("quota exceeded"))
}
