package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	PushEnabled      bool
	DispatchWorkers  int
	PushTimeout      time.Duration
	APNS             APNSConfig
	FCM              FCMConfig

	AllowedOrigins []string // CORS allowed origins
}

// APNSConfig identifies the Apple developer account and signing key used for
// provider-token auth against APNs.
type APNSConfig struct {
	TeamID  string
	KeyID   string
	KeyPath string // .p8 ES256 private key
	Topic   string // app bundle id
	Sandbox bool
}

// FCMConfig identifies the Firebase project and service account used for the
// OAuth2 JWT-bearer flow against the FCM HTTP v1 API.
type FCMConfig struct {
	ProjectID   string
	ClientEmail string
	KeyPath     string // service-account RSA private key (PEM)
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users             string
	Teams             string
	Devices           string
	Notifications     string
	PushReceipts      string
	UserNotifications string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:             getEnv("DYNAMO_TABLE_USERS", "users"),
			Teams:             getEnv("DYNAMO_TABLE_TEAMS", "teams"),
			Devices:           getEnv("DYNAMO_TABLE_DEVICES", "devices"),
			Notifications:     getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			PushReceipts:      getEnv("DYNAMO_TABLE_PUSH_RECEIPTS", "push_receipts"),
			UserNotifications: getEnv("DYNAMO_TABLE_USER_NOTIFICATIONS", "user_notifications"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "bombers-media"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,

		PushEnabled:     getEnvBool("PUSH_ENABLED", true),
		DispatchWorkers: getEnvInt("DISPATCH_WORKERS", 8),
		PushTimeout:     time.Duration(getEnvInt("PUSH_TIMEOUT_SECONDS", 10)) * time.Second,
		APNS: APNSConfig{
			TeamID:  getEnv("APNS_TEAM_ID", ""),
			KeyID:   getEnv("APNS_KEY_ID", ""),
			KeyPath: getEnv("APNS_KEY_PATH", ""),
			Topic:   getEnv("APNS_TOPIC", "com.bombers.app"),
			Sandbox: getEnvBool("APNS_SANDBOX", false),
		},
		FCM: FCMConfig{
			ProjectID:   getEnv("FCM_PROJECT_ID", ""),
			ClientEmail: getEnv("FCM_CLIENT_EMAIL", ""),
			KeyPath:     getEnv("FCM_KEY_PATH", ""),
		},

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
