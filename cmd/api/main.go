package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bombers-push/internal/application/dispatch"
	"github.com/bombers-push/internal/config"
	"github.com/bombers-push/internal/domain"
	"github.com/bombers-push/internal/infrastructure/apns"
	"github.com/bombers-push/internal/infrastructure/dynamo"
	"github.com/bombers-push/internal/infrastructure/fcm"
	jwtinfra "github.com/bombers-push/internal/infrastructure/jwt"
	s3infra "github.com/bombers-push/internal/infrastructure/s3"
	transporthttp "github.com/bombers-push/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 image store.
	s3Client := s3infra.NewClient(cfg)
	imageStore := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// Provider adapters. A missing adapter is tolerated at startup; sends
	// targeting its platform fail with a configuration error.
	senders := map[string]dispatch.Sender{}
	if cfg.PushEnabled {
		if apnsClient, err := apns.NewClient(cfg); err == nil {
			senders[domain.PlatformIOS] = apnsClient
		} else {
			log.Printf("WARN: APNs adapter not available: %v", err)
		}
		if fcmClient, err := fcm.NewClient(cfg); err == nil {
			senders[domain.PlatformAndroid] = fcmClient
		} else {
			log.Printf("WARN: FCM adapter not available: %v", err)
		}
	}

	deps := &transporthttp.Deps{
		UserRepo:             dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		TeamRepo:             dynamo.NewTeamRepo(dynamoClient, cfg.DynamoTables.Teams),
		DeviceRepo:           dynamo.NewDeviceRepo(dynamoClient, cfg.DynamoTables.Devices),
		NotificationRepo:     dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		ReceiptRepo:          dynamo.NewReceiptRepo(dynamoClient, cfg.DynamoTables.PushReceipts),
		UserNotificationRepo: dynamo.NewUserNotificationRepo(dynamoClient, cfg.DynamoTables.UserNotifications),
		ImageStore:           imageStore,
		JWTProvider:          jwtProvider,
		Senders:              senders,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
