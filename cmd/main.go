package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/soumya-corp/sammelan-registration/api"
	"github.com/soumya-corp/sammelan-registration/dynamo"
	"github.com/soumya-corp/sammelan-registration/razorpay"
	"github.com/soumya-corp/sammelan-registration/registration"
	"github.com/soumya-corp/sammelan-registration/s3blob"
	"github.com/soumya-corp/sammelan-registration/sequence"
)

func main() {
	ctx := context.Background()

	settings := getServerSettingsFromEnv()

	logger := newLogger(settings.Env)

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load aws config", "error", err)
		os.Exit(1)
	}

	dynamoClient := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if settings.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(settings.DynamoEndpoint)
		}
	})
	db := dynamo.NewDB(dynamoClient, settings.TableName)

	blobs := createBlobStore(cfg, logger, settings)
	checkout := createCheckout(logger, settings)

	allocator := sequence.NewAllocator(db, logger)

	wizard := registration.NewWizard(db, db, blobs, checkout, allocator, logger)
	if settings.RegistrationCloseTime != "" {
		closeTime, err := time.Parse(time.RFC3339, settings.RegistrationCloseTime)
		if err != nil {
			logger.Error("invalid REGISTRATION_CLOSE_TIME", "error", err)
			os.Exit(1)
		}
		wizard.SetCloseTime(closeTime)
	}

	registrationAPI := api.NewAPI(wizard, db, logger, settings.Env, settings.AllowedOrigin)

	s := &http.Server{
		Handler: registrationAPI.Handler(),
		Addr:    net.JoinHostPort(settings.Host, settings.Port),
	}

	logger.Info("starting server", "addr", s.Addr, "env", string(settings.Env))
	log.Fatal(s.ListenAndServe())
}

func newLogger(env api.Environment) *slog.Logger {
	if env == api.PROD {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func createBlobStore(cfg aws.Config, logger *slog.Logger, settings ServerSettings) registration.BlobStore {
	if settings.Env == api.LOCAL && settings.PhotosBucket == "" {
		return &BlobLogger{logger: logger}
	}

	s3Client := s3.NewFromConfig(cfg)
	return s3blob.NewUploader(s3Client, settings.PhotosBucket, settings.PhotosBaseURL)
}

func createCheckout(logger *slog.Logger, settings ServerSettings) registration.Checkout {
	if settings.Env == api.LOCAL && settings.RazorpayKeyID == "" {
		return &CheckoutLogger{logger: logger}
	}

	return razorpay.NewGateway(settings.RazorpayKeyID, settings.RazorpayKeySecret)
}

type ServerSettings struct {
	Host string
	Port string
	Env  api.Environment

	TableName      string
	DynamoEndpoint string

	PhotosBucket  string
	PhotosBaseURL string

	RazorpayKeyID     string
	RazorpayKeySecret string

	RegistrationCloseTime string
	AllowedOrigin         string
}

func getServerSettingsFromEnv() ServerSettings {
	return ServerSettings{
		Host:                  getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                  getEnvOrDefault("PORT", "8080"),
		Env:                   api.Environment(getEnvOrDefault("ENV", string(api.LOCAL))),
		TableName:             getEnvOrDefault("TABLE_NAME", "SammelanRegistration"),
		DynamoEndpoint:        getEnvOrDefault("DYNAMO_ENDPOINT", ""),
		PhotosBucket:          getEnvOrDefault("PHOTOS_BUCKET", ""),
		PhotosBaseURL:         getEnvOrDefault("PHOTOS_BASE_URL", ""),
		RazorpayKeyID:         getEnvOrDefault("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:     getEnvOrDefault("RAZORPAY_KEY_SECRET", ""),
		RegistrationCloseTime: getEnvOrDefault("REGISTRATION_CLOSE_TIME", ""),
		AllowedOrigin:         getEnvOrDefault("ALLOWED_ORIGIN", "https://sammelan.soumya.org"),
	}
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return defaultVal
}
