package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Rhymond/go-money"

	"github.com/soumya-corp/sammelan-registration/registration"
)

var _ registration.BlobStore = &BlobLogger{}

// registration.BlobStore that logs the upload instead of writing anywhere,
// for local dev without a bucket
type BlobLogger struct {
	logger *slog.Logger
}

func (bl *BlobLogger) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return "", registration.NewUploadFailedError("Failed to read photo", err)
	}

	bl.logger.Info("photo that would be uploaded",
		slog.String("key", key),
		slog.String("contentType", contentType),
		slog.Int64("size", n),
	)

	return "http://localhost/blobs/" + key, nil
}

var _ registration.Checkout = &CheckoutLogger{}

// registration.Checkout that fabricates order ids and accepts every
// signature, for local dev without gateway credentials
type CheckoutLogger struct {
	logger *slog.Logger
}

func (cl *CheckoutLogger) CreateOrder(ctx context.Context, amount *money.Money, receipt string) (string, error) {
	orderID := fmt.Sprintf("order_local_%d", time.Now().UnixMilli())

	cl.logger.Info("order that would be created",
		slog.String("orderId", orderID),
		slog.Int64("amount", amount.Amount()),
		slog.String("currency", amount.Currency().Code),
		slog.String("receipt", receipt),
	)

	return orderID, nil
}

func (cl *CheckoutLogger) VerifySignature(orderID string, paymentID string, signature string) bool {
	return true
}

func (cl *CheckoutLogger) KeyID() string {
	return "rzp_local_key"
}
