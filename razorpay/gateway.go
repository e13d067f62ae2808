// Package razorpay creates payment orders through the Razorpay Orders API
// and verifies checkout callback signatures.
package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/Rhymond/go-money"
	razorpay "github.com/razorpay/razorpay-go"

	"github.com/soumya-corp/sammelan-registration/registration"
)

var _ registration.Checkout = &Gateway{}

type Gateway struct {
	api       *razorpay.Client
	keyID     string
	keySecret string
}

func NewGateway(keyID string, keySecret string) *Gateway {
	return &Gateway{
		api:       razorpay.NewClient(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
	}
}

// CreateOrder registers an order for amount with the gateway and returns the
// gateway's order ID. The checkout widget needs that ID before it can take a
// card; receipt ties the order back to the registration for reconciliation.
func (g *Gateway) CreateOrder(ctx context.Context, amount *money.Money, receipt string) (string, error) {
	order, err := g.api.Order.Create(map[string]interface{}{
		"amount":   amount.Amount(),
		"currency": amount.Currency().Code,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return "", registration.NewCheckoutFailedError("Failed to create razorpay order", err)
	}

	orderID, ok := order["id"].(string)
	if !ok {
		return "", registration.NewCheckoutFailedError("Razorpay order response is missing an id", nil)
	}

	return orderID, nil
}

// VerifySignature checks the signature Razorpay sends with a successful
// checkout: the hex HMAC-SHA256 of "<orderID>|<paymentID>" under the key
// secret.
func (g *Gateway) VerifySignature(orderID string, paymentID string, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *Gateway) KeyID() string {
	return g.keyID
}
