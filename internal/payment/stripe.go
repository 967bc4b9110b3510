package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"ms-reservations/internal/logger"
)

var (
	ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")
)

// StripeConfirmer confirms purchase amounts through Stripe PaymentIntents.
type StripeConfirmer struct {
	client *client.API
	log    *logger.Logger
}

func NewStripeConfirmer(secretKey string, log *logger.Logger) (*StripeConfirmer, error) {
	if secretKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY not set")
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(secretKey, nil)
	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeConfirmer{client: sc, log: log}, nil
}

func (s *StripeConfirmer) Confirm(ctx context.Context, amount int64, currency, reference string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		Confirm:  stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.AddMetadata("purchase_id", reference)
	params.Context = ctx

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Payment confirmation failed for %s: %v", reference, err))
		return "", fmt.Errorf("stripe confirmation failed: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		s.log.Warn("STRIPE", fmt.Sprintf("Payment intent %s in status %s", pi.ID, pi.Status))
		return "", fmt.Errorf("payment intent %s not confirmed (status %s)", pi.ID, pi.Status)
	}

	s.log.Info("STRIPE", fmt.Sprintf("Confirmed %d %s for %s → %s", amount, currency, reference, pi.ID))
	return pi.ID, nil
}

// Void cancels a confirmed intent whose reservation could not be committed.
func (s *StripeConfirmer) Void(ctx context.Context, paymentRef string) error {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonAbandoned)),
	}
	params.Context = ctx

	if _, err := s.client.PaymentIntents.Cancel(paymentRef, params); err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to cancel payment intent %s: %v", paymentRef, err))
		return fmt.Errorf("failed to cancel payment intent: %w", err)
	}
	s.log.Info("STRIPE", fmt.Sprintf("Cancelled payment intent %s", paymentRef))
	return nil
}
