package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ms-reservations/internal/logger"
)

// Confirmer is the payment confirmation collaborator: confirm an amount,
// get back a reference, or an error when the gateway declines. Void releases
// a confirmation whose reservation could not be committed.
type Confirmer interface {
	Confirm(ctx context.Context, amount int64, currency, reference string) (string, error)
	Void(ctx context.Context, paymentRef string) error
}

// MockConfirmer approves everything unless DeclineAll is set. Used in
// development and tests, selected with PAYMENT_MOCK_MODE.
type MockConfirmer struct {
	Logger     *logger.Logger
	DeclineAll bool
}

func (m *MockConfirmer) Confirm(ctx context.Context, amount int64, currency, reference string) (string, error) {
	if m.DeclineAll {
		return "", fmt.Errorf("mock gateway configured to decline")
	}
	ref := "mockpay_" + uuid.NewString()
	if m.Logger != nil {
		m.Logger.Info("PAYMENT", fmt.Sprintf("Mock confirmation of %d %s for %s → %s", amount, currency, reference, ref))
	}
	return ref, nil
}

func (m *MockConfirmer) Void(ctx context.Context, paymentRef string) error {
	if m.Logger != nil {
		m.Logger.Info("PAYMENT", fmt.Sprintf("Mock void of %s", paymentRef))
	}
	return nil
}
