package verification

import (
	"context"
	"time"

	"github.com/phrazzld/cardhub-api/internal/domain"
)

// Notification is a one-time code addressed to a principal.
type Notification struct {
	To        string
	Username  string
	Purpose   domain.Purpose
	Code      string
	ExpiresAt time.Time
}

// Notifier delivers codes out of band. Implementations choose the message
// template from the purpose.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// Metrics receives the outcome of every coordinator operation.
type Metrics interface {
	ObserveCodeRequest(purpose domain.Purpose, outcome string)
	ObserveCodeRedeem(purpose domain.Purpose, outcome string)
}

// Outcome labels reported to Metrics.
const (
	OutcomeIssued        = "issued"
	OutcomeRedeemed      = "redeemed"
	OutcomeNotFound      = "principal_not_found"
	OutcomeAlreadyIssued = "already_issued"
	OutcomeInvalid       = "invalid_or_expired"
	OutcomeDeliveryError = "delivery_error"
	OutcomeError         = "error"
)

type nopMetrics struct{}

func (nopMetrics) ObserveCodeRequest(domain.Purpose, string) {}
func (nopMetrics) ObserveCodeRedeem(domain.Purpose, string)  {}
