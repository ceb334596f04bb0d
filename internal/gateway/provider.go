// Package gateway holds the outbound payment-provider adapter. The real
// provider integration is out of scope; SimulatedProvider stands in for it
// behind the same contract.
package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"fulfillment-service/internal/domain"
	"fulfillment-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SimulatedProvider approves charges with a configurable success rate and
// simulates provider latency.
type SimulatedProvider struct {
	successRate float64
	maxLatency  time.Duration
	logger      *zap.Logger
}

// NewSimulatedProvider creates a provider with the given approval rate
// (0.0 - 1.0).
func NewSimulatedProvider(successRate float64) *SimulatedProvider {
	return &SimulatedProvider{
		successRate: successRate,
		maxLatency:  400 * time.Millisecond,
		logger:      util.GetLogger(),
	}
}

// Charge attempts the charge. Declines return an error matching
// domain.ErrPaymentRejected.
func (sp *SimulatedProvider) Charge(ctx context.Context, payment *domain.Payment) (string, error) {
	ctx, span := util.StartSpan(ctx, "SimulatedProvider.Charge")
	defer span.End()

	delay := time.Duration(rand.Int63n(int64(sp.maxLatency)))
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if rand.Float64() >= sp.successRate {
		sp.logger.Warn("Provider declined charge",
			zap.String("order_id", payment.OrderID),
			zap.Int64("amount", payment.Amount))
		return "", fmt.Errorf("%w: declined by provider", domain.ErrPaymentRejected)
	}

	txID := fmt.Sprintf("TXN-%s", uuid.New().String()[:8])
	sp.logger.Info("Provider accepted charge",
		zap.String("order_id", payment.OrderID),
		zap.String("tx_id", txID))
	return txID, nil
}
