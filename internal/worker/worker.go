package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	queueSize   = 64
	maxAttempts = 3
	retryDelay  = 10 * time.Second
)

// StockRestorer returns reserved stock of order back to inventory
type StockRestorer interface {
	RestoreStock(ctx context.Context, orderID uint64) error
}

type restockJob struct {
	orderID  uint64
	attempts int
}

// RestockProcessor calls the inventory service and retries failed calls in
// the background. A failed restoration never affects committed payment state.
type RestockProcessor struct {
	client StockRestorer
	queue  chan restockJob
	logger *zap.Logger
}

// NewRestockProcessor creates new restock processor
func NewRestockProcessor(client StockRestorer, logger *zap.Logger) *RestockProcessor {
	return &RestockProcessor{
		client: client,
		queue:  make(chan restockJob, queueSize),
		logger: logger,
	}
}

// RestoreStock tries the inventory service once and queues the order for
// background retry when the call fails
func (rp *RestockProcessor) RestoreStock(ctx context.Context, orderID uint64) error {
	err := rp.client.RestoreStock(ctx, orderID)
	if err == nil {
		return nil
	}

	rp.enqueue(restockJob{orderID: orderID, attempts: 1}, err)
	return nil
}

func (rp *RestockProcessor) enqueue(job restockJob, cause error) {
	select {
	case rp.queue <- job:
		rp.logger.Warn("restock queued for retry",
			zap.Uint64("order_id", job.orderID),
			zap.Int("attempts", job.attempts),
			zap.Error(cause))
	default:
		rp.logger.Error("restock queue is full, dropping order",
			zap.Uint64("order_id", job.orderID),
			zap.Error(cause))
	}
}

// Run retries queued restorations until ctx is done
func (rp *RestockProcessor) Run(ctx context.Context) {
	ticker := time.NewTicker(retryDelay)
	defer ticker.Stop()

	var pending []restockJob

	for {
		select {
		case <-ctx.Done():
			rp.logger.Debug("restock processor is done")
			return
		case job := <-rp.queue:
			pending = append(pending, job)
		case <-ticker.C:
			retry := pending
			pending = nil
			for _, job := range retry {
				if err := rp.client.RestoreStock(ctx, job.orderID); err != nil {
					job.attempts++
					if job.attempts >= maxAttempts {
						rp.logger.Error("restock failed, giving up",
							zap.Uint64("order_id", job.orderID),
							zap.Int("attempts", job.attempts),
							zap.Error(err))
						continue
					}
					pending = append(pending, job)
					continue
				}
				rp.logger.Info("restock retry succeeded", zap.Uint64("order_id", job.orderID))
			}
		}
	}
}
