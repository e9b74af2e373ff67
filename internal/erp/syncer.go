// Package erp pushes invoices to the external ERP and keeps the erp_logs trail.
package erp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"procurement-backend/internal/logging"
	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const EntityInvoice = "invoice"

// Locker is the part of *redislock.Client the syncer needs.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

type Syncer struct {
	store     repository.Store
	publisher Publisher
	locker    Locker
	logger    *logrus.Logger
	tracer    trace.Tracer

	tracerName string
}

// NewSyncer builds a syncer. locker may be nil.
func NewSyncer(store repository.Store, publisher Publisher, locker Locker, logger *logrus.Logger) *Syncer {
	return &Syncer{
		store:     store,
		publisher: publisher,
		locker:    locker,
		logger:    logger,
		tracer:    otel.Tracer("procurement-backend/erp"),

		tracerName: "procurement-backend/erp",
	}
}

// WithServiceName names the syncer's spans after the running service.
func (s *Syncer) WithServiceName(service string) *Syncer {
	if service != "" {
		s.tracerName = service + "/erp"
		s.tracer = otel.Tracer(s.tracerName)
	}
	return s
}

type SyncResult struct {
	Log models.ErpLog
	// PublishErr is set when the ERP rejected the invoice.
	PublishErr error
	// LogErr is set when the success row could not be written and a failed row replaced it.
	LogErr error
}

func (r *SyncResult) Succeeded() bool {
	return r.Log.Status == models.ErpLogSuccess
}

// SyncInvoice publishes the invoice and appends exactly one erp_logs row for
// the attempt. An unknown invoice returns repository.ErrNotFound and writes nothing.
func (s *Syncer) SyncInvoice(ctx context.Context, invoiceID uint) (*SyncResult, error) {
	ctx, span := s.tracer.Start(ctx, "erp.SyncInvoice", trace.WithAttributes(attribute.Int64("invoice.id", int64(invoiceID))))
	defer span.End()

	inv, err := s.store.Invoices().FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return s.finish(ctx, span, invoiceID, fmt.Errorf("load invoice: %w", err))
	}

	lock := s.obtainLock(ctx, invoiceID)
	if lock != nil {
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.logger.WithField("invoice_id", invoiceID).Warn("failed to release erp sync lock: " + err.Error())
			}
		}()
	}

	msg := Message{
		CorrelationID: uuid.NewString(),
		EntityType:    EntityInvoice,
		EntityID:      inv.ID,
		Action:        models.ErpActionSyncToErp,
		Number:        inv.InvoiceNumber,
		SupplierID:    inv.SupplierID,
		Status:        string(inv.Status),
		TotalAmount:   inv.TotalAmount,
		PaidAmount:    inv.PaidAmount,
		OccurredAt:    time.Now().UTC(),
	}
	span.SetAttributes(attribute.String("erp.correlation_id", msg.CorrelationID))

	return s.finish(ctx, span, invoiceID, s.publisher.Publish(ctx, msg))
}

// finish writes the single log row of an attempt.
func (s *Syncer) finish(ctx context.Context, span trace.Span, invoiceID uint, attemptErr error) (*SyncResult, error) {
	// the trail is written even if the caller went away
	ctx = context.WithoutCancel(ctx)

	entry := models.ErpLog{
		EntityType: EntityInvoice,
		EntityID:   invoiceID,
		Action:     models.ErpActionSyncToErp,
		Status:     models.ErpLogSuccess,
	}
	if attemptErr != nil {
		span.RecordError(attemptErr)
		span.SetStatus(codes.Error, "erp sync failed")
		entry.Status = models.ErpLogFailed
		entry.ErrorMessage = errMessage(attemptErr)
	}

	res := &SyncResult{PublishErr: attemptErr}
	if err := s.store.ErpLogs().Create(ctx, &entry); err != nil {
		logging.LogError(s.logger, "erp", "SyncInvoice", "write erp log", invoiceID, err)
		fallback := models.ErpLog{
			EntityType:   EntityInvoice,
			EntityID:     invoiceID,
			Action:       models.ErpActionSyncToErp,
			Status:       models.ErpLogFailed,
			ErrorMessage: errMessage(err),
		}
		if ferr := s.store.ErpLogs().Create(ctx, &fallback); ferr != nil {
			logging.LogError(s.logger, "erp", "SyncInvoice", "write fallback erp log", invoiceID, ferr)
			return nil, fmt.Errorf("record erp sync: %w", ferr)
		}
		res.LogErr = err
		entry = fallback
	}
	res.Log = entry

	if attemptErr != nil {
		s.logger.WithFields(logrus.Fields{
			"invoice_id": invoiceID,
			"erp_log_id": entry.ID,
		}).Warn("erp sync failed: " + attemptErr.Error())
	}
	return res, nil
}

func (s *Syncer) obtainLock(ctx context.Context, invoiceID uint) *redislock.Lock {
	if s.locker == nil {
		return nil
	}
	lock, err := s.locker.Obtain(ctx, fmt.Sprintf("lock:erp:invoice:%d", invoiceID), 30*time.Second, nil)
	switch {
	case err == nil:
		return lock
	case errors.Is(err, redislock.ErrNotObtained):
		s.logger.WithField("invoice_id", invoiceID).Warn("could not obtain erp sync lock; proceeding without lock")
	default:
		s.logger.WithField("invoice_id", invoiceID).Warn("error obtaining erp sync lock; proceeding without lock: " + err.Error())
	}
	return nil
}

func errMessage(err error) *string {
	msg := err.Error()
	return &msg
}
