package memory

import (
	"context"
	"time"

	"procurement-backend/internal/models"
	"procurement-backend/internal/repository"
)

type receptionRepo struct{ s *Store }

func (r *receptionRepo) List(ctx context.Context, f repository.ReceptionFilter) ([]models.Reception, error) {
	if err := r.s.lock(ctx, "receptions.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	var out []models.Reception
	for _, rec := range r.s.data.receptions {
		if f.PurchaseOrderID != 0 && rec.PurchaseOrderID != f.PurchaseOrderID {
			continue
		}
		r.s.expandReception(&rec)
		out = append(out, rec)
	}
	newestFirst(out, func(rec models.Reception) time.Time { return rec.ReceptionDate }, func(rec models.Reception) uint { return rec.ID })
	return out, nil
}

// must be called with mu held
func (s *Store) expandReception(rec *models.Reception) {
	if o, ok := s.data.orders[rec.PurchaseOrderID]; ok {
		rec.PurchaseOrder = &o
	}
	rec.Receiver = s.userPtr(rec.ReceivedBy)
}

func (r *receptionRepo) FindByID(ctx context.Context, id uint) (*models.Reception, error) {
	if err := r.s.lock(ctx, "receptions.find"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	rec, ok := r.s.data.receptions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.s.expandReception(&rec)
	return &rec, nil
}

func (r *receptionRepo) Create(ctx context.Context, rec *models.Reception) error {
	if err := r.s.lock(ctx, "receptions.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.receptions {
		if existing.ReceptionNumber == rec.ReceptionNumber {
			return repository.ErrDuplicate
		}
	}
	rec.ID = r.s.nextID()
	rec.CreatedAt = r.s.tick()
	row := *rec
	row.PurchaseOrder, row.Receiver = nil, nil
	r.s.data.receptions[rec.ID] = row
	return nil
}

type qualityRepo struct{ s *Store }

// must be called with mu held
func (s *Store) expandQuality(qc *models.QualityCheck) {
	if rec, ok := s.data.receptions[qc.ReceptionID]; ok {
		qc.Reception = &rec
	}
	if qc.ProductID != nil {
		if p, ok := s.data.products[*qc.ProductID]; ok {
			qc.Product = &p
		}
	}
	qc.Inspector = s.userPtr(qc.InspectorID)
}

func (r *qualityRepo) List(ctx context.Context, f repository.QualityCheckFilter) ([]models.QualityCheck, error) {
	if err := r.s.lock(ctx, "quality_checks.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	var out []models.QualityCheck
	for _, qc := range r.s.data.quality {
		if len(f.Results) > 0 && !contains(f.Results, qc.Result) {
			continue
		}
		if f.ReceptionID != 0 && qc.ReceptionID != f.ReceptionID {
			continue
		}
		r.s.expandQuality(&qc)
		out = append(out, qc)
	}
	newestFirst(out, func(qc models.QualityCheck) time.Time { return qc.CheckedAt }, func(qc models.QualityCheck) uint { return qc.ID })
	return out, nil
}

func (r *qualityRepo) FindByID(ctx context.Context, id uint) (*models.QualityCheck, error) {
	if err := r.s.lock(ctx, "quality_checks.find"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	qc, ok := r.s.data.quality[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.s.expandQuality(&qc)
	return &qc, nil
}

func (r *qualityRepo) Create(ctx context.Context, qc *models.QualityCheck) error {
	if err := r.s.lock(ctx, "quality_checks.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	qc.ID = r.s.nextID()
	qc.CreatedAt = r.s.tick()
	row := *qc
	row.Reception, row.Product, row.Inspector = nil, nil, nil
	r.s.data.quality[qc.ID] = row
	return nil
}

type erpLogRepo struct{ s *Store }

func (r *erpLogRepo) match(f repository.ErpLogFilter) []models.ErpLog {
	var out []models.ErpLog
	for _, l := range r.s.data.erpLogs {
		if f.EntityType != "" && l.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != 0 && l.EntityID != f.EntityID {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (r *erpLogRepo) Create(ctx context.Context, l *models.ErpLog) error {
	if err := r.s.lock(ctx, "erp_logs.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	l.ID = r.s.nextID()
	l.CreatedAt = r.s.tick()
	r.s.data.erpLogs[l.ID] = *l
	return nil
}

func (r *erpLogRepo) List(ctx context.Context, f repository.ErpLogFilter) ([]models.ErpLog, error) {
	if err := r.s.lock(ctx, "erp_logs.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	out := r.match(f)
	newestFirst(out, func(l models.ErpLog) time.Time { return l.CreatedAt }, func(l models.ErpLog) uint { return l.ID })
	return limit(out, f.Limit), nil
}

func (r *erpLogRepo) Count(ctx context.Context, f repository.ErpLogFilter) (int64, error) {
	if err := r.s.lock(ctx, "erp_logs.count"); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()
	return int64(len(r.match(f))), nil
}

type auditLogRepo struct{ s *Store }

func (r *auditLogRepo) Create(ctx context.Context, l *models.AuditLog) error {
	if err := r.s.lock(ctx, "audit_logs.create"); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	l.ID = r.s.nextID()
	l.CreatedAt = r.s.tick()
	r.s.data.auditLogs[l.ID] = *l
	return nil
}

func (r *auditLogRepo) List(ctx context.Context, f repository.AuditLogFilter) ([]models.AuditLog, error) {
	if err := r.s.lock(ctx, "audit_logs.list"); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()
	var out []models.AuditLog
	for _, l := range r.s.data.auditLogs {
		if f.EntityType != "" && l.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != 0 && l.EntityID != f.EntityID {
			continue
		}
		if f.UserID != 0 && l.UserID != f.UserID {
			continue
		}
		out = append(out, l)
	}
	newestFirst(out, func(l models.AuditLog) time.Time { return l.CreatedAt }, func(l models.AuditLog) uint { return l.ID })
	return limit(out, f.Limit), nil
}
