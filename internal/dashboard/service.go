// Package dashboard computes the dashboard and report pages and their exports.
package dashboard

import (
	"context"
	"time"

	"procurement-backend/internal/erp"
	"procurement-backend/internal/finance"
	"procurement-backend/internal/logging"
	"procurement-backend/internal/models"
	"procurement-backend/internal/order"
	"procurement-backend/internal/project"
	"procurement-backend/internal/repository"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	recentOrdersLimit   = 5
	recentProjectsLimit = 5
	recentErpLogsLimit  = 10
	reportCacheKey      = "reports:summary"
)

// PendingOrderStatuses are the orders still waiting on the buyer side.
var PendingOrderStatuses = []models.OrderStatus{models.OrderDraft, models.OrderSubmitted, models.OrderApproved}

type Overview struct {
	TotalOrders      int64                     `json:"total_orders"`
	PendingOrders    int64                     `json:"pending_orders"`
	CompletedOrders  int64                     `json:"completed_orders"`
	LowStockProducts int64                     `json:"low_stock_products"`
	RecentOrders     []order.OrderResponse     `json:"recent_orders"`
	RecentProjects   []project.ProjectResponse `json:"recent_projects"`
}

type Report struct {
	OrderCount         int64                `json:"order_count"`
	ValidatedSuppliers int64                `json:"validated_suppliers"`
	ProductCount       int64                `json:"product_count"`
	InvoiceCount       int64                `json:"invoice_count"`
	Totals             finance.Aggregates   `json:"totals"`
	RecentErpLogs      []erp.ErpLogResponse `json:"recent_erp_logs"`
	GeneratedAt        time.Time            `json:"generated_at"`
}

type Service struct {
	store   repository.Store
	cache   *ReportCache
	archive Archiver
	logger  *logrus.Logger
	tracer  trace.Tracer
	now     func() time.Time

	tracerName string
}

// NewService builds the service. cache and archive may be nil.
func NewService(store repository.Store, cache *ReportCache, archive Archiver, logger *logrus.Logger) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		archive: archive,
		logger:  logger,
		tracer:  otel.Tracer("procurement-backend/dashboard"),
		now:     time.Now,

		tracerName: "procurement-backend/dashboard",
	}
}

// WithServiceName names the report spans after the running service.
func (s *Service) WithServiceName(service string) *Service {
	if service != "" {
		s.tracerName = service + "/dashboard"
		s.tracer = otel.Tracer(s.tracerName)
	}
	return s
}

// Overview fans the dashboard reads out concurrently. The first failure
// cancels the rest.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.Overview")
	defer span.End()

	var out Overview
	var orders []models.PurchaseOrder
	var projects []models.Project

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalOrders, err = s.store.Orders().Count(gctx, repository.OrderFilter{})
		return err
	})
	g.Go(func() (err error) {
		out.PendingOrders, err = s.store.Orders().Count(gctx, repository.OrderFilter{Statuses: PendingOrderStatuses})
		return err
	})
	g.Go(func() (err error) {
		out.CompletedOrders, err = s.store.Orders().Count(gctx, repository.OrderFilter{Statuses: []models.OrderStatus{models.OrderDelivered}})
		return err
	})
	g.Go(func() (err error) {
		out.LowStockProducts, err = s.store.Products().Count(gctx, repository.ProductFilter{LowStock: true})
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.store.Orders().List(gctx, repository.OrderFilter{Limit: recentOrdersLimit})
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.store.Projects().List(gctx, repository.ProjectFilter{Limit: recentProjectsLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dashboard overview failed")
		return nil, err
	}

	out.RecentOrders = make([]order.OrderResponse, 0, len(orders))
	for i := range orders {
		out.RecentOrders = append(out.RecentOrders, order.ToResponse(&orders[i], false))
	}
	out.RecentProjects = make([]project.ProjectResponse, 0, len(projects))
	for i := range projects {
		out.RecentProjects = append(out.RecentProjects, project.ToResponse(&projects[i]))
	}
	return &out, nil
}

// Report returns the reports page, from cache when a fresh copy exists.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.Report")
	defer span.End()

	var cached Report
	hit, err := s.cache.Get(ctx, reportCacheKey, &cached)
	if err != nil {
		logging.LogError(s.logger, "dashboard", "Report", "read report cache", nil, err)
	}
	if hit {
		return &cached, nil
	}

	r, err := s.buildReport(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "report failed")
		return nil, err
	}
	if err := s.cache.Set(ctx, reportCacheKey, r); err != nil {
		logging.LogError(s.logger, "dashboard", "Report", "write report cache", nil, err)
	}
	return r, nil
}

func (s *Service) buildReport(ctx context.Context) (*Report, error) {
	out := Report{GeneratedAt: s.now().UTC()}
	var orderAmounts []finance.OrderAmount
	var invoiceAmounts []finance.InvoiceAmount
	var logs []models.ErpLog

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.OrderCount, err = s.store.Orders().Count(gctx, repository.OrderFilter{})
		return err
	})
	g.Go(func() (err error) {
		out.ValidatedSuppliers, err = s.store.Suppliers().Count(gctx, repository.SupplierFilter{
			Statuses: []models.SupplierStatus{models.SupplierValidated},
		})
		return err
	})
	g.Go(func() (err error) {
		out.ProductCount, err = s.store.Products().Count(gctx, repository.ProductFilter{})
		return err
	})
	g.Go(func() (err error) {
		out.InvoiceCount, err = s.store.Invoices().Count(gctx, repository.InvoiceFilter{})
		return err
	})
	g.Go(func() (err error) {
		orderAmounts, err = s.store.Orders().Amounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		invoiceAmounts, err = s.store.Invoices().Amounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		logs, err = s.store.ErpLogs().List(gctx, repository.ErpLogFilter{Limit: recentErpLogsLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Totals = finance.Aggregate(orderAmounts, invoiceAmounts)
	out.RecentErpLogs = make([]erp.ErpLogResponse, 0, len(logs))
	for _, l := range logs {
		out.RecentErpLogs = append(out.RecentErpLogs, erp.ToLogResponse(l))
	}
	return &out, nil
}
