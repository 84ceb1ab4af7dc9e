package service

import (
	"context"
	"fmt"

	"github.com/ridloal/e-commerce-checkout/internal/platform/logger"
	"github.com/ridloal/e-commerce-checkout/internal/product/repository"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// LowStockRecorder receives the number of products found at or below the threshold.
type LowStockRecorder interface {
	SetLowStock(n int)
}

// StockMonitor periodically reports products that are running out. It never
// mutates the catalog.
type StockMonitor struct {
	repo      repository.ProductRepository
	recorder  LowStockRecorder
	threshold int
	spec      string
	scheduler *cron.Cron
}

func NewStockMonitor(repo repository.ProductRepository, recorder LowStockRecorder, threshold int, spec string) *StockMonitor {
	return &StockMonitor{
		repo:      repo,
		recorder:  recorder,
		threshold: threshold,
		spec:      spec,
		scheduler: cron.New(cron.WithSeconds()),
	}
}

// Start schedules the scan. An empty spec disables the monitor.
func (m *StockMonitor) Start() error {
	if m.spec == "" {
		logger.Info("Low-stock monitor disabled")
		return nil
	}
	_, err := m.scheduler.AddFunc(m.spec, func() {
		m.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid low-stock schedule %q: %w", m.spec, err)
	}
	m.scheduler.Start()
	logger.Info("Low-stock monitor started", zap.String("spec", m.spec), zap.Int("threshold", m.threshold))
	return nil
}

// Stop waits for a running scan to finish.
func (m *StockMonitor) Stop() {
	<-m.scheduler.Stop().Done()
}

// RunOnce performs a single scan and returns the number of low-stock products.
func (m *StockMonitor) RunOnce(ctx context.Context) int {
	products, err := m.repo.ListLowStock(ctx, m.threshold)
	if err != nil {
		logger.Error("StockMonitor: failed to list low-stock products", err)
		return 0
	}

	for _, p := range products {
		logger.Warn("Product stock is low",
			zap.Int64("product_id", p.ID),
			zap.String("name", p.Name),
			zap.Int("available_quantity", p.AvailableQuantity))
	}
	if m.recorder != nil {
		m.recorder.SetLowStock(len(products))
	}
	return len(products)
}
