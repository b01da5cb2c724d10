package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/kasir-bot/models"
	"github.com/yeremiapane/kasir-bot/utils"
	"gorm.io/gorm"
)

const topProductLimit = 5

// ProductSummary adalah satu baris produk terlaris.
type ProductSummary struct {
	Name     string
	Unit     string
	Quantity int64
	Revenue  decimal.Decimal
}

// PaymentMethodSummary adalah rekap per metode pembayaran.
type PaymentMethodSummary struct {
	Method string
	Count  int64
	Total  decimal.Decimal
}

// DailySummary adalah laporan harian satu toko.
type DailySummary struct {
	Date             time.Time
	StoreID          uint
	TotalSales       decimal.Decimal
	TransactionCount int64
	TotalCost        decimal.Decimal
	Margin           decimal.Decimal
	TopProducts      []ProductSummary
	PaymentMethods   []PaymentMethodSummary
}

// StoreSummary adalah rincian satu toko dalam laporan regional.
type StoreSummary struct {
	StoreID          uint
	StoreName        string
	TotalSales       decimal.Decimal
	TransactionCount int64
	Margin           decimal.Decimal
	SharePercent     decimal.Decimal // persentase terhadap total regional, 1 desimal
}

// RegionalSummary adalah laporan harian semua toko aktif dalam satu region.
type RegionalSummary struct {
	Date             time.Time
	RegionID         uint
	RegionName       string
	TotalSales       decimal.Decimal
	TransactionCount int64
	TotalMargin      decimal.Decimal
	Stores           []StoreSummary
}

// ReportService menyediakan agregat laporan (hanya baca).
type ReportService struct {
	db *gorm.DB
}

// NewReportService membuat instance baru ReportService
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Daily menghitung laporan toko untuk hari kalender dari day (lokasi day dipakai).
func (s *ReportService) Daily(ctx context.Context, day time.Time, storeID uint) (*DailySummary, error) {
	db := s.db.WithContext(ctx)
	start, end := dayBounds(day)

	var totals struct {
		TotalSales       decimal.Decimal
		TransactionCount int64
	}
	err := db.Raw(`SELECT COALESCE(SUM(total_amount), 0) AS total_sales, COUNT(id) AS transaction_count
		FROM transactions
		WHERE store_id = ? AND transaction_date >= ? AND transaction_date < ?`,
		storeID, start, end).Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum daily sales: %w", err)
	}

	var cost struct{ TotalCost decimal.Decimal }
	err = db.Raw(`SELECT COALESCE(SUM(ti.quantity * ti.price_vp), 0) AS total_cost
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		WHERE t.store_id = ? AND t.transaction_date >= ? AND t.transaction_date < ?`,
		storeID, start, end).Scan(&cost).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum daily cost: %w", err)
	}

	var products []ProductSummary
	err = db.Raw(`SELECT ti.product_name AS name, ti.unit AS unit,
			SUM(ti.quantity) AS quantity, SUM(ti.quantity * ti.price_consumer) AS revenue
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		WHERE t.store_id = ? AND t.transaction_date >= ? AND t.transaction_date < ?
		GROUP BY ti.product_name, ti.unit
		ORDER BY quantity DESC, name ASC
		LIMIT ?`,
		storeID, start, end, topProductLimit).Scan(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list top products: %w", err)
	}
	for i := range products {
		products[i].Revenue = products[i].Revenue.Round(2)
	}

	var methods []PaymentMethodSummary
	err = db.Raw(`SELECT payment_method AS method, COUNT(id) AS count, SUM(total_amount) AS total
		FROM transactions
		WHERE store_id = ? AND transaction_date >= ? AND transaction_date < ?
		GROUP BY payment_method
		ORDER BY total DESC, method ASC`,
		storeID, start, end).Scan(&methods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group payment methods: %w", err)
	}

	return &DailySummary{
		Date:             day,
		StoreID:          storeID,
		TotalSales:       totals.TotalSales,
		TransactionCount: totals.TransactionCount,
		TotalCost:        cost.TotalCost,
		Margin:           totals.TotalSales.Sub(cost.TotalCost).Round(2),
		TopProducts:      products,
		PaymentMethods:   methods,
	}, nil
}

// Regional menghitung laporan semua toko aktif di region. Penjualan dan modal
// dihitung di query terpisah agar total header tidak terhitung ganda per item.
func (s *ReportService) Regional(ctx context.Context, day time.Time, regionID uint) (*RegionalSummary, error) {
	db := s.db.WithContext(ctx)
	start, end := dayBounds(day)

	var region models.Region
	if err := db.First(&region, regionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("region %d: %w", regionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find region: %w", err)
	}

	var stores []StoreSummary
	err := db.Raw(`SELECT s.id AS store_id, s.name AS store_name,
			COALESCE(SUM(t.total_amount), 0) AS total_sales, COUNT(t.id) AS transaction_count
		FROM stores s
		LEFT JOIN transactions t ON t.store_id = s.id
			AND t.transaction_date >= ? AND t.transaction_date < ?
		WHERE s.region_id = ? AND s.status = ?
		GROUP BY s.id, s.name`,
		start, end, regionID, models.StatusActive).Scan(&stores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum regional sales: %w", err)
	}

	var costs []struct {
		StoreID   uint
		TotalCost decimal.Decimal
	}
	err = db.Raw(`SELECT t.store_id AS store_id, COALESCE(SUM(ti.quantity * ti.price_vp), 0) AS total_cost
		FROM transaction_items ti
		JOIN transactions t ON t.id = ti.transaction_id
		JOIN stores s ON s.id = t.store_id
		WHERE s.region_id = ? AND s.status = ? AND t.transaction_date >= ? AND t.transaction_date < ?
		GROUP BY t.store_id`,
		regionID, models.StatusActive, start, end).Scan(&costs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum regional cost: %w", err)
	}
	costByStore := make(map[uint]decimal.Decimal, len(costs))
	for _, c := range costs {
		costByStore[c.StoreID] = c.TotalCost
	}

	summary := &RegionalSummary{
		Date:        day,
		RegionID:    region.ID,
		RegionName:  region.Name,
		TotalSales:  decimal.Zero,
		TotalMargin: decimal.Zero,
	}
	for i := range stores {
		stores[i].Margin = stores[i].TotalSales.Sub(costByStore[stores[i].StoreID]).Round(2)
		summary.TotalSales = summary.TotalSales.Add(stores[i].TotalSales)
		summary.TransactionCount += stores[i].TransactionCount
		summary.TotalMargin = summary.TotalMargin.Add(stores[i].Margin)
	}

	hundred := decimal.NewFromInt(100)
	for i := range stores {
		stores[i].SharePercent = decimal.Zero
		if summary.TotalSales.IsPositive() {
			stores[i].SharePercent = stores[i].TotalSales.Mul(hundred).Div(summary.TotalSales).Round(1)
		}
	}
	sort.SliceStable(stores, func(i, j int) bool {
		if !stores[i].TotalSales.Equal(stores[j].TotalSales) {
			return stores[i].TotalSales.GreaterThan(stores[j].TotalSales)
		}
		return stores[i].StoreName < stores[j].StoreName
	})
	summary.Stores = stores

	return summary, nil
}

// dayBounds disimpan dalam UTC, sama seperti transaction_date.
func dayBounds(day time.Time) (time.Time, time.Time) {
	start, end := utils.DayRange(day)
	return start.UTC(), end.UTC()
}
