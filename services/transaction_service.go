package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/kasir-bot/models"
	"github.com/yeremiapane/kasir-bot/pricing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound         = errors.New("transaction not found")
	ErrDuplicateInvoice = errors.New("invoice number already exists")
	ErrPersistence      = errors.New("failed to persist transaction")
)

// CreateInput adalah struk baru dari alur Buat Struk.
type CreateInput struct {
	InvoiceNumber string
	CashierName   string
	PaymentMethod string
	Items         []pricing.Item
	TotalPayment  decimal.Decimal
}

type CreateResult struct {
	TransactionID uint
	TotalAmount   decimal.Decimal
}

// UpdateInput menggantikan header dan seluruh item transaksi lama.
// StoreID 0 berarti tanpa batasan toko.
type UpdateInput struct {
	StoreID       uint
	CashierName   string
	PaymentMethod string
	Lines         []pricing.Line
}

// TransactionDetail adalah transaksi tersimpan dalam bentuk yang dipakai bot.
type TransactionDetail struct {
	ID              uint
	InvoiceNumber   string
	StoreID         uint
	StoreName       string
	CashierName     string
	PaymentMethod   string
	TotalAmount     decimal.Decimal
	TransactionDate time.Time
	Lines           []pricing.Line
}

// TransactionSummary dipakai untuk daftar transaksi terakhir.
type TransactionSummary struct {
	InvoiceNumber   string
	CashierName     string
	PaymentMethod   string
	TotalAmount     decimal.Decimal
	TransactionDate time.Time
}

// TransactionService menangani penyimpanan struk. Setiap operasi tulis berjalan
// dalam satu transaksi database.
type TransactionService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTransactionService membuat instance baru TransactionService
func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		now: time.Now,
	}
}

// SetClock mengganti sumber waktu transaksi.
func (s *TransactionService) SetClock(now func() time.Time) {
	s.now = now
}

// Create menyimpan header dan item dalam satu transaksi. Harga konsumen per unit
// dihitung dari alokasi proporsional TotalPayment terhadap modal.
func (s *TransactionService) Create(ctx context.Context, in CreateInput, storeID, userID uint) (*CreateResult, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: transaction has no items", ErrPersistence)
	}

	lines := pricing.Allocate(in.Items, in.TotalPayment)
	rows, err := itemRows(lines)
	if err != nil {
		return nil, err
	}

	header := models.Transaction{
		InvoiceNumber:   in.InvoiceNumber,
		StoreID:         storeID,
		UserID:          userID,
		CashierName:     in.CashierName,
		PaymentMethod:   in.PaymentMethod,
		TotalAmount:     in.TotalPayment,
		TransactionDate: s.now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&header).Error; err != nil {
			// satu-satunya unique index di header adalah invoice_number
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateInvoice
			}
			return err
		}
		for i := range rows {
			rows[i].TransactionID = header.ID
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateInvoice) {
			return nil, ErrDuplicateInvoice
		}
		return nil, classify("create transaction", err)
	}

	return &CreateResult{TransactionID: header.ID, TotalAmount: header.TotalAmount}, nil
}

// Update mengganti kasir, metode bayar, total dan seluruh item transaksi.
func (s *TransactionService) Update(ctx context.Context, invoice string, in UpdateInput, userID uint) error {
	rows, err := itemRows(in.Lines)
	if err != nil {
		return err
	}
	total := pricing.TotalRevenue(in.Lines)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Select("id").Where("invoice_number = ?", invoice)
		if in.StoreID != 0 {
			q = q.Where("store_id = ?", in.StoreID)
		}
		var header models.Transaction
		if err := q.First(&header).Error; err != nil {
			return err
		}

		err := tx.Model(&models.Transaction{}).Where("id = ?", header.ID).Updates(map[string]interface{}{
			"cashier_name":   in.CashierName,
			"payment_method": in.PaymentMethod,
			"total_amount":   total,
			"updated_by":     userID,
		}).Error
		if err != nil {
			return err
		}

		if err := tx.Where("transaction_id = ?", header.ID).Delete(&models.TransactionItem{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].TransactionID = header.ID
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return classify("update transaction", err)
	}
	return nil
}

// FindByInvoice mencari transaksi berdasarkan nomor struk. storeID 0 berarti semua toko.
func (s *TransactionService) FindByInvoice(ctx context.Context, invoice string, storeID uint) (*TransactionDetail, error) {
	db := s.db.WithContext(ctx)

	q := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Where("invoice_number = ?", invoice)
	if storeID != 0 {
		q = q.Where("store_id = ?", storeID)
	}

	var trx models.Transaction
	if err := q.First(&trx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, classify("find transaction", err)
	}

	var store models.Store
	if err := db.Select("name").Where("id = ?", trx.StoreID).Limit(1).Find(&store).Error; err != nil {
		return nil, classify("find store", err)
	}

	detail := &TransactionDetail{
		ID:              trx.ID,
		InvoiceNumber:   trx.InvoiceNumber,
		StoreID:         trx.StoreID,
		StoreName:       store.Name,
		CashierName:     trx.CashierName,
		PaymentMethod:   trx.PaymentMethod,
		TotalAmount:     trx.TotalAmount,
		TransactionDate: trx.TransactionDate,
		Lines:           make([]pricing.Line, 0, len(trx.Items)),
	}
	for _, item := range trx.Items {
		detail.Lines = append(detail.Lines, pricing.Line{
			Item: pricing.Item{
				Name:    item.ProductName,
				Qty:     item.Quantity,
				Unit:    item.Unit,
				PriceVp: item.PriceVp,
			},
			TotalConsumer: pricing.ConsumerTotalFromUnit(item.Quantity, item.PriceConsumer),
		})
	}
	return detail, nil
}

// Recent mengembalikan transaksi terbaru sebuah toko, terbaru lebih dulu.
func (s *TransactionService) Recent(ctx context.Context, storeID uint, limit int) ([]TransactionSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	var trxs []models.Transaction
	err := s.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("transaction_date DESC").
		Order("id DESC").
		Limit(limit).
		Find(&trxs).Error
	if err != nil {
		return nil, classify("list recent transactions", err)
	}

	result := make([]TransactionSummary, 0, len(trxs))
	for _, t := range trxs {
		result = append(result, TransactionSummary{
			InvoiceNumber:   t.InvoiceNumber,
			CashierName:     t.CashierName,
			PaymentMethod:   t.PaymentMethod,
			TotalAmount:     t.TotalAmount,
			TransactionDate: t.TransactionDate,
		})
	}
	return result, nil
}

func itemRows(lines []pricing.Line) ([]models.TransactionItem, error) {
	rows := make([]models.TransactionItem, 0, len(lines))
	for _, line := range lines {
		unit, err := pricing.PerUnitConsumerPrice(line)
		if err != nil {
			return nil, fmt.Errorf("%w: item %q: %w", ErrPersistence, line.Name, err)
		}
		rows = append(rows, models.TransactionItem{
			ProductName:   line.Name,
			Quantity:      line.Qty,
			Unit:          line.Unit,
			PriceVp:       line.PriceVp,
			PriceConsumer: unit,
		})
	}
	return rows, nil
}

// classify membungkus error gorm sebagai ErrPersistence. Duplikat invoice dikenali
// langsung di Create karena hanya insert header yang menyentuh invoice_number.
func classify(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
