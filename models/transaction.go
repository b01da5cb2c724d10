package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction adalah header struk yang sudah tersimpan.
type Transaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber   string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"invoice_number"`
	StoreID         uint            `gorm:"not null;index" json:"store_id"`
	UserID          uint            `gorm:"not null" json:"user_id"`
	CashierName     string          `gorm:"type:varchar(50);not null" json:"cashier_name"`
	PaymentMethod   string          `gorm:"type:varchar(50);not null" json:"payment_method"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	TransactionDate time.Time       `gorm:"not null;index" json:"transaction_date"`
	UpdatedBy       *uint           `json:"updated_by,omitempty"`

	// Items disimpan di tabel transaction_items, selalu diganti utuh saat update
	Items []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransactionItem adalah satu baris barang pada transaksi.
// PriceConsumer selalu hasil turunan: total bayar konsumen untuk item / Quantity.
type TransactionItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TransactionID uint            `gorm:"not null;index" json:"transaction_id"`
	ProductName   string          `gorm:"type:varchar(100);not null" json:"product_name"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Unit          string          `gorm:"type:varchar(20);not null" json:"unit"`
	PriceVp       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price_vp"`
	PriceConsumer decimal.Decimal `gorm:"type:decimal(16,4);not null" json:"price_consumer"`
}
