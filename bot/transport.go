package bot

import (
	"context"
	"time"

	"github.com/yeremiapane/kasir-bot/services"
)

// Transport mengirim pesan ke platform chat.
type Transport interface {
	// Send mengembalikan message id pesan yang terkirim.
	Send(ctx context.Context, chatID int64, msg Message) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, msg Message) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}

// AccessResolver memeriksa siapa pemilik chat dan toko yang boleh diaksesnya.
type AccessResolver interface {
	Resolve(ctx context.Context, chatID int64) (*services.Access, error)
	SetActiveStore(ctx context.Context, access *services.Access, storeID uint) (*services.StoreRef, error)
}

// Gateway menyimpan dan membaca transaksi.
type Gateway interface {
	Create(ctx context.Context, in services.CreateInput, storeID, userID uint) (*services.CreateResult, error)
	Update(ctx context.Context, invoice string, in services.UpdateInput, userID uint) error
	FindByInvoice(ctx context.Context, invoice string, storeID uint) (*services.TransactionDetail, error)
	Recent(ctx context.Context, storeID uint, limit int) ([]services.TransactionSummary, error)
}

// Reporter menghitung laporan.
type Reporter interface {
	Daily(ctx context.Context, day time.Time, storeID uint) (*services.DailySummary, error)
	Regional(ctx context.Context, day time.Time, regionID uint) (*services.RegionalSummary, error)
}
