package bot

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/kasir-bot/models"
	"github.com/yeremiapane/kasir-bot/pricing"
	"github.com/yeremiapane/kasir-bot/services"
)

var wib = time.FixedZone("WIB", 7*3600)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

var storeSudirman = services.StoreRef{ID: 1, Name: "VP Sudirman", RegionID: 1}

func newAccess(role string) *services.Access {
	store := storeSudirman
	acc := &services.Access{
		UserID:       10,
		ChatID:       100,
		FullName:     "Ana",
		RoleName:     role,
		PrimaryStore: &store,
		ActiveStore:  &store,
		Stores:       []services.StoreRef{store},
	}
	if role == models.RoleRegionalHead {
		region := uint(1)
		acc.RegionID = &region
		acc.RegionName = "Jawa Timur"
	}
	return acc
}

func cashier() *services.Access    { return newAccess(models.RoleCashier) }
func storeHead() *services.Access  { return newAccess(models.RoleStoreHead) }
func regionHead() *services.Access { return newAccess(models.RoleRegionalHead) }

func say(acc *services.Access, s string) TextEvent {
	return TextEvent{ChatID: acc.ChatID, Text: s, Access: acc}
}

func press(acc *services.Access, data string, messageID int) CallbackEvent {
	return CallbackEvent{ChatID: acc.ChatID, CallbackID: "cb", Data: data, MessageID: messageID, Access: acc}
}

// sentMessages mengambil semua pesan dari efek Send.
func sentMessages(effects []Effect) []Message {
	var out []Message
	for _, eff := range effects {
		if s, ok := eff.(Send); ok {
			out = append(out, s.Message)
		}
	}
	return out
}

func requireSingleSend(t *testing.T, effects []Effect) Message {
	t.Helper()
	require.Len(t, effects, 1)
	s, ok := effects[0].(Send)
	require.True(t, ok, "expected Send, got %T", effects[0])
	return s.Message
}

func threeLineEdit() EditDraft {
	return EditDraft{
		InvoiceNumber:   "VP-261015-0042",
		StoreID:         1,
		StoreName:       "VP Sudirman",
		CashierName:     "Ana",
		PaymentMethod:   "💳 QRIS",
		TransactionDate: time.Date(2026, 10, 15, 7, 5, 0, 0, time.UTC),
		Lines: []pricing.Line{
			{Item: pricing.Item{Name: "Baccarat", Qty: 30, Unit: "ml", PriceVp: dec("2000")}, TotalConsumer: dec("90000")},
			{Item: pricing.Item{Name: "Botol PX38", Qty: 1, Unit: "pcs", PriceVp: dec("7000")}, TotalConsumer: dec("20000")},
			{Item: pricing.Item{Name: "Salsavage", Qty: 20, Unit: "ml", PriceVp: dec("2000")}, TotalConsumer: dec("80000")},
		},
	}
}
