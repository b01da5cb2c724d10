package bot

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/kasir-bot/pricing"
)

// Session adalah percakapan yang sedang berjalan untuk satu chat.
// State nil berarti tidak ada sesi.
type Session struct {
	State State
	// HubMessageID adalah pesan menu edit yang diubah di tempat. 0 = belum ada.
	HubMessageID int
}

// Active melaporkan apakah sesi masih berjalan.
func (s Session) Active() bool {
	return s.State != nil
}

// State adalah satu langkah percakapan. Setiap langkah membawa datanya sendiri.
type State interface {
	Step() string
	isState()
}

// Draft adalah struk baru yang belum disimpan.
type Draft struct {
	CashierName   string
	Items         []pricing.Item
	TotalPayment  decimal.Decimal
	HasPayment    bool
	PaymentMethod string
	InvoiceNumber string // nomor terakhir yang dicoba disimpan
}

func (d Draft) clone() Draft {
	d.Items = append([]pricing.Item(nil), d.Items...)
	return d
}

// EditDraft adalah salinan transaksi tersimpan yang sedang diedit.
type EditDraft struct {
	InvoiceNumber   string
	StoreID         uint
	StoreName       string
	CashierName     string
	PaymentMethod   string
	TransactionDate time.Time
	Lines           []pricing.Line
}

func (e EditDraft) clone() EditDraft {
	e.Lines = append([]pricing.Line(nil), e.Lines...)
	return e
}

// Total selalu dihitung ulang dari baris yang ada.
func (e EditDraft) Total() decimal.Decimal {
	return pricing.TotalRevenue(e.Lines)
}

// Alur Buat Struk.
type (
	CashierName   struct{}
	AddItem       struct{ Draft Draft }
	TotalPayment  struct{ Draft Draft }
	PaymentMethod struct{ Draft Draft }
	ConfirmSave   struct{ Draft Draft }
)

// SearchInvoice menunggu nomor invoice dari Cari Transaksi.
type SearchInvoice struct{}

// Alur edit transaksi.
type (
	EditMenu       struct{ Edit EditDraft }
	EditCashier    struct{ Edit EditDraft }
	EditPayment    struct{ Edit EditDraft }
	EditAddItem    struct{ Edit EditDraft }
	EditRemoveItem struct{ Edit EditDraft }
	EditSelectItem struct{ Edit EditDraft }
)

// Langkah edit per item. Index adalah posisi 0-based pada Edit.Lines.
type (
	EditMenuItem struct {
		Edit  EditDraft
		Index int
	}
	EditItemName struct {
		Edit  EditDraft
		Index int
	}
	EditItemQty struct {
		Edit  EditDraft
		Index int
	}
	EditItemPriceVp struct {
		Edit  EditDraft
		Index int
	}
	EditItemTotalConsumer struct {
		Edit  EditDraft
		Index int
	}
)

func (CashierName) Step() string           { return "CASHIER_NAME" }
func (AddItem) Step() string               { return "ADD_ITEM" }
func (TotalPayment) Step() string          { return "GET_TOTAL_PAYMENT" }
func (PaymentMethod) Step() string         { return "PAYMENT_METHOD" }
func (ConfirmSave) Step() string           { return "CONFIRM_SAVE" }
func (SearchInvoice) Step() string         { return "SEARCH_TRANSACTION" }
func (EditMenu) Step() string              { return "EDIT_MENU" }
func (EditCashier) Step() string           { return "EDIT_CASHIER" }
func (EditPayment) Step() string           { return "EDIT_PAYMENT" }
func (EditAddItem) Step() string           { return "EDIT_ADD_ITEM" }
func (EditRemoveItem) Step() string        { return "EDIT_REMOVE_ITEM" }
func (EditSelectItem) Step() string        { return "EDIT_SELECT_ITEM" }
func (EditMenuItem) Step() string          { return "EDIT_MENU_ITEM" }
func (EditItemName) Step() string          { return "EDIT_ITEM_NAME" }
func (EditItemQty) Step() string           { return "EDIT_ITEM_QTY" }
func (EditItemPriceVp) Step() string       { return "EDIT_ITEM_PRICE_VP" }
func (EditItemTotalConsumer) Step() string { return "EDIT_ITEM_TOTAL_CONSUMER" }

func (CashierName) isState()           {}
func (AddItem) isState()               {}
func (TotalPayment) isState()          {}
func (PaymentMethod) isState()         {}
func (ConfirmSave) isState()           {}
func (SearchInvoice) isState()         {}
func (EditMenu) isState()              {}
func (EditCashier) isState()           {}
func (EditPayment) isState()           {}
func (EditAddItem) isState()           {}
func (EditRemoveItem) isState()        {}
func (EditSelectItem) isState()        {}
func (EditMenuItem) isState()          {}
func (EditItemName) isState()          {}
func (EditItemQty) isState()           {}
func (EditItemPriceVp) isState()       {}
func (EditItemTotalConsumer) isState() {}

// editDraftOf mengembalikan EditDraft bila state adalah bagian dari alur edit.
func editDraftOf(s State) (EditDraft, bool) {
	switch st := s.(type) {
	case EditMenu:
		return st.Edit, true
	case EditCashier:
		return st.Edit, true
	case EditPayment:
		return st.Edit, true
	case EditAddItem:
		return st.Edit, true
	case EditRemoveItem:
		return st.Edit, true
	case EditSelectItem:
		return st.Edit, true
	case EditMenuItem:
		return st.Edit, true
	case EditItemName:
		return st.Edit, true
	case EditItemQty:
		return st.Edit, true
	case EditItemPriceVp:
		return st.Edit, true
	case EditItemTotalConsumer:
		return st.Edit, true
	}
	return EditDraft{}, false
}

// itemIndexOf mengembalikan item yang sedang diedit, bila ada.
func itemIndexOf(s State) (int, bool) {
	switch st := s.(type) {
	case EditMenuItem:
		return st.Index, true
	case EditItemName:
		return st.Index, true
	case EditItemQty:
		return st.Index, true
	case EditItemPriceVp:
		return st.Index, true
	case EditItemTotalConsumer:
		return st.Index, true
	}
	return 0, false
}
