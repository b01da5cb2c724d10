package bot

import (
	"github.com/yeremiapane/kasir-bot/services"
)

// Markup adalah keyboard yang menempel pada pesan keluar.
type Markup interface {
	isMarkup()
}

// ReplyKeyboard adalah keyboard balasan biasa.
type ReplyKeyboard struct {
	Rows    [][]string
	OneTime bool
}

// RemoveKeyboard menyembunyikan keyboard balasan.
type RemoveKeyboard struct{}

type InlineButton struct {
	Text string
	Data string
}

// InlineKeyboard adalah tombol callback di bawah pesan.
type InlineKeyboard [][]InlineButton

func (ReplyKeyboard) isMarkup()  {}
func (RemoveKeyboard) isMarkup() {}
func (InlineKeyboard) isMarkup() {}

// Message adalah pesan keluar. Markdown memakai parse mode Markdown lama Telegram.
type Message struct {
	Text     string
	Markdown bool
	Markup   Markup
}

// Event adalah masukan untuk Reduce.
type Event interface {
	isEvent()
}

// TextEvent adalah pesan teks dari user.
type TextEvent struct {
	ChatID int64
	Text   string
	Access *services.Access
}

// CallbackEvent adalah tombol inline yang ditekan user.
type CallbackEvent struct {
	ChatID     int64
	CallbackID string
	Data       string
	MessageID  int
	Access     *services.Access
}

// SaveResult adalah hasil SaveTransaction yang diumpankan kembali ke Reduce.
type SaveResult struct {
	InvoiceNumber string
	Result        *services.CreateResult
	Err           error
	Access        *services.Access
}

// UpdateResult adalah hasil UpdateTransaction.
type UpdateResult struct {
	InvoiceNumber string
	Err           error
	Access        *services.Access
}

// EditLoaded adalah hasil LoadForEdit.
type EditLoaded struct {
	Detail     *services.TransactionDetail
	Err        error
	MessageID  int
	CallbackID string
	Access     *services.Access
}

func (TextEvent) isEvent()     {}
func (CallbackEvent) isEvent() {}
func (SaveResult) isEvent()    {}
func (UpdateResult) isEvent()  {}
func (EditLoaded) isEvent()    {}

// Effect adalah perintah yang dijalankan Dispatcher setelah Reduce.
type Effect interface {
	isEffect()
}

// Send mengirim pesan baru.
type Send struct {
	Message
}

// RenderHub menampilkan menu edit: mengubah pesan HubMessageID bila ada,
// atau mengirim pesan baru lalu menyimpan ID-nya.
type RenderHub struct {
	Message
}

// EditMessage mengubah pesan tertentu. Kegagalan diabaikan.
type EditMessage struct {
	MessageID int
	Message
}

// DeleteMessage menghapus pesan. Kegagalan diabaikan.
type DeleteMessage struct {
	MessageID int
}

// AnswerCallback menjawab callback query, opsional dengan notifikasi.
type AnswerCallback struct {
	CallbackID string
	Text       string
	Alert      bool
}

// SaveTransaction menyimpan struk baru. Nomor invoice dibuat saat dijalankan.
type SaveTransaction struct {
	Input   services.CreateInput
	StoreID uint
	UserID  uint
}

// UpdateTransaction menyimpan hasil edit.
type UpdateTransaction struct {
	InvoiceNumber string
	Input         services.UpdateInput
	UserID        uint
}

// LoadForEdit memuat transaksi untuk memulai sesi edit.
type LoadForEdit struct {
	InvoiceNumber string
	StoreID       uint
	MessageID     int
	CallbackID    string
}

// ShowTransaction mencari dan menampilkan detail transaksi.
type ShowTransaction struct {
	InvoiceNumber string
	StoreID       uint
}

type DailyReport struct {
	StoreID   uint
	StoreName string
}

type RegionalReport struct {
	RegionID uint
}

type RecentTransactions struct {
	StoreID   uint
	StoreName string
}

// SelectStore menyimpan toko aktif yang dipilih dari daftar.
type SelectStore struct {
	StoreID    uint
	MessageID  int
	CallbackID string
}

func (Send) isEffect()               {}
func (RenderHub) isEffect()          {}
func (EditMessage) isEffect()        {}
func (DeleteMessage) isEffect()      {}
func (AnswerCallback) isEffect()     {}
func (SaveTransaction) isEffect()    {}
func (UpdateTransaction) isEffect()  {}
func (LoadForEdit) isEffect()        {}
func (ShowTransaction) isEffect()    {}
func (DailyReport) isEffect()        {}
func (RegionalReport) isEffect()     {}
func (RecentTransactions) isEffect() {}
func (SelectStore) isEffect()        {}
