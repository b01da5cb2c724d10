package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/kasir-bot/pricing"
	"github.com/yeremiapane/kasir-bot/services"
	"github.com/yeremiapane/kasir-bot/utils"
)

// Tombol menu utama dan keyboard balasan.
const (
	BtnCreateReceipt = "📝 Buat Struk"
	BtnDailyReport   = "📊 Laporan Hari Ini"
	BtnRegional      = "🌍 Laporan Regional"
	BtnSearch        = "🔍 Cari Transaksi"
	BtnRecent        = "📋 Transaksi Terakhir"
	BtnSwitchStore   = "🔄 Ganti Toko"
	CmdStart         = "/start"
	CmdProfile       = "/profil"

	BtnBack = "← Kembali"
	BtnYes  = "✅ Ya"
	BtnNo   = "❌ Tidak"
	BtnDone = "Selesai"
)

const separator = "------------------------------------"

const (
	msgAccessDenied     = "⚠️ Akses ditolak."
	msgInternalError    = "⚠️ Terjadi kesalahan. Silakan coba lagi."
	msgNoActiveStore    = "⚠️ *Aksi ditolak!* Pilih toko aktif via menu *'🔄 Ganti Toko'*."
	msgRegionalOnly     = "⚠️ Fitur ini hanya untuk Kepala Cabang."
	msgUnknownCommand   = "🤔 Perintah tidak dikenali."
	msgUseButtons       = "👆 Gunakan tombol pada menu edit di atas."
	msgNoEditPermission = "⚠️ Anda tidak punya hak akses untuk edit."
	msgStoreDenied      = "Akses ke toko ini ditolak!"
	msgNoStores         = "⚠️ Tidak ada toko yang bisa Anda akses."
	msgChooseStore      = "📍 Silakan pilih toko yang ingin Anda operasikan:"
	msgEditNotFound     = "❌ Transaksi tidak ditemukan."
	msgEditLoadFailed   = "⚠️ Gagal memuat transaksi."
	msgNoItemsRemove    = "Tidak ada item untuk dihapus."
	msgNoItemsEdit      = "Tidak ada item untuk diubah."
	msgNoSession        = "Sesi edit sudah berakhir."
	msgSaving           = "⏳ Menyimpan transaksi..."
	msgSaveFailed       = "⚠️ Gagal menyimpan transaksi. Silakan coba lagi atau hubungi admin."
	msgCancelled        = "❌ Pembuatan struk dibatalkan."
	msgUpdateFailed     = "❌ Gagal menyimpan perubahan."
	msgEditCancelled    = "❌ Edit invoice dibatalkan."
	msgNextMenu         = "Pilih menu selanjutnya:"
	msgAskCashier       = "✏️ Masukkan *Nama Kasir*:"
	msgAskInvoice       = "🔍 Masukkan nomor *invoice*:"
	msgBackToItems      = "Kembali ke penambahan item. Masukkan item lagi atau ketik *Selesai*."
	msgDailyWait        = "⏳ Membuat laporan..."
	msgRegionalWait     = "⏳ Membuat laporan regional..."
	msgDailyFailed      = "⚠️ Gagal membuat laporan."
	msgRegionalFailed   = "⚠️ Gagal membuat laporan regional."
	msgRecentFailed     = "⚠️ Gagal memuat transaksi terakhir."
	msgSearchFailed     = "⚠️ Gagal mencari transaksi."

	msgEditAskCashier = "✏️ Masukkan nama kasir baru:"
	msgEditAskPayment = "💳 Pilih metode pembayaran baru:"
	msgEditAskItem    = "➕ Masukkan item baru:\n`Nama, Jumlah, Unit, Harga Modal, Total Bayar Konsumen`\n\n*Contoh:*\n`Baccarat, 30, ml, 2000, 90000`"
	msgEditSelectItem = "✏️ Pilih item yang akan diubah:"
	msgEditAskName    = "✏️ Masukkan *nama barang* baru:"
	msgEditAskQty     = "✏️ Masukkan *jumlah* dan *unit* baru (pisahkan dengan koma).\nContoh: `30, ml`"
	msgEditAskPriceVp = "✏️ Masukkan *harga modal per unit* baru:"
	msgEditAskTotal   = "✏️ Masukkan *total harga bayar konsumen* yang baru untuk item ini:"
)

func plain(s string) Message {
	return Message{Text: s}
}

func markdown(s string, markup Markup) Message {
	return Message{Text: s, Markdown: true, Markup: markup}
}

func rupiah(d decimal.Decimal) string {
	return utils.FormatCurrencyIDR(d)
}

// MainKeyboard adalah menu utama. Laporan Regional hanya untuk Kepala Cabang.
func MainKeyboard(acc *services.Access) ReplyKeyboard {
	rows := [][]string{
		{BtnCreateReceipt, BtnDailyReport},
		{BtnSearch, BtnRecent},
		{BtnSwitchStore, CmdProfile},
	}
	if acc != nil && acc.IsRegionalHead() {
		rows = append(rows[:1], append([][]string{{BtnRegional}}, rows[1:]...)...)
	}
	return ReplyKeyboard{Rows: rows}
}

func paymentKeyboard() ReplyKeyboard {
	return ReplyKeyboard{
		Rows: [][]string{
			{"💳 QRIS", "💵 Tunai"},
			{"🏦 Debit BCA", "🏦 Transfer"},
			{BtnBack},
		},
		OneTime: true,
	}
}

func yesNoKeyboard() ReplyKeyboard {
	return ReplyKeyboard{Rows: [][]string{{BtnYes, BtnNo}}, OneTime: true}
}

func doneKeyboard() ReplyKeyboard {
	return ReplyKeyboard{Rows: [][]string{{BtnDone}}, OneTime: true}
}

func welcomeMessage(acc *services.Access) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 *Selamat Datang, %s!*\n\n", acc.FullName)
	fmt.Fprintf(&b, "👑 Role: *%s*\n", acc.RoleName)
	if acc.PrimaryStore != nil {
		fmt.Fprintf(&b, "🏢 Toko Utama: *%s*\n", acc.PrimaryStore.Name)
	}
	switch {
	case acc.ActiveStore == nil:
		b.WriteString("⚠️ *Toko belum dipilih!* Gunakan menu *'🔄 Ganti Toko'* untuk memulai.\n")
	case acc.PrimaryStore == nil || acc.PrimaryStore.ID != acc.ActiveStore.ID:
		fmt.Fprintf(&b, "🏪 Toko Aktif (Sesi Ini): *%s*\n", acc.ActiveStore.Name)
	}
	b.WriteString("\nPilih menu di bawah:")
	return markdown(b.String(), MainKeyboard(acc))
}

func profileMessage(acc *services.Access) Message {
	var b strings.Builder
	b.WriteString("👤 *PROFIL ANDA*\n\n")
	fmt.Fprintf(&b, "*Nama:* %s\n", acc.FullName)
	fmt.Fprintf(&b, "*Role:* %s\n", acc.RoleName)
	if acc.IsRegionalHead() && acc.RegionID != nil {
		region := acc.RegionName
		if region == "" {
			region = "N/A"
		}
		fmt.Fprintf(&b, "*Regional:* %s\n", region)
	}
	primary, active := "Belum diatur", "Belum dipilih"
	if acc.PrimaryStore != nil {
		primary = acc.PrimaryStore.Name
	}
	if acc.ActiveStore != nil {
		active = acc.ActiveStore.Name
	}
	fmt.Fprintf(&b, "*Toko Utama:* %s\n", primary)
	fmt.Fprintf(&b, "*Sesi Aktif di Toko:* %s", active)
	return markdown(b.String(), nil)
}

func storeSelectionMessage(stores []services.StoreRef) Message {
	kb := make(InlineKeyboard, 0, len(stores))
	for _, s := range stores {
		kb = append(kb, []InlineButton{{Text: "🏪 " + s.Name, Data: setStoreData(s.ID)}})
	}
	return Message{Text: msgChooseStore, Markup: kb}
}

func storeSelectedMessage(name string) Message {
	return markdown(fmt.Sprintf("✅ Berhasil! Anda sekarang aktif di toko *%s*. Gunakan /start untuk melihat menu.", name), nil)
}

func cashierAcceptedMessage(name string) Message {
	return markdown(fmt.Sprintf("✅ Kasir: *%s*\n\n"+
		"Sekarang, masukkan item pertama dengan format:\n`Nama, Jumlah, Unit, Modal/unit`\n\n"+
		"*Contoh:*\n`Salsavage, 30, ml, 2000`\n`Botol PX38, 1, pcs, 7000`", name), RemoveKeyboard{})
}

func itemAddedMessage(items []pricing.Item) Message {
	var b strings.Builder
	b.WriteString("✅ *Item ditambahkan:*\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Name)
	}
	fmt.Fprintf(&b, "\n*Total Modal Sementara:* %s\n\n", rupiah(pricing.TotalCost(items)))
	b.WriteString("Masukkan item berikutnya atau ketik *Selesai*.")
	return markdown(b.String(), doneKeyboard())
}

func itemsDoneMessage(items []pricing.Item) Message {
	var b strings.Builder
	b.WriteString("🛒 *Barang yang diinput:*\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s (%d %s)\n", i+1, item.Name, item.Qty, item.Unit)
	}
	b.WriteString("\nSekarang, *berapa total uang yang dibayar oleh konsumen?*\nContoh: `130000`")
	return markdown(b.String(), RemoveKeyboard{})
}

func totalAcceptedMessage(total decimal.Decimal) Message {
	return markdown(fmt.Sprintf("💰 Total bayar konsumen: *%s*.\n\nSekarang, pilih *Metode Pembayaran*", rupiah(total)), paymentKeyboard())
}

func confirmMessage(d Draft) Message {
	cost := pricing.TotalCost(d.Items)

	var b strings.Builder
	b.WriteString("📝 *KONFIRMASI TRANSAKSI*\n\n")
	fmt.Fprintf(&b, "Kasir: *%s*\n%s\n", d.CashierName, separator)
	for _, item := range d.Items {
		fmt.Fprintf(&b, "• %s (%d %s)\n", item.Name, item.Qty, item.Unit)
	}
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "💰 *Total Bayar:* *%s*\n", rupiah(d.TotalPayment))
	fmt.Fprintf(&b, "📦 *Total Modal:* %s\n", rupiah(cost))
	fmt.Fprintf(&b, "📈 *Total Selisih:* *%s*\n\n", rupiah(pricing.Margin(d.TotalPayment, cost)))
	fmt.Fprintf(&b, "*Bayar via:* *%s*\n\nApakah data sudah benar?", d.PaymentMethod)
	return markdown(b.String(), yesNoKeyboard())
}

func savedMessage(invoice string, total decimal.Decimal, acc *services.Access) Message {
	return markdown(fmt.Sprintf("✅ Transaksi `%s` (Total: %s) berhasil disimpan di database.", invoice, rupiah(total)), MainKeyboard(acc))
}

func invoiceCollisionMessage(invoice string) Message {
	return markdown(fmt.Sprintf("⚠️ Nomor invoice `%s` sudah terpakai. Tekan *%s* untuk menyimpan ulang dengan nomor baru.", invoice, BtnYes), yesNoKeyboard())
}

func notFoundMessage(invoice string, acc *services.Access) Message {
	return markdown(fmt.Sprintf("❌ Transaksi dengan invoice `%s` tidak ditemukan di toko ini.", invoice), MainKeyboard(acc))
}

func transactionDetailMessage(t *services.TransactionDetail, acc *services.Access, loc *time.Location) Message {
	var b strings.Builder
	b.WriteString("✅ *Transaksi Ditemukan*\n\n")
	fmt.Fprintf(&b, "🧾 *Invoice:* `%s`\n", t.InvoiceNumber)
	fmt.Fprintf(&b, "🏪 *Toko:* %s\n", t.StoreName)
	fmt.Fprintf(&b, "👤 *Kasir:* %s\n", t.CashierName)
	fmt.Fprintf(&b, "📅 *Tanggal:* %s\n", utils.FormatDateTimeID(t.TransactionDate.In(loc)))
	fmt.Fprintf(&b, "💳 *Bayar:* %s\n", t.PaymentMethod)
	b.WriteString(separator + "\n")
	for _, line := range t.Lines {
		fmt.Fprintf(&b, "• %s (%d %s) - %s\n", line.Name, line.Qty, line.Unit, rupiah(line.TotalConsumer))
	}
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "💰 *TOTAL:* *%s*", rupiah(t.TotalAmount))

	var markup Markup = MainKeyboard(acc)
	if acc != nil && acc.CanEdit() {
		markup = InlineKeyboard{{{Text: "✏️ Edit Transaksi Ini", Data: beginEditData(t.InvoiceNumber)}}}
	}
	return markdown(b.String(), markup)
}

func recentMessage(list []services.TransactionSummary, storeName string, loc *time.Location) Message {
	if len(list) == 0 {
		return markdown(fmt.Sprintf("📋 Belum ada transaksi di toko *%s*.", storeName), nil)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *TRANSAKSI TERAKHIR*\n🏪 *%s*\n%s\n", storeName, separator)
	for i, t := range list {
		fmt.Fprintf(&b, "%d. `%s`\n", i+1, t.InvoiceNumber)
		fmt.Fprintf(&b, "   %s | %s\n", utils.FormatDateTimeID(t.TransactionDate.In(loc)), t.CashierName)
		fmt.Fprintf(&b, "   %s | %s\n", t.PaymentMethod, rupiah(t.TotalAmount))
	}
	b.WriteString(separator + "\nKetik *🔍 Cari Transaksi* untuk melihat detail.")
	return markdown(b.String(), nil)
}

func editHubKeyboard() InlineKeyboard {
	return InlineKeyboard{
		{{Text: "👤 Ubah Kasir", Data: prefixEditField + "cashier"}, {Text: "💳 Ubah Pembayaran", Data: prefixEditField + "payment"}},
		{{Text: "➕ Tambah Item", Data: prefixEditField + "add_item"}, {Text: "🗑️ Hapus Item", Data: prefixEditField + "remove_item"}},
		{{Text: "✏️ Ubah Item", Data: prefixEditField + "edit_item"}},
		{{Text: "✅ Simpan Perubahan", Data: dataEditSave}},
		{{Text: "❌ Batal", Data: dataEditCancel}},
	}
}

// editHubMessage selalu menghitung ulang total dari baris saat ini.
func editHubMessage(e EditDraft) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "✏️ *Mode Edit: %s*\n\n", e.InvoiceNumber)
	fmt.Fprintf(&b, "Kasir: *%s*\n", e.CashierName)
	fmt.Fprintf(&b, "Bayar: *%s*\n", e.PaymentMethod)
	b.WriteString(separator + "\n")
	for i, line := range e.Lines {
		fmt.Fprintf(&b, "%d. %s (%d %s) - %s\n", i+1, line.Name, line.Qty, line.Unit, rupiah(line.TotalConsumer))
	}
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "TOTAL: *%s*\n\n", rupiah(e.Total()))
	b.WriteString("Pilih data yang ingin diubah:")
	return markdown(b.String(), editHubKeyboard())
}

func itemMenuKeyboard() InlineKeyboard {
	return InlineKeyboard{
		{{Text: "1. Nama", Data: prefixEditItemField + "name"}, {Text: "2. Jumlah & Unit", Data: prefixEditItemField + "qty"}},
		{{Text: "3. Harga Modal", Data: prefixEditItemField + "price_vp"}, {Text: "4. Total Bayar", Data: prefixEditItemField + "total_consumer"}},
		{{Text: "« Kembali ke Struk", Data: dataEditItemBack}},
	}
}

func itemMenuMessage(line pricing.Line) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "✏️ *Mengubah Item: %s*\n\n", line.Name)
	b.WriteString("*Detail Saat Ini:*\n")
	fmt.Fprintf(&b, "1. Nama: %s\n", line.Name)
	fmt.Fprintf(&b, "2. Jumlah: %d %s\n", line.Qty, line.Unit)
	fmt.Fprintf(&b, "3. Harga Modal/unit: %s\n", rupiah(line.PriceVp))
	fmt.Fprintf(&b, "4. Total Bayar Konsumen: %s\n\n", rupiah(line.TotalConsumer))
	b.WriteString("Pilih bagian yang ingin diubah:")
	return markdown(b.String(), itemMenuKeyboard())
}

func removeListMessage(e EditDraft) Message {
	var b strings.Builder
	b.WriteString("🗑️ Ketik *nomor* item yang ingin dihapus:\n")
	for i, line := range e.Lines {
		fmt.Fprintf(&b, "\n%d. %s", i+1, line.Name)
	}
	return markdown(b.String(), nil)
}

func selectItemMessage(e EditDraft) Message {
	kb := make(InlineKeyboard, 0, len(e.Lines))
	for i, line := range e.Lines {
		kb = append(kb, []InlineButton{{Text: strconv.Itoa(i+1) + ". " + line.Name, Data: editItemIndexData(i)}})
	}
	return Message{Text: msgEditSelectItem, Markup: kb}
}

func updatingMessage(invoice string) Message {
	return markdown(fmt.Sprintf("⏳ Menyimpan perubahan untuk invoice `%s`...", invoice), nil)
}

func updatedMessage(invoice string, acc *services.Access) Message {
	return markdown(fmt.Sprintf("✅ Invoice `%s` berhasil diperbarui!", invoice), MainKeyboard(acc))
}
