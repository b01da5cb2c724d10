package bot

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/kasir-bot/pricing"
)

// Batas panjang mengikuti kolom database.
const (
	maxCashierName   = 50
	maxPaymentMethod = 50
	maxProductName   = 100
	maxUnit          = 20
)

const (
	msgCashierTooLong = "⚠️ Nama kasir terlalu panjang."
	msgCashierEmpty   = "⚠️ Nama kasir tidak boleh kosong."
	msgItemFormat     = "⚠️ Format salah. Gunakan: `Nama, Jumlah, Unit, Modal/unit`"
	msgItemInvalid    = "⚠️ Input tidak valid. Pastikan *Jumlah* dan *Modal* adalah angka."
	msgItemTooLong    = "⚠️ Nama barang maksimal 100 karakter dan unit maksimal 20 karakter."
	msgEmptyCart      = "⚠️ Keranjang masih kosong. Tambahkan minimal satu item."
	msgTotalInvalid   = "⚠️ Masukkan total bayar dalam bentuk angka yang valid."
	msgMethodTooLong  = "⚠️ Metode pembayaran terlalu panjang."
	msgEditItemFormat = "⚠️ Format salah. Gunakan: `Nama, Jumlah, Unit, Harga Modal, Total Bayar`"
	msgEditItemNumber = "⚠️ Pastikan Jumlah & Harga adalah angka."
	msgIndexInvalid   = "⚠️ Nomor item tidak valid."
	msgQtyUnitFormat  = "⚠️ Format salah. Contoh: `30, ml`"
	msgNumberInvalid  = "⚠️ Masukkan angka yang valid."
	msgNameEmpty      = "⚠️ Nama barang tidak boleh kosong."
	msgMethodEmpty    = "⚠️ Pilih metode pembayaran."
)

func isDone(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "selesai")
}

func splitFields(text string) []string {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseAmount menerima bilangan bulat dengan titik sebagai pemisah ribuan ("130.000").
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ".", ""))
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return decimal.Zero, ErrNotANumber
	}
	return decimal.NewFromInt(n), nil
}

func parseQty(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrNotANumber
	}
	if n <= 0 {
		return 0, ErrNonPositive
	}
	return n, nil
}

func parseCashierName(text string) (string, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return "", invalid(ErrEmpty, msgCashierEmpty)
	}
	if utf8.RuneCountInString(name) > maxCashierName {
		return "", invalid(ErrTooLong, msgCashierTooLong)
	}
	return name, nil
}

// parsePaymentMethod menerima teks apa pun sebagai metode bayar, selama tidak kosong
// dan muat di kolom payment_method.
func parsePaymentMethod(text string) (string, error) {
	method := strings.TrimSpace(text)
	if method == "" {
		return "", invalid(ErrEmpty, msgMethodEmpty)
	}
	if utf8.RuneCountInString(method) > maxPaymentMethod {
		return "", invalid(ErrTooLong, msgMethodTooLong)
	}
	return method, nil
}

func checkNameUnit(name, unit string) error {
	if name == "" || unit == "" {
		return invalid(ErrEmpty, msgItemInvalid)
	}
	if utf8.RuneCountInString(name) > maxProductName || utf8.RuneCountInString(unit) > maxUnit {
		return invalid(ErrTooLong, msgItemTooLong)
	}
	return nil
}

// parseItemLine mengurai "Nama, Jumlah, Unit, Modal/unit".
func parseItemLine(text string) (pricing.Item, error) {
	parts := splitFields(text)
	if len(parts) != 4 {
		return pricing.Item{}, invalid(ErrBadFormat, msgItemFormat)
	}
	name, qtyStr, unit, priceStr := parts[0], parts[1], parts[2], parts[3]

	qty, err := parseQty(qtyStr)
	if err != nil {
		return pricing.Item{}, invalid(err, msgItemInvalid)
	}
	price, err := parseAmount(priceStr)
	if err != nil {
		return pricing.Item{}, invalid(err, msgItemInvalid)
	}
	if price.IsNegative() {
		return pricing.Item{}, invalid(ErrNegative, msgItemInvalid)
	}
	if err := checkNameUnit(name, unit); err != nil {
		return pricing.Item{}, err
	}
	return pricing.Item{Name: name, Qty: qty, Unit: unit, PriceVp: price}, nil
}

func parseTotalPayment(text string) (decimal.Decimal, error) {
	total, err := parseAmount(text)
	if err != nil {
		return decimal.Zero, invalid(err, msgTotalInvalid)
	}
	if !total.IsPositive() {
		return decimal.Zero, invalid(ErrNonPositive, msgTotalInvalid)
	}
	return total, nil
}

// parseEditItemLine mengurai "Nama, Jumlah, Unit, Harga Modal, Total Bayar".
func parseEditItemLine(text string) (pricing.Line, error) {
	parts := splitFields(text)
	if len(parts) != 5 {
		return pricing.Line{}, invalid(ErrBadFormat, msgEditItemFormat)
	}
	name, qtyStr, unit := parts[0], parts[1], parts[2]

	qty, err := parseQty(qtyStr)
	if err != nil {
		return pricing.Line{}, invalid(err, msgEditItemNumber)
	}
	price, err := parseNonNegative(parts[3], msgEditItemNumber)
	if err != nil {
		return pricing.Line{}, err
	}
	total, err := parseNonNegative(parts[4], msgEditItemNumber)
	if err != nil {
		return pricing.Line{}, err
	}
	if err := checkNameUnit(name, unit); err != nil {
		return pricing.Line{}, err
	}
	return pricing.Line{
		Item:          pricing.Item{Name: name, Qty: qty, Unit: unit, PriceVp: price},
		TotalConsumer: total,
	}, nil
}

func parseNonNegative(text, details string) (decimal.Decimal, error) {
	v, err := parseAmount(text)
	if err != nil {
		return decimal.Zero, invalid(err, details)
	}
	if v.IsNegative() {
		return decimal.Zero, invalid(ErrNegative, details)
	}
	return v, nil
}

// parseItemNumber mengubah nomor 1-based menjadi index 0-based.
func parseItemNumber(text string, count int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, invalid(ErrNotANumber, msgIndexInvalid)
	}
	if n < 1 || n > count {
		return 0, invalid(ErrOutOfRange, msgIndexInvalid)
	}
	return n - 1, nil
}

func parseItemName(text string) (string, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return "", invalid(ErrEmpty, msgNameEmpty)
	}
	if utf8.RuneCountInString(name) > maxProductName {
		return "", invalid(ErrTooLong, msgItemTooLong)
	}
	return name, nil
}

// parseQtyUnit mengurai "Jumlah, Unit".
func parseQtyUnit(text string) (int, string, error) {
	parts := splitFields(text)
	if len(parts) != 2 {
		return 0, "", invalid(ErrBadFormat, msgQtyUnitFormat)
	}
	qty, err := parseQty(parts[0])
	if err != nil {
		return 0, "", invalid(err, msgQtyUnitFormat)
	}
	if parts[1] == "" {
		return 0, "", invalid(ErrEmpty, msgQtyUnitFormat)
	}
	if utf8.RuneCountInString(parts[1]) > maxUnit {
		return 0, "", invalid(ErrTooLong, msgItemTooLong)
	}
	return qty, parts[1], nil
}
