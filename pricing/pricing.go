// Package pricing menghitung modal, alokasi pendapatan konsumen dan selisih (margin)
// untuk satu keranjang. Tidak ada I/O di paket ini.
package pricing

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrDivisionByZero dikembalikan saat harga per unit diminta untuk item dengan jumlah 0.
var ErrDivisionByZero = errors.New("pricing: quantity is zero")

// Item adalah satu baris keranjang seperti yang diinput kasir.
type Item struct {
	Name    string
	Qty     int
	Unit    string
	PriceVp decimal.Decimal // modal per unit
}

// Line adalah item beserta total uang konsumen yang menjadi bagiannya.
type Line struct {
	Item
	TotalConsumer decimal.Decimal
}

// LineCost = qty * modal per unit.
func LineCost(item Item) decimal.Decimal {
	return item.PriceVp.Mul(decimal.NewFromInt(int64(item.Qty)))
}

// TotalCost menjumlahkan modal seluruh item.
func TotalCost(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineCost(item))
	}
	return total
}

// CostOfLines sama dengan TotalCost tetapi untuk Line.
func CostOfLines(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineCost(line.Item))
	}
	return total
}

// TotalRevenue menjumlahkan TotalConsumer seluruh line.
func TotalRevenue(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.TotalConsumer)
	}
	return total
}

// Allocate membagi totalPayment ke setiap item secara proporsional terhadap modalnya.
//
// Metode sisa terbesar: setiap bagian dipotong ke bawah ke 2 desimal, lalu sisa sen
// dibagikan satu per satu ke item dengan pecahan terbesar (urutan item bila sama).
// Jumlah seluruh bagian selalu sama persis dengan totalPayment dan tidak ada bagian
// yang negatif. Jika total modal 0, semua bagian bernilai 0.
func Allocate(items []Item, totalPayment decimal.Decimal) []Line {
	lines := make([]Line, len(items))
	for i, item := range items {
		lines[i] = Line{Item: item, TotalConsumer: decimal.Zero}
	}

	totalCost := TotalCost(items)
	if !totalCost.IsPositive() || !totalPayment.IsPositive() {
		return lines
	}

	fractions := make([]decimal.Decimal, len(items))
	order := make([]int, 0, len(items))
	allocated := decimal.Zero
	for i, item := range items {
		cost := LineCost(item)
		if !cost.IsPositive() {
			continue
		}
		raw := cost.Mul(totalPayment).Div(totalCost)
		floor := raw.Truncate(2)
		lines[i].TotalConsumer = floor
		fractions[i] = raw.Sub(floor)
		allocated = allocated.Add(floor)
		order = append(order, i)
	}
	if len(order) == 0 {
		return lines
	}

	sort.SliceStable(order, func(a, b int) bool {
		return fractions[order[a]].GreaterThan(fractions[order[b]])
	})

	cent := decimal.New(1, -2)
	leftover := totalPayment.Sub(allocated)
	for k := 0; leftover.GreaterThanOrEqual(cent); k++ {
		i := order[k%len(order)]
		lines[i].TotalConsumer = lines[i].TotalConsumer.Add(cent)
		leftover = leftover.Sub(cent)
	}
	// totalPayment dengan lebih dari 2 desimal
	if leftover.IsPositive() {
		i := order[0]
		lines[i].TotalConsumer = lines[i].TotalConsumer.Add(leftover)
	}
	return lines
}

// PerUnitConsumerPrice = TotalConsumer / Qty, dibulatkan ke 4 desimal.
func PerUnitConsumerPrice(line Line) (decimal.Decimal, error) {
	if line.Qty == 0 {
		return decimal.Zero, ErrDivisionByZero
	}
	return line.TotalConsumer.Div(decimal.NewFromInt(int64(line.Qty))).Round(4), nil
}

// ConsumerTotalFromUnit merekonstruksi total konsumen dari harga per unit yang tersimpan.
func ConsumerTotalFromUnit(qty int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// Margin = pendapatan - modal. Nilai negatif berarti rugi.
func Margin(revenue, cost decimal.Decimal) decimal.Decimal {
	return revenue.Sub(cost)
}
