package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/kasir-bot/services"
	"github.com/yeremiapane/kasir-bot/utils"
)

const reportRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// FormatDailyReport menyusun laporan harian toko untuk chat.
func FormatDailyReport(s *services.DailySummary, storeName string, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *LAPORAN PENJUALAN HARIAN*\n🏪 *%s*\n%s\n", storeName, reportRule)
	fmt.Fprintf(&b, "📅 %s\n\n", utils.FormatDateID(s.Date.In(loc)))
	fmt.Fprintf(&b, "💰 *Total Pendapatan:* %s\n", rupiah(s.TotalSales))
	fmt.Fprintf(&b, "🧾 *Jumlah Transaksi:* %d transaksi\n", s.TransactionCount)
	fmt.Fprintf(&b, "📈 *Total Selisih (Profit/Rugi):* %s\n%s\n", rupiah(s.Margin), reportRule)

	if len(s.TopProducts) > 0 {
		b.WriteString("\n🔥 *PRODUK TERLARIS:*\n")
		for i, p := range s.TopProducts {
			fmt.Fprintf(&b, "%d. %s\n   Terjual: %d %s | %s\n", i+1, p.Name, p.Quantity, p.Unit, rupiah(p.Revenue))
		}
	} else {
		b.WriteString("\n_Tidak ada produk yang terjual hari ini._\n")
	}

	if len(s.PaymentMethods) > 0 {
		b.WriteString("\n💳 *METODE PEMBAYARAN:*\n")
		for _, m := range s.PaymentMethods {
			fmt.Fprintf(&b, "• %s: %dx (%s)\n", m.Method, m.Count, rupiah(m.Total))
		}
	}

	b.WriteString("\n" + reportRule)
	return b.String()
}

// FormatRegionalReport menyusun laporan regional untuk chat.
func FormatRegionalReport(s *services.RegionalSummary, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌍 *LAPORAN REGIONAL HARIAN*\n📍 *%s*\n%s\n", s.RegionName, reportRule)
	fmt.Fprintf(&b, "📅 %s\n\n", utils.FormatDateID(s.Date.In(loc)))
	fmt.Fprintf(&b, "💰 *Total Pendapatan:* %s\n", rupiah(s.TotalSales))
	fmt.Fprintf(&b, "🧾 *Total Transaksi:* %d\n", s.TransactionCount)
	fmt.Fprintf(&b, "📈 *Total Selisih Regional:* %s\n%s\n\n", rupiah(s.TotalMargin), reportRule)
	b.WriteString("📍 *BREAKDOWN PER TOKO:*\n")

	if s.TotalSales.IsPositive() {
		for i, st := range s.Stores {
			fmt.Fprintf(&b, "\n%d. *%s*\n", i+1, st.StoreName)
			fmt.Fprintf(&b, "   Pendapatan: %s (%s%%)\n", rupiah(st.TotalSales), st.SharePercent.StringFixed(1))
			fmt.Fprintf(&b, "   Transaksi: %dx\n", st.TransactionCount)
			fmt.Fprintf(&b, "   Selisih: *%s*\n", rupiah(st.Margin))
		}
	} else {
		b.WriteString("\n_Tidak ada penjualan di regional ini hari ini._\n")
	}

	b.WriteString("\n" + reportRule)
	return b.String()
}
