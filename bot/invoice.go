package bot

import (
	"fmt"
	"time"
)

const invoicePrefix = "VP"

// NewInvoiceNumber membuat nomor struk "VP-yyMMdd-NNNN". NNNN adalah 4 digit terakhir
// jam milidetik, jadi tidak dijamin unik; keunikan dijaga oleh database.
func NewInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", invoicePrefix, now.Format("060102"), now.UnixMilli()%10000)
}
