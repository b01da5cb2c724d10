package bot

import (
	"strconv"
	"strings"
)

// Callback data prefix.
const (
	prefixSetStore      = "set_active_store_"
	prefixEdit          = "edit_"
	prefixEditItemField = "edit_item_field_"
	prefixEditItemIdx   = "edit_item_idx_"
	prefixEditField     = "edit_field_"
	dataEditItemBack    = "edit_item_back"
	dataEditSave        = "edit_save"
	dataEditCancel      = "edit_cancel"
)

// Action adalah callback edit yang sudah diurai.
type Action interface {
	isAction()
}

type (
	// EditItemFieldAction: name | qty | price_vp | total_consumer
	EditItemFieldAction struct{ Field string }
	EditItemBackAction  struct{}
	// EditItemIndexAction.Index 0-based. -1 bila tidak bisa diurai.
	EditItemIndexAction struct{ Index int }
	// EditFieldAction: cashier | payment | add_item | remove_item | edit_item
	EditFieldAction  struct{ Field string }
	EditSaveAction   struct{}
	EditCancelAction struct{}
	BeginEditAction  struct{ InvoiceNumber string }
)

func (EditItemFieldAction) isAction() {}
func (EditItemBackAction) isAction()  {}
func (EditItemIndexAction) isAction() {}
func (EditFieldAction) isAction()     {}
func (EditSaveAction) isAction()      {}
func (EditCancelAction) isAction()    {}
func (BeginEditAction) isAction()     {}

// ParseAction mengurai callback data berawalan "edit_". Urutan pengecekan penting:
// prefix yang lebih spesifik harus dicek lebih dulu, sisanya dianggap nomor invoice.
func ParseAction(data string) (Action, bool) {
	switch {
	case !strings.HasPrefix(data, prefixEdit):
		return nil, false
	case strings.HasPrefix(data, prefixEditItemField):
		return EditItemFieldAction{Field: strings.TrimPrefix(data, prefixEditItemField)}, true
	case data == dataEditItemBack:
		return EditItemBackAction{}, true
	case strings.HasPrefix(data, prefixEditItemIdx):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, prefixEditItemIdx))
		if err != nil {
			idx = -1
		}
		return EditItemIndexAction{Index: idx}, true
	case strings.HasPrefix(data, prefixEditField):
		return EditFieldAction{Field: strings.TrimPrefix(data, prefixEditField)}, true
	case data == dataEditSave:
		return EditSaveAction{}, true
	case data == dataEditCancel:
		return EditCancelAction{}, true
	default:
		return BeginEditAction{InvoiceNumber: strings.TrimPrefix(data, prefixEdit)}, true
	}
}

// parseSetStore mengurai "set_active_store_<id>".
func parseSetStore(data string) (uint, bool) {
	if !strings.HasPrefix(data, prefixSetStore) {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(data, prefixSetStore), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func editItemIndexData(i int) string {
	return prefixEditItemIdx + strconv.Itoa(i)
}

func beginEditData(invoice string) string {
	return prefixEdit + invoice
}

func setStoreData(id uint) string {
	return prefixSetStore + strconv.FormatUint(uint64(id), 10)
}
