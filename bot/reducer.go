package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/kasir-bot/pricing"
	"github.com/yeremiapane/kasir-bot/services"
)

const msgChooseStoreFirst = "⚠️ Pilih toko aktif terlebih dahulu."

// Reduce menghitung sesi berikutnya dan efek yang harus dijalankan untuk satu event.
// Tidak ada I/O di sini dan sesi masukan tidak diubah. Sesi dengan State nil berarti
// sesi selesai dan harus dihapus.
func Reduce(s Session, ev Event) (Session, []Effect) {
	switch e := ev.(type) {
	case TextEvent:
		return reduceText(s, e)
	case CallbackEvent:
		return reduceCallback(s, e)
	case SaveResult:
		return reduceSaveResult(s, e)
	case UpdateResult:
		return reduceUpdateResult(s, e)
	case EditLoaded:
		return reduceEditLoaded(s, e)
	}
	return s, nil
}

func (s Session) with(st State) Session {
	s.State = st
	return s
}

func ended() Session {
	return Session{}
}

func send(m Message) Effect {
	return Send{Message: m}
}

// reject mengirim pesan validasi tanpa mengubah sesi.
func reject(s Session, err error) (Session, []Effect) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return s, []Effect{send(markdown(ve.Details, nil))}
	}
	return s, []Effect{send(plain(msgInternalError))}
}

// commandName mengambil "/start" dari "/start@kasirbot abc".
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return name
}

func isMainMenu(text string) bool {
	switch text {
	case BtnCreateReceipt, BtnDailyReport, BtnRegional, BtnSearch, BtnRecent, BtnSwitchStore:
		return true
	}
	return false
}

func reduceText(s Session, e TextEvent) (Session, []Effect) {
	acc := e.Access
	trimmed := strings.TrimSpace(e.Text)

	switch commandName(trimmed) {
	case CmdStart:
		return s, []Effect{send(welcomeMessage(acc))}
	case CmdProfile:
		return s, []Effect{send(profileMessage(acc))}
	}

	if isMainMenu(trimmed) {
		return mainMenu(acc, trimmed)
	}
	if strings.HasPrefix(trimmed, "/") {
		return s, nil
	}
	if !s.Active() {
		return s, []Effect{send(Message{Text: msgUnknownCommand, Markup: MainKeyboard(acc)})}
	}
	return continueSession(s, e)
}

// mainMenu selalu membuang sesi yang sedang berjalan.
func mainMenu(acc *services.Access, cmd string) (Session, []Effect) {
	needsStore := cmd == BtnCreateReceipt || cmd == BtnDailyReport || cmd == BtnSearch || cmd == BtnRecent
	if needsStore && acc.ActiveStore == nil {
		return ended(), []Effect{send(markdown(msgNoActiveStore, nil))}
	}

	switch cmd {
	case BtnCreateReceipt:
		return Session{State: CashierName{}}, []Effect{send(markdown(msgAskCashier, RemoveKeyboard{}))}
	case BtnDailyReport:
		return ended(), []Effect{
			send(plain(msgDailyWait)),
			DailyReport{StoreID: acc.ActiveStore.ID, StoreName: acc.ActiveStore.Name},
		}
	case BtnRegional:
		if !acc.IsRegionalHead() || acc.RegionID == nil {
			return ended(), []Effect{send(plain(msgRegionalOnly))}
		}
		return ended(), []Effect{send(plain(msgRegionalWait)), RegionalReport{RegionID: *acc.RegionID}}
	case BtnSearch:
		return Session{State: SearchInvoice{}}, []Effect{send(markdown(msgAskInvoice, RemoveKeyboard{}))}
	case BtnRecent:
		return ended(), []Effect{RecentTransactions{StoreID: acc.ActiveStore.ID, StoreName: acc.ActiveStore.Name}}
	case BtnSwitchStore:
		if len(acc.Stores) == 0 {
			return ended(), []Effect{send(plain(msgNoStores))}
		}
		return ended(), []Effect{send(storeSelectionMessage(acc.Stores))}
	}
	return ended(), nil
}

func continueSession(s Session, e TextEvent) (Session, []Effect) {
	text := e.Text
	trimmed := strings.TrimSpace(text)

	switch st := s.State.(type) {
	case CashierName:
		name, err := parseCashierName(text)
		if err != nil {
			return reject(s, err)
		}
		return s.with(AddItem{Draft: Draft{CashierName: name}}), []Effect{send(cashierAcceptedMessage(name))}

	case AddItem:
		if isDone(text) {
			if len(st.Draft.Items) == 0 {
				return reject(s, invalid(ErrEmptyCart, msgEmptyCart))
			}
			return s.with(TotalPayment{Draft: st.Draft.clone()}), []Effect{send(itemsDoneMessage(st.Draft.Items))}
		}
		item, err := parseItemLine(text)
		if err != nil {
			return reject(s, err)
		}
		d := st.Draft.clone()
		d.Items = append(d.Items, item)
		return s.with(AddItem{Draft: d}), []Effect{send(itemAddedMessage(d.Items))}

	case TotalPayment:
		total, err := parseTotalPayment(text)
		if err != nil {
			return reject(s, err)
		}
		d := st.Draft.clone()
		d.TotalPayment = total
		d.HasPayment = true
		return s.with(PaymentMethod{Draft: d}), []Effect{send(totalAcceptedMessage(total))}

	case PaymentMethod:
		d := st.Draft.clone()
		if trimmed == BtnBack {
			d.TotalPayment = decimal.Zero
			d.HasPayment = false
			return s.with(AddItem{Draft: d}), []Effect{send(markdown(msgBackToItems, doneKeyboard()))}
		}
		method, err := parsePaymentMethod(text)
		if err != nil {
			return reject(s, err)
		}
		d.PaymentMethod = method
		return s.with(ConfirmSave{Draft: d}), []Effect{send(confirmMessage(d))}

	case ConfirmSave:
		acc := e.Access
		if trimmed != BtnYes {
			return ended(), []Effect{send(Message{Text: msgCancelled, Markup: MainKeyboard(acc)})}
		}
		if acc.ActiveStore == nil {
			return ended(), []Effect{send(markdown(msgNoActiveStore, nil))}
		}
		d := st.Draft.clone()
		return s, []Effect{
			send(plain(msgSaving)),
			SaveTransaction{
				Input: services.CreateInput{
					CashierName:   d.CashierName,
					PaymentMethod: d.PaymentMethod,
					Items:         d.Items,
					TotalPayment:  d.TotalPayment,
				},
				StoreID: acc.ActiveStore.ID,
				UserID:  acc.UserID,
			},
		}

	case SearchInvoice:
		if trimmed == "" {
			return reject(s, invalid(ErrEmpty, msgAskInvoice))
		}
		if e.Access.ActiveStore == nil {
			return ended(), []Effect{send(markdown(msgNoActiveStore, nil))}
		}
		return ended(), []Effect{ShowTransaction{InvoiceNumber: trimmed, StoreID: e.Access.ActiveStore.ID}}

	case EditMenu, EditSelectItem, EditMenuItem:
		return s, []Effect{send(plain(msgUseButtons))}

	case EditCashier:
		name, err := parseCashierName(text)
		if err != nil {
			return reject(s, err)
		}
		ed := st.Edit.clone()
		ed.CashierName = name
		return toHub(s, ed)

	case EditPayment:
		if trimmed == BtnBack {
			return toHub(s, st.Edit)
		}
		method, err := parsePaymentMethod(text)
		if err != nil {
			return reject(s, err)
		}
		ed := st.Edit.clone()
		ed.PaymentMethod = method
		return toHub(s, ed)

	case EditAddItem:
		line, err := parseEditItemLine(text)
		if err != nil {
			return reject(s, err)
		}
		ed := st.Edit.clone()
		ed.Lines = append(ed.Lines, line)
		return toHub(s, ed)

	case EditRemoveItem:
		idx, err := parseItemNumber(text, len(st.Edit.Lines))
		if err != nil {
			return reject(s, err)
		}
		ed := st.Edit.clone()
		ed.Lines = append(ed.Lines[:idx], ed.Lines[idx+1:]...)
		return toHub(s, ed)

	case EditItemName:
		return editItem(s, st.Edit, st.Index, func(l *pricing.Line) error {
			name, err := parseItemName(text)
			l.Name = name
			return err
		})

	case EditItemQty:
		return editItem(s, st.Edit, st.Index, func(l *pricing.Line) error {
			qty, unit, err := parseQtyUnit(text)
			l.Qty, l.Unit = qty, unit
			return err
		})

	case EditItemPriceVp:
		return editItem(s, st.Edit, st.Index, func(l *pricing.Line) error {
			price, err := parseNonNegative(text, msgNumberInvalid)
			l.PriceVp = price
			return err
		})

	case EditItemTotalConsumer:
		return editItem(s, st.Edit, st.Index, func(l *pricing.Line) error {
			total, err := parseNonNegative(text, msgNumberInvalid)
			l.TotalConsumer = total
			return err
		})
	}
	return s, nil
}

// toHub kembali ke menu edit. Bila HubMessageID kosong, Dispatcher mengirim pesan baru.
func toHub(s Session, ed EditDraft) (Session, []Effect) {
	return Session{State: EditMenu{Edit: ed}, HubMessageID: s.HubMessageID}, []Effect{RenderHub{Message: editHubMessage(ed)}}
}

func toItemMenu(s Session, ed EditDraft, idx int) (Session, []Effect) {
	return Session{State: EditMenuItem{Edit: ed, Index: idx}, HubMessageID: s.HubMessageID},
		[]Effect{RenderHub{Message: itemMenuMessage(ed.Lines[idx])}}
}

// editItem menerapkan apply pada salinan baris idx lalu kembali ke menu item.
func editItem(s Session, ed EditDraft, idx int, apply func(*pricing.Line) error) (Session, []Effect) {
	if idx < 0 || idx >= len(ed.Lines) {
		return toHub(s, ed)
	}
	line := ed.Lines[idx]
	if err := apply(&line); err != nil {
		return reject(s, err)
	}
	ed = ed.clone()
	ed.Lines[idx] = line
	return toItemMenu(s, ed, idx)
}

func reduceCallback(s Session, e CallbackEvent) (Session, []Effect) {
	acc := e.Access
	answer := AnswerCallback{CallbackID: e.CallbackID}

	if storeID, ok := parseSetStore(e.Data); ok {
		if !acc.CanAccessStore(storeID) {
			return s, []Effect{AnswerCallback{CallbackID: e.CallbackID, Text: msgStoreDenied, Alert: true}}
		}
		return s, []Effect{SelectStore{StoreID: storeID, MessageID: e.MessageID, CallbackID: e.CallbackID}}
	}

	action, ok := ParseAction(e.Data)
	if !ok {
		return s, []Effect{answer}
	}
	if !acc.CanEdit() {
		return s, []Effect{AnswerCallback{CallbackID: e.CallbackID, Text: msgNoEditPermission, Alert: true}}
	}

	if begin, ok := action.(BeginEditAction); ok {
		if acc.ActiveStore == nil {
			return s, []Effect{AnswerCallback{CallbackID: e.CallbackID, Text: msgChooseStoreFirst, Alert: true}}
		}
		return s, []Effect{LoadForEdit{
			InvoiceNumber: begin.InvoiceNumber,
			StoreID:       acc.ActiveStore.ID,
			MessageID:     e.MessageID,
			CallbackID:    e.CallbackID,
		}}
	}

	ed, editing := editDraftOf(s.State)
	if !editing {
		return s, []Effect{AnswerCallback{CallbackID: e.CallbackID, Text: msgNoSession}}
	}

	switch a := action.(type) {
	case EditItemFieldAction:
		idx, ok := itemIndexOf(s.State)
		if !ok || idx >= len(ed.Lines) {
			return s, []Effect{answer}
		}
		var (
			next   State
			prompt string
		)
		switch a.Field {
		case "name":
			next, prompt = EditItemName{Edit: ed, Index: idx}, msgEditAskName
		case "qty":
			next, prompt = EditItemQty{Edit: ed, Index: idx}, msgEditAskQty
		case "price_vp":
			next, prompt = EditItemPriceVp{Edit: ed, Index: idx}, msgEditAskPriceVp
		case "total_consumer":
			next, prompt = EditItemTotalConsumer{Edit: ed, Index: idx}, msgEditAskTotal
		default:
			return s, []Effect{answer}
		}
		effects := leaveHub(s, e.MessageID)
		effects = append(effects, send(markdown(prompt, nil)), answer)
		return Session{State: next}, effects

	case EditItemBackAction:
		next, effects := toHub(s, ed)
		return next, append(effects, answer)

	case EditItemIndexAction:
		if a.Index < 0 || a.Index >= len(ed.Lines) {
			return s, []Effect{AnswerCallback{CallbackID: e.CallbackID, Text: msgNoItemsEdit}}
		}
		hub := s.HubMessageID
		if hub == e.MessageID {
			hub = 0
		}
		next, effects := toItemMenu(Session{HubMessageID: hub}, ed, a.Index)
		effects = append([]Effect{DeleteMessage{MessageID: e.MessageID}}, effects...)
		return next, append(effects, answer)

	case EditFieldAction:
		var (
			next State
			msg  Message
		)
		switch a.Field {
		case "cashier":
			next, msg = EditCashier{Edit: ed}, plain(msgEditAskCashier)
		case "payment":
			next, msg = EditPayment{Edit: ed}, Message{Text: msgEditAskPayment, Markup: paymentKeyboard()}
		case "add_item":
			next, msg = EditAddItem{Edit: ed}, markdown(msgEditAskItem, nil)
		case "remove_item":
			if len(ed.Lines) == 0 {
				return s, []Effect{AnswerCallback{CallbackID: e.CallbackID, Text: msgNoItemsRemove}}
			}
			next, msg = EditRemoveItem{Edit: ed}, removeListMessage(ed)
		case "edit_item":
			if len(ed.Lines) == 0 {
				return s, []Effect{AnswerCallback{CallbackID: e.CallbackID, Text: msgNoItemsEdit}}
			}
			next, msg = EditSelectItem{Edit: ed}, selectItemMessage(ed)
		default:
			return s, []Effect{answer}
		}
		effects := leaveHub(s, e.MessageID)
		effects = append(effects, send(msg), answer)
		return Session{State: next}, effects

	case EditSaveAction:
		effects := []Effect{}
		if s.HubMessageID != 0 {
			effects = append(effects, EditMessage{MessageID: s.HubMessageID, Message: updatingMessage(ed.InvoiceNumber)})
		}
		ed = ed.clone()
		effects = append(effects,
			UpdateTransaction{
				InvoiceNumber: ed.InvoiceNumber,
				Input: services.UpdateInput{
					StoreID:       ed.StoreID,
					CashierName:   ed.CashierName,
					PaymentMethod: ed.PaymentMethod,
					Lines:         ed.Lines,
				},
				UserID: acc.UserID,
			},
			answer,
		)
		return s, effects

	case EditCancelAction:
		return ended(), []Effect{
			EditMessage{MessageID: e.MessageID, Message: plain(msgEditCancelled)},
			send(Message{Text: msgNextMenu, Markup: MainKeyboard(acc)}),
			answer,
		}
	}
	return s, []Effect{answer}
}

// leaveHub menghapus pesan menu (dan pesan tempat tombol ditekan) saat pindah ke
// langkah input teks.
func leaveHub(s Session, callbackMessageID int) []Effect {
	var effects []Effect
	if callbackMessageID != 0 {
		effects = append(effects, DeleteMessage{MessageID: callbackMessageID})
	}
	if s.HubMessageID != 0 && s.HubMessageID != callbackMessageID {
		effects = append(effects, DeleteMessage{MessageID: s.HubMessageID})
	}
	return effects
}

func reduceSaveResult(s Session, e SaveResult) (Session, []Effect) {
	st, ok := s.State.(ConfirmSave)
	if !ok {
		return s, nil
	}
	switch {
	case e.Err == nil:
		return ended(), []Effect{send(savedMessage(e.InvoiceNumber, e.Result.TotalAmount, e.Access))}
	case errors.Is(e.Err, services.ErrDuplicateInvoice):
		// sesi tetap di konfirmasi, user cukup menekan Ya lagi
		d := st.Draft.clone()
		d.InvoiceNumber = e.InvoiceNumber
		return s.with(ConfirmSave{Draft: d}), []Effect{send(invoiceCollisionMessage(e.InvoiceNumber))}
	default:
		return ended(), []Effect{send(Message{Text: msgSaveFailed, Markup: MainKeyboard(e.Access)})}
	}
}

func reduceUpdateResult(s Session, e UpdateResult) (Session, []Effect) {
	if _, ok := editDraftOf(s.State); !ok {
		return s, nil
	}
	switch {
	case e.Err == nil:
		return ended(), []Effect{send(updatedMessage(e.InvoiceNumber, e.Access))}
	case errors.Is(e.Err, services.ErrNotFound):
		return ended(), []Effect{send(markdown(fmt.Sprintf("❌ Transaksi `%s` tidak ditemukan.", e.InvoiceNumber), MainKeyboard(e.Access)))}
	default:
		return ended(), []Effect{send(Message{Text: msgUpdateFailed, Markup: MainKeyboard(e.Access)})}
	}
}

func reduceEditLoaded(s Session, e EditLoaded) (Session, []Effect) {
	if e.Err != nil {
		msg := msgEditLoadFailed
		if errors.Is(e.Err, services.ErrNotFound) {
			msg = msgEditNotFound
		}
		return s, []Effect{AnswerCallback{CallbackID: e.CallbackID, Text: msg, Alert: true}}
	}

	d := e.Detail
	ed := EditDraft{
		InvoiceNumber:   d.InvoiceNumber,
		StoreID:         d.StoreID,
		StoreName:       d.StoreName,
		CashierName:     d.CashierName,
		PaymentMethod:   d.PaymentMethod,
		TransactionDate: d.TransactionDate,
		Lines:           append([]pricing.Line(nil), d.Lines...),
	}
	return Session{State: EditMenu{Edit: ed}, HubMessageID: e.MessageID}, []Effect{
		RenderHub{Message: editHubMessage(ed)},
		AnswerCallback{CallbackID: e.CallbackID},
	}
}
