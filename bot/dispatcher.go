package bot

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/kasir-bot/metrics"
	"github.com/yeremiapane/kasir-bot/services"
	"github.com/yeremiapane/kasir-bot/session"
	"github.com/yeremiapane/kasir-bot/utils"
)

const (
	defaultDebounce    = time.Second
	defaultRecentLimit = 10
)

type Options struct {
	// Location untuk tanggal laporan dan nomor invoice. Default time.Local.
	Location       *time.Location
	DebounceWindow time.Duration
	RecentLimit    int
	Clock          func() time.Time
}

// Dispatcher menjalankan Reduce untuk setiap event masuk: debounce, cek akses,
// kunci per chat, lalu menjalankan efek yang dihasilkan.
type Dispatcher struct {
	transport Transport
	access    AccessResolver
	gateway   Gateway
	reports   Reporter
	sessions  session.Store[Session]
	locks     *session.KeyedMutex
	debounce  *session.Debouncer

	loc         *time.Location
	now         func() time.Time
	recentLimit int
}

func NewDispatcher(t Transport, access AccessResolver, gw Gateway, reports Reporter, sessions session.Store[Session], opts Options) *Dispatcher {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = defaultDebounce
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = defaultRecentLimit
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	debounce := session.NewDebouncer(opts.DebounceWindow)
	debounce.SetClock(opts.Clock)

	return &Dispatcher{
		transport:   t,
		access:      access,
		gateway:     gw,
		reports:     reports,
		sessions:    sessions,
		locks:       session.NewKeyedMutex(),
		debounce:    debounce,
		loc:         opts.Location,
		now:         opts.Clock,
		recentLimit: opts.RecentLimit,
	}
}

// Debouncer dipakai main untuk menjalankan pembersihan berkala.
func (d *Dispatcher) Debouncer() *session.Debouncer {
	return d.debounce
}

// Handle memproses satu TextEvent atau CallbackEvent sampai selesai. Event dari chat
// yang sama diproses berurutan; chat berbeda berjalan paralel.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) error {
	chatID, kind := inbound(ev)
	if kind == "" {
		return nil
	}
	log := utils.InfoLogger.WithFields(logrus.Fields{"chat_id": chatID, "event": kind})

	if !d.debounce.Allow(chatID) {
		metrics.EventsDropped.WithLabelValues("debounce").Inc()
		log.Debug("event dropped by debounce")
		return nil
	}

	unlock := d.locks.Lock(chatID)
	defer unlock()

	acc, err := d.access.Resolve(ctx, chatID)
	if err != nil {
		return d.deny(ctx, ev, err)
	}
	ev = attachAccess(ev, acc)
	metrics.EventsHandled.WithLabelValues(kind).Inc()

	sess, _ := d.sessions.Get(chatID)
	queue := []Event{ev}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		before := stepOf(sess)
		next, effects := Reduce(sess, cur)
		sess = next
		if after := stepOf(sess); after != before {
			log.WithFields(logrus.Fields{"from": before, "to": after}).Debug("session step changed")
		}

		for _, eff := range effects {
			if feedback := d.run(ctx, chatID, acc, &sess, eff); feedback != nil {
				queue = append(queue, feedback)
			}
		}
	}

	if sess.Active() {
		d.sessions.Set(chatID, sess)
	} else {
		d.sessions.Delete(chatID)
	}
	return nil
}

func inbound(ev Event) (int64, string) {
	switch e := ev.(type) {
	case TextEvent:
		return e.ChatID, "text"
	case CallbackEvent:
		return e.ChatID, "callback"
	}
	return 0, ""
}

func attachAccess(ev Event, acc *services.Access) Event {
	switch e := ev.(type) {
	case TextEvent:
		e.Access = acc
		return e
	case CallbackEvent:
		e.Access = acc
		return e
	}
	return ev
}

func stepOf(s Session) string {
	if s.State == nil {
		return "NONE"
	}
	return s.State.Step()
}

func (d *Dispatcher) deny(ctx context.Context, ev Event, err error) error {
	chatID, _ := inbound(ev)
	reply := msgAccessDenied
	result := ErrAccessDenied

	if errors.Is(err, services.ErrUserNotRegistered) {
		metrics.EventsDropped.WithLabelValues("access_denied").Inc()
		utils.InfoLogger.WithField("chat_id", chatID).Info("access denied")
	} else {
		utils.ErrorLogger.WithError(err).WithField("chat_id", chatID).Error("failed to resolve access")
		reply = msgInternalError
		result = err
	}

	switch e := ev.(type) {
	case TextEvent:
		d.send(ctx, chatID, plain(reply))
	case CallbackEvent:
		d.answer(ctx, e.CallbackID, reply, false)
	}
	return result
}

// run menjalankan satu efek. Efek I/O yang mengubah sesi mengembalikan event hasil.
func (d *Dispatcher) run(ctx context.Context, chatID int64, acc *services.Access, sess *Session, eff Effect) Event {
	log := utils.InfoLogger.WithField("chat_id", chatID)

	switch e := eff.(type) {
	case Send:
		d.send(ctx, chatID, e.Message)

	case RenderHub:
		if sess.HubMessageID != 0 {
			err := d.transport.Edit(ctx, chatID, sess.HubMessageID, e.Message)
			if err == nil {
				return nil
			}
			log.WithError(err).Warn("edit menu message is stale, sending a new one")
		}
		if id, err := d.send(ctx, chatID, e.Message); err == nil {
			sess.HubMessageID = id
		} else {
			sess.HubMessageID = 0
		}

	case EditMessage:
		if err := d.transport.Edit(ctx, chatID, e.MessageID, e.Message); err != nil {
			log.WithError(err).Debug("edit message failed")
		}

	case DeleteMessage:
		if err := d.transport.Delete(ctx, chatID, e.MessageID); err != nil {
			log.WithError(err).Debug("delete message failed")
		}

	case AnswerCallback:
		d.answer(ctx, e.CallbackID, e.Text, e.Alert)

	case SaveTransaction:
		in := e.Input
		in.InvoiceNumber = NewInvoiceNumber(d.now().In(d.loc))
		res, err := d.gateway.Create(ctx, in, e.StoreID, e.UserID)
		d.logWrite("create", in.InvoiceNumber, chatID, err)
		return SaveResult{InvoiceNumber: in.InvoiceNumber, Result: res, Err: err, Access: acc}

	case UpdateTransaction:
		err := d.gateway.Update(ctx, e.InvoiceNumber, e.Input, e.UserID)
		d.logWrite("update", e.InvoiceNumber, chatID, err)
		return UpdateResult{InvoiceNumber: e.InvoiceNumber, Err: err, Access: acc}

	case LoadForEdit:
		detail, err := d.gateway.FindByInvoice(ctx, e.InvoiceNumber, e.StoreID)
		if err != nil && !errors.Is(err, services.ErrNotFound) {
			utils.ErrorLogger.WithError(err).WithField("invoice", e.InvoiceNumber).Error("failed to load transaction for edit")
		}
		return EditLoaded{Detail: detail, Err: err, MessageID: e.MessageID, CallbackID: e.CallbackID, Access: acc}

	case ShowTransaction:
		d.showTransaction(ctx, chatID, acc, e)

	case DailyReport:
		summary, err := d.reports.Daily(ctx, d.now().In(d.loc), e.StoreID)
		if err != nil {
			utils.ErrorLogger.WithError(err).WithField("store_id", e.StoreID).Error("failed to build daily report")
			d.send(ctx, chatID, plain(msgDailyFailed))
			return nil
		}
		d.send(ctx, chatID, markdown(FormatDailyReport(summary, e.StoreName, d.loc), nil))

	case RegionalReport:
		summary, err := d.reports.Regional(ctx, d.now().In(d.loc), e.RegionID)
		if err != nil {
			utils.ErrorLogger.WithError(err).WithField("region_id", e.RegionID).Error("failed to build regional report")
			d.send(ctx, chatID, plain(msgRegionalFailed))
			return nil
		}
		d.send(ctx, chatID, markdown(FormatRegionalReport(summary, d.loc), nil))

	case RecentTransactions:
		list, err := d.gateway.Recent(ctx, e.StoreID, d.recentLimit)
		if err != nil {
			utils.ErrorLogger.WithError(err).WithField("store_id", e.StoreID).Error("failed to list recent transactions")
			d.send(ctx, chatID, plain(msgRecentFailed))
			return nil
		}
		d.send(ctx, chatID, recentMessage(list, e.StoreName, d.loc))

	case SelectStore:
		store, err := d.access.SetActiveStore(ctx, acc, e.StoreID)
		switch {
		case errors.Is(err, services.ErrStoreNotAllowed):
			d.answer(ctx, e.CallbackID, msgStoreDenied, true)
		case err != nil:
			utils.ErrorLogger.WithError(err).WithField("store_id", e.StoreID).Error("failed to set active store")
			d.answer(ctx, e.CallbackID, msgInternalError, true)
		default:
			log.WithField("store_id", store.ID).Info("active store changed")
			if err := d.transport.Edit(ctx, chatID, e.MessageID, storeSelectedMessage(store.Name)); err != nil {
				d.send(ctx, chatID, storeSelectedMessage(store.Name))
			}
			d.answer(ctx, e.CallbackID, "", false)
		}
	}
	return nil
}

func (d *Dispatcher) showTransaction(ctx context.Context, chatID int64, acc *services.Access, e ShowTransaction) {
	detail, err := d.gateway.FindByInvoice(ctx, e.InvoiceNumber, e.StoreID)
	switch {
	case errors.Is(err, services.ErrNotFound):
		d.send(ctx, chatID, notFoundMessage(e.InvoiceNumber, acc))
	case err != nil:
		utils.ErrorLogger.WithError(err).WithField("invoice", e.InvoiceNumber).Error("failed to find transaction")
		d.send(ctx, chatID, Message{Text: msgSearchFailed, Markup: MainKeyboard(acc)})
	default:
		d.send(ctx, chatID, transactionDetailMessage(detail, acc, d.loc))
		if acc.CanEdit() {
			// pesan detail memakai tombol inline, menu utama dikirim terpisah
			d.send(ctx, chatID, Message{Text: msgNextMenu, Markup: MainKeyboard(acc)})
		}
	}
}

func (d *Dispatcher) logWrite(op, invoice string, chatID int64, err error) {
	fields := logrus.Fields{"op": op, "invoice": invoice, "chat_id": chatID}
	switch {
	case err == nil:
		metrics.Transactions.WithLabelValues(op, "ok").Inc()
		utils.InfoLogger.WithFields(fields).Info("transaction stored")
	case errors.Is(err, services.ErrDuplicateInvoice):
		metrics.Transactions.WithLabelValues(op, "duplicate").Inc()
		utils.InfoLogger.WithFields(fields).Warn("invoice number collision")
	case errors.Is(err, services.ErrNotFound):
		metrics.Transactions.WithLabelValues(op, "not_found").Inc()
		utils.InfoLogger.WithFields(fields).Warn("transaction not found")
	default:
		metrics.Transactions.WithLabelValues(op, "error").Inc()
		utils.ErrorLogger.WithFields(fields).WithError(err).Error("failed to store transaction")
	}
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, msg Message) (int, error) {
	id, err := d.transport.Send(ctx, chatID, msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).WithField("chat_id", chatID).Error("failed to send message")
	}
	return id, err
}

func (d *Dispatcher) answer(ctx context.Context, callbackID, text string, alert bool) {
	if callbackID == "" {
		return
	}
	if err := d.transport.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		utils.InfoLogger.WithError(err).Debug("answer callback failed")
	}
}
