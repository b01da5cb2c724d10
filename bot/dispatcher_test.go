package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/kasir-bot/database"
	"github.com/yeremiapane/kasir-bot/models"
	"github.com/yeremiapane/kasir-bot/pricing"
	"github.com/yeremiapane/kasir-bot/services"
	"github.com/yeremiapane/kasir-bot/session"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMessage struct {
	ChatID int64
	ID     int
	Message
}

type editCall struct {
	MessageID int
	Message
}

type fakeTransport struct {
	mu      sync.Mutex
	nextID  int
	sent    []sentMessage
	edits   []editCall
	deletes []int
	answers []AnswerCallback
	editErr error
}

func (f *fakeTransport) Send(_ context.Context, chatID int64, msg Message) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := 1000 + f.nextID
	f.sent = append(f.sent, sentMessage{ChatID: chatID, ID: id, Message: msg})
	return id, nil
}

func (f *fakeTransport) Edit(_ context.Context, _ int64, messageID int, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, editCall{MessageID: messageID, Message: msg})
	return f.editErr
}

func (f *fakeTransport) Delete(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, messageID)
	return nil
}

func (f *fakeTransport) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, AnswerCallback{CallbackID: callbackID, Text: text, Alert: alert})
	return nil
}

func (f *fakeTransport) lastSent(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

// fakeAccess menyimpan Access per chat. Setiap Resolve mengembalikan salinan baru.
type fakeAccess struct {
	mu    sync.Mutex
	users map[int64]*services.Access
	err   error
}

func (f *fakeAccess) Resolve(_ context.Context, chatID int64) (*services.Access, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	acc, ok := f.users[chatID]
	if !ok {
		return nil, services.ErrUserNotRegistered
	}
	cp := *acc
	return &cp, nil
}

func (f *fakeAccess) SetActiveStore(_ context.Context, acc *services.Access, storeID uint) (*services.StoreRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range acc.Stores {
		if s.ID == storeID {
			store := s
			f.users[acc.ChatID].ActiveStore = &store
			acc.ActiveStore = &store
			return &store, nil
		}
	}
	return nil, services.ErrStoreNotAllowed
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedRoles(db))

	region := models.Region{Name: "Jawa Timur"}
	require.NoError(t, db.Create(&region).Error)
	store := models.Store{Name: "VP Sudirman", RegionID: region.ID, Status: models.StatusActive}
	require.NoError(t, db.Create(&store).Error)
	require.Equal(t, storeSudirman.ID, store.ID)
	return db
}

type harness struct {
	d         *Dispatcher
	transport *fakeTransport
	access    *fakeAccess
	sessions  *session.MemoryStore[Session]
	clock     *testClock
	tx        *services.TransactionService
	db        *gorm.DB
}

func newHarness(t *testing.T, users ...*services.Access) *harness {
	db := setupTestDB(t)
	clock := &testClock{now: time.Date(2026, 10, 15, 14, 5, 0, 0, wib)}

	tx := services.NewTransactionService(db)
	tx.SetClock(clock.Now)

	h := &harness{
		transport: &fakeTransport{},
		access:    &fakeAccess{users: map[int64]*services.Access{}},
		sessions:  session.NewMemoryStore[Session](),
		clock:     clock,
		tx:        tx,
		db:        db,
	}
	for _, u := range users {
		h.access.users[u.ChatID] = u
	}
	h.d = NewDispatcher(h.transport, h.access, tx, services.NewReportService(db), h.sessions, Options{
		Location: wib,
		Clock:    clock.Now,
	})
	return h
}

// handle memproses event lalu memajukan jam melewati jendela debounce.
func (h *harness) handle(t *testing.T, ev Event) {
	t.Helper()
	require.NoError(t, h.d.Handle(context.Background(), ev))
	h.clock.Advance(2 * time.Second)
}

func (h *harness) session(chatID int64) Session {
	s, _ := h.sessions.Get(chatID)
	return s
}

func TestDispatcher_CreateReceiptEndToEnd(t *testing.T) {
	acc := cashier()
	h := newHarness(t, acc)

	for _, in := range []string{BtnCreateReceipt, "Ana", "Salsavage, 30, ml, 2000", "Selesai", "130.000", "💵 Tunai"} {
		h.handle(t, TextEvent{ChatID: acc.ChatID, Text: in})
	}
	require.IsType(t, ConfirmSave{}, h.session(acc.ChatID).State)

	h.handle(t, TextEvent{ChatID: acc.ChatID, Text: BtnYes})
	assert.Zero(t, h.sessions.Len(), "session is removed after save")

	last := h.transport.lastSent(t)
	assert.Contains(t, last.Text, "berhasil disimpan")
	assert.Contains(t, last.Text, "Rp 130.000")
	assert.Equal(t, MainKeyboard(acc), last.Markup)

	var header models.Transaction
	require.NoError(t, h.db.Preload("Items").First(&header).Error)
	assert.Regexp(t, `^VP-261015-\d{4}$`, header.InvoiceNumber)
	assert.Equal(t, "Ana", header.CashierName)
	assert.Equal(t, uint(10), header.UserID)
	assertDecimal(t, "130000", header.TotalAmount)
	require.Len(t, header.Items, 1)
	assertDecimal(t, "4333.3333", header.Items[0].PriceConsumer)

	// laporan harian membaca transaksi yang baru disimpan
	h.handle(t, TextEvent{ChatID: acc.ChatID, Text: BtnDailyReport})
	report := h.transport.lastSent(t)
	assert.Contains(t, report.Text, "*Total Pendapatan:* Rp 130.000")
	assert.Contains(t, report.Text, "*Total Selisih (Profit/Rugi):* Rp 70.000")
	assert.Contains(t, report.Text, "Terjual: 30 ml | Rp 130.000")
}

func TestDispatcher_DuplicateInvoiceRetry(t *testing.T) {
	acc := cashier()
	h := newHarness(t, acc)

	for _, in := range []string{BtnCreateReceipt, "Ana", "Salsavage, 30, ml, 2000", "Selesai", "130000", "💵 Tunai"} {
		h.handle(t, TextEvent{ChatID: acc.ChatID, Text: in})
	}

	// nomor invoice yang akan dibuat sudah terpakai
	taken := NewInvoiceNumber(h.clock.Now().In(wib))
	_, err := h.tx.Create(context.Background(), services.CreateInput{
		InvoiceNumber: taken,
		CashierName:   "Budi",
		PaymentMethod: "💳 QRIS",
		Items:         []pricing.Item{{Name: "Baccarat", Qty: 1, Unit: "pcs", PriceVp: dec("1000")}},
		TotalPayment:  dec("5000"),
	}, 1, 11)
	require.NoError(t, err)

	h.handle(t, TextEvent{ChatID: acc.ChatID, Text: BtnYes})
	st, ok := h.session(acc.ChatID).State.(ConfirmSave)
	require.True(t, ok, "session stays at confirmation")
	assert.Equal(t, taken, st.Draft.InvoiceNumber)
	assert.Contains(t, h.transport.lastSent(t).Text, "sudah terpakai")

	h.handle(t, TextEvent{ChatID: acc.ChatID, Text: BtnYes})
	assert.False(t, h.session(acc.ChatID).Active())
	assert.Contains(t, h.transport.lastSent(t).Text, "berhasil disimpan")

	var count int64
	h.db.Model(&models.Transaction{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestDispatcher_Debounce(t *testing.T) {
	acc := cashier()
	h := newHarness(t, acc)
	ctx := context.Background()

	require.NoError(t, h.d.Handle(ctx, TextEvent{ChatID: acc.ChatID, Text: BtnCreateReceipt}))
	h.clock.Advance(400 * time.Millisecond)
	require.NoError(t, h.d.Handle(ctx, TextEvent{ChatID: acc.ChatID, Text: "Ana"}))

	assert.Len(t, h.transport.sent, 1, "second event inside the window is dropped")
	assert.Equal(t, CashierName{}, h.session(acc.ChatID).State)

	h.clock.Advance(time.Second)
	require.NoError(t, h.d.Handle(ctx, TextEvent{ChatID: acc.ChatID, Text: "Ana"}))
	assert.IsType(t, AddItem{}, h.session(acc.ChatID).State)
}

func TestDispatcher_AccessDenied(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	err := h.d.Handle(ctx, TextEvent{ChatID: 999, Text: "/start"})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, msgAccessDenied, h.transport.lastSent(t).Text)
	assert.Zero(t, h.sessions.Len())

	h.clock.Advance(2 * time.Second)
	err = h.d.Handle(ctx, CallbackEvent{ChatID: 999, CallbackID: "cb", Data: "edit_save"})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, []AnswerCallback{{CallbackID: "cb", Text: msgAccessDenied}}, h.transport.answers)

	h.access.err = errors.New("db down")
	h.clock.Advance(2 * time.Second)
	err = h.d.Handle(ctx, TextEvent{ChatID: 999, Text: "/start"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, msgInternalError, h.transport.lastSent(t).Text)
}

func TestDispatcher_EditTransactionEndToEnd(t *testing.T) {
	acc := storeHead()
	h := newHarness(t, acc)
	ctx := context.Background()

	ed := threeLineEdit()
	_, err := h.tx.Create(ctx, services.CreateInput{
		InvoiceNumber: ed.InvoiceNumber,
		CashierName:   "Ana",
		PaymentMethod: "💳 QRIS",
		Items:         []pricing.Item{{Name: "Tmp", Qty: 1, Unit: "pcs", PriceVp: dec("1")}},
		TotalPayment:  dec("1"),
	}, 1, acc.UserID)
	require.NoError(t, err)
	require.NoError(t, h.tx.Update(ctx, ed.InvoiceNumber, services.UpdateInput{
		CashierName:   "Ana",
		PaymentMethod: "💳 QRIS",
		Lines:         ed.Lines,
	}, acc.UserID))

	t.Run("search shows detail with edit button", func(t *testing.T) {
		h.handle(t, TextEvent{ChatID: acc.ChatID, Text: BtnSearch})
		h.handle(t, TextEvent{ChatID: acc.ChatID, Text: ed.InvoiceNumber})

		sent := h.transport.sent
		require.GreaterOrEqual(t, len(sent), 3)
		detail := sent[len(sent)-2]
		assert.Contains(t, detail.Text, "💰 *TOTAL:* *Rp 190.000*")
		assert.IsType(t, InlineKeyboard{}, detail.Markup)
		assert.Equal(t, msgNextMenu, sent[len(sent)-1].Text)
	})

	h.handle(t, CallbackEvent{ChatID: acc.ChatID, CallbackID: "cb1", Data: beginEditData(ed.InvoiceNumber), MessageID: 40})
	s := h.session(acc.ChatID)
	require.IsType(t, EditMenu{}, s.State)
	assert.Equal(t, 40, s.HubMessageID, "detail message becomes the edit menu")
	require.NotEmpty(t, h.transport.edits)
	assert.Contains(t, h.transport.edits[len(h.transport.edits)-1].Text, "TOTAL: *Rp 190.000*")

	h.handle(t, CallbackEvent{ChatID: acc.ChatID, CallbackID: "cb2", Data: "edit_field_remove_item", MessageID: 40})
	assert.Contains(t, h.transport.deletes, 40)
	require.IsType(t, EditRemoveItem{}, h.session(acc.ChatID).State)

	h.handle(t, TextEvent{ChatID: acc.ChatID, Text: "2"})
	s = h.session(acc.ChatID)
	require.IsType(t, EditMenu{}, s.State)
	hub := h.transport.lastSent(t)
	assert.Equal(t, hub.ID, s.HubMessageID, "new edit menu message is tracked")
	assert.Contains(t, hub.Text, "TOTAL: *Rp 170.000*")

	h.handle(t, CallbackEvent{ChatID: acc.ChatID, CallbackID: "cb3", Data: dataEditSave, MessageID: hub.ID})
	assert.False(t, h.session(acc.ChatID).Active())
	assert.Contains(t, h.transport.lastSent(t).Text, "berhasil diperbarui")

	detail, err := h.tx.FindByInvoice(ctx, ed.InvoiceNumber, 1)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 2)
	assert.Equal(t, "Baccarat", detail.Lines[0].Name)
	assert.Equal(t, "Salsavage", detail.Lines[1].Name)
	assertDecimal(t, "170000", detail.TotalAmount)
}

func TestDispatcher_StaleHubFallsBackToNewMessage(t *testing.T) {
	acc := storeHead()
	h := newHarness(t, acc)
	h.transport.editErr = errors.New("Bad Request: message to edit not found")
	h.sessions.Set(acc.ChatID, Session{State: EditMenuItem{Edit: threeLineEdit(), Index: 0}, HubMessageID: 55})

	h.handle(t, CallbackEvent{ChatID: acc.ChatID, CallbackID: "cb", Data: dataEditItemBack, MessageID: 55})

	require.Len(t, h.transport.edits, 1)
	assert.Equal(t, 55, h.transport.edits[0].MessageID)
	s := h.session(acc.ChatID)
	require.IsType(t, EditMenu{}, s.State)
	assert.Equal(t, h.transport.lastSent(t).ID, s.HubMessageID)
	assert.NotEqual(t, 55, s.HubMessageID)
}

func TestDispatcher_SelectStore(t *testing.T) {
	acc := regionHead()
	acc.Stores = append(acc.Stores, services.StoreRef{ID: 2, Name: "VP Dinoyo", RegionID: 1})
	h := newHarness(t, acc)

	h.handle(t, CallbackEvent{ChatID: acc.ChatID, CallbackID: "cb", Data: "set_active_store_2", MessageID: 30})

	require.Len(t, h.transport.edits, 1)
	assert.Equal(t, 30, h.transport.edits[0].MessageID)
	assert.Contains(t, h.transport.edits[0].Text, "*VP Dinoyo*")
	assert.Equal(t, []AnswerCallback{{CallbackID: "cb"}}, h.transport.answers)
	assert.Equal(t, uint(2), h.access.users[acc.ChatID].ActiveStore.ID)
}

func TestDispatcher_RecentTransactions(t *testing.T) {
	acc := cashier()
	h := newHarness(t, acc)

	h.handle(t, TextEvent{ChatID: acc.ChatID, Text: BtnRecent})
	assert.Contains(t, h.transport.lastSent(t).Text, "Belum ada transaksi")

	_, err := h.tx.Create(context.Background(), services.CreateInput{
		InvoiceNumber: "VP-261015-0001",
		CashierName:   "Ana",
		PaymentMethod: "💵 Tunai",
		Items:         []pricing.Item{{Name: "Salsavage", Qty: 30, Unit: "ml", PriceVp: dec("2000")}},
		TotalPayment:  dec("130000"),
	}, 1, acc.UserID)
	require.NoError(t, err)

	h.handle(t, TextEvent{ChatID: acc.ChatID, Text: BtnRecent})
	last := h.transport.lastSent(t).Text
	assert.Contains(t, last, "1. `VP-261015-0001`")
	assert.Contains(t, last, "Kamis, 15 Oktober 2026 pukul 14.05 | Ana")
}
