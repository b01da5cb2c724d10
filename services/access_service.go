package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/kasir-bot/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotRegistered = errors.New("user not registered or inactive")
	ErrStoreNotAllowed   = errors.New("store is not accessible for this user")
)

// StoreRef adalah toko yang boleh diakses user.
type StoreRef struct {
	ID       uint
	Name     string
	RegionID uint
}

// Access adalah hasil pengecekan hak akses satu chat.
type Access struct {
	UserID       uint
	ChatID       int64
	FullName     string
	RoleName     string
	RegionID     *uint
	RegionName   string
	PrimaryStore *StoreRef
	ActiveStore  *StoreRef
	Stores       []StoreRef
}

func (a *Access) IsRegionalHead() bool {
	return a.RoleName == models.RoleRegionalHead
}

func (a *Access) IsStoreHead() bool {
	return a.RoleName == models.RoleStoreHead
}

// CanEdit: hanya Kepala Cabang dan Kepala Toko yang boleh mengubah transaksi.
func (a *Access) CanEdit() bool {
	return a.IsRegionalHead() || a.IsStoreHead()
}

func (a *Access) CanAccessStore(storeID uint) bool {
	for _, s := range a.Stores {
		if s.ID == storeID {
			return true
		}
	}
	return false
}

// AccessService membaca user, role dan toko dari database.
type AccessService struct {
	db *gorm.DB
}

// NewAccessService membuat instance baru AccessService
func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// Resolve mencari user aktif berdasarkan chat id beserta toko yang bisa diaksesnya.
//
//   - Kepala Cabang: semua toko aktif di region-nya
//   - Kepala Toko: toko aktif di user_store_access
//   - lainnya: toko utama saja
func (s *AccessService) Resolve(ctx context.Context, chatID int64) (*Access, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Preload("Role").Where("telegram_chat_id = ?", chatID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotRegistered
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user.Status != models.StatusActive {
		return nil, ErrUserNotRegistered
	}

	access := &Access{
		UserID:   user.ID,
		ChatID:   user.TelegramChatID,
		FullName: user.FullName,
		RoleName: user.Role.Name,
		RegionID: user.RegionID,
	}

	var stores []models.Store
	switch {
	case access.IsRegionalHead() && user.RegionID != nil:
		err = db.Where("region_id = ? AND status = ?", *user.RegionID, models.StatusActive).
			Order("name ASC").Find(&stores).Error
	case access.IsStoreHead():
		err = db.Joins("JOIN user_store_access usa ON usa.store_id = stores.id").
			Where("usa.user_id = ? AND stores.status = ?", user.ID, models.StatusActive).
			Order("stores.name ASC").Find(&stores).Error
	case user.StoreID != nil:
		err = db.Where("id = ? AND status = ?", *user.StoreID, models.StatusActive).Find(&stores).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list accessible stores: %w", err)
	}
	for _, st := range stores {
		access.Stores = append(access.Stores, StoreRef{ID: st.ID, Name: st.Name, RegionID: st.RegionID})
	}

	if access.IsRegionalHead() && user.RegionID != nil {
		var region models.Region
		if err := db.Where("id = ?", *user.RegionID).Limit(1).Find(&region).Error; err != nil {
			return nil, fmt.Errorf("failed to find region: %w", err)
		}
		access.RegionName = region.Name
	}

	if access.PrimaryStore, err = s.storeRef(ctx, user.StoreID); err != nil {
		return nil, err
	}
	if access.ActiveStore, err = s.storeRef(ctx, user.ActiveStoreID); err != nil {
		return nil, err
	}
	return access, nil
}

// SetActiveStore menyimpan toko aktif setelah divalidasi terhadap daftar akses.
func (s *AccessService) SetActiveStore(ctx context.Context, access *Access, storeID uint) (*StoreRef, error) {
	if !access.CanAccessStore(storeID) {
		return nil, ErrStoreNotAllowed
	}

	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", access.UserID).
		Update("active_store_id", storeID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update active store: %w", err)
	}

	for _, st := range access.Stores {
		if st.ID == storeID {
			ref := st
			access.ActiveStore = &ref
			return &ref, nil
		}
	}
	return nil, ErrStoreNotAllowed
}

func (s *AccessService) storeRef(ctx context.Context, id *uint) (*StoreRef, error) {
	if id == nil {
		return nil, nil
	}
	var store models.Store
	res := s.db.WithContext(ctx).Where("id = ?", *id).Limit(1).Find(&store)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to find store: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &StoreRef{ID: store.ID, Name: store.Name, RegionID: store.RegionID}, nil
}
