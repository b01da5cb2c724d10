package models

import "time"

// Nama role yang dipakai untuk hak akses
const (
	RoleRegionalHead = "Kepala Cabang"
	RoleStoreHead    = "Kepala Toko"
	RoleCashier      = "Kasir"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Role struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null"`
}

// User diidentifikasi lewat chat id Telegram, bukan email/password.
type User struct {
	ID             uint   `gorm:"primaryKey"`
	TelegramChatID int64  `gorm:"uniqueIndex;not null"`
	FullName       string `gorm:"type:varchar(255);not null"`
	RoleID         uint   `gorm:"not null"`
	Role           Role   `gorm:"foreignKey:RoleID"`
	RegionID       *uint
	StoreID        *uint // toko utama
	ActiveStoreID  *uint // toko yang sedang dioperasikan
	Status         string `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserStoreAccess memberi Kepala Toko akses ke toko tertentu.
type UserStoreAccess struct {
	UserID  uint `gorm:"primaryKey"`
	StoreID uint `gorm:"primaryKey"`
}

func (UserStoreAccess) TableName() string {
	return "user_store_access"
}
