package models

type Region struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
}

type Store struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	RegionID uint   `gorm:"index" json:"region_id"`
	Status   string `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
}
