package models

// Item represents a catalog entry.
// It references a category and the content-addressed name of its image.
type Item struct {
	ID         uint     `gorm:"primaryKey"`
	Name       string   `gorm:"not null"`
	CategoryID uint     `gorm:"not null;index"`
	Category   Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	ImageName  string   `gorm:"not null"`
}

func (i *Item) TableName() string {
	return "items"
}

// ItemRow is an item joined with its category name.
type ItemRow struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	ImageName string `json:"image_name"`
}
