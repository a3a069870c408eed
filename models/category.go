package models

// Category represents an item category.
// Categories are created implicitly the first time an item references
// them and are deduplicated by exact name.
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"column:category;uniqueIndex;not null" json:"name"`
}

func (c *Category) TableName() string {
	return "categories"
}
