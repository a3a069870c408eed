package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ItemsRepository struct {
	db *gorm.DB
}

func NewItemsRepository(db *gorm.DB) *ItemsRepository {
	return &ItemsRepository{
		db: db,
	}
}

// Migrate creates or updates the categories and items tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Category{}, &Item{})
}

// FindOrCreateCategory returns the id of the category with exactly this
// name, inserting it first if needed.
func (r *ItemsRepository) FindOrCreateCategory(ctx context.Context, name string) (uint, error) {
	return findOrCreateCategory(r.db.WithContext(ctx), name)
}

func findOrCreateCategory(db *gorm.DB, name string) (uint, error) {
	if name == "" {
		return 0, ErrCategoryNameRequired
	}

	var category Category
	err := db.Where("category = ?", name).Take(&category).Error
	if err == nil {
		return category.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("find category %q: %w", name, err)
	}

	category = Category{Name: name}
	// Nested in a savepoint so a lost race does not abort an outer transaction.
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&category).Error
	})
	if err == nil {
		return category.ID, nil
	}
	if !isUniqueViolation(err) {
		return 0, fmt.Errorf("create category %q: %w", name, err)
	}

	// Another request inserted the same name first.
	category = Category{}
	if err := db.Where("category = ?", name).Take(&category).Error; err != nil {
		return 0, fmt.Errorf("reload category %q: %w", name, err)
	}
	return category.ID, nil
}

// InsertItem appends a new item row and returns its id.
func (r *ItemsRepository) InsertItem(ctx context.Context, name string, categoryID uint, imageName string) (uint, error) {
	return insertItem(r.db.WithContext(ctx), name, categoryID, imageName)
}

func insertItem(db *gorm.DB, name string, categoryID uint, imageName string) (uint, error) {
	item := Item{
		Name:       name,
		CategoryID: categoryID,
		ImageName:  imageName,
	}
	if err := db.Omit("Category").Create(&item).Error; err != nil {
		return 0, fmt.Errorf("insert item %q: %w", name, err)
	}
	return item.ID, nil
}

// AddItem resolves the category by name and inserts the item in a single
// transaction.
func (r *ItemsRepository) AddItem(ctx context.Context, name, category, imageName string) (*Item, error) {
	var item *Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryID, err := findOrCreateCategory(tx, category)
		if err != nil {
			return err
		}
		id, err := insertItem(tx, name, categoryID, imageName)
		if err != nil {
			return err
		}
		item = &Item{
			ID:         id,
			Name:       name,
			CategoryID: categoryID,
			Category:   Category{ID: categoryID, Name: category},
			ImageName:  imageName,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *ItemsRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("items").
		Select("items.id, items.name, categories.category AS category, items.image_name").
		Joins("JOIN categories ON categories.id = items.category_id")
}

// ListItems returns every item joined with its category name, in insertion order.
func (r *ItemsRepository) ListItems(ctx context.Context) ([]ItemRow, error) {
	var rows []ItemRow
	if err := r.joined(ctx).Order("items.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return rows, nil
}

func (r *ItemsRepository) GetItem(ctx context.Context, id uint) (*ItemRow, error) {
	var row ItemRow
	if err := r.joined(ctx).Where("items.id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get item %d: %w", id, err) // Other DB error
	}
	return &row, nil
}

// SearchItems returns the items whose name contains keyword. Matching is
// case-sensitive and keyword is taken literally; an empty keyword matches
// every item.
func (r *ItemsRepository) SearchItems(ctx context.Context, keyword string) ([]ItemRow, error) {
	query := r.joined(ctx)
	if keyword != "" {
		query = query.Where(containsClause(r.db), keyword)
	}

	var rows []ItemRow
	if err := query.Order("items.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("search items %q: %w", keyword, err)
	}
	return rows, nil
}

// containsClause avoids LIKE, which is case-insensitive on SQLite and
// treats % and _ as wildcards.
func containsClause(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "strpos(items.name, ?) > 0"
	}
	return "instr(items.name, ?) > 0"
}

func (r *ItemsRepository) GetAllCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := r.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
