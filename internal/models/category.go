package models

import (
	"context"

	"gorm.io/gorm"
)

// DefaultCategories are created when the categories table is empty.
var DefaultCategories = []string{"Human Resources", "Technology", "Financial"}

// Category groups tickets on the board and in the admin panel.
type Category struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Description *string `gorm:"size:200" json:"description,omitempty"`
}

// CreateCategory inserts a new category.
func CreateCategory(ctx context.Context, db *gorm.DB, category *Category) error {
	return db.WithContext(ctx).Create(category).Error
}

// GetCategory retrieves a category by ID.
func GetCategory(ctx context.Context, db *gorm.DB, id uint) (*Category, error) {
	var category Category
	if err := db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns every category ordered by name.
func ListCategories(ctx context.Context, db *gorm.DB) ([]Category, error) {
	var categories []Category
	if err := db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CategoryNameExists reports whether another category already uses name.
// excludeID skips the category being edited; pass 0 to check every row.
func CategoryNameExists(ctx context.Context, db *gorm.DB, name string, excludeID uint) (bool, error) {
	var count int64
	q := db.WithContext(ctx).Model(&Category{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RenameCategory sets the name of category id.
func RenameCategory(ctx context.Context, db *gorm.DB, id uint, name string) error {
	return db.WithContext(ctx).Model(&Category{}).Where("id = ?", id).Update("name", name).Error
}

// DeleteCategory removes category id. Referencing tickets make the database reject it.
func DeleteCategory(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Delete(&Category{}, id).Error
}

// CountTicketsInCategory returns how many tickets reference the category.
func CountTicketsInCategory(ctx context.Context, db *gorm.DB, id uint) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&Ticket{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}

// SeedDefaultCategories inserts DefaultCategories when no category exists yet.
// It returns the number of rows created.
func SeedDefaultCategories(ctx context.Context, db *gorm.DB) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&Category{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	categories := make([]Category, 0, len(DefaultCategories))
	for _, name := range DefaultCategories {
		categories = append(categories, Category{Name: name})
	}
	if err := db.WithContext(ctx).Create(&categories).Error; err != nil {
		return 0, err
	}
	return len(categories), nil
}
