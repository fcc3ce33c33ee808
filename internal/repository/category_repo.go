package repository

import (
	"errors"
	"strings"

	"github.com/folgercn/ai-bookkeeper/internal/models"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListByOwner returns the owner's configured categories for prompt context.
func (r *CategoryRepository) ListByOwner(ownerID string) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Where("owner_id = ?", ownerID).Order("id ASC").Find(&categories).Error
	return categories, err
}

// AppendKeyword adds the keyword to the matching category's keyword list.
// An unknown category or an already-present keyword is a no-op: learning
// only refines categories the owner configured.
func (r *CategoryRepository) AppendKeyword(ownerID, mainName, subName, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}

	var category models.Category
	err := r.db.First(&category, "owner_id = ? AND main_name = ? AND sub_name = ?", ownerID, mainName, subName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, existing := range strings.Split(category.Keywords, ",") {
		if strings.TrimSpace(existing) == keyword {
			return nil
		}
	}
	if category.Keywords == "" {
		category.Keywords = keyword
	} else {
		category.Keywords += "," + keyword
	}
	return r.db.Model(&category).Update("keywords", category.Keywords).Error
}
