package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/folgercn/ai-bookkeeper/internal/apperr"
	"github.com/folgercn/ai-bookkeeper/internal/models"

	"gorm.io/gorm"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Append bulk-inserts records inside the given transaction handle. All rows
// become visible together or not at all; pass nil to run standalone.
func (r *ExpenseRepository) Append(tx *gorm.DB, ownerID string, records []models.Expense) ([]uint, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if tx == nil {
		tx = r.db
	}
	for i := range records {
		records[i].OwnerID = ownerID
	}
	if err := tx.Create(&records).Error; err != nil {
		return nil, fmt.Errorf("append expenses: %w", err)
	}
	ids := make([]uint, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}
	return ids, nil
}

// ExpenseFilter narrows List results. Zero values mean "no filter".
type ExpenseFilter struct {
	StartDate    string
	EndDate      string
	MainCategory string
	Payee        string
	Keyword      string
	Page         int
	PageSize     int
}

// List returns a page of expenses plus the total row count and a per-category
// amount breakdown over the same date range.
func (r *ExpenseRepository) List(ownerID string, f ExpenseFilter) ([]models.Expense, int64, map[string]float64, error) {
	query := r.db.Model(&models.Expense{}).Where("owner_id = ?", ownerID)

	if f.StartDate != "" {
		query = query.Where("date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		query = query.Where("date <= ?", f.EndDate)
	}
	if f.MainCategory != "" {
		query = query.Where("main_category = ?", f.MainCategory)
	}
	if f.Payee != "" {
		query = query.Where("payee = ?", f.Payee)
	}
	if f.Keyword != "" {
		like := "%" + f.Keyword + "%"
		query = query.Where("remark LIKE ? OR payee LIKE ? OR consumer LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, nil, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}

	var items []models.Expense
	err := query.
		Order("date DESC").
		Order("id DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, nil, err
	}

	breakdown, err := r.categoryBreakdown(ownerID, f.StartDate, f.EndDate)
	if err != nil {
		return nil, 0, nil, err
	}

	return items, total, breakdown, nil
}

type categoryRow struct {
	MainCategory string
	Sum          float64
}

func (r *ExpenseRepository) categoryBreakdown(ownerID, startDate, endDate string) (map[string]float64, error) {
	query := r.db.Model(&models.Expense{}).
		Where("owner_id = ?", ownerID).
		Select("main_category, COALESCE(SUM(amount),0) as sum").
		Group("main_category")
	if startDate != "" {
		query = query.Where("date >= ?", startDate)
	}
	if endDate != "" {
		query = query.Where("date <= ?", endDate)
	}

	var rows []categoryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	breakdown := make(map[string]float64, len(rows))
	for _, row := range rows {
		breakdown[row.MainCategory] = row.Sum
	}
	return breakdown, nil
}

// Summary returns month-to-date and year-to-date totals relative to now.
func (r *ExpenseRepository) Summary(ownerID string, now time.Time) (float64, float64, error) {
	monthPrefix := now.Format("2006-01") + "-%"
	yearPrefix := now.Format("2006") + "-%"

	var month, year float64
	err := r.db.Model(&models.Expense{}).
		Where("owner_id = ? AND date LIKE ?", ownerID, monthPrefix).
		Select("COALESCE(SUM(amount),0)").
		Scan(&month).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.Model(&models.Expense{}).
		Where("owner_id = ? AND date LIKE ?", ownerID, yearPrefix).
		Select("COALESCE(SUM(amount),0)").
		Scan(&year).Error
	if err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

// Update applies a partial field update to one record. Ownership is part of
// the lookup, so a foreign id reads as not found.
func (r *ExpenseRepository) Update(ownerID string, id uint, fields map[string]any) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.First(&expense, "id = ? AND owner_id = ?", id, ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := r.db.Model(&expense).Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return &expense, nil
}

func (r *ExpenseRepository) Delete(ownerID string, id uint) error {
	result := r.db.Delete(&models.Expense{}, "id = ? AND owner_id = ?", id, ownerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// FindRecent returns committed expenses on or after sinceDate (YYYY-MM-DD),
// used by the duplicate detector's lookback window.
func (r *ExpenseRepository) FindRecent(ownerID string, sinceDate string) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.
		Where("owner_id = ? AND date >= ?", ownerID, sinceDate).
		Find(&expenses).Error
	return expenses, err
}
