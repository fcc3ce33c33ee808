package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/folgercn/ai-bookkeeper/internal/apperr"
	"github.com/folgercn/ai-bookkeeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) (*ExpenseRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Expense{}))
	return NewExpenseRepository(db), db
}

func TestAppendBulkAssignsIDs(t *testing.T) {
	repo, db := newTestRepo(t)

	ids, err := repo.Append(nil, "alice", []models.Expense{
		{Date: "2024-01-01", Amount: 10, MainCategory: "Food"},
		{Date: "2024-01-02", Amount: 20, MainCategory: "Transport"},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotZero(t, ids[0])
	assert.NotZero(t, ids[1])

	var count int64
	require.NoError(t, db.Model(&models.Expense{}).Where("owner_id = ?", "alice").Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestAppendEmptyIsNoOp(t *testing.T) {
	repo, _ := newTestRepo(t)

	ids, err := repo.Append(nil, "alice", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAppendRollsBackWithTransaction(t *testing.T) {
	repo, db := newTestRepo(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := repo.Append(tx, "alice", []models.Expense{
			{Date: "2024-01-01", Amount: 10, MainCategory: "Food"},
			{Date: "2024-01-02", Amount: 20, MainCategory: "Food"},
		}); err != nil {
			return err
		}
		return fmt.Errorf("forced failure after append")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Expense{}).Count(&count).Error)
	assert.Zero(t, count, "rolled-back append leaves no rows")
}

func TestListFiltersAndPaginates(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Append(nil, "alice", []models.Expense{
		{Date: "2024-01-01", Amount: 10, MainCategory: "Food", Remark: "breakfast"},
		{Date: "2024-01-15", Amount: 20, MainCategory: "Food", Remark: "groceries"},
		{Date: "2024-02-01", Amount: 30, MainCategory: "Transport", Payee: "metro"},
	})
	require.NoError(t, err)
	_, err = repo.Append(nil, "bob", []models.Expense{
		{Date: "2024-01-01", Amount: 99, MainCategory: "Food"},
	})
	require.NoError(t, err)

	items, total, breakdown, err := repo.List("alice", ExpenseFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, "2024-02-01", items[0].Date, "newest first")
	assert.Equal(t, 30.0, breakdown["Transport"])
	assert.Equal(t, 30.0, breakdown["Food"])

	items, total, _, err = repo.List("alice", ExpenseFilter{MainCategory: "Food"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)

	items, total, _, err = repo.List("alice", ExpenseFilter{StartDate: "2024-01-10", EndDate: "2024-01-31"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "groceries", items[0].Remark)

	items, _, _, err = repo.List("alice", ExpenseFilter{Keyword: "metro"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Transport", items[0].MainCategory)

	items, total, _, err = repo.List("alice", ExpenseFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 1)
}

func TestSummaryTotals(t *testing.T) {
	repo, _ := newTestRepo(t)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	_, err := repo.Append(nil, "alice", []models.Expense{
		{Date: "2024-03-01", Amount: 10, MainCategory: "Food"},
		{Date: "2024-03-10", Amount: 15, MainCategory: "Food"},
		{Date: "2024-01-05", Amount: 100, MainCategory: "Food"},
		{Date: "2023-12-31", Amount: 999, MainCategory: "Food"},
	})
	require.NoError(t, err)

	month, year, err := repo.Summary("alice", now)
	require.NoError(t, err)
	assert.Equal(t, 25.0, month)
	assert.Equal(t, 125.0, year)
}

func TestUpdateIsOwnerScoped(t *testing.T) {
	repo, _ := newTestRepo(t)

	ids, err := repo.Append(nil, "alice", []models.Expense{
		{Date: "2024-01-01", Amount: 10, MainCategory: "Food"},
	})
	require.NoError(t, err)

	updated, err := repo.Update("alice", ids[0], map[string]any{"amount": 12.5, "remark": "corrected"})
	require.NoError(t, err)
	assert.Equal(t, 12.5, updated.Amount)
	assert.Equal(t, "corrected", updated.Remark)

	_, err = repo.Update("mallory", ids[0], map[string]any{"amount": 0.0})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	repo, db := newTestRepo(t)

	ids, err := repo.Append(nil, "alice", []models.Expense{
		{Date: "2024-01-01", Amount: 10, MainCategory: "Food"},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete("mallory", ids[0]), apperr.ErrNotFound)
	require.NoError(t, repo.Delete("alice", ids[0]))
	assert.ErrorIs(t, repo.Delete("alice", ids[0]), apperr.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Expense{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFindRecentWindow(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Append(nil, "alice", []models.Expense{
		{Date: "2024-03-01", Amount: 10, MainCategory: "Food"},
		{Date: "2024-01-01", Amount: 20, MainCategory: "Food"},
	})
	require.NoError(t, err)

	recent, err := repo.FindRecent("alice", "2024-02-01")
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "2024-03-01", recent[0].Date)
}
