package models_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/simple-mercari/catalog/app/database"
	"github.com/simple-mercari/catalog/models"
)

func newTestRepo(t *testing.T) (*models.ItemsRepository, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{
		DSN:          filepath.Join(t.TempDir(), "catalog.sqlite3"),
		MaxOpenConns: 4,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, models.Migrate(db))
	return models.NewItemsRepository(db), db
}

func TestFindOrCreateCategory(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.FindOrCreateCategory(ctx, "fashion")
	require.NoError(t, err)
	again, err := repo.FindOrCreateCategory(ctx, "fashion")
	require.NoError(t, err)
	other, err := repo.FindOrCreateCategory(ctx, "Fashion")
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, other, "names are matched exactly")

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	_, err = repo.FindOrCreateCategory(ctx, "")
	assert.ErrorIs(t, err, models.ErrCategoryNameRequired)
}

func TestFindOrCreateCategoryConcurrent(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	const workers = 8
	ids := make([]uint, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i], errs[i] = repo.FindOrCreateCategory(ctx, "books")
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInsertItemUnknownCategory(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.InsertItem(context.Background(), "ghost", 999, "x.jpg")
	assert.Error(t, err)
}

func TestAddItemAndGetItem(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	jacket, err := repo.AddItem(ctx, "jacket", "fashion", "a.jpg")
	require.NoError(t, err)
	shirt, err := repo.AddItem(ctx, "shirt", "fashion", "b.jpg")
	require.NoError(t, err)

	assert.Equal(t, uint(1), jacket.ID)
	assert.Equal(t, uint(2), shirt.ID)
	assert.Equal(t, jacket.CategoryID, shirt.CategoryID, "the second item reuses the category")

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	row, err := repo.GetItem(ctx, shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemRow{ID: 2, Name: "shirt", Category: "fashion", ImageName: "b.jpg"}, *row)

	_, err = repo.GetItem(ctx, 42)
	assert.ErrorIs(t, err, models.ErrItemNotFound)
}

func TestListItems(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	rows, err := repo.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = repo.AddItem(ctx, "jacket", "fashion", "a.jpg")
	require.NoError(t, err)
	_, err = repo.AddItem(ctx, "lamp", "furniture", "b.jpg")
	require.NoError(t, err)

	rows, err = repo.ListItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.ItemRow{
		{ID: 1, Name: "jacket", Category: "fashion", ImageName: "a.jpg"},
		{ID: 2, Name: "lamp", Category: "furniture", ImageName: "b.jpg"},
	}, rows)

	categories, err := repo.GetAllCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "fashion", categories[0].Name)
	assert.Equal(t, "furniture", categories[1].Name)
}

func TestSearchItems(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"jacket", "Jacket XL", "down jacket", "100%_cotton"} {
		_, err := repo.AddItem(ctx, name, "fashion", "a.jpg")
		require.NoError(t, err)
	}

	testCases := []struct {
		name    string
		keyword string
		want    []string
	}{
		{name: "Substring, case-sensitive", keyword: "jacket", want: []string{"jacket", "down jacket"}},
		{name: "Upper case", keyword: "Jack", want: []string{"Jacket XL"}},
		{name: "Empty keyword matches all", keyword: "", want: []string{"jacket", "Jacket XL", "down jacket", "100%_cotton"}},
		{name: "Percent is literal", keyword: "%", want: []string{"100%_cotton"}},
		{name: "Underscore is literal", keyword: "t_c", want: nil},
		{name: "No match", keyword: "sofa", want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := repo.SearchItems(ctx, tc.keyword)
			require.NoError(t, err)
			var names []string
			for _, r := range rows {
				names = append(names, r.Name)
				assert.Equal(t, "fashion", r.Category)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}
