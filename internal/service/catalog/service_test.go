package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/electrolink/storefront/internal/domain/catalog"
	repo "github.com/electrolink/storefront/internal/repository/catalog"
)

var errTestLoad = errors.New("test load error")

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// products is the catalog returned from LoadProducts.
	products []*domain.Product
	// translations is the bundle map returned from LoadTranslations.
	translations domain.Translations
	// loadErr is the error to return from Load operations.
	loadErr error
	// saved stores the last product list passed to SaveProducts.
	saved []*domain.Product
}

func (m *memoryRepository) LoadProducts(context.Context) ([]*domain.Product, error) {
	return m.products, m.loadErr
}

func (m *memoryRepository) SaveProducts(_ context.Context, products []*domain.Product) error {
	m.saved = products

	return nil
}

func (m *memoryRepository) LoadTranslations(context.Context) (domain.Translations, error) {
	return m.translations, m.loadErr
}

func boolPtr(v bool) *bool { return &v }

func floatPtr(v float64) *float64 { return &v }

func testCatalog() []*domain.Product {
	return []*domain.Product{
		{ID: 1, Name: "Power Strip", Category: "accessories", Price: 24.50, Code: "EL-1001"},
		{ID: 2, Name: "HDMI Cable", Category: "cables", Price: 9.99, Code: "EL-1002"},
		{ID: 3, Name: "Hidden Adapter", Category: "adapters", Price: 14.00, Visible: boolPtr(false)},
		{ID: 4, Name: "USB-C Charger", Category: "accessories", Price: 19.99, Code: "EL-1004"},
	}
}

// TestListProducts_FiltersAndSorts applies visibility, category and price filters with ordering.
func TestListProducts_FiltersAndSorts(t *testing.T) {
	t.Parallel()

	s := NewService(&memoryRepository{products: testCatalog()})

	// Visible only, sorted by price ascending.
	products, err := s.ListProducts(
		context.Background(),
		&domain.Filter{VisibleOnly: true},
		domain.SortPriceAsc,
	)

	require.NoError(t, err)
	require.Len(t, products, 3)
	require.Equal(t, int64(2), products[0].ID)
	require.Equal(t, int64(1), products[2].ID)

	// Category plus minimum price.
	products, err = s.ListProducts(
		context.Background(),
		&domain.Filter{Category: "accessories", MinPrice: floatPtr(20), VisibleOnly: true},
		domain.SortDefault,
	)

	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, int64(1), products[0].ID)
}

// TestListProducts_EmptyCatalog lists an absent catalog as an empty store.
func TestListProducts_EmptyCatalog(t *testing.T) {
	t.Parallel()

	s := NewService(&memoryRepository{loadErr: repo.ErrNotFound})

	products, err := s.ListProducts(context.Background(), &domain.Filter{}, domain.SortDefault)

	require.NoError(t, err)
	require.Empty(t, products)

	// Other repository failures still surface.
	s = NewService(&memoryRepository{loadErr: errTestLoad})

	_, err = s.ListProducts(context.Background(), &domain.Filter{}, domain.SortDefault)
	require.ErrorIs(t, err, errTestLoad)
}

// TestGetProduct returns clones and reports missing IDs via the sentinel.
func TestGetProduct(t *testing.T) {
	t.Parallel()

	memory := &memoryRepository{products: testCatalog()}
	s := NewService(memory)

	product, err := s.GetProduct(context.Background(), 3)

	require.NoError(t, err)
	require.Equal(t, "Hidden Adapter", product.Name)
	require.NotSame(t, memory.products[2], product)

	_, err = s.GetProduct(context.Background(), 999)
	require.ErrorIs(t, err, ErrProductNotFound)
}

// TestFeaturedProducts keeps catalog order, skips hidden entries, and caps at the limit.
func TestFeaturedProducts(t *testing.T) {
	t.Parallel()

	s := NewService(&memoryRepository{products: testCatalog()})

	products, err := s.FeaturedProducts(context.Background(), 2)

	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, []int64{products[0].ID, products[1].ID})

	// Non-positive limit falls back to the default.
	products, err = s.FeaturedProducts(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, products, 3)
}

// TestSearch matches name, code and description of visible products only.
func TestSearch(t *testing.T) {
	t.Parallel()

	s := NewService(&memoryRepository{products: testCatalog()})

	products, err := s.Search(context.Background(), "el-100")

	require.NoError(t, err)
	require.Len(t, products, 3)

	// Hidden products never match.
	products, err = s.Search(context.Background(), "hidden")

	require.NoError(t, err)
	require.Empty(t, products)

	_, err = s.Search(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyQuery)
}

// TestCategories lists the sorted distinct categories of visible products.
func TestCategories(t *testing.T) {
	t.Parallel()

	s := NewService(&memoryRepository{products: testCatalog()})

	categories, err := s.Categories(context.Background())

	require.NoError(t, err)
	require.Equal(t, []string{"accessories", "cables"}, categories)
}

// TestTranslations returns bundles and reports available languages on a miss.
func TestTranslations(t *testing.T) {
	t.Parallel()

	s := NewService(&memoryRepository{
		translations: domain.Translations{
			"az": {"home": "Ana səhifə"},
			"en": {"home": "Home"},
		},
	})

	bundle, languages, err := s.Translations(context.Background(), "en")

	require.NoError(t, err)
	require.Equal(t, "Home", bundle["home"])
	require.Equal(t, []string{"az", "en"}, languages)

	_, languages, err = s.Translations(context.Background(), "ru")

	require.ErrorIs(t, err, ErrLanguageNotSupported)
	require.Equal(t, []string{"az", "en"}, languages)

	// Missing translations file means no supported languages, not a failure.
	s = NewService(&memoryRepository{loadErr: repo.ErrNotFound})

	_, languages, err = s.Translations(context.Background(), "az")

	require.ErrorIs(t, err, ErrLanguageNotSupported)
	require.Empty(t, languages)
}
