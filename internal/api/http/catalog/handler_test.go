package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	domain "github.com/electrolink/storefront/internal/domain/catalog"
	service "github.com/electrolink/storefront/internal/service/catalog"
)

// fakeService implements the catalog Service interface for unit testing the transport.
type fakeService struct {
	// products is the listing returned by ListProducts, FeaturedProducts and Search.
	products []*domain.Product
	// lastFilter records the filter passed to ListProducts.
	lastFilter *domain.Filter
	// lastOrder records the sort order passed to ListProducts.
	lastOrder domain.SortOrder
	// err is returned by every operation when set.
	err error
}

func (f *fakeService) ListProducts(
	_ context.Context,
	filter *domain.Filter,
	order domain.SortOrder,
) ([]*domain.Product, error) {
	f.lastFilter = filter
	f.lastOrder = order

	return f.products, f.err
}

func (f *fakeService) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}

	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}

	return nil, service.ErrProductNotFound
}

func (f *fakeService) FeaturedProducts(_ context.Context, limit int) ([]*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}

	if limit > 0 && limit < len(f.products) {
		return f.products[:limit], nil
	}

	return f.products, nil
}

func (f *fakeService) Categories(context.Context) ([]string, error) {
	return []string{"accessories", "cables"}, f.err
}

func (f *fakeService) Search(_ context.Context, query string) ([]*domain.Product, error) {
	if query == "" {
		return nil, service.ErrEmptyQuery
	}

	return f.products, f.err
}

func (f *fakeService) Translations(_ context.Context, lang string) (map[string]string, []string, error) {
	if lang != "az" {
		return nil, []string{"az"}, service.ErrLanguageNotSupported
	}

	return map[string]string{"home": "Ana səhifə"}, []string{"az"}, f.err
}

// newTestRouter builds a gin engine with the handler registered and no pages.
func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handler := NewHandler(svc)
	handler.RegisterRoutes(router)
	handler.RegisterPages(router, "", "")

	return router
}

// doRequest performs a GET against the router and decodes the JSON body.
func doRequest(t *testing.T, router *gin.Engine, path string) (int, map[string]any) {
	t.Helper()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(recorder, request)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	return recorder.Code, body
}

// TestListProducts_PassesFilterAndSort verifies query parameter decoding.
func TestListProducts_PassesFilterAndSort(t *testing.T) {
	t.Parallel()

	fake := &fakeService{products: []*domain.Product{{ID: 1, Name: "Charger"}}}
	router := newTestRouter(fake)

	code, body := doRequest(t, router,
		"/api/products?category=cables&min_price=5&max_price=50&sort=price-desc&visible=false")

	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])
	require.EqualValues(t, 1, body["count"])

	require.Equal(t, "cables", fake.lastFilter.Category)
	require.NotNil(t, fake.lastFilter.MinPrice)
	require.InEpsilon(t, 5.0, *fake.lastFilter.MinPrice, 1e-9)
	require.NotNil(t, fake.lastFilter.MaxPrice)
	require.InEpsilon(t, 50.0, *fake.lastFilter.MaxPrice, 1e-9)
	require.False(t, fake.lastFilter.VisibleOnly)
	require.Equal(t, domain.SortPriceDesc, fake.lastOrder)

	// Defaults: visible only, unconstrained prices, default order.
	_, _ = doRequest(t, router, "/api/products")

	require.Equal(t, "all", fake.lastFilter.Category)
	require.Nil(t, fake.lastFilter.MinPrice)
	require.True(t, fake.lastFilter.VisibleOnly)
	require.Equal(t, domain.SortDefault, fake.lastOrder)
}

// TestGetProduct covers found, missing and non-numeric IDs.
func TestGetProduct(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeService{products: []*domain.Product{{ID: 42, Name: "Lamp"}}})

	code, body := doRequest(t, router, "/api/products/42")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])

	code, body = doRequest(t, router, "/api/products/999")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, false, body["success"])

	code, _ = doRequest(t, router, "/api/products/abc")
	require.Equal(t, http.StatusNotFound, code)
}

// TestFeaturedProducts honors the limit parameter.
func TestFeaturedProducts(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeService{products: []*domain.Product{
		{ID: 1}, {ID: 2}, {ID: 3},
	}})

	code, body := doRequest(t, router, "/api/products/featured?limit=2")
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 2, body["count"])
}

// TestSearch covers matches and the empty-query rejection.
func TestSearch(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeService{products: []*domain.Product{{ID: 1}}})

	code, body := doRequest(t, router, "/api/search?q=Charger")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "charger", body["query"])

	code, body = doRequest(t, router, "/api/search?q=++")
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, false, body["success"])
}

// TestTranslations returns the default language and lists alternatives on a miss.
func TestTranslations(t *testing.T) {
	t.Parallel()

	router := newTestRouter(new(fakeService))

	code, body := doRequest(t, router, "/api/translations")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "az", body["language"])

	code, body = doRequest(t, router, "/api/translations?lang=ru")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, []any{"az"}, body["available_languages"])
}

// TestHealth reports a healthy status with a timestamp.
func TestHealth(t *testing.T) {
	t.Parallel()

	code, body := doRequest(t, newTestRouter(new(fakeService)), "/health")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "healthy", body["status"])
	require.NotEmpty(t, body["timestamp"])
}

// TestNoRoute_APIFallsBackToJSON keeps unknown API paths on the JSON envelope.
func TestNoRoute_APIFallsBackToJSON(t *testing.T) {
	t.Parallel()

	code, body := doRequest(t, newTestRouter(new(fakeService)), "/api/unknown")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, false, body["success"])
	require.Equal(t, "Resource not found", body["error"])
}

// TestInternalErrorsAreOpaque hides repository failures from clients.
func TestInternalErrorsAreOpaque(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeService{err: context.DeadlineExceeded})

	code, body := doRequest(t, router, "/api/products")
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, "Internal server error", body["error"])
}
