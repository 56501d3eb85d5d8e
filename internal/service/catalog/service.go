package catalog

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/electrolink/storefront/internal/domain/catalog"
	"github.com/electrolink/storefront/internal/logger"
	repo "github.com/electrolink/storefront/internal/repository/catalog"
)

// Service implements the catalog listing rules on top of a repository.
type Service struct {
	// repo handles persistent storage of catalog data.
	repo repo.Repository
}

// DefaultFeaturedLimit is how many products the home page shows by default.
const DefaultFeaturedLimit = 8

var (
	// ErrProductNotFound is returned when no product has the requested ID.
	ErrProductNotFound = errors.New("product not found")
	// ErrEmptyQuery is returned when a search is requested without a query.
	ErrEmptyQuery = errors.New("search query is required")
	// ErrLanguageNotSupported is returned when no bundle exists for a language.
	ErrLanguageNotSupported = errors.New("language not supported")
)

// NewService creates a catalog service backed by the provided repository.
func NewService(repository repo.Repository) *Service {
	return &Service{
		repo: repository,
	}
}

// ListProducts returns products passing the filter, ordered by the sort order.
// A catalog that does not exist yet lists as empty rather than failing,
// so a fresh deployment serves an empty store instead of errors.
func (s *Service) ListProducts(
	ctx context.Context,
	filter *domain.Filter,
	order domain.SortOrder,
) ([]*domain.Product, error) {
	products, err := s.loadProducts(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Product, 0, len(products))

	for _, product := range products {
		if filter.Matches(product) {
			result = append(result, product.Clone())
		}
	}

	domain.SortProducts(result, order)

	return result, nil
}

// GetProduct returns the product with the given ID regardless of visibility,
// so direct links to hidden products keep working.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	products, err := s.loadProducts(ctx)
	if err != nil {
		return nil, err
	}

	for _, product := range products {
		if product.ID == id {
			return product.Clone(), nil
		}
	}

	return nil, ErrProductNotFound
}

// FeaturedProducts returns the first visible products in catalog order.
// A non-positive limit falls back to DefaultFeaturedLimit.
func (s *Service) FeaturedProducts(ctx context.Context, limit int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}

	products, err := s.loadProducts(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Product, 0, limit)

	for _, product := range products {
		if !product.IsVisible() {
			continue
		}

		result = append(result, product.Clone())
		if len(result) == limit {
			break
		}
	}

	return result, nil
}

// Categories returns the sorted distinct categories of visible products.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.loadProducts(ctx)
	if err != nil {
		return nil, err
	}

	return domain.Categories(products), nil
}

// Search returns visible products matching the query by name, code or description.
func (s *Service) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	products, err := s.loadProducts(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Product, 0, len(products))

	for _, product := range products {
		if !product.IsVisible() {
			continue
		}

		if product.MatchesQuery(query) {
			result = append(result, product.Clone())
		}
	}

	return result, nil
}

// Translations returns the bundle for the language together with the list of
// available languages. The language list lets the transport report what a
// caller may retry with when the bundle is missing.
func (s *Service) Translations(ctx context.Context, lang string) (map[string]string, []string, error) {
	translations, err := s.repo.LoadTranslations(ctx)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Warn(ctx, "Translations file is missing, serving no languages")

			translations = domain.Translations{}
		} else {
			return nil, nil, fmt.Errorf("load translations: %w", err)
		}
	}

	bundle, ok := translations[lang]
	if !ok {
		return nil, translations.Languages(), ErrLanguageNotSupported
	}

	return bundle, translations.Languages(), nil
}

// loadProducts reads the catalog, treating a missing file as an empty store.
func (s *Service) loadProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("load products: %w", err)
	}

	return products, nil
}
