package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	domain "github.com/electrolink/storefront/internal/domain/catalog"
)

// Repository defines persistence operations for the catalog data.
type Repository interface {
	LoadProducts(ctx context.Context) ([]*domain.Product, error)
	SaveProducts(ctx context.Context, products []*domain.Product) error
	LoadTranslations(ctx context.Context) (domain.Translations, error)
}

// FileRepository reads and writes catalog data as JSON files in a data
// directory, keeping the files interchangeable with the ones the frontend
// scripts consume directly.
type FileRepository struct {
	// dir is the directory holding products.json and translations.json.
	dir string
	// mu protects concurrent access to the data files.
	mu sync.Mutex
}

const (
	// ProductsFilename is the catalog file within the data directory.
	ProductsFilename = "products.json"
	// TranslationsFilename is the UI strings file within the data directory.
	TranslationsFilename = "translations.json"

	// dataFilePermissions applies to files written by SaveProducts.
	dataFilePermissions = 0o644
	// dataDirPermissions applies when the data directory has to be created.
	dataDirPermissions = 0o755
)

// ErrNotFound is returned when a data file does not exist yet.
var ErrNotFound = errors.New("catalog data not found")

// NewFileRepository creates a repository rooted at the provided data directory.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{
		dir: filepath.Clean(dir),
	}
}

// LoadProducts reads the product list from disk.
func (r *FileRepository) LoadProducts(_ context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(filepath.Join(r.dir, ProductsFilename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read products file: %w", err)
	}

	var products []*domain.Product
	if err = json.Unmarshal(contents, &products); err != nil {
		return nil, fmt.Errorf("decode products file: %w", err)
	}

	return products, nil
}

// SaveProducts writes the product list to disk, creating the data directory
// when needed. Output is indented to stay diffable and hand-editable.
func (r *FileRepository) SaveProducts(_ context.Context, products []*domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, dataDirPermissions); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode products: %w", err)
	}

	path := filepath.Join(r.dir, ProductsFilename)
	if err = os.WriteFile(path, data, dataFilePermissions); err != nil {
		return fmt.Errorf("write products file: %w", err)
	}

	return nil
}

// LoadTranslations reads the translation bundles from disk.
func (r *FileRepository) LoadTranslations(_ context.Context) (domain.Translations, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(filepath.Join(r.dir, TranslationsFilename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read translations file: %w", err)
	}

	var translations domain.Translations
	if err = json.Unmarshal(contents, &translations); err != nil {
		return nil, fmt.Errorf("decode translations file: %w", err)
	}

	return translations, nil
}
