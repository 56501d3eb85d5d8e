package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/electrolink/storefront/internal/domain/catalog"
	"github.com/electrolink/storefront/internal/logger"
	service "github.com/electrolink/storefront/internal/service/catalog"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	ListProducts(ctx context.Context, filter *domain.Filter, order domain.SortOrder) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	FeaturedProducts(ctx context.Context, limit int) ([]*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Search(ctx context.Context, query string) ([]*domain.Product, error)
	Translations(ctx context.Context, lang string) (map[string]string, []string, error)
}

// Handler implements the catalog HTTP API.
// Responses keep the JSON envelope the storefront frontend expects:
// a "success" flag plus operation-specific payload fields.
type Handler struct {
	// service provides the business logic for catalog operations.
	service Service
}

// DefaultLanguage is served when no explicit language is requested.
const DefaultLanguage = "az"

// NewHandler wires the provided service implementation into the HTTP API.
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes attaches the API endpoints to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/products", h.listProducts)
		api.GET("/products/featured", h.featuredProducts)
		api.GET("/products/:id", h.getProduct)
		api.GET("/categories", h.categories)
		api.GET("/search", h.search)
		api.GET("/translations", h.translations)
	}

	router.GET("/health", h.health)
}

// listProducts serves GET /api/products with optional filtering and sorting.
func (h *Handler) listProducts(ctx *gin.Context) {
	filter := &domain.Filter{
		Category:    ctx.DefaultQuery("category", "all"),
		MinPrice:    parsePriceQuery(ctx, "min_price"),
		MaxPrice:    parsePriceQuery(ctx, "max_price"),
		VisibleOnly: strings.EqualFold(ctx.DefaultQuery("visible", "true"), "true"),
	}
	order := domain.ParseSortOrder(ctx.DefaultQuery("sort", "default"))

	products, err := h.service.ListProducts(ctx.Request.Context(), filter, order)
	if err != nil {
		h.internalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(products),
		"products": products,
	})
}

// getProduct serves GET /api/products/:id.
func (h *Handler) getProduct(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		respondError(ctx, http.StatusNotFound, "Product not found")
		return
	}

	product, err := h.service.GetProduct(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(ctx, http.StatusNotFound, "Product not found")
			return
		}

		h.internalError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"product": product,
	})
}

// featuredProducts serves GET /api/products/featured for the home page.
func (h *Handler) featuredProducts(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	if err != nil {
		limit = 0
	}

	products, err := h.service.FeaturedProducts(ctx.Request.Context(), limit)
	if err != nil {
		h.internalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(products),
		"products": products,
	})
}

// categories serves GET /api/categories.
func (h *Handler) categories(ctx *gin.Context) {
	categories, err := h.service.Categories(ctx.Request.Context())
	if err != nil {
		h.internalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":    true,
		"categories": categories,
	})
}

// search serves GET /api/search over name, code and description.
func (h *Handler) search(ctx *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(ctx.Query("q")))

	results, err := h.service.Search(ctx.Request.Context(), query)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			respondError(ctx, http.StatusBadRequest, "Search query is required")
			return
		}

		h.internalError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

// translations serves GET /api/translations for a specific language.
func (h *Handler) translations(ctx *gin.Context) {
	lang := ctx.DefaultQuery("lang", DefaultLanguage)

	bundle, languages, err := h.service.Translations(ctx.Request.Context(), lang)
	if err != nil {
		if errors.Is(err, service.ErrLanguageNotSupported) {
			ctx.JSON(http.StatusNotFound, gin.H{
				"success":             false,
				"error":               "Language " + lang + " not supported",
				"available_languages": languages,
			})

			return
		}

		h.internalError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":      true,
		"language":     lang,
		"translations": bundle,
	})
}

// health serves GET /health for deployment platform probes.
func (h *Handler) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// internalError hides the failure details from clients and logs them instead.
func (h *Handler) internalError(ctx *gin.Context, err error) {
	logger.ErrorKV(ctx.Request.Context(), "Catalog request failed",
		"path", ctx.FullPath(), "error", err)

	respondError(ctx, http.StatusInternalServerError, "Internal server error")
}

// respondError writes the storefront JSON error envelope.
func respondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

// parsePriceQuery reads an optional float query parameter.
// Unparsable values are ignored so a malformed filter degrades to no filter.
func parsePriceQuery(ctx *gin.Context, name string) *float64 {
	raw, ok := ctx.GetQuery(name)
	if !ok {
		return nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}

	return &value
}
