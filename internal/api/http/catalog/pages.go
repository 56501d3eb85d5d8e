package catalog

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// pageRoutes maps URL paths to their template files.
// Kept in sync with the storefront frontend's navigation.
var pageRoutes = map[string]string{
	"/":         "index.html",
	"/products": "products.html",
	"/cart":     "cart.html",
	"/about":    "about.html",
	"/contact":  "contact.html",
	"/faq":      "faq.html",
	"/warranty": "warranty.html",
	"/blog":     "blog.html",
}

// RegisterPages attaches static file serving, HTML page routes and the
// fallback handlers. Page routes are skipped when the templates directory
// does not exist, which keeps API-only deployments working.
func (h *Handler) RegisterPages(router *gin.Engine, staticDir, templatesDir string) {
	if staticDir != "" {
		if _, err := os.Stat(staticDir); err == nil {
			router.Static("/static", staticDir)
		}
	}

	pagesEnabled := false

	if templatesDir != "" {
		if _, err := os.Stat(templatesDir); err == nil {
			router.LoadHTMLGlob(templatesDir + "/*.html")

			pagesEnabled = true

			for route, template := range pageRoutes {
				router.GET(route, servePage(template))
			}

			router.GET("/product/:id", serveDetailPage("product-detail.html", "product_id"))
			router.GET("/blog/:id", serveDetailPage("blog-detail.html", "post_id"))
		}
	}

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(ctx *gin.Context) {
		respondError(ctx, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.NoRoute(func(ctx *gin.Context) {
		// API callers get a JSON envelope; page requests fall back to the home page.
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			respondError(ctx, http.StatusNotFound, "Resource not found")
			return
		}

		if pagesEnabled {
			ctx.HTML(http.StatusNotFound, "index.html", nil)
			return
		}

		respondError(ctx, http.StatusNotFound, "Resource not found")
	})
}

// servePage renders a static page template.
func servePage(template string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.HTML(http.StatusOK, template, nil)
	}
}

// serveDetailPage renders a detail template, passing the :id parameter
// through under the name the template expects.
func serveDetailPage(template, paramName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.HTML(http.StatusOK, template, gin.H{
			paramName: ctx.Param("id"),
		})
	}
}
