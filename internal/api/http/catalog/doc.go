// Package catalog implements the storefront HTTP API on top of gin.
//
// It exposes the product listing, search, category, translation and health
// endpoints under /api, serves static assets and HTML pages, and keeps the
// JSON response envelope compatible with the existing frontend.
package catalog
