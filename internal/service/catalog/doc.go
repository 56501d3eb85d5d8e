// Package catalog implements the storefront catalog operations: product
// listing with filtering and sorting, lookup by ID, featured selection,
// category enumeration, search, and translation bundles.
package catalog
