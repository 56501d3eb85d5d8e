// Package catalog persists the storefront catalog to JSON files on disk.
//
// The file layout (products.json, translations.json inside a data directory)
// is shared with the storefront frontend, so the repository preserves field
// names and indentation when writing.
package catalog
