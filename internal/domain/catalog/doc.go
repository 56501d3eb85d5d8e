// Package catalog holds the storefront catalog entities and the pure listing
// rules applied to them: visibility, category and price filtering, search
// matching, and the supported sort orders.
package catalog
