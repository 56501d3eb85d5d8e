// Package config defines deployment settings used by the storefront binaries
// and provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the backend listen address, the update folder URL the
// launcher installs from, and the directories the backend serves.
package config
