// Package installer owns the release manifest format and the artifact
// synchronization the launcher performs before starting the backend:
// launcher self-upgrade and checksum-driven installation of deployment
// artifacts from an update folder.
package installer
