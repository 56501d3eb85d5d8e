// Package packager produces the release manifest consumed by the launcher:
// it hashes every distributable artifact, embeds the build version and the
// backend entry point, and writes the manifest YAML ready for upload.
package packager
