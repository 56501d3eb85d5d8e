// Package launcher runs the deployment sequence for the storefront backend:
// read the release manifest, self-upgrade the launcher, install dependency
// artifacts, then start the backend and propagate its exit status.
//
// The steps are strictly sequential and the first failure aborts the launch;
// later steps never run after an earlier one failed.
package launcher
