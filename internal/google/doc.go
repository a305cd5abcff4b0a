// Package google handles OAuth2 authentication against Google for the
// Calendar API: loading the client secret, persisting the user credential,
// refreshing it when expired, and running the interactive authorization flow
// when no usable credential exists.
package google
