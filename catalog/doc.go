// Package catalog provides access to reference-system photometry for
// sky positions: the source/photometry types, the cone-search
// [Querier] interface the estimation pipeline consumes, an HTTP client
// with bounded retries and rate limiting, and an optional sqlite-backed
// cone-search cache.
//
// Transient transport failures surface as [ErrUnavailable] and are
// retried with exponential backoff; malformed queries or responses
// surface as [ErrBadQuery] and are not retried. An empty result set is
// [ErrEmpty], never a silent empty slice.
package catalog
