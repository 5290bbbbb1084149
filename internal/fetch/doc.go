// Package fetch retrieves the two asset classes drawn from the catalog:
//
//   - style sheets, injected as presentation resources through an Injector and
//     awaited with a timeout (stylesheet.go, injector.go);
//   - binary outline payloads, cached in memory by family/weight/style with
//     pull-based expiry (binary.go, binary_cache.go).
//
// Both retry transient failures through the backoff package and surface only the
// final error. Permanent failures (unknown family, no usable variant, missing
// file URL, 401/403/404) are returned on the first attempt.
package fetch
