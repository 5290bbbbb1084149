// Package manager admits, runs and tracks font family loads. It is structured
// into small files by concern:
//
//   - manager.go: core Manager type, Start/Close, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: load states, priorities, requests and queue entries.
//   - errors.go: error types and helpers (IsSlowLink, IsInvalidRequest, ...).
//   - helpers.go: small utilities (variant selection, binary loaders).
//   - admission.go: active-load cap, priority queue and draining.
//   - load.go: the per-family pipeline (catalog, variants, style sheet, binaries,
//     registration).
//   - evict.go: reaction to resource eviction.
//   - lru_persist.go: recently used families, persisted across restarts.
//   - status_report.go: Status/FamilyState reporting helpers.
//   - ops.go: caller-facing shortcuts (LoadForPreview, Retry, Binary, ...).
//   - api.go: adapters between wire DTOs (pkg/types) and the manager.
//   - events.go, eventpub_memory.go: load lifecycle events.
//
// The manager is the only code that starts or finishes loads. Every other
// package is reached through the collaborators passed in ManagerConfig.
package manager
