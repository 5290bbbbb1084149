package types

// LoadRequest asks the daemon to load a family.
type LoadRequest struct {
	// Family name, case-sensitive.
	// example: Roboto
	Family string `json:"family" example:"Roboto"`
	// One of critical, high, normal, low. Empty means normal.
	// example: high
	Priority string `json:"priority,omitempty" example:"high"`
	// One of preview, text-editing, static, context. Empty means preview.
	// example: text-editing
	Purpose string `json:"purpose,omitempty" example:"text-editing"`
	// Preferred weight for preview loads. Zero means 400.
	// example: 400
	Weight int `json:"weight,omitempty" example:"400"`
	// Preferred style for preview loads.
	// example: normal
	Style string `json:"style,omitempty" example:"normal"`
	// Discard a loaded or failed state and load again.
	// example: false
	ForceReload bool `json:"force_reload,omitempty" example:"false"`
}

// LoadResponse acknowledges a load request.
type LoadResponse struct {
	// Family name.
	// example: Roboto
	Family string `json:"family" example:"Roboto"`
	// State right after admission: queued, active or loaded.
	// example: active
	State string `json:"state" example:"active"`
}

// NetworkRequest updates the host network signals. Omitted fields are unchanged.
type NetworkRequest struct {
	// Whether the host is online.
	// example: true
	Online *bool `json:"online,omitempty" example:"true"`
	// Whether the link is slow; low and normal priority loads are skipped.
	// example: false
	SlowLink *bool `json:"slow_link,omitempty" example:"false"`
}

// FamilyStatus describes one family's load state.
type FamilyStatus struct {
	// Family name.
	// example: Roboto
	Family string `json:"family" example:"Roboto"`
	// idle, queued, active, loaded or failed.
	// example: loaded
	State string `json:"state" example:"loaded"`
	// Purpose the family was last loaded or requested for.
	// example: preview
	Purpose string `json:"purpose,omitempty" example:"preview"`
	// Failed attempts since the last success.
	// example: 0
	Attempts int `json:"attempts" example:"0"`
	// Last failure message.
	LastError string `json:"last_error,omitempty"`
	// Time of the last attempt (unix seconds).
	// example: 1700000000
	LastAttemptUnix int64 `json:"last_attempt_unix,omitempty" example:"1700000000"`
	// Variants with an injected style sheet.
	Variants []Variant `json:"variants,omitempty"`
	// PostScript names registered for this family.
	Registered []string `json:"registered,omitempty"`
}

// CatalogStatus summarizes the catalog cache.
type CatalogStatus struct {
	// Number of families in the cached snapshot.
	// example: 1500
	Families int `json:"families" example:"1500"`
	// Age of the snapshot in seconds; -1 when nothing is cached.
	// example: 120
	AgeSeconds int64 `json:"age_seconds" example:"120"`
	// Reads served from memory.
	// example: 42
	Hits uint64 `json:"hits" example:"42"`
	// Reads that had to wait for a fetch.
	// example: 1
	Misses uint64 `json:"misses" example:"1"`
	// Network fetches started.
	// example: 1
	Fetches uint64 `json:"fetches" example:"1"`
	// Network fetches that failed.
	// example: 0
	FetchErrors uint64 `json:"fetch_errors" example:"0"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Whether the host reports being online.
	// example: true
	Online bool `json:"online" example:"true"`
	// Whether the slow-link policy is in effect.
	// example: false
	SlowLink bool `json:"slow_link" example:"false"`
	// Loads currently running.
	// example: 2
	ActiveLoads int `json:"active_loads" example:"2"`
	// Maximum concurrent loads.
	// example: 5
	MaxActive int `json:"max_active" example:"5"`
	// Requests waiting for a slot.
	// example: 3
	QueueDepth int `json:"queue_depth" example:"3"`
	// Load requests accepted.
	// example: 12
	RequestsTotal uint64 `json:"requests_total" example:"12"`
	// Loads that completed.
	// example: 10
	SucceededTotal uint64 `json:"succeeded_total" example:"10"`
	// Loads that failed.
	// example: 1
	FailedTotal uint64 `json:"failed_total" example:"1"`
	// Payloads held by the binary cache.
	// example: 8
	BinaryCacheEntries int `json:"binary_cache_entries" example:"8"`
	// Tracked presentation resources.
	// example: 4
	Resources int `json:"resources" example:"4"`
	// Registered variants.
	// example: 6
	Registered int `json:"registered" example:"6"`
	// Catalog cache summary.
	Catalog CatalogStatus `json:"catalog"`
	// Per-family state, sorted by name.
	Families []FamilyStatus `json:"families"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// FamiliesResponse wraps the catalog listing.
type FamiliesResponse struct {
	Families []Family `json:"families"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// RetryResponse reports whether a failed family was re-queued.
type RetryResponse struct {
	// Family name.
	// example: Roboto
	Family string `json:"family" example:"Roboto"`
	// False while the backoff delay has not elapsed or the family is not failed.
	// example: true
	Retried bool `json:"retried" example:"true"`
}
