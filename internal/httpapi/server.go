package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fontd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	Ready() bool
	Load(req types.LoadRequest) (types.LoadResponse, error)
	FamilyState(family string) (types.FamilyStatus, bool)
	Retry(family string) (bool, error)
	Payload(ctx context.Context, family string, weight int, style string) ([]byte, error)
	SetNetwork(req types.NetworkRequest)
	Families(ctx context.Context) ([]types.Family, error)
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: orDefault(corsAllowedOrigins, []string{"*"}),
			AllowedMethods: orDefault(corsAllowedMethods, []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders: orDefault(corsAllowedHeaders, []string{"Content-Type", "X-Log-Level"}),
			MaxAge:         300,
		}))
	}
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5, "application/json"))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(InflightMiddleware)

		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.Status())
		})

		r.Get("/fonts", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			fams, err := svc.Families(r.Context())
			if err != nil {
				status := statusFor(err)
				writeJSONError(w, status, err.Error())
				logEnd(r, "families", status, start, err)
				return
			}
			writeJSON(w, http.StatusOK, types.FamiliesResponse{Families: fams})
		})

		r.Post("/fonts/load", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			var req types.LoadRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			if strings.TrimSpace(req.Family) == "" {
				writeJSONError(w, http.StatusBadRequest, "family is required")
				return
			}
			resp, err := svc.Load(req)
			if err != nil {
				status := statusFor(err)
				writeJSONError(w, status, err.Error())
				logEnd(r, "load", status, start, err)
				return
			}
			writeJSON(w, http.StatusAccepted, resp)
			logEnd(r, "load", http.StatusAccepted, start, nil)
		})

		r.Get("/fonts/{family}", func(w http.ResponseWriter, r *http.Request) {
			family := chi.URLParam(r, "family")
			fs, ok := svc.FamilyState(family)
			if !ok {
				writeJSONError(w, http.StatusNotFound, "unknown family: "+family)
				return
			}
			writeJSON(w, http.StatusOK, fs)
		})

		r.Post("/fonts/{family}/retry", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			family := chi.URLParam(r, "family")
			retried, err := svc.Retry(family)
			if err != nil {
				status := statusFor(err)
				writeJSONError(w, status, err.Error())
				logEnd(r, "retry", status, start, err)
				return
			}
			writeJSON(w, http.StatusOK, types.RetryResponse{Family: family, Retried: retried})
		})

		r.Get("/fonts/{family}/binary", func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			family := chi.URLParam(r, "family")
			weight := 0
			if v := r.URL.Query().Get("weight"); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil || n < 0 {
					writeJSONError(w, http.StatusBadRequest, "invalid weight")
					return
				}
				weight = n
			}
			ctx, cancel := downloadContext(r)
			defer cancel()
			data, err := svc.Payload(ctx, family, weight, r.URL.Query().Get("style"))
			if err != nil {
				if r.Context().Err() != nil {
					return
				}
				status := statusFor(err)
				writeJSONError(w, status, err.Error())
				logEnd(r, "binary", status, start, err)
				return
			}
			w.Header().Set("Content-Type", http.DetectContentType(data))
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
			logEnd(r, "binary", http.StatusOK, start, nil)
		})

		r.Post("/network", func(w http.ResponseWriter, r *http.Request) {
			var req types.NetworkRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			svc.SetNetwork(req)
			st := svc.Status()
			writeJSON(w, http.StatusOK, types.NetworkRequest{Online: &st.Online, SlowLink: &st.SlowLink})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// decodeJSON enforces the JSON content type and body limit. It writes the
// error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
