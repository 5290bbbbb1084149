package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"fontd/internal/common/httpclient"
	"fontd/internal/fetch"
	"fontd/internal/manager"
	"fontd/pkg/types"
)

func TestLoadErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &manager.LoadError{Family: "Nope", Attempts: 1, Err: fmt.Errorf("%q: %w", "Nope", fetch.ErrFamilyNotFound)}, http.StatusNotFound},
		{"no variant", fmt.Errorf("x: %w", fetch.ErrNoUsableVariant), http.StatusUnprocessableEntity},
		{"auth", &httpclient.StatusError{Kind: httpclient.KindFor(403), StatusCode: 403}, http.StatusBadGateway},
		{"closed", manager.ErrClosed, http.StatusServiceUnavailable},
		{"deadline", fmt.Errorf("load: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"http error", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		svc := &mockService{loadErr: c.err}
		w := serve(NewMux(svc), http.MethodPost, "/fonts/load", []byte(`{"family":"Nope"}`))
		if w.Code != c.want {
			t.Fatalf("%s: status=%d want %d", c.name, w.Code, c.want)
		}
		var body types.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: json: %v", c.name, err)
		}
		if body.Code != c.want || body.Error == "" {
			t.Fatalf("%s: body=%+v", c.name, body)
		}
	}
}

func TestInvalidRequestFromServiceIsBadRequest(t *testing.T) {
	m := manager.NewWithConfig(manager.ManagerConfig{})
	defer m.Close()
	svc := &mockService{}
	_, svc.loadErr = m.Load(types.LoadRequest{Family: "Roboto", Priority: "urgent"})
	if svc.loadErr == nil {
		t.Fatalf("expected invalid priority error")
	}
	w := serve(NewMux(svc), http.MethodPost, "/fonts/load", []byte(`{"family":"Roboto"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestBinaryErrorMapping(t *testing.T) {
	svc := &mockService{payloadErr: fmt.Errorf("%q: %w", "Nope", fetch.ErrFamilyNotFound)}
	w := serve(NewMux(svc), http.MethodGet, "/fonts/Nope/binary", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestFamiliesErrorMapping(t *testing.T) {
	svc := &mockService{famErr: &httpclient.StatusError{Kind: httpclient.KindFor(401), StatusCode: 401}}
	w := serve(NewMux(svc), http.MethodGet, "/fonts", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status=%d", w.Code)
	}
}
