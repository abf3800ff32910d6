package integrations

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/timenexus/timenexus/pkg/observability"
)

func TestNewClient(t *testing.T) {
	client := NewClient(map[string]string{"Authorization": "Bearer token"})
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
	if NewClient(nil).headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestClientGetJSON(t *testing.T) {
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		header = r.Header.Get("X-Default")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "hello"})
	}))
	defer server.Close()

	client := NewClient(map[string]string{"X-Default": "default"}).WithHTTPClient(server.Client())
	var resp map[string]string
	if err := client.GetJSON(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}
	if resp["message"] != "hello" {
		t.Errorf("message = %q, want %q", resp["message"], "hello")
	}
	if header != "default" {
		t.Errorf("default header = %q, want %q", header, "default")
	}
}

func TestClientGetJSON404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(nil).WithHTTPClient(server.Client())
	var resp map[string]string
	if err := client.GetJSON(context.Background(), server.URL, &resp); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetJSON() error = %v, want ErrNotFound", err)
	}
}

func TestClientPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var in map[string]int
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]int{"k": in["k"]})
	}))
	defer server.Close()

	client := NewClient(nil).WithHTTPClient(server.Client())
	resp, err := client.PostJSON(context.Background(), server.URL, map[string]int{"k": 50})
	if err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if resp.OK() || resp.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.Status)
	}
	var out map[string]int
	_ = json.Unmarshal(resp.Body, &out)
	if out["k"] != 50 {
		t.Errorf("body = %s", resp.Body)
	}
}

func TestClientPostSOAP(t *testing.T) {
	type ping struct {
		XMLName xml.Name `xml:"ping"`
		Value   string   `xml:"value"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a := r.Header.Get("SOAPAction"); a != "ping" {
			t.Errorf("SOAPAction = %q", a)
		}
		body, _ := io.ReadAll(r.Body)
		var p ping
		if err := xml.Unmarshal(body, &p); err != nil || p.Value != "x" {
			t.Errorf("body = %s", body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(nil).WithHTTPClient(server.Client())
	resp, err := client.PostSOAP(context.Background(), server.URL, "ping", ping{Value: "x"})
	if err != nil || !resp.OK() {
		t.Fatalf("PostSOAP() = %v, %v", resp, err)
	}
}

func TestClientDelete(t *testing.T) {
	var method string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
	}))
	defer server.Close()

	client := NewClient(nil).WithHTTPClient(server.Client())
	if err := client.Delete(context.Background(), server.URL+"/v1/networks/1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if method != http.MethodDelete {
		t.Errorf("method = %s", method)
	}
}

func TestClientNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(nil).Do(context.Background(), http.MethodGet, url, "", nil)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Do() error = %v, want ErrNetwork", err)
	}
}

func TestClientCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(nil).Do(ctx, http.MethodGet, "http://127.0.0.1:1", "", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestClientHooks(t *testing.T) {
	defer observability.Reset()
	p := observability.NewPrometheus(prometheus.NewRegistry())
	observability.SetHTTPHooks(p)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client := NewClient(nil).WithHTTPClient(server.Client())
	_, _ = client.Do(context.Background(), http.MethodGet, server.URL, "", nil)

	if testutil.CollectAndCount(p.HTTPRequests) != 1 {
		t.Error("expected one request series")
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{200, nil},
		{204, nil},
		{404, ErrNotFound},
		{400, ErrStatus},
		{500, ErrStatus},
	}
	for _, tt := range tests {
		err := CheckStatus(tt.code)
		if tt.want == nil && err != nil {
			t.Errorf("CheckStatus(%d) = %v, want nil", tt.code, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("CheckStatus(%d) = %v, want %v", tt.code, err, tt.want)
		}
	}
}
