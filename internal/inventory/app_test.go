package inventory_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"StockKeeper/internal/inventory"
)

type productJSON struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type errorJSON struct {
	Error     string         `json:"error"`
	Details   map[string]any `json:"details"`
	RequestID string         `json:"request_id"`
}

func newCatalogTS(t *testing.T, deps inventory.HTTPDeps, seed ...inventory.Product) (*httptest.Server, *inventory.Catalog) {
	t.Helper()

	c, err := inventory.Open(context.Background(), inventory.NewMemStore(seed...))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	s := &inventory.Server{
		Catalog:           c,
		Log:               zap.NewNop(),
		LowStockThreshold: inventory.DefaultLowStockThreshold,
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	deps.Service = "stockkeeper"

	ts := httptest.NewServer(inventory.NewHandler(s, deps))
	t.Cleanup(ts.Close)
	return ts, c
}

func product(t *testing.T, sku, name, category string, qty int, price float64) inventory.Product {
	t.Helper()
	p, err := inventory.NewProduct(sku, name, category, qty, price)
	if err != nil {
		t.Fatalf("NewProduct: %v", err)
	}
	return p
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func mustStatus(t *testing.T, resp *http.Response, raw []byte, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d body=%s", resp.Request.Method, resp.Request.URL, resp.StatusCode, want, raw)
	}
}

func decodeBody[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	ts, _ := newCatalogTS(t, inventory.HTTPDeps{})

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, raw := doJSON(t, http.MethodGet, ts.URL+path, nil, nil)
		mustStatus(t, resp, raw, http.StatusOK)
	}
}

func TestProductLifecycle(t *testing.T) {
	ts, c := newCatalogTS(t, inventory.HTTPDeps{})

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/products", productJSON{
		SKU: "A1", Name: "Laptop", Category: "Electronics", Quantity: 3, Price: 999.5,
	}, nil)
	mustStatus(t, resp, raw, http.StatusCreated)

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/products/A1", nil, nil)
	mustStatus(t, resp, raw, http.StatusOK)
	if got := decodeBody[productJSON](t, raw); got.Name != "Laptop" || got.Quantity != 3 {
		t.Fatalf("get = %+v", got)
	}

	resp, raw = doJSON(t, http.MethodPost, ts.URL+"/products/A1/adjust", map[string]any{"delta": -2}, nil)
	mustStatus(t, resp, raw, http.StatusOK)
	if got := decodeBody[productJSON](t, raw); got.Quantity != 1 {
		t.Fatalf("adjust = %+v", got)
	}

	resp, raw = doJSON(t, http.MethodPut, ts.URL+"/products/A1/quantity", map[string]any{"value": 8}, nil)
	mustStatus(t, resp, raw, http.StatusOK)

	resp, raw = doJSON(t, http.MethodPut, ts.URL+"/products/A1/price", map[string]any{"value": 10.25}, nil)
	mustStatus(t, resp, raw, http.StatusOK)

	resp, raw = doJSON(t, http.MethodPut, ts.URL+"/products/A1", map[string]any{
		"name": "Notebook", "category": "Computers", "quantity": 4, "price": 12,
	}, nil)
	mustStatus(t, resp, raw, http.StatusOK)
	if got := decodeBody[productJSON](t, raw); got != (productJSON{"A1", "Notebook", "Computers", 4, 12}) {
		t.Fatalf("edit = %+v", got)
	}

	resp, raw = doJSON(t, http.MethodDelete, ts.URL+"/products/A1", nil, nil)
	mustStatus(t, resp, raw, http.StatusNoContent)
	if c.Len() != 0 {
		t.Fatalf("Len = %d after delete", c.Len())
	}
}

func TestErrorMapping(t *testing.T) {
	ts, _ := newCatalogTS(t, inventory.HTTPDeps{}, product(t, "A1", "Laptop", "", 3, 1))

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
		msg    string
	}{
		{"duplicate", http.MethodPost, "/products", productJSON{SKU: "A1", Name: "X"}, http.StatusConflict, "duplicate sku"},
		{"invalid", http.MethodPost, "/products", productJSON{SKU: "B", Name: ""}, http.StatusBadRequest, "invalid product"},
		{"negative price", http.MethodPost, "/products", productJSON{SKU: "B", Name: "b", Price: -1}, http.StatusBadRequest, "invalid product"},
		{"bad json", http.MethodPost, "/products", `{"sku":`, http.StatusBadRequest, "bad json"},
		{"unknown field", http.MethodPost, "/products", `{"sku":"B","name":"b","colour":"red"}`, http.StatusBadRequest, "bad json"},
		{"fractional quantity", http.MethodPut, "/products/A1/quantity", `{"value":1.5}`, http.StatusBadRequest, "bad json"},
		{"missing get", http.MethodGet, "/products/nope", nil, http.StatusNotFound, "not found"},
		{"missing delete", http.MethodDelete, "/products/nope", nil, http.StatusNotFound, "not found"},
		{"missing adjust", http.MethodPost, "/products/nope/adjust", map[string]any{"delta": 1}, http.StatusNotFound, "not found"},
		{"below zero", http.MethodPost, "/products/A1/adjust", map[string]any{"delta": -4}, http.StatusBadRequest, "invalid product"},
		{"bad threshold", http.MethodGet, "/reports/low-stock?threshold=low", nil, http.StatusBadRequest, "bad threshold"},
		{"bad reverse", http.MethodGet, "/products?reverse=maybe", nil, http.StatusBadRequest, "bad query"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := doJSON(t, tc.method, ts.URL+tc.path, tc.body, nil)
			mustStatus(t, resp, raw, tc.want)

			got := decodeBody[errorJSON](t, raw)
			if got.Error != tc.msg {
				t.Fatalf("error = %q want %q", got.Error, tc.msg)
			}
			if got.RequestID == "" {
				t.Fatalf("request_id missing: %s", raw)
			}
		})
	}
}

func TestListQueries(t *testing.T) {
	ts, _ := newCatalogTS(t, inventory.HTTPDeps{},
		product(t, "B", "Mouse", "Electronics", 10, 5),
		product(t, "A", "Laptop", "Electronics", 3, 10),
		product(t, "C", "Desk", "Furniture", 1, 50),
	)

	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"B", "A", "C"}},
		{"?sort=sku", []string{"A", "B", "C"}},
		{"?sort=price&reverse=true", []string{"C", "A", "B"}},
		{"?sort=colour", []string{"B", "A", "C"}},
		{"?name=LAP", []string{"A"}},
		{"?category=electronics&sort=quantity", []string{"A", "B"}},
		{"?q=furn", []string{"C"}},
		{"?name=zzz", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products"+tc.query, nil, nil)
			mustStatus(t, resp, raw, http.StatusOK)

			got := decodeBody[[]productJSON](t, raw)
			skus := make([]string, 0, len(got))
			for _, p := range got {
				skus = append(skus, p.SKU)
			}
			if strings.Join(skus, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("got %v want %v", skus, tc.want)
			}
		})
	}
}

func TestReports(t *testing.T) {
	ts, _ := newCatalogTS(t, inventory.HTTPDeps{},
		product(t, "A", "a", "", 3, 10),
		product(t, "B", "b", "", 2, 5),
		product(t, "C", "c", "", 10, 1),
	)

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/reports/total-value", nil, nil)
	mustStatus(t, resp, raw, http.StatusOK)
	total := decodeBody[struct {
		TotalValue float64 `json:"total_value"`
		Products   int     `json:"products"`
	}](t, raw)
	if total.TotalValue != 50 || total.Products != 3 {
		t.Fatalf("total = %+v", total)
	}

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/reports/low-stock", nil, nil)
	mustStatus(t, resp, raw, http.StatusOK)
	low := decodeBody[struct {
		Threshold int           `json:"threshold"`
		Products  []productJSON `json:"products"`
	}](t, raw)
	if low.Threshold != 5 || len(low.Products) != 2 {
		t.Fatalf("low = %+v", low)
	}

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/reports/low-stock?threshold=2", nil, nil)
	mustStatus(t, resp, raw, http.StatusOK)
	low = decodeBody[struct {
		Threshold int           `json:"threshold"`
		Products  []productJSON `json:"products"`
	}](t, raw)
	if len(low.Products) != 1 || low.Products[0].SKU != "B" {
		t.Fatalf("low(2) = %+v", low)
	}
}

func TestTablePage(t *testing.T) {
	ts, _ := newCatalogTS(t, inventory.HTTPDeps{},
		product(t, "A", "Tea <green>", "Drinks", 3, 2.5),
	)

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/table?sort=name", nil, nil)
	mustStatus(t, resp, raw, http.StatusOK)

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	page := string(raw)
	for _, want := range []string{"<table", "Tea &lt;green&gt;", "2.50", "total value 7.50"} {
		if !strings.Contains(page, want) {
			t.Fatalf("page missing %q:\n%s", want, page)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts, _ := newCatalogTS(t, inventory.HTTPDeps{
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   "secret",
	})

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/metrics", nil, nil)
	mustStatus(t, resp, raw, http.StatusForbidden)

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/healthz", nil, nil)
	mustStatus(t, resp, raw, http.StatusOK)

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/metrics", nil, map[string]string{"Authorization": "Bearer secret"})
	mustStatus(t, resp, raw, http.StatusOK)
	if !strings.Contains(string(raw), `http_requests_total{method="GET",path="/healthz",service="stockkeeper",status="200"}`) {
		t.Fatalf("metrics missing healthz counter:\n%s", raw)
	}
}
