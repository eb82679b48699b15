package shop_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"BuildMart/internal/cart"
	"BuildMart/internal/catalog"
	"BuildMart/internal/shop"
)

func newShopTS(t *testing.T) *httptest.Server {
	t.Helper()

	store := catalog.NewStore(catalog.BuildingMaterials())

	s := &shop.Server{
		Catalog: store,
		Matcher: catalog.NewMatcher(store),
		Carts:   cart.NewMemStore(store),
		Log:     zap.NewNop(),
	}

	h := shop.NewHandler(s, shop.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "buildmart",
	})

	return httptest.NewServer(h)
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
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

func TestHealth(t *testing.T) {
	ts := newShopTS(t)
	t.Cleanup(ts.Close)

	resp, raw := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v body=%s", err, raw)
	}
	if body["status"] != "ok" {
		t.Fatalf("body=%v", body)
	}
}

func TestListAndGetProducts(t *testing.T) {
	ts := newShopTS(t)
	t.Cleanup(ts.Close)

	resp, raw := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/products", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status=%d", resp.StatusCode)
	}

	var products []catalog.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		t.Fatalf("decode: %v body=%s", err, raw)
	}
	if len(products) != 20 {
		t.Fatalf("len=%d, want 20", len(products))
	}

	resp, raw = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/products/concrete_bag", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status=%d body=%s", resp.StatusCode, raw)
	}
	var p catalog.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name != "Concrete Mix 60lb" || p.Unit != "bag" {
		t.Fatalf("product=%+v", p)
	}

	resp, _ = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/products/granite_slab", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown product status=%d", resp.StatusCode)
	}
}

type searchResp struct {
	Results []struct {
		Query   string           `json:"query"`
		Found   bool             `json:"found"`
		Product *catalog.Product `json:"product"`
	} `json:"results"`
	NotFound []string `json:"not_found"`
}

func TestSearchBulk(t *testing.T) {
	ts := newShopTS(t)
	t.Cleanup(ts.Close)

	url := ts.URL + "/products/search?queries=concrete_bag&queries=Clay+Brick&queries=qqqq"
	resp, raw := doJSON(t, ts.Client(), http.MethodGet, url, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}

	var sr searchResp
	if err := json.Unmarshal(raw, &sr); err != nil {
		t.Fatalf("decode: %v body=%s", err, raw)
	}
	if len(sr.Results) != 3 {
		t.Fatalf("results=%+v", sr.Results)
	}

	if !sr.Results[0].Found || sr.Results[0].Product.ID != "concrete_bag" {
		t.Fatalf("results[0]=%+v", sr.Results[0])
	}
	if !sr.Results[1].Found || sr.Results[1].Product.ID != "brick_clay" {
		t.Fatalf("results[1]=%+v", sr.Results[1])
	}
	if sr.Results[2].Found || sr.Results[2].Product != nil {
		t.Fatalf("results[2]=%+v", sr.Results[2])
	}
	if len(sr.NotFound) != 1 || sr.NotFound[0] != "qqqq" {
		t.Fatalf("not_found=%v", sr.NotFound)
	}
}

func TestSearchValidation(t *testing.T) {
	ts := newShopTS(t)
	t.Cleanup(ts.Close)

	for _, path := range []string{
		"/products/search",
		"/products/search?queries=",
		"/products/search?queries=concrete_bag&queries=%20%20",
	} {
		resp, raw := doJSON(t, ts.Client(), http.MethodGet, ts.URL+path, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status=%d body=%s", path, resp.StatusCode, raw)
		}
	}
}

func TestCartAddRemoveFlow(t *testing.T) {
	ts := newShopTS(t)
	t.Cleanup(ts.Close)

	resp, raw := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/cart/add", map[string]any{
		"user_id": "alice",
		"items":   []map[string]any{{"product_id": "concrete_bag", "quantity": 2}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add status=%d body=%s", resp.StatusCode, raw)
	}

	var snap cart.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode: %v body=%s", err, raw)
	}
	if snap.UserID != "alice" || snap.TotalItems != 2 {
		t.Fatalf("snap=%+v", snap)
	}
	if len(snap.Items) != 1 || snap.Items[0].Name != "Concrete Mix 60lb" {
		t.Fatalf("items=%+v", snap.Items)
	}

	// Removing more than held clamps to deletion, not an error.
	resp, raw = doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/cart/remove", map[string]any{
		"user_id": "alice",
		"items":   []map[string]any{{"product_id": "concrete_bag", "quantity": 5}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove status=%d body=%s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.Items) != 0 || snap.TotalItems != 0 {
		t.Fatalf("snap=%+v", snap)
	}

	// The emptied cart still exists.
	resp, raw = doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/cart/alice", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get cart status=%d body=%s", resp.StatusCode, raw)
	}
}

func TestCartErrors(t *testing.T) {
	ts := newShopTS(t)
	t.Cleanup(ts.Close)

	cases := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{
			name:   "unknown product",
			path:   "/cart/add",
			body:   map[string]any{"user_id": "alice", "items": []map[string]any{{"product_id": "granite_slab", "quantity": 1}}},
			status: http.StatusNotFound,
		},
		{
			name:   "remove not in cart",
			path:   "/cart/remove",
			body:   map[string]any{"user_id": "bob", "items": []map[string]any{{"product_id": "concrete_bag", "quantity": 1}}},
			status: http.StatusNotFound,
		},
		{
			name:   "zero quantity",
			path:   "/cart/add",
			body:   map[string]any{"user_id": "alice", "items": []map[string]any{{"product_id": "concrete_bag", "quantity": 0}}},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing user_id",
			path:   "/cart/add",
			body:   map[string]any{"items": []map[string]any{{"product_id": "concrete_bag", "quantity": 1}}},
			status: http.StatusBadRequest,
		},
		{
			name:   "empty items",
			path:   "/cart/add",
			body:   map[string]any{"user_id": "alice", "items": []map[string]any{}},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown field",
			path:   "/cart/add",
			body:   map[string]any{"user_id": "alice", "items": []map[string]any{}, "coupon": "x"},
			status: http.StatusBadRequest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := doJSON(t, ts.Client(), http.MethodPost, ts.URL+tc.path, tc.body)
			if resp.StatusCode != tc.status {
				t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, tc.status, raw)
			}
		})
	}
}

func TestCartBadJSON(t *testing.T) {
	ts := newShopTS(t)
	t.Cleanup(ts.Close)

	resp, err := ts.Client().Post(ts.URL+"/cart/add", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestGuestCart(t *testing.T) {
	ts := newShopTS(t)
	t.Cleanup(ts.Close)

	resp, raw := doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/cart/guest", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}

	var snap cart.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode: %v body=%s", err, raw)
	}
	if !strings.HasPrefix(snap.UserID, "g_") {
		t.Fatalf("user_id=%q", snap.UserID)
	}
	if len(snap.Items) != 0 || snap.TotalItems != 0 {
		t.Fatalf("snap=%+v", snap)
	}

	// The freshly minted cart is immediately usable.
	resp, raw = doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/cart/add", map[string]any{
		"user_id": snap.UserID,
		"items":   []map[string]any{{"product_id": "led_fixture", "quantity": 1}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add status=%d body=%s", resp.StatusCode, raw)
	}
}

func TestGetCartUnknownUser(t *testing.T) {
	ts := newShopTS(t)
	t.Cleanup(ts.Close)

	resp, _ := doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/cart/nobody", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}
