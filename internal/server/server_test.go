package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"printworks/internal/bulkadjust"
	"printworks/internal/checkout"
	"printworks/internal/pricing"
	"printworks/internal/store"
)

type fakeCatalog struct {
	products map[uuid.UUID]*store.Product
	presets  map[uuid.UUID]*pricing.Preset
}

func (f *fakeCatalog) GetProduct(_ context.Context, id uuid.UUID) (*store.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) GetPreset(_ context.Context, id uuid.UUID) (*pricing.Preset, error) {
	p, ok := f.presets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

type fakeRepricer struct {
	totals *checkout.Totals
	order  *store.Order
	err    error
}

func (f *fakeRepricer) Reprice(_ context.Context, _ []checkout.CartLine) (*checkout.Totals, error) {
	return f.totals, f.err
}

func (f *fakeRepricer) PlaceOrder(_ context.Context, _ []checkout.CartLine) (*store.Order, error) {
	return f.order, f.err
}

type fakeAdjuster struct {
	report *bulkadjust.Report
	err    error
}

func (f *fakeAdjuster) Run(_ context.Context, _ bulkadjust.Request) (*bulkadjust.Report, error) {
	return f.report, f.err
}

func testCatalog() (*fakeCatalog, uuid.UUID) {
	preset := &pricing.Preset{
		ID:       uuid.New(),
		Key:      "stickers-qty",
		Model:    pricing.ModelQtyTiered,
		IsActive: true,
		Version:  1,
		Config: &pricing.QtyTieredConfig{
			Tiers:        []pricing.QtyTier{{MinQty: 1, UnitPrice: 1.50}},
			MinimumPrice: 25,
		},
	}
	product := &store.Product{ID: uuid.New(), Name: "Die-cut stickers", Category: "stickers", PresetID: &preset.ID, IsActive: true}
	return &fakeCatalog{
		products: map[uuid.UUID]*store.Product{product.ID: product},
		presets:  map[uuid.UUID]*pricing.Preset{preset.ID: preset},
	}, product.ID
}

func newTestServer(catalog Catalog, repricer Repricer, adjuster Adjuster) http.Handler {
	return NewWith(catalog, pricing.NewEngine(), repricer, adjuster)
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestHealthz(t *testing.T) {
	catalog, _ := testCatalog()
	h := newTestServer(catalog, &fakeRepricer{}, &fakeAdjuster{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestRequestIDHeader(t *testing.T) {
	catalog, _ := testCatalog()
	h := newTestServer(catalog, &fakeRepricer{}, &fakeAdjuster{})

	t.Run("generated when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatal("expected X-Request-ID to be set")
		}
	})

	t.Run("propagated when provided", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if got := rr.Header().Get("X-Request-ID"); got != "req-123" {
			t.Fatalf("expected propagated id, got %q", got)
		}
	})
}

func TestQuoteEndpoint(t *testing.T) {
	catalog, productID := testCatalog()
	h := newTestServer(catalog, &fakeRepricer{}, &fakeAdjuster{})

	t.Run("happy path", func(t *testing.T) {
		rr := postJSON(t, h, "/quote", fmt.Sprintf(`{"productId":%q,"quantity":30}`, productID))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var quote pricing.Quote
		if err := json.Unmarshal(rr.Body.Bytes(), &quote); err != nil {
			t.Fatalf("decode quote: %v", err)
		}
		if quote.TotalCents != 4599 {
			t.Fatalf("expected 4599, got %d", quote.TotalCents)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		rr := postJSON(t, h, "/quote", `{`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if code := errorCode(t, rr); code != "invalid_json" {
			t.Fatalf("unexpected code %q", code)
		}
	})

	t.Run("missing product id", func(t *testing.T) {
		rr := postJSON(t, h, "/quote", `{"quantity":30}`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		rr := postJSON(t, h, "/quote", fmt.Sprintf(`{"productId":%q,"quantity":0}`, productID))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if code := errorCode(t, rr); code != "invalid_request" {
			t.Fatalf("unexpected code %q", code)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		rr := postJSON(t, h, "/quote", fmt.Sprintf(`{"productId":%q,"quantity":30}`, uuid.New()))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
		if code := errorCode(t, rr); code != "resource_not_found" {
			t.Fatalf("unexpected code %q", code)
		}
	})

	t.Run("product without preset is unpriceable", func(t *testing.T) {
		orphan := &store.Product{ID: uuid.New(), Name: "Orphan", Category: "misc", IsActive: true}
		catalog.products[orphan.ID] = orphan
		rr := postJSON(t, h, "/quote", fmt.Sprintf(`{"productId":%q,"quantity":30}`, orphan.ID))
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rr.Code)
		}
		if code := errorCode(t, rr); code != "unpriceable" {
			t.Fatalf("unexpected code %q", code)
		}
	})
}

func TestRepriceEndpoint(t *testing.T) {
	catalog, productID := testCatalog()

	t.Run("happy path", func(t *testing.T) {
		repricer := &fakeRepricer{totals: &checkout.Totals{SubtotalCents: 4599, TotalCents: 4599}}
		h := newTestServer(catalog, repricer, &fakeAdjuster{})
		rr := postJSON(t, h, "/checkout/reprice", fmt.Sprintf(`{"lines":[{"productId":%q,"quantity":30}]}`, productID))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		h := newTestServer(catalog, &fakeRepricer{}, &fakeAdjuster{})
		rr := postJSON(t, h, "/checkout/reprice", `{"lines":[]}`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("unavailable product", func(t *testing.T) {
		repricer := &fakeRepricer{err: fmt.Errorf("%w: Die-cut stickers", checkout.ErrUnavailable)}
		h := newTestServer(catalog, repricer, &fakeAdjuster{})
		rr := postJSON(t, h, "/checkout/reprice", fmt.Sprintf(`{"lines":[{"productId":%q,"quantity":30}]}`, productID))
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rr.Code)
		}
		if code := errorCode(t, rr); code != "product_unavailable" {
			t.Fatalf("unexpected code %q", code)
		}
	})
}

func TestOrdersEndpoint(t *testing.T) {
	catalog, productID := testCatalog()
	order := &store.Order{ID: uuid.New(), Status: "created", SubtotalCents: 4599, TotalCents: 4599}
	h := newTestServer(catalog, &fakeRepricer{order: order}, &fakeAdjuster{})

	rr := postJSON(t, h, "/orders", fmt.Sprintf(`{"lines":[{"productId":%q,"quantity":30}]}`, productID))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp OrderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if resp.OrderID != order.ID.String() || resp.Status != "created" || resp.TotalCents != 4599 {
		t.Fatalf("unexpected order response %+v", resp)
	}
}

func TestPriceAdjustEndpoint(t *testing.T) {
	catalog, _ := testCatalog()
	body := `{"category":"stickers","percent":10,"adjust":{"tiers":true},"mode":"preview"}`

	t.Run("happy path", func(t *testing.T) {
		h := newTestServer(catalog, &fakeRepricer{}, &fakeAdjuster{report: &bulkadjust.Report{TouchedPresets: 1}})
		rr := postJSON(t, h, "/admin/price-adjust", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var report bulkadjust.Report
		if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
			t.Fatalf("decode report: %v", err)
		}
		if report.TouchedPresets != 1 {
			t.Fatalf("unexpected report %+v", report)
		}
	})

	t.Run("version conflict maps to 409", func(t *testing.T) {
		h := newTestServer(catalog, &fakeRepricer{}, &fakeAdjuster{err: store.ErrVersionConflict})
		rr := postJSON(t, h, "/admin/price-adjust", body)
		if rr.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rr.Code)
		}
		if code := errorCode(t, rr); code != "version_conflict" {
			t.Fatalf("unexpected code %q", code)
		}
	})

	t.Run("bad percent maps to 400", func(t *testing.T) {
		h := newTestServer(catalog, &fakeRepricer{}, &fakeAdjuster{err: bulkadjust.ErrBadPercent})
		rr := postJSON(t, h, "/admin/price-adjust", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}
