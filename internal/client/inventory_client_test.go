package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"invadmin/internal/client"
	"invadmin/internal/domain"
)

type seen struct {
	method, path, query, contentType string
	body                             map[string]any
}

func fakeAPI(t *testing.T, status int, reply string) (*client.InventoryClient, func() []seen) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []seen
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := seen{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, contentType: r.Header.Get("Content-Type")}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &s.body)
		}
		mu.Lock()
		calls = append(calls, s)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	recorded := func() []seen {
		mu.Lock()
		defer mu.Unlock()
		return append([]seen(nil), calls...)
	}
	return client.NewInventoryClient(srv.URL+"/", 5*time.Second), recorded
}

const widget = `{"id":"x","product_id":"P1","product_name":"Widget","condition":"new","quantity":5,"restock_level":2,"reorder_amount":10}`

func TestCreateSendsAllFieldsAsJSON(t *testing.T) {
	c, calls := fakeAPI(t, http.StatusCreated, widget)
	f := domain.Fields{ProductID: "P1", ProductName: "Widget", Quantity: "5", Condition: "new", RestockLevel: "2", ReorderAmount: "", ChangeValue: "9"}
	rec, err := c.Create(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ProductID != "P1" || rec.Quantity != 5 || rec.ReorderAmount != 10 {
		t.Fatalf("bad decode: %+v", rec)
	}
	got := calls()[0]
	if got.method != http.MethodPost || got.path != "/inventory" {
		t.Fatalf("unexpected target %s %s", got.method, got.path)
	}
	if got.contentType != "application/json" {
		t.Fatalf("content type %q", got.contentType)
	}
	for _, k := range []string{"product_id", "product_name", "quantity", "condition", "restock_level", "reorder_amount"} {
		if _, ok := got.body[k]; !ok {
			t.Fatalf("body missing %s: %v", k, got.body)
		}
	}
	if got.body["reorder_amount"] != "" {
		t.Fatalf("empty values must be sent verbatim, got %v", got.body["reorder_amount"])
	}
	if _, ok := got.body["change_value"]; ok || len(got.body) != 6 {
		t.Fatalf("body carries extra keys: %v", got.body)
	}
}

func TestAdjustmentsTargetDistinctSuffixes(t *testing.T) {
	c, calls := fakeAPI(t, http.StatusOK, widget)
	ctx := context.Background()
	if _, err := c.Increase(ctx, "7", "NEW", "3"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decrease(ctx, "7", "NEW", "3"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SetQuantity(ctx, "7", "NEW", "3"); err != nil {
		t.Fatal(err)
	}
	want := []string{"/inventory/7/inc", "/inventory/7/dec", "/inventory/7/update"}
	for i, w := range want {
		got := calls()[i]
		if got.method != http.MethodPut || got.path != w {
			t.Fatalf("call %d: want PUT %s, got %s %s", i, w, got.method, got.path)
		}
		if got.query != "condition=NEW&value=3" {
			t.Fatalf("call %d: query %q", i, got.query)
		}
	}
}

func TestUpdateGetDeleteTargets(t *testing.T) {
	c, calls := fakeAPI(t, http.StatusOK, widget)
	ctx := context.Background()
	if _, err := c.Update(ctx, "7", "OPEN_BOX", domain.Fields{ProductID: "7"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "7", "OPEN_BOX"); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "7"); err != nil {
		t.Fatal(err)
	}
	cs := calls()
	if cs[0].method != http.MethodPut || cs[0].path != "/inventory/7" || cs[0].query != "condition=OPEN_BOX" || cs[0].body == nil {
		t.Fatalf("update: %+v", cs[0])
	}
	if cs[1].method != http.MethodGet || cs[1].path != "/inventory/7" || cs[1].query != "condition=OPEN_BOX" || cs[1].body != nil {
		t.Fatalf("get: %+v", cs[1])
	}
	if cs[2].method != http.MethodDelete || cs[2].path != "/inventory/7" || cs[2].query != "" {
		t.Fatalf("delete: %+v", cs[2])
	}
}

func TestSearchRouting(t *testing.T) {
	c, calls := fakeAPI(t, http.StatusOK, `[]`)
	ctx := context.Background()
	_, _ = c.Search(ctx, client.SearchFilter{ProductID: "7", ProductName: "ignored", Condition: "NEW"})
	_, _ = c.Search(ctx, client.SearchFilter{ProductID: "7"})
	_, _ = c.Search(ctx, client.SearchFilter{ProductName: "Widget", Condition: "USED"})
	_, _ = c.Search(ctx, client.SearchFilter{})

	want := []struct{ path, query string }{
		{"/inventory/7", "condition=NEW"},
		{"/inventory/7", ""},
		{"/inventory", "condition=USED&product_name=Widget"},
		{"/inventory", ""},
	}
	for i, w := range want {
		got := calls()[i]
		if got.path != w.path || got.query != w.query {
			t.Fatalf("search %d: want %s?%s, got %s?%s", i, w.path, w.query, got.path, got.query)
		}
	}
}

func TestDecodeSearchShapes(t *testing.T) {
	one, err := client.DecodeSearch([]byte("  " + widget))
	if err != nil {
		t.Fatal(err)
	}
	if one.Shape != domain.ShapeSingle || len(one.Rows()) != 1 || one.Rows()[0].ProductName != "Widget" {
		t.Fatalf("single: %+v", one)
	}

	many, err := client.DecodeSearch([]byte(`[{"product_id":1},{"product_id":2},{"product_id":3}]`))
	if err != nil {
		t.Fatal(err)
	}
	rows := many.Rows()
	if many.Shape != domain.ShapeMany || len(rows) != 3 || rows[0].ProductID != "1" || rows[2].ProductID != "3" {
		t.Fatalf("many: %+v", many)
	}

	if _, err := client.DecodeSearch([]byte(`"nope"`)); err == nil {
		t.Fatal("scalar body accepted")
	}
}

func TestAPIErrorCarriesMessage(t *testing.T) {
	c, _ := fakeAPI(t, http.StatusNotFound, `{"status_code":404,"error":"Not Found","message":"Product with id '7' was not found."}`)
	_, err := c.Get(context.Background(), "7", "NEW")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "Product with id '7' was not found." {
		t.Fatalf("unexpected %+v", apiErr)
	}

	c2, _ := fakeAPI(t, http.StatusInternalServerError, `<html>boom</html>`)
	err = c2.Delete(context.Background(), "7")
	if !errors.As(err, &apiErr) || apiErr.Message != "" {
		t.Fatalf("want message-less APIError, got %v", err)
	}
}
