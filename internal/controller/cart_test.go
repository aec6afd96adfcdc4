package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Alturino/ecfresh/internal/cart"
	"github.com/Alturino/ecfresh/internal/catalog"
	inErrors "github.com/Alturino/ecfresh/internal/errors"
	"github.com/Alturino/ecfresh/internal/pricing"
)

type memoryKV struct {
	data map[string]string
}

func (kv *memoryKV) ReadString(_ context.Context, key string) (string, error) {
	value, ok := kv.data[key]
	if !ok {
		return "", inErrors.ErrKeyAbsent
	}
	return value, nil
}

func (kv *memoryKV) WriteString(_ context.Context, key, value string) error {
	kv.data[key] = value
	return nil
}

func (kv *memoryKV) DeleteKey(_ context.Context, key string) error {
	delete(kv.data, key)
	return nil
}

func testRouter(t *testing.T) (*mux.Router, *cart.Store) {
	t.Helper()

	index := catalog.New(context.Background(), []catalog.Product{
		{
			ID:   "alphonso-mango",
			Name: "Alphonso Mango",
			Variants: []catalog.Variant{
				{ID: "mango-500g", Size: "small", Price: decimal.NewFromInt(249), InStock: true},
			},
		},
	}, nil)
	store := cart.NewStore(context.Background(), index, &memoryKV{data: map[string]string{}})

	router := mux.NewRouter()
	AttachCartController(router, store, pricing.DefaultConfig())
	AttachCatalogController(router, index)
	return router, store
}

func TestAddCartItemEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "given valid item should add to cart",
			body:           `{"product_id":"alphonso-mango","variant_id":"mango-500g","quantity":2}`,
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "given missing quantity should default to one",
			body:           `{"product_id":"alphonso-mango","variant_id":"mango-500g"}`,
			expectedStatus: http.StatusOK,
			expectedCount:  1,
		},
		{
			name:           "given unknown product should stay a silent no-op",
			body:           `{"product_id":"dragonfruit","variant_id":"mango-500g","quantity":1}`,
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name:           "given missing product id should reject",
			body:           `{"variant_id":"mango-500g","quantity":1}`,
			expectedStatus: http.StatusBadRequest,
			expectedCount:  0,
		},
		{
			name:           "given malformed body should reject",
			body:           `{not json`,
			expectedStatus: http.StatusBadRequest,
			expectedCount:  0,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			router, store := testRouter(t)

			req := httptest.NewRequest(
				http.MethodPost,
				"/carts/items",
				strings.NewReader(test.body),
			)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			assert.Equal(t, test.expectedStatus, recorder.Code)
			assert.Equal(t, test.expectedCount, store.CartCount())
		})
	}
}

func TestFindCartEndpoint(t *testing.T) {
	router, store := testRouter(t)
	assert.NoError(
		t,
		store.AddToCart(context.Background(), "alphonso-mango", "mango-500g", 2),
	)

	req := httptest.NewRequest(http.MethodGet, "/carts", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	body := struct {
		Data struct {
			Count   int `json:"count"`
			Pricing struct {
				Subtotal    decimal.Decimal `json:"subtotal"`
				DeliveryFee decimal.Decimal `json:"delivery_fee"`
			} `json:"pricing"`
		} `json:"data"`
	}{}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.Count)
	assert.True(t, body.Data.Pricing.Subtotal.Equal(decimal.NewFromInt(498)))
	assert.True(t, body.Data.Pricing.DeliveryFee.Equal(decimal.NewFromInt(40)))
}

func TestUpdateCartItemEndpoint(t *testing.T) {
	router, store := testRouter(t)
	assert.NoError(
		t,
		store.AddToCart(context.Background(), "alphonso-mango", "mango-500g", 2),
	)

	req := httptest.NewRequest(
		http.MethodPut,
		"/carts/items/alphonso-mango/mango-500g",
		strings.NewReader(`{"quantity":0}`),
	)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 0, store.CartCount())
}

func TestFindProductsEndpoint(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	req = httptest.NewRequest(http.MethodGet, "/products/dragonfruit", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
