package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Alturino/ecfresh/internal/catalog"
	"github.com/Alturino/ecfresh/internal/constants"
	inErrors "github.com/Alturino/ecfresh/internal/errors"
)

type memoryKV struct {
	data    map[string]string
	failing bool
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}}
}

func (kv *memoryKV) ReadString(_ context.Context, key string) (string, error) {
	value, ok := kv.data[key]
	if !ok {
		return "", inErrors.ErrKeyAbsent
	}
	return value, nil
}

func (kv *memoryKV) WriteString(_ context.Context, key, value string) error {
	if kv.failing {
		return errors.New("kv write refused")
	}
	kv.data[key] = value
	return nil
}

func (kv *memoryKV) DeleteKey(_ context.Context, key string) error {
	if kv.failing {
		return errors.New("kv delete refused")
	}
	delete(kv.data, key)
	return nil
}

func testIndex() *catalog.Index {
	return catalog.New(context.Background(), []catalog.Product{
		{
			ID:       "alphonso-mango",
			Name:     "Alphonso Mango",
			Category: "fruits",
			Variants: []catalog.Variant{
				{ID: "mango-500g", Weight: "500g", Price: decimal.NewFromInt(249), InStock: true},
				{ID: "mango-1kg", Weight: "1kg", Price: decimal.NewFromInt(449), InStock: true},
			},
		},
		{
			ID:       "baby-spinach",
			Name:     "Baby Spinach",
			Category: "leafy-greens",
			Variants: []catalog.Variant{
				{ID: "spinach-100g", Weight: "100g", Price: decimal.NewFromInt(49), InStock: true},
			},
		},
	}, nil)
}

func TestAddToCart(t *testing.T) {
	c := context.Background()

	tests := []struct {
		name          string
		adds          [][3]interface{}
		expectedCount int
		expectedLines int
	}{
		{
			name: "given repeated add of same variant should merge quantities",
			adds: [][3]interface{}{
				{"alphonso-mango", "mango-500g", 1},
				{"alphonso-mango", "mango-500g", 2},
			},
			expectedCount: 3,
			expectedLines: 1,
		},
		{
			name: "given different variants of same product should keep separate lines",
			adds: [][3]interface{}{
				{"alphonso-mango", "mango-500g", 1},
				{"alphonso-mango", "mango-1kg", 1},
			},
			expectedCount: 2,
			expectedLines: 2,
		},
		{
			name: "given unknown product should be a no-op",
			adds: [][3]interface{}{
				{"dragonfruit", "mango-500g", 1},
			},
			expectedCount: 0,
			expectedLines: 0,
		},
		{
			name: "given unknown variant should be a no-op",
			adds: [][3]interface{}{
				{"alphonso-mango", "mango-5kg", 1},
			},
			expectedCount: 0,
			expectedLines: 0,
		},
		{
			name: "given non-positive quantity should be a no-op",
			adds: [][3]interface{}{
				{"alphonso-mango", "mango-500g", 0},
				{"alphonso-mango", "mango-500g", -2},
			},
			expectedCount: 0,
			expectedLines: 0,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := NewStore(c, testIndex(), newMemoryKV())
			for _, add := range test.adds {
				err := store.AddToCart(c, add[0].(string), add[1].(string), add[2].(int))
				assert.NoError(t, err)
			}
			assert.Equal(t, test.expectedCount, store.CartCount())
			assert.Len(t, store.Lines(), test.expectedLines)
		})
	}
}

func TestAddToCartDenormalizesCatalogData(t *testing.T) {
	c := context.Background()
	store := NewStore(c, testIndex(), newMemoryKV())

	assert.NoError(t, store.AddToCart(c, "alphonso-mango", "mango-500g", 1))

	lines := store.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, "Alphonso Mango", lines[0].Product.Name)
	assert.True(t, lines[0].Variant.Price.Equal(decimal.NewFromInt(249)))
}

func TestUpdateQuantity(t *testing.T) {
	c := context.Background()

	tests := []struct {
		name          string
		quantity      int
		expectedCount int
		expectedLines int
	}{
		{
			name:          "given positive quantity should replace line quantity",
			quantity:      5,
			expectedCount: 5,
			expectedLines: 1,
		},
		{
			name:          "given zero quantity should remove line",
			quantity:      0,
			expectedCount: 0,
			expectedLines: 0,
		},
		{
			name:          "given negative quantity should remove line",
			quantity:      -3,
			expectedCount: 0,
			expectedLines: 0,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := NewStore(c, testIndex(), newMemoryKV())
			assert.NoError(t, store.AddToCart(c, "alphonso-mango", "mango-500g", 2))

			err := store.UpdateQuantity(c, "alphonso-mango", "mango-500g", test.quantity)
			assert.NoError(t, err)
			assert.Equal(t, test.expectedCount, store.CartCount())
			assert.Len(t, store.Lines(), test.expectedLines)
		})
	}
}

func TestRemoveFromCart(t *testing.T) {
	c := context.Background()
	store := NewStore(c, testIndex(), newMemoryKV())
	assert.NoError(t, store.AddToCart(c, "alphonso-mango", "mango-500g", 2))
	assert.NoError(t, store.AddToCart(c, "baby-spinach", "spinach-100g", 1))

	assert.NoError(t, store.RemoveFromCart(c, "alphonso-mango", "mango-500g"))
	assert.Equal(t, 1, store.CartCount())

	assert.NoError(t, store.RemoveFromCart(c, "alphonso-mango", "mango-500g"))
	assert.Equal(t, 1, store.CartCount())
}

func TestClearCart(t *testing.T) {
	c := context.Background()
	kv := newMemoryKV()
	store := NewStore(c, testIndex(), kv)
	assert.NoError(t, store.AddToCart(c, "alphonso-mango", "mango-500g", 2))

	assert.NoError(t, store.ClearCart(c))
	assert.Equal(t, 0, store.CartCount())
	assert.Empty(t, store.Lines())

	persisted := []Line{}
	assert.NoError(t, json.Unmarshal([]byte(kv.data[constants.KeyCart]), &persisted))
	assert.Empty(t, persisted)
}

func TestToggleWishlist(t *testing.T) {
	c := context.Background()
	store := NewStore(c, testIndex(), newMemoryKV())

	assert.NoError(t, store.ToggleWishlist(c, "alphonso-mango"))
	assert.True(t, store.IsInWishlist("alphonso-mango"))

	assert.NoError(t, store.ToggleWishlist(c, "alphonso-mango"))
	assert.False(t, store.IsInWishlist("alphonso-mango"))
	assert.Empty(t, store.WishlistIDs())
}

func TestRehydrate(t *testing.T) {
	c := context.Background()

	t.Run("given persisted state should restore cart and wishlist", func(t *testing.T) {
		kv := newMemoryKV()
		first := NewStore(c, testIndex(), kv)
		assert.NoError(t, first.AddToCart(c, "alphonso-mango", "mango-500g", 2))
		assert.NoError(t, first.ToggleWishlist(c, "baby-spinach"))
		assert.NoError(t, first.SetPin(c, "560001"))

		second := NewStore(c, testIndex(), kv)
		assert.Equal(t, 2, second.CartCount())
		assert.True(t, second.IsInWishlist("baby-spinach"))
		assert.Equal(t, "560001", second.Pin())
	})

	t.Run("given corrupt persisted cart should start empty", func(t *testing.T) {
		kv := newMemoryKV()
		kv.data[constants.KeyCart] = "{not json"
		kv.data[constants.KeyWishlist] = "[not json"

		store := NewStore(c, testIndex(), kv)
		assert.Equal(t, 0, store.CartCount())
		assert.Empty(t, store.WishlistIDs())
	})

	t.Run("given persisted line with non-positive quantity should drop it", func(t *testing.T) {
		kv := newMemoryKV()
		raw, err := json.Marshal([]Line{
			{ProductID: "alphonso-mango", VariantID: "mango-500g", Quantity: 0},
			{ProductID: "baby-spinach", VariantID: "spinach-100g", Quantity: 1},
		})
		assert.NoError(t, err)
		kv.data[constants.KeyCart] = string(raw)

		store := NewStore(c, testIndex(), kv)
		assert.Equal(t, 1, store.CartCount())
	})
}

func TestClearCartPropagatesPersistFailure(t *testing.T) {
	c := context.Background()
	kv := newMemoryKV()
	store := NewStore(c, testIndex(), kv)
	assert.NoError(t, store.AddToCart(c, "alphonso-mango", "mango-500g", 2))

	kv.failing = true
	assert.Error(t, store.ClearCart(c))
}
