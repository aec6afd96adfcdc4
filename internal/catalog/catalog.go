package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/ecfresh/internal/log"
)

// Variant is one purchasable size/weight option of a Product with its
// own price and stock flag.
type Variant struct {
	ID            string           `json:"id"`
	Size          string           `json:"size"`
	Weight        string           `json:"weight"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	InStock       bool             `json:"in_stock"`
}

type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	Images          []string  `json:"images"`
	Variants        []Variant `json:"variants"`
	Tags            []string  `json:"tags"`
	InStock         bool      `json:"in_stock"`
	Rating          float64   `json:"rating"`
	Reviews         int       `json:"reviews"`
	NutritionalInfo string    `json:"nutritional_info,omitempty"`
	StorageInfo     string    `json:"storage_info,omitempty"`
	RecipeIdeas     []string  `json:"recipe_ideas,omitempty"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Image string `json:"image"`
	Count int    `json:"count"`
}

// Index is the read-only product lookup for a session. It is built
// once at startup and never mutated afterwards, so it is safe for
// concurrent reads without locking.
type Index struct {
	products   map[string]Product
	order      []string
	categories []Category
}

type catalogFile struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
}

func Load(c context.Context, path string) (*Index, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "catalog Load").
		Str(log.KeyProcess, "loading catalog").
		Str("path", path).
		Logger()

	logger.Info().Msg("reading catalog file")
	raw, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed reading catalog file with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	file := catalogFile{}
	if err := json.Unmarshal(raw, &file); err != nil {
		err = fmt.Errorf("failed unmarshaling catalog file with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().
		Msgf("read %d products and %d categories", len(file.Products), len(file.Categories))

	c = logger.WithContext(c)
	return New(c, file.Products, file.Categories), nil
}

// New indexes the given products, dropping entries that violate the
// price invariants (price > 0, originalPrice >= price). Dropped
// entries are logged, never returned as errors.
func New(c context.Context, products []Product, categories []Category) *Index {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "catalog New").
		Str(log.KeyProcess, "indexing catalog").
		Logger()

	ix := &Index{products: map[string]Product{}, categories: categories}
	for _, p := range products {
		variants := make([]Variant, 0, len(p.Variants))
		for _, v := range p.Variants {
			if !v.Price.IsPositive() {
				logger.Warn().
					Str(log.KeyProductID, p.ID).
					Str(log.KeyVariantID, v.ID).
					Msg("skipping variant with non-positive price")
				continue
			}
			if v.OriginalPrice != nil && v.OriginalPrice.LessThan(v.Price) {
				logger.Warn().
					Str(log.KeyProductID, p.ID).
					Str(log.KeyVariantID, v.ID).
					Msg("skipping variant with original price below price")
				continue
			}
			variants = append(variants, v)
		}
		if len(variants) == 0 {
			logger.Warn().
				Str(log.KeyProductID, p.ID).
				Msg("skipping product without valid variants")
			continue
		}
		p.Variants = variants
		if _, ok := ix.products[p.ID]; ok {
			logger.Warn().
				Str(log.KeyProductID, p.ID).
				Msg("skipping duplicate product id")
			continue
		}
		ix.products[p.ID] = p
		ix.order = append(ix.order, p.ID)
	}
	logger.Info().Msgf("indexed %d products", len(ix.products))

	return ix
}

func (ix *Index) FindProduct(id string) (Product, bool) {
	p, ok := ix.products[id]
	return p, ok
}

func (ix *Index) FindVariant(productID, variantID string) (Variant, bool) {
	p, ok := ix.products[productID]
	if !ok {
		return Variant{}, false
	}
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v, true
		}
	}
	return Variant{}, false
}

func (ix *Index) Products() []Product {
	products := make([]Product, 0, len(ix.order))
	for _, id := range ix.order {
		products = append(products, ix.products[id])
	}
	return products
}

func (ix *Index) Categories() []Category {
	return ix.categories
}
