package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alturino/ecfresh/internal/catalog"
	"github.com/Alturino/ecfresh/internal/constants"
	inErrors "github.com/Alturino/ecfresh/internal/errors"
	"github.com/Alturino/ecfresh/internal/log"
	"github.com/Alturino/ecfresh/internal/otel"
)

// Line is one (product, variant, quantity) entry in the shopper's
// active cart. Product and Variant are denormalized copies taken at
// insertion time so the view layer never needs a second catalog
// lookup.
type Line struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Product   catalog.Product `json:"product"`
	Variant   catalog.Variant `json:"variant"`
}

// Store owns the cart lines and wishlist for the active session. It
// is the sole writer of the durable mirror keys. Mutations are
// serialized by a mutex; the mirror write is awaited before a
// mutation returns, so a crash between the in-memory change and the
// persisted write is the only data-loss window.
type Store struct {
	mu       sync.Mutex
	catalog  *catalog.Index
	kv       KV
	lines    []Line
	wishlist []string
	pin      string
}

func NewStore(c context.Context, index *catalog.Index, kv KV) *Store {
	s := &Store{catalog: index, kv: kv}
	s.rehydrate(c)
	return s
}

// rehydrate restores cart, wishlist and pin from the durable mirror.
// Missing or malformed data falls back to empty collections; a parse
// failure is logged and never propagated.
func (s *Store) rehydrate(c context.Context) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore rehydrate").
		Logger()

	lg := logger.With().Str(log.KeyPersistKey, constants.KeyCart).Logger()
	raw, err := s.kv.ReadString(c, constants.KeyCart)
	switch {
	case errors.Is(err, inErrors.ErrKeyAbsent):
		lg.Info().Msg("no persisted cart, starting empty")
	case err != nil:
		lg.Error().Err(err).Msg("failed reading persisted cart, starting empty")
	default:
		lines := []Line{}
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			lg.Error().Err(err).Msg("failed parsing persisted cart, starting empty")
			break
		}
		for _, line := range lines {
			if line.Quantity < 1 {
				lg.Warn().
					Str(log.KeyProductID, line.ProductID).
					Str(log.KeyVariantID, line.VariantID).
					Msg("dropping persisted line with non-positive quantity")
				continue
			}
			s.lines = append(s.lines, line)
		}
		lg.Info().Int(log.KeyCartCount, len(s.lines)).Msg("restored cart")
	}

	lg = logger.With().Str(log.KeyPersistKey, constants.KeyWishlist).Logger()
	raw, err = s.kv.ReadString(c, constants.KeyWishlist)
	switch {
	case errors.Is(err, inErrors.ErrKeyAbsent):
		lg.Info().Msg("no persisted wishlist, starting empty")
	case err != nil:
		lg.Error().Err(err).Msg("failed reading persisted wishlist, starting empty")
	default:
		ids := []string{}
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			lg.Error().Err(err).Msg("failed parsing persisted wishlist, starting empty")
			break
		}
		for _, id := range ids {
			if !slices.Contains(s.wishlist, id) {
				s.wishlist = append(s.wishlist, id)
			}
		}
		lg.Info().Int("wishlistCount", len(s.wishlist)).Msg("restored wishlist")
	}

	raw, err = s.kv.ReadString(c, constants.KeyPin)
	if err == nil {
		s.pin = raw
	}
}

// AddToCart merges into an existing line with the same
// (productId, variantId) key or inserts a new one. Unknown products
// or variants are a logged no-op.
func (s *Store) AddToCart(c context.Context, productID, variantID string, quantity int) error {
	c, span := otel.Tracer.Start(c, "CartStore AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore AddToCart").
		Str(log.KeyProductID, productID).
		Str(log.KeyVariantID, variantID).
		Int(log.KeyQuantity, quantity).
		Logger()

	if quantity < 1 {
		logger.Warn().Msg("ignoring add with non-positive quantity")
		return nil
	}

	product, ok := s.catalog.FindProduct(productID)
	if !ok {
		logger.Warn().Err(inErrors.ErrProductNotFound).Msg("ignoring add of unknown product")
		return nil
	}
	variant, ok := s.catalog.FindVariant(productID, variantID)
	if !ok {
		logger.Warn().Err(inErrors.ErrVariantNotFound).Msg("ignoring add of unknown variant")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for i, line := range s.lines {
		if line.ProductID == productID && line.VariantID == variantID {
			s.lines[i].Quantity += quantity
			merged = true
			logger.Info().
				Int(log.KeyQuantity, s.lines[i].Quantity).
				Msg("merged quantity into existing cart line")
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, Line{
			ProductID: productID,
			VariantID: variantID,
			Quantity:  quantity,
			Product:   product,
			Variant:   variant,
		})
		logger.Info().Msg("inserted new cart line")
	}

	return s.persistCart(c)
}

// RemoveFromCart deletes the matching line; no-op when absent.
func (s *Store) RemoveFromCart(c context.Context, productID, variantID string) error {
	c, span := otel.Tracer.Start(c, "CartStore RemoveFromCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore RemoveFromCart").
		Str(log.KeyProductID, productID).
		Str(log.KeyVariantID, variantID).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.lines)
	s.lines = slices.DeleteFunc(s.lines, func(line Line) bool {
		return line.ProductID == productID && line.VariantID == variantID
	})
	if len(s.lines) == before {
		logger.Info().Msg("cart line not found, nothing removed")
		return nil
	}
	logger.Info().Msg("removed cart line")

	return s.persistCart(c)
}

// UpdateQuantity replaces the line's quantity. Zero or negative
// quantity removes the line entirely.
func (s *Store) UpdateQuantity(c context.Context, productID, variantID string, quantity int) error {
	c, span := otel.Tracer.Start(c, "CartStore UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore UpdateQuantity").
		Str(log.KeyProductID, productID).
		Str(log.KeyVariantID, variantID).
		Int(log.KeyQuantity, quantity).
		Logger()

	if quantity <= 0 {
		logger.Info().Msg("quantity is non-positive, removing line")
		c = logger.WithContext(c)
		return s.RemoveFromCart(c, productID, variantID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, line := range s.lines {
		if line.ProductID == productID && line.VariantID == variantID {
			s.lines[i].Quantity = quantity
			logger.Info().Msg("updated cart line quantity")
			return s.persistCart(c)
		}
	}
	logger.Info().Msg("cart line not found, nothing updated")
	return nil
}

// ClearCart empties all lines and writes the empty state through.
func (s *Store) ClearCart(c context.Context) error {
	c, span := otel.Tracer.Start(c, "CartStore ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore ClearCart").
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	logger.Info().Msg("cleared cart")

	return s.persistCart(c)
}

// ToggleWishlist inserts the product id if absent and removes it if
// present. Calling it twice returns the wishlist to its original
// state.
func (s *Store) ToggleWishlist(c context.Context, productID string) error {
	c, span := otel.Tracer.Start(c, "CartStore ToggleWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore ToggleWishlist").
		Str(log.KeyProductID, productID).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.wishlist, productID) {
		s.wishlist = slices.DeleteFunc(s.wishlist, func(id string) bool {
			return id == productID
		})
		logger.Info().Msg("removed product from wishlist")
	} else {
		s.wishlist = append(s.wishlist, productID)
		logger.Info().Msg("added product to wishlist")
	}

	return s.persistWishlist(c)
}

func (s *Store) IsInWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.wishlist, productID)
}

// Lines returns a copy of the cart lines.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

// CartCount is the sum of all line quantities, derived on every read
// so it can never drift from the lines themselves.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

func (s *Store) WishlistIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.wishlist)
}

func (s *Store) Pin() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pin
}

func (s *Store) SetPin(c context.Context, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pin = pin
	if err := s.kv.WriteString(c, constants.KeyPin, pin); err != nil {
		return fmt.Errorf("failed persisting pin with error=%w", err)
	}
	return nil
}

func (s *Store) ClearPin(c context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pin = ""
	if err := s.kv.DeleteKey(c, constants.KeyPin); err != nil {
		return fmt.Errorf("failed deleting pin with error=%w", err)
	}
	return nil
}

// persistCart serializes the full cart under the fixed key. Callers
// must hold s.mu.
func (s *Store) persistCart(c context.Context) error {
	raw, err := json.Marshal(s.lines)
	if err != nil {
		return fmt.Errorf("failed marshaling cart with error=%w", err)
	}
	if err := s.kv.WriteString(c, constants.KeyCart, string(raw)); err != nil {
		return fmt.Errorf("failed persisting cart with error=%w", err)
	}
	return nil
}

// persistWishlist serializes the full wishlist under the fixed key.
// Callers must hold s.mu.
func (s *Store) persistWishlist(c context.Context) error {
	raw, err := json.Marshal(s.wishlist)
	if err != nil {
		return fmt.Errorf("failed marshaling wishlist with error=%w", err)
	}
	if err := s.kv.WriteString(c, constants.KeyWishlist, string(raw)); err != nil {
		return fmt.Errorf("failed persisting wishlist with error=%w", err)
	}
	return nil
}
