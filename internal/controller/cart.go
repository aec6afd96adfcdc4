package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/ecfresh/internal/cart"
	inErrors "github.com/Alturino/ecfresh/internal/errors"
	inHttp "github.com/Alturino/ecfresh/internal/http"
	"github.com/Alturino/ecfresh/internal/log"
	"github.com/Alturino/ecfresh/internal/otel"
	"github.com/Alturino/ecfresh/internal/pricing"
	"github.com/Alturino/ecfresh/pkg/request"
	"github.com/Alturino/ecfresh/pkg/response"
)

type CartController struct {
	store   *cart.Store
	pricing pricing.Config
}

func AttachCartController(router *mux.Router, store *cart.Store, pricingConfig pricing.Config) {
	controller := CartController{store: store, pricing: pricingConfig}

	sub := router.PathPrefix("/carts").Subrouter()
	sub.HandleFunc("", controller.FindCart).Methods(http.MethodGet)
	sub.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	sub.HandleFunc("/items", controller.AddCartItem).Methods(http.MethodPost)
	sub.HandleFunc("/items/{productId}/{variantId}", controller.UpdateCartItem).
		Methods(http.MethodPut)
	sub.HandleFunc("/items/{productId}/{variantId}", controller.RemoveCartItem).
		Methods(http.MethodDelete)

	wishlist := router.PathPrefix("/wishlists").Subrouter()
	wishlist.HandleFunc("", controller.FindWishlist).Methods(http.MethodGet)
	wishlist.HandleFunc("/{productId}", controller.ToggleWishlist).Methods(http.MethodPost)

	router.HandleFunc("/pricings", controller.FindPricing).Methods(http.MethodGet)
}

func (t CartController) FindCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController FindCart").
		Logger()

	lines := t.store.Lines()
	logger.Info().Int(log.KeyCartCount, t.store.CartCount()).Msg("found cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found cart",
		"data": response.Cart{
			Items:   lines,
			Count:   t.store.CartCount(),
			Pricing: t.pricing.Snapshot(lines),
		},
	})
}

// FindPricing returns the snapshot derived from the current cart.
func (t CartController) FindPricing(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController FindPricing")
	defer span.End()

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found pricing",
		"data":       t.pricing.Snapshot(t.store.Lines()),
	})
}

func (t CartController) AddCartItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddCartItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddCartItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.AddCartItem{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	if reqBody.Quantity == 0 {
		reqBody.Quantity = 1
	}

	logger = logger.With().
		Str(log.KeyProcess, "adding cart item").
		Str(log.KeyProductID, reqBody.ProductId).
		Str(log.KeyVariantID, reqBody.VariantId).
		Int(log.KeyQuantity, reqBody.Quantity).
		Logger()
	logger.Info().Msg("adding cart item")
	c = logger.WithContext(c)
	if err := t.store.AddToCart(c, reqBody.ProductId, reqBody.VariantId, reqBody.Quantity); err != nil {
		err = fmt.Errorf("failed adding cart item with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("added cart item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "added cart item",
		"data": map[string]interface{}{
			"count": t.store.CartCount(),
		},
	})
}

func (t CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateCartItem")
	defer span.End()

	pathVars := mux.Vars(r)
	productId, variantId := pathVars["productId"], pathVars["variantId"]

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController UpdateCartItem").
		Str(log.KeyProductID, productId).
		Str(log.KeyVariantID, variantId).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.UpdateCartItem{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().
		Str(log.KeyProcess, "updating cart item").
		Int(log.KeyQuantity, reqBody.Quantity).
		Logger()
	logger.Info().Msg("updating cart item")
	c = logger.WithContext(c)
	if err := t.store.UpdateQuantity(c, productId, variantId, reqBody.Quantity); err != nil {
		err = fmt.Errorf("failed updating cart item with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("updated cart item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "updated cart item",
		"data": map[string]interface{}{
			"count": t.store.CartCount(),
		},
	})
}

func (t CartController) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveCartItem")
	defer span.End()

	pathVars := mux.Vars(r)
	productId, variantId := pathVars["productId"], pathVars["variantId"]

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveCartItem").
		Str(log.KeyProductID, productId).
		Str(log.KeyVariantID, variantId).
		Str(log.KeyProcess, "removing cart item").
		Logger()

	logger.Info().Msg("removing cart item")
	c = logger.WithContext(c)
	if err := t.store.RemoveFromCart(c, productId, variantId); err != nil {
		err = fmt.Errorf("failed removing cart item with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("removed cart item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "removed cart item",
		"data": map[string]interface{}{
			"count": t.store.CartCount(),
		},
	})
}

func (t CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ClearCart").
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	if err := t.store.ClearCart(c); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("cleared cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cleared cart",
	})
}

func (t CartController) FindWishlist(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController FindWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController FindWishlist").
		Logger()

	ids := t.store.WishlistIDs()
	logger.Info().Int("wishlistCount", len(ids)).Msg("found wishlist")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found wishlist",
		"data":       response.Wishlist{ProductIds: ids},
	})
}

func (t CartController) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ToggleWishlist")
	defer span.End()

	productId := mux.Vars(r)["productId"]

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ToggleWishlist").
		Str(log.KeyProductID, productId).
		Str(log.KeyProcess, "toggling wishlist").
		Logger()

	logger.Info().Msg("toggling wishlist")
	c = logger.WithContext(c)
	if err := t.store.ToggleWishlist(c, productId); err != nil {
		err = fmt.Errorf("failed toggling wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("toggled wishlist")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "toggled wishlist",
		"data": map[string]interface{}{
			"in_wishlist": t.store.IsInWishlist(productId),
		},
	})
}
