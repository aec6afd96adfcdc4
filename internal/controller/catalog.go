package controller

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/ecfresh/internal/catalog"
	inErrors "github.com/Alturino/ecfresh/internal/errors"
	inHttp "github.com/Alturino/ecfresh/internal/http"
	"github.com/Alturino/ecfresh/internal/log"
	"github.com/Alturino/ecfresh/internal/otel"
)

type CatalogController struct {
	index *catalog.Index
}

func AttachCatalogController(router *mux.Router, index *catalog.Index) {
	controller := CatalogController{index: index}

	sub := router.PathPrefix("/products").Subrouter()
	sub.HandleFunc("", controller.FindProducts).Methods(http.MethodGet)
	sub.HandleFunc("/{productId}", controller.FindProductById).Methods(http.MethodGet)

	router.HandleFunc("/categories", controller.FindCategories).Methods(http.MethodGet)
}

func (t CatalogController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogController FindProducts").
		Logger()

	products := t.index.Products()
	if category := r.URL.Query().Get("category"); category != "" && category != "all" {
		filtered := products[:0:0]
		for _, product := range products {
			if product.Category == category {
				filtered = append(filtered, product)
			}
		}
		products = filtered
	}
	logger.Info().Int("products", len(products)).Msg("found products")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found products",
		"data":       products,
	})
}

func (t CatalogController) FindProductById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController FindProductById")
	defer span.End()

	productId := mux.Vars(r)["productId"]

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CatalogController FindProductById").
		Str(log.KeyProductID, productId).
		Logger()

	product, ok := t.index.FindProduct(productId)
	if !ok {
		inErrors.HandleError(inErrors.ErrProductNotFound, span)
		logger.Error().
			Err(inErrors.ErrProductNotFound).
			Msgf("failed finding product by id=%s", productId)
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    inErrors.ErrProductNotFound.Error(),
		})
		return
	}
	logger.Info().Msg("found product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found product",
		"data":       product,
	})
}

func (t CatalogController) FindCategories(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CatalogController FindCategories")
	defer span.End()

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found categories",
		"data":       t.index.Categories(),
	})
}
