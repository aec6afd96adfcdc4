package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/ecfresh/internal/checkout"
	inErrors "github.com/Alturino/ecfresh/internal/errors"
	inHttp "github.com/Alturino/ecfresh/internal/http"
	"github.com/Alturino/ecfresh/internal/log"
	"github.com/Alturino/ecfresh/internal/otel"
	"github.com/Alturino/ecfresh/pkg/request"
)

type CheckoutController struct {
	orchestrator *checkout.Orchestrator
	windowDays   int
}

func AttachCheckoutController(
	router *mux.Router,
	orchestrator *checkout.Orchestrator,
	windowDays int,
) {
	controller := CheckoutController{orchestrator: orchestrator, windowDays: windowDays}

	sub := router.PathPrefix("/checkouts").Subrouter()
	sub.HandleFunc("", controller.SubmitCheckout).Methods(http.MethodPost)
	sub.HandleFunc("/options", controller.FindDeliveryOptions).Methods(http.MethodGet)
	sub.HandleFunc("/state", controller.FindCheckoutState).Methods(http.MethodGet)
}

func (t CheckoutController) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController SubmitCheckout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController SubmitCheckout").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.Checkout{}
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

	logger = logger.With().Str(log.KeyProcess, "submitting checkout").Logger()
	logger.Info().Msg("submitting checkout")
	c = logger.WithContext(c)
	order, err := t.orchestrator.Submit(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed submitting checkout with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())

		statusCode := http.StatusInternalServerError
		switch {
		case errors.Is(err, inErrors.ErrValidation):
			statusCode = http.StatusBadRequest
		case errors.Is(err, inErrors.ErrCheckoutInFlight):
			statusCode = http.StatusConflict
		}
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
			"retryable":  errors.Is(err, inErrors.ErrCartClear),
		})
		return
	}
	logger.Info().
		Str(log.KeyOrderNumber, order.OrderNumber).
		Bool("persisted", order.Persisted).
		Msg("submitted checkout")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "submitted checkout",
		"data":       order,
	})
}

func (t CheckoutController) FindDeliveryOptions(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController FindDeliveryOptions")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController FindDeliveryOptions").
		Logger()

	options := checkout.DeliveryOptions(time.Now(), t.windowDays)
	logger.Info().Int("deliveryOptions", len(options)).Msg("found delivery options")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found delivery options",
		"data": map[string]interface{}{
			"dates":      options,
			"time_slots": checkout.TimeSlots(),
		},
	})
}

func (t CheckoutController) FindCheckoutState(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController FindCheckoutState")
	defer span.End()

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found checkout state",
		"data": map[string]interface{}{
			"state": t.orchestrator.State(),
		},
	})
}
