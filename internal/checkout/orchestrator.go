package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/ecfresh/internal/cart"
	inErrors "github.com/Alturino/ecfresh/internal/errors"
	"github.com/Alturino/ecfresh/internal/identity"
	"github.com/Alturino/ecfresh/internal/log"
	"github.com/Alturino/ecfresh/internal/orderstore"
	"github.com/Alturino/ecfresh/internal/otel"
	"github.com/Alturino/ecfresh/internal/pricing"
	"github.com/Alturino/ecfresh/pkg/request"
	"github.com/Alturino/ecfresh/pkg/response"
)

// Orchestrator drives a checkout submission through its phases.
// Validation is the only phase that can reject the shopper; every
// collaborator failure after it degrades the sale to a guest
// fallback instead of losing it. Only the final cart clear can fail
// the whole submission, and that failure is retryable.
type Orchestrator struct {
	store    *cart.Store
	pricing  pricing.Config
	identity identity.Provider
	orders   orderstore.Store
	validate *validator.Validate
	numbers  *orderNumbers

	// mu serializes submissions; TryLock doubles as the re-entrancy
	// guard.
	mu sync.Mutex

	stateMu sync.Mutex
	state   State
}

func NewOrchestrator(
	store *cart.Store,
	pricingConfig pricing.Config,
	provider identity.Provider,
	orders orderstore.Store,
	validate *validator.Validate,
	now func() time.Time,
) *Orchestrator {
	return &Orchestrator{
		store:    store,
		pricing:  pricingConfig,
		identity: provider,
		orders:   orders,
		validate: validate,
		numbers:  newOrderNumbers(now),
		state:    StateIdle,
	}
}

// State reports the phase of the submission in flight, or the
// terminal phase of the last one.
func (o *Orchestrator) State() State {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(c context.Context, state State) {
	o.stateMu.Lock()
	o.state = state
	o.stateMu.Unlock()
	zerolog.Ctx(c).Info().Str(log.KeyState, string(state)).Msg("checkout state changed")
}

// Submit runs the whole checkout. It returns ErrCheckoutInFlight when
// another submission holds the guard, a joined ErrValidation before
// any side effect, and a joined ErrCartClear when the placed order
// could not be followed by a cart clear.
func (o *Orchestrator) Submit(c context.Context, req request.Checkout) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutOrchestrator Submit")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutOrchestrator Submit").
		Str(log.KeyEmail, req.Email).
		Logger()

	if !o.mu.TryLock() {
		logger.Warn().Err(inErrors.ErrCheckoutInFlight).Msg(inErrors.ErrCheckoutInFlight.Error())
		return response.Order{}, inErrors.ErrCheckoutInFlight
	}
	defer o.mu.Unlock()

	logger = logger.With().Str(log.KeyProcess, "validating request").Logger()
	o.setState(logger.WithContext(c), StateValidating)
	logger.Info().Msg("validating checkout request")
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cod"
	}
	if err := o.validate.StructCtx(c, req); err != nil {
		err = errors.Join(inErrors.ErrValidation, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		o.setState(logger.WithContext(c), StateFailed)
		return response.Order{}, err
	}
	lines := o.store.Lines()
	if len(lines) == 0 {
		err := errors.Join(inErrors.ErrValidation, inErrors.ErrEmptyCart)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		o.setState(logger.WithContext(c), StateFailed)
		return response.Order{}, err
	}
	logger.Info().Msg("validated checkout request")

	snapshot := o.pricing.Snapshot(lines)
	orderNumber := o.numbers.Next()
	logger = logger.With().Str(log.KeyOrderNumber, orderNumber).Logger()

	guest := false

	logger = logger.With().Str(log.KeyProcess, "resolving identity").Logger()
	o.setState(logger.WithContext(c), StateResolvingIdentity)
	who, ok := o.identity.CurrentUser(c)
	if !ok {
		logger.Info().Msg("no signed-in shopper, provisioning account")
		c = logger.WithContext(c)
		password := uuid.NewString()
		if err := o.identity.SignUp(c, req.Email, password, req.Name); err != nil {
			logger.Warn().Err(err).Msg("failed provisioning account, continuing as guest")
			guest = true
		} else if err := o.identity.SignIn(c, req.Email, password); err != nil {
			logger.Warn().Err(err).Msg("failed signing in provisioned account, continuing as guest")
			guest = true
		} else if who, ok = o.identity.CurrentUser(c); !ok {
			logger.Warn().Msg("provisioned account yielded no session, continuing as guest")
			guest = true
		}
	}
	if !guest {
		logger = logger.With().Str(log.KeyUserID, who.ID.String()).Logger()
		logger.Info().Msg("resolved shopper identity")
	}

	if !guest {
		logger = logger.With().Str(log.KeyProcess, "saving profile").Logger()
		o.setState(logger.WithContext(c), StateSavingProfile)
		err := o.orders.UpsertProfile(logger.WithContext(c), orderstore.ProfileRecord{
			UserID:   who.ID,
			Name:     req.Name,
			Phone:    req.Phone,
			Email:    req.Email,
			Address:  req.Address,
			Landmark: req.Landmark,
			AltPhone: req.AdditionalPhone,
			PinCode:  req.PinCode,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("failed saving profile, continuing as guest")
			guest = true
		}
	}

	orderID := uuid.New()
	if !guest {
		logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
		o.setState(logger.WithContext(c), StateCreatingOrder)
		handle, err := o.orders.InsertOrder(logger.WithContext(c), orderstore.OrderRecord{
			ID:             orderID,
			OrderNumber:    orderNumber,
			UserID:         who.ID,
			Name:           req.Name,
			Phone:          req.Phone,
			Email:          req.Email,
			Address:        req.Address,
			Landmark:       req.Landmark,
			AltPhone:       req.AdditionalPhone,
			DeliveryDate:   req.DeliveryDate,
			TimeSlot:       req.TimeSlot,
			PaymentMethod:  req.PaymentMethod,
			Subtotal:       snapshot.Subtotal,
			DeliveryFee:    snapshot.DeliveryFee,
			Total:          snapshot.Total,
			LoyaltyCredits: snapshot.LoyaltyCredits,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("failed creating order, continuing as guest")
			guest = true
		} else {
			orderID = handle.ID
		}
	}

	if !guest {
		logger = logger.With().Str(log.KeyProcess, "creating order lines").Logger()
		o.setState(logger.WithContext(c), StateCreatingOrderLines)
		records := make([]orderstore.LineRecord, 0, len(lines))
		for _, line := range lines {
			records = append(records, orderstore.LineRecord{
				ID:          uuid.New(),
				OrderID:     orderID,
				ProductID:   line.ProductID,
				ProductName: line.Product.Name,
				VariantID:   line.VariantID,
				VariantSize: line.Variant.Size,
				UnitPrice:   line.Variant.Price,
				Quantity:    int32(line.Quantity),
			})
		}
		if err := o.orders.InsertOrderLines(logger.WithContext(c), records); err != nil {
			logger.Warn().Err(err).Msg("failed creating order lines, continuing as guest")
			guest = true
		}
	}

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if err := o.store.ClearCart(logger.WithContext(c)); err != nil {
		err = errors.Join(inErrors.ErrCartClear, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		o.setState(logger.WithContext(c), StateFailed)
		return response.Order{}, err
	}
	logger.Info().Msg("cleared cart")

	if guest {
		o.setState(logger.WithContext(c), StateGuestFallback)
	} else {
		o.setState(logger.WithContext(c), StateCompleted)
	}
	logger.Info().
		Bool("persisted", !guest).
		Msg(fmt.Sprintf("completed checkout for order=%s", orderNumber))

	return response.Order{
		OrderNumber:       orderNumber,
		DeliveryDateLabel: deliveryDateLabel(req.DeliveryDate),
		TimeSlotLabel:     timeSlotLabel(req.TimeSlot),
		Persisted:         !guest,
	}, nil
}
