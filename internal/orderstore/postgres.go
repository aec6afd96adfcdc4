package orderstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/ecfresh/internal/errors"
	"github.com/Alturino/ecfresh/internal/log"
	"github.com/Alturino/ecfresh/internal/otel"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) UpsertProfile(c context.Context, record ProfileRecord) error {
	c, span := otel.Tracer.Start(c, "OrderStore UpsertProfile")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderStore UpsertProfile").
		Str(log.KeyUserID, record.UserID.String()).
		Str(log.KeyProcess, "upserting profile").
		Logger()

	logger.Info().Msg("upserting profile")
	_, err := s.pool.Exec(
		c,
		`insert into profiles (user_id, name, phone, email, address, landmark, alt_phone, pin_code)
		 values ($1, $2, $3, $4, $5, $6, $7, $8)
		 on conflict (user_id) do update set
			name = excluded.name,
			phone = excluded.phone,
			email = excluded.email,
			address = excluded.address,
			landmark = excluded.landmark,
			alt_phone = excluded.alt_phone,
			pin_code = excluded.pin_code,
			updated_at = now()`,
		record.UserID,
		record.Name,
		record.Phone,
		record.Email,
		record.Address,
		record.Landmark,
		record.AltPhone,
		record.PinCode,
	)
	if err != nil {
		err = fmt.Errorf("failed upserting profile with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("upserted profile")

	return nil
}

func (s *Postgres) InsertOrder(c context.Context, record OrderRecord) (Handle, error) {
	c, span := otel.Tracer.Start(c, "OrderStore InsertOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderStore InsertOrder").
		Str(log.KeyOrderNumber, record.OrderNumber).
		Str(log.KeyUserID, record.UserID.String()).
		Str(log.KeyProcess, "inserting order").
		Logger()

	logger.Info().Msg("inserting order")
	_, err := s.pool.Exec(
		c,
		`insert into orders (
			id, order_number, user_id, name, phone, email, address, landmark,
			alt_phone, delivery_date, time_slot, payment_method,
			subtotal, delivery_fee, total, loyalty_credits
		 ) values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		record.ID,
		record.OrderNumber,
		record.UserID,
		record.Name,
		record.Phone,
		record.Email,
		record.Address,
		record.Landmark,
		record.AltPhone,
		record.DeliveryDate,
		record.TimeSlot,
		record.PaymentMethod,
		record.Subtotal.String(),
		record.DeliveryFee.String(),
		record.Total.String(),
		record.LoyaltyCredits,
	)
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Handle{}, err
	}
	logger.Info().Msg("inserted order")

	return Handle{ID: record.ID}, nil
}

func (s *Postgres) InsertOrderLines(c context.Context, records []LineRecord) error {
	c, span := otel.Tracer.Start(c, "OrderStore InsertOrderLines")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderStore InsertOrderLines").
		Str(log.KeyProcess, "inserting order lines").
		Int("orderLines", len(records)).
		Logger()

	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer func() {
		rollbackErr := tx.Rollback(c)
		if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			rollbackErr = fmt.Errorf("failed rolling back transaction with error=%w", rollbackErr)
			inErrors.HandleError(rollbackErr, span)
			logger.Error().Err(rollbackErr).Msg(rollbackErr.Error())
		}
	}()

	logger.Info().Msg("inserting order lines")
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(
			`insert into order_lines (
				id, order_id, product_id, product_name, variant_id, variant_size,
				unit_price, quantity
			 ) values ($1, $2, $3, $4, $5, $6, $7, $8)`,
			record.ID,
			record.OrderID,
			record.ProductID,
			record.ProductName,
			record.VariantID,
			record.VariantSize,
			record.UnitPrice.String(),
			record.Quantity,
		)
	}
	err = tx.SendBatch(c, batch).Close()
	if err != nil {
		err = fmt.Errorf("failed inserting order lines with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("inserted order lines")

	logger.Info().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("committed transaction")

	return nil
}

// FindOrderByNumber reads an order with its lines back, mostly for
// the account order history view.
func (s *Postgres) FindOrderByNumber(
	c context.Context,
	orderNumber string,
) (OrderRecord, []LineRecord, error) {
	c, span := otel.Tracer.Start(c, "OrderStore FindOrderByNumber")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderStore FindOrderByNumber").
		Str(log.KeyOrderNumber, orderNumber).
		Str(log.KeyProcess, "finding order").
		Logger()

	logger.Info().Msg("finding order")
	var (
		record                     OrderRecord
		subtotal, deliveryFee, tot string
	)
	row := s.pool.QueryRow(
		c,
		`select id, order_number, user_id, name, phone, email, address, landmark,
			alt_phone, delivery_date::text, time_slot, payment_method,
			subtotal::text, delivery_fee::text, total::text, loyalty_credits
		 from orders where order_number = $1`,
		orderNumber,
	)
	err := row.Scan(
		&record.ID,
		&record.OrderNumber,
		&record.UserID,
		&record.Name,
		&record.Phone,
		&record.Email,
		&record.Address,
		&record.Landmark,
		&record.AltPhone,
		&record.DeliveryDate,
		&record.TimeSlot,
		&record.PaymentMethod,
		&subtotal,
		&deliveryFee,
		&tot,
		&record.LoyaltyCredits,
	)
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return OrderRecord{}, nil, err
	}
	if record.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return OrderRecord{}, nil, fmt.Errorf("failed parsing subtotal with error=%w", err)
	}
	if record.DeliveryFee, err = decimal.NewFromString(deliveryFee); err != nil {
		return OrderRecord{}, nil, fmt.Errorf("failed parsing delivery fee with error=%w", err)
	}
	if record.Total, err = decimal.NewFromString(tot); err != nil {
		return OrderRecord{}, nil, fmt.Errorf("failed parsing total with error=%w", err)
	}
	logger.Info().Msg("found order")

	logger = logger.With().Str(log.KeyProcess, "finding order lines").Logger()
	logger.Info().Msg("finding order lines")
	rows, err := s.pool.Query(
		c,
		`select id, order_id, product_id, product_name, variant_id, variant_size,
			unit_price::text, quantity
		 from order_lines where order_id = $1`,
		record.ID,
	)
	if err != nil {
		err = fmt.Errorf("failed finding order lines with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return OrderRecord{}, nil, err
	}
	defer rows.Close()

	lines := []LineRecord{}
	for rows.Next() {
		var (
			line      LineRecord
			unitPrice string
		)
		err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.ProductID,
			&line.ProductName,
			&line.VariantID,
			&line.VariantSize,
			&unitPrice,
			&line.Quantity,
		)
		if err != nil {
			err = fmt.Errorf("failed scanning order line with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return OrderRecord{}, nil, err
		}
		if line.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return OrderRecord{}, nil, fmt.Errorf("failed parsing unit price with error=%w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		err = fmt.Errorf("failed iterating order lines with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return OrderRecord{}, nil, err
	}
	logger.Info().Msgf("found %d order lines", len(lines))

	return record, lines, nil
}
