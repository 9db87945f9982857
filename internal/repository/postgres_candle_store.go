package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
	"CandlePull/pkg/logger"
	pgdb "CandlePull/pkg/postgres"
)

const latestOpenTimeQuery = `
	SELECT open_time FROM ohlc_1m
	WHERE symbol = $1
	ORDER BY open_time DESC
	LIMIT 1`

// The conflict clause mirrors models.Merge: close and volume take the
// incoming snapshot, the high/low range only widens.
const upsertCandleQuery = `
	INSERT INTO ohlc_1m (
		symbol, open_time, open_price, high_price, low_price, close_price,
		base_volume, close_time, quote_asset_volume, num_trades,
		taker_buy_base_volume, taker_buy_quote_volume
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (symbol, open_time) DO UPDATE SET
		close_price = EXCLUDED.close_price,
		high_price  = GREATEST(ohlc_1m.high_price, EXCLUDED.high_price),
		low_price   = LEAST(ohlc_1m.low_price, EXCLUDED.low_price),
		base_volume = EXCLUDED.base_volume,
		updated_at  = CURRENT_TIMESTAMP`

// PostgresCandleStore implements repository.CandleStore over pgx. All calls
// run through the retrying executor.
type PostgresCandleStore struct {
	client *pgdb.Client
	exec   *pgdb.Executor
	l      *logger.Logger
}

// NewPostgresCandleStore creates the store.
func NewPostgresCandleStore(client *pgdb.Client, exec *pgdb.Executor, l *logger.Logger) *PostgresCandleStore {
	return &PostgresCandleStore{client: client, exec: exec, l: l}
}

func (s *PostgresCandleStore) LatestOpenTime(ctx context.Context, symbol string) (time.Time, bool, error) {
	var openTime time.Time
	var found bool

	err := s.exec.Do(ctx, "latest_open_time", func(ctx context.Context) error {
		err := s.client.Pool().QueryRow(ctx, latestOpenTimeQuery, symbol).Scan(&openTime)
		if errors.Is(err, pgx.ErrNoRows) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return time.Time{}, false, s.wrapQueryError(err)
	}
	return openTime, found, nil
}

func (s *PostgresCandleStore) Upsert(ctx context.Context, c models.Candle) error {
	err := s.exec.Do(ctx, "upsert_candle", func(ctx context.Context) error {
		_, err := s.client.Pool().Exec(ctx, upsertCandleQuery,
			c.Symbol, c.OpenTime, c.Open, c.High, c.Low, c.Close,
			c.BaseVolume, c.CloseTime, c.QuoteAssetVolume, c.NumTrades,
			c.TakerBuyBaseVolume, c.TakerBuyQuoteVolume,
		)
		return err
	})
	if err != nil {
		return s.wrapQueryError(err)
	}
	return nil
}

func (s *PostgresCandleStore) LatestCandles(ctx context.Context, symbol string, res domrepo.Resolution, limit int) ([]models.Candle, error) {
	table, timeCol := res.Relation()
	// Table and column names come from the fixed resolution mapping, never
	// from request input.
	query := fmt.Sprintf(`
		SELECT symbol, %[2]s, open_price, high_price, low_price, close_price, base_volume
		FROM %[1]s
		WHERE symbol = $1
		ORDER BY %[2]s DESC
		LIMIT $2`, table, timeCol)

	var out []models.Candle
	err := s.exec.Do(ctx, "latest_candles", func(ctx context.Context) error {
		rows, err := s.client.Pool().Query(ctx, query, symbol, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		candles := make([]models.Candle, 0, limit)
		for rows.Next() {
			var c models.Candle
			if err := rows.Scan(&c.Symbol, &c.OpenTime, &c.Open, &c.High, &c.Low, &c.Close, &c.BaseVolume); err != nil {
				return err
			}
			candles = append(candles, c)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		out = candles
		return nil
	})
	if err != nil {
		return nil, s.wrapQueryError(err)
	}
	return out, nil
}

// wrapQueryError converts driver failures into the domain query error,
// keeping the SQLSTATE when present. Readiness and cancellation errors pass
// through untouched.
func (s *PostgresCandleStore) wrapQueryError(err error) error {
	if errors.Is(err, pgdb.ErrNotReady) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &models.QueryError{Code: pgErr.Code, Message: pgErr.Message, Err: err}
	}
	return &models.QueryError{Message: err.Error(), Err: err}
}
