package repository

// Schema returns the idempotent DDL for the candle relations. ohlc_1m is the
// only written table; the coarser resolutions are views the read path
// queries by the same column shape.
func Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ohlc_1m (
			symbol                 TEXT             NOT NULL,
			open_time              TIMESTAMPTZ      NOT NULL,
			open_price             DOUBLE PRECISION NOT NULL,
			high_price             DOUBLE PRECISION NOT NULL,
			low_price              DOUBLE PRECISION NOT NULL,
			close_price            DOUBLE PRECISION NOT NULL,
			base_volume            DOUBLE PRECISION NOT NULL,
			close_time             TIMESTAMPTZ      NOT NULL,
			quote_asset_volume     DOUBLE PRECISION NOT NULL DEFAULT 0,
			num_trades             BIGINT           NOT NULL DEFAULT 0,
			taker_buy_base_volume  DOUBLE PRECISION NOT NULL DEFAULT 0,
			taker_buy_quote_volume DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at             TIMESTAMPTZ      NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (symbol, open_time)
		)`,

		`CREATE INDEX IF NOT EXISTS ohlc_1m_symbol_open_time_desc
			ON ohlc_1m (symbol, open_time DESC)`,

		`CREATE OR REPLACE VIEW ohlc_15m AS
			SELECT
				symbol,
				to_timestamp(floor(extract(epoch FROM open_time) / 900) * 900) AS bucket_time,
				(array_agg(open_price  ORDER BY open_time ASC))[1]  AS open_price,
				max(high_price)                                     AS high_price,
				min(low_price)                                      AS low_price,
				(array_agg(close_price ORDER BY open_time DESC))[1] AS close_price,
				sum(base_volume)                                    AS base_volume
			FROM ohlc_1m
			GROUP BY symbol, 2`,

		`CREATE OR REPLACE VIEW ohlc_1h AS
			SELECT
				symbol,
				date_trunc('hour', open_time)                       AS bucket_time,
				(array_agg(open_price  ORDER BY open_time ASC))[1]  AS open_price,
				max(high_price)                                     AS high_price,
				min(low_price)                                      AS low_price,
				(array_agg(close_price ORDER BY open_time DESC))[1] AS close_price,
				sum(base_volume)                                    AS base_volume
			FROM ohlc_1m
			GROUP BY symbol, 2`,
	}
}
