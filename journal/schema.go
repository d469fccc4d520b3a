// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS fills (
	position_id TEXT NOT NULL,
	exec_id TEXT NOT NULL,
	order_id TEXT NOT NULL,
	client_order_id TEXT NOT NULL,
	side TEXT NOT NULL,
	price TEXT NOT NULL,
	quantity TEXT NOT NULL,
	commission TEXT NOT NULL,
	currency TEXT NOT NULL,
	time DATETIME NOT NULL,
	PRIMARY KEY (position_id, exec_id)
);

CREATE TABLE IF NOT EXISTS positions (
	position_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	strategy_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	entry_side TEXT NOT NULL,
	peak_quantity TEXT NOT NULL,
	avg_px_open TEXT NOT NULL,
	avg_px_close TEXT NOT NULL,
	realized_points TEXT NOT NULL,
	realized_return TEXT NOT NULL,
	realized_pnl TEXT NOT NULL,
	commission TEXT NOT NULL,
	currency TEXT NOT NULL,
	ts_opened DATETIME NOT NULL,
	ts_closed DATETIME NOT NULL,
	duration_ns INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_position ON fills(position_id, time);
CREATE INDEX IF NOT EXISTS idx_positions_id ON positions(position_id);
`
