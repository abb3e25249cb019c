package journal

const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	currency TEXT NOT NULL,
	balance REAL NOT NULL,
	risk_percent REAL NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	symbol TEXT NOT NULL,
	direction TEXT NOT NULL,
	entry_price REAL NOT NULL DEFAULT 0,
	exit_price REAL NOT NULL DEFAULT 0,
	stop_loss REAL NOT NULL DEFAULT 0,
	take_profit REAL NOT NULL DEFAULT 0,
	position_size REAL NOT NULL DEFAULT 0,
	pnl_net REAL NOT NULL DEFAULT 0,
	planned_rr REAL NOT NULL DEFAULT 0,
	actual_rr REAL NOT NULL DEFAULT 0,
	strategy_type TEXT NOT NULL DEFAULT '',
	entry_model TEXT NOT NULL DEFAULT '',
	session TEXT NOT NULL DEFAULT '',
	timeframe TEXT NOT NULL DEFAULT '',
	mental_state TEXT NOT NULL DEFAULT '',
	confluences TEXT NOT NULL DEFAULT '[]',
	notes TEXT NOT NULL DEFAULT '',
	screenshot_url TEXT NOT NULL DEFAULT '',
	entry_date DATETIME NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_entry_date ON trades(entry_date);
CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id);
`
