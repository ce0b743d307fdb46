package journal

const Schema = `
CREATE TABLE IF NOT EXISTS opens (
	position_id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	symbol TEXT NOT NULL,
	intent TEXT NOT NULL,
	units REAL NOT NULL,
	entry_price REAL NOT NULL,
	entry_time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS closes (
	position_id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	symbol TEXT NOT NULL,
	intent TEXT NOT NULL,
	units REAL NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	entry_time DATETIME NOT NULL,
	exit_time DATETIME NOT NULL,
	realized_pl REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
	day DATETIME NOT NULL,
	position_id TEXT NOT NULL,
	account TEXT NOT NULL,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	reason TEXT NOT NULL,
	phase TEXT NOT NULL,
	days_held INTEGER NOT NULL,
	peak_return REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_closes_exit_time ON closes(exit_time);
CREATE INDEX IF NOT EXISTS idx_decisions_day ON decisions(day);
CREATE INDEX IF NOT EXISTS idx_decisions_position ON decisions(position_id);
`
