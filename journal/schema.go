package journal

const Schema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	action TEXT NOT NULL,
	strategy TEXT NOT NULL,
	side TEXT NOT NULL,
	price REAL NOT NULL,
	entry REAL NOT NULL,
	qty REAL NOT NULL,
	size REAL NOT NULL,
	pnl_pct REAL NOT NULL,
	cash REAL NOT NULL,
	portfolio REAL NOT NULL,
	adaptive INTEGER NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_time ON events(time);
CREATE INDEX IF NOT EXISTS idx_events_action ON events(action);
`
