package store

// uint256 values are stored as base-10 TEXT; NULL means never observed.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS campaigns (
    address              TEXT PRIMARY KEY,
    owner                TEXT NOT NULL DEFAULT '',
    name                 TEXT NOT NULL DEFAULT '',
    description          TEXT NOT NULL DEFAULT '',
    goal                 TEXT,
    balance              TEXT,
    fetched_at           TEXT NOT NULL,
    first_seen_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS balance_history (
    address              TEXT NOT NULL REFERENCES campaigns(address) ON DELETE CASCADE,
    balance              TEXT NOT NULL,
    observed_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_address ON balance_history(address, observed_at);
CREATE INDEX IF NOT EXISTS idx_campaigns_owner ON campaigns(owner);
`
