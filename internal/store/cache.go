// Package store provides a SQLite-backed cache of campaign snapshots.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/crowdscope/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// timeLayout is fixed width so TEXT order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Cache provides SQLite-backed campaign caching.
type Cache struct {
	db *sql.DB
}

// BalancePoint is one observed balance of a campaign.
type BalancePoint struct {
	At      time.Time
	Balance *big.Int
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveCampaign upserts a campaign snapshot. Absent goal or balance values
// keep whatever was stored before. A history row is appended when the
// balance is present and differs from the last recorded one.
// It reports whether a history row was written.
func (c *Cache) SaveCampaign(camp model.Campaign) (bool, error) {
	if camp.Address == "" {
		return false, errors.New("store: campaign without address")
	}

	tx, err := c.db.Begin()
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	fetchedAt := camp.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	at := formatTime(fetchedAt)

	_, err = tx.Exec(`INSERT INTO campaigns
		(address, owner, name, description, goal, balance, fetched_at, first_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			owner       = CASE WHEN excluded.owner = '' THEN campaigns.owner ELSE excluded.owner END,
			name        = CASE WHEN excluded.name = '' THEN campaigns.name ELSE excluded.name END,
			description = CASE WHEN excluded.description = '' THEN campaigns.description ELSE excluded.description END,
			goal        = COALESCE(excluded.goal, campaigns.goal),
			balance     = COALESCE(excluded.balance, campaigns.balance),
			fetched_at  = excluded.fetched_at`,
		camp.Address, camp.Owner, camp.Name, camp.Description,
		nullBig(camp.Funding.Goal), nullBig(camp.Funding.Balance), at, at,
	)
	if err != nil {
		return false, err
	}

	wrote := false
	if camp.Funding.Balance != nil {
		var last sql.NullString
		err = tx.QueryRow(`SELECT balance FROM balance_history
			WHERE address = ? ORDER BY observed_at DESC, rowid DESC LIMIT 1`, camp.Address).Scan(&last)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return false, err
		}

		current := camp.Funding.Balance.String()
		if !last.Valid || last.String != current {
			_, err = tx.Exec(`INSERT INTO balance_history (address, balance, observed_at)
				VALUES (?, ?, ?)`, camp.Address, current, at)
			if err != nil {
				return false, err
			}
			wrote = true
		}
	}

	return wrote, tx.Commit()
}

// LoadCampaigns reads all cached campaigns, ordered by first sighting.
func (c *Cache) LoadCampaigns() ([]model.Campaign, error) {
	rows, err := c.db.Query(`SELECT
		address, owner, name, description, goal, balance, fetched_at
		FROM campaigns ORDER BY first_seen_at, address`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var campaigns []model.Campaign
	for rows.Next() {
		camp, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, camp)
	}
	return campaigns, rows.Err()
}

// LoadCampaign reads one cached campaign. ok is false when it was never cached.
func (c *Cache) LoadCampaign(address string) (camp model.Campaign, ok bool, err error) {
	row := c.db.QueryRow(`SELECT
		address, owner, name, description, goal, balance, fetched_at
		FROM campaigns WHERE address = ?`, address)
	camp, err = scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Campaign{}, false, nil
	}
	if err != nil {
		return model.Campaign{}, false, err
	}
	return camp, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCampaign(s scanner) (model.Campaign, error) {
	var (
		camp          model.Campaign
		goal, balance sql.NullString
		fetchedAt     string
	)
	if err := s.Scan(&camp.Address, &camp.Owner, &camp.Name, &camp.Description,
		&goal, &balance, &fetchedAt); err != nil {
		return model.Campaign{}, err
	}

	camp.Funding.Goal, camp.GoalStatus = parseBig(goal)
	camp.Funding.Balance, camp.BalanceStatus = parseBig(balance)
	camp.FetchedAt = parseTime(fetchedAt)
	return camp, nil
}

// BalanceHistory returns up to limit most recent balance observations,
// oldest first. A non-positive limit returns all of them.
func (c *Cache) BalanceHistory(address string, limit int) ([]BalancePoint, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := c.db.Query(`SELECT balance, observed_at FROM (
			SELECT balance, observed_at, rowid AS rid FROM balance_history
			WHERE address = ? ORDER BY observed_at DESC, rowid DESC LIMIT ?
		) ORDER BY observed_at ASC, rid ASC`, address, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var points []BalancePoint
	for rows.Next() {
		var raw, at string
		if err := rows.Scan(&raw, &at); err != nil {
			return nil, err
		}
		v, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			continue
		}
		p := BalancePoint{Balance: v}
		p.At = parseTime(at)
		points = append(points, p)
	}
	return points, rows.Err()
}

// CampaignCount returns the number of cached campaigns.
func (c *Cache) CampaignCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM campaigns").Scan(&count)
	return count, err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime also accepts RFC 3339 values written by older versions.
func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullBig(v *big.Int) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func parseBig(s sql.NullString) (*big.Int, model.ReadStatus) {
	if !s.Valid {
		return nil, model.ReadErrored
	}
	v, ok := new(big.Int).SetString(s.String, 10)
	if !ok {
		return nil, model.ReadErrored
	}
	return v, model.ReadLoaded
}
