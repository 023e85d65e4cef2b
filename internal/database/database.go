package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"shark-tank-api/internal/models"
	"shark-tank-api/internal/stats"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("database: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("database: duplicate")
)

// DB wraps the database connection and provides methods for data access.
type DB struct {
	conn *sqlx.DB
}

type pitchRow struct {
	ID        string `db:"id"`
	Data      string `db:"data"`
	CreatedAt string `db:"created_at"`
}

type decisionRow struct {
	PitchID    string         `db:"pitch_id"`
	Position   int            `db:"position"`
	InvestorID string         `db:"investor_id"`
	IsOut      bool           `db:"is_out"`
	Offer      sql.NullString `db:"offer"`
	Reasoning  string         `db:"reasoning"`
	Score      float64        `db:"score"`
}

type dealRow struct {
	ID          string `db:"id"`
	PitchID     string `db:"pitch_id"`
	InvestorID  string `db:"investor_id"`
	Accepted    bool   `db:"accepted"`
	Data        string `db:"data"`
	CompletedAt string `db:"completed_at"`
}

type statsRow struct {
	TotalDeals        int     `db:"total_deals"`
	SuccessfulDeals   int     `db:"successful_deals"`
	TotalMoneyRaised  float64 `db:"total_money_raised"`
	AverageEquity     float64 `db:"average_equity"`
	EntrepreneurScore int     `db:"entrepreneur_score"`
}

// NewDB creates a new database connection and initializes the schema.
func NewDB(dbPath string) (*DB, error) {
	conn, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist.
func (db *DB) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS pitches (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS decisions (
			pitch_id TEXT NOT NULL REFERENCES pitches(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			investor_id TEXT NOT NULL,
			is_out INTEGER NOT NULL,
			offer TEXT,
			reasoning TEXT NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (pitch_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS deals (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			pitch_id TEXT NOT NULL UNIQUE REFERENCES pitches(id) ON DELETE CASCADE,
			investor_id TEXT NOT NULL,
			accepted INTEGER NOT NULL,
			data TEXT NOT NULL,
			completed_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS player_stats (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			total_deals INTEGER NOT NULL,
			successful_deals INTEGER NOT NULL,
			total_money_raised REAL NOT NULL,
			average_equity REAL NOT NULL,
			entrepreneur_score INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_investor ON decisions(investor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_deals_completed_at ON deals(completed_at)`,
	}

	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	return nil
}

// SavePitch stores a pitch together with its decision round.
func (db *DB) SavePitch(ctx context.Context, pitch models.Pitch, decisions []models.Decision) error {
	data, err := json.Marshal(pitch)
	if err != nil {
		return fmt.Errorf("failed to encode pitch: %w", err)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pitches (id, data, created_at) VALUES (?, ?, ?)`,
		pitch.ID, string(data), pitch.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return wrapWriteErr("failed to insert pitch", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO decisions (
		pitch_id, position, investor_id, is_out, offer, reasoning, score
	) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, d := range decisions {
		var offer sql.NullString
		if d.Offer != nil {
			raw, err := json.Marshal(d.Offer)
			if err != nil {
				return fmt.Errorf("failed to encode offer: %w", err)
			}
			offer = sql.NullString{String: string(raw), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, pitch.ID, i, d.InvestorID, d.IsOut, offer, d.Reasoning, d.Score); err != nil {
			return fmt.Errorf("failed to insert decision for %s: %w", d.InvestorID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetPitch loads a stored pitch.
func (db *DB) GetPitch(ctx context.Context, id string) (models.Pitch, error) {
	var row pitchRow
	err := db.conn.GetContext(ctx, &row, `SELECT id, data, created_at FROM pitches WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Pitch{}, ErrNotFound
	}
	if err != nil {
		return models.Pitch{}, fmt.Errorf("failed to query pitch: %w", err)
	}

	var pitch models.Pitch
	if err := json.Unmarshal([]byte(row.Data), &pitch); err != nil {
		return models.Pitch{}, fmt.Errorf("failed to decode pitch: %w", err)
	}
	return pitch, nil
}

// GetDecisions returns the decision round for a pitch in catalog order.
func (db *DB) GetDecisions(ctx context.Context, pitchID string) ([]models.Decision, error) {
	var rows []decisionRow
	err := db.conn.SelectContext(ctx, &rows, `SELECT pitch_id, position, investor_id, is_out, offer, reasoning, score
		FROM decisions
		WHERE pitch_id = ?
		ORDER BY position`, pitchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}

	decisions := make([]models.Decision, 0, len(rows))
	for _, row := range rows {
		d := models.Decision{
			InvestorID: row.InvestorID,
			IsOut:      row.IsOut,
			Reasoning:  row.Reasoning,
			Score:      row.Score,
		}
		if row.Offer.Valid {
			var offer models.Offer
			if err := json.Unmarshal([]byte(row.Offer.String), &offer); err != nil {
				return nil, fmt.Errorf("failed to decode offer: %w", err)
			}
			d.Offer = &offer
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}

// SaveDeal appends a deal to the history and stores the updated stats in a
// single transaction. A second deal for the same pitch returns ErrDuplicate,
// a deal for a pitch that is not stored returns ErrNotFound.
func (db *DB) SaveDeal(ctx context.Context, deal models.Deal, s models.PlayerStats) error {
	data, err := json.Marshal(deal)
	if err != nil {
		return fmt.Errorf("failed to encode deal: %w", err)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO deals (
		id, pitch_id, investor_id, accepted, data, completed_at
	) VALUES (?, ?, ?, ?, ?, ?)`,
		deal.ID,
		deal.Pitch.ID,
		deal.FinalOffer.InvestorID,
		deal.Accepted,
		string(data),
		deal.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return wrapWriteErr("failed to insert deal", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO player_stats (
		id, total_deals, successful_deals, total_money_raised, average_equity, entrepreneur_score, updated_at
	) VALUES (1, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		total_deals = excluded.total_deals,
		successful_deals = excluded.successful_deals,
		total_money_raised = excluded.total_money_raised,
		average_equity = excluded.average_equity,
		entrepreneur_score = excluded.entrepreneur_score,
		updated_at = excluded.updated_at`,
		s.TotalDeals,
		s.SuccessfulDeals,
		s.TotalMoneyRaised,
		s.AverageEquity,
		s.EntrepreneurScore,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert player stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetDealByPitch returns the deal that resolved a pitch.
func (db *DB) GetDealByPitch(ctx context.Context, pitchID string) (models.Deal, error) {
	var row dealRow
	err := db.conn.GetContext(ctx, &row, `SELECT id, pitch_id, investor_id, accepted, data, completed_at
		FROM deals WHERE pitch_id = ?`, pitchID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Deal{}, ErrNotFound
	}
	if err != nil {
		return models.Deal{}, fmt.Errorf("failed to query deal: %w", err)
	}
	return decodeDeal(row)
}

// ListDeals returns the deal history, oldest first.
func (db *DB) ListDeals(ctx context.Context) ([]models.Deal, error) {
	var rows []dealRow
	err := db.conn.SelectContext(ctx, &rows, `SELECT id, pitch_id, investor_id, accepted, data, completed_at
		FROM deals ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}

	deals := make([]models.Deal, 0, len(rows))
	for _, row := range rows {
		deal, err := decodeDeal(row)
		if err != nil {
			return nil, err
		}
		deals = append(deals, deal)
	}
	return deals, nil
}

// GetStats returns the stored player stats, or a new player's stats.
func (db *DB) GetStats(ctx context.Context) (models.PlayerStats, error) {
	var row statsRow
	err := db.conn.GetContext(ctx, &row, `SELECT total_deals, successful_deals, total_money_raised,
		average_equity, entrepreneur_score FROM player_stats WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return stats.NewGameData().Stats, nil
	}
	if err != nil {
		return models.PlayerStats{}, fmt.Errorf("failed to query player stats: %w", err)
	}
	return models.PlayerStats(row), nil
}

// GetGameData returns the full player state.
func (db *DB) GetGameData(ctx context.Context) (models.GameData, error) {
	history, err := db.ListDeals(ctx)
	if err != nil {
		return models.GameData{}, err
	}
	s, err := db.GetStats(ctx)
	if err != nil {
		return models.GameData{}, err
	}
	return models.GameData{History: history, Stats: s}, nil
}

// Reset deletes every pitch, decision, deal and the player stats.
func (db *DB) Reset(ctx context.Context) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM deals`,
		`DELETE FROM decisions`,
		`DELETE FROM pitches`,
		`DELETE FROM player_stats`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to reset game data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func decodeDeal(row dealRow) (models.Deal, error) {
	var deal models.Deal
	if err := json.Unmarshal([]byte(row.Data), &deal); err != nil {
		return models.Deal{}, fmt.Errorf("failed to decode deal %s: %w", row.ID, err)
	}
	return deal, nil
}

func wrapWriteErr(msg string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%s: %w", msg, ErrDuplicate)
	}
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
