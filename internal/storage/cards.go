package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jsyiek/mtg-card-generator/internal/card"
)

// FetchRun records one completed catalog fetch.
type FetchRun struct {
	ID          int64
	Query       string
	CardCount   int
	StartedAt   time.Time
	CompletedAt time.Time
}

// CardRepository stores catalog cards.
type CardRepository struct {
	db *DB
}

// NewCardRepository creates a card repository.
func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

// SaveCards inserts or replaces cards by name in one transaction.
func (r *CardRepository) SaveCards(ctx context.Context, cards []card.Card) error {
	query := `
		INSERT INTO cards (
			name, category, text, supertypes, types, subtypes, cmc, colors,
			mana_cost, rarity, power, toughness, loyalty, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			category = excluded.category,
			text = excluded.text,
			supertypes = excluded.supertypes,
			types = excluded.types,
			subtypes = excluded.subtypes,
			cmc = excluded.cmc,
			colors = excluded.colors,
			mana_cost = excluded.mana_cost,
			rarity = excluded.rarity,
			power = excluded.power,
			toughness = excluded.toughness,
			loyalty = excluded.loyalty,
			fetched_at = CURRENT_TIMESTAMP
	`

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare card insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, c := range cards {
			var cmc, loyalty sql.NullInt64
			if c.HasCMC {
				cmc = sql.NullInt64{Int64: int64(c.CMC), Valid: true}
			}
			if c.Loyalty != nil {
				loyalty = sql.NullInt64{Int64: int64(*c.Loyalty), Valid: true}
			}
			_, err := stmt.ExecContext(ctx,
				c.Name, string(c.Category), c.Text,
				encodeList(c.Supertypes), encodeList(c.Types), encodeList(c.Subtypes),
				cmc, encodeList(c.Colors), c.ManaCost, c.Rarity, c.Power, c.Toughness, loyalty,
			)
			if err != nil {
				return fmt.Errorf("failed to save card %q: %w", c.Name, err)
			}
		}
		return nil
	})
}

// LoadCards returns cached cards in name order, optionally limited to categories.
func (r *CardRepository) LoadCards(ctx context.Context, categories ...card.Category) ([]card.Card, error) {
	query := `
		SELECT name, category, text, supertypes, types, subtypes, cmc, colors,
		       mana_cost, rarity, power, toughness, loyalty
		FROM cards
	`
	args := make([]interface{}, 0, len(categories))
	if len(categories) > 0 {
		placeholders := make([]string, len(categories))
		for i, c := range categories {
			placeholders[i] = "?"
			args = append(args, string(c))
		}
		query += " WHERE category IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY name"

	rows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []card.Card
	for rows.Next() {
		var (
			c                                   card.Card
			category                            string
			supertypes, types, subtypes, colors string
			cmc, loyalty                        sql.NullInt64
		)
		if err := rows.Scan(
			&c.Name, &category, &c.Text, &supertypes, &types, &subtypes, &cmc, &colors,
			&c.ManaCost, &c.Rarity, &c.Power, &c.Toughness, &loyalty,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}

		c.Category = card.Category(category)
		c.Supertypes = decodeList(supertypes)
		c.Types = decodeList(types)
		c.Subtypes = decodeList(subtypes)
		c.Colors = decodeList(colors)
		if cmc.Valid {
			c.CMC, c.HasCMC = int(cmc.Int64), true
		}
		if loyalty.Valid {
			l := int(loyalty.Int64)
			c.Loyalty = &l
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return cards, nil
}

// CountCards returns the number of cached cards per category.
func (r *CardRepository) CountCards(ctx context.Context) (map[card.Category]int, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `SELECT category, COUNT(*) FROM cards GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to count cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[card.Category]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan card count: %w", err)
		}
		counts[card.Category(category)] = n
	}
	return counts, rows.Err()
}

// ClearCards deletes every cached card.
func (r *CardRepository) ClearCards(ctx context.Context) error {
	if _, err := r.db.Conn().ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return fmt.Errorf("failed to clear cards: %w", err)
	}
	return nil
}

// RecordFetch stores a completed fetch run.
func (r *CardRepository) RecordFetch(ctx context.Context, run *FetchRun) error {
	res, err := r.db.Conn().ExecContext(ctx,
		`INSERT INTO fetch_runs (query, card_count, started_at, completed_at) VALUES (?, ?, ?, ?)`,
		run.Query, run.CardCount, run.StartedAt.UTC(), run.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	if run.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get fetch run id: %w", err)
	}
	return nil
}

// LastFetch returns the most recent fetch run, or nil when none exists.
func (r *CardRepository) LastFetch(ctx context.Context) (*FetchRun, error) {
	var run FetchRun
	err := r.db.Conn().QueryRowContext(ctx, `
		SELECT id, query, card_count, started_at, completed_at
		FROM fetch_runs
		ORDER BY completed_at DESC, id DESC
		LIMIT 1
	`).Scan(&run.ID, &run.Query, &run.CardCount, &run.StartedAt, &run.CompletedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last fetch: %w", err)
	}
	return &run, nil
}

func encodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(s string) []string {
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil || len(list) == 0 {
		return nil
	}
	return list
}
