package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jsyiek/mtg-card-generator/internal/card"
)

// GeneratedCard is a generated card with the run parameters that produced it.
type GeneratedCard struct {
	card.Generated
	ChunkSize int
	Seed      uint64
	CreatedAt time.Time
}

// GeneratedRepository stores generated cards.
type GeneratedRepository struct {
	db *DB
}

// NewGeneratedRepository creates a generated-card repository.
func NewGeneratedRepository(db *DB) *GeneratedRepository {
	return &GeneratedRepository{db: db}
}

// Save stores generated cards from one run.
func (r *GeneratedRepository) Save(ctx context.Context, chunkSize int, seed uint64, cards []*card.Generated) error {
	query := `
		INSERT INTO generated_cards (
			id, category, chunk_size, seed, cmc, colors, mana_cost, rarity, text,
			subtypes, power, toughness, loyalty, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare generated card insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, g := range cards {
			var loyalty sql.NullInt64
			if g.Loyalty != nil {
				loyalty = sql.NullInt64{Int64: int64(*g.Loyalty), Valid: true}
			}
			_, err := stmt.ExecContext(ctx,
				g.ID, string(g.Category), chunkSize, int64(seed), g.CMC, encodeList(g.Colors),
				g.ManaCost, g.Rarity, g.Text, encodeList(g.Subtypes), g.Power, g.Toughness,
				loyalty, now,
			)
			if err != nil {
				return fmt.Errorf("failed to save generated card %s: %w", g.ID, err)
			}
		}
		return nil
	})
}

// Recent returns up to limit generated cards, newest first.
func (r *GeneratedRepository) Recent(ctx context.Context, limit int) ([]*GeneratedCard, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT id, category, chunk_size, seed, cmc, colors, mana_cost, rarity, text,
		       subtypes, power, toughness, loyalty, created_at
		FROM generated_cards
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generated cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*GeneratedCard
	for rows.Next() {
		var (
			g                GeneratedCard
			category         string
			seed             int64
			colors, subtypes string
			loyalty          sql.NullInt64
		)
		if err := rows.Scan(
			&g.ID, &category, &g.ChunkSize, &seed, &g.CMC, &colors, &g.ManaCost, &g.Rarity, &g.Text,
			&subtypes, &g.Power, &g.Toughness, &loyalty, &g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan generated card: %w", err)
		}
		g.Category = card.Category(category)
		g.Seed = uint64(seed)
		g.Colors = decodeList(colors)
		g.Subtypes = decodeList(subtypes)
		if loyalty.Valid {
			l := int(loyalty.Int64)
			g.Loyalty = &l
		}
		out = append(out, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generated cards: %w", err)
	}
	return out, nil
}
