// internal/database/stats.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jason-s-yu/cardhall/internal/models"
)

// ApplyResultsTx folds a finished game's results into every player's per-variant counters.
func ApplyResultsTx(ctx context.Context, tx pgx.Tx, variant string, results models.Results) error {
	q := `
		INSERT INTO user_stats (user_id, variant, games_played, wins, place_1, place_2, place_3, place_4, claims, successful_claims)
		VALUES ($1, $2, 1, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, variant) DO UPDATE SET
			games_played      = user_stats.games_played + 1,
			wins              = user_stats.wins + EXCLUDED.wins,
			place_1           = user_stats.place_1 + EXCLUDED.place_1,
			place_2           = user_stats.place_2 + EXCLUDED.place_2,
			place_3           = user_stats.place_3 + EXCLUDED.place_3,
			place_4           = user_stats.place_4 + EXCLUDED.place_4,
			claims            = user_stats.claims + EXCLUDED.claims,
			successful_claims = user_stats.successful_claims + EXCLUDED.successful_claims
	`
	for userID, r := range results {
		var delta models.UserStats
		delta.Apply(r)
		p := delta.PlaceFinishes
		if _, err := tx.Exec(ctx, q, userID, variant, delta.Wins, p[1], p[2], p[3], p[4], delta.Claims, delta.SuccessfulClaims); err != nil {
			return fmt.Errorf("update stats for %s: %w", userID, err)
		}
	}
	return nil
}

// GetUserStats returns a player's counters for every variant they have played.
func GetUserStats(ctx context.Context, pool *pgxpool.Pool, userID string) ([]models.UserStats, error) {
	q := `
		SELECT variant, games_played, wins, place_1, place_2, place_3, place_4, claims, successful_claims
		FROM user_stats WHERE user_id = $1 ORDER BY variant
	`
	rows, err := pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("query stats for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []models.UserStats
	for rows.Next() {
		s := models.UserStats{UserID: userID}
		p := &s.PlaceFinishes
		if err := rows.Scan(&s.Variant, &s.GamesPlayed, &s.Wins, &p[1], &p[2], &p[3], &p[4], &s.Claims, &s.SuccessfulClaims); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
