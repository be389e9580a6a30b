package hyperparams

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demandcast/backend/internal/contracts"
)

// ErrNoActiveConfig is returned when no configuration has been saved yet.
var ErrNoActiveConfig = errors.New("no active hyperparameter configuration")

// SavedConfig is a persisted hyperparameter configuration.
type SavedConfig struct {
	ID        int64                     `json:"id"`
	Params    contracts.Hyperparameters `json:"params"`
	Active    bool                      `json:"active"`
	CreatedAt time.Time                 `json:"created_at"`
}

// Repository persists hyperparameter configurations. Exactly one
// configuration is active at a time; saving a new one deactivates the
// rest in the same transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a hyperparameter repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save stores a configuration and marks it active.
func (r *Repository) Save(ctx context.Context, hp contracts.Hyperparameters) (*SavedConfig, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE forecast.hyperparameter_configs SET active = FALSE WHERE active`); err != nil {
		return nil, fmt.Errorf("deactivate configs: %w", err)
	}

	query := `
		INSERT INTO forecast.hyperparameter_configs
			(config_name, description, n_estimators, learning_rate, max_depth,
			 subsample, colsample_bytree, reg_lambda, reg_alpha, random_state, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
		RETURNING id, created_at
	`

	saved := &SavedConfig{Params: hp, Active: true}
	err = tx.QueryRow(ctx, query,
		hp.Name, hp.Description, hp.Trees, hp.LearningRate, hp.MaxDepth,
		hp.Subsample, hp.ColsampleTree, hp.RegLambda, hp.RegAlpha, hp.Seed,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert config: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

// Active returns the currently active configuration.
func (r *Repository) Active(ctx context.Context) (*SavedConfig, error) {
	query := `
		SELECT id, config_name, description, n_estimators, learning_rate, max_depth,
		       subsample, colsample_bytree, reg_lambda, reg_alpha, random_state, created_at
		FROM forecast.hyperparameter_configs
		WHERE active
		ORDER BY created_at DESC
		LIMIT 1
	`

	saved, err := r.scanConfig(r.pool.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActiveConfig
	}
	if err != nil {
		return nil, fmt.Errorf("query active config: %w", err)
	}
	saved.Active = true
	return saved, nil
}

// List returns recent configurations, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]*SavedConfig, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, config_name, description, n_estimators, learning_rate, max_depth,
		       subsample, colsample_bytree, reg_lambda, reg_alpha, random_state, active, created_at
		FROM forecast.hyperparameter_configs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query configs: %w", err)
	}
	defer rows.Close()

	var configs []*SavedConfig
	for rows.Next() {
		var c SavedConfig
		if err := rows.Scan(
			&c.ID, &c.Params.Name, &c.Params.Description, &c.Params.Trees,
			&c.Params.LearningRate, &c.Params.MaxDepth, &c.Params.Subsample,
			&c.Params.ColsampleTree, &c.Params.RegLambda, &c.Params.RegAlpha,
			&c.Params.Seed, &c.Active, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		configs = append(configs, &c)
	}
	return configs, rows.Err()
}

func (r *Repository) scanConfig(row pgx.Row) (*SavedConfig, error) {
	var c SavedConfig
	err := row.Scan(
		&c.ID, &c.Params.Name, &c.Params.Description, &c.Params.Trees,
		&c.Params.LearningRate, &c.Params.MaxDepth, &c.Params.Subsample,
		&c.Params.ColsampleTree, &c.Params.RegLambda, &c.Params.RegAlpha,
		&c.Params.Seed, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
