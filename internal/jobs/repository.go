package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demandcast/backend/internal/contracts"
	"github.com/demandcast/backend/internal/pipeline"
)

// RunSummary is the persisted header of one prediction run.
type RunSummary struct {
	ID             int64     `json:"id"`
	GeneratedAt    time.Time `json:"generated_at"`
	RowsInput      int       `json:"rows_input"`
	RowsFeatured   int       `json:"rows_featured"`
	ItemCount      int       `json:"item_count"`
	StockoutRisk   int       `json:"stockout_risk_count"`
	Overstock      int       `json:"overstock_count"`
	OK             int       `json:"ok_count"`
	MeanDemand     float64   `json:"mean_predicted_demand"`
	MeanVolatility float64   `json:"mean_demand_volatility"`
}

// Repository persists prediction runs and their per-item results so past
// runs stay queryable after a restart.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a prediction run repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun stores a completed run header plus its items and returns the
// run id.
func (r *Repository) SaveRun(ctx context.Context, res *pipeline.PredictResult) (int64, error) {
	query := `
		INSERT INTO forecast.prediction_runs
			(generated_at, rows_input, rows_featured, item_count,
			 stockout_risk_count, overstock_count, ok_count,
			 mean_predicted_demand, mean_demand_volatility)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		res.GeneratedAt, res.RowsInput, res.RowsFeatured, len(res.Items),
		res.Summary[string(contracts.StateStockoutRisk)],
		res.Summary[string(contracts.StateOverstock)],
		res.Summary[string(contracts.StateOK)],
		res.MeanDemand, res.MeanVolatility,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	if err := r.saveItems(ctx, id, res.Items); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repository) saveItems(ctx context.Context, runID int64, items []contracts.ItemDemandStats) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO forecast.prediction_items
			(run_id, item_code, mean_predicted_demand, demand_volatility,
			 current_stock, lead_time_days, safety_stock, target_stock,
			 days_of_coverage, overstock_pct, stockout_risk_index, state, action)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for _, item := range items {
		batch.Queue(query, runID, item.ItemCode, item.MeanDemand, item.Volatility,
			item.CurrentStock, item.LeadTimeDays, item.SafetyStock, item.TargetStock,
			item.DaysOfCoverage, item.OverstockPct, item.StockoutRiskIdx,
			string(item.State), item.Action)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert run item: %w", err)
		}
	}
	return nil
}

// RecentRuns returns the latest run headers, newest first.
func (r *Repository) RecentRuns(ctx context.Context, limit int) ([]*RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT id, generated_at, rows_input, rows_featured, item_count,
		       stockout_risk_count, overstock_count, ok_count,
		       mean_predicted_demand, mean_demand_volatility
		FROM forecast.prediction_runs
		ORDER BY generated_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunSummary
	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(
			&run.ID, &run.GeneratedAt, &run.RowsInput, &run.RowsFeatured,
			&run.ItemCount, &run.StockoutRisk, &run.Overstock, &run.OK,
			&run.MeanDemand, &run.MeanVolatility,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// RunItems returns the per-item results of one run, ordered by item code.
func (r *Repository) RunItems(ctx context.Context, runID int64) ([]contracts.ItemDemandStats, error) {
	query := `
		SELECT item_code, mean_predicted_demand, demand_volatility,
		       current_stock, lead_time_days, safety_stock, target_stock,
		       days_of_coverage, overstock_pct, stockout_risk_index, state, action
		FROM forecast.prediction_items
		WHERE run_id = $1
		ORDER BY item_code ASC
	`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query run items: %w", err)
	}
	defer rows.Close()

	var items []contracts.ItemDemandStats
	for rows.Next() {
		var item contracts.ItemDemandStats
		var state string
		if err := rows.Scan(
			&item.ItemCode, &item.MeanDemand, &item.Volatility,
			&item.CurrentStock, &item.LeadTimeDays, &item.SafetyStock, &item.TargetStock,
			&item.DaysOfCoverage, &item.OverstockPct, &item.StockoutRiskIdx,
			&state, &item.Action,
		); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		item.State = contracts.StockState(state)
		items = append(items, item)
	}
	return items, rows.Err()
}
