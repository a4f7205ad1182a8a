package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/football-sync/internal/domain/syncrun"
	qb "github.com/riskibarqy/football-sync/internal/platform/querybuilder"
)

type SyncRunRepository struct {
	db *sqlx.DB
}

func NewSyncRunRepository(db *sqlx.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

func (r *SyncRunRepository) Start(ctx context.Context, run syncrun.Run) error {
	runID := strings.TrimSpace(run.ID)
	if runID == "" {
		return fmt.Errorf("sync run id is required")
	}

	summaryJSON, err := marshalSummary(run.Summary)
	if err != nil {
		return fmt.Errorf("marshal sync run summary: %w", err)
	}

	query, args, err := qb.InsertModel("sync_runs", syncRunInsertModel{
		ID:        runID,
		Stage:     string(run.Stage),
		Trigger:   run.Trigger,
		Status:    string(run.Status),
		Summary:   summaryJSON,
		TraceID:   optionalString(run.TraceID),
		StartedAt: run.StartedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("build insert sync run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert sync run id=%s: %w", runID, err)
	}
	return nil
}

func (r *SyncRunRepository) Finish(ctx context.Context, run syncrun.Run) error {
	summaryJSON, err := marshalSummary(run.Summary)
	if err != nil {
		return fmt.Errorf("marshal sync run summary: %w", err)
	}

	builder := qb.Update("sync_runs").
		Set("status", string(run.Status)).
		SetCast("summary", summaryJSON, "jsonb").
		Set("error", optionalString(run.ErrorMessage))
	if run.FinishedAt != nil {
		builder.Set("finished_at", run.FinishedAt.UTC())
	} else {
		builder.SetNow("finished_at")
	}

	query, args, err := builder.Where(qb.Eq("id", run.ID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build finish sync run query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("finish sync run id=%s status=%s: %w", run.ID, run.Status, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("finish sync run id=%s: not found", run.ID)
	}
	return nil
}

func (r *SyncRunRepository) GetByID(ctx context.Context, id string) (syncrun.Run, bool, error) {
	query, args, err := qb.Select("*").From("sync_runs").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return syncrun.Run{}, false, fmt.Errorf("build select sync run query: %w", err)
	}

	var row syncRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return syncrun.Run{}, false, nil
		}
		return syncrun.Run{}, false, fmt.Errorf("get sync run id=%s: %w", id, err)
	}

	run, err := syncRunFromModel(row)
	if err != nil {
		return syncrun.Run{}, false, err
	}
	return run, true, nil
}

func (r *SyncRunRepository) ListRecent(ctx context.Context, limit int) ([]syncrun.Run, error) {
	query, args, err := qb.Select("*").From("sync_runs").
		OrderBy("started_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list sync runs query: %w", err)
	}

	var rows []syncRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}

	out := make([]syncrun.Run, 0, len(rows))
	for _, row := range rows {
		run, err := syncRunFromModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

func syncRunFromModel(row syncRunTableModel) (syncrun.Run, error) {
	summary := map[string]any{}
	if len(row.Summary) > 0 {
		if err := jsoniter.Unmarshal(row.Summary, &summary); err != nil {
			return syncrun.Run{}, fmt.Errorf("decode sync run summary id=%s: %w", row.ID, err)
		}
	}

	return syncrun.Run{
		ID:           row.ID,
		Stage:        syncrun.Stage(row.Stage),
		Trigger:      row.Trigger,
		Status:       syncrun.Status(row.Status),
		Summary:      summary,
		ErrorMessage: row.ErrorMessage.String,
		TraceID:      row.TraceID.String,
		StartedAt:    row.StartedAt.UTC(),
		FinishedAt:   row.FinishedAt,
	}, nil
}

func marshalSummary(summary map[string]any) (string, error) {
	if len(summary) == 0 {
		return "{}", nil
	}
	raw, err := jsoniter.Marshal(summary)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
