package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-sync/internal/domain/naturalkey"
	qb "github.com/riskibarqy/football-sync/internal/platform/querybuilder"
)

var entityTables = map[naturalkey.Entity]string{
	naturalkey.EntityCompetition: "competitions",
	naturalkey.EntityTeam:        "teams",
	naturalkey.EntityMatch:       "matches",
}

// NaturalKeyRepository implements naturalkey.Repository over the synced
// tables. Column names come from the entity whitelist, never from callers.
type NaturalKeyRepository struct {
	db *sqlx.DB
}

func NewNaturalKeyRepository(db *sqlx.DB) *NaturalKeyRepository {
	return &NaturalKeyRepository{db: db}
}

func (r *NaturalKeyRepository) FindID(ctx context.Context, entity naturalkey.Entity, externalID string) (string, bool, error) {
	table, err := tableFor(entity)
	if err != nil {
		return "", false, err
	}

	query, args, err := qb.Select("id").From(table).
		Where(qb.Eq("external_id", externalID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build find %s id query: %w", entity, err)
	}

	var id string
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find %s id external_id=%s: %w", entity, externalID, err)
	}

	return id, true, nil
}

func (r *NaturalKeyRepository) Insert(ctx context.Context, entity naturalkey.Entity, id, externalID string, fields naturalkey.Fields) error {
	table, err := tableFor(entity)
	if err != nil {
		return err
	}
	if err := fields.Validate(entity); err != nil {
		return err
	}

	query, args, err := qb.InsertInto(table).
		Column("id", id).
		Column("external_id", externalID).
		Fields(entity.Columns(), fields).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert %s query: %w", entity, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s external_id=%s", naturalkey.ErrDuplicateExternalID, entity, externalID)
		}
		return fmt.Errorf("insert %s external_id=%s: %w", entity, externalID, err)
	}

	return nil
}

func (r *NaturalKeyRepository) Update(ctx context.Context, entity naturalkey.Entity, id string, fields naturalkey.Fields) error {
	table, err := tableFor(entity)
	if err != nil {
		return err
	}
	if err := fields.Validate(entity); err != nil {
		return err
	}

	query, args, err := qb.Update(table).
		Fields(entity.Columns(), fields).
		SetNow("updated_at").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update %s query: %w", entity, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s id=%s: %w", entity, id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update %s id=%s: row vanished", entity, id)
	}

	return nil
}

func tableFor(entity naturalkey.Entity) (string, error) {
	table, ok := entityTables[entity]
	if !ok {
		return "", fmt.Errorf("%w: %q", naturalkey.ErrUnknownEntity, string(entity))
	}
	return table, nil
}
