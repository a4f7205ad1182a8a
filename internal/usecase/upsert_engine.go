package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/football-sync/internal/domain/naturalkey"
	idgen "github.com/riskibarqy/football-sync/internal/platform/id"
	"go.opentelemetry.io/otel/attribute"
)

type UpsertOutcome string

const (
	OutcomeInserted UpsertOutcome = "inserted"
	OutcomeUpdated  UpsertOutcome = "updated"
	OutcomeFailed   UpsertOutcome = "failed"
)

type upsertOptions struct {
	insertOnly naturalkey.Fields
}

type UpsertOption func(*upsertOptions)

// WithInsertOnly adds columns written when the row is created and never touched afterwards.
func WithInsertOnly(fields naturalkey.Fields) UpsertOption {
	return func(o *upsertOptions) {
		o.insertOnly = fields
	}
}

// UpsertEngine writes one provider record keyed by its external id. The
// lookup and the write are separate statements; callers are expected to be the
// only writer for a given external id.
type UpsertEngine struct {
	repo  naturalkey.Repository
	idGen idgen.Generator
}

func NewUpsertEngine(repo naturalkey.Repository, idGen idgen.Generator) *UpsertEngine {
	return &UpsertEngine{repo: repo, idGen: idGen}
}

// Upsert updates the row matching (entity, externalID) with fields, or inserts
// it when absent. Updates are always written, even when nothing changed, and
// reported as OutcomeUpdated. Any error comes with OutcomeFailed.
func (e *UpsertEngine) Upsert(ctx context.Context, entity naturalkey.Entity, externalID string, fields naturalkey.Fields, opts ...UpsertOption) (UpsertOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UpsertEngine.Upsert",
		attribute.String("entity", string(entity)),
		attribute.String("external_id", externalID),
	)
	defer span.End()

	var options upsertOptions
	for _, opt := range opts {
		opt(&options)
	}

	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return OutcomeFailed, fmt.Errorf("%w: %s external id is required", ErrInvalidInput, entity)
	}
	if err := fields.Validate(entity); err != nil {
		return OutcomeFailed, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := options.insertOnly.Validate(entity); err != nil {
		return OutcomeFailed, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existingID, found, err := e.repo.FindID(ctx, entity, externalID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("find %s external_id=%s: %w", entity, externalID, err)
	}

	if found {
		if err := e.repo.Update(ctx, entity, existingID, fields); err != nil {
			return OutcomeFailed, fmt.Errorf("update %s external_id=%s: %w", entity, externalID, err)
		}
		return OutcomeUpdated, nil
	}

	id, err := e.idGen.NewID()
	if err != nil {
		return OutcomeFailed, fmt.Errorf("generate %s id: %w", entity, err)
	}
	if err := e.repo.Insert(ctx, entity, id, externalID, fields.Merge(options.insertOnly)); err != nil {
		return OutcomeFailed, fmt.Errorf("insert %s external_id=%s: %w", entity, externalID, err)
	}
	return OutcomeInserted, nil
}
