package achievementrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/milestones/internal/domain"
	"github.com/Amund211/milestones/internal/logging"
	"github.com/Amund211/milestones/internal/reporting"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Postgres struct {
	db      *sqlx.DB
	schema  string
	finder  domain.DefinitionFinder
	tracer  trace.Tracer
	nowFunc func() time.Time
}

func NewPostgres(db *sqlx.DB, schema string, finder domain.DefinitionFinder, nowFunc func() time.Time) *Postgres {
	tracer := otel.Tracer("milestones/achievementrepository/postgres")
	return &Postgres{
		db:      db,
		schema:  schema,
		finder:  finder,
		tracer:  tracer,
		nowFunc: nowFunc,
	}
}

type dbAchievement struct {
	ID                string         `db:"id"`
	Definition        string         `db:"definition"`
	KeyBody           string         `db:"key_body"`
	Body              string         `db:"body"`
	Value             float64        `db:"value"`
	UniversalTime     float64        `db:"universal_time"`
	Contributor       string         `db:"contributor"`
	ContributorIDs    pq.StringArray `db:"contributor_ids"`
	UpdatedAt         time.Time      `db:"updated_at"`
	RegistrationCount int64          `db:"registration_count"`
}

const selectColumns = `id, definition, key_body, body, value, universal_time,
	contributor, contributor_ids, updated_at, registration_count`

func (a dbAchievement) toRecord() domain.Record {
	return domain.Record{
		Definition:     a.Definition,
		Body:           a.Body,
		Value:          a.Value,
		Time:           a.UniversalTime,
		Contributor:    a.Contributor,
		ContributorIDs: []string(a.ContributorIDs),
	}
}

func keyExtras(key domain.Key) map[string]string {
	return map[string]string{
		"definition": key.Definition,
		"body":       key.Body,
	}
}

func (p *Postgres) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET LOCAL search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		txx.Rollback()
		return nil, fmt.Errorf("failed to set search path: %w", err)
	}

	return txx, nil
}

func (p *Postgres) Register(ctx context.Context, key domain.Key, decide Decider) (domain.Decision, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.Register")
	defer span.End()
	span.SetAttributes(attribute.String("definition", key.Definition), attribute.String("body", key.Body))

	txx, err := p.beginTx(ctx)
	if err != nil {
		reporting.Report(ctx, err, keyExtras(key))
		return domain.Decision{}, err
	}
	defer txx.Rollback()

	// Serialize registrations for this key, including the first insert when no row exists yet
	_, err = txx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key.String())
	if err != nil {
		err := fmt.Errorf("failed to lock slot: %w", err)
		reporting.Report(ctx, err, keyExtras(key))
		return domain.Decision{}, err
	}

	var stored dbAchievement
	var previous *domain.Instance
	err = txx.QueryRowxContext(
		ctx,
		fmt.Sprintf("SELECT %s FROM achievements WHERE definition = $1 AND key_body = $2", selectColumns),
		key.Definition,
		key.Body,
	).StructScan(&stored)
	if err == nil {
		instance := domain.FromRecord(p.finder, stored.toRecord())
		previous = &instance
	} else if !errors.Is(err, sql.ErrNoRows) {
		err := fmt.Errorf("failed to query stored achievement: %w", err)
		reporting.Report(ctx, err, keyExtras(key))
		return domain.Decision{}, err
	}

	decision, err := decide(previous)
	if err != nil {
		return decision, fmt.Errorf("failed to decide registration for %s: %w", key, err)
	}
	if err := checkDecision(key, decision); err != nil {
		reporting.Report(ctx, err, keyExtras(key))
		return domain.Decision{}, err
	}

	if decision.Outcome != domain.OutcomeReplace {
		return decision, nil
	}

	err = p.upsert(ctx, txx, key, decision.Instance)
	if err != nil {
		reporting.Report(ctx, err, keyExtras(key))
		return domain.Decision{}, err
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err, keyExtras(key))
		return domain.Decision{}, err
	}

	logging.FromContext(ctx).InfoContext(ctx, "Stored achievement", "key", key.String(), "value", decision.Instance.Value())

	return decision, nil
}

func (p *Postgres) upsert(ctx context.Context, txx *sqlx.Tx, key domain.Key, instance domain.Instance) error {
	record, ok := domain.ToRecord(instance)
	if !ok {
		return fmt.Errorf("%w: cannot store invalid instance for %s", domain.ErrMalformedRecord, key)
	}

	dbID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate db id: %w", err)
	}

	contributorIDs := record.ContributorIDs
	if contributorIDs == nil {
		contributorIDs = []string{}
	}

	_, err = txx.ExecContext(
		ctx,
		`INSERT INTO achievements
		(id, definition, key_body, body, value, universal_time, contributor, contributor_ids, updated_at, registration_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
		ON CONFLICT (definition, key_body)
		DO UPDATE SET
			body = EXCLUDED.body,
			value = EXCLUDED.value,
			universal_time = EXCLUDED.universal_time,
			contributor = EXCLUDED.contributor,
			contributor_ids = EXCLUDED.contributor_ids,
			updated_at = EXCLUDED.updated_at,
			registration_count = achievements.registration_count + 1`,
		dbID.String(),
		key.Definition,
		key.Body,
		record.Body,
		record.Value,
		record.Time,
		record.Contributor,
		pq.StringArray(contributorIDs),
		p.nowFunc(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert achievement: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key domain.Key) (*domain.Instance, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.Get")
	defer span.End()

	txx, err := p.beginTx(ctx)
	if err != nil {
		reporting.Report(ctx, err, keyExtras(key))
		return nil, err
	}
	defer txx.Rollback()

	var stored dbAchievement
	err = txx.QueryRowxContext(
		ctx,
		fmt.Sprintf("SELECT %s FROM achievements WHERE definition = $1 AND key_body = $2", selectColumns),
		key.Definition,
		key.Body,
	).StructScan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err := fmt.Errorf("failed to query achievement: %w", err)
		reporting.Report(ctx, err, keyExtras(key))
		return nil, err
	}

	instance := domain.FromRecord(p.finder, stored.toRecord())
	return &instance, nil
}

// List skips stored rows whose definition is no longer known
func (p *Postgres) List(ctx context.Context) ([]domain.Instance, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.List")
	defer span.End()

	txx, err := p.beginTx(ctx)
	if err != nil {
		reporting.Report(ctx, err)
		return nil, err
	}
	defer txx.Rollback()

	var stored []dbAchievement
	err = txx.SelectContext(
		ctx,
		&stored,
		fmt.Sprintf("SELECT %s FROM achievements ORDER BY definition ASC, key_body ASC", selectColumns),
	)
	if err != nil {
		err := fmt.Errorf("failed to list achievements: %w", err)
		reporting.Report(ctx, err)
		return nil, err
	}

	logger := logging.FromContext(ctx)
	instances := make([]domain.Instance, 0, len(stored))
	for _, row := range stored {
		instance := domain.FromRecord(p.finder, row.toRecord())
		if !instance.Valid() {
			logger.WarnContext(ctx, "Skipping stored achievement with unknown definition", "definition", row.Definition, "id", row.ID)
			continue
		}
		instances = append(instances, instance)
	}

	return instances, nil
}

func (p *Postgres) Restore(ctx context.Context, instances []domain.Instance) error {
	ctx, span := p.tracer.Start(ctx, "Postgres.Restore")
	defer span.End()

	txx, err := p.beginTx(ctx)
	if err != nil {
		reporting.Report(ctx, err)
		return err
	}
	defer txx.Rollback()

	for _, instance := range instances {
		if !instance.Valid() {
			continue
		}
		if err := p.upsert(ctx, txx, instance.Key(), instance); err != nil {
			reporting.Report(ctx, err, keyExtras(instance.Key()))
			return err
		}
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}
	return nil
}

// Type assertion
var _ AchievementRepository = (*Postgres)(nil)
