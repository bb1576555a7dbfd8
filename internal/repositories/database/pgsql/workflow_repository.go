package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matbus-aora/aora-backend/internal/apperrors"
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	portsrepo "github.com/matbus-aora/aora-backend/internal/core/ports/repositories"
	"github.com/matbus-aora/aora-backend/internal/models"
	"github.com/matbus-aora/aora-backend/internal/utils/mapping"
	"github.com/matbus-aora/aora-backend/internal/utils/pagination"
)

type PgxWorkflowRepository struct {
	BaseRepository
	ledgerRepo portsrepo.LedgerRepository
}

// newPgxWorkflowRepository creates a new repository for workflow entity data.
// The ledger repository is injected so CommitTransition can compose a balance
// adjustment with the entity write in one database transaction.
func newPgxWorkflowRepository(pool *pgxpool.Pool, ledgerRepo portsrepo.LedgerRepository) portsrepo.WorkflowRepository {
	return &PgxWorkflowRepository{
		BaseRepository: BaseRepository{Pool: pool},
		ledgerRepo:     ledgerRepo,
	}
}

// Ensure PgxWorkflowRepository implements portsrepo.WorkflowRepository
var _ portsrepo.WorkflowRepository = (*PgxWorkflowRepository)(nil)

const workflowEntityColumns = `entity_id, kind, state, owner_id, counterparty_id, subject_ref,
	       quantity, quantity_issued, quantity_returned, amount, reference, title, note, capacity, scheduled_at, version,
	       created_at, created_by, last_updated_at, last_updated_by`

func scanWorkflowEntity(row pgx.Row) (models.WorkflowEntity, error) {
	var m models.WorkflowEntity
	err := row.Scan(
		&m.EntityID,
		&m.Kind,
		&m.State,
		&m.OwnerID,
		&m.CounterpartyID,
		&m.SubjectRef,
		&m.Quantity,
		&m.QuantityIssued,
		&m.QuantityReturned,
		&m.Amount,
		&m.Reference,
		&m.Title,
		&m.Note,
		&m.Capacity,
		&m.ScheduledAt,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveEntity inserts a freshly created entity together with its seq-1
// creation history record, in one transaction.
func (r *PgxWorkflowRepository) SaveEntity(ctx context.Context, entity domain.WorkflowEntity) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelEntity := mapping.ToModelWorkflowEntity(entity)
	entityQuery := `
		INSERT INTO workflow_entities (
			entity_id, kind, state, owner_id, counterparty_id, subject_ref,
			quantity, quantity_issued, quantity_returned, amount, reference, title, note, capacity, scheduled_at, version,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err = tx.Exec(ctx, entityQuery,
		modelEntity.EntityID,
		modelEntity.Kind,
		modelEntity.State,
		modelEntity.OwnerID,
		modelEntity.CounterpartyID,
		modelEntity.SubjectRef,
		modelEntity.Quantity,
		modelEntity.QuantityIssued,
		modelEntity.QuantityReturned,
		modelEntity.Amount,
		modelEntity.Reference,
		modelEntity.Title,
		modelEntity.Note,
		modelEntity.Capacity,
		modelEntity.ScheduledAt,
		modelEntity.Version,
		modelEntity.CreatedAt,
		modelEntity.CreatedBy,
		modelEntity.LastUpdatedAt,
		modelEntity.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return apperrors.NewAppError(409, "entity "+entity.EntityID+" already exists", apperrors.ErrDuplicate)
			}
		}
		return wrapDBError(err, "failed to insert entity "+modelEntity.EntityID)
	}

	historyQuery := `
		INSERT INTO workflow_history (entity_id, seq, actor_id, actor_role, from_state, to_state, note, recorded_at)
		VALUES ($1, 1, $2, $3, '', $4, $5, $6);
	`
	_, err = tx.Exec(ctx, historyQuery,
		modelEntity.EntityID,
		modelEntity.CreatedBy,
		"", // creation records carry no transition role
		modelEntity.State,
		modelEntity.Note,
		modelEntity.CreatedAt,
	)
	if err != nil {
		return wrapDBError(err, "failed to insert creation history for entity "+modelEntity.EntityID)
	}

	return r.Commit(ctx, tx)
}

// lockEntityForUpdate fetches an entity row under FOR UPDATE within tx.
func (r *PgxWorkflowRepository) lockEntityForUpdate(ctx context.Context, tx pgx.Tx, entityID string) (models.WorkflowEntity, error) {
	query := `
		SELECT ` + workflowEntityColumns + `
		FROM workflow_entities
		WHERE entity_id = $1
		FOR UPDATE;
	`
	m, err := scanWorkflowEntity(tx.QueryRow(ctx, query, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.WorkflowEntity{}, apperrors.ErrNotFound
		}
		return models.WorkflowEntity{}, wrapDBError(err, "failed to lock entity "+entityID)
	}
	return m, nil
}

// CommitTransition applies a transition write atomically: it locks the entity
// row, checks the expected version, applies the ledger adjustment, updates the
// entity and appends the next history record. Any failure rolls everything back.
func (r *PgxWorkflowRepository) CommitTransition(ctx context.Context, write portsrepo.TransitionWrite) (*domain.LedgerDelta, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	locked, err := r.lockEntityForUpdate(ctx, tx, write.Entity.EntityID)
	if err != nil {
		return nil, err
	}
	if locked.Version != write.ExpectedVersion {
		return nil, apperrors.NewAppError(409, "entity "+write.Entity.EntityID+" was modified concurrently", apperrors.ErrConflict)
	}

	var delta *domain.LedgerDelta
	if write.Adjustment != nil {
		delta, err = r.ledgerRepo.AdjustBalanceInTx(ctx, tx, write.Adjustment.SubjectRef, write.Adjustment.Delta, write.History.ActorID)
		if err != nil {
			return nil, err
		}
	}

	modelEntity := mapping.ToModelWorkflowEntity(write.Entity)
	updateQuery := `
		UPDATE workflow_entities
		SET state = $1, counterparty_id = $2, quantity_issued = $3, quantity_returned = $4,
		    amount = $5, reference = $6, version = $7, last_updated_at = $8, last_updated_by = $9
		WHERE entity_id = $10;
	`
	tag, err := tx.Exec(ctx, updateQuery,
		modelEntity.State,
		modelEntity.CounterpartyID,
		modelEntity.QuantityIssued,
		modelEntity.QuantityReturned,
		modelEntity.Amount,
		modelEntity.Reference,
		modelEntity.Version,
		modelEntity.LastUpdatedAt,
		modelEntity.LastUpdatedBy,
		modelEntity.EntityID,
	)
	if err != nil {
		return nil, wrapDBError(err, "failed to update entity "+modelEntity.EntityID)
	}
	if tag.RowsAffected() != 1 {
		return nil, apperrors.NewAppError(500, "entity update for "+modelEntity.EntityID+" affected no rows", nil)
	}

	// The entity row lock serializes history appends, so MAX(seq)+1 is safe here.
	historyQuery := `
		INSERT INTO workflow_history (entity_id, seq, actor_id, actor_role, from_state, to_state, note, recorded_at)
		SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3, $4, $5, $6, $7
		FROM workflow_history
		WHERE entity_id = $1;
	`
	_, err = tx.Exec(ctx, historyQuery,
		write.Entity.EntityID,
		write.History.ActorID,
		string(write.History.ActorRole),
		string(write.History.FromState),
		string(write.History.ToState),
		write.History.Note,
		write.History.RecordedAt,
	)
	if err != nil {
		return nil, wrapDBError(err, "failed to insert history for entity "+write.Entity.EntityID)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return delta, nil
}

// AddParticipant enrolls a youth into a duty. The entity row lock makes the
// capacity check race-free, and the version bump surfaces any in-flight
// approval as a conflict.
func (r *PgxWorkflowRepository) AddParticipant(ctx context.Context, entityID string, participant domain.Participant, actorID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.addParticipantInTx(ctx, tx, entityID, participant, actorID); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxWorkflowRepository) addParticipantInTx(ctx context.Context, tx pgx.Tx, entityID string, participant domain.Participant, actorID string) error {
	locked, err := r.lockEntityForUpdate(ctx, tx, entityID)
	if err != nil {
		return err
	}
	// The service checked the state before opening this transaction; a racing
	// transition may have advanced it since, so re-check it under the lock.
	if locked.State != string(domain.StateOpen) {
		return apperrors.NewAppError(409, "duty "+entityID+" is no longer open for enrollment", apperrors.ErrInvalidTransition)
	}

	var count int
	countQuery := `SELECT COUNT(*) FROM duty_participants WHERE entity_id = $1;`
	if err := tx.QueryRow(ctx, countQuery, entityID).Scan(&count); err != nil {
		return wrapDBError(err, "failed to count participants for duty "+entityID)
	}
	if locked.Capacity > 0 && count >= locked.Capacity {
		return apperrors.NewAppError(422, "duty "+entityID+" is at capacity", apperrors.ErrValidation)
	}

	insertQuery := `
		INSERT INTO duty_participants (entity_id, youth_id, status, joined_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err = tx.Exec(ctx, insertQuery, entityID, participant.YouthID, string(participant.Status), participant.JoinedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return apperrors.NewAppError(409, "youth "+participant.YouthID+" already enrolled in duty "+entityID, apperrors.ErrDuplicate)
			}
		}
		return wrapDBError(err, "failed to enroll youth "+participant.YouthID+" in duty "+entityID)
	}

	return r.bumpEntityVersion(ctx, tx, entityID, actorID)
}

// SetParticipantStatus records attendance or completion for one youth.
func (r *PgxWorkflowRepository) SetParticipantStatus(ctx context.Context, entityID, youthID string, status domain.ParticipantStatus, actorID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.setParticipantStatusInTx(ctx, tx, entityID, youthID, status, actorID); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func (r *PgxWorkflowRepository) setParticipantStatusInTx(ctx context.Context, tx pgx.Tx, entityID, youthID string, status domain.ParticipantStatus, actorID string) error {
	locked, err := r.lockEntityForUpdate(ctx, tx, entityID)
	if err != nil {
		return err
	}
	// Attendance is only recordable while the duty is running or has just
	// finished; re-check under the lock so a concurrent approval cannot have
	// its all-participants-terminal premise rewritten after the fact.
	if locked.State != string(domain.StateInProgress) && locked.State != string(domain.StateCompleted) {
		return apperrors.NewAppError(409, "attendance on duty "+entityID+" cannot change in state "+locked.State, apperrors.ErrInvalidTransition)
	}

	updateQuery := `
		UPDATE duty_participants
		SET status = $1
		WHERE entity_id = $2 AND youth_id = $3;
	`
	tag, err := tx.Exec(ctx, updateQuery, string(status), entityID, youthID)
	if err != nil {
		return wrapDBError(err, "failed to update participant "+youthID+" on duty "+entityID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("youth " + youthID + " is not enrolled in duty " + entityID)
	}

	return r.bumpEntityVersion(ctx, tx, entityID, actorID)
}

// bumpEntityVersion increments the entity version under the already held row
// lock so concurrent transitions fail their expected-version check.
func (r *PgxWorkflowRepository) bumpEntityVersion(ctx context.Context, tx pgx.Tx, entityID, actorID string) error {
	query := `
		UPDATE workflow_entities
		SET version = version + 1, last_updated_at = $1, last_updated_by = $2
		WHERE entity_id = $3;
	`
	if _, err := tx.Exec(ctx, query, time.Now(), actorID, entityID); err != nil {
		return wrapDBError(err, "failed to bump version of entity "+entityID)
	}
	return nil
}

// FindEntityByID loads an entity; duty entities get their participant list.
func (r *PgxWorkflowRepository) FindEntityByID(ctx context.Context, entityID string) (*domain.WorkflowEntity, error) {
	query := `
		SELECT ` + workflowEntityColumns + `
		FROM workflow_entities
		WHERE entity_id = $1;
	`
	m, err := scanWorkflowEntity(r.Pool.QueryRow(ctx, query, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, wrapDBError(err, "failed to find entity "+entityID)
	}

	entity := mapping.ToDomainWorkflowEntity(m)
	if entity.Kind == domain.KindDuty {
		participants, err := r.findParticipants(ctx, entityID)
		if err != nil {
			return nil, err
		}
		entity.Participants = participants
	}
	return &entity, nil
}

func (r *PgxWorkflowRepository) findParticipants(ctx context.Context, entityID string) ([]domain.Participant, error) {
	query := `
		SELECT entity_id, youth_id, status, joined_at
		FROM duty_participants
		WHERE entity_id = $1
		ORDER BY joined_at;
	`
	rows, err := r.Pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, wrapDBError(err, "failed to query participants for duty "+entityID)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.EntityID, &p.YouthID, &p.Status, &p.JoinedAt); err != nil {
			return nil, wrapDBError(err, "failed to scan participant row for duty "+entityID)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "error iterating participant rows for duty "+entityID)
	}

	return mapping.ToDomainParticipantSlice(participants), nil
}

// ListEntities pages entities of one kind using token-based pagination,
// newest first, optionally filtered by state.
func (r *PgxWorkflowRepository) ListEntities(ctx context.Context, kind domain.EntityKind, state *domain.State, limit int, nextToken *string) ([]domain.WorkflowEntity, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to decide whether there is a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + workflowEntityColumns + `
		FROM workflow_entities
		WHERE kind = $1
	`
	args := []interface{}{string(kind)}

	if state != nil {
		args = append(args, string(*state))
		baseQuery += ` AND state = $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastEntityID, decodeErr := pagination.DecodeCursor(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastEntityID)
		baseQuery += ` AND (created_at, entity_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query := baseQuery + `
		ORDER BY created_at DESC, entity_id DESC
		LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, wrapDBError(err, "failed to query entities of kind "+string(kind))
	}
	defer rows.Close()

	modelEntities := []models.WorkflowEntity{}
	for rows.Next() {
		m, err := scanWorkflowEntity(rows)
		if err != nil {
			return nil, nil, wrapDBError(err, "failed to scan entity row")
		}
		modelEntities = append(modelEntities, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, wrapDBError(err, "error iterating entity rows")
	}

	var newNextToken *string
	if len(modelEntities) > limit {
		last := modelEntities[limit-1]
		token := pagination.EncodeCursor(last.CreatedAt, last.EntityID)
		newNextToken = &token
		modelEntities = modelEntities[:limit]
	}

	entities := make([]domain.WorkflowEntity, len(modelEntities))
	for i, m := range modelEntities {
		entities[i] = mapping.ToDomainWorkflowEntity(m)
	}
	return entities, newNextToken, nil
}

// ListHistory returns the entity's audit trail ordered by sequence number.
func (r *PgxWorkflowRepository) ListHistory(ctx context.Context, entityID string) ([]domain.HistoryEntry, error) {
	query := `
		SELECT entity_id, seq, actor_id, actor_role, from_state, to_state, note, recorded_at
		FROM workflow_history
		WHERE entity_id = $1
		ORDER BY seq;
	`
	rows, err := r.Pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, wrapDBError(err, "failed to query history for entity "+entityID)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var h models.HistoryEntry
		err := rows.Scan(
			&h.EntityID,
			&h.Seq,
			&h.ActorID,
			&h.ActorRole,
			&h.FromState,
			&h.ToState,
			&h.Note,
			&h.RecordedAt,
		)
		if err != nil {
			return nil, wrapDBError(err, "failed to scan history row for entity "+entityID)
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "error iterating history rows for entity "+entityID)
	}

	return mapping.ToDomainHistorySlice(entries), nil
}
