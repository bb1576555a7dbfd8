package pgsql

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/matbus-aora/aora-backend/internal/apperrors"
	"github.com/matbus-aora/aora-backend/internal/core/domain"
	"github.com/matbus-aora/aora-backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowFunc adapts a scan function into a pgx.Row.
type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

// errRow is a pgx.Row that always fails to scan.
type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

// stubTx satisfies pgx.Tx without a database: QueryRow is routed through
// rowForSQL and every Exec is recorded.
type stubTx struct {
	rowForSQL func(sql string) pgx.Row
	execSQLs  []string
}

var _ pgx.Tx = (*stubTx)(nil)

func (t *stubTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *stubTx) Commit(ctx context.Context) error          { return nil }
func (t *stubTx) Rollback(ctx context.Context) error        { return nil }
func (t *stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *stubTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *stubTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	t.execSQLs = append(t.execSQLs, sql)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}
func (t *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.rowForSQL(sql)
}
func (t *stubTx) Conn() *pgx.Conn { return nil }

// entityRow serves a workflow_entities row in column order.
func entityRow(m models.WorkflowEntity) pgx.Row {
	return rowFunc(func(dest ...any) error {
		*dest[0].(*string) = m.EntityID
		*dest[1].(*string) = m.Kind
		*dest[2].(*string) = m.State
		*dest[3].(*string) = m.OwnerID
		*dest[4].(**string) = m.CounterpartyID
		*dest[5].(*string) = m.SubjectRef
		*dest[6].(*int64) = m.Quantity
		*dest[7].(*int64) = m.QuantityIssued
		*dest[8].(*int64) = m.QuantityReturned
		*dest[9].(*decimal.Decimal) = m.Amount
		*dest[10].(*string) = m.Reference
		*dest[11].(*string) = m.Title
		*dest[12].(*string) = m.Note
		*dest[13].(*int) = m.Capacity
		*dest[14].(*time.Time) = m.ScheduledAt
		*dest[15].(*int64) = m.Version
		*dest[16].(*time.Time) = m.CreatedAt
		*dest[17].(*string) = m.CreatedBy
		*dest[18].(*time.Time) = m.LastUpdatedAt
		*dest[19].(*string) = m.LastUpdatedBy
		return nil
	})
}

func countRow(n int) pgx.Row {
	return rowFunc(func(dest ...any) error {
		*dest[0].(*int) = n
		return nil
	})
}

func dutyRow(state string, capacity int) models.WorkflowEntity {
	return models.WorkflowEntity{
		EntityID: "duty-1",
		Kind:     string(domain.KindDuty),
		State:    state,
		OwnerID:  "coordinator-1",
		Capacity: capacity,
		Version:  2,
	}
}

func enrollee() domain.Participant {
	return domain.Participant{
		YouthID:  "youth-1",
		Status:   domain.ParticipantEnrolled,
		JoinedAt: time.Now(),
	}
}

// The service checks the duty state before its transaction opens; the state
// can advance in between, so the repository must re-check it under the lock.
func TestAddParticipantRejectsDutyNoLongerOpen(t *testing.T) {
	repo := &PgxWorkflowRepository{}
	duty := dutyRow(string(domain.StateInProgress), 5)
	tx := &stubTx{rowForSQL: func(sql string) pgx.Row { return entityRow(duty) }}

	err := repo.addParticipantInTx(context.Background(), tx, duty.EntityID, enrollee(), "youth-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Empty(t, tx.execSQLs, "no participant row may be written once the duty left open")
}

func TestAddParticipantIntoOpenDuty(t *testing.T) {
	repo := &PgxWorkflowRepository{}
	duty := dutyRow(string(domain.StateOpen), 5)
	tx := &stubTx{rowForSQL: func(sql string) pgx.Row {
		if strings.Contains(sql, "COUNT") {
			return countRow(1)
		}
		return entityRow(duty)
	}}

	err := repo.addParticipantInTx(context.Background(), tx, duty.EntityID, enrollee(), "youth-1")

	require.NoError(t, err)
	// Insert plus the version bump that trips concurrent transitions.
	require.Len(t, tx.execSQLs, 2)
	assert.Contains(t, tx.execSQLs[0], "INSERT INTO duty_participants")
	assert.Contains(t, tx.execSQLs[1], "version = version + 1")
}

func TestAddParticipantAtCapacity(t *testing.T) {
	repo := &PgxWorkflowRepository{}
	duty := dutyRow(string(domain.StateOpen), 2)
	tx := &stubTx{rowForSQL: func(sql string) pgx.Row {
		if strings.Contains(sql, "COUNT") {
			return countRow(2)
		}
		return entityRow(duty)
	}}

	err := repo.addParticipantInTx(context.Background(), tx, duty.EntityID, enrollee(), "youth-1")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, tx.execSQLs)
}

func TestSetParticipantStatusRejectsApprovedDuty(t *testing.T) {
	repo := &PgxWorkflowRepository{}
	duty := dutyRow(string(domain.StateApproved), 5)
	tx := &stubTx{rowForSQL: func(sql string) pgx.Row { return entityRow(duty) }}

	err := repo.setParticipantStatusInTx(context.Background(), tx, duty.EntityID, "youth-1", domain.ParticipantAbsent, "coordinator-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Empty(t, tx.execSQLs, "an approved duty's attendance is frozen")
}

func TestSetParticipantStatusWhileInProgress(t *testing.T) {
	repo := &PgxWorkflowRepository{}
	duty := dutyRow(string(domain.StateInProgress), 5)
	tx := &stubTx{rowForSQL: func(sql string) pgx.Row { return entityRow(duty) }}

	err := repo.setParticipantStatusInTx(context.Background(), tx, duty.EntityID, "youth-1", domain.ParticipantPresent, "coordinator-1")

	require.NoError(t, err)
	require.Len(t, tx.execSQLs, 2)
	assert.Contains(t, tx.execSQLs[0], "UPDATE duty_participants")
	assert.Contains(t, tx.execSQLs[1], "version = version + 1")
}

func TestLockEntityForUpdateUnknownEntity(t *testing.T) {
	repo := &PgxWorkflowRepository{}
	tx := &stubTx{rowForSQL: func(sql string) pgx.Row { return errRow{err: pgx.ErrNoRows} }}

	_, err := repo.lockEntityForUpdate(context.Background(), tx, "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
