package records

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"

	"github.com/temirbekov/assistant-backend/internal/model"
)

func setupMockDB(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}

	wrappedDB := &dbpg.DB{Master: db}
	repo := NewRepository(wrappedDB)

	return repo, mock
}

func TestCreate(t *testing.T) {
	repo, mock := setupMockDB(t)

	recordID := uuid.New()
	expiresAt := time.Now().Add(time.Hour)
	rec := model.Record{
		OwnerID:     uuid.New(),
		Title:       "pay rent",
		Description: "before the 5th",
		ExpiresAt:   &expiresAt,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO user_tasks (owner_id, title, description, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
    `)).
		WithArgs(rec.OwnerID, rec.Title, rec.Description, rec.ExpiresAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(recordID))

	id, err := repo.Create(context.Background(), model.CategoryTasks, rec)
	assert.NoError(t, err)
	assert.Equal(t, recordID, id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UnknownCategory(t *testing.T) {
	repo, _ := setupMockDB(t)

	_, err := repo.Create(context.Background(), model.Category("user_profiles"), model.Record{})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestListByOwner(t *testing.T) {
	repo, mock := setupMockDB(t)

	ownerID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "title", "description", "status", "created_at", "completed_at", "expires_at",
	}).
		AddRow(uuid.New(), ownerID, "task one", "", "pending", now, nil, now.Add(time.Hour)).
		AddRow(uuid.New(), ownerID, "task two", "notes", "completed", now, now, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, owner_id, title, description, status, created_at, completed_at, expires_at
		FROM user_tasks
		WHERE owner_id = $1
		ORDER BY created_at DESC;
    `)).
		WithArgs(ownerID).
		WillReturnRows(rows)

	list, err := repo.ListByOwner(context.Background(), model.CategoryTasks, ownerID)
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	repo, mock := setupMockDB(t)

	ownerID := uuid.New()
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM user_projects
		WHERE id = $1 AND owner_id = $2;
    `)).
		WithArgs(id, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), model.CategoryProjects, ownerID, id)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM user_projects
		WHERE id = $1 AND owner_id = $2;
    `)).
		WithArgs(id, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Delete(context.Background(), model.CategoryProjects, ownerID, id)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	repo, mock := setupMockDB(t)

	ownerID := uuid.New()
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE user_projects
		SET status = $1, completed_at = COALESCE($2, completed_at)
		WHERE id = $3 AND owner_id = $4;
    `)).
		WithArgs("completed", sqlmock.AnyArg(), id, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), model.CategoryProjects, ownerID, id, "completed")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaymentPaid(t *testing.T) {
	repo, mock := setupMockDB(t)

	ownerID := uuid.New()
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE user_payments
		SET status = 'paid', last_follow_up_at = NOW()
		WHERE id = $1 AND owner_id = $2;
    `)).
		WithArgs(id, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkPaymentPaid(context.Background(), ownerID, id)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRelatedReminders(t *testing.T) {
	repo, mock := setupMockDB(t)

	ownerID := uuid.New()
	relatedID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE user_reminders
		SET status = 'cancelled'
		WHERE owner_id = $1 AND related_type = $2 AND related_id = $3 AND status = 'pending';
    `)).
		WithArgs(ownerID, "payment", relatedID).
		WillReturnResult(sqlmock.NewResult(0, 2))

	cancelled, err := repo.CancelRelatedReminders(context.Background(), ownerID, "payment", relatedID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), cancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDueSource_DueBetween(t *testing.T) {
	repo, mock := setupMockDB(t)

	src, err := NewDueSource(repo, model.CategoryReminders)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryReminders, src.Category())

	from := time.Now()
	to := from.Add(24 * time.Hour)
	ownerID := uuid.New()

	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "title", "description", "status", "created_at", "completed_at", "expires_at",
	}).
		AddRow(uuid.New(), ownerID, "dentist", "", "pending", from, nil, from.Add(time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, owner_id, title, description, status, created_at, completed_at, expires_at
		FROM user_reminders
		WHERE expires_at >= $1 AND expires_at <= $2;
    `)).
		WithArgs(from, to).
		WillReturnRows(rows)

	list, err := src.DueBetween(context.Background(), from, to)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDueSource_DeleteDueBefore(t *testing.T) {
	repo, mock := setupMockDB(t)

	src, err := NewDueSource(repo, model.CategoryTasks)
	require.NoError(t, err)

	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`
		DELETE FROM user_tasks
		WHERE expires_at <= $1;
    `)).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := src.DeleteDueBefore(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDueSource_RejectsUnknownCategory(t *testing.T) {
	repo, _ := setupMockDB(t)

	_, err := NewDueSource(repo, model.CategoryTempMessages)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
