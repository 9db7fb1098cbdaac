package expiry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirbekov/assistant-backend/internal/model"
)

type fakeSource struct {
	mu       sync.Mutex
	category model.Category
	records  []model.Record
	deleted  int64
	err      error

	gotBefore time.Time
	gotFrom   time.Time
	gotTo     time.Time
}

func (f *fakeSource) Category() model.Category { return f.category }

func (f *fakeSource) DueBefore(_ context.Context, t time.Time) ([]model.Record, error) {
	f.mu.Lock()
	f.gotBefore = t
	f.mu.Unlock()
	return f.records, f.err
}

func (f *fakeSource) DueBetween(_ context.Context, from, to time.Time) ([]model.Record, error) {
	f.mu.Lock()
	f.gotFrom, f.gotTo = from, to
	f.mu.Unlock()
	return f.records, f.err
}

func (f *fakeSource) DeleteDueBefore(_ context.Context, t time.Time) (int64, error) {
	f.mu.Lock()
	f.gotBefore = t
	f.mu.Unlock()
	return f.deleted, f.err
}

func record(owner uuid.UUID, title string, expiresAt time.Time) model.Record {
	return model.Record{
		ID:        uuid.New(),
		OwnerID:   owner,
		Title:     title,
		ExpiresAt: &expiresAt,
	}
}

func TestSweepExpired_CountsPerCategory(t *testing.T) {
	tasks := &fakeSource{category: model.CategoryTasks, deleted: 3}
	reminders := &fakeSource{category: model.CategoryReminders, deleted: 0}

	a := New([]Source{tasks, reminders}, 0)

	now := time.Now().UTC()
	report, err := a.SweepExpired(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, now, report.SweptAt)
	require.Len(t, report.Results, 2)
	assert.Equal(t, model.CategoryTasks, report.Results[0].Category)
	assert.Equal(t, int64(3), report.Results[0].Deleted)
	assert.Equal(t, int64(0), report.Results[1].Deleted)

	// Every category sees the same reference time.
	assert.Equal(t, now, tasks.gotBefore)
	assert.Equal(t, now, reminders.gotBefore)
}

func TestSweepExpired_PartialFailureIsReported(t *testing.T) {
	tasks := &fakeSource{category: model.CategoryTasks, deleted: 2}
	payments := &fakeSource{category: model.CategoryPayments, err: errors.New("db down")}

	a := New([]Source{tasks, payments}, 0)

	report, err := a.SweepExpired(context.Background(), time.Now())
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Empty(t, report.Results[0].Error)
	assert.Equal(t, "db down", report.Results[1].Error)
}

func TestSweepExpired_AllCategoriesFailed(t *testing.T) {
	tasks := &fakeSource{category: model.CategoryTasks, err: errors.New("boom")}
	payments := &fakeSource{category: model.CategoryPayments, err: errors.New("boom")}

	a := New([]Source{tasks, payments}, 0)

	_, err := a.SweepExpired(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrAllCategoriesFailed)
}

func TestDueNow_TagsRecordsAndKeysByCategory(t *testing.T) {
	owner := uuid.New()
	now := time.Now().UTC()

	tasks := &fakeSource{
		category: model.CategoryTasks,
		records:  []model.Record{record(owner, "pay rent", now)},
	}
	reminders := &fakeSource{category: model.CategoryReminders}

	a := New([]Source{tasks, reminders}, 0)

	report, err := a.DueNow(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, report.Categories[model.CategoryTasks], 1)
	assert.Equal(t, model.CategoryTasks, report.Categories[model.CategoryTasks][0].Category)
	assert.Empty(t, report.Categories[model.CategoryReminders])
	assert.Empty(t, report.Errors)
}

func TestDueNow_FailedCategoryContributesEmptyListAndError(t *testing.T) {
	owner := uuid.New()
	now := time.Now().UTC()

	tasks := &fakeSource{
		category: model.CategoryTasks,
		records:  []model.Record{record(owner, "call mom", now)},
	}
	payments := &fakeSource{category: model.CategoryPayments, err: errors.New("timeout")}

	a := New([]Source{tasks, payments}, 0)

	report, err := a.DueNow(context.Background(), now)
	require.NoError(t, err)

	assert.Len(t, report.Categories[model.CategoryTasks], 1)
	assert.NotNil(t, report.Categories[model.CategoryPayments])
	assert.Empty(t, report.Categories[model.CategoryPayments])

	require.Len(t, report.Errors, 1)
	assert.Equal(t, model.CategoryPayments, report.Errors[0].Category)
	assert.Equal(t, "timeout", report.Errors[0].Message)
}

func TestDueWithinWindow_GroupsByOwnerAcrossCategories(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	now := time.Now().UTC()
	window := 24 * time.Hour

	tasks := &fakeSource{
		category: model.CategoryTasks,
		records: []model.Record{
			record(alice, "submit report", now.Add(time.Hour)),
			record(bob, "buy groceries", now.Add(2*time.Hour)),
		},
	}
	payments := &fakeSource{
		category: model.CategoryPayments,
		records:  []model.Record{record(alice, "electricity bill", now.Add(3*time.Hour))},
	}

	a := New([]Source{tasks, payments}, 0)

	report, err := a.DueWithinWindow(context.Background(), now, window)
	require.NoError(t, err)

	assert.Equal(t, now, report.Window.From)
	assert.Equal(t, now.Add(window), report.Window.To)

	require.Len(t, report.Users, 2)
	assert.Len(t, report.Users[alice.String()], 2)
	assert.Len(t, report.Users[bob.String()], 1)

	// The union of all groups covers every fetched record.
	total := 0
	for _, recs := range report.Users {
		total += len(recs)
		for _, r := range recs {
			assert.NotEmpty(t, r.Category)
		}
	}
	assert.Equal(t, 3, total)

	// Both sources see the same inclusive window.
	assert.Equal(t, now, tasks.gotFrom)
	assert.Equal(t, now.Add(window), tasks.gotTo)
	assert.Equal(t, now, payments.gotFrom)
	assert.Equal(t, now.Add(window), payments.gotTo)
}

func TestDueWithinWindow_SkipsFailedCategory(t *testing.T) {
	alice := uuid.New()
	now := time.Now().UTC()

	tasks := &fakeSource{
		category: model.CategoryTasks,
		records:  []model.Record{record(alice, "water plants", now.Add(time.Hour))},
	}
	temp := &fakeSource{category: model.CategoryTempMessages, err: errors.New("bad connection")}

	a := New([]Source{tasks, temp}, 0)

	report, err := a.DueWithinWindow(context.Background(), now, 24*time.Hour)
	require.NoError(t, err)

	assert.Len(t, report.Users[alice.String()], 1)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, model.CategoryTempMessages, report.Errors[0].Category)
}

func TestDueWithinWindow_AllCategoriesFailed(t *testing.T) {
	tasks := &fakeSource{category: model.CategoryTasks, err: errors.New("boom")}

	a := New([]Source{tasks}, 0)

	_, err := a.DueWithinWindow(context.Background(), time.Now(), time.Hour)
	assert.ErrorIs(t, err, ErrAllCategoriesFailed)
}
