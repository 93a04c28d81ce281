package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskden/internal/kvstore"
	"taskden/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, kvstore.Store) {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	t.Cleanup(func() { _ = kv.Close() })
	clock := NewFakeClock(time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC))
	return NewManager(NewStore(kv), clock, nil), kv
}

// brokenKV refuses writes, so every save fails.
type brokenKV struct{}

func (brokenKV) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, kvstore.ErrNoKey
}
func (brokenKV) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("disk full")
}
func (brokenKV) Delete(ctx context.Context, key string) error { return nil }
func (brokenKV) Close() error                                 { return nil }

func TestManager_AddTask(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	tk := NewPersonalTask("journal", "evening pages", "")
	require.NoError(t, m.AddTask(ctx, tk))

	require.Len(t, m.Tasks(), 1)
	assert.Equal(t, tk.ID, m.Tasks()[0].ID)
	assert.Len(t, m.FilteredTasks(), 1)
	assert.Nil(t, m.LastError())
}

func TestManager_AddTask_EmptyTitle(t *testing.T) {
	m, _ := newTestManager(t)

	err := m.AddTask(context.Background(), NewPersonalTask("", "", ""))

	assert.ErrorIs(t, err, ErrEmptyTitle)
	assert.Empty(t, m.Tasks())
	assert.Nil(t, m.LastError())
}

func TestManager_AbsentID_NoMutation(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.AddTask(ctx, NewPersonalTask("keep me", "", "")))
	before := m.Tasks()

	assert.ErrorIs(t, m.DeleteTask(ctx, "task_missing"), ErrTaskNotFound)
	assert.ErrorIs(t, m.ToggleCompletion(ctx, "task_missing"), ErrTaskNotFound)

	ghost := NewWorkTask("ghost", "", nil, "")
	assert.ErrorIs(t, m.UpdateTask(ctx, ghost), ErrTaskNotFound)

	assert.Equal(t, before, m.Tasks())
}

func TestManager_DeleteTask(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	first := NewPersonalTask("first", "", "")
	second := NewPersonalTask("second", "", "")
	require.NoError(t, m.AddTask(ctx, first))
	require.NoError(t, m.AddTask(ctx, second))

	require.NoError(t, m.DeleteTask(ctx, first.ID))

	require.Len(t, m.Tasks(), 1)
	assert.Equal(t, second.ID, m.Tasks()[0].ID)
}

func TestManager_UpdateTask_ReplacesInPlace(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	first := NewWorkTask("draft report", "", nil, "Sam")
	second := NewPersonalTask("second", "", "")
	require.NoError(t, m.AddTask(ctx, first))
	require.NoError(t, m.AddTask(ctx, second))

	next := first
	next.Title = "final report"
	next.Work = &WorkDetails{Assignee: "Robin"}
	require.NoError(t, m.UpdateTask(ctx, next))

	got := m.Tasks()
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID, "insertion order preserved")
	assert.Equal(t, "final report", got[0].Title)
	assert.Equal(t, "Robin", got[0].Work.Assignee)
}

func TestManager_ToggleCompletion_Shopping(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	urgent := NewShoppingItem("meds", 1, 8.00)
	urgent.Urgent = true
	tk := NewShoppingTask("groceries", "", 30, []ShoppingItem{
		urgent,
		NewShoppingItem("milk", 1, 3.50),
	})
	require.NoError(t, m.AddTask(ctx, tk))
	assert.Equal(t, PriorityHigh, m.Tasks()[0].PriorityAt(m.Clock().Now()))

	require.NoError(t, m.ToggleCompletion(ctx, tk.ID))
	got := m.Tasks()[0]
	assert.True(t, got.Completed)
	for _, it := range got.Shopping.Items {
		assert.True(t, it.Purchased)
	}

	// Un-completing leaves the purchased flags as they are.
	require.NoError(t, m.ToggleCompletion(ctx, tk.ID))
	got = m.Tasks()[0]
	assert.False(t, got.Completed)
	for _, it := range got.Shopping.Items {
		assert.True(t, it.Purchased)
	}
}

func TestManager_FilterByCategory_Idempotent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.AddTask(ctx, NewPersonalTask("p", "", "")))
	require.NoError(t, m.AddTask(ctx, NewWorkTask("w", "", nil, "")))

	work := CategoryWork
	m.FilterByCategory(&work)
	once := m.FilteredTasks()
	m.FilterByCategory(&work)
	twice := m.FilteredTasks()

	assert.Equal(t, once, twice)
	require.Len(t, once, 1)
	assert.Equal(t, CategoryWork, once[0].Category)

	m.FilterByCategory(nil)
	assert.Len(t, m.FilteredTasks(), 2)
}

func TestManager_SetShowCompleted(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	done := NewPersonalTask("done", "", "")
	open := NewPersonalTask("open", "", "")
	require.NoError(t, m.AddTask(ctx, done))
	require.NoError(t, m.AddTask(ctx, open))
	require.NoError(t, m.ToggleCompletion(ctx, done.ID))

	m.SetShowCompleted(false)
	view := m.FilteredTasks()
	require.Len(t, view, 1)
	assert.Equal(t, open.ID, view[0].ID)

	m.SetShowCompleted(true)
	assert.Len(t, m.FilteredTasks(), 2)
}

func TestManager_LoadFallsBackToSeeds(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	err := m.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadFailed)

	seeds := m.Tasks()
	require.Len(t, seeds, 3)
	categories := map[Category]bool{}
	for _, tk := range seeds {
		categories[tk.Category] = true
	}
	assert.True(t, categories[CategoryPersonal])
	assert.True(t, categories[CategoryWork])
	assert.True(t, categories[CategoryShopping])

	re := m.LastError()
	require.NotNil(t, re)
	assert.False(t, re.Displayed)

	// The seeded work task sits two days out, squarely in the medium bucket.
	work := CategoryWork
	m.FilterByCategory(&work)
	view := m.FilteredTasks()
	require.Len(t, view, 1)
	assert.Equal(t, CategoryWork, view[0].Category)
	assert.Equal(t, PriorityMedium, view[0].PriorityAt(m.Clock().Now()))
}

func TestManager_LoadWithSeedingDisabled(t *testing.T) {
	m, _ := newTestManager(t)
	m.SetSeedOnLoadFailure(false)

	err := m.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadFailed)

	assert.Empty(t, m.Tasks())
	assert.NotNil(t, m.LastError())
}

func TestManager_LoadReadsPersisted(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	t.Cleanup(func() { _ = kv.Close() })
	clock := NewFakeClock(time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	m1 := NewManager(NewStore(kv), clock, nil)
	tk := NewPersonalTask("persisted", "", "note")
	require.NoError(t, m1.AddTask(ctx, tk))

	m2 := NewManager(NewStore(kv), clock, nil)
	require.NoError(t, m2.Load(ctx))

	require.Len(t, m2.Tasks(), 1)
	assert.Equal(t, tk.ID, m2.Tasks()[0].ID)
	assert.Equal(t, "persisted", m2.Tasks()[0].Title)
	assert.Equal(t, "note", m2.Tasks()[0].Personal.Note)
}

func TestManager_SaveFailureReportedNotReturned(t *testing.T) {
	clock := NewFakeClock(time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC))
	m := NewManager(NewStore(brokenKV{}), clock, nil)
	ctx := context.Background()

	tk := NewPersonalTask("still here", "", "")
	require.NoError(t, m.AddTask(ctx, tk), "save failures do not fail the mutation")

	require.Len(t, m.Tasks(), 1, "in-memory state is the source of truth")

	re := m.LastError()
	require.NotNil(t, re)
	assert.Contains(t, re.Message, "save")
	assert.NotEmpty(t, re.Suggestion)
	assert.False(t, re.Displayed)

	m.MarkErrorDisplayed()
	assert.True(t, m.LastError().Displayed)

	m.ClearError()
	assert.Nil(t, m.LastError())
}

func TestManager_RecordsTelemetry(t *testing.T) {
	m, _ := newTestManager(t)
	events := telemetry.NewMemoryRepository()
	m.SetEventRecorder(events)
	ctx := context.Background()

	tk := NewPersonalTask("tracked", "", "")
	require.NoError(t, m.AddTask(ctx, tk))
	require.NoError(t, m.ToggleCompletion(ctx, tk.ID))
	require.NoError(t, m.ToggleCompletion(ctx, tk.ID))
	require.NoError(t, m.DeleteTask(ctx, tk.ID))

	got, err := events.GetEvents(time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, telemetry.EventTaskAdded, got[0].Type)
	assert.Equal(t, telemetry.EventTaskCompleted, got[1].Type)
	assert.Equal(t, telemetry.EventTaskReopened, got[2].Type)
	assert.Equal(t, telemetry.EventTaskDeleted, got[3].Type)
}
