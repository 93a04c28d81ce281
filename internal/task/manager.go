package task

import (
	"context"
	"errors"
	"log"

	"taskden/internal/telemetry"
)

// ReportedError is the last persistence failure, held for the UI to show.
// Displayed flips once the UI has surfaced it so it is not shown twice.
type ReportedError struct {
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
	Displayed  bool   `json:"displayed"`
}

// Manager owns the authoritative task collection plus the filter state, and
// keeps the filtered view in sync after every change. Every successful
// mutation is persisted immediately; a failed save is reported, not rolled
// back, because the in-memory collection is the source of truth.
//
// Manager does no locking of its own. Callers that share one across
// goroutines must serialize access themselves.
type Manager struct {
	store  *Store
	clock  Clock
	logger *log.Logger
	events telemetry.Repository

	tasks         []Task
	filter        *Category
	showCompleted bool
	seedOnFail    bool
	filtered      []Task

	lastErr *ReportedError
}

func NewManager(store *Store, clock Clock, logger *log.Logger) *Manager {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	m := &Manager{
		store:         store,
		clock:         clock,
		logger:        logger,
		tasks:         []Task{},
		showCompleted: true,
		seedOnFail:    true,
	}
	m.recompute()
	return m
}

// SetEventRecorder wires an optional telemetry sink. Nil disables recording.
func (m *Manager) SetEventRecorder(events telemetry.Repository) {
	m.events = events
}

// SetSeedOnLoadFailure controls whether a failed Load falls back to the seed
// tasks. On by default; off, a failed load leaves the collection empty.
func (m *Manager) SetSeedOnLoadFailure(seed bool) {
	m.seedOnFail = seed
}

func (m *Manager) Clock() Clock { return m.clock }

// Load replaces the collection with the persisted one. When nothing loads,
// the seed tasks take its place and the failure is both reported and
// returned; the manager stays usable either way.
func (m *Manager) Load(ctx context.Context) error {
	tasks, err := m.store.Load(ctx)
	if err != nil {
		m.tasks = []Task{}
		if m.seedOnFail {
			m.tasks = SeedTasks(m.clock.Now())
		}
		m.recompute()
		m.report(err)
		m.record(telemetry.EventLoadFailed, telemetry.EventMetadata{"error": err.Error()})
		return err
	}
	m.tasks = tasks
	m.recompute()
	return nil
}

// AddTask appends a task to the collection. The title must be non-empty;
// nothing else is validated here.
func (m *Manager) AddTask(ctx context.Context, t Task) error {
	if t.Title == "" {
		return emptyTitleError()
	}
	m.tasks = append(m.tasks, t)
	m.persist(ctx)
	m.recompute()
	m.record(telemetry.EventTaskAdded, telemetry.EventMetadata{
		"id":       t.ID,
		"category": string(t.Category),
	})
	return nil
}

func (m *Manager) DeleteTask(ctx context.Context, id string) error {
	i := m.indexOf(id)
	if i < 0 {
		return taskNotFoundError(id)
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	m.persist(ctx)
	m.recompute()
	m.record(telemetry.EventTaskDeleted, telemetry.EventMetadata{"id": id})
	return nil
}

// UpdateTask replaces the stored task that shares t's identity, wholesale
// and in place. Insertion order is preserved.
func (m *Manager) UpdateTask(ctx context.Context, t Task) error {
	i := m.indexOf(t.ID)
	if i < 0 {
		return taskNotFoundError(t.ID)
	}
	m.tasks[i] = t
	m.persist(ctx)
	m.recompute()
	m.record(telemetry.EventTaskUpdated, telemetry.EventMetadata{"id": t.ID})
	return nil
}

// ToggleCompletion flips a task's completion state. Completing goes through
// the variant's Complete so shopping items get purchased; un-completing just
// clears the flag and leaves item state alone.
func (m *Manager) ToggleCompletion(ctx context.Context, id string) error {
	i := m.indexOf(id)
	if i < 0 {
		return taskNotFoundError(id)
	}

	t := &m.tasks[i]
	event := telemetry.EventTaskCompleted
	if t.Completed {
		t.Completed = false
		event = telemetry.EventTaskReopened
	} else {
		t.Complete()
	}
	m.persist(ctx)
	m.recompute()
	m.record(event, telemetry.EventMetadata{"id": id})
	return nil
}

// FilterByCategory restricts the filtered view to one category; nil removes
// the restriction.
func (m *Manager) FilterByCategory(c *Category) {
	m.filter = c
	m.recompute()
}

func (m *Manager) SetShowCompleted(show bool) {
	m.showCompleted = show
	m.recompute()
}

// Refresh recomputes the filtered view from current state.
func (m *Manager) Refresh() {
	m.recompute()
}

func (m *Manager) Filter() *Category { return m.filter }

func (m *Manager) ShowCompleted() bool { return m.showCompleted }

// Tasks returns the full collection in insertion order.
func (m *Manager) Tasks() []Task {
	return append([]Task(nil), m.tasks...)
}

// FilteredTasks returns the current filtered view.
func (m *Manager) FilteredTasks() []Task {
	return append([]Task(nil), m.filtered...)
}

// LastError returns a copy of the most recent reported failure, or nil.
func (m *Manager) LastError() *ReportedError {
	if m.lastErr == nil {
		return nil
	}
	cp := *m.lastErr
	return &cp
}

// MarkErrorDisplayed flags the pending error as shown.
func (m *Manager) MarkErrorDisplayed() {
	if m.lastErr != nil {
		m.lastErr.Displayed = true
	}
}

func (m *Manager) ClearError() {
	m.lastErr = nil
}

func (m *Manager) indexOf(id string) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// recompute rebuilds the filtered view: category filter and the
// show-completed flag compose by conjunction.
func (m *Manager) recompute() {
	out := make([]Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if m.filter != nil && t.Category != *m.filter {
			continue
		}
		if !m.showCompleted && t.Completed {
			continue
		}
		out = append(out, t)
	}
	m.filtered = out
}

// persist saves the whole collection. Failures land in the reported-error
// slot; the mutation that triggered the save still counts as done.
func (m *Manager) persist(ctx context.Context) {
	if err := m.store.Save(ctx, m.tasks); err != nil {
		m.report(err)
		m.record(telemetry.EventSaveFailed, telemetry.EventMetadata{"error": err.Error()})
	}
}

func (m *Manager) report(err error) {
	var te *Error
	if !errors.As(err, &te) {
		te = &Error{Kind: err, Message: err.Error()}
	}
	m.lastErr = &ReportedError{Message: te.Message, Suggestion: te.Suggestion}
	m.logger.Printf("[tasks] %v", err)
}

func (m *Manager) record(event telemetry.EventType, metadata telemetry.EventMetadata) {
	if m.events == nil {
		return
	}
	_ = m.events.RecordEvent(event, metadata)
}
