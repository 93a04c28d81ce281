package task

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"taskden/internal/kvstore"
)

// blobKey is the single key the whole collection lives under.
const blobKey = "SavedTasks"

const (
	variantPersonal = "personal"
	variantWork     = "work"
	variantShopping = "shopping"
)

// record is the on-disk shape of one task: common fields plus the optional
// fields of whichever variant the tag names. Fields of other variants stay
// absent from the encoded blob.
type record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	Category    string    `json:"category"`
	Variant     string    `json:"variant"`

	Note     string         `json:"note,omitempty"`
	Deadline *time.Time     `json:"deadline,omitempty"`
	Assignee string         `json:"assignee,omitempty"`
	Budget   float64        `json:"budget,omitempty"`
	Items    []ShoppingItem `json:"items,omitempty"`
}

func newRecord(t Task) record {
	rec := record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		Category:    string(t.Category),
	}
	switch t.Category {
	case CategoryWork:
		rec.Variant = variantWork
		if t.Work != nil {
			rec.Deadline = t.Work.Deadline
			rec.Assignee = t.Work.Assignee
		}
	case CategoryShopping:
		rec.Variant = variantShopping
		if t.Shopping != nil {
			rec.Budget = t.Shopping.Budget
			rec.Items = t.Shopping.Items
		}
	default:
		rec.Variant = variantPersonal
		if t.Personal != nil {
			rec.Note = t.Personal.Note
		}
	}
	return rec
}

// task rebuilds a Task from a stored record. The variant tag picks the
// payload; an empty tag falls back to the category string, and an
// unrecognized category string means Personal. Unknown tags report ok=false.
func (rec record) task() (Task, bool) {
	t := Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Completed:   rec.Completed,
		CreatedAt:   rec.CreatedAt,
	}

	variant := rec.Variant
	if variant == "" {
		switch ParseCategory(rec.Category) {
		case CategoryWork:
			variant = variantWork
		case CategoryShopping:
			variant = variantShopping
		default:
			variant = variantPersonal
		}
	}

	switch variant {
	case variantPersonal:
		t.Category = CategoryPersonal
		t.Personal = &PersonalDetails{Note: rec.Note}
	case variantWork:
		t.Category = CategoryWork
		t.Work = &WorkDetails{Deadline: rec.Deadline, Assignee: rec.Assignee}
	case variantShopping:
		t.Category = CategoryShopping
		items := rec.Items
		if items == nil {
			items = []ShoppingItem{}
		}
		t.Shopping = &ShoppingDetails{Budget: rec.Budget, Items: items}
	default:
		return Task{}, false
	}
	return t, true
}

// Store persists the whole task collection as one JSON blob in a key-value
// backend.
type Store struct {
	kv kvstore.Store
}

func NewStore(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// Save overwrites the blob with the full collection. There is no partial
// write: either the new blob replaces the old one or the old one stays put.
func (s *Store) Save(ctx context.Context, tasks []Task) error {
	recs := make([]record, 0, len(tasks))
	for _, t := range tasks {
		recs = append(recs, newRecord(t))
	}
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return saveFailedError(err)
	}
	if err := s.kv.Set(ctx, blobKey, b); err != nil {
		return saveFailedError(err)
	}
	return nil
}

// Load reads the blob back. A missing or unparseable blob fails as a whole;
// individual records that fail to rebuild are dropped without error.
func (s *Store) Load(ctx context.Context) ([]Task, error) {
	b, err := s.kv.Get(ctx, blobKey)
	if err != nil {
		return nil, loadFailedError(err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil, loadFailedError(err)
	}

	tasks := make([]Task, 0, len(raws))
	for _, raw := range raws {
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		t, ok := rec.task()
		if !ok {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Ping probes the backend. A missing blob still counts as reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.kv.Get(ctx, blobKey)
	if errors.Is(err, kvstore.ErrNoKey) {
		return nil
	}
	return err
}
