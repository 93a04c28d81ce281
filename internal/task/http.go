package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Handler exposes the manager over HTTP. The manager itself is not safe for
// concurrent use, so every request takes the handler's mutex first.
type Handler struct {
	mu  sync.Mutex
	mgr *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{mgr: mgr}
}

// taskView is the wire shape of one task: the stored fields plus the two
// derived ones the UI renders from.
type taskView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	Priority    Priority  `json:"priority"`
	DisplayInfo string    `json:"displayInfo"`

	Personal *PersonalDetails `json:"personal,omitempty"`
	Work     *WorkDetails     `json:"work,omitempty"`
	Shopping *ShoppingDetails `json:"shopping,omitempty"`
}

func toView(t Task, now time.Time) taskView {
	return taskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Category:    t.Category,
		CreatedAt:   t.CreatedAt,
		Priority:    t.PriorityAt(now),
		DisplayInfo: t.DisplayInfo(),
		Personal:    t.Personal,
		Work:        t.Work,
		Shopping:    t.Shopping,
	}
}

func toViews(ts []Task, now time.Time) []taskView {
	out := make([]taskView, 0, len(ts))
	for _, t := range ts {
		out = append(out, toView(t, now))
	}
	return out
}

// taskUpsert is the create/update request body. Only the fields matching the
// task's category are read; the rest are ignored.
type taskUpsert struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    Category           `json:"category"`
	Note        string             `json:"note"`
	Deadline    *time.Time         `json:"deadline"`
	Assignee    string             `json:"assignee"`
	Budget      float64            `json:"budget"`
	Items       []shoppingItemEdit `json:"items"`
}

type shoppingItemEdit struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Purchased bool    `json:"purchased"`
	Urgent    bool    `json:"urgent"`
}

func (in taskUpsert) items() []ShoppingItem {
	out := make([]ShoppingItem, 0, len(in.Items))
	for _, it := range in.Items {
		item := NewShoppingItem(it.Name, it.Quantity, it.Price)
		if it.ID != "" {
			item.ID = it.ID
		}
		item.Purchased = it.Purchased
		item.Urgent = it.Urgent
		out = append(out, item)
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeTaskErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyTitle), errors.Is(err, ErrInvalidData):
		writeErr(w, 400, err.Error())
	case errors.Is(err, ErrTaskNotFound):
		writeErr(w, 404, err.Error())
	default:
		writeErr(w, 500, err.Error())
	}
}

func (h *Handler) findTask(id string) (Task, bool) {
	for _, t := range h.mgr.Tasks() {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// /api/tasks  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, 200, toViews(h.mgr.Tasks(), h.mgr.Clock().Now()))
		return

	case http.MethodPost:
		var in taskUpsert
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		if !in.Category.Valid() {
			writeTaskErr(w, invalidDataError("unknown category "+string(in.Category)))
			return
		}

		var t Task
		switch in.Category {
		case CategoryWork:
			t = NewWorkTask(in.Title, in.Description, in.Deadline, in.Assignee)
		case CategoryShopping:
			t = NewShoppingTask(in.Title, in.Description, in.Budget, in.items())
		default:
			t = NewPersonalTask(in.Title, in.Description, in.Note)
		}

		if err := h.mgr.AddTask(r.Context(), t); err != nil {
			writeTaskErr(w, err)
			return
		}
		writeJSON(w, 201, toView(t, h.mgr.Clock().Now()))
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/tasks/{id} and /api/tasks/{id}/toggle
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tail := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	tail = strings.Trim(tail, "/")
	if tail == "" {
		writeErr(w, 404, "not found")
		return
	}

	parts := strings.Split(tail, "/")
	id := parts[0]

	// /api/tasks/{id}
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			t, ok := h.findTask(id)
			if !ok {
				writeTaskErr(w, taskNotFoundError(id))
				return
			}
			writeJSON(w, 200, toView(t, h.mgr.Clock().Now()))
			return

		case http.MethodPut:
			var in taskUpsert
			if err := decodeJSON(r, &in); err != nil {
				writeErr(w, 400, "bad json")
				return
			}
			cur, ok := h.findTask(id)
			if !ok {
				writeTaskErr(w, taskNotFoundError(id))
				return
			}
			if in.Title == "" {
				writeTaskErr(w, emptyTitleError())
				return
			}

			next := cur
			next.Title = in.Title
			next.Description = in.Description
			switch cur.Category {
			case CategoryWork:
				next.Work = &WorkDetails{Deadline: in.Deadline, Assignee: in.Assignee}
			case CategoryShopping:
				budget := in.Budget
				if budget < 0 {
					budget = 0
				}
				next.Shopping = &ShoppingDetails{Budget: budget, Items: in.items()}
			default:
				next.Personal = &PersonalDetails{Note: in.Note}
			}

			if err := h.mgr.UpdateTask(r.Context(), next); err != nil {
				writeTaskErr(w, err)
				return
			}
			writeJSON(w, 200, toView(next, h.mgr.Clock().Now()))
			return

		case http.MethodDelete:
			if err := h.mgr.DeleteTask(r.Context(), id); err != nil {
				writeTaskErr(w, err)
				return
			}
			writeJSON(w, 200, map[string]any{"ok": true})
			return

		default:
			writeErr(w, 405, "method not allowed")
			return
		}
	}

	// /api/tasks/{id}/toggle
	if len(parts) == 2 && parts[1] == "toggle" {
		if r.Method != http.MethodPost {
			writeErr(w, 405, "method not allowed")
			return
		}
		if err := h.mgr.ToggleCompletion(r.Context(), id); err != nil {
			writeTaskErr(w, err)
			return
		}
		t, _ := h.findTask(id)
		writeJSON(w, 200, toView(t, h.mgr.Clock().Now()))
		return
	}

	writeErr(w, 404, "not found")
}

// /api/tasks/view  (the filtered projection)
func (h *Handler) TasksView(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	writeJSON(w, 200, toViews(h.mgr.FilteredTasks(), h.mgr.Clock().Now()))
}

// /api/tasks/filter
func (h *Handler) TasksFilter(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r.Method != http.MethodPut {
		writeErr(w, 405, "method not allowed")
		return
	}

	var in struct {
		Category *Category `json:"category"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}
	if in.Category != nil && !in.Category.Valid() {
		writeTaskErr(w, invalidDataError("unknown category "+string(*in.Category)))
		return
	}

	h.mgr.FilterByCategory(in.Category)
	writeJSON(w, 200, toViews(h.mgr.FilteredTasks(), h.mgr.Clock().Now()))
}

// /api/tasks/show-completed
func (h *Handler) TasksShowCompleted(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r.Method != http.MethodPut {
		writeErr(w, 405, "method not allowed")
		return
	}

	var in struct {
		ShowCompleted *bool `json:"showCompleted"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}
	if in.ShowCompleted == nil {
		writeErr(w, 400, `missing field "showCompleted"`)
		return
	}

	h.mgr.SetShowCompleted(*in.ShowCompleted)
	writeJSON(w, 200, toViews(h.mgr.FilteredTasks(), h.mgr.Clock().Now()))
}

// /api/tasks/refresh
func (h *Handler) TasksRefresh(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	h.mgr.Refresh()
	writeJSON(w, 200, toViews(h.mgr.FilteredTasks(), h.mgr.Clock().Now()))
}

// /api/errors/last
func (h *Handler) ErrorsLast(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, 200, h.mgr.LastError())
		return
	case http.MethodDelete:
		h.mgr.ClearError()
		writeJSON(w, 200, map[string]any{"ok": true})
		return
	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/errors/ack
func (h *Handler) ErrorsAck(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	h.mgr.MarkErrorDisplayed()
	writeJSON(w, 200, map[string]any{"ok": true})
}
