package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryPersonal Category = "Personal"
	CategoryWork     Category = "Work"
	CategoryShopping Category = "Shopping"
)

// ParseCategory maps a stored category string back to a Category.
// Unrecognized values fall back to Personal so old or hand-edited blobs keep
// loading.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryPersonal, CategoryWork, CategoryShopping:
		return Category(s)
	default:
		return CategoryPersonal
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryWork, CategoryShopping:
		return true
	default:
		return false
	}
}

// Priority is derived from task state, never stored.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type ShoppingItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Purchased bool    `json:"purchased"`
	Urgent    bool    `json:"urgent"`
}

func NewShoppingItem(name string, quantity int, price float64) ShoppingItem {
	return ShoppingItem{
		ID:       newItemID(),
		Name:     name,
		Quantity: quantity,
		Price:    price,
	}
}

type PersonalDetails struct {
	Note string `json:"note"`
}

type WorkDetails struct {
	Deadline *time.Time `json:"deadline,omitempty"`
	Assignee string     `json:"assignee"`
}

type ShoppingDetails struct {
	Budget float64        `json:"budget"`
	Items  []ShoppingItem `json:"items"`
}

// Task is a tagged union over the three variants: Category is the tag and
// selects which details pointer is populated. Category and ID never change
// after construction.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	Category    Category
	CreatedAt   time.Time

	Personal *PersonalDetails
	Work     *WorkDetails
	Shopping *ShoppingDetails
}

func newTaskID() string {
	return "task_" + uuid.NewString()[:8]
}

func newItemID() string {
	return "item_" + uuid.NewString()[:8]
}

func NewPersonalTask(title, description, note string) Task {
	return Task{
		ID:          newTaskID(),
		Title:       title,
		Description: description,
		Category:    CategoryPersonal,
		CreatedAt:   time.Now(),
		Personal:    &PersonalDetails{Note: note},
	}
}

func NewWorkTask(title, description string, deadline *time.Time, assignee string) Task {
	return Task{
		ID:          newTaskID(),
		Title:       title,
		Description: description,
		Category:    CategoryWork,
		CreatedAt:   time.Now(),
		Work:        &WorkDetails{Deadline: deadline, Assignee: assignee},
	}
}

func NewShoppingTask(title, description string, budget float64, items []ShoppingItem) Task {
	if budget < 0 {
		budget = 0
	}
	if items == nil {
		items = []ShoppingItem{}
	}
	return Task{
		ID:          newTaskID(),
		Title:       title,
		Description: description,
		Category:    CategoryShopping,
		CreatedAt:   time.Now(),
		Shopping:    &ShoppingDetails{Budget: budget, Items: items},
	}
}

// Complete marks the task done. Shopping tasks first mark every contained
// item purchased, then the base effect applies.
func (t *Task) Complete() {
	if t.Category == CategoryShopping && t.Shopping != nil {
		for i := range t.Shopping.Items {
			t.Shopping.Items[i].Purchased = true
		}
	}
	t.Completed = true
}

// DisplayInfo renders the one-line summary: "{title} - {category}" plus a
// variant-specific suffix.
func (t Task) DisplayInfo() string {
	info := t.Title + " - " + string(t.Category)

	switch t.Category {
	case CategoryPersonal:
		if t.Personal != nil && t.Personal.Note != "" {
			info += " - " + t.Personal.Note
		}
	case CategoryWork:
		if t.Work != nil {
			due := "No deadline"
			if t.Work.Deadline != nil {
				due = "Due: " + t.Work.Deadline.Format("Jan 2, 2006")
			}
			info += " - " + due + " - Assignee: " + t.Work.Assignee
		}
	case CategoryShopping:
		if t.Shopping != nil {
			purchased := 0
			for _, it := range t.Shopping.Items {
				if it.Purchased {
					purchased++
				}
			}
			info += fmt.Sprintf(" - Items: %d (%d purchased) - Budget: $%.2f",
				len(t.Shopping.Items), purchased, t.Shopping.Budget)
		}
	}
	return info
}

// PriorityAt derives the task's urgency at the given time.
//
// Personal: medium when the note is non-empty, else low.
// Work: high within one calendar day of the deadline (overdue included),
// medium within seven, low beyond or without a deadline.
// Shopping: high when any item is urgent and still unpurchased, medium when
// the list is non-empty, else low.
func (t Task) PriorityAt(now time.Time) Priority {
	switch t.Category {
	case CategoryWork:
		if t.Work == nil || t.Work.Deadline == nil {
			return PriorityLow
		}
		days := daysBetween(now, *t.Work.Deadline)
		switch {
		case days <= 1:
			return PriorityHigh
		case days <= 7:
			return PriorityMedium
		default:
			return PriorityLow
		}
	case CategoryShopping:
		if t.Shopping == nil || len(t.Shopping.Items) == 0 {
			return PriorityLow
		}
		for _, it := range t.Shopping.Items {
			if it.Urgent && !it.Purchased {
				return PriorityHigh
			}
		}
		return PriorityMedium
	default:
		if t.Personal != nil && t.Personal.Note != "" {
			return PriorityMedium
		}
		return PriorityLow
	}
}

// daysBetween counts whole calendar days from a to b, negative when b is
// earlier.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
