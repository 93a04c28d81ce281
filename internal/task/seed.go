package task

import "time"

// SeedTasks returns the starter collection used when no saved tasks can be
// loaded: one task per category, with stable IDs so reseeding is idempotent.
func SeedTasks(now time.Time) []Task {
	deadline := now.Add(48 * time.Hour)

	return []Task{
		{
			ID:          "task_seed_personal",
			Title:       "Morning run",
			Description: "Easy pace, 5k",
			Category:    CategoryPersonal,
			CreatedAt:   now,
			Personal: &PersonalDetails{
				Note: "Around the park loop",
			},
		},
		{
			ID:          "task_seed_work",
			Title:       "Prepare quarterly report",
			Description: "Numbers from finance, slides for the review",
			Category:    CategoryWork,
			CreatedAt:   now,
			Work: &WorkDetails{
				Deadline: &deadline,
				Assignee: "Alex",
			},
		},
		{
			ID:          "task_seed_shopping",
			Title:       "Grocery run",
			Description: "Weekly restock",
			Category:    CategoryShopping,
			CreatedAt:   now,
			Shopping: &ShoppingDetails{
				Budget: 50.00,
				Items: []ShoppingItem{
					{
						ID:       "item_seed_milk",
						Name:     "Milk",
						Quantity: 2,
						Price:    3.50,
					},
					{
						ID:       "item_seed_bread",
						Name:     "Bread",
						Quantity: 1,
						Price:    2.25,
					},
					{
						ID:       "item_seed_coffee",
						Name:     "Coffee",
						Quantity: 1,
						Price:    12.00,
					},
				},
			},
		},
	}
}
