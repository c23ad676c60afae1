package internal

import "strconv"

// CreateTestTask creates a pending task with sample data
func CreateTestTask(id ID, title string) Task {
	return Task{
		ID:          id,
		Title:       title,
		Description: "Sample description for " + title,
		DueDate:     "2030-01-15",
		Status:      TaskPending,
		UserID:      "1",
		CreatedAt:   "2030-01-01T09:00:00Z",
		UpdatedAt:   "2030-01-01T09:00:00Z",
	}
}

// CreateTestCategory creates a category with sample data
func CreateTestCategory(id ID, name, color string) Category {
	return Category{
		ID:        id,
		Name:      name,
		Color:     color,
		UserID:    "1",
		CreatedAt: "2030-01-01T09:00:00Z",
		UpdatedAt: "2030-01-01T09:00:00Z",
		Count:     &CategoryCount{},
	}
}

// CreateTestTaskInCategory creates a task attached to category
func CreateTestTaskInCategory(id ID, title string, status TaskStatus, category Category) Task {
	t := CreateTestTask(id, title)
	t.Status = status
	catID := category.ID
	t.CategoryID = &catID
	t.Category = &TaskCategory{ID: category.ID, Name: category.Name, Color: category.Color}
	return t
}

// CreateTestTasks creates n pending tasks with ids 1..n
func CreateTestTasks(n int) []Task {
	tasks := make([]Task, 0, n)
	for i := 1; i <= n; i++ {
		id := ID(strconv.Itoa(i))
		tasks = append(tasks, CreateTestTask(id, "Task "+id.String()))
	}
	return tasks
}
