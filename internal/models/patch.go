package models

// Field marks whether a partial-update value was supplied. A set Field with a
// nil pointer Value clears a nullable column.
type Field[T any] struct {
	Set   bool
	Value T
}

// Some returns a set Field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// TaskPatch lists the task fields a caller wants to change.
type TaskPatch struct {
	Title       Field[string]
	Description Field[*string]
	IsCompleted Field[bool]
	Priority    Field[Priority]
	DueDate     Field[*Date]
	CategoryID  Field[*int64]
	Tags        Field[[]string]
}

// IsEmpty reports whether no field is set.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.IsCompleted.Set && !p.Priority.Set &&
		!p.DueDate.Set && !p.CategoryID.Set && !p.Tags.Set
}

// Apply copies the set fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = clonePtr(p.Description.Value)
	}
	if p.IsCompleted.Set {
		t.IsCompleted = p.IsCompleted.Value
	}
	if p.Priority.Set {
		t.Priority = p.Priority.Value
	}
	if p.DueDate.Set {
		t.DueDate = clonePtr(p.DueDate.Value)
	}
	if p.CategoryID.Set {
		t.CategoryID = clonePtr(p.CategoryID.Value)
	}
	if p.Tags.Set {
		t.Tags = append([]string{}, p.Tags.Value...)
	}
}

// CategoryPatch lists the category fields a caller wants to change.
type CategoryPatch struct {
	Name  Field[string]
	Color Field[string]
}

func (p CategoryPatch) IsEmpty() bool {
	return !p.Name.Set && !p.Color.Set
}

func (p CategoryPatch) Apply(c *Category) {
	if p.Name.Set {
		c.Name = p.Name.Value
	}
	if p.Color.Set {
		c.Color = p.Color.Value
	}
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
