package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/memory"
)

var due = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

// steppingClock returns a clock that advances one second per call.
func steppingClock() domain.Clock {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newUseCase() (*UseCase, repository.TaskRepository) {
	tasks := memory.NewTaskRepository()
	return New(tasks, nil).WithClock(steppingClock()), tasks
}

func validInput(title string) CreateInput {
	return CreateInput{Title: title, Description: "", DueDate: due, Priority: domain.PriorityMedium, Status: domain.StatusToDo}
}

func TestCreateThenList(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	created, err := uc.Create(ctx, validInput("T"), "user-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tasks, err := uc.List(ctx, "user-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.ID != created.ID || got.UserID != "user-a" || got.Title != "T" || got.Description != "" ||
		!got.DueDate.Equal(due) || got.Priority != domain.PriorityMedium || got.Status != domain.StatusToDo {
		t.Fatalf("unexpected task: %+v", got)
	}
	if !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Fatalf("fresh task should have equal timestamps: %+v", got)
	}
}

func TestCreate_DefaultsStatus(t *testing.T) {
	uc, _ := newUseCase()
	in := validInput("T")
	in.Status = ""
	created, err := uc.Create(context.Background(), in, "user-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != domain.StatusToDo {
		t.Fatalf("expected default status, got %q", created.Status)
	}
}

func TestCreate_Validation(t *testing.T) {
	uc, tasks := newUseCase()
	ctx := context.Background()

	cases := map[string]func(*CreateInput){
		"empty title":  func(in *CreateInput) { in.Title = "" },
		"no due date":  func(in *CreateInput) { in.DueDate = time.Time{} },
		"bad priority": func(in *CreateInput) { in.Priority = "urgent" },
		"bad status":   func(in *CreateInput) { in.Status = "blocked" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput("T")
			mutate(&in)
			if _, err := uc.Create(ctx, in, "user-a"); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	listed, err := tasks.ListByUser(ctx, "user-a")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("invalid input reached storage: %+v", listed)
	}
}

func TestRequiresSubject(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	if _, err := uc.Create(ctx, validInput("T"), ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Create: %v", err)
	}
	if _, err := uc.List(ctx, ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("List: %v", err)
	}
	if _, err := uc.Delete(ctx, "x", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Delete: %v", err)
	}
}

func TestList_NewestFirstAndEmpty(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	empty, err := uc.List(ctx, "user-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", empty)
	}

	for _, title := range []string{"first", "second", "third"} {
		if _, err := uc.Create(ctx, validInput(title), "user-a"); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}
	tasks, err := uc.List(ctx, "user-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 3 || tasks[0].Title != "third" || tasks[2].Title != "first" {
		t.Fatalf("unexpected order: %+v", tasks)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	uc, tasks := newUseCase()
	ctx := context.Background()

	taskA, err := uc.Create(ctx, validInput("A"), "user-a")
	if err != nil {
		t.Fatalf("Create A: %v", err)
	}
	taskB, err := uc.Create(ctx, validInput("B"), "user-b")
	if err != nil {
		t.Fatalf("Create B: %v", err)
	}
	before, err := tasks.FindByID(ctx, taskB.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}

	listed, err := uc.List(ctx, "user-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != taskA.ID {
		t.Fatalf("list leaked tasks: %+v", listed)
	}

	title := "hijacked"
	if _, err := uc.Update(ctx, UpdateInput{ID: taskB.ID, Title: &title}, "user-a"); !errors.Is(err, domain.ErrTaskNotFoundOrForbidden) {
		t.Fatalf("Update: %v", err)
	}
	if _, err := uc.UpdateStatus(ctx, taskB.ID, domain.StatusDone, "user-a"); !errors.Is(err, domain.ErrTaskNotFoundOrForbidden) {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if _, err := uc.Delete(ctx, taskB.ID, "user-a"); !errors.Is(err, domain.ErrTaskNotFoundOrForbidden) {
		t.Fatalf("Delete: %v", err)
	}

	after, err := tasks.FindByID(ctx, taskB.ID)
	if err != nil {
		t.Fatalf("task B vanished: %v", err)
	}
	if *after != *before {
		t.Fatalf("task B changed: %+v -> %+v", before, after)
	}
}

func TestMissingAndForeignAreIndistinguishable(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	foreign, err := uc.Create(ctx, validInput("B"), "user-b")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, missingErr := uc.UpdateStatus(ctx, "does-not-exist", domain.StatusDone, "user-a")
	_, foreignErr := uc.UpdateStatus(ctx, foreign.ID, domain.StatusDone, "user-a")
	if missingErr == nil || foreignErr == nil || missingErr.Error() != foreignErr.Error() {
		t.Fatalf("errors differ: %v / %v", missingErr, foreignErr)
	}
}

func TestUpdate_Partial(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	created, err := uc.Create(ctx, CreateInput{Title: "T", Description: "keep me", DueDate: due, Priority: domain.PriorityLow}, "user-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "renamed"
	priority := domain.PriorityHigh
	updated, err := uc.Update(ctx, UpdateInput{ID: created.ID, Title: &title, Priority: &priority}, "user-a")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "renamed" || updated.Priority != domain.PriorityHigh {
		t.Fatalf("fields not applied: %+v", updated)
	}
	if updated.Description != "keep me" || !updated.DueDate.Equal(due) || updated.Status != domain.StatusToDo {
		t.Fatalf("unset fields changed: %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) || !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("timestamps: created %v/%v updated %v/%v", created.CreatedAt, created.UpdatedAt, updated.CreatedAt, updated.UpdatedAt)
	}

	// an empty update still advances updated_at
	again, err := uc.Update(ctx, UpdateInput{ID: created.ID}, "user-a")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !again.UpdatedAt.After(updated.UpdatedAt) {
		t.Fatalf("updated_at did not advance")
	}

	empty := ""
	if _, err := uc.Update(ctx, UpdateInput{ID: created.ID, Title: &empty}, "user-a"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatus_OnlyStatusChanges(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	created, err := uc.Create(ctx, validInput("T"), "user-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := uc.UpdateStatus(ctx, created.ID, domain.StatusDone, "user-a")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	want := *created
	want.Status = domain.StatusDone
	want.UpdatedAt = updated.UpdatedAt
	if *updated != want {
		t.Fatalf("got %+v want %+v", updated, want)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatal("updated_at did not advance")
	}
}

func TestUpdateStatus_AnyTransition(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	created, err := uc.Create(ctx, validInput("T"), "user-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, from := range domain.Statuses {
		for _, to := range domain.Statuses {
			if _, err := uc.UpdateStatus(ctx, created.ID, from, "user-a"); err != nil {
				t.Fatalf("to %q: %v", from, err)
			}
			moved, err := uc.UpdateStatus(ctx, created.ID, to, "user-a")
			if err != nil {
				t.Fatalf("%q -> %q: %v", from, to, err)
			}
			if moved.Status != to {
				t.Fatalf("%q -> %q: got %q", from, to, moved.Status)
			}
		}
	}

	if _, err := uc.UpdateStatus(ctx, created.ID, "archived", "user-a"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	uc, _ := newUseCase()
	ctx := context.Background()

	created, err := uc.Create(ctx, validInput("T"), "user-a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	deleted, err := uc.Delete(ctx, created.ID, "user-a")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if *deleted != *created {
		t.Fatalf("snapshot mismatch: %+v vs %+v", deleted, created)
	}
	if _, err := uc.Delete(ctx, created.ID, "user-a"); !errors.Is(err, domain.ErrTaskNotFoundOrForbidden) {
		t.Fatalf("second Delete: %v", err)
	}
	tasks, err := uc.List(ctx, "user-a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("task still listed: %+v", tasks)
	}
}
