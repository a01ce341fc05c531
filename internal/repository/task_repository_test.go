package repository

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"jarvis-assistant/internal/model"
)

func TestTaskListForDayScopedByUserAndDay(t *testing.T) {
	repo := NewTaskRepository(testDB(t))
	ctx := context.Background()

	seed := []model.Task{
		{UserID: 1, Title: "Meeting", Day: "05.06.2025", Time: "09:00"},
		{UserID: 1, Title: "Gym", Day: "06.06.2025", Time: "18:30"},
		{UserID: 2, Title: "Other user", Day: "05.06.2025", Time: "10:00"},
	}
	for i := range seed {
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tasks, err := repo.ListForDay(ctx, 1, "05.06.2025")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Meeting" {
		t.Errorf("tasks = %+v, want just Meeting", tasks)
	}
}

func TestTaskCreateAssignsID(t *testing.T) {
	repo := NewTaskRepository(testDB(t))

	task := model.Task{UserID: 1, Title: "Meeting", Day: "05.06.2025", Time: "09:00"}
	if err := repo.Create(context.Background(), &task); err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == "" {
		t.Error("expected an assigned task ID")
	}
}

func TestTaskDeleteScopedByUser(t *testing.T) {
	repo := NewTaskRepository(testDB(t))
	ctx := context.Background()

	task := model.Task{UserID: 1, Title: "Meeting", Day: "05.06.2025", Time: "09:00"}
	if err := repo.Create(ctx, &task); err != nil {
		t.Fatalf("create: %v", err)
	}

	// A different user must not be able to delete it.
	if err := repo.Delete(ctx, 2, task.ID); err != nil {
		t.Fatalf("delete as other user: %v", err)
	}
	if _, err := repo.FindByID(ctx, 1, task.ID); err != nil {
		t.Fatalf("task should survive foreign delete: %v", err)
	}

	if err := repo.Delete(ctx, 1, task.ID); err != nil {
		t.Fatalf("delete as owner: %v", err)
	}
	if _, err := repo.FindByID(ctx, 1, task.ID); err != gorm.ErrRecordNotFound {
		t.Errorf("err = %v, want gorm.ErrRecordNotFound", err)
	}
}

func TestUserUpsertFromTelegram(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	created, err := repo.UpsertFromTelegram(ctx, 42, "Aibek", "", "aibek")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected a persisted user")
	}

	again, err := repo.UpsertFromTelegram(ctx, 42, "Aibek", "Nurlanov", "aibek")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("second upsert created a new row: %d != %d", again.ID, created.ID)
	}
}

func TestUserSetLocation(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	user, err := repo.UpsertFromTelegram(ctx, 42, "Aibek", "", "aibek")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if user.HasLocation() {
		t.Fatal("new user should have no location")
	}

	if err := repo.SetLocation(ctx, user.ID, 43.25, 76.91, "Almaty"); err != nil {
		t.Fatalf("set location: %v", err)
	}

	updated, err := repo.FindByTelegramID(ctx, 42)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !updated.HasLocation() || updated.City != "Almaty" {
		t.Errorf("location not stored: %+v", updated)
	}
}
