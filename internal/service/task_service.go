package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jarvis-assistant/internal/model"
	"jarvis-assistant/internal/notify"
	"jarvis-assistant/internal/repository"
)

const taskTipFallback = "Еске салу."

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description string
	Day         string // DD.MM.YYYY
	Time        string // HH:MM
}

// TaskService wraps task CRUD and the reminder planned at creation.
type TaskService struct {
	taskRepo  *repository.TaskRepository
	reminders *ReminderService
	scheduler *SchedulerService
	ai        Completer
	log       *zap.Logger
	loc       *time.Location
}

func NewTaskService(taskRepo *repository.TaskRepository, reminders *ReminderService, scheduler *SchedulerService, ai Completer, log *zap.Logger, loc *time.Location) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		reminders: reminders,
		scheduler: scheduler,
		ai:        ai,
		log:       log,
		loc:       loc,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if _, err := model.ParseDayTime(input.Day, input.Time, s.loc); err != nil {
		return nil, err
	}

	task := model.Task{
		UserID:      user.ID,
		Title:       input.Title,
		Description: input.Description,
		Day:         input.Day,
		Time:        input.Time,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// PlanHourBeforeReminder asks the assistant for a short tip and arms a
// one-shot reminder 60 minutes before the task is due. Due instants
// less than an hour away produce no reminder. Creating the same task
// twice plans two reminders; there is no dedup key.
func (s *TaskService) PlanHourBeforeReminder(ctx context.Context, task *model.Task, send func(notify.Notification)) {
	due, err := task.DueAt(s.loc)
	if err != nil {
		s.log.Warn("task has no resolvable due instant", zap.String("task", task.ID), zap.Error(err))
		return
	}

	prompt := fmt.Sprintf("I have a task titled %q at %s. Give me a short helpful tip.", task.Title, task.Time)
	tip, err := s.ai.Complete(ctx, "You are a helpful assistant. Give a short tip.", prompt)
	if err != nil || tip == "" {
		if err != nil {
			s.log.Warn("task tip failed", zap.String("task", task.ID), zap.Error(err))
		}
		tip = taskTipFallback
	}

	n, fireAt := s.reminders.HourBefore(due, task.Title, tip)
	if s.scheduler.ScheduleAt(fireAt, func() { send(n) }) {
		s.log.Info("hour-before reminder planned",
			zap.String("task", task.ID),
			zap.Time("fire_at", fireAt),
		)
	}
}

func (s *TaskService) ListAll(ctx context.Context, user *model.User) ([]model.Task, error) {
	return s.taskRepo.ListAll(ctx, user.ID)
}

func (s *TaskService) ListForDay(ctx context.Context, user *model.User, day string) ([]model.Task, error) {
	return s.taskRepo.ListForDay(ctx, user.ID, day)
}

func (s *TaskService) GetTask(ctx context.Context, user *model.User, taskID string) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, user.ID, taskID)
}

func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID string) error {
	return s.taskRepo.Delete(ctx, user.ID, taskID)
}
