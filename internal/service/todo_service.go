package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/cache"
	"taskboard/internal/model"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TodoService struct {
	todos       repository.TodoRepositoryInterface
	boards      repository.BoardRepositoryInterface
	memberships repository.MembershipRepositoryInterface
	cache       cache.Cache
	distributor realtime.Distributor
	logger      *zap.Logger
}

type TodoServiceInterface interface {
	List(ctx context.Context, userID, tenantID, boardID uuid.UUID, cursor string, limit int) (*TodoPage, error)
	Create(ctx context.Context, userID, tenantID, boardID uuid.UUID, input CreateTodoInput) (*Todo, error)
	Get(ctx context.Context, userID, tenantID, todoID uuid.UUID) (*Todo, error)
	Update(ctx context.Context, userID, tenantID, todoID uuid.UUID, input UpdateTodoInput) (*Todo, error)
	Delete(ctx context.Context, userID, tenantID, todoID uuid.UUID) error
}

var _ TodoServiceInterface = (*TodoService)(nil)

func NewTodoService(
	todos repository.TodoRepositoryInterface,
	boards repository.BoardRepositoryInterface,
	memberships repository.MembershipRepositoryInterface,
	pageCache cache.Cache,
	distributor realtime.Distributor,
	logger *zap.Logger,
) *TodoService {
	return &TodoService{
		todos:       todos,
		boards:      boards,
		memberships: memberships,
		cache:       pageCache,
		distributor: distributor,
		logger:      logger,
	}
}

// Todo is the API shape of a todo.
type Todo struct {
	ID          string    `json:"id"`
	BoardID     string    `json:"board_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	AssigneeID  *string   `json:"assignee_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TodoPage struct {
	Data []Todo   `json:"data"`
	Meta PageMeta `json:"meta"`
}

type CreateTodoInput struct {
	Title       string
	Description string
	Status      string
	AssigneeID  *uuid.UUID
}

type UpdateTodoInput struct {
	Title       *string
	Description *string
	Status      *string
	AssigneeID  *uuid.UUID
}

func validStatus(status string) bool {
	switch status {
	case model.StatusTodo, model.StatusInProgress, model.StatusDone:
		return true
	}
	return false
}

func (s *TodoService) requireMembership(ctx context.Context, userID, tenantID uuid.UUID) error {
	membership, err := s.memberships.Get(ctx, userID, tenantID)
	if err != nil {
		return err
	}
	if membership == nil {
		return ErrTenantAccessDenied
	}
	return nil
}

// requireBoard checks that the parent board exists inside the tenant. The
// check is a plain read before the write, not a transaction; a concurrent
// board deletion can slip between the two, which the schema's cascade sweeps
// up afterwards.
func (s *TodoService) requireBoard(ctx context.Context, tenantID, boardID uuid.UUID) error {
	board, err := s.boards.FindScoped(ctx, tenantID, boardID)
	if err != nil {
		return err
	}
	if board == nil {
		return ErrNotFound
	}
	return nil
}

// requireAssigneeMembership rejects assignees from outside the tenant. This
// lives at the application layer, the storage layer does not enforce it.
func (s *TodoService) requireAssigneeMembership(ctx context.Context, assigneeID, tenantID uuid.UUID) error {
	membership, err := s.memberships.Get(ctx, assigneeID, tenantID)
	if err != nil {
		return err
	}
	if membership == nil {
		return fmt.Errorf("%w: assignee is not a member of the tenant", ErrValidation)
	}
	return nil
}

func (s *TodoService) List(ctx context.Context, userID, tenantID, boardID uuid.UUID, cursor string, limit int) (*TodoPage, error) {
	if err := s.requireMembership(ctx, userID, tenantID); err != nil {
		return nil, err
	}
	if err := s.requireBoard(ctx, tenantID, boardID); err != nil {
		return nil, err
	}

	limit = normalizeLimit(limit)
	firstPage := cursor == ""
	key := cache.PageKey(cache.TodoScope(tenantID, boardID), limit)

	if firstPage {
		if payload, err := s.cache.GetPage(ctx, key); err != nil {
			s.logger.Warn("todo page cache read failed", zap.Error(err))
		} else if payload != nil {
			var page TodoPage
			if err := json.Unmarshal(payload, &page); err == nil {
				return &page, nil
			}
			s.logger.Warn("discarding undecodable cached todo page", zap.String("key", key))
		}
	}

	var afterID *uuid.UUID
	if !firstPage {
		parsed, err := uuid.Parse(cursor)
		if err != nil {
			return nil, ErrValidation
		}
		afterID = &parsed
	}

	rows, err := s.todos.FindPage(ctx, tenantID, boardID, afterID, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	page := &TodoPage{
		Data: make([]Todo, len(rows)),
		Meta: PageMeta{HasMore: hasMore},
	}
	for i, row := range rows {
		page.Data[i] = toTodo(&row)
	}
	if hasMore {
		page.Meta.NextCursor = rows[len(rows)-1].ID.String()
	}

	if firstPage {
		if payload, err := json.Marshal(page); err == nil {
			if err := s.cache.SetPage(ctx, key, payload); err != nil {
				s.logger.Warn("todo page cache write failed", zap.Error(err))
			}
		}
	}

	return page, nil
}

func (s *TodoService) Create(ctx context.Context, userID, tenantID, boardID uuid.UUID, input CreateTodoInput) (*Todo, error) {
	if err := s.requireMembership(ctx, userID, tenantID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrValidation
	}
	status := input.Status
	if status == "" {
		status = model.StatusTodo
	}
	if !validStatus(status) {
		return nil, ErrValidation
	}

	if err := s.requireBoard(ctx, tenantID, boardID); err != nil {
		return nil, err
	}
	if input.AssigneeID != nil {
		if err := s.requireAssigneeMembership(ctx, *input.AssigneeID, tenantID); err != nil {
			return nil, err
		}
	}

	todo := &model.Todo{
		ID:          uuid.New(),
		TenantID:    tenantID,
		BoardID:     boardID,
		Title:       title,
		Description: input.Description,
		Status:      status,
		AssigneeID:  input.AssigneeID,
	}
	if err := s.todos.InsertScoped(ctx, todo); err != nil {
		return nil, err
	}

	result := toTodo(todo)
	s.invalidateAndEmit(ctx, tenantID, boardID, realtime.EventTodoCreated, map[string]interface{}{
		"id":       result.ID,
		"board_id": result.BoardID,
		"title":    result.Title,
		"status":   result.Status,
	})

	return &result, nil
}

func (s *TodoService) Get(ctx context.Context, userID, tenantID, todoID uuid.UUID) (*Todo, error) {
	if err := s.requireMembership(ctx, userID, tenantID); err != nil {
		return nil, err
	}

	todo, err := s.todos.FindScoped(ctx, tenantID, todoID)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, ErrNotFound
	}

	result := toTodo(todo)
	return &result, nil
}

func (s *TodoService) Update(ctx context.Context, userID, tenantID, todoID uuid.UUID, input UpdateTodoInput) (*Todo, error) {
	if err := s.requireMembership(ctx, userID, tenantID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	changed := map[string]interface{}{"id": todoID.String()}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrValidation
		}
		updates["title"] = title
		changed["title"] = title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
		changed["description"] = *input.Description
	}
	if input.Status != nil {
		if !validStatus(*input.Status) {
			return nil, ErrValidation
		}
		updates["status"] = *input.Status
		changed["status"] = *input.Status
	}
	if input.AssigneeID != nil {
		if err := s.requireAssigneeMembership(ctx, *input.AssigneeID, tenantID); err != nil {
			return nil, err
		}
		updates["assignee_id"] = *input.AssigneeID
		changed["assignee_id"] = input.AssigneeID.String()
	}
	if len(updates) == 0 {
		return nil, ErrValidation
	}

	rows, err := s.todos.UpdateScoped(ctx, tenantID, todoID, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	todo, err := s.todos.FindScoped(ctx, tenantID, todoID)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, ErrNotFound
	}

	changed["board_id"] = todo.BoardID.String()
	s.invalidateAndEmit(ctx, tenantID, todo.BoardID, realtime.EventTodoUpdated, changed)

	result := toTodo(todo)
	return &result, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, tenantID, todoID uuid.UUID) error {
	if err := s.requireMembership(ctx, userID, tenantID); err != nil {
		return err
	}

	// The board id is needed for the room name and the cache scope, and the
	// row is gone after the delete, so read it first. Tenant-scoped like
	// everything else.
	todo, err := s.todos.FindScoped(ctx, tenantID, todoID)
	if err != nil {
		return err
	}
	if todo == nil {
		return ErrNotFound
	}

	rows, err := s.todos.DeleteScoped(ctx, tenantID, todoID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.invalidateAndEmit(ctx, tenantID, todo.BoardID, realtime.EventTodoDeleted, map[string]interface{}{
		"id":       todoID.String(),
		"board_id": todo.BoardID.String(),
	})

	return nil
}

// invalidateAndEmit drops the board's cached first page of todos, then
// broadcasts to the board room. Cache first, then emit; both best-effort.
func (s *TodoService) invalidateAndEmit(ctx context.Context, tenantID, boardID uuid.UUID, event string, payload map[string]interface{}) {
	if err := s.cache.InvalidateScope(ctx, cache.TodoScope(tenantID, boardID)); err != nil {
		s.logger.Warn("todo page cache invalidation failed",
			zap.String("board_id", boardID.String()), zap.Error(err))
	}
	s.distributor.EmitToBoard(tenantID, boardID, event, payload)
}

func toTodo(todo *model.Todo) Todo {
	result := Todo{
		ID:          todo.ID.String(),
		BoardID:     todo.BoardID.String(),
		Title:       todo.Title,
		Description: todo.Description,
		Status:      todo.Status,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
	if todo.AssigneeID != nil {
		assignee := todo.AssigneeID.String()
		result.AssigneeID = &assignee
	}
	return result
}
