package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TodoRepository struct {
	db *gorm.DB
}

// TodoRepositoryInterface mirrors the board contract: all reads and writes
// carry the tenant id, and pages are additionally scoped to the parent board.
type TodoRepositoryInterface interface {
	InsertScoped(ctx context.Context, todo *model.Todo) error
	FindScoped(ctx context.Context, tenantID, id uuid.UUID) (*model.Todo, error)
	FindPage(ctx context.Context, tenantID, boardID uuid.UUID, afterID *uuid.UUID, limit int) ([]model.Todo, error)
	UpdateScoped(ctx context.Context, tenantID, id uuid.UUID, updates map[string]interface{}) (int64, error)
	DeleteScoped(ctx context.Context, tenantID, id uuid.UUID) (int64, error)
}

var _ TodoRepositoryInterface = (*TodoRepository)(nil)

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) InsertScoped(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *TodoRepository) FindScoped(ctx context.Context, tenantID, id uuid.UUID) (*model.Todo, error) {
	var todo model.Todo
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&todo).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *TodoRepository) FindPage(ctx context.Context, tenantID, boardID uuid.UUID, afterID *uuid.UUID, limit int) ([]model.Todo, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND board_id = ?", tenantID, boardID).
		Order("id").
		Limit(limit)

	if afterID != nil {
		query = query.Where("id > ?", *afterID)
	}

	var todos []model.Todo
	if err := query.Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *TodoRepository) UpdateScoped(ctx context.Context, tenantID, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Todo{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *TodoRepository) DeleteScoped(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&model.Todo{})
	return result.RowsAffected, result.Error
}
