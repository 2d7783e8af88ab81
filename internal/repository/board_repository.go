package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

// BoardRepositoryInterface is the persistence contract for boards. Every
// method takes the tenant id as an explicit parameter; there is no way to
// resolve a board by its own id alone.
type BoardRepositoryInterface interface {
	InsertScoped(ctx context.Context, board *model.Board) error
	FindScoped(ctx context.Context, tenantID, id uuid.UUID) (*model.Board, error)
	FindPage(ctx context.Context, tenantID uuid.UUID, afterID *uuid.UUID, limit int) ([]model.Board, error)
	UpdateScoped(ctx context.Context, tenantID, id uuid.UUID, updates map[string]interface{}) (int64, error)
	DeleteScoped(ctx context.Context, tenantID, id uuid.UUID) (int64, error)
}

var _ BoardRepositoryInterface = (*BoardRepository)(nil)

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) InsertScoped(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

func (r *BoardRepository) FindScoped(ctx context.Context, tenantID, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&board).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

// FindPage returns up to limit boards of the tenant ordered by id ascending,
// starting after afterID when a cursor is supplied. The caller passes
// limit+1 to detect whether another page follows.
func (r *BoardRepository) FindPage(ctx context.Context, tenantID uuid.UUID, afterID *uuid.UUID, limit int) ([]model.Board, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id").
		Limit(limit)

	if afterID != nil {
		query = query.Where("id > ?", *afterID)
	}

	var boards []model.Board
	if err := query.Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// UpdateScoped applies updates to the board matching both id and tenant and
// reports how many rows matched. Zero rows means the board does not exist or
// belongs to another tenant; the two cases are indistinguishable on purpose.
func (r *BoardRepository) UpdateScoped(ctx context.Context, tenantID, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Board{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *BoardRepository) DeleteScoped(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&model.Board{})
	return result.RowsAffected, result.Error
}
