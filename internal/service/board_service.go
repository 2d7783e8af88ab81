package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"taskboard/internal/cache"
	"taskboard/internal/model"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BoardService owns board reads and writes for a tenant. Every method
// re-derives membership before touching the store, even though the guard
// middleware already ran, so direct internal calls get the same protection.
type BoardService struct {
	boards      repository.BoardRepositoryInterface
	memberships repository.MembershipRepositoryInterface
	cache       cache.Cache
	distributor realtime.Distributor
	logger      *zap.Logger
}

type BoardServiceInterface interface {
	List(ctx context.Context, userID, tenantID uuid.UUID, cursor string, limit int) (*BoardPage, error)
	Create(ctx context.Context, userID, tenantID uuid.UUID, name string) (*Board, error)
	Get(ctx context.Context, userID, tenantID, boardID uuid.UUID) (*Board, error)
	Update(ctx context.Context, userID, tenantID, boardID uuid.UUID, input UpdateBoardInput) (*Board, error)
	Delete(ctx context.Context, userID, tenantID, boardID uuid.UUID) error
}

var _ BoardServiceInterface = (*BoardService)(nil)

func NewBoardService(
	boards repository.BoardRepositoryInterface,
	memberships repository.MembershipRepositoryInterface,
	pageCache cache.Cache,
	distributor realtime.Distributor,
	logger *zap.Logger,
) *BoardService {
	return &BoardService{
		boards:      boards,
		memberships: memberships,
		cache:       pageCache,
		distributor: distributor,
		logger:      logger,
	}
}

// Board is the API shape of a board.
type Board struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BoardPage struct {
	Data []Board  `json:"data"`
	Meta PageMeta `json:"meta"`
}

type UpdateBoardInput struct {
	Name *string `json:"name"`
}

func (s *BoardService) requireMembership(ctx context.Context, userID, tenantID uuid.UUID) error {
	membership, err := s.memberships.Get(ctx, userID, tenantID)
	if err != nil {
		return err
	}
	if membership == nil {
		return ErrTenantAccessDenied
	}
	return nil
}

// List returns one page of the tenant's boards ordered by id. Only the
// first page (no cursor) is served from cache; later pages always hit the
// store so invalidation stays a single scope delete.
func (s *BoardService) List(ctx context.Context, userID, tenantID uuid.UUID, cursor string, limit int) (*BoardPage, error) {
	if err := s.requireMembership(ctx, userID, tenantID); err != nil {
		return nil, err
	}

	limit = normalizeLimit(limit)
	firstPage := cursor == ""
	key := cache.PageKey(cache.BoardScope(tenantID), limit)

	if firstPage {
		if payload, err := s.cache.GetPage(ctx, key); err != nil {
			s.logger.Warn("board page cache read failed", zap.Error(err))
		} else if payload != nil {
			var page BoardPage
			if err := json.Unmarshal(payload, &page); err == nil {
				return &page, nil
			}
			s.logger.Warn("discarding undecodable cached board page", zap.String("key", key))
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

	rows, err := s.boards.FindPage(ctx, tenantID, afterID, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	page := &BoardPage{
		Data: make([]Board, len(rows)),
		Meta: PageMeta{HasMore: hasMore},
	}
	for i, row := range rows {
		page.Data[i] = toBoard(&row)
	}
	if hasMore {
		page.Meta.NextCursor = rows[len(rows)-1].ID.String()
	}

	if firstPage {
		if payload, err := json.Marshal(page); err == nil {
			if err := s.cache.SetPage(ctx, key, payload); err != nil {
				s.logger.Warn("board page cache write failed", zap.Error(err))
			}
		}
	}

	return page, nil
}

func (s *BoardService) Create(ctx context.Context, userID, tenantID uuid.UUID, name string) (*Board, error) {
	if err := s.requireMembership(ctx, userID, tenantID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation
	}

	board := &model.Board{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     name,
	}
	if err := s.boards.InsertScoped(ctx, board); err != nil {
		return nil, err
	}

	s.invalidateAndEmit(ctx, tenantID, realtime.EventBoardCreated, map[string]interface{}{
		"id":   board.ID.String(),
		"name": board.Name,
	}, nil)

	result := toBoard(board)
	return &result, nil
}

func (s *BoardService) Get(ctx context.Context, userID, tenantID, boardID uuid.UUID) (*Board, error) {
	if err := s.requireMembership(ctx, userID, tenantID); err != nil {
		return nil, err
	}

	board, err := s.boards.FindScoped(ctx, tenantID, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, ErrNotFound
	}

	result := toBoard(board)
	return &result, nil
}

func (s *BoardService) Update(ctx context.Context, userID, tenantID, boardID uuid.UUID, input UpdateBoardInput) (*Board, error) {
	if err := s.requireMembership(ctx, userID, tenantID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	changed := map[string]interface{}{"id": boardID.String()}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrValidation
		}
		updates["name"] = name
		changed["name"] = name
	}
	if len(updates) == 0 {
		return nil, ErrValidation
	}

	rows, err := s.boards.UpdateScoped(ctx, tenantID, boardID, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	s.invalidateAndEmit(ctx, tenantID, realtime.EventBoardUpdated, changed, nil)

	board, err := s.boards.FindScoped(ctx, tenantID, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		// Deleted between the update and the read. Same answer as never there.
		return nil, ErrNotFound
	}

	result := toBoard(board)
	return &result, nil
}

func (s *BoardService) Delete(ctx context.Context, userID, tenantID, boardID uuid.UUID) error {
	if err := s.requireMembership(ctx, userID, tenantID); err != nil {
		return err
	}

	rows, err := s.boards.DeleteScoped(ctx, tenantID, boardID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.invalidateAndEmit(ctx, tenantID, realtime.EventBoardDeleted, map[string]interface{}{
		"id": boardID.String(),
	}, &boardID)

	return nil
}

// invalidateAndEmit runs the post-mutation sequence: drop the cached first
// page, then broadcast. The order matters — a client reacting to the event
// and re-listing immediately must not see the stale page. Both steps are
// best-effort; the write already committed and is never rolled back here.
func (s *BoardService) invalidateAndEmit(ctx context.Context, tenantID uuid.UUID, event string, payload map[string]interface{}, deletedBoardID *uuid.UUID) {
	if err := s.cache.InvalidateScope(ctx, cache.BoardScope(tenantID)); err != nil {
		s.logger.Warn("board page cache invalidation failed",
			zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
	if deletedBoardID != nil {
		if err := s.cache.InvalidateScope(ctx, cache.TodoScope(tenantID, *deletedBoardID)); err != nil {
			s.logger.Warn("todo page cache invalidation failed",
				zap.String("board_id", deletedBoardID.String()), zap.Error(err))
		}
	}
	s.distributor.EmitToTenant(tenantID, event, payload)
}

func toBoard(board *model.Board) Board {
	return Board{
		ID:        board.ID.String(),
		Name:      board.Name,
		CreatedAt: board.CreatedAt,
		UpdatedAt: board.UpdatedAt,
	}
}
