package service_test

import (
	"context"
	"testing"

	"taskboard/internal/cache"
	"taskboard/internal/model"
	"taskboard/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newTodoService(todos *MockTodoRepository, boards *MockBoardRepository, memberships *MockMembershipRepository, pageCache *MockCache, distributor *MockDistributor) *service.TodoService {
	return service.NewTodoService(todos, boards, memberships, pageCache, distributor, zap.NewNop())
}

func TestTodoService_Create_MissingBoard(t *testing.T) {
	// Arrange: the parent board is absent from the tenant, so nothing is
	// written and the caller sees a plain not found
	userID := uuid.New()
	tenantID := uuid.New()
	boardID := uuid.New()

	mockTodos := new(MockTodoRepository)
	mockBoards := new(MockBoardRepository)
	mockMemberships := new(MockMembershipRepository)
	mockCache := new(MockCache)
	mockDistributor := new(MockDistributor)
	mockMemberships.On("Get", mock.Anything, userID, tenantID).Return(memberOf(userID, tenantID), nil)
	mockBoards.On("FindScoped", mock.Anything, tenantID, boardID).Return(nil, nil)

	svc := newTodoService(mockTodos, mockBoards, mockMemberships, mockCache, mockDistributor)

	// Act
	todo, err := svc.Create(context.Background(), userID, tenantID, boardID, service.CreateTodoInput{Title: "Write docs"})

	// Assert
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Nil(t, todo)
	mockTodos.AssertNotCalled(t, "InsertScoped", mock.Anything, mock.Anything)
}

func TestTodoService_Create_ForeignAssignee(t *testing.T) {
	// Arrange: the assignee has no membership in the tenant
	userID := uuid.New()
	tenantID := uuid.New()
	boardID := uuid.New()
	assigneeID := uuid.New()

	mockTodos := new(MockTodoRepository)
	mockBoards := new(MockBoardRepository)
	mockMemberships := new(MockMembershipRepository)
	mockCache := new(MockCache)
	mockDistributor := new(MockDistributor)
	mockMemberships.On("Get", mock.Anything, userID, tenantID).Return(memberOf(userID, tenantID), nil)
	mockMemberships.On("Get", mock.Anything, assigneeID, tenantID).Return(nil, nil)
	mockBoards.On("FindScoped", mock.Anything, tenantID, boardID).
		Return(&model.Board{ID: boardID, TenantID: tenantID, Name: "Launch"}, nil)

	svc := newTodoService(mockTodos, mockBoards, mockMemberships, mockCache, mockDistributor)

	// Act
	todo, err := svc.Create(context.Background(), userID, tenantID, boardID, service.CreateTodoInput{
		Title:      "Write docs",
		AssigneeID: &assigneeID,
	})

	// Assert
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Nil(t, todo)
	mockTodos.AssertNotCalled(t, "InsertScoped", mock.Anything, mock.Anything)
}

func TestTodoService_Create_EmitsToBoardRoom(t *testing.T) {
	// Arrange: the event targets the board room and carries the board id so
	// subscribers can tell which list changed
	userID := uuid.New()
	tenantID := uuid.New()
	boardID := uuid.New()

	var order []string
	mockTodos := new(MockTodoRepository)
	mockBoards := new(MockBoardRepository)
	mockMemberships := new(MockMembershipRepository)
	mockCache := new(MockCache)
	mockDistributor := new(MockDistributor)
	mockMemberships.On("Get", mock.Anything, userID, tenantID).Return(memberOf(userID, tenantID), nil)
	mockBoards.On("FindScoped", mock.Anything, tenantID, boardID).
		Return(&model.Board{ID: boardID, TenantID: tenantID, Name: "Launch"}, nil)
	mockTodos.On("InsertScoped", mock.Anything, mock.Anything).Return(nil)
	mockCache.On("InvalidateScope", mock.Anything, cache.TodoScope(tenantID, boardID)).
		Run(func(args mock.Arguments) { order = append(order, "invalidate") }).
		Return(nil)
	mockDistributor.On("EmitToBoard", tenantID, boardID, "todo.created", mock.MatchedBy(func(payload interface{}) bool {
		fields, ok := payload.(map[string]interface{})
		return ok && fields["board_id"] == boardID.String()
	})).
		Run(func(args mock.Arguments) { order = append(order, "emit") }).
		Return()

	svc := newTodoService(mockTodos, mockBoards, mockMemberships, mockCache, mockDistributor)

	// Act
	todo, err := svc.Create(context.Background(), userID, tenantID, boardID, service.CreateTodoInput{Title: "Write docs"})

	// Assert: defaulted status, cache dropped before the broadcast
	assert.NoError(t, err)
	assert.Equal(t, model.StatusTodo, todo.Status)
	assert.Equal(t, []string{"invalidate", "emit"}, order)
	mockDistributor.AssertExpectations(t)
}

func TestTodoService_Create_InvalidStatus(t *testing.T) {
	// Arrange
	userID := uuid.New()
	tenantID := uuid.New()
	boardID := uuid.New()

	mockTodos := new(MockTodoRepository)
	mockBoards := new(MockBoardRepository)
	mockMemberships := new(MockMembershipRepository)
	mockCache := new(MockCache)
	mockDistributor := new(MockDistributor)
	mockMemberships.On("Get", mock.Anything, userID, tenantID).Return(memberOf(userID, tenantID), nil)

	svc := newTodoService(mockTodos, mockBoards, mockMemberships, mockCache, mockDistributor)

	// Act
	todo, err := svc.Create(context.Background(), userID, tenantID, boardID, service.CreateTodoInput{
		Title:  "Write docs",
		Status: "BLOCKED",
	})

	// Assert
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Nil(t, todo)
	mockBoards.AssertNotCalled(t, "FindScoped", mock.Anything, mock.Anything, mock.Anything)
}

func TestTodoService_List_DeniesNonMember(t *testing.T) {
	// Arrange
	userID := uuid.New()
	tenantID := uuid.New()
	boardID := uuid.New()

	mockTodos := new(MockTodoRepository)
	mockBoards := new(MockBoardRepository)
	mockMemberships := new(MockMembershipRepository)
	mockCache := new(MockCache)
	mockDistributor := new(MockDistributor)
	mockMemberships.On("Get", mock.Anything, userID, tenantID).Return(nil, nil)

	svc := newTodoService(mockTodos, mockBoards, mockMemberships, mockCache, mockDistributor)

	// Act
	page, err := svc.List(context.Background(), userID, tenantID, boardID, "", 20)

	// Assert
	assert.ErrorIs(t, err, service.ErrTenantAccessDenied)
	assert.Nil(t, page)
	mockTodos.AssertNotCalled(t, "FindPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTodoService_List_Paginates(t *testing.T) {
	// Arrange
	userID := uuid.New()
	tenantID := uuid.New()
	boardID := uuid.New()

	rows := make([]model.Todo, 3)
	for i := range rows {
		rows[i] = model.Todo{ID: uuid.New(), TenantID: tenantID, BoardID: boardID, Title: "Todo", Status: model.StatusTodo}
	}

	mockTodos := new(MockTodoRepository)
	mockBoards := new(MockBoardRepository)
	mockMemberships := new(MockMembershipRepository)
	mockCache := new(MockCache)
	mockDistributor := new(MockDistributor)
	mockMemberships.On("Get", mock.Anything, userID, tenantID).Return(memberOf(userID, tenantID), nil)
	mockBoards.On("FindScoped", mock.Anything, tenantID, boardID).
		Return(&model.Board{ID: boardID, TenantID: tenantID, Name: "Launch"}, nil)
	mockCache.On("GetPage", mock.Anything, mock.Anything).Return(nil, nil)
	mockCache.On("SetPage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockTodos.On("FindPage", mock.Anything, tenantID, boardID, (*uuid.UUID)(nil), 3).Return(rows, nil)

	svc := newTodoService(mockTodos, mockBoards, mockMemberships, mockCache, mockDistributor)

	// Act
	page, err := svc.List(context.Background(), userID, tenantID, boardID, "", 2)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.True(t, page.Meta.HasMore)
	assert.Equal(t, rows[1].ID.String(), page.Meta.NextCursor)
}

func TestTodoService_Update_MissingTodo(t *testing.T) {
	// Arrange
	userID := uuid.New()
	tenantID := uuid.New()
	todoID := uuid.New()
	status := model.StatusDone

	mockTodos := new(MockTodoRepository)
	mockBoards := new(MockBoardRepository)
	mockMemberships := new(MockMembershipRepository)
	mockCache := new(MockCache)
	mockDistributor := new(MockDistributor)
	mockMemberships.On("Get", mock.Anything, userID, tenantID).Return(memberOf(userID, tenantID), nil)
	mockTodos.On("UpdateScoped", mock.Anything, tenantID, todoID, mock.Anything).Return(int64(0), nil)

	svc := newTodoService(mockTodos, mockBoards, mockMemberships, mockCache, mockDistributor)

	// Act
	todo, err := svc.Update(context.Background(), userID, tenantID, todoID, service.UpdateTodoInput{Status: &status})

	// Assert
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Nil(t, todo)
	mockDistributor.AssertNotCalled(t, "EmitToBoard", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTodoService_Delete_ReadsBoardForRoom(t *testing.T) {
	// Arrange: the todo is read before deletion to recover its board id for
	// the room name and the cache scope
	userID := uuid.New()
	tenantID := uuid.New()
	boardID := uuid.New()
	todoID := uuid.New()

	mockTodos := new(MockTodoRepository)
	mockBoards := new(MockBoardRepository)
	mockMemberships := new(MockMembershipRepository)
	mockCache := new(MockCache)
	mockDistributor := new(MockDistributor)
	mockMemberships.On("Get", mock.Anything, userID, tenantID).Return(memberOf(userID, tenantID), nil)
	mockTodos.On("FindScoped", mock.Anything, tenantID, todoID).
		Return(&model.Todo{ID: todoID, TenantID: tenantID, BoardID: boardID, Title: "Todo", Status: model.StatusTodo}, nil)
	mockTodos.On("DeleteScoped", mock.Anything, tenantID, todoID).Return(int64(1), nil)
	mockCache.On("InvalidateScope", mock.Anything, cache.TodoScope(tenantID, boardID)).Return(nil)
	mockDistributor.On("EmitToBoard", tenantID, boardID, "todo.deleted", mock.Anything).Return()

	svc := newTodoService(mockTodos, mockBoards, mockMemberships, mockCache, mockDistributor)

	// Act
	err := svc.Delete(context.Background(), userID, tenantID, todoID)

	// Assert
	assert.NoError(t, err)
	mockCache.AssertExpectations(t)
	mockDistributor.AssertExpectations(t)
}

func TestTodoService_Get_WrongTenantLooksMissing(t *testing.T) {
	// Arrange
	userID := uuid.New()
	tenantID := uuid.New()
	todoID := uuid.New()

	mockTodos := new(MockTodoRepository)
	mockBoards := new(MockBoardRepository)
	mockMemberships := new(MockMembershipRepository)
	mockCache := new(MockCache)
	mockDistributor := new(MockDistributor)
	mockMemberships.On("Get", mock.Anything, userID, tenantID).Return(memberOf(userID, tenantID), nil)
	mockTodos.On("FindScoped", mock.Anything, tenantID, todoID).Return(nil, nil)

	svc := newTodoService(mockTodos, mockBoards, mockMemberships, mockCache, mockDistributor)

	// Act
	todo, err := svc.Get(context.Background(), userID, tenantID, todoID)

	// Assert
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Nil(t, todo)
}
