package realtime

import "github.com/google/uuid"

// Distributor delivers mutation events to live connections. The in-memory
// Hub is the only implementation today; the interface exists so a shared
// pub/sub backend can replace it for multi-instance deployments without
// touching the services that emit.
//
// Emits never fail: an uninitialized distributor or an empty room is a
// no-op, because emission happens after the write already committed.
type Distributor interface {
	EmitToTenant(tenantID uuid.UUID, event string, payload interface{})
	EmitToBoard(tenantID, boardID uuid.UUID, event string, payload interface{})
}

// Event names pushed to clients
const (
	EventBoardCreated = "board.created"
	EventBoardUpdated = "board.updated"
	EventBoardDeleted = "board.deleted"
	EventTodoCreated  = "todo.created"
	EventTodoUpdated  = "todo.updated"
	EventTodoDeleted  = "todo.deleted"
)
