package constants

const (
	// UnassignedUserName is the assignedUserName of a task without an assignee.
	UnassignedUserName = "unassigned"

	// DefaultTaskListLimit caps task listings that do not specify a limit.
	DefaultTaskListLimit = 100

	// ContextKeyRequestID holds the request id in the gin context.
	ContextKeyRequestID = "request_id"

	// HeaderRequestID is echoed on every response.
	HeaderRequestID = "X-Request-Id"
)
