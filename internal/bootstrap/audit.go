package bootstrap

import "context"

// AuditLog is one security relevant event: server lifecycle, refused
// decisions, admin triggered runs.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
