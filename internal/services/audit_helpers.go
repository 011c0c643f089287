package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ecoles/schoolmanager/internal/auditctx"
	"github.com/ecoles/schoolmanager/pkg/logger"
)

// recordAudit logs the supplied entry while tolerating audit failures. Actor details missing
// from the entry are taken from the request context.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	if actor, ok := auditctx.FromContext(ctx); ok {
		if entry.ActorID == nil && actor.UserID != "" {
			id := actor.UserID
			entry.ActorID = &id
		}
		if entry.Username == "" {
			entry.Username = actor.Username
		}
		if entry.IPAddress == "" {
			entry.IPAddress = actor.IPAddress
		}
	}
	if err := audit.Log(ctx, entry); err != nil {
		logger.FromContext(ctx).With(zap.String("module", "audit")).Warn("audit write failed", zap.String("action", entry.Action), zap.Error(err))
	}
}

func auditResult(err error) string {
	if err != nil {
		return AuditResultFailure
	}
	return AuditResultSuccess
}
