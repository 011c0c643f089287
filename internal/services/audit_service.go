package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ecoles/schoolmanager/internal/models"
)

// Audit results.
const (
	AuditResultSuccess = "success"
	AuditResultFailure = "failure"
)

// AuditEntry captures a single audit event to persist.
type AuditEntry struct {
	ActorID   *string
	Username  string
	Action    string
	Resource  string
	Result    string
	IPAddress string
	Metadata  map[string]any
}

// AuditFilters encapsulates optional filters when querying audit logs.
type AuditFilters struct {
	ActorID  string
	Action   string
	Resource string
	Result   string
	Since    *time.Time
}

// AuditActionSummary counts outcomes of one action.
type AuditActionSummary struct {
	Action   string `json:"action"`
	Success  int64  `json:"success"`
	Failure  int64  `json:"failure"`
	LastSeen string `json:"last_seen"`
}

// AuditService persists and retrieves audit log entries.
type AuditService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAuditService constructs an AuditService using the provided database handle.
func NewAuditService(db *gorm.DB) (*AuditService, error) {
	if db == nil {
		return nil, errors.New("audit service: db is required")
	}
	return &AuditService{db: db, now: time.Now}, nil
}

// Log stores an audit entry, marshalling metadata into JSON form.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(entry.Action) == "" {
		return errors.New("audit service: action is required")
	}
	if strings.TrimSpace(entry.Result) == "" {
		return errors.New("audit service: result is required")
	}

	var payload datatypes.JSON
	if entry.Metadata != nil {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("audit service: marshal metadata: %w", err)
		}
		payload = datatypes.JSON(encoded)
	}

	log := models.AuditLog{
		Action:    strings.TrimSpace(entry.Action),
		Resource:  strings.TrimSpace(entry.Resource),
		Result:    strings.TrimSpace(entry.Result),
		Username:  strings.TrimSpace(entry.Username),
		IPAddress: strings.TrimSpace(entry.IPAddress),
		Metadata:  payload,
	}
	if entry.ActorID != nil && strings.TrimSpace(*entry.ActorID) != "" {
		id := strings.TrimSpace(*entry.ActorID)
		log.ActorID = &id
	}

	return s.db.WithContext(ctx).Create(&log).Error
}

// List returns audit logs matching filters, newest first. A non-positive limit defaults to 50.
func (s *AuditService) List(ctx context.Context, filters AuditFilters, limit int) ([]models.AuditLog, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filters.ActorID != "" {
		query = query.Where("actor_id = ?", filters.ActorID)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if filters.Resource != "" {
		query = query.Where("resource = ?", filters.Resource)
	}
	if filters.Result != "" {
		query = query.Where("result = ?", filters.Result)
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}

	var logs []models.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("audit service: list logs: %w", err)
	}
	return logs, nil
}

// CleanupOlderThan removes audit logs older than the supplied retention window (in days).
func (s *AuditService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("audit service: retentionDays must be positive")
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("audit service: cleanup logs: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// Summary aggregates entries created since the given time per action, busiest first.
func (s *AuditService) Summary(ctx context.Context, since time.Time) ([]AuditActionSummary, error) {
	ctx = ensureContext(ctx)

	type row struct {
		Action   string
		Result   string
		Total    int64
		LastSeen string
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Select("action, result, COUNT(*) AS total, MAX(created_at) AS last_seen").
		Where("created_at >= ?", since).
		Group("action, result").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("audit service: summarise logs: %w", err)
	}

	byAction := make(map[string]*AuditActionSummary)
	for _, r := range rows {
		summary, ok := byAction[r.Action]
		if !ok {
			summary = &AuditActionSummary{Action: r.Action}
			byAction[r.Action] = summary
		}
		switch r.Result {
		case AuditResultSuccess:
			summary.Success += r.Total
		default:
			summary.Failure += r.Total
		}
		if r.LastSeen > summary.LastSeen {
			summary.LastSeen = r.LastSeen
		}
	}

	out := make([]AuditActionSummary, 0, len(byAction))
	for _, summary := range byAction {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].Success+out[i].Failure, out[j].Success+out[j].Failure
		if ti != tj {
			return ti > tj
		}
		return out[i].Action < out[j].Action
	})
	return out, nil
}
