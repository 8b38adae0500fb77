package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mofad-hr/leave-portal/internal/domain/audit"
)

// Service writes and queries the approval history trail.
type Service struct {
	repo    audit.Repository
	signKey []byte
	logger  zerolog.Logger
}

// NewService creates an audit service. When signKey is non-empty every
// entry is HMAC-signed before it is stored.
func NewService(repo audit.Repository, logger zerolog.Logger, signKey []byte) *Service {
	return &Service{
		repo:    repo,
		signKey: signKey,
		logger:  logger.With().Str("service", "audit").Logger(),
	}
}

// Record appends a history entry asynchronously. Failures are logged but
// never block the approval path.
func (s *Service) Record(ctx context.Context, entry *audit.Entry) {
	go func() {
		if err := s.RecordSync(context.Background(), entry); err != nil {
			s.logger.Error().Err(err).
				Str("requestId", entry.RequestID.String()).
				Str("action", string(entry.Action)).
				Msg("failed to append history entry")
		}
	}()
}

// RecordSync appends a history entry synchronously.
func (s *Service) RecordSync(ctx context.Context, entry *audit.Entry) error {
	if entry.PerformedAt.IsZero() {
		entry.PerformedAt = time.Now().UTC()
	}
	if len(s.signKey) > 0 {
		sig, err := audit.SignEntry(entry, s.signKey)
		if err != nil {
			return fmt.Errorf("failed to sign history entry: %w", err)
		}
		entry.Signature = sig
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	s.logger.Debug().
		Str("entryId", entry.EntryID.String()).
		Str("requestId", entry.RequestID.String()).
		Str("action", string(entry.Action)).
		Str("performedBy", entry.PerformedBy).
		Msg("history entry recorded")
	return nil
}

// History returns the trail for one leave request, oldest first.
func (s *Service) History(ctx context.Context, requestID uuid.UUID) ([]*audit.Entry, error) {
	return s.repo.ListByRequest(ctx, requestID)
}

// Query lists history entries matching the filter.
func (s *Service) Query(ctx context.Context, filter audit.Filter, limit, offset int) ([]*audit.Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// Verify re-checks an entry's signature against the service key.
func (s *Service) Verify(entry *audit.Entry) (bool, error) {
	if len(s.signKey) == 0 {
		return false, nil
	}
	return audit.VerifyEntrySignature(entry, s.signKey)
}
