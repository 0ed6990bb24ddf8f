package uploads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/priyamadhavan/gatekeeper-backend/internal/roster"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/config"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/db/models"
	dbtypes "github.com/priyamadhavan/gatekeeper-backend/pkg/db/types"
	pkgerrors "github.com/priyamadhavan/gatekeeper-backend/pkg/errors"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/logger"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/metrics"
)

// MergeResult summarizes one bulk merge. Row failures are data, not an error:
// the batch completes and reports them.
type MergeResult struct {
	BatchID           string   `json:"batch_id"`
	TotalRecords      int      `json:"total_records"`
	SuccessfulRecords int      `json:"successful_records"`
	FailedRecords     int      `json:"failed_records"`
	Errors            []string `json:"errors"`
}

type ledgerRepository interface {
	Append(ctx context.Context, batch *models.UploadBatch) error
	ListByGateway(ctx context.Context, gatewayID string) ([]models.UploadBatch, error)
}

type gatewayRegistry interface {
	Exists(ctx context.Context, gatewayID string) (bool, error)
	RecordSync(ctx context.Context, gatewayID string, now time.Time) error
}

// Service reconciles uploaded roster snapshots into the durable roster and
// keeps the upload history ledger.
type Service interface {
	Merge(ctx context.Context, gatewayID string, snapshot roster.Snapshot, fileName string, now time.Time) (*MergeResult, error)
	History(ctx context.Context, gatewayID string) ([]models.UploadBatch, error)
}

type service struct {
	store    roster.Store
	locks    *roster.GatewayLocks
	ledger   ledgerRepository
	gateways gatewayRegistry
	cfg      config.MergeConfig
	logg     *logger.Logger
	metrics  *metrics.LedgerMetrics
}

// NewService builds the bulk merge engine.
func NewService(store roster.Store, locks *roster.GatewayLocks, ledger ledgerRepository, gateways gatewayRegistry, cfg config.MergeConfig, logg *logger.Logger, m *metrics.LedgerMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("roster store required")
	}
	if locks == nil {
		return nil, fmt.Errorf("gateway locks required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if gateways == nil {
		return nil, fmt.Errorf("gateway registry required")
	}
	return &service{
		store:    store,
		locks:    locks,
		ledger:   ledger,
		gateways: gateways,
		cfg:      cfg,
		logg:     logg,
		metrics:  m,
	}, nil
}

// Merge applies the snapshot row by row. Members already in the roster keep
// their scan history (last scanned timestamp and count) while their identity
// fields are refreshed; unknown QR ids become fresh records. Members absent
// from the snapshot are retained unless replace semantics are configured.
// The merged table is written once at the end, so a persistence failure
// leaves the previous table untouched.
func (s *service) Merge(ctx context.Context, gatewayID string, snapshot roster.Snapshot, fileName string, now time.Time) (*MergeResult, error) {
	exists, err := s.gateways.Exists(ctx, gatewayID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check gateway")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gateway not found")
	}

	if len(snapshot.Rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty snapshot")
	}
	if missing := snapshot.MissingRequiredColumns(); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required columns").
			WithDetails(map[string]any{"missing": missing})
	}

	release := s.locks.Acquire(gatewayID)
	defer release()

	current, err := s.store.Load(ctx, gatewayID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load roster")
	}

	merged, result := s.apply(current, snapshot, now)
	result.BatchID = newBatchID(now)

	if err := s.store.Save(ctx, gatewayID, merged); err != nil {
		s.metrics.ObserveMerge(gatewayID, "failed", 0)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist merged roster")
	}

	batch := &models.UploadBatch{
		BatchID:           result.BatchID,
		GatewayID:         gatewayID,
		FileName:          fileName,
		UploadDate:        now.UTC(),
		TotalRecords:      result.TotalRecords,
		SuccessfulRecords: result.SuccessfulRecords,
		FailedRecords:     result.FailedRecords,
		Errors:            dbtypes.StringSlice(result.Errors),
	}
	if err := s.ledger.Append(ctx, batch); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record upload batch")
	}

	if err := s.gateways.RecordSync(ctx, gatewayID, now); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithGatewayID(ctx, gatewayID), "failed to refresh gateway sync timestamp")
	}

	s.metrics.ObserveMerge(gatewayID, "completed", result.FailedRecords)
	s.metrics.SetRosterSize(gatewayID, len(merged.Records))
	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"batch_id": result.BatchID,
			"total":    result.TotalRecords,
			"failed":   result.FailedRecords,
		})
		s.logg.Info(lctx, "merge.completed")
	}

	return result, nil
}

// apply builds the merged table without touching storage. Every snapshot row
// is processed independently; rows without a usable QR id are collected as
// error strings and never abort the batch.
func (s *service) apply(current roster.Table, snapshot roster.Snapshot, now time.Time) (roster.Table, *MergeResult) {
	result := &MergeResult{TotalRecords: len(snapshot.Rows)}

	merged := roster.Table{ExtraColumns: current.ExtraColumns}
	for _, col := range snapshot.Columns {
		merged.AddExtraColumn(col)
	}

	existingByQR := map[string]roster.MemberRecord{}
	existingOrder := []string{}
	for _, rec := range current.Records {
		key := strings.TrimSpace(rec.QRID)
		if _, ok := existingByQR[key]; !ok {
			existingOrder = append(existingOrder, key)
		}
		existingByQR[key] = rec
	}

	mergedIndex := map[string]int{}
	uploadDate := now

	for i, row := range snapshot.Rows {
		qr := strings.TrimSpace(row[roster.ColQRID])
		if qr == "" {
			result.FailedRecords++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing %s", i+1, roster.ColQRID))
			continue
		}

		incoming := roster.RecordFromRow(row)
		incoming.UploadDate = &uploadDate

		if idx, ok := mergedIndex[qr]; ok {
			// Duplicate QR id inside one snapshot: the later row wins the
			// identity fields but history stays whatever the first merge
			// decision produced.
			kept := merged.Records[idx]
			incoming.LastScannedAt = kept.LastScannedAt
			incoming.ScanCount = kept.ScanCount
			merged.Records[idx] = incoming
			result.SuccessfulRecords++
			continue
		}

		if prior, ok := existingByQR[qr]; ok {
			incoming.LastScannedAt = prior.LastScannedAt
			incoming.ScanCount = prior.ScanCount
		} else {
			incoming.LastScannedAt = nil
			incoming.ScanCount = 0
		}

		mergedIndex[qr] = len(merged.Records)
		merged.Records = append(merged.Records, incoming)
		result.SuccessfulRecords++
	}

	if !s.cfg.DropMissing {
		for _, key := range existingOrder {
			if _, ok := mergedIndex[key]; ok {
				continue
			}
			merged.Records = append(merged.Records, existingByQR[key].Clone())
		}
	}

	return merged, result
}

// History returns the gateway's batches newest first.
func (s *service) History(ctx context.Context, gatewayID string) ([]models.UploadBatch, error) {
	exists, err := s.gateways.Exists(ctx, gatewayID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check gateway")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gateway not found")
	}

	batches, err := s.ledger.ListByGateway(ctx, gatewayID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list upload batches")
	}
	return batches, nil
}

func newBatchID(now time.Time) string {
	return fmt.Sprintf("BATCH-%s-%s", now.UTC().Format("20060102150405"), uuid.NewString()[:8])
}
