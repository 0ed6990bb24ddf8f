package scans

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/priyamadhavan/gatekeeper-backend/internal/roster"
	pkgerrors "github.com/priyamadhavan/gatekeeper-backend/pkg/errors"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/logger"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/metrics"
)

// Status is the outcome of one scan authorization.
type Status string

const (
	StatusAccepted       Status = "accepted"
	StatusAlreadyScanned Status = "already_scanned"
)

// Result carries the authorization outcome. For an accepted scan Member is
// the mutated record after persistence; for a duplicate it is the matched
// record untouched.
type Result struct {
	Status           Status              `json:"status"`
	Member           roster.MemberRecord `json:"member"`
	GlobalCountToday int                 `json:"global_count_today"`
}

type gatewayChecker interface {
	Exists(ctx context.Context, gatewayID string) (bool, error)
}

// Service authorizes scan events against a gateway's roster.
type Service interface {
	Authorize(ctx context.Context, gatewayID, qrID string, now time.Time) (*Result, error)
}

type service struct {
	store    roster.Store
	locks    *roster.GatewayLocks
	gateways gatewayChecker
	logg     *logger.Logger
	metrics  *metrics.LedgerMetrics
}

// NewService builds the scan authorizer.
func NewService(store roster.Store, locks *roster.GatewayLocks, gateways gatewayChecker, logg *logger.Logger, m *metrics.LedgerMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("roster store required")
	}
	if locks == nil {
		return nil, fmt.Errorf("gateway locks required")
	}
	if gateways == nil {
		return nil, fmt.Errorf("gateway registry required")
	}
	return &service{
		store:    store,
		locks:    locks,
		gateways: gateways,
		logg:     logg,
		metrics:  m,
	}, nil
}

// Authorize runs the once-per-day authorization state machine: look up the
// member by trimmed QR id, reject a second scan on the same UTC calendar day
// without mutating the store, otherwise stamp the scan, bump the count and
// persist the whole table before reporting success.
func (s *service) Authorize(ctx context.Context, gatewayID, qrID string, now time.Time) (*Result, error) {
	qr := strings.TrimSpace(qrID)
	if qr == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qr id is required")
	}

	exists, err := s.gateways.Exists(ctx, gatewayID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check gateway")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gateway not found")
	}

	release := s.locks.Acquire(gatewayID)
	defer release()

	table, err := s.store.Load(ctx, gatewayID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load roster")
	}

	idx := table.FindByQRID(qr)
	if idx < 0 {
		s.observe(gatewayID, "not_found")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}

	today := roster.UTCDate(now)
	member := table.Records[idx]

	if member.ScannedOn(today) {
		s.observe(gatewayID, string(StatusAlreadyScanned))
		return &Result{Status: StatusAlreadyScanned, Member: member.Clone()}, nil
	}

	updated := member.Clone()
	ts := now
	updated.LastScannedAt = &ts
	updated.ScanCount++
	table.Records[idx] = updated

	if err := s.store.Save(ctx, gatewayID, table); err != nil {
		s.observe(gatewayID, "persist_error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist roster")
	}

	s.observe(gatewayID, string(StatusAccepted))
	s.metrics.SetRosterSize(gatewayID, len(table.Records))
	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{"qr_id": qr, "scan_count": updated.ScanCount})
		s.logg.Info(lctx, "scan.accepted")
	}

	return &Result{
		Status:           StatusAccepted,
		Member:           updated,
		GlobalCountToday: table.CountScannedOn(today),
	}, nil
}

func (s *service) observe(gatewayID, outcome string) {
	s.metrics.ObserveScan(gatewayID, outcome)
}
