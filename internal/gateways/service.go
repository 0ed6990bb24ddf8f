package gateways

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/priyamadhavan/gatekeeper-backend/internal/roster"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/db/models"
	pkgerrors "github.com/priyamadhavan/gatekeeper-backend/pkg/errors"
	"github.com/priyamadhavan/gatekeeper-backend/pkg/logger"
	"gorm.io/gorm"
)

type registryRepository interface {
	Create(ctx context.Context, gateway *models.Gateway) error
	FindByID(ctx context.Context, gatewayID string) (*models.Gateway, error)
	Exists(ctx context.Context, gatewayID string) (bool, error)
	List(ctx context.Context) ([]models.Gateway, error)
	ListActive(ctx context.Context) ([]models.Gateway, error)
	RecordSync(ctx context.Context, gatewayID string, now time.Time) error
	Deactivate(ctx context.Context, gatewayID string) error
}

// RegisterInput captures the fields required to register a checkpoint.
type RegisterInput struct {
	GatewayID   string
	GatewayName string
	Location    string
}

// StatsDTO is the cross-roster view for one gateway, keyed the way the
// consuming dashboard expects.
type StatsDTO struct {
	TotalMembers int                   `json:"totalMembers"`
	ScannedToday int                   `json:"scannedToday"`
	Members      []roster.MemberRecord `json:"members"`
}

// Service exposes gateway registry and aggregation operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Gateway, error)
	List(ctx context.Context, activeOnly bool) ([]models.Gateway, error)
	Get(ctx context.Context, gatewayID string) (*models.Gateway, error)
	Exists(ctx context.Context, gatewayID string) (bool, error)
	RecordSync(ctx context.Context, gatewayID string, now time.Time) (*models.Gateway, error)
	Deactivate(ctx context.Context, gatewayID string) (*models.Gateway, error)
	Stats(ctx context.Context, gatewayID string, now time.Time) (*StatsDTO, error)
}

type service struct {
	repo  registryRepository
	store roster.Store
	logg  *logger.Logger
}

// NewService builds the gateway registry service.
func NewService(repo registryRepository, store roster.Store, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("gateway repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("roster store required")
	}
	return &service{repo: repo, store: store, logg: logg}, nil
}

// Register creates a gateway. Gateway ids are immutable and case-sensitive
// unique; a duplicate registration is a conflict, not a failure.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Gateway, error) {
	id := strings.TrimSpace(input.GatewayID)
	name := strings.TrimSpace(input.GatewayName)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway id is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway name is required")
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check gateway id")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "gateway id already registered")
	}

	gateway := &models.Gateway{
		GatewayID:   id,
		GatewayName: name,
		Location:    strings.TrimSpace(input.Location),
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, gateway); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "gateway id already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithGatewayID(ctx, id), "gateway.registered")
	}
	return gateway, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Gateway, error) {
	var (
		gateways []models.Gateway
		err      error
	)
	if activeOnly {
		gateways, err = s.repo.ListActive(ctx)
	} else {
		gateways, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gateways")
	}
	return gateways, nil
}

func (s *service) Get(ctx context.Context, gatewayID string) (*models.Gateway, error) {
	gateway, err := s.repo.FindByID(ctx, gatewayID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gateway not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gateway")
	}
	return gateway, nil
}

func (s *service) Exists(ctx context.Context, gatewayID string) (bool, error) {
	return s.repo.Exists(ctx, gatewayID)
}

// RecordSync stamps the gateway's heartbeat and returns the updated row.
func (s *service) RecordSync(ctx context.Context, gatewayID string, now time.Time) (*models.Gateway, error) {
	if _, err := s.Get(ctx, gatewayID); err != nil {
		return nil, err
	}
	if err := s.repo.RecordSync(ctx, gatewayID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record gateway sync")
	}
	return s.Get(ctx, gatewayID)
}

// Deactivate retires a checkpoint without deleting its registration or its
// roster history.
func (s *service) Deactivate(ctx context.Context, gatewayID string) (*models.Gateway, error) {
	if _, err := s.Get(ctx, gatewayID); err != nil {
		return nil, err
	}
	if err := s.repo.Deactivate(ctx, gatewayID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate gateway")
	}
	return s.Get(ctx, gatewayID)
}

// Stats recomputes the gateway's aggregate view from its roster, using the
// same UTC calendar-date rule as scan authorization.
func (s *service) Stats(ctx context.Context, gatewayID string, now time.Time) (*StatsDTO, error) {
	if _, err := s.Get(ctx, gatewayID); err != nil {
		return nil, err
	}

	table, err := s.store.Load(ctx, gatewayID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load roster")
	}

	members := table.Records
	if members == nil {
		members = []roster.MemberRecord{}
	}
	return &StatsDTO{
		TotalMembers: len(table.Records),
		ScannedToday: table.CountScannedOn(roster.UTCDate(now)),
		Members:      members,
	}, nil
}
