package scans

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/priyamadhavan/gatekeeper-backend/internal/roster"
	pkgerrors "github.com/priyamadhavan/gatekeeper-backend/pkg/errors"
)

type fakeGateways struct {
	exists  bool
	failure error
}

func (f *fakeGateways) Exists(ctx context.Context, gatewayID string) (bool, error) {
	if f.failure != nil {
		return false, f.failure
	}
	return f.exists, nil
}

func newTestService(t *testing.T, store roster.Store, gateways *fakeGateways) Service {
	t.Helper()
	svc, err := NewService(store, roster.NewGatewayLocks(), gateways, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedRoster(t *testing.T, store roster.Store, gatewayID string, table roster.Table) {
	t.Helper()
	if err := store.Save(context.Background(), gatewayID, table); err != nil {
		t.Fatalf("seed roster: %v", err)
	}
}

func TestAuthorizeAcceptsFirstScanOfTheDay(t *testing.T) {
	store := roster.NewMemStore()
	seedRoster(t, store, "gw", roster.Table{Records: []roster.MemberRecord{
		{Name: "Anita Rao", QRID: "NW-001-000001", ScanCount: 2},
	}})
	svc := newTestService(t, store, &fakeGateways{exists: true})

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	result, err := svc.Authorize(context.Background(), "gw", "NW-001-000001", now)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if result.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %s", result.Status)
	}
	if result.Member.ScanCount != 3 {
		t.Fatalf("expected scan count 3, got %d", result.Member.ScanCount)
	}
	if result.Member.LastScannedAt == nil || !result.Member.LastScannedAt.Equal(now) {
		t.Fatalf("expected last scanned at %v, got %v", now, result.Member.LastScannedAt)
	}
	if result.GlobalCountToday != 1 {
		t.Fatalf("expected global count 1, got %d", result.GlobalCountToday)
	}

	// The mutation must be durable, not just in the response.
	table, err := store.Load(context.Background(), "gw")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Records[0].ScanCount != 3 {
		t.Fatalf("mutation not persisted: %+v", table.Records[0])
	}
}

func TestAuthorizeSecondScanSameDayIsRejectedWithoutMutation(t *testing.T) {
	store := roster.NewMemStore()
	scanned := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	seedRoster(t, store, "gw", roster.Table{Records: []roster.MemberRecord{
		{Name: "Anita Rao", QRID: "NW-001-000001", LastScannedAt: &scanned, ScanCount: 5},
	}})
	svc := newTestService(t, store, &fakeGateways{exists: true})

	later := time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC)
	result, err := svc.Authorize(context.Background(), "gw", "NW-001-000001", later)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if result.Status != StatusAlreadyScanned {
		t.Fatalf("expected already_scanned, got %s", result.Status)
	}
	if result.Member.ScanCount != 5 {
		t.Fatalf("duplicate must not bump count: %d", result.Member.ScanCount)
	}

	table, _ := store.Load(context.Background(), "gw")
	if table.Records[0].ScanCount != 5 || !table.Records[0].LastScannedAt.Equal(scanned) {
		t.Fatalf("duplicate scan mutated the store: %+v", table.Records[0])
	}
}

func TestAuthorizeNextDayIsAcceptedAgain(t *testing.T) {
	store := roster.NewMemStore()
	scanned := time.Date(2026, 8, 30, 23, 45, 0, 0, time.UTC)
	seedRoster(t, store, "gw", roster.Table{Records: []roster.MemberRecord{
		{QRID: "NW-001-000001", LastScannedAt: &scanned, ScanCount: 1},
	}})
	svc := newTestService(t, store, &fakeGateways{exists: true})

	// Fifteen minutes later, but across the UTC date boundary.
	nextDay := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	result, err := svc.Authorize(context.Background(), "gw", "NW-001-000001", nextDay)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if result.Status != StatusAccepted {
		t.Fatalf("expected accepted across day boundary, got %s", result.Status)
	}
	if result.Member.ScanCount != 2 {
		t.Fatalf("expected scan count 2, got %d", result.Member.ScanCount)
	}
}

func TestAuthorizeGlobalCountSpansConstituencies(t *testing.T) {
	store := roster.NewMemStore()
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	earlier := now.Add(-2 * time.Hour)
	seedRoster(t, store, "gw", roster.Table{Records: []roster.MemberRecord{
		{Name: "A", Constituency: "North West", QRID: "NW-001-000001", LastScannedAt: &earlier, ScanCount: 1},
		{Name: "B", Constituency: "South West", QRID: "SW-002-000002"},
	}})
	svc := newTestService(t, store, &fakeGateways{exists: true})

	result, err := svc.Authorize(context.Background(), "gw", "SW-002-000002", now)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if result.GlobalCountToday != 2 {
		t.Fatalf("expected global count 2 across constituencies, got %d", result.GlobalCountToday)
	}
}

func TestAuthorizeUnknownMember(t *testing.T) {
	store := roster.NewMemStore()
	seedRoster(t, store, "gw", roster.Table{Records: []roster.MemberRecord{{QRID: "A"}}})
	svc := newTestService(t, store, &fakeGateways{exists: true})

	_, err := svc.Authorize(context.Background(), "gw", "missing", time.Now().UTC())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAuthorizeUnknownGateway(t *testing.T) {
	svc := newTestService(t, roster.NewMemStore(), &fakeGateways{exists: false})

	_, err := svc.Authorize(context.Background(), "nope", "A", time.Now().UTC())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAuthorizeBlankQRID(t *testing.T) {
	svc := newTestService(t, roster.NewMemStore(), &fakeGateways{exists: true})

	_, err := svc.Authorize(context.Background(), "gw", "   ", time.Now().UTC())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthorizePersistenceFailureDoesNotAcceptScan(t *testing.T) {
	store := roster.NewMemStore()
	seedRoster(t, store, "gw", roster.Table{Records: []roster.MemberRecord{{QRID: "A", ScanCount: 1}}})
	store.FailSave = true
	svc := newTestService(t, store, &fakeGateways{exists: true})

	_, err := svc.Authorize(context.Background(), "gw", "A", time.Now().UTC())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}

	store.FailSave = false
	table, _ := store.Load(context.Background(), "gw")
	if table.Records[0].ScanCount != 1 {
		t.Fatalf("failed save must not change the table: %+v", table.Records[0])
	}
}

func TestAuthorizeGatewayCheckFailure(t *testing.T) {
	svc := newTestService(t, roster.NewMemStore(), &fakeGateways{failure: errors.New("registry down")})

	_, err := svc.Authorize(context.Background(), "gw", "A", time.Now().UTC())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestAuthorizeConcurrentDistinctMembersAllPersist(t *testing.T) {
	const members = 32
	store := roster.NewMemStore()
	records := make([]roster.MemberRecord, members)
	for i := range records {
		records[i] = roster.MemberRecord{
			Name: fmt.Sprintf("Member %02d", i),
			QRID: fmt.Sprintf("NW-001-%06d", i+1),
		}
	}
	seedRoster(t, store, "gw", roster.Table{Records: records})
	svc := newTestService(t, store, &fakeGateways{exists: true})

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	results := make([]*Result, members)
	errs := make([]error, members)
	var wg sync.WaitGroup
	for i := 0; i < members; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Authorize(context.Background(), "gw", fmt.Sprintf("NW-001-%06d", i+1), now)
		}(i)
	}
	wg.Wait()

	for i := 0; i < members; i++ {
		if errs[i] != nil {
			t.Fatalf("authorize %d: %v", i, errs[i])
		}
		if results[i].Status != StatusAccepted {
			t.Fatalf("authorize %d: expected accepted, got %s", i, results[i].Status)
		}
	}

	// Every accepted scan must survive in the saved table. A lost update
	// under concurrent load-mutate-save cycles would leave a record with
	// ScanCount 0.
	table, err := store.Load(context.Background(), "gw")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := table.CountScannedOn(roster.UTCDate(now)); got != members {
		t.Fatalf("expected %d scanned members, got %d", members, got)
	}
	for _, rec := range table.Records {
		if rec.ScanCount != 1 {
			t.Fatalf("lost update for %s: %+v", rec.QRID, rec)
		}
	}
}

func TestAuthorizeConcurrentSameMemberAcceptsExactlyOnce(t *testing.T) {
	const attempts = 16
	store := roster.NewMemStore()
	seedRoster(t, store, "gw", roster.Table{Records: []roster.MemberRecord{
		{Name: "Anita Rao", QRID: "NW-001-000001"},
	}})
	svc := newTestService(t, store, &fakeGateways{exists: true})

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	results := make([]*Result, attempts)
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Authorize(context.Background(), "gw", "NW-001-000001", now)
		}(i)
	}
	wg.Wait()

	accepted, repeated := 0, 0
	for i := 0; i < attempts; i++ {
		if errs[i] != nil {
			t.Fatalf("authorize %d: %v", i, errs[i])
		}
		switch results[i].Status {
		case StatusAccepted:
			accepted++
		case StatusAlreadyScanned:
			repeated++
		default:
			t.Fatalf("authorize %d: unexpected status %s", i, results[i].Status)
		}
	}
	if accepted != 1 || repeated != attempts-1 {
		t.Fatalf("expected 1 accepted and %d already_scanned, got %d and %d", attempts-1, accepted, repeated)
	}

	table, _ := store.Load(context.Background(), "gw")
	if table.Records[0].ScanCount != 1 {
		t.Fatalf("expected scan count 1, got %d", table.Records[0].ScanCount)
	}
}
