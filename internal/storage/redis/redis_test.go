package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goodtune/equtil/internal/config"
	"github.com/goodtune/equtil/internal/equipment"
	"github.com/goodtune/equtil/internal/storage"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	// miniredis.Addr() returns "host:port", so Port stays zero
	cfg := config.RedisConfig{
		Host:         mr.Addr(),
		Port:         0,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  "5s",
		ReadTimeout:  "3s",
		WriteTimeout: "3s",
	}

	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open Redis store: %v", err)
	}

	return store, mr
}

func testSession(name string, category equipment.Category, start time.Time, minutes int) storage.StoredSession {
	return storage.StoredSession{
		Session: equipment.Session{
			Equipment: equipment.Equipment{Name: name, Category: category},
			Start:     start,
			End:       start.Add(time.Duration(minutes) * time.Minute),
		},
	}
}

func TestSessionStore_AddAndGet(t *testing.T) {
	store, _ := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	sessions := store.Sessions()

	start := time.Date(2022, 1, 1, 8, 40, 0, 0, time.UTC)
	added, err := sessions.Add(ctx, testSession("Treadmill 1", equipment.CategoryTreadmill, start, 10))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if added.ID == "" {
		t.Fatal("Expected generated ID")
	}
	if added.RecordedAt.IsZero() {
		t.Error("Expected RecordedAt to be set")
	}

	retrieved, err := sessions.Get(ctx, added.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved.Session.Equipment != added.Session.Equipment {
		t.Errorf("Expected equipment %+v, got %+v", added.Session.Equipment, retrieved.Session.Equipment)
	}
	if !retrieved.Session.Start.Equal(start) || !retrieved.Session.End.Equal(start.Add(10*time.Minute)) {
		t.Errorf("Unexpected times: %v - %v", retrieved.Session.Start, retrieved.Session.End)
	}
}

func TestSessionStore_GetNotFound(t *testing.T) {
	store, _ := setupTestStore(t)
	defer func() { _ = store.Close() }()

	_, err := store.Sessions().Get(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSessionStore_AddRejectsInvalid(t *testing.T) {
	store, mr := setupTestStore(t)
	defer func() { _ = store.Close() }()

	start := time.Date(2022, 1, 1, 9, 0, 0, 0, time.UTC)
	_, err := store.Sessions().Add(context.Background(), testSession("Treadmill 1", equipment.CategoryTreadmill, start, 0))

	var invalid *equipment.InvalidSessionError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected *InvalidSessionError, got %v", err)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Errorf("Expected nothing stored, got keys %v", keys)
	}
}

func TestSessionStore_AddDuplicateID(t *testing.T) {
	store, _ := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	start := time.Date(2022, 1, 1, 9, 0, 0, 0, time.UTC)

	s := testSession("Treadmill 1", equipment.CategoryTreadmill, start, 10)
	s.ID = "fixed"
	if _, err := store.Sessions().Add(ctx, s); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Sessions().Add(ctx, s); !errors.Is(err, storage.ErrExists) {
		t.Errorf("Expected ErrExists re-adding the same ID, got %v", err)
	}

	listed, err := store.Sessions().ListByDay(ctx, "2022-01-01")
	if err != nil {
		t.Fatalf("ListByDay failed: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("Expected 1 session, got %d", len(listed))
	}
}

func TestSessionStore_AddDerivesStableID(t *testing.T) {
	store, _ := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	start := time.Date(2022, 1, 1, 9, 0, 0, 0, time.UTC)

	first, err := store.Sessions().Add(ctx, testSession("Treadmill 1", equipment.CategoryTreadmill, start, 10))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if want := storage.SessionID(first.Session); first.ID != want {
		t.Errorf("Expected ID %s, got %s", want, first.ID)
	}

	// Same instants expressed in another zone
	sydney, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	again := testSession("Treadmill 1", equipment.CategoryTreadmill, start.In(sydney), 10)
	if _, err := store.Sessions().Add(ctx, again); !errors.Is(err, storage.ErrExists) {
		t.Fatalf("Expected ErrExists for the same session, got %v", err)
	}

	other := testSession("Treadmill 2", equipment.CategoryTreadmill, start, 10)
	if _, err := store.Sessions().Add(ctx, other); err != nil {
		t.Fatalf("Add of a different machine failed: %v", err)
	}

	listed, err := store.Sessions().ListByDay(ctx, "2022-01-01")
	if err != nil {
		t.Fatalf("ListByDay failed: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(listed))
	}
}

func TestSessionStore_ListByDayPreservesOrder(t *testing.T) {
	store, _ := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	sessions := store.Sessions()

	day1 := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	inputs := []storage.StoredSession{
		testSession("Treadmill 1", equipment.CategoryTreadmill, day1.Add(11*time.Hour), 19),
		testSession("Elliptical 1", equipment.CategoryElliptical, day1.Add(9*time.Hour), 30),
		testSession("Treadmill 2", equipment.CategoryTreadmill, day2.Add(8*time.Hour), 10),
		testSession("Elliptical 2", equipment.CategoryElliptical, day1.Add(10*time.Hour), 45),
	}
	for _, s := range inputs {
		if _, err := sessions.Add(ctx, s); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	listed, err := sessions.ListByDay(ctx, "2022-01-01")
	if err != nil {
		t.Fatalf("ListByDay failed: %v", err)
	}

	wantNames := []string{"Treadmill 1", "Elliptical 1", "Elliptical 2"}
	if len(listed) != len(wantNames) {
		t.Fatalf("Expected %d sessions, got %d", len(wantNames), len(listed))
	}
	for i, name := range wantNames {
		if listed[i].Session.Equipment.Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, listed[i].Session.Equipment.Name)
		}
	}

	days, err := sessions.ListDays(ctx)
	if err != nil {
		t.Fatalf("ListDays failed: %v", err)
	}
	if len(days) != 2 || days[0] != "2022-01-01" || days[1] != "2022-01-02" {
		t.Errorf("Unexpected days: %v", days)
	}

	empty, err := sessions.ListByDay(ctx, "2021-12-31")
	if err != nil {
		t.Fatalf("ListByDay failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no sessions, got %d", len(empty))
	}
}

func TestSessionStore_DeleteDay(t *testing.T) {
	store, mr := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	sessions := store.Sessions()

	day := time.Date(2022, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := sessions.Add(ctx, testSession("Elliptical", equipment.CategoryElliptical, day.Add(time.Duration(i)*time.Hour), 30)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	deleted, err := sessions.DeleteDay(ctx, "2022-01-01")
	if err != nil {
		t.Fatalf("DeleteDay failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}

	if keys := mr.Keys(); len(keys) != 0 {
		t.Errorf("Expected all keys removed, got %v", keys)
	}

	days, err := sessions.ListDays(ctx)
	if err != nil {
		t.Fatalf("ListDays failed: %v", err)
	}
	if len(days) != 0 {
		t.Errorf("Expected no days, got %v", days)
	}
}

func TestSessionStore_ListByDaySkipsDanglingIDs(t *testing.T) {
	store, mr := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	start := time.Date(2022, 1, 1, 9, 0, 0, 0, time.UTC)

	added, err := store.Sessions().Add(ctx, testSession("Treadmill 1", equipment.CategoryTreadmill, start, 10))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Sessions().Add(ctx, testSession("Treadmill 2", equipment.CategoryTreadmill, start, 20)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	mr.Del(sessionKey(added.ID))

	listed, err := store.Sessions().ListByDay(ctx, "2022-01-01")
	if err != nil {
		t.Fatalf("ListByDay failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Session.Equipment.Name != "Treadmill 2" {
		t.Errorf("Unexpected sessions: %+v", listed)
	}
}

func TestOpen_Unreachable(t *testing.T) {
	cfg := config.RedisConfig{
		Host:         "127.0.0.1",
		Port:         1,
		DialTimeout:  "200ms",
		ReadTimeout:  "200ms",
		WriteTimeout: "200ms",
	}
	if _, err := Open(cfg); err == nil {
		t.Error("Expected connection error")
	}
}

func TestOpen_InvalidTimeout(t *testing.T) {
	if _, err := Open(config.RedisConfig{Host: "localhost", DialTimeout: "soon"}); err == nil {
		t.Error("Expected error for invalid dial timeout")
	}
}
