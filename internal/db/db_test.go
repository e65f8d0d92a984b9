package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/fstest"

	"sorteo-ig/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testParticipant(phone, handle string) models.Participant {
	return models.Participant{
		FirstName: "Ana",
		LastName:  "García",
		Phone:     phone,
		Handle:    handle,
		Region:    "CABA",
	}
}

func TestInsertAndGetParticipant(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.InsertParticipant(ctx, testParticipant("5491100000001", "alice"))
	if err != nil {
		t.Fatalf("InsertParticipant: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	got, err := store.GetParticipant(ctx, id)
	if err != nil {
		t.Fatalf("GetParticipant: %v", err)
	}
	if got.ID != id || got.Phone != "5491100000001" || got.Handle != "alice" || got.Region != "CABA" {
		t.Errorf("unexpected participant: %+v", got)
	}
}

func TestGetParticipant_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetParticipant(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertParticipant_Constraints(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.InsertParticipant(ctx, testParticipant("5491100000001", "alice")); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	tests := []struct {
		name  string
		p     models.Participant
		wantC Constraint
	}{
		{"duplicate phone", testParticipant("5491100000001", "other"), ConstraintPhone},
		{"duplicate handle", testParticipant("5491100000002", "alice"), ConstraintHandle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.InsertParticipant(ctx, tt.p)
			var cerr *ConstraintError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected *ConstraintError, got %v", err)
			}
			if cerr.Constraint != tt.wantC {
				t.Errorf("expected constraint %q, got %q", tt.wantC, cerr.Constraint)
			}
		})
	}

	n, err := store.CountParticipants(ctx)
	if err != nil {
		t.Fatalf("CountParticipants: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 participant after rejected inserts, got %d", n)
	}
}

func TestListAndDeleteParticipants(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i, phone := range []string{"5491100000001", "5491100000002", "5491100000003"} {
		if _, err := store.InsertParticipant(ctx, testParticipant(phone, "user"+string(rune('a'+i)))); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	list, err := store.ListParticipants(ctx)
	if err != nil {
		t.Fatalf("ListParticipants: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(list))
	}
	if list[0].Handle != "usera" || list[2].Handle != "userc" {
		t.Errorf("expected id order, got %+v", list)
	}

	if err := store.DeleteAllParticipants(ctx); err != nil {
		t.Fatalf("DeleteAllParticipants: %v", err)
	}
	n, _ := store.CountParticipants(ctx)
	if n != 0 {
		t.Errorf("expected 0 participants, got %d", n)
	}
}

func TestInsertWinner_Singleton(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, _ := store.InsertParticipant(ctx, testParticipant("5491100000001", "alice"))

	exists, err := store.WinnerExists(ctx)
	if err != nil || exists {
		t.Fatalf("expected no winner, got exists=%v err=%v", exists, err)
	}

	if _, err := store.InsertWinner(ctx, id, "alice"); err != nil {
		t.Fatalf("InsertWinner: %v", err)
	}
	if _, err := store.InsertWinner(ctx, id, "alice"); !errors.Is(err, ErrWinnerExists) {
		t.Fatalf("expected ErrWinnerExists, got %v", err)
	}

	winners, err := store.ListWinners(ctx, 10)
	if err != nil {
		t.Fatalf("ListWinners: %v", err)
	}
	if len(winners) != 1 {
		t.Fatalf("expected 1 winner, got %d", len(winners))
	}
	if winners[0].ParticipantID != id || winners[0].Handle != "alice" {
		t.Errorf("unexpected winner: %+v", winners[0])
	}
	if winners[0].DrawnAt.IsZero() {
		t.Error("expected drawn_at to be set")
	}

	if err := store.DeleteAllWinners(ctx); err != nil {
		t.Fatalf("DeleteAllWinners: %v", err)
	}
	exists, _ = store.WinnerExists(ctx)
	if exists {
		t.Error("expected winner to be deleted")
	}
	if _, err := store.InsertWinner(ctx, id, "alice"); err != nil {
		t.Errorf("slot should be free after delete: %v", err)
	}
}

func TestInsertWinner_Concurrent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	id, _ := store.InsertParticipant(ctx, testParticipant("5491100000001", "alice"))

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.InsertWinner(ctx, id, "alice")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrWinnerExists):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly 1 committed winner, got %d", succeeded)
	}
}

func TestUniqueViolation(t *testing.T) {
	tests := []struct {
		msg    string
		column string
		ok     bool
	}{
		{"SQLite error: UNIQUE constraint failed: participants.phone", "participants.phone", true},
		{"UNIQUE constraint failed: participants.handle (2067)", "participants.handle", true},
		{"UNIQUE constraint failed: winners.slot", "winners.slot", true},
		{"NOT NULL constraint failed: participants.region", "", false},
		{"connection reset by peer", "", false},
	}
	for _, tt := range tests {
		column, ok := uniqueViolation(errors.New(tt.msg))
		if ok != tt.ok || column != tt.column {
			t.Errorf("uniqueViolation(%q) = (%q, %v), want (%q, %v)", tt.msg, column, ok, tt.column, tt.ok)
		}
	}
}

func TestParticipantConstraint_RemoteMessages(t *testing.T) {
	// The remote driver only forwards the server message text.
	tests := []struct {
		msg  string
		want Constraint
	}{
		{"failed to execute SQL: SQLite error: UNIQUE constraint failed: participants.phone", ConstraintPhone},
		{"failed to execute SQL: SQLite error: UNIQUE constraint failed: participants.handle", ConstraintHandle},
		{"SQLite error: UNIQUE constraint failed: participants.id", ConstraintUnknown},
		{"SQLite error: UNIQUE constraint failed: winners.slot", ConstraintUnknown},
		{"SQLite error: UNIQUE constraint failed: participants.phone, participants.handle", ConstraintPhone},
	}
	for _, tt := range tests {
		column, ok := uniqueViolation(errors.New(tt.msg))
		if !ok {
			t.Errorf("uniqueViolation(%q) not detected", tt.msg)
			continue
		}
		if got := participantConstraint(column); got != tt.want {
			t.Errorf("participantConstraint(%q) = %q, want %q", column, got, tt.want)
		}
	}
}

func TestApplyMigrations_RecordsOnce(t *testing.T) {
	store := setupTestStore(t)

	fsys := fstest.MapFS{
		"002_extra.sql": {Data: []byte("CREATE TABLE extra (id INTEGER PRIMARY KEY);")},
	}
	if err := applyMigrations(store.DB, fsys); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	// A second run must skip the recorded file instead of failing on CREATE TABLE.
	if err := applyMigrations(store.DB, fsys); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	var count int
	if err := store.DB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 recorded migrations, got %d", count)
	}
}
