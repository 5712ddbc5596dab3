package store

import (
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/taskhub.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting("notice_ttl", "5s"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	v, err := s2.GetSetting("notice_ttl")
	if err != nil {
		t.Fatal(err)
	}
	if v != "5s" {
		t.Fatalf("expected 5s after reopen, got %q", v)
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestMigrateFromV1(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(`DROP TABLE reminders_sent; PRAGMA user_version = 1`); err != nil {
		t.Fatal(err)
	}
	if err := s.migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := s.MarkReminded(1, time.Now()); err != nil {
		t.Fatalf("reminders_sent missing after upgrade: %v", err)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsStartEmpty(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no settings, got %v", all)
	}
}

func TestSetSetting(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("dangling_policy", "cascade")
	val, _ := s.GetSetting("dangling_policy")
	if val != "cascade" {
		t.Fatalf("expected cascade, got %s", val)
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("key", "v1")
	s.SetSetting("key", "v2")
	val, _ := s.GetSetting("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestLookupSetting(t *testing.T) {
	s := newTestStore(t)
	if _, ok, err := s.LookupSetting("notice_ttl"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	s.SetSetting("notice_ttl", "4s")
	v, ok, err := s.LookupSetting("notice_ttl")
	if err != nil || !ok || v != "4s" {
		t.Fatalf("LookupSetting = %q, %v, %v", v, ok, err)
	}
	s.DeleteSetting("notice_ttl")
	if _, ok, _ := s.LookupSetting("notice_ttl"); ok {
		t.Fatal("setting survived delete")
	}
}

func TestGetAllSettingsSorted(t *testing.T) {
	s := newTestStore(t)
	for _, k := range []string{"reminder_window", "dangling_policy", "notice_ttl"} {
		s.SetSetting(k, "x")
	}
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

// ============================================================
// Cookies
// ============================================================

func TestSaveAndListCookies(t *testing.T) {
	s := newTestStore(t)
	origin := "https://taskhub.example"
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	s.SaveCookie(Cookie{Origin: origin, Name: "session", Value: "v1"})
	s.SaveCookie(Cookie{Origin: origin, Name: "session", Value: "v2"})
	s.SaveCookie(Cookie{Origin: origin, Name: "stale", Value: "x", Expires: &past})
	s.SaveCookie(Cookie{Origin: origin, Name: "remember", Value: "y", Expires: &future})
	s.SaveCookie(Cookie{Origin: "https://other.example", Name: "session", Value: "z"})

	got, err := s.ListCookies(origin, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 live cookies, got %d", len(got))
	}
	if got[0].Name != "remember" || got[1].Name != "session" || got[1].Value != "v2" {
		t.Fatalf("unexpected cookies: %+v", got)
	}
	if got[0].Expires == nil || got[1].Expires != nil {
		t.Fatalf("expiry not round-tripped: %+v", got)
	}
}

func TestClearCookies(t *testing.T) {
	s := newTestStore(t)
	s.SaveCookie(Cookie{Origin: "https://a.example", Name: "session", Value: "1"})
	s.SaveCookie(Cookie{Origin: "https://b.example", Name: "session", Value: "2"})

	if err := s.ClearCookies("https://a.example"); err != nil {
		t.Fatal(err)
	}
	a, _ := s.ListCookies("https://a.example", time.Now())
	b, _ := s.ListCookies("https://b.example", time.Now())
	if len(a) != 0 || len(b) != 1 {
		t.Fatalf("clear hit the wrong origin: a=%v b=%v", a, b)
	}
}

// ============================================================
// Jar
// ============================================================

func TestJarPersistsAcrossInstances(t *testing.T) {
	s := newTestStore(t)
	base := mustURL(t, "https://taskhub.example")

	j1, err := NewJar(s, base, nil)
	if err != nil {
		t.Fatal(err)
	}
	j1.SetCookies(mustURL(t, "https://taskhub.example/login"), []*http.Cookie{{Name: "session", Value: "tok", Path: "/"}})

	j2, err := NewJar(s, base, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := j2.Cookies(mustURL(t, "https://taskhub.example/tasks"))
	if len(got) != 1 || got[0].Name != "session" || got[0].Value != "tok" {
		t.Fatalf("restored cookies = %v", got)
	}
}

func TestJarDeletesExpiredCookie(t *testing.T) {
	s := newTestStore(t)
	base := mustURL(t, "https://taskhub.example")
	j, _ := NewJar(s, base, nil)

	j.SetCookies(base, []*http.Cookie{{Name: "session", Value: "tok", Path: "/"}})
	j.SetCookies(base, []*http.Cookie{{Name: "session", Value: "", Path: "/", MaxAge: -1}})

	saved, _ := s.ListCookies(Origin(base), time.Now())
	if len(saved) != 0 {
		t.Fatalf("expected cookie deleted, got %v", saved)
	}
}

func TestJarIgnoresOtherOrigins(t *testing.T) {
	s := newTestStore(t)
	j, _ := NewJar(s, mustURL(t, "https://taskhub.example"), nil)
	j.SetCookies(mustURL(t, "https://tracker.example/"), []*http.Cookie{{Name: "t", Value: "1", Path: "/"}})

	saved, _ := s.ListCookies("https://tracker.example", time.Now())
	if len(saved) != 0 {
		t.Fatalf("foreign cookie persisted: %v", saved)
	}
}

func TestJarClear(t *testing.T) {
	s := newTestStore(t)
	base := mustURL(t, "https://taskhub.example")
	j, _ := NewJar(s, base, nil)
	j.SetCookies(base, []*http.Cookie{{Name: "session", Value: "tok", Path: "/"}})

	if err := j.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := j.Cookies(base); len(got) != 0 {
		t.Fatalf("in-memory cookies survived: %v", got)
	}
	if saved, _ := s.ListCookies(Origin(base), time.Now()); len(saved) != 0 {
		t.Fatalf("stored cookies survived: %v", saved)
	}
}

// ============================================================
// Profile
// ============================================================

func TestProfileLifecycle(t *testing.T) {
	s := newTestStore(t)
	origin := "https://taskhub.example"

	if _, err := s.GetProfile(origin); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}

	s.SaveProfile(Profile{Origin: origin, UserID: 1, Name: "Jane", Email: "jane@example.com"})
	s.SaveProfile(Profile{Origin: origin, UserID: 7, Name: "Sam", Email: "sam@example.com"})
	p, err := s.GetProfile(origin)
	if err != nil {
		t.Fatal(err)
	}
	if p.UserID != 7 || p.Name != "Sam" || p.Email != "sam@example.com" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.UpdatedAt.IsZero() {
		t.Fatal("updated_at not set")
	}

	if err := s.DeleteProfile(origin); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetProfile(origin); err == nil {
		t.Fatal("profile survived delete")
	}
}

// ============================================================
// Reminders
// ============================================================

func TestMarkReminded(t *testing.T) {
	s := newTestStore(t)
	due := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	first, err := s.MarkReminded(5, due)
	if err != nil || !first {
		t.Fatalf("first mark = %v, %v", first, err)
	}
	again, err := s.MarkReminded(5, due)
	if err != nil || again {
		t.Fatalf("second mark = %v, %v", again, err)
	}
	moved, _ := s.MarkReminded(5, due.Add(time.Hour))
	if !moved {
		t.Fatal("rescheduled task should be remindable again")
	}
}

func TestPruneReminders(t *testing.T) {
	s := newTestStore(t)
	s.MarkReminded(1, time.Now())
	s.MarkReminded(2, time.Now())

	n, err := s.PruneReminders(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("pruned %d, want 2", n)
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	err := s.Close()
	if err != nil {
		t.Fatalf("first close: %v", err)
	}
}
