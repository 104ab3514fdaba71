package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/config"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/database"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "logs.db"),
	})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := database.Migrate(db, false); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestDBHandlerStoresErrors(t *testing.T) {
	db := openTestDB(t)
	h := NewDBHandler(db)
	logger := slog.New(h).With("request_id", "req-1")

	logger.Info("not stored")
	logger.Error("request failed",
		"method", "POST",
		"path", "/api/posts",
		"author_id", "a-1",
		"error", "boom",
		"attempt", 2,
	)
	h.Stop()

	var rows []models.SystemLog
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("%d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Level != "ERROR" || row.RequestID != "req-1" || row.Method != "POST" || row.Error != "boom" {
		t.Fatalf("row %+v", row)
	}
	if row.AuthorID == nil || *row.AuthorID != "a-1" {
		t.Fatalf("author id %v", row.AuthorID)
	}
	if !strings.Contains(string(row.Extra), `"attempt":2`) {
		t.Fatalf("extra %s", row.Extra)
	}
}

func TestPruneSystemLogs(t *testing.T) {
	db := openTestDB(t)
	old := models.SystemLog{Timestamp: time.Now().Add(-48 * time.Hour), Level: "ERROR", Message: "old"}
	fresh := models.SystemLog{Timestamp: time.Now(), Level: "ERROR", Message: "fresh"}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Create(&fresh).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := PruneSystemLogs(db, 24*time.Hour)
	if err != nil || deleted != 1 {
		t.Fatalf("prune: deleted=%d err=%v", deleted, err)
	}
	var count int64
	db.Model(&models.SystemLog{}).Count(&count)
	if count != 1 {
		t.Fatalf("%d rows left", count)
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandlerKeepsDelivering(t *testing.T) {
	var buf bytes.Buffer
	text := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	broken := failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)}

	m := NewMultiHandler(broken, text)
	err := m.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0))
	if err == nil {
		t.Fatalf("handler error swallowed")
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("second handler skipped: %q", buf.String())
	}

	if m.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("no handler accepts debug")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
