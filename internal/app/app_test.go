package app

import (
	"context"
	"testing"
	"time"

	"github.com/graceauto/catalogue/internal/config"
	"github.com/graceauto/catalogue/internal/editor"
	"github.com/graceauto/catalogue/internal/repository"
	"github.com/graceauto/catalogue/internal/store"
)

type fakeRepo struct {
	watcherStarted bool
	watcherErr     error
	backups        int
}

func (f *fakeRepo) Load(_ context.Context) (*repository.Document, error) {
	doc := repository.DefaultDocument()
	return &doc, nil
}

func (f *fakeRepo) Save(_ context.Context, _ *repository.Document) error {
	return nil
}

func (f *fakeRepo) Backup(_ context.Context) error {
	f.backups++
	return nil
}

func (f *fakeRepo) StartWatcher(_ context.Context, _ repository.ReloadSink) error {
	if f.watcherErr != nil {
		return f.watcherErr
	}
	f.watcherStarted = true
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8090,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutDownTimeout: 15 * time.Second,
			RequestTimeout:  5 * time.Second,
		},
		Data: config.DataConfig{
			FilePath:   "./data/donnees.json",
			BackupPath: "./data/enregistrement.json",
		},
		Misc: config.MiscConfig{LogLevel: "info", GinMode: "test"},
	}
}

func newTestApp(t *testing.T, cfg *config.Config, repo *fakeRepo) *App {
	t.Helper()
	st := store.New(repo, store.NewNotifier())
	ed := editor.New(st, repo)

	a, err := New(cfg, repo, st, ed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(a.Shutdown)
	return a
}

func TestNew_RejectsNilDependencies(t *testing.T) {
	repo := &fakeRepo{}
	st := store.New(repo, store.NewNotifier())
	ed := editor.New(st, repo)

	if _, err := New(nil, repo, st, ed); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := New(testConfig(), nil, st, ed); err == nil {
		t.Error("expected error for nil repo")
	}
	if _, err := New(testConfig(), repo, nil, ed); err == nil {
		t.Error("expected error for nil store")
	}
	if _, err := New(testConfig(), repo, st, nil); err == nil {
		t.Error("expected error for nil editor")
	}
}

func TestStartWatchers(t *testing.T) {
	repo := &fakeRepo{}
	a := newTestApp(t, testConfig(), repo)

	if err := a.StartWatchers(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.watcherStarted {
		t.Error("expected the file watcher to be started")
	}
	if a.backupCron != nil {
		t.Error("expected no cron without a schedule")
	}
}

func TestStartWatchers_WithBackupSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Data.BackupSchedule = "0 3 * * *"
	a := newTestApp(t, cfg, &fakeRepo{})

	if err := a.StartWatchers(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.backupCron == nil {
		t.Fatal("expected the backup cron to be running")
	}
}

func TestStartWatchers_RejectsBadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Data.BackupSchedule = "every sunday"
	a := newTestApp(t, cfg, &fakeRepo{})

	if err := a.StartWatchers(); err == nil {
		t.Fatal("expected an error for an unparseable schedule")
	}
}

func TestShutdown_CancelsBaseContext(t *testing.T) {
	a := newTestApp(t, testConfig(), &fakeRepo{})

	a.Shutdown()

	select {
	case <-a.BaseCtx.Done():
	default:
		t.Error("expected the base context to be cancelled")
	}
}

func TestShutdown_NilSafe(t *testing.T) {
	var a *App
	a.Shutdown()
}
