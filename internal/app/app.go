package app

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"

	"github.com/graceauto/catalogue/internal/config"
	"github.com/graceauto/catalogue/internal/editor"
	"github.com/graceauto/catalogue/internal/logger"
	"github.com/graceauto/catalogue/internal/repository"
	"github.com/graceauto/catalogue/internal/store"
)

// App is the application container (immutable dependencies + lifecycle
// context). Every component receives its collaborators from here instead of
// reaching for globals; it is not a request context, handlers still use
// gin's request context.
type App struct {
	Config *config.Config
	Repo   repository.Repository
	Store  *store.Store
	Editor *editor.Editor

	BaseCtx context.Context
	Cancel  context.CancelFunc

	backupCron *cron.Cron
}

func New(cfg *config.Config, repo repository.Repository, st *store.Store, ed *editor.Editor) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if repo == nil {
		return nil, errors.New("repo is nil")
	}
	if st == nil {
		return nil, errors.New("store is nil")
	}
	if ed == nil {
		return nil, errors.New("editor is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:  cfg,
		Repo:    repo,
		Store:   st,
		Editor:  ed,
		BaseCtx: ctx,
		Cancel:  cancel,
	}, nil
}

func (a *App) Shutdown() {
	if a == nil || a.Cancel == nil {
		return
	}
	if a.backupCron != nil {
		a.backupCron.Stop()
	}
	a.Cancel()
}

// StartWatchers starts the data file watcher and, when configured, the
// scheduled backup job. The watcher is what makes an operator's manual file
// replacement visible to the running process.
func (a *App) StartWatchers() error {
	if err := a.Repo.StartWatcher(a.BaseCtx, a.Store); err != nil {
		return err
	}

	if schedule := a.Config.Data.BackupSchedule; schedule != "" {
		c := cron.New()
		_, err := c.AddFunc(schedule, func() {
			if err := a.Repo.Backup(a.BaseCtx); err != nil {
				logger.WithComponent("backup").Errorf("scheduled backup failed: %v", err)
				return
			}
			logger.WithComponent("backup").Info("scheduled backup completed")
		})
		if err != nil {
			return err
		}
		c.Start()
		a.backupCron = c
		logger.WithComponent("backup").Infof("scheduled backup enabled: %s", schedule)
	}

	return nil
}
