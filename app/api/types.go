package api

import (
	"context"

	"github.com/ivlebedev/cubox-daily/app/database"
	"github.com/ivlebedev/cubox-daily/app/settings"
	syncer "github.com/ivlebedev/cubox-daily/app/sync"
)

type SyncRunner interface {
	Run(ctx context.Context) (*syncer.Result, error)
	Running() bool
}

var _ SyncRunner = (*syncer.Engine)(nil)

type Handler struct {
	runner   SyncRunner
	states   database.StateRepository
	settings *settings.Store
}
