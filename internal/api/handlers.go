// internal/api/handlers.go
package api

import (
	"html/template"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"biodiversity/internal/db"
	"biodiversity/internal/healthcheck"
	"biodiversity/web"
)

const siteTitle = "Belly Button Biodiversity"

type Handlers struct {
	store  db.Store
	health *healthcheck.Checker
	pages  *template.Template
	assets fs.FS
	logger *zap.Logger
}

func NewHandlers(store db.Store, logger *zap.Logger) (*Handlers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pages, err := web.Templates()
	if err != nil {
		return nil, err
	}
	assets, err := web.Static()
	if err != nil {
		return nil, err
	}

	return &Handlers{
		store:  store,
		health: healthcheck.NewChecker(store, 2*time.Second, logger),
		pages:  pages,
		assets: assets,
		logger: logger,
	}, nil
}
