package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/soart-backend/internal/data/repos"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

type Repos struct {
	Canvas   repos.CanvasRepo
	Settings repos.SettingsRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Canvas:   repos.NewCanvasRepo(db, log),
		Settings: repos.NewSettingsRepo(db, log),
	}
}
