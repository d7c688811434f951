package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/soart-backend/internal/data/repos/canvas"
	"github.com/yungbote/soart-backend/internal/data/repos/settings"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

type CanvasRepo = canvas.CanvasRepo
type SettingsRepo = settings.SettingsRepo

func NewCanvasRepo(db *gorm.DB, baseLog *logger.Logger) CanvasRepo {
	return canvas.NewCanvasRepo(db, baseLog)
}

func NewSettingsRepo(db *gorm.DB, baseLog *logger.Logger) SettingsRepo {
	return settings.NewSettingsRepo(db, baseLog)
}
