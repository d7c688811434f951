package domain

import (
	"github.com/yungbote/soart-backend/internal/domain/canvas"
	"github.com/yungbote/soart-backend/internal/domain/settings"
)

type (
	Canvas        = canvas.Canvas
	CanvasSummary = canvas.Summary
	Setting       = settings.Setting
)

const EmptyCanvasData = canvas.EmptyData

var CanvasTimestamp = canvas.Timestamp
