package canvas

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/soart-backend/internal/domain"
	"github.com/yungbote/soart-backend/internal/platform/apierr"
	"github.com/yungbote/soart-backend/internal/platform/dbctx"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

type CanvasRepo interface {
	List(dbc dbctx.Context) ([]types.CanvasSummary, error)
	Create(dbc dbctx.Context, id, name string) (*types.Canvas, error)
	Duplicate(dbc dbctx.Context, sourceID, newID, newName string) (*types.Canvas, error)
	Get(dbc dbctx.Context, id string) (*types.Canvas, error)
	Save(dbc dbctx.Context, id string, data []byte, thumbnail string) error
	Rename(dbc dbctx.Context, id, name string) error
	Delete(dbc dbctx.Context, id string) error
}

type canvasRepo struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewCanvasRepo(db *gorm.DB, baseLog *logger.Logger) CanvasRepo {
	return NewCanvasRepoWithClock(db, baseLog, time.Now)
}

// NewCanvasRepoWithClock lets tests control updated_at.
func NewCanvasRepoWithClock(db *gorm.DB, baseLog *logger.Logger, now func() time.Time) CanvasRepo {
	if now == nil {
		now = time.Now
	}
	return &canvasRepo{db: db, log: baseLog.With("repo", "CanvasRepo"), now: now}
}

func (r *canvasRepo) List(dbc dbctx.Context) ([]types.CanvasSummary, error) {
	out := make([]types.CanvasSummary, 0)
	if err := dbc.Conn(r.db).
		Model(&types.Canvas{}).
		Select("id", "name", "thumbnail", "updated_at").
		Order("updated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *canvasRepo) Create(dbc dbctx.Context, id, name string) (*types.Canvas, error) {
	row := &types.Canvas{
		ID:        id,
		Name:      name,
		Data:      datatypes.JSON(types.EmptyCanvasData),
		Thumbnail: "",
		UpdatedAt: types.CanvasTimestamp(r.now()),
	}
	if err := r.insert(dbc, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *canvasRepo) Duplicate(dbc dbctx.Context, sourceID, newID, newName string) (*types.Canvas, error) {
	var src []types.Canvas
	if err := dbc.Conn(r.db).
		Select("id", "data", "thumbnail").
		Where("id = ?", sourceID).
		Limit(1).
		Find(&src).Error; err != nil {
		return nil, err
	}
	if len(src) == 0 {
		return nil, apierr.NotFound("source canvas %q not found", sourceID)
	}

	data := make([]byte, len(src[0].Data))
	copy(data, src[0].Data)
	row := &types.Canvas{
		ID:        newID,
		Name:      newName,
		Data:      datatypes.JSON(data),
		Thumbnail: src[0].Thumbnail,
		UpdatedAt: types.CanvasTimestamp(r.now()),
	}
	if err := r.insert(dbc, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Get returns nil, nil when the canvas does not exist.
func (r *canvasRepo) Get(dbc dbctx.Context, id string) (*types.Canvas, error) {
	var rows []types.Canvas
	if err := dbc.Conn(r.db).
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *canvasRepo) Save(dbc dbctx.Context, id string, data []byte, thumbnail string) error {
	res := dbc.Conn(r.db).
		Model(&types.Canvas{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"data":       string(data),
			"thumbnail":  thumbnail,
			"updated_at": types.CanvasTimestamp(r.now()),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.NotFound("canvas %q not found", id)
	}
	return nil
}

// Rename leaves updated_at untouched.
func (r *canvasRepo) Rename(dbc dbctx.Context, id, name string) error {
	res := dbc.Conn(r.db).
		Model(&types.Canvas{}).
		Where("id = ?", id).
		UpdateColumn("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apierr.NotFound("canvas %q not found", id)
	}
	return nil
}

func (r *canvasRepo) Delete(dbc dbctx.Context, id string) error {
	return dbc.Conn(r.db).
		Where("id = ?", id).
		Delete(&types.Canvas{}).Error
}

func (r *canvasRepo) insert(dbc dbctx.Context, row *types.Canvas) error {
	if err := dbc.Conn(r.db).Create(row).Error; err != nil {
		if isDuplicateKey(err) {
			return apierr.Conflict("canvas %q already exists", row.ID)
		}
		return err
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
