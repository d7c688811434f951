package settings

import (
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/soart-backend/internal/domain"
	"github.com/yungbote/soart-backend/internal/platform/dbctx"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

type SettingsRepo interface {
	// Get returns def when key has never been set.
	Get(dbc dbctx.Context, key, def string) (string, error)
	Set(dbc dbctx.Context, key, value string) error
	// SetMany upserts every pair in a single statement.
	SetMany(dbc dbctx.Context, values map[string]string) error
	All(dbc dbctx.Context) (map[string]string, error)
}

type settingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSettingsRepo(db *gorm.DB, baseLog *logger.Logger) SettingsRepo {
	return &settingsRepo{db: db, log: baseLog.With("repo", "SettingsRepo")}
}

func (r *settingsRepo) Get(dbc dbctx.Context, key, def string) (string, error) {
	var rows []types.Setting
	if err := dbc.Conn(r.db).
		Where("key = ?", key).
		Limit(1).
		Find(&rows).Error; err != nil {
		return def, err
	}
	if len(rows) == 0 {
		return def, nil
	}
	return rows[0].Value, nil
}

func (r *settingsRepo) Set(dbc dbctx.Context, key, value string) error {
	return r.SetMany(dbc, map[string]string{key: value})
}

func (r *settingsRepo) SetMany(dbc dbctx.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]types.Setting, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, types.Setting{Key: k, Value: values[k]})
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&rows).Error
}

func (r *settingsRepo) All(dbc dbctx.Context) (map[string]string, error) {
	var rows []types.Setting
	if err := dbc.Conn(r.db).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}
