package canvas

import (
	"time"

	"gorm.io/datatypes"
)

// EmptyData is the serialized payload of a freshly created canvas.
const EmptyData = "{}"

// Canvas is one persisted drawing document. Data is stored verbatim as
// serialized JSON; it is never interpreted by the store.
type Canvas struct {
	ID        string         `gorm:"primaryKey;column:id;type:text" json:"id"`
	Name      string         `gorm:"not null;column:name;type:text" json:"name"`
	Data      datatypes.JSON `gorm:"column:data;type:text" json:"data"`
	Thumbnail string         `gorm:"column:thumbnail;type:text" json:"thumbnail"`
	UpdatedAt float64        `gorm:"column:updated_at;type:real;index;autoUpdateTime:false" json:"updated_at"`
}

func (Canvas) TableName() string { return "canvases" }

// Summary is the list projection of a canvas; it never carries Data.
type Summary struct {
	ID        string  `gorm:"column:id" json:"id"`
	Name      string  `gorm:"column:name" json:"name"`
	Thumbnail string  `gorm:"column:thumbnail" json:"thumbnail"`
	UpdatedAt float64 `gorm:"column:updated_at" json:"updated_at"`
}

// Timestamp converts t to the unix-seconds representation stored in
// updated_at.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
