package settings

// Setting is a single persisted key/value override. Values are always
// strings; callers stringify before writing.
type Setting struct {
	Key   string `gorm:"primaryKey;column:key;type:text" json:"key"`
	Value string `gorm:"column:value;type:text" json:"value"`
}

func (Setting) TableName() string { return "settings" }
