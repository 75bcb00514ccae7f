package models

// SettingResultPublished is the key of the global result-publish flag.
const SettingResultPublished = "result_published"

// SystemSetting is a key/value row for global portal switches.
type SystemSetting struct {
	BaseModel
	Key   string `gorm:"uniqueIndex" json:"key"`
	Value string `json:"value"`
}
