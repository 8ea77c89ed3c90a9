package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AssetRef is the persisted form of one remote asset reference.
type AssetRef struct {
	PublicID string       `json:"public_id"`
	Kind     string       `json:"kind"`
	URL      string       `json:"url"`
	Variants []VariantRef `json:"variants,omitempty"`
	Bytes    int64        `json:"bytes,omitempty"`
	Duration float64      `json:"duration,omitempty"`
	Format   string       `json:"format,omitempty"`
}

// VariantRef is a derived form of an asset (encode, thumbnail, manifest).
type VariantRef struct {
	Format string `json:"format"`
	URL    string `json:"url,omitempty"`
}

// AssetRefs stores the asset list as a jsonb column.
type AssetRefs []AssetRef

func (a AssetRefs) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (a *AssetRefs) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported asset refs column type %T", value)
	}
	return json.Unmarshal(data, a)
}

// Record represents the persisted domain entity owning its asset references.
type Record struct {
	ID          string    `gorm:"type:varchar(40);primaryKey"`
	Kind        string    `gorm:"type:varchar(32);not null;index"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Assets      AssetRefs `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Record) TableName() string {
	return "records"
}
