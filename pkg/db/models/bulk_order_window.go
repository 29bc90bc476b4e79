package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mandibazaar/mandi-backend/pkg/enums"
)

// BulkOrderWindow groups vendor orders placed within a time window so they can
// be repriced and settled against the aggregate quantity.
type BulkOrderWindow struct {
	ID                uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CreatorAccountID  uuid.UUID          `gorm:"column:creator_account_id;type:uuid;not null"`
	Title             string             `gorm:"column:title;not null"`
	Description       *string            `gorm:"column:description"`
	WindowStartTime   time.Time          `gorm:"column:window_start_time;not null"`
	WindowEndTime     time.Time          `gorm:"column:window_end_time;not null"`
	Status            enums.WindowStatus `gorm:"column:status;type:text;not null;default:'open'"`
	TotalParticipants int                `gorm:"column:total_participants;not null;default:0"`
	TotalAmount       decimal.Decimal    `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	CreatedAt         time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
