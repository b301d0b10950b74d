package api

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

type auditModel struct {
	ID      int64             `gorm:"type:bigserial;primaryKey"`
	Actor   string            `gorm:"type:text;not null"`
	Action  string            `gorm:"type:text;not null"`
	Obj     string            `gorm:"type:text"`
	Details datatypes.JSONMap `gorm:"type:jsonb"`
	At      time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (auditModel) TableName() string { return "audit" }

// audit records a best-effort trail entry; failures are logged, never
// surfaced to the request.
func (a *API) audit(ctx context.Context, actor, action, obj string, details map[string]any) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := auditModel{
		Actor:   actor,
		Action:  action,
		Obj:     obj,
		Details: datatypes.JSONMap(details),
	}
	if err := a.store.ORM.WithContext(ctx).Create(&row).Error; err != nil {
		log.Warn().Err(err).Str("action", action).Msg("write audit record")
	}
}
