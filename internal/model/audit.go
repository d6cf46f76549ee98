package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionUpsertLocation        = "UPSERT_LOCATION"
	ActionUpdateLocation        = "UPDATE_LOCATION"
	ActionUpdateLocationAddress = "UPDATE_LOCATION_ADDRESS"
	ActionDeleteLocation        = "DELETE_LOCATION"
	ActionAddLocationAlias      = "ADD_LOCATION_ALIAS"
	ActionRemoveLocationAlias   = "REMOVE_LOCATION_ALIAS"
	ActionAddClientLink         = "ADD_CLIENT_LINK"
	ActionRemoveClientLink      = "REMOVE_CLIENT_LINK"
)

// AuditLog tracks What and When for location mutations
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (id/code)
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string    `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
