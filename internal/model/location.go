package model

import (
	"time"
)

// LocationType enum constants
const (
	LocationTypeOrigin      = "Origen"
	LocationTypeDestination = "Destino"
	LocationTypeBoth        = "Ambos"
)

// Location is the aggregate root for a logistics point of interest.
// Code is the natural business key used by upserts; ID is system-assigned.
type Location struct {
	ID           int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	OfficialName string           `gorm:"type:varchar(255);not null;uniqueIndex" json:"nombre_oficial"`
	Code         string           `gorm:"type:varchar(50);not null;uniqueIndex" json:"codigo"`
	Type         string           `gorm:"type:varchar(20);not null;default:Ambos;index" json:"tipo"` // Origen, Destino, Ambos
	Active       bool             `gorm:"not null;default:true" json:"activo"`
	IsGlobal     bool             `gorm:"not null;default:false" json:"es_global"` // visible under every client filter
	Address      *Address         `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE" json:"address"`
	Aliases      []LocationAlias  `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE" json:"aliases"`
	Clients      []LocationClient `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE" json:"clients"`
	Geocoding    []GeocodingCache `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Address is the optional 1:1 address of a location, keyed by the owning location id.
type Address struct {
	LocationID   int64     `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Street       *string   `gorm:"type:varchar(255)" json:"calle"`
	Neighborhood *string   `gorm:"type:varchar(255)" json:"colonia"`
	City         *string   `gorm:"type:varchar(255)" json:"ciudad_text"`
	State        *string   `gorm:"type:varchar(255)" json:"estado_text"`
	PostalCode   *string   `gorm:"type:varchar(20)" json:"cp"`
	Lat          *float64  `json:"lat"`
	Lng          *float64  `json:"lng"`
	Reference    *string   `gorm:"type:varchar(500)" json:"referencia"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LocationAlias is an alternate name for a location, unique per (location, alias).
type LocationAlias struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LocationID int64     `gorm:"not null;uniqueIndex:uq_location_alias" json:"-"`
	Alias      string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_location_alias" json:"alias"`
	CreatedAt  time.Time `json:"created_at"`
}

// LocationClient links an external system's client entity to a location under a role.
// The full 4-tuple is the composite primary key; there is no surrogate id.
type LocationClient struct {
	LocationID       int64     `gorm:"primaryKey;autoIncrement:false" json:"-"`
	ClientSource     string    `gorm:"type:varchar(50);primaryKey" json:"cliente_source"`
	ClientExternalID string    `gorm:"type:varchar(100);primaryKey" json:"cliente_external_id"`
	Role             string    `gorm:"type:varchar(50);primaryKey" json:"rol"`
	CreatedAt        time.Time `json:"created_at"`
}

// GeocodingCache stores a provider's raw geocoding response for a location.
// Schema only; not touched by the aggregate store.
type GeocodingCache struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LocationID int64     `gorm:"not null;uniqueIndex:uq_geocoding" json:"location_id"`
	Provider   string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_geocoding" json:"provider"`
	ExternalID string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_geocoding" json:"external_id"`
	RawJSON    string    `gorm:"type:jsonb;not null" json:"raw_json"`
	CreatedAt  time.Time `json:"created_at"`
}
