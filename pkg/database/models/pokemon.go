package models

import (
	"time"

	"gorm.io/datatypes"
)

// Pokemon is the persisted record.
// PokeId is the upstream identifier, unique when present.
type Pokemon struct {
	ID        uint           `gorm:"primaryKey"`
	PokeId    *int           `gorm:"column:poke_id;uniqueIndex:uq_poke_id"`
	Name      string         `gorm:"not null;index"`
	Data      datatypes.JSON `gorm:"column:data"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`

	// Nil until the first update.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"`
}

// TableName keeps the table name used by the migrations.
func (Pokemon) TableName() string {
	return "pokemons"
}
