package dto

import (
	"bytes"
	"encoding/json"
	"time"
)

// PokemonCreate is the body of a record creation.
type PokemonCreate struct {
	Name   string          `json:"name" binding:"required"`
	PokeId *int            `json:"poke_id" binding:"omitempty,min=1"`
	Data   json.RawMessage `json:"data"`
}

// PokemonReplace is the body of a full update.
// Name is required, an absent or null data clears the stored payload.
type PokemonReplace struct {
	Name string          `json:"name" binding:"required"`
	Data json.RawMessage `json:"data"`
}

// PokemonPatch is the body of a partial update.
// Only non-null fields are applied.
type PokemonPatch struct {
	Name *string         `json:"name"`
	Data json.RawMessage `json:"data"`
}

// Pokemon is the record returned to the client.
type Pokemon struct {
	Id        uint            `json:"id"`
	Name      string          `json:"name"`
	PokeId    *int            `json:"poke_id"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at"`
}

// ImportQueued is returned when an import was accepted.
type ImportQueued struct {
	Status string `json:"status"`
	PokeId int    `json:"poke_id"`
}

// IsNullJSON reports if the raw value is absent or a JSON null.
func IsNullJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
