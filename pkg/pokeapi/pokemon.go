package pokeapi

import (
	"encoding/json"
	"fmt"

	apperrors "pokeproxy/pkg/errors"
	"pokeproxy/pkg/messages"
)

// Pokemon is the subset of the upstream pokemon used locally.
type Pokemon struct {
	ID      int         `json:"id"`
	Name    string      `json:"name"`
	Height  int         `json:"height"`
	Weight  int         `json:"weight"`
	Types   []TypeSlot  `json:"types"`
	Sprites SpriteLinks `json:"sprites"`

	// Full upstream payload.
	Raw json.RawMessage `json:"-"`
}

// TypeSlot is a single entry of the types list.
type TypeSlot struct {
	Slot int `json:"slot"`
	Type struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"type"`
}

// SpriteLinks holds the default sprites.
type SpriteLinks struct {
	FrontDefault *string `json:"front_default"`
	BackDefault  *string `json:"back_default"`
}

// Summary is the compact view of a pokemon.
type Summary struct {
	Name    string      `json:"name"`
	ID      int         `json:"id"`
	Height  int         `json:"height"`
	Weight  int         `json:"weight"`
	Types   []string    `json:"types"`
	Sprites SpriteLinks `json:"sprites"`
}

// Summarize converts a raw upstream pokemon into its summary.
func Summarize(raw json.RawMessage) (*Summary, error) {
	var pokemon Pokemon
	if err := json.Unmarshal(raw, &pokemon); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstream, fmt.Errorf("%s: %w", messages.FailedToParseMsg, err))
	}

	return pokemon.Summary(), nil
}

// Summary returns the compact view.
func (p *Pokemon) Summary() *Summary {
	types := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		types = append(types, t.Type.Name)
	}

	return &Summary{
		Name:    p.Name,
		ID:      p.ID,
		Height:  p.Height,
		Weight:  p.Weight,
		Types:   types,
		Sprites: p.Sprites,
	}
}
