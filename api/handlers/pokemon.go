package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pokeproxy/api/dto"
	"pokeproxy/api/filters"
	pokemonservice "pokeproxy/api/services/pokemon"
	apperrors "pokeproxy/pkg/errors"
	"pokeproxy/pkg/messages"
)

// PokemonHandler is the handler for the record endpoints.
type PokemonHandler struct {
	PokemonService *pokemonservice.PokemonService
}

type PokemonHandlerDependencies struct {
	PokemonService *pokemonservice.PokemonService
}

// NewPokemonHandler creates a new instance of the pokemon handler.
func NewPokemonHandler(deps *PokemonHandlerDependencies) *PokemonHandler {
	registerFieldNames()
	return &PokemonHandler{
		PokemonService: deps.PokemonService,
	}
}

// CreatePokemon handles the record creation.
func (h *PokemonHandler) CreatePokemon(c *gin.Context) {
	var body dto.PokemonCreate
	if !bindJSON(c, &body) {
		return
	}

	result, err := h.PokemonService.Create(c.Request.Context(), body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListPokemons handles a page of records.
func (h *PokemonHandler) ListPokemons(c *gin.Context) {
	var qp filters.PokemonListParams
	if !bindQuery(c, &qp) {
		return
	}

	result, err := h.PokemonService.List(c.Request.Context(), filters.NewPokemonListFilter(&qp))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPokemon handles a single record by the internal id.
func (h *PokemonHandler) GetPokemon(c *gin.Context) {
	var pp filters.PokemonURIParams
	if !bindURI(c, &pp) {
		return
	}

	result, err := h.PokemonService.Get(c.Request.Context(), pp.Id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPokemonByPokeId handles a single record by the upstream id.
func (h *PokemonHandler) GetPokemonByPokeId(c *gin.Context) {
	var pp filters.PokeIdURIParams
	if !bindURI(c, &pp) {
		return
	}

	result, err := h.PokemonService.GetByPokeId(c.Request.Context(), pp.PokeId)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReplacePokemon handles the full update.
func (h *PokemonHandler) ReplacePokemon(c *gin.Context) {
	var pp filters.PokemonURIParams
	if !bindURI(c, &pp) {
		return
	}

	var body dto.PokemonReplace
	if !bindJSON(c, &body) {
		return
	}

	result, err := h.PokemonService.Replace(c.Request.Context(), pp.Id, body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// PatchPokemon handles the partial update.
func (h *PokemonHandler) PatchPokemon(c *gin.Context) {
	var pp filters.PokemonURIParams
	if !bindURI(c, &pp) {
		return
	}

	var body dto.PokemonPatch
	if !bindJSON(c, &body) {
		return
	}

	result, err := h.PokemonService.Patch(c.Request.Context(), pp.Id, body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeletePokemon handles the record removal.
func (h *PokemonHandler) DeletePokemon(c *gin.Context) {
	var pp filters.PokemonURIParams
	if !bindURI(c, &pp) {
		return
	}

	deleted, err := h.PokemonService.Delete(c.Request.Context(), pp.Id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		respondError(c, apperrors.ErrNotFound.WithMessage(messages.CouldNotFindId, pp.Id))
		return
	}

	c.Status(http.StatusNoContent)
}
