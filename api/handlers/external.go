package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"pokeproxy/api/filters"
	externalservice "pokeproxy/api/services/external"
)

// ExternalHandler is the handler for the cached upstream reads.
type ExternalHandler struct {
	ExternalService *externalservice.ExternalService
}

type ExternalHandlerDependencies struct {
	ExternalService *externalservice.ExternalService
}

// NewExternalHandler creates a new instance of the external handler.
func NewExternalHandler(deps *ExternalHandlerDependencies) *ExternalHandler {
	registerFieldNames()
	return &ExternalHandler{
		ExternalService: deps.ExternalService,
	}
}

// ListPokemons handles a page of the upstream list.
func (h *ExternalHandler) ListPokemons(c *gin.Context) {
	var qp filters.ExternalListParams
	if !bindQuery(c, &qp) {
		return
	}

	payload, err := h.ExternalService.ListPokemons(c.Request.Context(), filters.NewExternalListFilter(&qp))
	if err != nil {
		respondError(c, err)
		return
	}

	writeRaw(c, http.StatusOK, payload)
}

// GetPokemon handles a single upstream pokemon.
func (h *ExternalHandler) GetPokemon(c *gin.Context) {
	var pp filters.PokeIdURIParams
	if !bindURI(c, &pp) {
		return
	}

	var qp filters.ExternalPokemonParams
	if !bindQuery(c, &qp) {
		return
	}

	var (
		payload json.RawMessage
		err     error
	)
	if qp.View == filters.ViewSummary {
		payload, err = h.ExternalService.GetPokemonSummary(c.Request.Context(), pp.PokeId)
	} else {
		payload, err = h.ExternalService.GetPokemon(c.Request.Context(), pp.PokeId)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	writeRaw(c, http.StatusOK, payload)
}

// The payload is already serialized, write it untouched.
func writeRaw(c *gin.Context, status int, payload json.RawMessage) {
	c.Data(status, "application/json; charset=utf-8", payload)
}
