package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pokeproxy/api/dto"
	"pokeproxy/api/filters"
	"pokeproxy/importer"
)

// ImportHandler triggers the background imports.
type ImportHandler struct {
	Dispatcher importer.Dispatcher
}

type ImportHandlerDependencies struct {
	Dispatcher importer.Dispatcher
}

// NewImportHandler creates a new instance of the import handler.
func NewImportHandler(deps *ImportHandlerDependencies) *ImportHandler {
	registerFieldNames()
	return &ImportHandler{
		Dispatcher: deps.Dispatcher,
	}
}

// ImportPokemon queues the import of an upstream pokemon.
// The outcome is only visible in the job logs.
func (h *ImportHandler) ImportPokemon(c *gin.Context) {
	var pp filters.PokeIdURIParams
	if !bindURI(c, &pp) {
		return
	}

	if err := h.Dispatcher.Dispatch(c.Request.Context(), pp.PokeId); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ImportQueued{Status: "queued", PokeId: pp.PokeId})
}
