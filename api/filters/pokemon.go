package filters

// URI params for the record endpoints.
type PokemonURIParams struct {
	Id uint `uri:"id" binding:"required,min=1"`
}

// URI params for the endpoints keyed by the upstream id.
type PokeIdURIParams struct {
	PokeId int `uri:"poke_id" binding:"required,min=1"`
}

// Query parameters for the record listing.
type PokemonListParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

type PokemonListFilter struct {
	Limit  int
	Offset int
}

func NewPokemonListFilter(qp *PokemonListParams) *PokemonListFilter {
	return &PokemonListFilter{
		Limit:  qp.Limit,
		Offset: qp.Offset,
	}
}

// Query parameters for the upstream listing, the upstream page size is capped.
type ExternalListParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

type ExternalListFilter struct {
	Limit  int
	Offset int
}

func NewExternalListFilter(qp *ExternalListParams) *ExternalListFilter {
	return &ExternalListFilter{
		Limit:  qp.Limit,
		Offset: qp.Offset,
	}
}

// Query parameters for the upstream lookup.
type ExternalPokemonParams struct {
	View string `form:"view" binding:"omitempty,oneof=raw summary"`
}

// Summary view of the upstream payload.
const ViewSummary = "summary"
