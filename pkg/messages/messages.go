package messages

const (
	BadStatusCodeMsg   = "API returned status code %d on URL %s"
	CacheReadFailed    = "cache read failed, treating as miss"
	CacheWriteFailed   = "cache write failed, response not cached"
	CouldNotFindId     = "couldn't find the pokemon with id %d"
	CouldNotFindPokeId = "couldn't find the pokemon with poke_id %d"
	DuplicatedPokeId   = "a pokemon with poke_id %d already exists"
	FailedToParseMsg   = "failed to parse API response"
	FiltersNotNil      = "filters can't be nil"
	NameRequired       = "name is required"
	RequestFailedMsg   = "API request failed on URL %s"
	UpstreamNotFound   = "pokemon not found on the upstream API"
)
