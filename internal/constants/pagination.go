package constants

// Pagination Query Parameters
const (
	QueryParamPage  = "page"
	QueryParamLimit = "limit"
	QueryParamOrder = "order"
)

// Pagination Limits
const (
	DefaultLimit = 5
	MaxLimit     = 100
)

// Logical filter fields accepted by the entity sources
const (
	FilterFieldClient = "client"
)
