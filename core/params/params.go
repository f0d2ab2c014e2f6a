package params

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QueryParams holds common list-endpoint paging parameters
type QueryParams struct {
	PageNumber int
	PageSize   int
}

// Normalized clamps paging values into a sane range
func (p QueryParams) Normalized() QueryParams {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}
