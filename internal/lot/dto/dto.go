package dto

type LotFilters struct {
	SessionID string
	VariantID string
}
