package dto

import "github.com/fekuna/omnipos-pricing-service/internal/model"

type SessionFilters struct {
	Status model.SessionStatus
	From   string // inclusive date key
	To     string // inclusive date key
}
