// Package unit converts purchase costs into cost per sale unit.
package unit

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	Weight Unit = "WEIGHT"
	Bunch  Unit = "BUNCH"
	Piece  Unit = "PIECE"
	Tray   Unit = "TRAY"
	Bag    Unit = "BAG"
	Box    Unit = "BOX"
	Bale   Unit = "BALE"
)

var aliases = map[string]Unit{
	"KG":    Weight,
	"KILO":  Weight,
	"UNIT":  Piece,
	"CRATE": Box,
}

// Parse accepts canonical names case-insensitively plus a few legacy aliases.
func Parse(s string) (Unit, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return "", false
	}
	if u, ok := aliases[v]; ok {
		return u, true
	}
	u := Unit(v)
	return u, u.Valid()
}

func (u Unit) String() string { return string(u) }

// Valid reports whether u can be used as a purchase unit.
func (u Unit) Valid() bool {
	switch u {
	case Weight, Bunch, Piece, Tray, Bag, Box, Bale:
		return true
	}
	return false
}

// Sellable reports whether u can be a variant's sale unit.
func (u Unit) Sellable() bool {
	switch u {
	case Weight, Bunch, Piece, Tray, Bag:
		return true
	}
	return false
}

// IsDiscrete is true for containers that are bought whole and weighed one by one.
func IsDiscrete(u Unit) bool {
	switch u {
	case Box, Bag, Bale, Bunch:
		return true
	}
	return false
}

// Config is a variant's unit configuration.
type Config struct {
	SaleUnit         Unit
	PurchaseUnit     Unit
	ConversionFactor *decimal.Decimal
}

func (c Config) Validate() error {
	if !c.SaleUnit.Sellable() {
		return &ConfigError{Field: "sale_unit", Reason: "unsupported sale unit " + string(c.SaleUnit)}
	}
	if c.PurchaseUnit != "" && !c.PurchaseUnit.Valid() {
		return &ConfigError{Field: "purchase_unit", Reason: "unsupported purchase unit " + string(c.PurchaseUnit)}
	}
	if c.ConversionFactor != nil {
		if !c.ConversionFactor.IsPositive() {
			return &ConfigError{Field: "conversion_factor", Reason: "must be greater than zero"}
		}
		if c.PurchaseUnit == "" {
			return &ConfigError{Field: "purchase_unit", Reason: "required when conversion_factor is set"}
		}
	}
	return nil
}

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Reason
}

// Purchase is the part of a lot the normalizer looks at.
type Purchase struct {
	Unit           Unit
	UnitCost       decimal.Decimal
	MeasuredWeight *decimal.Decimal
}

// Normalize returns the cost of one sale unit, or false when the pair cannot be converted.
func Normalize(p Purchase, cfg Config) (decimal.Decimal, bool) {
	pu := p.Unit
	if pu == "" {
		pu = cfg.PurchaseUnit
	}
	if pu == "" || !p.UnitCost.IsPositive() {
		return decimal.Zero, false
	}
	if pu == cfg.SaleUnit {
		return p.UnitCost, true
	}

	switch cfg.SaleUnit {
	case Weight:
		if !IsDiscrete(pu) {
			return decimal.Zero, false
		}
		if p.MeasuredWeight != nil && p.MeasuredWeight.IsPositive() {
			return p.UnitCost.Div(*p.MeasuredWeight), true
		}
		return byFactor(p.UnitCost, cfg.ConversionFactor)
	case Bunch:
		if pu == Bale {
			return byFactor(p.UnitCost, cfg.ConversionFactor)
		}
	case Piece:
		if pu == Box || pu == Bag {
			return byFactor(p.UnitCost, cfg.ConversionFactor)
		}
	case Bag, Tray:
		if pu == Box {
			return byFactor(p.UnitCost, cfg.ConversionFactor)
		}
	}
	return decimal.Zero, false
}

func byFactor(cost decimal.Decimal, factor *decimal.Decimal) (decimal.Decimal, bool) {
	if factor == nil || !factor.IsPositive() {
		return decimal.Zero, false
	}
	return cost.Div(*factor), true
}

// RoundUp returns the smallest multiple of step that is >= v.
func RoundUp(v, step decimal.Decimal) decimal.Decimal {
	if !step.IsPositive() {
		return v
	}
	return v.Div(step).Ceil().Mul(step)
}
