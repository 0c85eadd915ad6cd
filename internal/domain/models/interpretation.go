package models

import (
	"fmt"
	"time"
)

// Interpretation categories.
const (
	CategoryPlanetInSign  = "planet_in_sign"
	CategoryPlanetInHouse = "planet_in_house"
	CategoryAspect        = "aspect"
)

// Interpretation is admin-authored text attached to a chart feature.
type Interpretation struct {
	ID        string    `json:"id" db:"id"`
	Category  string    `json:"category" db:"category"`
	Key       string    `json:"key" db:"key"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type InterpretationCreate struct {
	Category string `json:"category" validate:"required,oneof=planet_in_sign planet_in_house aspect"`
	Key      string `json:"key" validate:"required,max=200"`
	Title    string `json:"title" validate:"required,max=300"`
	Content  string `json:"content" validate:"required"`
}

type InterpretationUpdate struct {
	Title   *string `json:"title" validate:"omitempty,max=300"`
	Content *string `json:"content"`
}

type InterpretationListRequest struct {
	Category string `query:"category" validate:"omitempty,oneof=planet_in_sign planet_in_house aspect"`
}

// SignKey is the interpretation key of a point standing in a sign, e.g. "Sun_Aries".
func SignKey(point string, sign Sign) string {
	return fmt.Sprintf("%s_%s", point, sign)
}

// HouseKey is the interpretation key of a point standing in a house, e.g. "Sun_house_1".
func HouseKey(point string, house int) string {
	return fmt.Sprintf("%s_house_%d", point, house)
}

// AspectKey is the interpretation key of an aspect, e.g. "Sun_Moon_Trine".
func AspectKey(a Aspect) string {
	return fmt.Sprintf("%s_%s_%s", a.Planet1, a.Planet2, a.AspectType)
}

// ChartReading groups the interpretations matched by one chart.
type ChartReading struct {
	ChartID string           `json:"chart_id"`
	Items   []Interpretation `json:"items"`
}
