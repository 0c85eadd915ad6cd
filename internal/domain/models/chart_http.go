package models

// Requests for chart HTTP endpoints and message consumers.

type NatalChartCreate struct {
	Name          string  `json:"name" validate:"required,max=200"`
	BirthDate     string  `json:"birth_date" validate:"required,datetime=2006-01-02"`
	BirthTime     string  `json:"birth_time" validate:"required,datetime=15:04"`
	BirthLocation string  `json:"birth_location" validate:"max=500"`
	Latitude      float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude     float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// ChartInput returns the part of the request the calculator needs.
func (r NatalChartCreate) ChartInput() ChartInput {
	return ChartInput{
		Date:      r.BirthDate,
		Time:      r.BirthTime,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

// ChartInput is the civil birth moment and place.
type ChartInput struct {
	Date      string  `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Time      string  `json:"birth_time" validate:"required,datetime=15:04"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

type ChartListRequest struct {
	Limit int    `query:"limit" default:"100" validate:"gte=1,lte=100"`
	Since string `query:"since"`
}

type ChartBatchRequest struct {
	Charts []NatalChartCreate `json:"charts" validate:"required,min=1,max=50,dive"`
}

type LocationSearchRequest struct {
	Query string `json:"query" validate:"required,min=2,max=200"`
	Limit int    `json:"limit" default:"10" validate:"gte=1,lte=10"`
}

type LabelRequest struct {
	Lang string `query:"lang" default:"en" validate:"oneof=en uk"`
}
