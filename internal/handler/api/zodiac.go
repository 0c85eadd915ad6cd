package api

import (
	models "AstroChart/internal/domain/models"
	xhttp "AstroChart/pkg/http"

	"github.com/labstack/echo/v4"
)

type label struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type zodiacLabels struct {
	Lang    string  `json:"lang"`
	Signs   []label `json:"signs"`
	Points  []label `json:"points"`
	Aspects []label `json:"aspects"`
}

var (
	labelPoints = []string{
		models.NameAscendant, models.NameMidheaven,
		models.NameSun, models.NameMoon, models.NameMercury, models.NameVenus, models.NameMars,
		models.NameJupiter, models.NameSaturn, models.NameUranus, models.NameNeptune, models.NamePluto,
		models.NameNorthNode, models.NameChiron, models.NameSouthNode, models.NameLilith,
	}
	labelAspects = []models.AspectType{
		models.Conjunction, models.Sextile, models.Square, models.Trine, models.Opposition,
	}
)

// Zodiac returns display labels for signs, chart points and aspects.
func (h *ChartsHandler) Zodiac(c echo.Context) error {
	req := &models.LabelRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	out := zodiacLabels{Lang: req.Lang}
	for _, s := range models.Signs() {
		out.Signs = append(out.Signs, label{Name: s.String(), Label: s.Label(req.Lang)})
	}
	for _, p := range labelPoints {
		out.Points = append(out.Points, label{Name: p, Label: models.PointLabel(p, req.Lang)})
	}
	for _, a := range labelAspects {
		out.Aspects = append(out.Aspects, label{Name: string(a), Label: a.Label(req.Lang)})
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	return xhttp.SuccessResponse(c, out)
}
