package main

import (
	"encoding/json"
	"fmt"

	"AstroChart/internal/di"
	"AstroChart/internal/domain/models"
	xhttp "AstroChart/pkg/http"
	applogger "AstroChart/pkg/logger"

	"github.com/spf13/cobra"
)

// computeCmd prints one chart as JSON without touching any store.
func computeCmd(load configLoader) *cobra.Command {
	var (
		in          models.ChartInput
		houseSystem string
		lang        string
	)

	cmd := &cobra.Command{
		Use:     "compute",
		Short:   "Compute a natal chart and print it as JSON",
		Example: "  astrochart compute --date 1990-05-15 --time 14:30 --lat 50.4501 --lng 30.5234",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verrs := xhttp.Validate(&in); verrs != nil {
				b, _ := json.Marshal(verrs)
				return fmt.Errorf("invalid input: %s", b)
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if houseSystem != "" {
				cfg.Ephemeris.HouseSystem = houseSystem
			}

			l := applogger.Nop()
			eng, err := di.ProvideEphemeris(cfg, l)
			if err != nil {
				return err
			}
			zones, err := di.ProvideTimeZones(cfg, l)
			if err != nil {
				return err
			}
			calc, err := di.ProvideCalculator(cfg, eng, zones, l)
			if err != nil {
				return err
			}

			chart, err := calc.Compute(cmd.Context(), in)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if lang == models.LangUK {
				return enc.Encode(localize(chart))
			}
			return enc.Encode(chart)
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Date, "date", "", "birth date, YYYY-MM-DD")
	f.StringVar(&in.Time, "time", "", "local birth time, HH:MM")
	f.Float64Var(&in.Latitude, "lat", 0, "latitude in degrees, north positive")
	f.Float64Var(&in.Longitude, "lng", 0, "longitude in degrees, east positive")
	f.StringVar(&houseSystem, "house-system", "", "placidus, porphyry, equal or whole_sign")
	f.StringVar(&lang, "lang", models.LangEN, "label language for the output (en or uk)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

type localizedPosition struct {
	Name      string  `json:"name"`
	Sign      string  `json:"sign"`
	Degree    float64 `json:"degree"`
	House     *int    `json:"house,omitempty"`
	Longitude float64 `json:"longitude"`
	Retro     bool    `json:"retrograde"`
}

type localizedAspect struct {
	Planet1 string  `json:"planet1"`
	Planet2 string  `json:"planet2"`
	Aspect  string  `json:"aspect"`
	Orb     float64 `json:"orb"`
}

func localize(c models.Chart) map[string]interface{} {
	planets := make([]localizedPosition, 0, len(c.Planets))
	for _, p := range c.Planets {
		planets = append(planets, localizedPosition{
			Name:      models.PointLabel(p.Name, models.LangUK),
			Sign:      p.Sign.Label(models.LangUK),
			Degree:    p.Degree,
			House:     p.House,
			Longitude: p.Longitude,
			Retro:     p.Retrograde(),
		})
	}
	aspects := make([]localizedAspect, 0, len(c.Aspects))
	for _, a := range c.Aspects {
		aspects = append(aspects, localizedAspect{
			Planet1: models.PointLabel(a.Planet1, models.LangUK),
			Planet2: models.PointLabel(a.Planet2, models.LangUK),
			Aspect:  a.AspectType.Label(models.LangUK),
			Orb:     a.Orb,
		})
	}
	return map[string]interface{}{
		"planets":   planets,
		"houses":    c.Houses,
		"aspects":   aspects,
		"time_zone": c.TimeZone,
		"utc":       c.UTC,
	}
}
