package models

import (
	"fmt"
	"strings"
)

// Sign is one of the twelve 30° sectors of the ecliptic, starting at Aries.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

var signLabelsUK = [12]string{
	"Овен", "Телець", "Близнюки", "Рак", "Лев", "Діва",
	"Терези", "Скорпіон", "Стрілець", "Козеріг", "Водолій", "Риби",
}

// Signs returns the twelve signs in zodiac order.
func Signs() []Sign {
	out := make([]Sign, 12)
	for i := range out {
		out[i] = Sign(i)
	}
	return out
}

func (s Sign) String() string {
	if s < 0 || int(s) >= len(signNames) {
		return fmt.Sprintf("Sign(%d)", int(s))
	}
	return signNames[s]
}

// Label returns the display name of the sign for a language ("en" or "uk").
func (s Sign) Label(lang string) string {
	if lang == LangUK && s >= 0 && int(s) < len(signLabelsUK) {
		return signLabelsUK[s]
	}
	return s.String()
}

// MarshalText implements encoding.TextMarshaler.
func (s Sign) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sign) UnmarshalText(b []byte) error {
	v, err := ParseSign(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSign accepts an English or Ukrainian sign name.
func ParseSign(name string) (Sign, error) {
	for i := range signNames {
		if strings.EqualFold(name, signNames[i]) || name == signLabelsUK[i] {
			return Sign(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sign %q", name)
}

// AspectType names one of the five classified aspects.
type AspectType string

const (
	Conjunction AspectType = "Conjunction"
	Sextile     AspectType = "Sextile"
	Square      AspectType = "Square"
	Trine       AspectType = "Trine"
	Opposition  AspectType = "Opposition"
)

var aspectLabelsUK = map[AspectType]string{
	Conjunction: "Кон'юнкція",
	Sextile:     "Секстиль",
	Square:      "Квадрат",
	Trine:       "Тригон",
	Opposition:  "Опозиція",
}

// Label returns the display name of the aspect for a language.
func (a AspectType) Label(lang string) string {
	if lang == LangUK {
		if l, ok := aspectLabelsUK[a]; ok {
			return l
		}
	}
	return string(a)
}

// Languages supported by the display labels.
const (
	LangEN = "en"
	LangUK = "uk"
)

// Point names used in every chart.
const (
	NameSun       = "Sun"
	NameMoon      = "Moon"
	NameMercury   = "Mercury"
	NameVenus     = "Venus"
	NameMars      = "Mars"
	NameJupiter   = "Jupiter"
	NameSaturn    = "Saturn"
	NameUranus    = "Uranus"
	NameNeptune   = "Neptune"
	NamePluto     = "Pluto"
	NameChiron    = "Chiron"
	NameNorthNode = "North Node"
	NameSouthNode = "South Node"
	NameLilith    = "Lilith"
	NameAscendant = "Ascendant"
	NameMidheaven = "Midheaven"
)

var pointLabelsUK = map[string]string{
	NameSun:       "Сонце",
	NameMoon:      "Місяць",
	NameMercury:   "Меркурій",
	NameVenus:     "Венера",
	NameMars:      "Марс",
	NameJupiter:   "Юпітер",
	NameSaturn:    "Сатурн",
	NameUranus:    "Уран",
	NameNeptune:   "Нептун",
	NamePluto:     "Плутон",
	NameChiron:    "Хірон",
	NameNorthNode: "Північний вузол",
	NameSouthNode: "Південний вузол",
	NameLilith:    "Ліліт",
	NameAscendant: "Асцендент",
	NameMidheaven: "Середина Неба (MC)",
}

// PointLabel returns the display name of a chart point for a language.
func PointLabel(name, lang string) string {
	if lang == LangUK {
		if l, ok := pointLabelsUK[name]; ok {
			return l
		}
	}
	return name
}
