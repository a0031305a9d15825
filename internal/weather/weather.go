// Package weather looks up a place with Open-Meteo geocoding and reports today's forecast.
package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/pscheid92/nano/internal/httpapi"
)

const (
	defaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	iconURLFormat      = "https://cdn.jsdelivr.net/gh/manifestinteractive/weather-underground-icons/dist/icons/white/png/128x128/%s.png"

	// FailureMessage is the reply for every lookup failure.
	FailureMessage = "Weather could not be found :("

	embedColor = 229<<16 | 100<<8 | 255
)

type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

// ParseUnits defaults to metric for anything but "imperial".
func ParseUnits(s string) Units {
	if strings.EqualFold(s, string(Imperial)) {
		return Imperial
	}
	return Metric
}

func (u Units) query() url.Values {
	if u == Imperial {
		return url.Values{
			"temperature_unit":   {"fahrenheit"},
			"windspeed_unit":     {"mph"},
			"precipitation_unit": {"inch"},
		}
	}
	return url.Values{
		"temperature_unit":   {"celsius"},
		"windspeed_unit":     {"kmh"},
		"precipitation_unit": {"mm"},
	}
}

type Location struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Admin1      string  `json:"admin1"`
	CountryCode string  `json:"country_code"`
	Timezone    string  `json:"timezone"`
}

// Label is "Name, Region, CC" with empty parts dropped.
func (l Location) Label() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Name, l.Admin1, l.CountryCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type Forecast struct {
	DailyUnits struct {
		ApparentTemperatureMax string `json:"apparent_temperature_max"`
	} `json:"daily_units"`
	Daily struct {
		Time                        []string  `json:"time"`
		WeatherCode                 []int     `json:"weathercode"`
		ApparentTemperatureMax      []float64 `json:"apparent_temperature_max"`
		ApparentTemperatureMin      []float64 `json:"apparent_temperature_min"`
		PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

func (f *Forecast) complete() bool {
	d := f.Daily
	return len(d.WeatherCode) > 0 && len(d.ApparentTemperatureMax) > 0 &&
		len(d.ApparentTemperatureMin) > 0 && len(d.PrecipitationProbabilityMax) > 0
}

type Service struct {
	client      *httpapi.Client
	GeocodeURL  string
	ForecastURL string
}

func NewService(client *httpapi.Client) *Service {
	return &Service{
		client:      client,
		GeocodeURL:  defaultGeocodeURL,
		ForecastURL: defaultForecastURL,
	}
}

func (s *Service) FindLocation(ctx context.Context, name string) (*Location, error) {
	var resp struct {
		Results []Location `json:"results"`
	}
	q := url.Values{"name": {name}, "count": {"1"}}
	if err := s.client.GetJSON(ctx, s.GeocodeURL, q, &resp); err != nil {
		return nil, apperrors.ExternalError("geocoding failed", err).WithField("location", name)
	}
	if len(resp.Results) == 0 {
		return nil, apperrors.NotFoundError(FailureMessage).WithField("location", name)
	}
	return &resp.Results[0], nil
}

func (s *Service) Forecast(ctx context.Context, loc *Location, units Units) (*Forecast, error) {
	q := units.query()
	q.Set("daily", "weathercode,apparent_temperature_max,apparent_temperature_min,precipitation_probability_max")
	q.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	q.Set("timezone", loc.Timezone)

	var f Forecast
	if err := s.client.GetJSON(ctx, s.ForecastURL, q, &f); err != nil {
		return nil, apperrors.ExternalError("forecast failed", err).WithField("location", loc.Name)
	}
	if !f.complete() {
		return nil, apperrors.ExternalError("forecast missing daily data", nil).WithField("location", loc.Name)
	}
	return &f, nil
}

// Lookup geocodes name and builds the forecast embed.
func (s *Service) Lookup(ctx context.Context, name string, units Units) (*discordgo.MessageEmbed, error) {
	loc, err := s.FindLocation(ctx, name)
	if err != nil {
		return nil, err
	}
	f, err := s.Forecast(ctx, loc, units)
	if err != nil {
		return nil, err
	}
	return Embed(loc, f), nil
}

// Embed renders today's entry of f.
func Embed(loc *Location, f *Forecast) *discordgo.MessageEmbed {
	unit := f.DailyUnits.ApparentTemperatureMax
	d := f.Daily
	return &discordgo.MessageEmbed{
		Title: "Weather for " + loc.Label(),
		Color: embedColor,
		Image: &discordgo.MessageEmbedImage{URL: IconURL(d.WeatherCode[0])},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Low", Value: formatNumber(d.ApparentTemperatureMin[0]) + " " + unit, Inline: true},
			{Name: "High", Value: formatNumber(d.ApparentTemperatureMax[0]) + " " + unit, Inline: true},
			{Name: "Precipitation Chance", Value: formatNumber(d.PrecipitationProbabilityMax[0]) + "%", Inline: true},
		},
	}
}

// IconURL maps a WMO weather code to a Weather Underground icon.
func IconURL(wmo int) string {
	var name string
	switch wmo {
	case 0:
		name = "clear"
	case 1:
		name = "mostlysunny"
	case 2:
		name = "partlycloudy"
	case 3:
		name = "cloudy"
	case 51, 53, 55, 80, 81, 82:
		name = "chancerain"
	case 56, 57:
		name = "chancesleet"
	case 61, 63, 65:
		name = "rain"
	case 71, 73, 75, 77:
		name = "snow"
	case 85, 86:
		name = "chancesnow"
	case 95, 96, 99:
		name = "tstorms"
	default:
		name = "unknown"
	}
	return fmt.Sprintf(iconURLFormat, name)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
