package weather

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/yaculator/internal/domain/model"
)

const (
	coldTemperatureF = 35
	highWindMPH      = 20
	coldOrWindFactor = 0.9
	snowFactor       = 0.85
	rainFactor       = 0.92

	defaultTemperatureF = 60
	defaultWindMPH      = 10
)

// Period is one named forecast period, e.g. "Sunday".
type Period struct {
	Name          string
	Temperature   *float64
	WindSpeed     string
	ShortForecast string
}

// WindMPH parses the leading number of a wind string such as "10 to 15 mph".
// An empty or unparseable string yields the default.
func WindMPH(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return defaultWindMPH
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return defaultWindMPH
	}
	return n
}

// PeriodBoost scores a forecast period. Cold or wind and precipitation
// compound; snow or sleet takes precedence over rain.
func PeriodBoost(p Period) model.Environment {
	temp := float64(defaultTemperatureF)
	if p.Temperature != nil {
		temp = *p.Temperature
	}
	wind := p.WindSpeed
	if wind == "" {
		wind = fmt.Sprintf("%d mph", defaultWindMPH)
	}

	boost := NeutralBoost
	if temp < coldTemperatureF || WindMPH(wind) > highWindMPH {
		boost *= coldOrWindFactor
	}
	sf := p.ShortForecast
	switch {
	case strings.Contains(sf, "Snow") || strings.Contains(sf, "Sleet"):
		boost *= snowFactor
	case strings.Contains(sf, "Rain") || strings.Contains(sf, "Showers"):
		boost *= rainFactor
	}
	return model.Environment{
		Boost:     model.Round(boost, 3),
		Condition: fmt.Sprintf("%s°F, %s wind, %s", strconv.FormatFloat(temp, 'f', -1, 64), wind, sf),
	}
}

// dateLayouts are the schedule date formats we accept.
var dateLayouts = []string{
	"2006-01-02",
	"January 2 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"1/2/2006",
	"01/02/2006",
	time.RFC3339,
}

// GameDay returns the weekday name of a schedule date, or "Sunday" when the
// date does not parse.
func GameDay(date string) string {
	date = strings.TrimSpace(date)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Weekday().String()
		}
	}
	return time.Sunday.String()
}

// SelectPeriod scores the first period named after the game's weekday. With
// no matching period the boost is neutral.
func SelectPeriod(periods []Period, date string) model.Environment {
	day := GameDay(date)
	for _, p := range periods {
		if p.Name == day {
			return PeriodBoost(p)
		}
	}
	return model.Environment{Boost: NeutralBoost, Condition: ConditionNormal}
}
