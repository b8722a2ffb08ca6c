package route

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/finvet/internal/model"
)

var (
	quarterYearRe    = regexp.MustCompile(`(?i)\bq([1-4])\s*(?:of\s+)?(\d{4})\b`)
	yearQuarterRe    = regexp.MustCompile(`(?i)\b(\d{4})\s*q([1-4])\b`)
	ordinalQuarterRe = regexp.MustCompile(`(?i)\b(first|second|third|fourth)\s+quarter\s+(?:of\s+)?(\d{4})\b`)
	fiscalYearRe     = regexp.MustCompile(`(?i)\b(?:fy\s*|fiscal\s+(?:year\s+)?)(\d{4})\b`)
	bareYearRe       = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

var ordinalQuarters = map[string]model.PeriodKind{
	"first":  model.PeriodQ1,
	"second": model.PeriodQ2,
	"third":  model.PeriodQ3,
	"fourth": model.PeriodQ4,
}

// ParsePeriod extracts an explicit fiscal period from the text. Nil means no
// period was named; downstream treats that as "most recent available" and
// never invents a year.
func ParsePeriod(text string) *model.Period {
	if m := quarterYearRe.FindStringSubmatch(text); m != nil {
		return quarterPeriod(m[2], m[1])
	}
	if m := yearQuarterRe.FindStringSubmatch(text); m != nil {
		return quarterPeriod(m[1], m[2])
	}
	if m := ordinalQuarterRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[2])
		return &model.Period{Year: year, Kind: ordinalQuarters[strings.ToLower(m[1])]}
	}
	if m := fiscalYearRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		return &model.Period{Year: year, Kind: model.PeriodFY}
	}
	if m := bareYearRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		return &model.Period{Year: year, Kind: model.PeriodFY}
	}
	return nil
}

func quarterPeriod(yearStr, quarterStr string) *model.Period {
	year, _ := strconv.Atoi(yearStr)
	kinds := [...]model.PeriodKind{model.PeriodQ1, model.PeriodQ2, model.PeriodQ3, model.PeriodQ4}
	q, _ := strconv.Atoi(quarterStr)
	return &model.Period{Year: year, Kind: kinds[q-1]}
}
