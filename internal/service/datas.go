package service

import (
	"time"

	"gestaogado/internal/dto"
)

// parseData reads a calendar date. Only the first ten characters are used, so
// "2024-03-01" and "2024-03-01T00:00:00-03:00" both mean March 1st; the result
// is midnight UTC and never drifts a day with the server's zone.
func parseData(s string) (time.Time, error) {
	if len(s) < len(dto.DataLayout) {
		return time.Time{}, falha(ErrDadosInvalidos, "data invalida: "+s)
	}
	t, err := time.Parse(dto.DataLayout, s[:len(dto.DataLayout)])
	if err != nil {
		return time.Time{}, falha(ErrDadosInvalidos, "data invalida: "+s)
	}
	return t, nil
}

// parseDataOpcional is parseData with a fallback for empty input.
func parseDataOpcional(s string, padrao time.Time) (time.Time, error) {
	if s == "" {
		y, m, d := padrao.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return parseData(s)
}

// parseInstante reads a weighing timestamp: RFC 3339 keeps the time of day,
// a bare date becomes midnight UTC, empty means now.
func parseInstante(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.UTC(), nil
	}
	if len(s) == len(dto.DataLayout) {
		return parseData(s)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, falha(ErrDadosInvalidos, "data/hora invalida: "+s)
	}
	return t.UTC(), nil
}

func formatData(t time.Time) string { return t.UTC().Format(dto.DataLayout) }

func formatDataPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatData(*t)
	return &s
}

func formatInstante(t time.Time) string { return t.UTC().Format(time.RFC3339) }
