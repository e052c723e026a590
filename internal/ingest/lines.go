package ingest

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gridiron_intel/ingestion/internal/metrics"
	"gridiron_intel/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// lineColumns maps accepted CSV headers to the field they fill.
// The long names are the historical closing-line export's own headers.
var lineColumns = map[string]string{
	"date":              "date",
	"home":              "home",
	"home team":         "home",
	"spread":            "spread",
	"home line close":   "spread",
	"total":             "total",
	"over under":        "total",
	"over/under":        "total",
	"total score close": "total",
}

// ReadLines parses a closing-lines CSV with a header row.
// Rows without a date, a home team or either number are dropped;
// a number that does not parse is treated as missing.
func ReadLines(r io.Reader) ([]models.ClosingLine, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read lines header: %w", err)
	}

	index := make(map[string]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(name, "_", " ")))
		if field, ok := lineColumns[name]; ok {
			if _, seen := index[field]; !seen {
				index[field] = i
			}
		}
	}
	for _, field := range []string{"date", "home"} {
		if _, ok := index[field]; !ok {
			return nil, fmt.Errorf("lines file has no %s column", field)
		}
	}
	_, hasSpread := index["spread"]
	_, hasTotal := index["total"]
	if !hasSpread && !hasTotal {
		return nil, errors.New("lines file has neither a spread nor a total column")
	}

	var lines []models.ClosingLine
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read lines: %w", err)
		}

		date := lineDate(cell(row, index, "date"))
		home := cell(row, index, "home")
		if date == "" || home == "" {
			continue
		}

		line := models.ClosingLine{
			Date:      date,
			HomeTeam:  home,
			Spread:    number(cell(row, index, "spread")),
			OverUnder: number(cell(row, index, "total")),
		}
		if line.HasLine() {
			lines = append(lines, line)
		}
	}

	return lines, nil
}

func cell(row []string, index map[string]int, field string) string {
	i, ok := index[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// lineDate keeps the YYYY-MM-DD prefix of a date or timestamp cell
func lineDate(v string) string {
	if len(v) < 10 {
		return ""
	}
	if _, err := time.Parse(time.DateOnly, v[:10]); err != nil {
		return ""
	}
	return v[:10]
}

func number(v string) sql.NullFloat64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// SyncLines matches closing lines to a stored season by (Eastern date, home team)
// and saves them. The exact home name is tried first, then the franchise for NFL
// so relocated teams still match.
func (s *Syncer) SyncLines(ctx context.Context, sport models.Sport, season int, seasonType string, lines []models.ClosingLine) (*SyncResult, error) {
	start := time.Now()
	seasonType = strings.ToUpper(seasonType)
	result := &SyncResult{Kind: KindLines, Sport: sport, Results: make(map[string]int)}

	log.Info().
		Str("sport", sport.String()).
		Int("season", season).
		Str("season_type", seasonType).
		Int("lines", len(lines)).
		Msg("Importing closing lines")

	games, err := s.games.ListBySeason(ctx, sport, season, seasonType)
	if err != nil {
		s.finish(result, start, err)
		return result, err
	}

	byName := make(map[[2]string]models.ClosingLine, len(lines))
	byFranchise := make(map[[2]string]models.ClosingLine, len(lines))
	for _, l := range lines {
		byName[[2]string{l.Date, l.HomeTeam}] = l
		byFranchise[[2]string{l.Date, models.Franchise(l.HomeTeam)}] = l
	}

	for _, game := range games {
		if err := ctx.Err(); err != nil {
			s.finish(result, start, err)
			return result, err
		}

		date := game.LineDate()
		line, ok := byName[[2]string{date, game.HomeName}]
		if !ok && sport == models.SportNFL {
			line, ok = byFranchise[[2]string{date, game.HomeFranchise}]
		}
		if !ok {
			result.Unmatched++
			continue
		}

		if err := s.games.UpdateLines(ctx, sport, game.GameID, line.Spread, line.OverUnder); err != nil {
			log.Warn().Err(err).Str("game_id", game.GameID).Msg("Failed to save closing lines")
			result.skip("game %q: %v", game.GameID, err)
			continue
		}
		result.Synced++

		game.Spread, game.OverUnder = line.Spread, line.OverUnder
		if r := game.SpreadResult(); r != "" {
			result.Results["spread_"+strings.ToLower(r)]++
		}
		if r := game.TotalResult(); r != "" {
			result.Results["total_"+strings.ToLower(r)]++
		}
	}

	s.finish(result, start, nil)
	metrics.RecordLinesImported(sport.String(), result.Synced)
	return result, nil
}
