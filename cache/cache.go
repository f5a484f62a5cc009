package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Dosada05/competition-engine/models"
)

var ErrCacheUnavailable = errors.New("cache unavailable")

// StandingsCache holds computed league tables keyed by competition.
// A miss is reported as ok == false with a nil error.
//
// Every Invalidate bumps the competition's generation. Readers take the
// generation before loading their snapshot and pass it to Set; a table
// computed under an older generation is never served.
type StandingsCache interface {
	Get(ctx context.Context, competitionID int) (rows []models.StandingsRow, ok bool, err error)
	Generation(ctx context.Context, competitionID int) (uint64, error)
	Set(ctx context.Context, competitionID int, generation uint64, rows []models.StandingsRow) error
	Invalidate(ctx context.Context, competitionID int) error
}

func standingsKey(competitionID int, generation uint64) string {
	return "standings:" + strconv.Itoa(competitionID) + ":g" + strconv.FormatUint(generation, 10)
}

func generationKey(competitionID int) string {
	return "standings:" + strconv.Itoa(competitionID) + ":gen"
}

func encodeStandings(rows []models.StandingsRow) ([]byte, error) {
	data, err := msgpack.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode standings: %w", err)
	}
	return data, nil
}

func decodeStandings(data []byte) ([]models.StandingsRow, error) {
	var rows []models.StandingsRow
	if err := msgpack.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode standings: %w", err)
	}
	return rows, nil
}

type noopStandingsCache struct{}

// NewNoopStandingsCache returns a cache that never stores anything.
func NewNoopStandingsCache() StandingsCache {
	return noopStandingsCache{}
}

func (noopStandingsCache) Get(context.Context, int) ([]models.StandingsRow, bool, error) {
	return nil, false, nil
}

func (noopStandingsCache) Generation(context.Context, int) (uint64, error) {
	return 0, nil
}

func (noopStandingsCache) Set(context.Context, int, uint64, []models.StandingsRow) error {
	return nil
}

func (noopStandingsCache) Invalidate(context.Context, int) error {
	return nil
}
