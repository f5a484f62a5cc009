package cache

import (
	"context"
	"sync"

	"github.com/Dosada05/competition-engine/models"
)

type memoryEntry struct {
	generation uint64
	data       []byte
}

type memoryStandingsCache struct {
	mu          sync.RWMutex
	entries     map[int]memoryEntry
	generations map[int]uint64
}

// NewMemoryStandingsCache keeps encoded tables in process memory without expiry.
// Serves single-process deployments without REDIS_URL and tests.
func NewMemoryStandingsCache() StandingsCache {
	return &memoryStandingsCache{
		entries:     make(map[int]memoryEntry),
		generations: make(map[int]uint64),
	}
}

func (c *memoryStandingsCache) Get(_ context.Context, competitionID int) ([]models.StandingsRow, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[competitionID]
	current := c.generations[competitionID]
	c.mu.RUnlock()
	if !ok || entry.generation != current {
		return nil, false, nil
	}
	rows, err := decodeStandings(entry.data)
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

func (c *memoryStandingsCache) Generation(_ context.Context, competitionID int) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[competitionID], nil
}

// Set drops rows computed under a generation that has since been invalidated.
func (c *memoryStandingsCache) Set(_ context.Context, competitionID int, generation uint64, rows []models.StandingsRow) error {
	data, err := encodeStandings(rows)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[competitionID] != generation {
		return nil
	}
	c.entries[competitionID] = memoryEntry{generation: generation, data: data}
	return nil
}

func (c *memoryStandingsCache) Invalidate(_ context.Context, competitionID int) error {
	c.mu.Lock()
	c.generations[competitionID]++
	delete(c.entries, competitionID)
	c.mu.Unlock()
	return nil
}
