package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/raidloot/internal/game/item"
	"github.com/cory-johannsen/raidloot/internal/game/location"
	"github.com/cory-johannsen/raidloot/internal/storage"
)

func TestRunFromPayload(t *testing.T) {
	p := &location.Payload{
		Location: "bigmap",
		Seed:     1 << 63,
		Static: []location.SpawnedLoot{
			{ID: "jacket", IsContainer: true, Items: item.Tree{{ID: "c"}, {ID: "a", ParentID: "c"}, {ID: "b", ParentID: "c"}}},
			{ID: "mounted", Items: item.Tree{{ID: "w"}}},
		},
		Dynamic: []location.SpawnedLoot{{ID: "sp", Items: item.Tree{{ID: "x"}}}},
	}
	r := storage.RunFromPayload(p, 3*time.Millisecond, "out/bigmap.json.zst")
	assert.Equal(t, "bigmap", r.Location)
	assert.Equal(t, uint64(1<<63), r.Seed)
	assert.Equal(t, 1, r.Containers)
	assert.Equal(t, 1, r.SpawnPoints)
	assert.Equal(t, 4, r.Items)
	assert.Equal(t, "out/bigmap.json.zst", r.ArchivePath)
	assert.Equal(t, 3*time.Millisecond, r.Elapsed)
}
