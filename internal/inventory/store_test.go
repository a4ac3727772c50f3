package inventory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodflow/internal/models"
)

func writeFixture(t *testing.T, dir string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "full_inventory.json"), data, 0o644))
}

func TestLoadFullInventory(t *testing.T) {
	dir := t.TempDir()
	records := []models.IngredientRecord{
		{Name: "Tomato", Quantity: 12.5, Unit: "kg"},
		{Name: "Basil", Quantity: 2.0, Unit: "bunch"},
	}
	writeFixture(t, dir, records)

	store := NewStore(dir)
	loaded, err := store.LoadFullInventory()
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestLoadFullInventoryMissingSource(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.LoadFullInventory()
	assert.ErrorIs(t, err, ErrDataNotFound)
}

func TestLoadFullInventoryMalformedRecords(t *testing.T) {
	tests := []struct {
		name    string
		records []models.IngredientRecord
	}{
		{"missing name", []models.IngredientRecord{{Name: "", Quantity: 1}}},
		{"negative quantity", []models.IngredientRecord{{Name: "Tomato", Quantity: -2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFixture(t, dir, tt.records)

			_, err := NewStore(dir).LoadFullInventory()
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestWriteExpiringBatchNilBecomesEmptyList(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.WriteExpiringBatch(nil))

	data, err := os.ReadFile(filepath.Join(dir, "expiring_ingredients.json"))
	require.NoError(t, err)

	var batch []models.ExpiringItem
	require.NoError(t, json.Unmarshal(data, &batch))
	assert.NotNil(t, batch)
	assert.Empty(t, batch)
}

func TestAppendHistoryAccumulates(t *testing.T) {
	store := NewStore(t.TempDir())

	batches := [][]models.ExpiringItem{
		{{IngredientRecord: models.IngredientRecord{Name: "Tomato", Quantity: 3, Unit: "kg"}, DaysToExpire: 2}},
		{{IngredientRecord: models.IngredientRecord{Name: "Basil", Quantity: 1, Unit: "bunch"}, DaysToExpire: 1}},
		{},
	}
	for _, batch := range batches {
		require.NoError(t, store.AppendHistory(batch))
	}

	history, err := store.History()
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Oldest first, every entry intact.
	assert.Equal(t, "Tomato", history[0].Batch[0].Name)
	assert.Equal(t, "Basil", history[1].Batch[0].Name)
	assert.Empty(t, history[2].Batch)
	for _, entry := range history {
		assert.False(t, entry.Timestamp.IsZero())
	}
}

func TestAppendHistoryEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recent_expiring_ingredients.json"), nil, 0o644))

	store := NewStore(dir)
	require.NoError(t, store.AppendHistory(nil))

	history, err := store.History()
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAppendHistorySurvivesInterruptedWrite(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.AppendHistory([]models.ExpiringItem{
		{IngredientRecord: models.IngredientRecord{Name: "Tomato", Quantity: 3, Unit: "kg"}, DaysToExpire: 2},
	}))
	require.NoError(t, store.AppendHistory([]models.ExpiringItem{
		{IngredientRecord: models.IngredientRecord{Name: "Basil", Quantity: 1, Unit: "bunch"}, DaysToExpire: 1},
	}))

	// A writer that crashed mid-append leaves only a partial temp file
	// behind; the committed history file was never touched.
	stale := filepath.Join(dir, "recent_expiring_ingredients.json.tmp-crashed")
	require.NoError(t, os.WriteFile(stale, []byte(`[{"timestamp":`), 0o644))

	history, err := store.History()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Tomato", history[0].Batch[0].Name)
	assert.Equal(t, "Basil", history[1].Batch[0].Name)

	// The next append lands cleanly on top of the committed entries.
	require.NoError(t, store.AppendHistory(nil))
	history, err = store.History()
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestAppendHistoryFailedWriteKeepsCommittedEntries(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.AppendHistory([]models.ExpiringItem{
		{IngredientRecord: models.IngredientRecord{Name: "Cream", Quantity: 2, Unit: "l"}, DaysToExpire: 3},
	}))

	// A store whose data directory cannot be created fails the append
	// outright without producing any artifact.
	blocked := NewStore(filepath.Join(dir, "recent_expiring_ingredients.json", "nested"))
	assert.Error(t, blocked.AppendHistory(nil))

	history, err := store.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Cream", history[0].Batch[0].Name)
}

func TestAppendHistoryConcurrentAppendsLoseNothing(t *testing.T) {
	store := NewStore(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.AppendHistory([]models.ExpiringItem{
				{IngredientRecord: models.IngredientRecord{Name: "Cream", Quantity: 1, Unit: "l"}, DaysToExpire: 1},
			}))
		}()
	}
	wg.Wait()

	history, err := store.History()
	require.NoError(t, err)
	assert.Len(t, history, 10)
}

func TestWriteCurrentInventoryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	records := []models.IngredientRecord{{Name: "Spinach", Quantity: 1.2, Unit: "kg"}}
	require.NoError(t, store.WriteCurrentInventory(records))

	data, err := os.ReadFile(filepath.Join(dir, "current_inventory.json"))
	require.NoError(t, err)

	var loaded []models.IngredientRecord
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, records, loaded)
}
