package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logolate/go_backend/internal/domain/catalog"
)

func bombon() catalog.Product {
	return catalog.Product{ID: "p-1", Name: "Bombón", Reference: "BOM-01", Price: 12.5, MinQuantity: 100}
}

func caramelo() catalog.Product {
	return catalog.Product{ID: "p-2", Name: "Caramelo", Reference: "CAR-01", Price: 8, MinQuantity: 50}
}

func TestAdd_NewLineUsesMinimum(t *testing.T) {
	s := NewStore()
	s.Add(bombon(), 0)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 100, lines[0].Quantity)
	assert.Equal(t, "Bombón", lines[0].DisplayName)
	assert.Equal(t, "BOM-01", lines[0].Reference)
	assert.Equal(t, 100, lines[0].MinQuantity)
}

func TestAdd_DefaultMinimumIsOne(t *testing.T) {
	s := NewStore()
	s.Add(catalog.Product{ID: "x"}, 0)
	assert.Equal(t, 1, s.TotalUnits())
}

func TestAdd_TwiceDoublesTheMinimum(t *testing.T) {
	s := NewStore()
	s.Add(bombon(), 0)
	s.Add(bombon(), 0)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 200, lines[0].Quantity)
}

func TestAdd_QuantityOverride(t *testing.T) {
	s := NewStore()
	s.Add(bombon(), 150)
	s.Add(bombon(), 10)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 160, lines[0].Quantity)
}

func TestAdd_LegacyIDIsTheKey(t *testing.T) {
	s := NewStore()
	p := catalog.Product{LegacyID: 7, Name: "Legacy"}
	s.Add(p, 0)
	s.Add(p, 0)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "7", lines[0].Key())
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestAdd_IdentitylessProductsNeverMerge(t *testing.T) {
	s := NewStore()
	s.Add(catalog.Product{Name: "sin id"}, 0)
	s.Add(catalog.Product{Name: "sin id"}, 0)

	assert.Len(t, s.Lines(), 2)
}

func TestTotalUnits_RemoveDecreasesByLineQuantity(t *testing.T) {
	s := NewStore()
	s.Add(bombon(), 0)
	s.Add(caramelo(), 0)
	require.Equal(t, 150, s.TotalUnits())

	s.Remove("p-2")
	assert.Equal(t, 100, s.TotalUnits())
	assert.Len(t, s.Lines(), 1)
}

func TestRemove_UnknownAndEmptyIDsAreNoops(t *testing.T) {
	s := NewStore()
	s.Add(bombon(), 0)
	s.Add(catalog.Product{Name: "sin id"}, 0)

	s.Remove("nope")
	s.Remove("")
	assert.Len(t, s.Lines(), 2)
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.Add(bombon(), 0)
	s.Clear()
	assert.Empty(t, s.Lines())
	assert.Equal(t, 0, s.TotalUnits())
}

func TestRemoveLines_KeepsLinesAddedAfterwards(t *testing.T) {
	s := NewStore()
	s.Add(bombon(), 0)
	s.Add(catalog.Product{Name: "sin id"}, 0)
	submitted := s.Lines()

	s.Add(caramelo(), 0)
	s.Add(catalog.Product{Name: "otro sin id"}, 0)
	s.RemoveLines(submitted)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "p-2", lines[0].Key())
	assert.Equal(t, "otro sin id", lines[1].DisplayName)
}

func TestSetQuantity_ClampsToMinimum(t *testing.T) {
	s := NewStore()
	s.Add(bombon(), 0)

	require.NoError(t, s.SetQuantity("p-1", 40))
	assert.Equal(t, 100, s.TotalUnits())

	require.NoError(t, s.SetQuantity("p-1", 250))
	assert.Equal(t, 250, s.TotalUnits())

	assert.ErrorIs(t, s.SetQuantity("missing", 1), ErrLineNotFound)
}

func TestValidateMinimums_RaisesOnlyUpward(t *testing.T) {
	s := NewStore()
	s.Add(bombon(), 30)
	s.Add(caramelo(), 80)

	changed := s.ValidateMinimums()
	assert.Equal(t, 1, changed)

	lines := s.Lines()
	assert.Equal(t, 100, lines[0].Quantity)
	assert.Equal(t, 80, lines[1].Quantity)
	assert.Equal(t, 0, s.ValidateMinimums())
}

func TestSubscribe_ReceivesCurrentThenEveryMutationInOrder(t *testing.T) {
	s := NewStore()
	s.Add(bombon(), 0)

	var totals []int
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		totals = append(totals, snap.TotalUnits)
	})

	s.Add(caramelo(), 0)
	s.Remove("p-1")
	s.Clear()
	unsubscribe()
	s.Add(bombon(), 0)
	unsubscribe()

	assert.Equal(t, []int{100, 150, 50, 0}, totals)
}

func TestSubscribe_SnapshotIsACopy(t *testing.T) {
	s := NewStore()
	var last Snapshot
	s.Subscribe(func(snap Snapshot) { last = snap })
	s.Add(bombon(), 0)

	last.Lines[0].Quantity = 1
	assert.Equal(t, 100, s.TotalUnits())
}

func TestSubscribe_MultipleSubscribers(t *testing.T) {
	s := NewStore()
	var a, b int
	unsubA := s.Subscribe(func(Snapshot) { a++ })
	s.Subscribe(func(Snapshot) { b++ })

	s.Add(bombon(), 0)
	unsubA()
	s.Add(bombon(), 0)

	assert.Equal(t, 2, a)
	assert.Equal(t, 3, b)
}
