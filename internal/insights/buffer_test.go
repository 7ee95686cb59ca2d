package insights

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alert(city string) Anomaly {
	return Anomaly{Type: TypeWeatherAlert, City: city, Severity: SeverityHigh}
}

func TestBufferKeepsEverythingBelowHighWater(t *testing.T) {
	b := NewBuffer()
	for i := 0; i < 50; i++ {
		b.Add(alert(fmt.Sprintf("city-%d", i)))
	}
	assert.Equal(t, 50, b.Len())
}

func TestBufferTrimsToNewest(t *testing.T) {
	b := NewBuffer()
	for i := 0; i < 60; i++ {
		b.Add(alert(fmt.Sprintf("city-%d", i)))
	}

	require.Equal(t, 30, b.Len())

	snapshot := b.Snapshot()
	assert.Equal(t, "city-30", snapshot[0].City, "oldest surviving anomaly")
	assert.Equal(t, "city-59", snapshot[len(snapshot)-1].City, "newest anomaly survives")
}

func TestBufferBulkAddTrims(t *testing.T) {
	b := NewBuffer()
	batch := make([]Anomaly, 51)
	for i := range batch {
		batch[i] = alert(fmt.Sprintf("city-%d", i))
	}
	b.Add(batch...)

	assert.Equal(t, 30, b.Len())
}

func TestBufferAccumulatesAcrossAdds(t *testing.T) {
	b := NewBuffer()
	b.Add(alert("Tokyo"))
	b.Add(alert("Delhi"))

	snapshot := b.Snapshot()
	require.Len(t, snapshot, 2, "later adds must not displace earlier entries")
	assert.Equal(t, "Tokyo", snapshot[0].City)
	assert.Equal(t, "Delhi", snapshot[1].City)
}

func TestBufferSnapshotIsACopy(t *testing.T) {
	b := NewBuffer()
	b.Add(alert("Tokyo"))

	snapshot := b.Snapshot()
	snapshot[0].City = "Mutated"

	assert.Equal(t, "Tokyo", b.Snapshot()[0].City)
}
