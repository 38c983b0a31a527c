package perfstats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeAccumulator(t *testing.T) {
	a := TimeAccumulator{}
	require.Equal(t, time.Duration(0), a.Average())

	a.AddSample(30 * time.Millisecond)
	a.AddSample(10 * time.Millisecond)
	a.AddSample(20 * time.Millisecond)
	require.Equal(t, int64(3), a.Samples)
	require.Equal(t, 20*time.Millisecond, a.Average())
	require.Equal(t, 10*time.Millisecond, a.Min)
	require.Equal(t, 30*time.Millisecond, a.Max)

	a.Time(func() {})
	require.Equal(t, int64(4), a.Samples)
	require.Less(t, a.Min, 10*time.Millisecond)

	a.Reset()
	require.Equal(t, TimeAccumulator{}, a)
}
