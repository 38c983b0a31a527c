package rle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/toschilt/semantic-feature-detector-ts/pkg/nn"
)

func maskFromRows(rows ...string) *nn.BinaryMask {
	m := nn.NewBinaryMask(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				m.Set(x, y, 1)
			}
		}
	}
	return m
}

func testRLERoundTrip(t *testing.T, m *nn.BinaryMask) {
	r := Encode(m)
	require.Equal(t, m.Count(), r.Area())
	decoded, err := r.Decode()
	require.NoError(t, err)
	require.Equal(t, m, decoded)

	parsed, err := Parse(r.Height, r.Width, r.String())
	require.NoError(t, err)
	require.Equal(t, r.Counts, parsed.Counts)
}

func TestRLE(t *testing.T) {
	testRLERoundTrip(t, maskFromRows("."))
	testRLERoundTrip(t, maskFromRows("#"))
	testRLERoundTrip(t, maskFromRows(
		"....",
		".##.",
		".##.",
	))
	testRLERoundTrip(t, maskFromRows(
		"#..#",
		"#...",
		"####",
	))

	big := nn.NewBinaryMask(300, 200)
	for y := 50; y < 180; y++ {
		for x := 20; x < 260; x++ {
			if (x+y)%7 != 0 {
				big.Set(x, y, 1)
			}
		}
	}
	testRLERoundTrip(t, big)
}

func TestColumnMajor(t *testing.T) {
	r := Encode(maskFromRows(
		".#",
		"#.",
	))
	// Column 0 reads (0,1), column 1 reads (1,0)
	require.Equal(t, []uint32{1, 2, 1}, r.Counts)
	require.Equal(t, "121", r.String())

	r = Encode(maskFromRows("##"))
	require.Equal(t, []uint32{0, 2}, r.Counts)
}

func TestCompactString(t *testing.T) {
	cases := []struct {
		counts []uint32
		str    string
	}{
		{[]uint32{1, 2, 1}, "121"},
		{[]uint32{100, 5, 3, 2}, "T353M"},
		{[]uint32{0, 110}, "0^3"},
	}
	for _, c := range cases {
		r := &RLE{Height: 10, Width: 11, Counts: c.counts}
		require.Equal(t, c.str, r.String(), "counts %v", c.counts)
		parsed, err := Parse(10, 11, c.str)
		require.NoError(t, err)
		require.Equal(t, c.counts, parsed.Counts)
	}

	_, err := Parse(1, 1, "T")
	require.ErrorIs(t, err, ErrInvalidCounts)
	_, err = Parse(1, 1, "!")
	require.ErrorIs(t, err, ErrInvalidCounts)
}

func TestDecodeErrors(t *testing.T) {
	_, err := (&RLE{Height: 2, Width: 2, Counts: []uint32{1, 2}}).Decode()
	require.ErrorIs(t, err, ErrInvalidCounts)
	_, err = (&RLE{Height: 2, Width: 2, Counts: []uint32{1, 5}}).Decode()
	require.ErrorIs(t, err, ErrInvalidCounts)
}

func TestBounds(t *testing.T) {
	r := Encode(maskFromRows(
		".....",
		"..#..",
		"..##.",
		".....",
	))
	require.Equal(t, [4]int{2, 1, 2, 2}, r.Bounds())

	r = Encode(maskFromRows(
		"...#",
		"..#.",
	))
	require.Equal(t, [4]int{2, 0, 2, 2}, r.Bounds())

	require.Equal(t, [4]int{}, Encode(maskFromRows("...")).Bounds())
}

func TestJSON(t *testing.T) {
	r := Encode(maskFromRows(
		".#",
		"#.",
	))
	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `{"size":[2,2],"counts":"121"}`, string(b))

	var back RLE
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, *r, back)

	var uncompressed RLE
	require.NoError(t, json.Unmarshal([]byte(`{"size":[2,2],"counts":[1,2,1]}`), &uncompressed))
	require.Equal(t, *r, uncompressed)
}
