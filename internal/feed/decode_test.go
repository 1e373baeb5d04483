package feed

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/speedwagon-io/openseat/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	payload := `[
		{"timestamp": "2024-11-30T09:00:00Z", "busyness": 4, "floor": "1st Floor"},
		{"timestamp": "2024-11-30T08:00:00Z", "busyness": 2, "floor": " 2nd Floor "}
	]`

	records, err := Decode([]byte(payload), time.UTC)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, time.Date(2024, 11, 30, 9, 0, 0, 0, time.UTC), records[0].Timestamp.UTC())
	assert.Equal(t, 4.0, records[0].Busyness)
	assert.Equal(t, "1st Floor", records[0].Floor)
	assert.Equal(t, "2nd Floor", records[1].Floor)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty body", ""},
		{"object", `{"records": []}`},
		{"empty array", `[]`},
		{"malformed", `[{"timestamp": }]`},
		{"missing timestamp", `[{"busyness": 3}]`},
		{"bad timestamp", `[{"timestamp": "yesterday", "busyness": 3}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.payload), time.UTC)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFeedUnavailable)
		})
	}
}

func TestDecode_RecordIndexInError(t *testing.T) {
	_, err := Decode([]byte(`[{"timestamp": "2024-11-30T08:00:00Z"}, {"timestamp": "nope"}]`), time.UTC)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}

func TestDecode_BusynessFallbacks(t *testing.T) {
	payload := `[
		{"timestamp": "2024-11-30T08:00:00Z"},
		{"timestamp": "2024-11-30T09:00:00Z", "busyness": null},
		{"timestamp": "2024-11-30T10:00:00Z", "busyness": "3.5"},
		{"timestamp": "2024-11-30T11:00:00Z", "busyness": "lots"},
		{"timestamp": "2024-11-30T12:00:00Z", "busyness": true},
		{"timestamp": "2024-11-30T13:00:00Z", "busyness": 2.25}
	]`

	records, err := Decode([]byte(payload), time.UTC)
	require.NoError(t, err)

	var got []float64
	for _, r := range records {
		got = append(got, r.Busyness)
	}
	assert.Equal(t, []float64{0, 0, 3.5, 0, 0, 2.25}, got)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 11, 30, 8, 0, 0, 0, time.UTC)

	tests := map[string]string{
		"rfc3339":        `"2024-11-30T08:00:00Z"`,
		"offset":         `"2024-11-30T10:00:00+02:00"`,
		"no zone":        `"2024-11-30T08:00:00"`,
		"minutes":        `"2024-11-30T08:00"`,
		"epoch seconds":  `"1732953600"`,
		"epoch millis":   `1732953600000`,
		"epoch num secs": `1732953600`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseTimestamp([]byte(raw), time.UTC)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}

	day, err := parseTimestamp([]byte(`"2024-11-30"`), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC), day)
}

func TestDecode_ZonelessTimestampsUseLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	payload := `[
		{"timestamp": "2024-11-30T08:00:00", "busyness": 2},
		{"timestamp": "2024-11-30 09:00:00", "busyness": 3},
		{"timestamp": "2024-11-30T10:00:00Z", "busyness": 4}
	]`

	records, err := Decode([]byte(payload), berlin)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 8, records[0].Timestamp.In(berlin).Hour())
	assert.Equal(t, 9, records[1].Timestamp.In(berlin).Hour())
	assert.True(t, time.Date(2024, 11, 30, 7, 0, 0, 0, time.UTC).Equal(records[0].Timestamp))

	// An explicit zone wins over the location.
	assert.Equal(t, 11, records[2].Timestamp.In(berlin).Hour())

	utc, err := Decode([]byte(`[{"timestamp": "2024-11-30T08:00:00"}]`), nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, utc[0].Timestamp.Location())
}

func TestPoints(t *testing.T) {
	base := time.Date(2024, 11, 30, 8, 0, 0, 0, time.UTC)
	records := []model.Record{
		{Timestamp: base.Add(2 * time.Hour), Busyness: 3, Floor: "1st Floor"},
		{Timestamp: base, Busyness: 1, Floor: "1st Floor"},
		{Timestamp: base.Add(time.Hour), Busyness: 5, Floor: "2nd Floor"},
	}

	all := Points(records, "")
	require.Len(t, all, 3)
	assert.Equal(t, []float64{1, 5, 3}, []float64{all[0].Value, all[1].Value, all[2].Value})

	first := Points(records, "1st floor")
	require.Len(t, first, 2)
	assert.Equal(t, base, first[0].Timestamp)
	assert.Equal(t, 3.0, first[1].Value)

	assert.Empty(t, Points(records, "Basement"))
}
