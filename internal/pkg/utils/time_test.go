package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToEMRTimestamp(t *testing.T) {
	t.Run("subtracts three minutes and renders UTC with Z suffix", func(t *testing.T) {
		in := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
		assert.Equal(t, "2024-05-10T14:27:00Z", ToEMRTimestamp(in))
	})

	t.Run("converts zoned input to UTC before formatting", func(t *testing.T) {
		jakarta := time.FixedZone("WIB", 7*3600)
		in := time.Date(2024, 5, 10, 21, 30, 0, 0, jakarta)
		assert.Equal(t, "2024-05-10T14:27:00Z", ToEMRTimestamp(in))
	})

	t.Run("skew crosses midnight backwards", func(t *testing.T) {
		in := time.Date(2024, 5, 10, 0, 1, 0, 0, time.UTC)
		assert.Equal(t, "2024-05-09T23:58:00Z", ToEMRTimestamp(in))
	})

	t.Run("drops fractional seconds", func(t *testing.T) {
		in := time.Date(2024, 5, 10, 14, 30, 0, 999000000, time.UTC)
		assert.Equal(t, "2024-05-10T14:27:00Z", ToEMRTimestamp(in))
	})
}

func TestToEMRDate(t *testing.T) {
	in := time.Date(2024, 1, 2, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-02", ToEMRDate(in))
}

func TestParseEMRTimestamp(t *testing.T) {
	testcases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "rfc3339",
			input: "2024-01-02T08:00:00Z",
			want:  time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "fractional seconds with offset",
			input: "2024-01-02T08:00:00.000+07:00",
			want:  time.Date(2024, 1, 2, 8, 0, 0, 0, time.FixedZone("", 7*3600)),
		},
		{
			name:  "offset without colon",
			input: "2024-01-02T08:00:00.000+0700",
			want:  time.Date(2024, 1, 2, 8, 0, 0, 0, time.FixedZone("", 7*3600)),
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseEMRTimestamp(tc.input)
			assert.NoError(t, err)
			assert.True(t, tc.want.Equal(got))
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseEMRTimestamp("yesterday")
		assert.Error(t, err)
	})
}
