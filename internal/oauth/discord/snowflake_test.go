package discord

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDeriveCreationTime_KnownID(t *testing.T) {
	got, err := DeriveCreationTime("896657711104667719")
	require.NoError(t, err)

	// floor(896657711104667719 / 2^22) + 1420070400000
	require.Equal(t, int64(1633850257422), got.UnixMilli())
	require.Equal(t, 2021, got.Year())
	require.Equal(t, time.UTC, got.Location())
}

func TestDeriveCreationTime_ZeroIsEpoch(t *testing.T) {
	got, err := DeriveCreationTime("0")
	require.NoError(t, err)
	require.Equal(t, EpochMs, got.UnixMilli())
	require.Equal(t, "2015-01-01T00:00:00Z", got.Format(time.RFC3339))
}

func TestDeriveCreationTime_Deterministic(t *testing.T) {
	a, err := DeriveCreationTime("175928847299117063")
	require.NoError(t, err)
	b, err := DeriveCreationTime("175928847299117063")
	require.NoError(t, err)
	require.True(t, a.Equal(b))
}

func TestDeriveCreationTime_Monotonic(t *testing.T) {
	ids := []string{
		"0",
		"4194303", // mismo ms que 0
		"4194304",
		"175928847299117063",
		"896657711104667719",
		"1100000000000000000",
		"18446744073709551615", // max uint64
	}
	var prev time.Time
	for i, id := range ids {
		got, err := DeriveCreationTime(id)
		require.NoError(t, err, id)
		if i > 0 {
			require.False(t, got.Before(prev), "%s decoded before %s", id, ids[i-1])
		}
		prev = got
	}
}

func TestDeriveCreationTime_Invalid(t *testing.T) {
	cases := []string{
		"",
		"-1",
		"abc",
		"12a",
		" 1",
		"1.5",
		"+7",
		"99999999999999999999999999999999999999999999999999", // fuera de rango
	}
	for _, id := range cases {
		_, err := DeriveCreationTime(id)
		require.Error(t, err, id)
		require.True(t, errors.Is(err, ErrDecode), id)

		var de *DecodeError
		require.ErrorAs(t, err, &de)
		require.Equal(t, id, de.ID)
	}
}
