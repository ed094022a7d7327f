package client_test

import (
	"testing"

	"github.com/architeacher/netinventory/pkg/client"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		rate          float64
		expected      client.TrafficStatus
		expectedColor string
	}{
		{rate: -1, expected: client.TrafficNormal, expectedColor: "green"},
		{rate: 0, expected: client.TrafficNormal, expectedColor: "green"},
		{rate: 30, expected: client.TrafficNormal, expectedColor: "green"},
		{rate: 30.1, expected: client.TrafficModerate, expectedColor: "yellow"},
		{rate: 60, expected: client.TrafficModerate, expectedColor: "yellow"},
		{rate: 60.5, expected: client.TrafficHigh, expectedColor: "red"},
	}

	for _, tc := range cases {
		status := client.StatusOf(tc.rate)

		require.Equal(t, tc.expected, status, "rate %v", tc.rate)
		require.Equal(t, tc.expectedColor, status.Color(), "rate %v", tc.rate)
	}
}

func TestChartable(t *testing.T) {
	t.Parallel()

	devices := []client.Device{
		{ID: 1, Name: "idle", TrafficRate: 0},
		{ID: 2, Name: "busy", TrafficRate: 75},
		{ID: 3, Name: "broken", TrafficRate: -3},
		{ID: 4, Name: "quiet", TrafficRate: 0.5},
	}

	require.Equal(t, []client.Device{devices[1], devices[3]}, client.Chartable(devices))
	require.Empty(t, client.Chartable(nil))
}

func TestIsValidDottedIPv4(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"192.168.1.1":     true,
		"0.0.0.0":         true,
		"255.255.255.255": true,
		"010.001.0.1":     true,
		"256.1.1.1":       false,
		"1.1.1":           false,
		"1.1.1.1.1":       false,
		"1..1.1":          false,
		"a.b.c.d":         false,
		"-1.0.0.0":        false,
		"":                false,
	}

	for input, expected := range cases {
		require.Equal(t, expected, client.IsValidDottedIPv4(input), input)
	}
}
