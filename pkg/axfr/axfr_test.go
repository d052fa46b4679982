package axfr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zonehound/zonehound/pkg/graph"
	"github.com/zonehound/zonehound/pkg/scope"
)

func newTestClient(t *testing.T, options Options) *Client {
	t.Helper()
	sc, err := scope.New([]string{"megacorpone.com"})
	require.NoError(t, err)
	client, err := New(options, sc, graph.NewMemory(sc))
	require.NoError(t, err)
	return client
}

func TestCommandArgs(t *testing.T) {
	client := newTestClient(t, Options{HostPath: "/usr/bin/host"})
	require.Equal(t,
		[]string{"/usr/bin/host", "-t", "axfr", "megacorpone.com"},
		client.commandArgs("megacorpone.com", ""))
	require.Equal(t,
		[]string{"/usr/bin/host", "-t", "axfr", "megacorpone.com", "10.0.0.53"},
		client.commandArgs("megacorpone.com", "10.0.0.53"))
}

func TestCommandArgsServiceOptions(t *testing.T) {
	client := newTestClient(t, Options{HostPath: "/usr/bin/host", IPVersion: 4, Port: 5353})
	require.Equal(t,
		[]string{"/usr/bin/host", "-4", "-t", "axfr", "-p", "5353", "megacorpone.com", "10.0.0.53"},
		client.commandArgs("megacorpone.com", "10.0.0.53"))
}

func TestWithDefaultPort(t *testing.T) {
	require.Equal(t,
		[]string{"1.1.1.1:53", "10.0.0.53:5353", "[2001:db8::1]:53"},
		withDefaultPort([]string{"1.1.1.1", "10.0.0.53:5353", "2001:db8::1"}))
}
