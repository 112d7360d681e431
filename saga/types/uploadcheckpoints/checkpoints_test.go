package uploadcheckpoints

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckpointRoundTrip(t *testing.T) {
	for cp := Accepted; cp <= Complete; cp++ {
		parsed, err := FromString(cp.String())
		require.NoError(t, err)
		require.Equal(t, cp, parsed)
	}

	_, err := FromString("Sealed")
	require.Error(t, err)
}

func TestCheckpointNext(t *testing.T) {
	require.Equal(t, Quoting, Accepted.Next())
	require.Equal(t, FeeCollecting, Quoted.Next())
	require.Equal(t, BridgeClaiming, BridgeAttested.Next())
	require.Equal(t, Finalizing, BlobStored.Next())
	require.Equal(t, Done, Complete.Next())
}
