package migrations

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSource_VersionsArePairedAndOrdered(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)
	defer src.Close()

	v, err := src.First()
	require.NoError(t, err)
	require.Equal(t, uint(1), v)

	var versions []uint
	for {
		versions = append(versions, v)

		up, _, err := src.ReadUp(v)
		require.NoError(t, err)
		body, _ := io.ReadAll(up)
		up.Close()
		require.True(t, strings.Contains(string(body), "CREATE TABLE"))

		down, _, err := src.ReadDown(v)
		require.NoError(t, err)
		down.Close()

		next, err := src.Next(v)
		if err != nil {
			break
		}
		v = next
	}
	require.Equal(t, []uint{1, 2, 3}, versions)
}
