package templates

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/legend/internal/mapsession"
	"github.com/zjrosen/legend/internal/scenario"
)

func TestExampleNames(t *testing.T) {
	require.Equal(t, []string{"basemaps", "cycles"}, ExampleNames())
}

func TestExample_Unknown(t *testing.T) {
	_, err := Example("nope")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestExamples_ReplayCleanly(t *testing.T) {
	for _, name := range ExampleNames() {
		t.Run(name, func(t *testing.T) {
			data, err := Example(name)
			require.NoError(t, err)

			sc, err := scenario.Parse(data)
			require.NoError(t, err)

			s, err := mapsession.New(sc.SessionOptions(mapsession.Options{}))
			require.NoError(t, err)
			defer s.Close()

			report, err := scenario.NewRunner().Run(context.Background(), s, sc)
			require.NoError(t, err)
			require.Empty(t, report.Unexpected())
			require.NoError(t, s.Tree.Check())
		})
	}
}
