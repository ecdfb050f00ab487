package aof

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverMissingFileIsEmptySuccess(t *testing.T) {
	result, err := Recover(filepath.Join(t.TempDir(), "does-not-exist.aof"))
	require.NoError(t, err)
	assert.Empty(t, result.Commands)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1.0, result.SuccessRate())
}

func TestWriterThenReaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.aof")
	w, err := OpenWriter(path, SyncAlways, zerolog.Nop())
	require.NoError(t, err)

	cmds := []Command{
		{TS: 1, Cmd: KindInsert, Collection: "fleet", Key: "truck1", GeoJSON: `{"type":"Point","coordinates":[116.3,39.9]}`},
		{TS: 2, Cmd: KindDelete, Collection: "fleet", Key: "truck1"},
		{TS: 3, Cmd: KindDrop, Collection: "fleet"},
	}
	for _, c := range cmds {
		require.NoError(t, w.Append(c))
	}
	require.NoError(t, w.Close())

	result, err := Recover(path)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Commands, 3)
	assert.Equal(t, cmds, result.Commands)
	assert.Equal(t, 1.0, result.SuccessRate())
}

func TestRecoverToleratesCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.aof")
	content := `{"ts":1,"cmd":"INSERT","collection":"c","key":"a","geojson":"{\"type\":\"Point\",\"coordinates\":[1,2]}"}
not json at all
{"ts":2,"cmd":"INSERT","collection":"c","key":"b","geojson":"not-geojson"}
{"ts":3,"cmd":"DELETE","collection":"c"}

{"ts":4,"cmd":"DROP","collection":"c"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	result, err := Recover(path)
	require.NoError(t, err)
	require.Len(t, result.Commands, 2)
	assert.Equal(t, KindInsert, result.Commands[0].Cmd)
	assert.Equal(t, KindDrop, result.Commands[1].Cmd)
	assert.Len(t, result.Errors, 3)
}

func TestSyncNoFlushesOnlyPastThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buffered.aof")
	w, err := OpenWriter(path, SyncNo, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append(Command{TS: 1, Cmd: KindDrop, Collection: "c"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size(), "a single small append should stay buffered under the No policy")
}

func TestParseSyncPolicy(t *testing.T) {
	cases := map[string]SyncPolicy{
		"always":   SyncAlways,
		"everysec": SyncEverySecond,
		"no":       SyncNo,
	}
	for s, want := range cases {
		got, err := ParseSyncPolicy(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSyncPolicy("bogus")
	assert.Error(t, err)
}

func TestCommandValidate(t *testing.T) {
	assert.NoError(t, Command{Cmd: KindInsert, Collection: "c", Key: "k", GeoJSON: "{}"}.Validate())
	assert.Error(t, Command{Cmd: KindInsert, Collection: "c"}.Validate())
	assert.NoError(t, Command{Cmd: KindDelete, Collection: "c", Key: "k"}.Validate())
	assert.Error(t, Command{Cmd: KindDelete, Collection: "c"}.Validate())
	assert.NoError(t, Command{Cmd: KindDrop, Collection: "c"}.Validate())
	assert.Error(t, Command{Cmd: KindDrop, Collection: ""}.Validate())
	assert.Error(t, Command{Cmd: "BOGUS", Collection: "c"}.Validate())
}

func ExampleCommand_jsonShape() {
	fmt.Println(KindInsert, KindDelete, KindDrop)
	// Output: INSERT DELETE DROP
}
