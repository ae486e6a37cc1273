package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "pmstdd"}
	AddHelpJSONFlag(root)

	upload := &cobra.Command{Use: "upload", Short: "Upload corpus files", RunE: func(*cobra.Command, []string) error { return nil }}
	upload.Flags().String("dir", "", "Corpus directory")
	_ = upload.MarkFlagRequired("dir")
	upload.Flags().String("prefix", "standards/", "Target prefix")

	root.AddCommand(upload, &cobra.Command{Use: "secret", Hidden: true})
	return root
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(testTree())

	assert.Equal(t, "pmstdd", schema.Name)
	require.Len(t, schema.Subcommands, 1)

	upload := schema.Subcommands[0]
	assert.Equal(t, "upload", upload.Name)
	require.Len(t, upload.Flags, 2)

	byName := map[string]FlagSchema{}
	for _, f := range upload.Flags {
		byName[f.Name] = f
	}
	assert.True(t, byName["dir"].Required)
	assert.False(t, byName["prefix"].Required)
	assert.Equal(t, "standards/", byName["prefix"].Default)
}

func TestWriteSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchema(&buf, testTree()))

	var decoded CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "pmstdd", decoded.Name)
}

func TestFindCommand(t *testing.T) {
	root := testTree()
	assert.Equal(t, "upload", FindCommand(root, []string{"upload"}).Name())
	assert.Equal(t, "pmstdd", FindCommand(root, []string{"nope"}).Name())
	assert.Equal(t, "pmstdd", FindCommand(root, nil).Name())
}
