package filesystem

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborfs/backend/internal/shared/types"
)

func seedTree(t *testing.T, p *Provider) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, p.MakeDirectory(ctx, fid("/proj/src")))
	require.NoError(t, p.Write(ctx, fid("/proj/README.md"), []byte("# proj"), types.WriteOptions{Create: true, Overwrite: true}))
	require.NoError(t, p.Write(ctx, fid("/proj/src/main.go"), []byte("package main"), types.WriteOptions{Create: true, Overwrite: true}))
}

func readTar(t *testing.T, r io.Reader) map[string][]byte {
	t.Helper()
	out := map[string][]byte{}
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if hdr.Typeflag == tar.TypeDir {
			out[hdr.Name] = nil
			continue
		}
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		out[hdr.Name] = data
	}
	return out
}

func TestExportPlainTar(t *testing.T) {
	p := newProvider(t)
	seedTree(t, p)

	var buf bytes.Buffer
	require.NoError(t, p.Export(context.Background(), fid("/proj"), CompressionNone, &buf))

	entries := readTar(t, &buf)
	assert.Equal(t, []byte("# proj"), entries["README.md"])
	assert.Equal(t, []byte("package main"), entries["src/main.go"])
	_, hasDir := entries["src/"]
	assert.True(t, hasDir)
}

func TestExportGzip(t *testing.T) {
	p := newProvider(t)
	seedTree(t, p)

	var buf bytes.Buffer
	require.NoError(t, p.Export(context.Background(), fid("/proj"), CompressionGzip, &buf))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	defer gz.Close()

	entries := readTar(t, gz)
	assert.Equal(t, []byte("package main"), entries["src/main.go"])
}

func TestExportMissingRoot(t *testing.T) {
	p := newProvider(t)

	var buf bytes.Buffer
	err := p.Export(context.Background(), fid("/ghost"), CompressionNone, &buf)
	require.Error(t, err)
}

func TestExportRejectsUnknownCompression(t *testing.T) {
	p := newProvider(t)
	seedTree(t, p)

	var buf bytes.Buffer
	err := p.Export(context.Background(), fid("/proj"), Compression("lz4"), &buf)
	require.Error(t, err)
}
