package loader

import (
	"context"
	"testing"

	"github.com/hupe1980/svscore/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	prefix string
	data   *dataset.Simple[float32]
}

func (s stubLoader) Accepts(tag string) bool { return len(tag) >= len(s.prefix) && tag[:len(s.prefix)] == s.prefix }
func (s stubLoader) Load(_ context.Context, _ string) (dataset.Dataset[float32], error) {
	return s.data, nil
}

func TestResolveUsesFirstAcceptingLoader(t *testing.T) {
	d, err := dataset.NewSimple([][]float32{{1, 2}})
	require.NoError(t, err)

	a := stubLoader{prefix: "a://", data: d}
	b := stubLoader{prefix: "b://"}

	got, err := Resolve(context.Background(), "a://thing", a, b)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestResolveErrorsWhenNoLoaderAccepts(t *testing.T) {
	_, err := Resolve(context.Background(), "unknown://thing")
	assert.Error(t, err)
}

func TestParseS3Tag(t *testing.T) {
	bucket, key, err := parseS3Tag("s3://my-bucket/path/to/vectors.svs")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "path/to/vectors.svs", key)

	_, _, err = parseS3Tag("s3://missing-key")
	assert.Error(t, err)
}

func TestParseMinioTag(t *testing.T) {
	bucket, key, err := parseMinioTag("minio://localhost:9000/my-bucket/path/to/vectors.svs")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "path/to/vectors.svs", key)

	_, _, err = parseMinioTag("minio://localhost:9000")
	assert.Error(t, err)
}
