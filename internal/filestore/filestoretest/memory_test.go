package filestoretest

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.PutObject(ctx, "b", "k", strings.NewReader("x"), 1, "text/plain")
	assert.True(t, errs.IsNotFound(err))

	require.NoError(t, s.EnsureBucket(ctx, "b"))
	require.NoError(t, s.EnsureBucket(ctx, "b"))

	info, err := s.PutObject(ctx, "b", "a/one.json", strings.NewReader(`{"n":1}`), -1, "application/json")
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.Size)
	assert.NotEmpty(t, info.ETag)

	obj, err := s.GetObject(ctx, "b", "a/one.json")
	require.NoError(t, err)
	defer obj.Close()
	body, err := io.ReadAll(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, string(body))
	assert.Equal(t, "application/json", obj.Info().ContentType)

	_, err = s.StatObject(ctx, "b", "a/two.json")
	assert.True(t, errs.IsNotFound(err))
}

func TestStore_ListObjects(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureBucket(ctx, "b"))
	for _, k := range []string{"top.json", "a/1.json", "a/2.json", "b/1.json"} {
		_, err := s.PutObject(ctx, "b", k, strings.NewReader("{}"), 2, "application/json")
		require.NoError(t, err)
	}

	flat, err := s.ListObjects(ctx, "b", filestore.ListOptions{})
	require.NoError(t, err)
	require.Len(t, flat, 3)
	assert.Equal(t, "a/", flat[0].Key)
	assert.True(t, flat[0].IsDir)
	assert.Equal(t, "top.json", flat[2].Key)

	deep, err := s.ListObjects(ctx, "b", filestore.ListOptions{Prefix: "a/", Recursive: true})
	require.NoError(t, err)
	assert.Len(t, deep, 2)

	paged, err := s.ListObjects(ctx, "b", filestore.ListOptions{Recursive: true, Marker: "a/1.json", Limit: 2})
	require.NoError(t, err)
	require.Len(t, paged, 2)
	assert.Equal(t, "a/2.json", paged[0].Key)
	assert.Equal(t, "b/1.json", paged[1].Key)
}
