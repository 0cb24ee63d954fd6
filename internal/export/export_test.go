package export

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/koustreak/ChunkRi/internal/database"
	"github.com/koustreak/ChunkRi/internal/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowCursor serves scripted single-column rows.
type rowCursor struct {
	rows []string
	pos  int
}

func newRowCursor(rows ...string) *rowCursor { return &rowCursor{rows: rows, pos: -1} }

func (c *rowCursor) ID() string { return "export-test" }

func (c *rowCursor) Advance(context.Context) (bool, error) {
	c.pos++
	return c.pos < len(c.rows), nil
}

func (c *rowCursor) Scan(dest ...any) error {
	*dest[0].(*string) = c.rows[c.pos]
	return nil
}

func (c *rowCursor) SetFetchSize(int) error { return nil }

// uploadedPart records one PutObject call.
type uploadedPart struct {
	bucket      string
	key         string
	body        string
	size        int64
	contentType string
}

// fakeStore captures uploads and fails on demand.
type fakeStore struct {
	parts  []uploadedPart
	failAt int // fail the n-th upload (1-based), 0 disables
	err    error
}

func (s *fakeStore) Ping(context.Context) error { return nil }
func (s *fakeStore) Close() error               { return nil }

func (s *fakeStore) ListBuckets(context.Context) ([]filestore.BucketInfo, error) {
	return nil, nil
}

func (s *fakeStore) ListObjects(context.Context, string, filestore.ListOptions) ([]filestore.ObjectInfo, error) {
	return nil, nil
}

func (s *fakeStore) GetObject(context.Context, string, string) (filestore.Object, error) {
	return nil, nil
}

func (s *fakeStore) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, contentType string) (*filestore.ObjectInfo, error) {
	if s.failAt > 0 && len(s.parts)+1 == s.failAt {
		return nil, s.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.parts = append(s.parts, uploadedPart{
		bucket:      bucket,
		key:         key,
		body:        string(body),
		size:        size,
		contentType: contentType,
	})
	return &filestore.ObjectInfo{Key: key, Size: size}, nil
}

func (s *fakeStore) StatObject(context.Context, string, string) (*filestore.ObjectInfo, error) {
	return nil, nil
}

func (s *fakeStore) PresignGetURL(context.Context, string, string, time.Duration) (string, error) {
	return "", nil
}

type record struct {
	Name string `json:"name"`
}

func recordDecoder() database.RowDecoder[record] {
	return database.NewRowDecoder([]string{"text"}, func(cur database.Cursor) (record, error) {
		var r record
		if err := cur.Scan(&r.Name); err != nil {
			return record{}, err
		}
		return r, nil
	})
}

func TestRunSplitsIntoParts(t *testing.T) {
	store := &fakeStore{}
	exp := &Exporter{Store: store, Bucket: "exports", Prefix: "daily", ChunkSize: 2}
	rs := database.NewResultSet(newRowCursor("a", "b", "c", "d", "e"))

	sum, err := Run(context.Background(), exp, rs, recordDecoder())
	require.NoError(t, err)

	require.Len(t, store.parts, 3)
	assert.Equal(t, "daily/part-00001.ndjson", store.parts[0].key)
	assert.Equal(t, "daily/part-00002.ndjson", store.parts[1].key)
	assert.Equal(t, "daily/part-00003.ndjson", store.parts[2].key)

	assert.Equal(t, "{\"name\":\"a\"}\n{\"name\":\"b\"}\n", store.parts[0].body)
	assert.Equal(t, "{\"name\":\"e\"}\n", store.parts[2].body)

	assert.Equal(t, 3, sum.Parts)
	assert.Equal(t, 5, sum.Rows)

	var total int64
	for _, p := range store.parts {
		assert.Equal(t, "exports", p.bucket)
		assert.Equal(t, NDJSONContentType, p.contentType)
		assert.Equal(t, int64(len(p.body)), p.size)
		total += p.size
	}
	assert.Equal(t, total, sum.Bytes)
}

func TestRunSkipsTrailingEmptyPart(t *testing.T) {
	store := &fakeStore{}
	exp := &Exporter{Store: store, Bucket: "exports", ChunkSize: 2}
	rs := database.NewResultSet(newRowCursor("a", "b", "c", "d"))

	sum, err := Run(context.Background(), exp, rs, recordDecoder())
	require.NoError(t, err)

	assert.Len(t, store.parts, 2)
	assert.Equal(t, 2, sum.Parts)
	assert.Equal(t, 4, sum.Rows)
	assert.Equal(t, "part-00001.ndjson", store.parts[0].key, "no prefix means bare part names")
}

func TestRunEmptyResultSet(t *testing.T) {
	store := &fakeStore{}
	exp := &Exporter{Store: store, Bucket: "exports", ChunkSize: 3}
	rs := database.NewResultSet(newRowCursor())

	sum, err := Run(context.Background(), exp, rs, recordDecoder())
	require.NoError(t, err)
	assert.Empty(t, store.parts)
	assert.Equal(t, &Summary{}, sum)
}

func TestRunUploadFailure(t *testing.T) {
	uploadErr := errors.New("bucket does not exist")
	store := &fakeStore{failAt: 2, err: uploadErr}
	exp := &Exporter{Store: store, Bucket: "exports", ChunkSize: 2}
	rs := database.NewResultSet(newRowCursor("a", "b", "c", "d", "e"))

	_, err := Run(context.Background(), exp, rs, recordDecoder())
	require.Error(t, err)
	assert.ErrorIs(t, err, uploadErr)

	// The first part stays uploaded; nothing is rolled back.
	assert.Len(t, store.parts, 1)
}

func TestRunCustomContentType(t *testing.T) {
	store := &fakeStore{}
	exp := &Exporter{Store: store, Bucket: "exports", ChunkSize: 10, ContentType: "application/jsonl"}
	rs := database.NewResultSet(newRowCursor("a"))

	_, err := Run(context.Background(), exp, rs, recordDecoder())
	require.NoError(t, err)
	require.Len(t, store.parts, 1)
	assert.Equal(t, "application/jsonl", store.parts[0].contentType)
}
