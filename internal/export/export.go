// Package export drains a query result set into object storage, one
// NDJSON part object per chunk. Memory stays bounded by the chunk size
// no matter how large the result set is.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/dustin/go-humanize"
	"github.com/koustreak/ChunkRi/internal/database"
	"github.com/koustreak/ChunkRi/internal/errs"
	"github.com/koustreak/ChunkRi/internal/filestore"
	"github.com/koustreak/ChunkRi/internal/logger"
)

// NDJSONContentType is the MIME type written when Exporter.ContentType
// is left empty.
const NDJSONContentType = "application/x-ndjson"

// Exporter uploads chunks of rows as sequentially numbered part objects
// (<prefix>/part-00001.ndjson, part-00002.ndjson, …).
type Exporter struct {
	Store  filestore.Store
	Bucket string

	// Prefix is the key prefix for part objects. May be empty.
	Prefix string

	// ChunkSize is the number of rows per part. Zero means
	// database.DefaultFetchSize.
	ChunkSize int

	// ContentType overrides the MIME type of uploaded parts.
	ContentType string
}

// Summary reports what one export run wrote.
type Summary struct {
	Parts int   // part objects uploaded
	Rows  int   // rows written across all parts
	Bytes int64 // total encoded bytes uploaded
}

// Run drains rs and uploads every chunk as one part object. The final
// short chunk becomes the last part; when the row count is an exact
// multiple of the chunk size no empty part is written. On error the
// parts already uploaded are left in place.
func Run[T any](ctx context.Context, e *Exporter, rs *database.ResultSet, dec database.RowDecoder[T]) (*Summary, error) {
	size := e.ChunkSize
	if size <= 0 {
		size = database.DefaultFetchSize
	}
	contentType := e.ContentType
	if contentType == "" {
		contentType = NDJSONContentType
	}

	log := logger.FromContext(ctx)
	sum := &Summary{}

	for part := 1; ; part++ {
		chunk, err := database.FetchChunk(ctx, rs, size, dec)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			break
		}

		body, err := encodeNDJSON(chunk)
		if err != nil {
			return nil, err
		}

		key := partKey(e.Prefix, part)
		if _, err := e.Store.PutObject(ctx, e.Bucket, key, bytes.NewReader(body), int64(len(body)), contentType); err != nil {
			return nil, err
		}

		sum.Parts++
		sum.Rows += len(chunk)
		sum.Bytes += int64(len(body))

		log.InfoWith("wrote export part", map[string]interface{}{
			"key":  key,
			"rows": len(chunk),
			"size": humanize.IBytes(uint64(len(body))),
		})

		if len(chunk) < size {
			break
		}
	}

	log.InfoWith("export complete", map[string]interface{}{
		"parts": sum.Parts,
		"rows":  sum.Rows,
		"size":  humanize.IBytes(uint64(sum.Bytes)),
	})
	return sum, nil
}

func encodeNDJSON[T any](rows []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "encoding row as JSON", err)
		}
	}
	return buf.Bytes(), nil
}

func partKey(prefix string, part int) string {
	name := fmt.Sprintf("part-%05d.ndjson", part)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
