package database

import (
	"context"
	"fmt"
	"iter"
)

// Stream returns a lazy sequence of decoded rows covering the remainder of
// the result set. Rows are pulled from the server in chunks of size; the
// next chunk is fetched only after the consumer has drained the previous
// one, so a slow consumer applies backpressure all the way to the cursor.
//
// The sequence is finite and single-use. It ends after the first chunk
// that comes back shorter than size, since the cursor is exhausted at
// that point. A fetch or decode failure is yielded as a final zero-value
// element with the error; rows yielded before it remain valid. Breaking
// out of the loop stops the stream without another fetch. The cursor stays
// open either way and is still owned by the caller.
func Stream[T any](ctx context.Context, rs *ResultSet, size int, dec RowDecoder[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		if size < 1 {
			yield(zero, errInvalidInput(fmt.Sprintf("stream chunk size must be positive, got %d", size)))
			return
		}
		if err := rs.cur.SetFetchSize(size); err != nil {
			yield(zero, err)
			return
		}
		for {
			chunk, err := FetchChunk(ctx, rs, size, dec)
			if err != nil {
				yield(zero, err)
				return
			}
			for _, row := range chunk {
				if !yield(row, nil) {
					return
				}
			}
			if len(chunk) < size {
				return
			}
		}
	}
}
