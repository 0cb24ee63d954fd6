package database

// ChunkBuilder accumulates decoded rows into a container of type C.
// Grow is called once with the chunk size before any Append, so
// implementations can pre-size their storage.
type ChunkBuilder[C, T any] interface {
	Grow(hint int)
	Append(v T)
	Build() C
}

// SliceBuilder is the stock ChunkBuilder for []T containers.
// Build always returns a non-nil slice (empty on zero rows).
type SliceBuilder[T any] struct {
	buf []T
}

func (b *SliceBuilder[T]) Grow(hint int) {
	if b.buf == nil && hint > 0 {
		b.buf = make([]T, 0, hint)
	}
}

func (b *SliceBuilder[T]) Append(v T) {
	b.buf = append(b.buf, v)
}

func (b *SliceBuilder[T]) Build() []T {
	if b.buf == nil {
		return []T{}
	}
	return b.buf
}

// Combiner folds decoded rows into a container without append semantics:
// an empty container, a single-row container, and an associative merge.
// Combine must treat Empty as its identity.
type Combiner[C, T any] interface {
	Empty() C
	Single(v T) C
	Combine(a, b C) C
}

// SliceCombiner is a Combiner over []T. FetchChunkInto with a SliceBuilder
// is cheaper for slices; this is the reference Combiner and the fixture
// for checking the two accumulation paths agree.
type SliceCombiner[T any] struct{}

func (SliceCombiner[T]) Empty() []T           { return []T{} }
func (SliceCombiner[T]) Single(v T) []T       { return []T{v} }
func (SliceCombiner[T]) Combine(a, b []T) []T { return append(a, b...) }
