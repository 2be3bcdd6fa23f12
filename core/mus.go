package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the stored domain types. The type set
// is small and stable, so the serializers are maintained by hand instead
// of carrying a code generator.
var (
	IDMUS          = idSer{}
	MaterialMUS    = materialSer{}
	SampleEssayMUS = sampleEssaySer{}
	ChunkMUS       = chunkSer{}
)

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

type materialSer struct{}

func (materialSer) Marshal(m Material, bs []byte) int {
	n := IDMUS.Marshal(m.Id, bs)
	n += marshalString(m.Title, bs[n:])
	n += marshalString(m.Content, bs[n:])
	n += marshalString(m.Category, bs[n:])
	n += marshalStringSlice(m.Keywords, bs[n:])
	n += marshalString(string(m.Difficulty), bs[n:])
	n += marshalString(m.Source, bs[n:])
	n += marshalTime(m.InsertedAt, bs[n:])
	n += marshalTime(m.UpdatedAt, bs[n:])
	return n
}

func (materialSer) Unmarshal(bs []byte) (m Material, n int, err error) {
	var c int
	if m.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if m.Title, c, err = unmarshalString(bs[n:]); err != nil {
		return
	}
	n += c
	if m.Content, c, err = unmarshalString(bs[n:]); err != nil {
		return
	}
	n += c
	if m.Category, c, err = unmarshalString(bs[n:]); err != nil {
		return
	}
	n += c
	if m.Keywords, c, err = unmarshalStringSlice(bs[n:]); err != nil {
		return
	}
	n += c
	var difficulty string
	if difficulty, c, err = unmarshalString(bs[n:]); err != nil {
		return
	}
	m.Difficulty = DifficultyLevel(difficulty)
	n += c
	if m.Source, c, err = unmarshalString(bs[n:]); err != nil {
		return
	}
	n += c
	if m.InsertedAt, c, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += c
	if m.UpdatedAt, c, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += c
	return
}

func (materialSer) Size(m Material) int {
	return IDMUS.Size(m.Id) +
		sizeString(m.Title) +
		sizeString(m.Content) +
		sizeString(m.Category) +
		sizeStringSlice(m.Keywords) +
		sizeString(string(m.Difficulty)) +
		sizeString(m.Source) +
		sizeTime(m.InsertedAt) +
		sizeTime(m.UpdatedAt)
}

type sampleEssaySer struct{}

func (sampleEssaySer) Marshal(e SampleEssay, bs []byte) int {
	n := IDMUS.Marshal(e.Id, bs)
	n += marshalString(e.Title, bs[n:])
	n += marshalString(e.Content, bs[n:])
	n += marshalString(string(e.EssayType), bs[n:])
	n += marshalString(string(e.Difficulty), bs[n:])
	n += varint.Int.Marshal(e.Score, bs[n:])
	n += marshalStringSlice(e.Highlights, bs[n:])
	n += marshalTime(e.InsertedAt, bs[n:])
	n += marshalTime(e.UpdatedAt, bs[n:])
	return n
}

func (sampleEssaySer) Unmarshal(bs []byte) (e SampleEssay, n int, err error) {
	var c int
	if e.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if e.Title, c, err = unmarshalString(bs[n:]); err != nil {
		return
	}
	n += c
	if e.Content, c, err = unmarshalString(bs[n:]); err != nil {
		return
	}
	n += c
	var essayType string
	if essayType, c, err = unmarshalString(bs[n:]); err != nil {
		return
	}
	e.EssayType = EssayType(essayType)
	n += c
	var difficulty string
	if difficulty, c, err = unmarshalString(bs[n:]); err != nil {
		return
	}
	e.Difficulty = DifficultyLevel(difficulty)
	n += c
	if e.Score, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += c
	if e.Highlights, c, err = unmarshalStringSlice(bs[n:]); err != nil {
		return
	}
	n += c
	if e.InsertedAt, c, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += c
	if e.UpdatedAt, c, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += c
	return
}

func (sampleEssaySer) Size(e SampleEssay) int {
	return IDMUS.Size(e.Id) +
		sizeString(e.Title) +
		sizeString(e.Content) +
		sizeString(string(e.EssayType)) +
		sizeString(string(e.Difficulty)) +
		varint.Int.Size(e.Score) +
		sizeStringSlice(e.Highlights) +
		sizeTime(e.InsertedAt) +
		sizeTime(e.UpdatedAt)
}

type chunkSer struct{}

func (chunkSer) Marshal(ch Chunk, bs []byte) int {
	n := IDMUS.Marshal(ch.Id, bs)
	n += marshalString(ch.Text, bs[n:])
	n += marshalStringMap(ch.Metadata, bs[n:])
	n += marshalString(ch.Source, bs[n:])
	n += varint.Int.Marshal(ch.Sequence, bs[n:])
	return n
}

func (chunkSer) Unmarshal(bs []byte) (ch Chunk, n int, err error) {
	var c int
	if ch.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if ch.Text, c, err = unmarshalString(bs[n:]); err != nil {
		return
	}
	n += c
	if ch.Metadata, c, err = unmarshalStringMap(bs[n:]); err != nil {
		return
	}
	n += c
	if ch.Source, c, err = unmarshalString(bs[n:]); err != nil {
		return
	}
	n += c
	if ch.Sequence, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += c
	return
}

func (chunkSer) Size(ch Chunk) int {
	return IDMUS.Size(ch.Id) +
		sizeString(ch.Text) +
		sizeStringMap(ch.Metadata) +
		sizeString(ch.Source) +
		varint.Int.Size(ch.Sequence)
}

// MarshalVector serializes a float32 vector (length-prefixed, IEEE 754 bits
// varint-encoded).
func MarshalVector(v []float32, bs []byte) int {
	n := varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return n
}

// UnmarshalVector deserializes a float32 vector.
func UnmarshalVector(bs []byte) ([]float32, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	v := make([]float32, length)
	for i := 0; i < length; i++ {
		bits, c, err := varint.Uint32.Unmarshal(bs[n:])
		if err != nil {
			return nil, n, err
		}
		v[i] = math.Float32frombits(bits)
		n += c
	}
	return v, n, nil
}

// SizeVector returns the serialized size of a float32 vector.
func SizeVector(v []float32) int {
	size := varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}

func marshalString(s string, bs []byte) int {
	n := varint.Int.Marshal(len(s), bs)
	return n + copy(bs[n:], s)
}

func unmarshalString(bs []byte) (string, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return "", n, err
	}
	if length < 0 || n+length > len(bs) {
		return "", n, ErrTruncatedData
	}
	return string(bs[n : n+length]), n + length, nil
}

func sizeString(s string) int {
	return varint.Int.Size(len(s)) + len(s)
}

func marshalStringSlice(ss []string, bs []byte) int {
	n := varint.Int.Marshal(len(ss), bs)
	for _, s := range ss {
		n += marshalString(s, bs[n:])
	}
	return n
}

func unmarshalStringSlice(bs []byte) ([]string, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}
	ss := make([]string, length)
	for i := 0; i < length; i++ {
		s, c, err := unmarshalString(bs[n:])
		if err != nil {
			return nil, n, err
		}
		ss[i] = s
		n += c
	}
	return ss, n, nil
}

func sizeStringSlice(ss []string) int {
	size := varint.Int.Size(len(ss))
	for _, s := range ss {
		size += sizeString(s)
	}
	return size
}

func marshalStringMap(m map[string]string, bs []byte) int {
	n := varint.Int.Marshal(len(m), bs)
	// Deterministic output is not required here; badger values are opaque.
	for k, v := range m {
		n += marshalString(k, bs[n:])
		n += marshalString(v, bs[n:])
	}
	return n
}

func unmarshalStringMap(bs []byte) (map[string]string, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}
	m := make(map[string]string, length)
	for i := 0; i < length; i++ {
		k, c, err := unmarshalString(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += c
		v, c, err := unmarshalString(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += c
		m[k] = v
	}
	return m, n, nil
}

func sizeStringMap(m map[string]string) int {
	size := varint.Int.Size(len(m))
	for k, v := range m {
		size += sizeString(k) + sizeString(v)
	}
	return size
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}
