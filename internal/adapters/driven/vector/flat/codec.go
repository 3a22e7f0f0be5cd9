package flat

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path/filepath"
)

// ErrCorrupt is returned when persisted index data fails validation.
var ErrCorrupt = errors.New("flat: corrupt index data")

const (
	formatVersion uint16 = 1
	headerSize           = 4 + 2 + 2 + 4 + 4
	// maxElements bounds allocations when reading untrusted headers.
	maxElements = 1 << 28
)

var magic = [4]byte{'D', 'I', 'V', 'X'}

// WriteTo serialises the index: magic, version, flags, dimension, count,
// little-endian float32 data and a trailing CRC32 of everything before it.
func (i *Index) WriteTo(w io.Writer) (int64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var buf bytes.Buffer
	buf.Grow(headerSize + len(i.vectors)*i.dimension*4 + 4)

	buf.Write(magic[:])
	_ = binary.Write(&buf, binary.LittleEndian, formatVersion)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(0))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(i.dimension))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(i.vectors)))

	var word [4]byte
	for _, v := range i.vectors {
		for _, x := range v {
			binary.LittleEndian.PutUint32(word[:], math.Float32bits(x))
			buf.Write(word[:])
		}
	}
	binary.LittleEndian.PutUint32(word[:], crc32.ChecksumIEEE(buf.Bytes()))
	buf.Write(word[:])

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// Read decodes an index written by WriteTo. The result is sealed.
func Read(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("%w: truncated header", ErrCorrupt)
	}

	body, sum := data[:len(data)-4], binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(body) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	if !bytes.Equal(body[:4], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if v := binary.LittleEndian.Uint16(body[4:6]); v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}

	dim := int(binary.LittleEndian.Uint32(body[8:12]))
	count := int(binary.LittleEndian.Uint32(body[12:16]))
	if dim*count > maxElements || (count > 0 && dim == 0) {
		return nil, fmt.Errorf("%w: implausible shape %dx%d", ErrCorrupt, count, dim)
	}
	payload := body[headerSize:]
	if len(payload) != dim*count*4 {
		return nil, fmt.Errorf("%w: expected %d bytes of vectors, got %d", ErrCorrupt, dim*count*4, len(payload))
	}

	idx := &Index{dimension: dim, vectors: make([][]float32, count), sealed: true}
	for n := range count {
		v := make([]float32, dim)
		for d := range dim {
			off := (n*dim + d) * 4
			v[d] = math.Float32frombits(binary.LittleEndian.Uint32(payload[off : off+4]))
		}
		idx.vectors[n] = v
	}
	return idx, nil
}

// SaveFile writes the index to path atomically via a temporary file.
func (i *Index) SaveFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if _, err := i.WriteTo(w); err != nil {
		tmp.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename index: %w", err)
	}
	return nil
}

// LoadFile reads an index saved with SaveFile.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
