// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package capture

import (
	"bytes"
	"io"
	"sync"

	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

// NewBuilder creates a new Builder. Do not fill the Index in
// the header, it will be overwritten anyway.
func NewBuilder(header Header) *Builder {
	header.Index = nil
	return &Builder{
		header: header,
	}
}

type compressedEntry struct {
	name string
	size int64
	data []byte
}

// Builder is the way to create an archive. Archives cannot be
// appended to, entries are compressed as they are added and
// bundled together by WriteTo.
type Builder struct {
	header Header

	mutex   sync.Mutex
	entries []compressedEntry
}

// Add compresses data and stores it under name.
// Is safe to use concurrently in different goroutines.
func (b *Builder) Add(name string, data []byte) error {
	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	written, err := io.Copy(writer, bytes.NewReader(data))
	if err != nil {
		return errors.Wrapf(err, "compress %s", name)
	}
	if err := writer.Close(); err != nil {
		return errors.Wrapf(err, "compress %s", name)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, e := range b.entries {
		if e.name == name {
			return errors.Wrap(ErrDuplicate, name)
		}
	}
	b.entries = append(b.entries, compressedEntry{
		name: name,
		size: written,
		data: compressed.Bytes(),
	})
	return nil
}

// WriteTo bundles and writes all of the entries added to the Builder
// into an archive that is ready to use.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := b.header
	header.Index = make([]IndexEntry, 0, len(b.entries))
	var offset int64
	for _, e := range b.entries {
		header.Index = append(header.Index, IndexEntry{
			Name:           e.name,
			Offset:         offset,
			Size:           e.size,
			CompressedSize: int64(len(e.data)),
		})
		offset += int64(len(e.data))
	}

	rawHeader, err := gobEncode(header)
	if err != nil {
		return 0, errors.Wrap(err, "encode header")
	}

	var total int64
	write := func(p []byte) error {
		n, err := w.Write(p)
		total += int64(n)
		return err
	}

	if err := write(magic[:]); err != nil {
		return total, err
	}
	if err := write(int64ToBinary(int64(len(rawHeader)))); err != nil {
		return total, err
	}
	if err := write(rawHeader); err != nil {
		return total, err
	}
	for _, e := range b.entries {
		if err := write(e.data); err != nil {
			return total, err
		}
	}
	return total, nil
}
