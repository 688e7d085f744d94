// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package capture

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

// Open opens the archive read from r. It will also check
// if the file is actually a capture archive, will return
// ErrFileFormat when it is not.
func Open(r io.ReaderAt) (*Archive, error) {
	fileMagic := make([]byte, MagicLength)
	if !readFull(r, fileMagic, 0) || !bytes.Equal(fileMagic, magic[:]) {
		return nil, ErrFileFormat
	}

	headerSizeBytes := make([]byte, HeaderSizeNumberLength)
	if !readFull(r, headerSizeBytes, MagicLength) {
		return nil, ErrFileFormat
	}

	headerSize, err := binaryToInt64(headerSizeBytes)
	if err != nil || headerSize <= 0 || headerSize > MaxHeaderSize {
		return nil, ErrFileFormat
	}

	headerBytes := make([]byte, headerSize)
	if !readFull(r, headerBytes, MagicLength+HeaderSizeNumberLength) {
		return nil, ErrFileFormat
	}

	var header Header
	if err := gobDecode(&header, headerBytes); err != nil {
		return nil, errors.Wrap(ErrFileFormat, err.Error())
	}

	return &Archive{
		reader:     r,
		header:     header,
		dataOffset: MagicLength + HeaderSizeNumberLength + headerSize,
	}, nil
}

// readFull reports whether p was filled completely, a ReaderAt
// may return io.EOF along with a full read at the end of input.
func readFull(r io.ReaderAt, p []byte, off int64) bool {
	n, _ := r.ReadAt(p, off)
	return n == len(p)
}

// Archive provides concurrent io for a capture archive, and can provide
// an io.Reader for each entry separately.
type Archive struct {
	reader     io.ReaderAt
	header     Header
	dataOffset int64
}

// Header returns the archive header
func (a *Archive) Header() Header {
	return a.header
}

// Names returns the entry names in the order they were added
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.header.Index))
	for _, e := range a.header.Index {
		names = append(names, e.Name)
	}
	return names
}

// Open returns a Reader of the decompressed contents of an entry
func (a *Archive) Open(name string) (io.Reader, error) {
	entry, ok := a.header.entry(name)
	if !ok {
		return nil, errors.Wrap(ErrNotFound, name)
	}
	section := io.NewSectionReader(a.reader, a.dataOffset+entry.Offset, entry.CompressedSize)
	return lz4.NewReader(section), nil
}

// ReadAll returns the entire decompressed contents of an entry
func (a *Archive) ReadAll(name string) ([]byte, error) {
	r, err := a.Open(name)
	if err != nil {
		return nil, err
	}

	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(ErrFileFormat, err.Error())
	}

	entry, _ := a.header.entry(name)
	if int64(len(data)) != entry.Size {
		return nil, errors.Wrapf(ErrFileFormat, "%s: size %d, expected %d", name, len(data), entry.Size)
	}
	return data, nil
}
