// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package capture stores what a host's Vulkan implementation reports, so
// device selection can be inspected and replayed on another machine.
//
// Captures are archives of individually lz4 compressed entries. The layout is
// a four byte magic, the little endian int64 size of the gob encoded Header,
// the Header itself and then the compressed entries back to back. The Header
// indexes every entry, so an entry can be read without touching the others.
package capture

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/pkg/errors"
)

// package errors
var (
	ErrFileFormat = errors.New("corrupted or not a capture archive")
	ErrNotFound   = errors.New("no such entry in capture archive")
	ErrDuplicate  = errors.New("entry already added to capture archive")
)

// Sizes relevant to the header of file
const (
	MagicLength            = 4
	HeaderSizeNumberLength = 8
	MaxHeaderSize          = 1 << 24
)

var magic = [MagicLength]byte{'V', 'K', 'C', '\x00'}

// IndexEntry is info for one entry in the archive index.
// Offset is relative to the end of the Header.
type IndexEntry struct {
	Name           string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the file header for capture archives.
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

func (h *Header) entry(name string) (IndexEntry, bool) {
	for _, e := range h.Index {
		if e.Name == name {
			return e, true
		}
	}
	return IndexEntry{}, false
}

func int64ToBinary(num int64) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSizeNumberLength))
	if err := binary.Write(buf, binary.LittleEndian, num); err != nil {
		panic(err) // writes to a bytes.Buffer do not fail
	}
	return buf.Bytes()
}

func binaryToInt64(bts []byte) (int64, error) {
	var num int64
	if err := binary.Read(bytes.NewReader(bts), binary.LittleEndian, &num); err != nil {
		return 0, err
	}
	return num, nil
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	if err := gob.NewEncoder(&encoded).Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(obj interface{}, bts []byte) error {
	return gob.NewDecoder(bytes.NewReader(bts)).Decode(obj)
}
