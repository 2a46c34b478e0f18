// Package file implements a size-bounded container of dense page indices:
// a 13-byte FileHeader followed by each page's fixed-size encoding back to
// back. Generalized from minidb's internal/storage/disk.go, which manages
// an unbounded, OS-file-backed page store with no declared size ceiling —
// this spec's File instead tracks a fixed file_size budget and rejects an
// insert that would push a page past it.
package file

import (
	"encoding/binary"
	"sort"

	"rowstore/internal/errs"
	"rowstore/internal/page"
	"rowstore/internal/schema"
	"rowstore/internal/types"
)

// HeaderSize is the on-disk width of FileHeader: file_size(4) + pages(4) +
// visibility(1) + compression(1) + version(3).
const HeaderSize = 13

// FileHeader is the fixed-shape prefix written ahead of every page in the
// file.
type FileHeader struct {
	FileSize    uint32
	Pages       uint32
	Visibility  uint8
	Compression uint8
	Version     [3]uint8
}

func (h FileHeader) encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.FileSize)
	binary.LittleEndian.PutUint32(buf[4:8], h.Pages)
	buf[8] = h.Visibility
	buf[9] = h.Compression
	copy(buf[10:13], h.Version[:])
	return buf
}

func decodeHeader(buf []byte) (FileHeader, error) {
	if len(buf) < HeaderSize {
		return FileHeader{}, errs.Newf(errs.KindSerialization,
			"buffer of %d bytes too small for a file header", len(buf))
	}
	var h FileHeader
	h.FileSize = binary.LittleEndian.Uint32(buf[0:4])
	h.Pages = binary.LittleEndian.Uint32(buf[4:8])
	h.Visibility = buf[8]
	h.Compression = buf[9]
	copy(h.Version[:], buf[10:13])
	return h, nil
}

// File is a bounded, dense collection of pages, keyed by their zero-based
// position.
type File struct {
	Header FileHeader
	Pages  map[types.PageIndex]page.Page
}

// Build returns an empty file with the given byte budget, compression
// codec, and version stamp.
func Build(fileSize uint32, compression uint8, version [3]uint8) File {
	return File{
		Header: FileHeader{FileSize: fileSize, Compression: compression, Version: version},
		Pages:  make(map[types.PageIndex]page.Page),
	}
}

// InsertPage appends p at the next dense index, returning ErrPageOverflow
// if (index+1)*page_size would exceed the file's declared size. The
// 13-byte header is not counted against that size.
func (f *File) InsertPage(p page.Page) (types.PageIndex, error) {
	index := types.PageIndex(len(f.Pages))
	end := (uint64(index) + 1) * uint64(p.Header.PageSize)
	if end > uint64(f.Header.FileSize) {
		return 0, errs.New(errs.KindPageOverflow, "insertion failed, no more place on this file")
	}
	f.Pages[index] = p
	f.Header.Pages++
	return index, nil
}

// DeleteByIndex removes the page at index, if present.
func (f *File) DeleteByIndex(index types.PageIndex) {
	if _, ok := f.Pages[index]; ok {
		delete(f.Pages, index)
		f.Header.Pages--
	}
}

// UpdateByIndex replaces the page at an existing index.
// ErrInvalidIndex is returned when the index is not currently occupied.
func (f *File) UpdateByIndex(index types.PageIndex, p page.Page) error {
	if _, ok := f.Pages[index]; !ok {
		return errs.Newf(errs.KindInvalidIndex, "page index %d is not occupied", index)
	}
	f.Pages[index] = p
	return nil
}

// SelectByIndexes returns every page present at one of indexes, omitting
// any index with no page.
func (f File) SelectByIndexes(indexes []types.PageIndex) map[types.PageIndex]page.Page {
	out := make(map[types.PageIndex]page.Page, len(indexes))
	for _, i := range indexes {
		if p, ok := f.Pages[i]; ok {
			out[i] = p
		}
	}
	return out
}

// Encode serializes the file: header followed by each page's encoding, in
// index order.
func (f File) Encode() []byte {
	indexes := make([]types.PageIndex, 0, len(f.Pages))
	for i := range f.Pages {
		indexes = append(indexes, i)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	buf := append([]byte{}, f.Header.encode()...)
	for _, i := range indexes {
		buf = append(buf, f.Pages[i].Encode()...)
	}
	return buf
}

// Decode reconstructs a File from its encoded form, given the schema its
// pages' tuples are decoded against. Pages are assumed to share one
// page_size, read off the first page's header.
func Decode(s schema.Schema, buf []byte) (File, error) {
	header, err := decodeHeader(buf)
	if err != nil {
		return File{}, err
	}

	rest := buf[HeaderSize:]
	pages := make(map[types.PageIndex]page.Page, header.Pages)
	if len(rest) == 0 {
		return File{Header: header, Pages: pages}, nil
	}

	firstHeader, err := page.Decode(s, rest)
	if err != nil {
		return File{}, err
	}
	pageSize := int(firstHeader.Header.PageSize)
	if pageSize == 0 {
		return File{}, errs.New(errs.KindSerialization, "page size of zero in file header")
	}

	for offset, index := 0, types.PageIndex(0); offset+pageSize <= len(rest); offset, index = offset+pageSize, index+1 {
		p, err := page.Decode(s, rest[offset:offset+pageSize])
		if err != nil {
			return File{}, err
		}
		pages[index] = p
	}

	return File{Header: header, Pages: pages}, nil
}
