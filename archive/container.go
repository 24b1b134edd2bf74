package archive

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/samibs/TrustDoc/errs"
	"github.com/samibs/TrustDoc/internal/ioutil"
)

// standardPermissionMask is applied to every entry written into the
// container, matching the "standard permission mask" called for by §4.9
// step 7.
const standardPermissionMask = 0o644

// maxEntryReadBytes bounds a single entry's decompressed size while
// reading, independent of any Policy the caller supplies — Verify applies
// the caller's actual policy on top of this hard ceiling.
const maxEntryReadBytes = 64 * 1024 * 1024

// ByteSink is the write half of the container abstraction Write targets,
// decoupling the pipeline from the concrete archive format (§4.9).
type ByteSink interface {
	WriteEntry(name string, data []byte) error
}

// EntryInfo describes one entry found by ByteSource.Entries, carrying the
// sizes Verify needs for the decompression-ratio and per-file checks
// without first decompressing the payload.
type EntryInfo struct {
	Name               string
	CompressedSize     uint64
	UncompressedSize   uint64
}

// ByteSource is the read half of the container abstraction: entry
// enumeration plus named-entry reads (§4.9).
type ByteSource interface {
	Entries() ([]EntryInfo, error)
	ReadEntry(name string) ([]byte, error)
}

// ZipSink writes entries into a deflate-compressed zip.Writer.
type ZipSink struct {
	zw *zip.Writer
}

// NewZipSink wraps w as a ByteSink.
func NewZipSink(w io.Writer) *ZipSink {
	return &ZipSink{zw: zip.NewWriter(w)}
}

// WriteEntry deflate-compresses data under name with the standard
// permission mask.
func (s *ZipSink) WriteEntry(name string, data []byte) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	hdr.SetMode(standardPermissionMask)
	fw, err := s.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("%w: creating entry %s: %v", errs.ErrArchive, name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("%w: writing entry %s: %v", errs.ErrArchive, name, err)
	}
	return nil
}

// Close finalizes the underlying zip.Writer. Callers must call Close after
// the last WriteEntry.
func (s *ZipSink) Close() error {
	if err := s.zw.Close(); err != nil {
		return fmt.Errorf("%w: closing archive: %v", errs.ErrArchive, err)
	}
	return nil
}

// ZipSource reads entries from a zip.Reader.
type ZipSource struct {
	zr *zip.Reader
}

// NewZipSource wraps r (of total size) as a ByteSource.
func NewZipSource(r io.ReaderAt, size int64) (*ZipSource, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: opening archive: %v", errs.ErrArchive, err)
	}
	return &ZipSource{zr: zr}, nil
}

// Entries lists every entry's name and declared compressed/uncompressed
// sizes, without decompressing payloads.
func (s *ZipSource) Entries() ([]EntryInfo, error) {
	infos := make([]EntryInfo, 0, len(s.zr.File))
	for _, f := range s.zr.File {
		infos = append(infos, EntryInfo{
			Name:             f.Name,
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
		})
	}
	return infos, nil
}

// ReadEntry decompresses and returns the named entry's full content,
// bounded by maxEntryReadBytes regardless of its declared size.
func (s *ZipSource) ReadEntry(name string) ([]byte, error) {
	for _, f := range s.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening entry %s: %v", errs.ErrArchive, name, err)
		}
		defer rc.Close()
		data, err := ioutil.ReadAllBounded(rc, maxEntryReadBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: reading entry %s: %v", errs.ErrArchive, name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", errs.ErrMissingFile, name)
}

// readAllEntries reads every entry in source into a name → bytes map.
func readAllEntries(source ByteSource) (map[string][]byte, error) {
	infos, err := source.Entries()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(infos))
	for _, info := range infos {
		data, err := source.ReadEntry(info.Name)
		if err != nil {
			return nil, err
		}
		out[info.Name] = data
	}
	return out, nil
}
