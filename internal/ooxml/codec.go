package ooxml

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.PackageCodec = (*Codec)(nil)

// DefaultMaxPartSize bounds the decompressed size of a single part.
const DefaultMaxPartSize int64 = 512 << 20

// entryTime is written as the modification time of every entry so that
// encoding is a pure function of the package.
var entryTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Codec decodes zip buffers into packages and encodes them back.
type Codec struct {
	maxPartSize int64
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithMaxPartSize sets the largest decompressed part the codec accepts.
func WithMaxPartSize(n int64) CodecOption {
	return func(c *Codec) {
		if n > 0 {
			c.maxPartSize = n
		}
	}
}

// NewCodec creates a new package codec.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{maxPartSize: DefaultMaxPartSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decode parses buf as a zip archive. Every call returns an independent Package.
func (c *Codec) Decode(buf []byte) (*domain.Package, error) {
	if len(buf) == 0 {
		return nil, &domain.DecodeError{Err: errors.New("empty buffer")}
	}

	reader, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if errors.Is(err, zip.ErrInsecurePath) {
		// Entry names are normalised below and never touch the filesystem.
		err = nil
	}
	if err != nil {
		return nil, &domain.DecodeError{Err: err}
	}

	parts := make([]domain.Part, 0, len(reader.File))
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		name := domain.NormalizePath(file.Name)
		if name == "" {
			continue
		}

		data, err := c.readEntry(file)
		if err != nil {
			return nil, &domain.DecodeError{Part: name, Err: err}
		}
		parts = append(parts, domain.Part{Path: name, Data: data})
	}

	pkg, err := domain.NewPackage(parts...)
	if err != nil {
		return nil, &domain.DecodeError{Err: err}
	}
	return pkg, nil
}

func (c *Codec) readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, c.maxPartSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxPartSize {
		return nil, fmt.Errorf("part exceeds %d bytes", c.maxPartSize)
	}
	return data, nil
}

// Encode writes pkg as a zip archive. Parts are written in package order
// with fixed headers, so equal packages encode to equal bytes.
func (c *Codec) Encode(pkg *domain.Package) ([]byte, error) {
	if pkg == nil {
		return nil, fmt.Errorf("%w: package is nil", domain.ErrInvalidInput)
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	for _, part := range pkg.Parts() {
		header := &zip.FileHeader{
			Name:     part.Path,
			Method:   zip.Deflate,
			Modified: entryTime,
		}
		fw, err := w.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("creating entry %s: %w", part.Path, err)
		}
		if _, err := fw.Write(part.Data); err != nil {
			return nil, fmt.Errorf("writing entry %s: %w", part.Path, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}
