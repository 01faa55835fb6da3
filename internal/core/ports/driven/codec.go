package driven

import "github.com/custodia-labs/deckmend/internal/core/domain"

// PackageCodec converts between zip buffers and packages.
type PackageCodec interface {
	// Decode parses a zip buffer. It returns a *domain.DecodeError when the
	// buffer is empty or is not a readable archive. Every call yields an
	// independent Package.
	Decode(buf []byte) (*domain.Package, error)

	// Encode serializes a package. Equal packages encode to equal bytes.
	Encode(pkg *domain.Package) ([]byte, error)
}
