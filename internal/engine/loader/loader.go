// Package loader opens compiled .tskb artifacts and answers key queries
// against them without decoding the whole file.
package loader

import (
	"os"
	"sync"
	"sync/atomic"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"go.trai.ch/tusk/internal/engine/artifact"
	"go.trai.ch/zerr"
)

var errClosed = zerr.New("artifact is closed")

// Loader opens artifacts.
type Loader struct {
	mapper ports.FileMapper
	codecs ports.CodecSet
	lookup domain.EnvLookup
}

// New creates a Loader. lookup resolves @env calls; nil uses os.LookupEnv.
func New(mapper ports.FileMapper, codecs ports.CodecSet, lookup domain.EnvLookup) *Loader {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Loader{mapper: mapper, codecs: codecs, lookup: lookup}
}

// Open maps the artifact at path and validates its header and checksum.
// Version and magic are checked before anything else. Section contents are
// validated on first query.
func (l *Loader) Open(path string) (*Config, error) {
	file, err := l.mapper.Map(path)
	if err != nil {
		return nil, err
	}
	cfg, err := l.open(path, file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) open(path string, file ports.MappedFile) (*Config, error) {
	data := file.Bytes()
	h, err := artifact.DecodeHeader(path, data)
	if err != nil {
		return nil, err
	}
	stored := artifact.Stored(data)
	if err := artifact.VerifyChecksum(path, &h, stored); err != nil {
		return nil, err
	}
	codec, err := l.codecs.For(h.Codec)
	if err != nil {
		return nil, domain.PathError(domain.ErrCorruptArtifact, path, err)
	}

	cfg := &Config{
		path:   path,
		file:   file,
		header: h,
		codec:  codec,
		stored: stored,
		lookup: l.lookup,
	}
	return cfg, nil
}

// Config is one opened artifact. Queries are safe for concurrent use. Close
// must not race with queries.
type Config struct {
	path   string
	file   ports.MappedFile
	header domain.Header
	codec  ports.Codec
	stored []byte
	lookup domain.EnvLookup
	closed atomic.Bool

	payloadOnce sync.Once
	pl          *artifact.Payload
	plErr       error

	indexOnce sync.Once
	idx       *index
	idxErr    error

	results sync.Map
}

// Path returns the artifact path.
func (c *Config) Path() string { return c.path }

// Header returns the decoded header.
func (c *Config) Header() domain.Header { return c.header }

// Close unmaps the artifact.
func (c *Config) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.file.Close()
}

// payload returns the raw payload view, decompressing it on first use.
// Compressed payloads are decoded whole since none of the codecs support
// random access.
func (c *Config) payload() (*artifact.Payload, error) {
	if c.closed.Load() {
		return nil, domain.PathError(domain.ErrIO, c.path, errClosed)
	}
	c.payloadOnce.Do(func() {
		raw := c.stored
		if c.header.Flags.Has(domain.FlagCompressed) {
			var err error
			raw, err = c.codec.Decompress(c.stored, int(c.header.RawSize))
			if err != nil {
				c.plErr = domain.PathError(domain.ErrCorruptArtifact, c.path, err)
				return
			}
		}
		c.pl, c.plErr = artifact.NewPayload(c.path, raw, c.header.Index)
	})
	return c.pl, c.plErr
}

// Strings returns a copy of the string table.
func (c *Config) Strings() ([]string, error) {
	p, err := c.payload()
	if err != nil {
		return nil, err
	}
	out := make([]string, p.StringCount())
	for i := range out {
		if out[i], err = p.String(uint32(i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Values returns the decoded value table.
func (c *Config) Values() ([]domain.Value, error) {
	p, err := c.payload()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Value, p.ValueCount())
	for i := range out {
		if out[i], err = p.Value(uint32(i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Instructions returns the instruction stream.
func (c *Config) Instructions() ([]domain.Instruction, error) {
	p, err := c.payload()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Instruction, p.InstructionCount())
	for i := range out {
		out[i] = p.Instruction(uint32(i))
	}
	return out, nil
}

// Module decodes the whole artifact.
func (c *Config) Module() (*domain.Module, error) {
	p, err := c.payload()
	if err != nil {
		return nil, err
	}
	m := &domain.Module{Header: c.header}
	if m.Strings, err = c.Strings(); err != nil {
		return nil, err
	}
	if m.Values, err = c.Values(); err != nil {
		return nil, err
	}
	m.Instructions = make([]domain.Instruction, p.InstructionCount())
	for i := range m.Instructions {
		m.Instructions[i] = p.Instruction(uint32(i))
	}
	return m, nil
}
