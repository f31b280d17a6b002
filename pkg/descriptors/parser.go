package descriptors

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var parserTracer = otel.Tracer("langreg/descriptors/parser")

// ParserConfig configures descriptor parsing
type ParserConfig struct {
	// MaxWorkers bounds the number of files parsed concurrently
	MaxWorkers int
	// CacheSize is the number of parsed files kept by content hash
	CacheSize int
	// CacheTTL expires cached files; zero keeps them until evicted
	CacheTTL time.Duration
}

// DefaultParserConfig returns the default parser configuration
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		MaxWorkers: 4,
		CacheSize:  256,
		CacheTTL:   10 * time.Minute,
	}
}

// Parser reads descriptor files. Parsed files are cached by content hash,
// so unchanged files are not decoded again in watch mode.
type Parser struct {
	config ParserConfig
	cache  *lru.LRU[string, *File]
	log    *logrus.Logger
}

// NewParser creates a parser
func NewParser(config ParserConfig, log *logrus.Logger) *Parser {
	if log == nil {
		log = logrus.New()
	}
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 1
	}
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultParserConfig().CacheSize
	}

	return &Parser{
		config: config,
		cache:  lru.NewLRU[string, *File](config.CacheSize, nil, config.CacheTTL),
		log:    log,
	}
}

// IsDescriptor reports whether path has a descriptor file extension
func IsDescriptor(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".hcl":
		return true
	}
	return false
}

// Discover returns the descriptor files under root in sorted order. A root
// that is a file is returned as is.
func Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsDescriptor(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// ParseDir discovers and parses every descriptor under root
func (p *Parser) ParseDir(ctx context.Context, root string) ([]*File, error) {
	paths, err := Discover(root)
	if err != nil {
		return nil, err
	}
	return p.ParseFiles(ctx, paths)
}

// ParseFiles parses paths concurrently and returns the files in the order of paths
func (p *Parser) ParseFiles(ctx context.Context, paths []string) ([]*File, error) {
	ctx, span := parserTracer.Start(ctx, "Parser.ParseFiles",
		trace.WithAttributes(attribute.Int("descriptor.files", len(paths))),
	)
	defer span.End()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.config.MaxWorkers)

	files := make([]*File, len(paths))
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := p.ParseFile(path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return files, nil
}

// ParseFile reads and parses one descriptor file
func (p *Parser) ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor %s: %w", path, err)
	}
	return p.Parse(path, data)
}

// Parse decodes data as the format implied by the extension of name
func (p *Parser) Parse(name string, data []byte) (*File, error) {
	ext := strings.ToLower(filepath.Ext(name))
	key := cacheKey(name, ext, data)

	if f, ok := p.cache.Get(key); ok {
		p.log.Debugf("Descriptor cache hit for %s", name)
		return f, nil
	}

	var (
		f   *File
		err error
	)
	switch ext {
	case ".yaml", ".yml":
		f, err = parseYAML(name, data)
	case ".hcl":
		f, err = parseHCL(name, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, err
	}

	f.Path = name
	if err := f.Validate(); err != nil {
		return nil, err
	}

	p.cache.Add(key, f)
	p.log.Debugf("Parsed descriptor %s (%d types)", name, len(f.Types))
	return f, nil
}

func cacheKey(name, ext string, data []byte) string {
	sum := sha256.Sum256(data)
	return name + "|" + ext + "|" + hex.EncodeToString(sum[:])
}

func parseYAML(name string, data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDescriptor, name, err)
	}
	return &f, nil
}

func parseHCL(name string, data []byte) (*File, error) {
	// a fresh parser per file; hclparse caches by file name
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to parse HCL file %s: %v", ErrInvalidDescriptor, name, diags)
	}

	var f File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("%w: failed to decode HCL file %s: %v", ErrInvalidDescriptor, name, diags)
	}
	return &f, nil
}
