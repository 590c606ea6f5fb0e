// Package loader fetches BOM datasets described by a YAML manifest: a
// version, an ordered chunk list (HTTP URLs or local paths), and a local
// fallback used when any chunk cannot be retrieved.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hangar-lab/demandview-go/bom"
	"github.com/hangar-lab/demandview-go/internal/codec"
	"github.com/hangar-lab/demandview-go/internal/metrics"
)

// CompressionZstd marks chunks stored as ZStandard frames.
const CompressionZstd = "zstd"

// Manifest describes where a dataset version lives.
type Manifest struct {
	// Version names the dataset; it seeds memoization keys.
	Version string `yaml:"version"`

	// Compression is "" for plain JSON chunks or "zstd".
	Compression string `yaml:"compression,omitempty"`

	// Chunks are HTTP(S) URLs or local paths, each holding a JSON array
	// of engine programs. Programs are concatenated in chunk order.
	Chunks []string `yaml:"chunks"`

	// Fallback is a local file used when any chunk fails. It is always
	// plain JSON regardless of Compression, so it stays hand-editable.
	Fallback string `yaml:"fallback,omitempty"`
}

// ParseManifest decodes a YAML manifest and validates it.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Chunks) == 0 && m.Fallback == "" {
		return nil, fmt.Errorf("manifest names no chunks and no fallback")
	}
	if m.Compression != "" && m.Compression != CompressionZstd {
		return nil, fmt.Errorf("unsupported compression %q", m.Compression)
	}
	return &m, nil
}

// Config carries loader dependencies.
type Config struct {
	// Client performs chunk fetches.
	// OPTIONAL: If nil, a client with a 30s timeout is used.
	Client *http.Client

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger
}

// Loader fetches and assembles datasets.
type Loader struct {
	client *http.Client
	codec  *codec.Codec
	logger *slog.Logger
}

// New creates a loader from the given config.
func New(config Config) (*Loader, error) {
	c, err := codec.New()
	if err != nil {
		return nil, err
	}

	l := &Loader{
		client: config.Client,
		codec:  c,
		logger: config.Logger,
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: 30 * time.Second}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l, nil
}

// Close releases codec resources.
func (l *Loader) Close() error {
	return l.codec.Close()
}

// LoadFile reads a manifest from disk and loads its dataset. Relative
// chunk and fallback paths resolve against the manifest's directory.
func (l *Loader) LoadFile(ctx context.Context, manifestPath string) (*bom.Dataset, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, m, filepath.Dir(manifestPath))
}

// Load assembles the dataset a manifest describes. If any chunk fails and
// a fallback is configured, the fallback file is loaded instead; chunk
// errors without a fallback are returned.
func (l *Loader) Load(ctx context.Context, m *Manifest, baseDir string) (*bom.Dataset, error) {
	programs, err := l.loadChunks(ctx, m, baseDir)
	if err == nil {
		metrics.DatasetLoads.WithLabelValues("manifest", "ok").Inc()
		return bom.NewDataset(programs, m.Version), nil
	}
	metrics.DatasetLoads.WithLabelValues("manifest", "error").Inc()

	if m.Fallback == "" {
		return nil, err
	}
	l.logger.Warn("chunk load failed, using fallback",
		"error", err,
		"fallback", m.Fallback,
	)

	programs, ferr := l.loadLocal(resolvePath(baseDir, m.Fallback), "")
	if ferr != nil {
		metrics.DatasetLoads.WithLabelValues("fallback", "error").Inc()
		return nil, fmt.Errorf("fallback after %v: %w", err, ferr)
	}
	metrics.DatasetLoads.WithLabelValues("fallback", "ok").Inc()
	return bom.NewDataset(programs, m.Version), nil
}

func (l *Loader) loadChunks(ctx context.Context, m *Manifest, baseDir string) ([]*bom.EngineProgram, error) {
	if len(m.Chunks) == 0 {
		return nil, fmt.Errorf("manifest names no chunks")
	}

	var programs []*bom.EngineProgram
	for _, chunk := range m.Chunks {
		var (
			data []byte
			err  error
		)
		if isURL(chunk) {
			data, err = l.fetch(ctx, chunk)
		} else {
			data, err = os.ReadFile(resolvePath(baseDir, chunk))
		}
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", chunk, err)
		}

		part, err := l.decodeChunk(data, m.Compression)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", chunk, err)
		}
		programs = append(programs, part...)

		l.logger.Debug("chunk loaded",
			"chunk", chunk,
			"programs", len(part),
		)
	}
	return programs, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (l *Loader) loadLocal(path, compression string) ([]*bom.EngineProgram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.decodeChunk(data, compression)
}

func (l *Loader) decodeChunk(data []byte, compression string) ([]*bom.EngineProgram, error) {
	if compression == CompressionZstd {
		raw, err := l.codec.Decompress(data)
		if err != nil {
			return nil, err
		}
		data = raw
	}

	var programs []*bom.EngineProgram
	if err := json.Unmarshal(data, &programs); err != nil {
		return nil, fmt.Errorf("decode programs: %w", err)
	}
	return programs, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func resolvePath(baseDir, p string) string {
	if baseDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
