package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"

	mcperrors "github.com/ajitpratap0/mcp-stdio-server/pkg/errors"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/protocol"
)

// Resource URI prefixes.
const (
	ConfigURIPrefix = "config://"
	ConfigAppURI    = "config://app"
	FileURIPrefix   = "file:///data/"
)

// Mime types reported by the built-in resources.
const (
	MimeTypeJSON   = "application/json"
	MimeTypeText   = "text/plain"
	MimeTypeBinary = "application/octet-stream"
)

// AppConfig is the document served by the config:// resource.
type AppConfig struct {
	AppName     string         `json:"appName"`
	Version     string         `json:"version"`
	Environment string         `json:"environment"`
	Features    FeatureToggles `json:"features"`
}

// FeatureToggles lists the enabled capability groups.
type FeatureToggles struct {
	Tools     bool `json:"tools"`
	Resources bool `json:"resources"`
	Prompts   bool `json:"prompts"`
}

// ConfigResource serves the application configuration as JSON for any
// config:// URI.
type ConfigResource struct {
	config AppConfig
	logger logging.Logger
}

// NewConfigResource creates the config:// resource.
func NewConfigResource(opts Options) *ConfigResource {
	opts.setDefaults()
	return &ConfigResource{
		config: AppConfig{
			AppName:     opts.AppName,
			Version:     opts.Version,
			Environment: opts.Environment,
			Features:    FeatureToggles{Tools: true, Resources: true, Prompts: true},
		},
		logger: opts.Logger.WithFields(logging.String("component", "ConfigResource")),
	}
}

// ListResources lists config://app.
func (r *ConfigResource) ListResources(ctx context.Context) ([]protocol.Resource, error) {
	return []protocol.Resource{{
		URI:         ConfigAppURI,
		Name:        "Application configuration",
		Description: "Name, version, environment and enabled features of this server",
		MimeType:    MimeTypeJSON,
	}}, nil
}

// Read returns the indented configuration document.
func (r *ConfigResource) Read(ctx context.Context, uri string) (*protocol.ReadResourceResult, error) {
	r.logger.WithContext(ctx).Debug("Reading config resource", logging.String("uri", uri))

	data, err := json.MarshalIndent(r.config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return &protocol.ReadResourceResult{
		Contents: []protocol.ResourceContents{protocol.NewTextResourceContents(uri, MimeTypeJSON, string(data))},
	}, nil
}

// FileResource serves the files of a directory under file:///data/<name>.
// Reads are confined to the directory; names that leave it are rejected.
//
// While Watch runs, the listing is cached and dropped whenever an entry of
// the directory is created, removed or renamed.
type FileResource struct {
	dir    string
	logger logging.Logger

	mu       sync.Mutex
	watching bool
	cached   []protocol.Resource
	gen      uint64 // bumped on every invalidation
}

// NewFileResource creates a resource serving dir.
func NewFileResource(dir string, logger logging.Logger) *FileResource {
	if logger == nil {
		logger = logging.Discard()
	}
	return &FileResource{
		dir:    dir,
		logger: logger.WithFields(logging.String("component", "FileResource")),
	}
}

// ListResources lists the regular files at the top of the directory. A
// missing directory lists nothing.
func (r *FileResource) ListResources(ctx context.Context) ([]protocol.Resource, error) {
	r.mu.Lock()
	if r.cached != nil {
		resources := append([]protocol.Resource(nil), r.cached...)
		r.mu.Unlock()
		return resources, nil
	}
	watching, gen := r.watching, r.gen
	r.mu.Unlock()

	resources, err := r.scan()
	if err != nil || !watching {
		return resources, err
	}

	r.mu.Lock()
	if r.watching && r.gen == gen {
		r.cached = append([]protocol.Resource{}, resources...)
	}
	r.mu.Unlock()
	return resources, nil
}

func (r *FileResource) scan() ([]protocol.Resource, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}

	resources := make([]protocol.Resource, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		resources = append(resources, protocol.Resource{
			URI:      FileURIPrefix + e.Name(),
			Name:     e.Name(),
			MimeType: mimeTypeFor(e.Name()),
		})
	}
	return resources, nil
}

// Watch keeps the listing cache in step with the directory until ctx is
// cancelled. It returns nil at once when the directory cannot be watched,
// leaving ListResources to read the directory on every call.
func (r *FileResource) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		r.logger.WithError(err).Warn("File watching unavailable")
		return nil
	}
	defer w.Close()

	if err := w.Add(r.dir); err != nil {
		r.logger.WithError(err).Debug("Data directory not watched", logging.String("dir", r.dir))
		return nil
	}

	r.setWatching(true)
	defer r.setWatching(false)
	r.logger.Debug("Watching data directory", logging.String("dir", r.dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Chmod) != 0 {
				r.invalidate()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.WithError(err).Warn("Data directory watch error")
			r.invalidate()
		}
	}
}

func (r *FileResource) setWatching(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watching = on
	r.cached = nil
	r.gen++
}

func (r *FileResource) invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
	r.gen++
}

// Read returns the file named by uri. UTF-8 content is returned as text,
// anything else as a base64 blob.
func (r *FileResource) Read(ctx context.Context, uri string) (*protocol.ReadResourceResult, error) {
	name, ok := strings.CutPrefix(uri, FileURIPrefix)
	if !ok || name == "" {
		return nil, mcperrors.InvalidParameter("uri", FileURIPrefix+"<file name>")
	}
	if !filepath.IsLocal(name) {
		r.logger.WithContext(ctx).Warn("Rejected path outside data directory", logging.String("uri", uri))
		return nil, mcperrors.InvalidParameter("uri", "a path inside the data directory")
	}

	log := r.logger.WithContext(ctx).WithFields(logging.String("uri", uri))
	log.Debug("Reading file resource")

	data, err := r.readFile(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, mcperrors.HandlerNotFound("Resource", uri)
	case err != nil:
		log.WithError(err).Error("File read error")
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	size := int64(len(data))
	contents := protocol.ResourceContents{
		URI:      uri,
		MimeType: mimeTypeFor(name),
		Size:     &size,
	}
	if utf8.Valid(data) {
		text := string(data)
		contents.Text = &text
	} else {
		blob := base64.StdEncoding.EncodeToString(data)
		contents.Blob = &blob
	}

	return &protocol.ReadResourceResult{Contents: []protocol.ResourceContents{contents}}, nil
}

func (r *FileResource) readFile(name string) ([]byte, error) {
	root, err := os.OpenRoot(r.dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	f, err := root.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", name)
	}
	return io.ReadAll(f)
}

func mimeTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return MimeTypeText
	case ".json":
		return MimeTypeJSON
	default:
		return MimeTypeBinary
	}
}
