package classifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/neurlang/tempocnn/nn"
)

var (
	ErrModelNotFound = errors.New("classifier: model not found")
	ErrWrongKind     = errors.New("classifier: model kind mismatch")
)

// Resolver locates models by file path or name.
type Resolver struct {
	// Dir holds <name>.tcnn files, and receives downloads.
	Dir string
	// URL is a download template; {name} is replaced by the model name.
	URL    string
	Client *http.Client
	Log    zerolog.Logger
}

// Resolve returns the path of the model file for name, downloading it if
// necessary.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty model name", ErrModelNotFound)
	}
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		return name, nil
	}
	if strings.ContainsAny(name, `/\`) || strings.HasSuffix(name, nn.ModelExt) {
		return "", fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}

	if r.Dir != "" {
		path := filepath.Join(r.Dir, name+nn.ModelExt)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	if r.URL == "" || r.Dir == "" {
		return "", fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	return r.download(ctx, name)
}

// Load resolves and decodes the model name and checks that it was trained
// for kind.
func (r *Resolver) Load(ctx context.Context, name string, kind nn.Kind) (*nn.Model, error) {
	path, err := r.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	m, err := nn.Load(path)
	if err != nil {
		return nil, err
	}
	if m.Header.Kind != kind {
		return nil, fmt.Errorf("%w: %s is a %q model, want %q", ErrWrongKind, name, m.Header.Kind, kind)
	}
	r.Log.Debug().Str("model", m.Header.Name).Str("path", path).Int("params", m.NumParams()).Msg("loaded model")
	return m, nil
}

func (r *Resolver) modelURL(name string) string {
	if strings.Contains(r.URL, "{name}") {
		return strings.ReplaceAll(r.URL, "{name}", name)
	}
	return strings.TrimSuffix(r.URL, "/") + "/" + name + nn.ModelExt
}

func (r *Resolver) download(ctx context.Context, name string) (string, error) {
	url := r.modelURL(name)
	r.Log.Info().Str("model", name).Str("url", url).Msg("downloading model")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: %s", ErrModelNotFound, url, resp.Status)
	}

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(r.Dir, name+nn.ModelExt)
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return "", err
	}
	defer pf.Cleanup()

	if _, err := io.Copy(pf, resp.Body); err != nil {
		return "", fmt.Errorf("download %s: %w", name, err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return "", err
	}
	return path, nil
}
