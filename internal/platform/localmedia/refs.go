package localmedia

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/soart-backend/internal/platform/ctxutil"
	"github.com/yungbote/soart-backend/internal/platform/logger"
)

const (
	// ArtifactRoute is the path prefix artifacts are served under.
	ArtifactRoute = "/api/magic/file/"

	maxReferenceBytes = 32 << 20
	maxParallelFetch  = 4
)

// Reference is a decoded reference image.
type Reference struct {
	Index    int
	Bytes    []byte
	MimeType string
}

type ReferenceLoaderConfig struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	// PublicBaseURL and Store let references to this server's own artifact
	// route be read from disk instead of over the network.
	PublicBaseURL string
	Store         Store
}

type ReferenceLoader struct {
	log        *logger.Logger
	httpClient *http.Client
	publicBase *url.URL
	store      Store
}

func NewReferenceLoader(log *logger.Logger, cfg ReferenceLoaderConfig) *ReferenceLoader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	var base *url.URL
	if raw := strings.TrimSpace(cfg.PublicBaseURL); raw != "" {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			base = u
		}
	}
	return &ReferenceLoader{
		log:        log.With("service", "ReferenceLoader"),
		httpClient: hc,
		publicBase: base,
		store:      cfg.Store,
	}
}

// LoadAll decodes refs concurrently. Entries that fail are logged and
// skipped; the result keeps input order.
func (l *ReferenceLoader) LoadAll(ctx context.Context, refs []string) []Reference {
	ctx = ctxutil.Default(ctx)
	slots := make([]*Reference, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetch)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			r, err := l.Load(gctx, ref)
			if err != nil {
				l.log.Warn("skipping reference image", "index", i, "ref", ref, "error", err)
				return nil
			}
			r.Index = i
			slots[i] = &r
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Reference, 0, len(refs))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// Load decodes one reference: an inline data URL or an absolute http(s) URL.
func (l *ReferenceLoader) Load(ctx context.Context, ref string) (Reference, error) {
	ref = strings.TrimSpace(ref)
	var (
		raw []byte
		err error
	)
	switch {
	case ref == "":
		return Reference{}, fmt.Errorf("empty reference")
	case strings.HasPrefix(ref, "data:"):
		raw, err = decodeDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		raw, err = l.fetch(ctx, ref)
	default:
		return Reference{}, fmt.Errorf("unsupported reference scheme")
	}
	if err != nil {
		return Reference{}, err
	}
	out, mime, err := Downscale(raw, MaxReferenceSide)
	if err != nil {
		return Reference{}, err
	}
	return Reference{Bytes: out, MimeType: mime}, nil
}

func decodeDataURL(ref string) ([]byte, error) {
	header, payload, ok := strings.Cut(ref, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data url")
	}
	if !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("data url is not a base64 image")
	}
	payload = strings.TrimSpace(payload)
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return raw, nil
}

func (l *ReferenceLoader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if name, ok := l.localArtifact(u); ok {
		if b, err := l.store.Read(ctx, name); err == nil {
			return b, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch reference: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch reference: status %s", resp.Status)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxReferenceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read reference: %w", err)
	}
	if len(b) > maxReferenceBytes {
		return nil, fmt.Errorf("reference exceeds %d bytes", maxReferenceBytes)
	}
	return b, nil
}

func (l *ReferenceLoader) localArtifact(u *url.URL) (string, bool) {
	if l.store == nil || l.publicBase == nil {
		return "", false
	}
	if !strings.EqualFold(u.Host, l.publicBase.Host) || !strings.HasPrefix(u.Path, ArtifactRoute) {
		return "", false
	}
	name := path.Base(u.Path)
	if !ValidFilename(name) {
		return "", false
	}
	return name, true
}
