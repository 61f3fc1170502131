package audio

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// Fetcher retrieves clip preview data from HTTP URLs or local files.
// Fetched previews are cached in memory; crossfading re-binds the same
// clip every loop cycle and must not re-download it each time.
type Fetcher struct {
	httpClient *http.Client

	cache   map[string][]byte
	cacheMu sync.RWMutex
}

// NewFetcher creates a new fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      make(map[string][]byte),
	}
}

// Fetch retrieves the raw bytes behind a preview URI.
func (f *Fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	if uri == "" {
		return nil, errors.New("preview URI is required")
	}

	f.cacheMu.RLock()
	if data, ok := f.cache[uri]; ok {
		f.cacheMu.RUnlock()
		zlog.Debug().Msgf("using cached preview: uri=%s size=%d", uri, len(data))
		return data, nil
	}
	f.cacheMu.RUnlock()

	var data []byte
	var err error
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		data, err = f.fetchHTTP(ctx, uri)
	} else {
		data, err = os.ReadFile(uri)
		err = errors.Wrap(err, "failed to read local preview")
	}
	if err != nil {
		return nil, err
	}

	f.cacheMu.Lock()
	f.cache[uri] = data
	f.cacheMu.Unlock()
	zlog.Debug().Msgf("cached preview: uri=%s size=%d", uri, len(data))

	return data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", uri, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch preview")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("preview fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read preview body")
	}
	return data, nil
}

// Evict removes a cached preview.
func (f *Fetcher) Evict(uri string) {
	f.cacheMu.Lock()
	defer f.cacheMu.Unlock()
	delete(f.cache, uri)
}
