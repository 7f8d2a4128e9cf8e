package wolfi

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultIndexURL is the Wolfi APK index for x86_64.
	DefaultIndexURL = "https://packages.wolfi.dev/os/x86_64/APKINDEX.tar.gz"
	// DefaultTTL is how long a fetched index stays fresh on disk.
	DefaultTTL = 24 * time.Hour

	cacheFileName = "wolfi-packages.txt"
)

// APKIndex is an Index backed by the Wolfi APKINDEX, fetched once per TTL
// and cached on disk. Reads observe either the pre- or post-refresh
// snapshot, never a partial one.
type APKIndex struct {
	url      string
	cacheDir string
	ttl      time.Duration
	client   *http.Client
	log      zerolog.Logger

	mu     sync.RWMutex
	loaded bool
	names  map[string]struct{}
}

// APKIndexOption customizes an APKIndex.
type APKIndexOption func(*APKIndex)

func WithIndexURL(url string) APKIndexOption      { return func(a *APKIndex) { a.url = url } }
func WithTTL(ttl time.Duration) APKIndexOption    { return func(a *APKIndex) { a.ttl = ttl } }
func WithHTTPClient(c *http.Client) APKIndexOption { return func(a *APKIndex) { a.client = c } }

// NewAPKIndex builds the oracle. cacheDir is created on demand; the index
// itself is loaded lazily on first use.
func NewAPKIndex(cacheDir string, log zerolog.Logger, opts ...APKIndexOption) *APKIndex {
	a := &APKIndex{
		url:      DefaultIndexURL,
		cacheDir: cacheDir,
		ttl:      DefaultTTL,
		client:   &http.Client{Timeout: 60 * time.Second},
		log:      log.With().Str("component", "wolfi_index").Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *APKIndex) HasPackage(name string) bool {
	if err := a.ensure(); err != nil {
		a.log.Warn().Err(err).Msg("package index unavailable")
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.names[name]
	return ok
}

func (a *APKIndex) GetVersions(prefix string) []string {
	return versionsFromNames(a.Names(), prefix)
}

func (a *APKIndex) GetLatestVersion(prefix string) (string, bool) {
	vs := a.GetVersions(prefix)
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func (a *APKIndex) Names() []string {
	if err := a.ensure(); err != nil {
		a.log.Warn().Err(err).Msg("package index unavailable")
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.names))
	for n := range a.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ensure loads the index if needed: disk cache first when fresh, network
// otherwise. Refreshes are serialized by the write lock.
func (a *APKIndex) ensure() error {
	a.mu.RLock()
	loaded := a.loaded
	a.mu.RUnlock()
	if loaded {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loaded {
		return nil
	}

	if names, ok := a.readCache(); ok {
		a.names = names
		a.loaded = true
		a.log.Debug().Int("packages", len(names)).Msg("loaded package index from cache")
		return nil
	}

	names, err := a.fetch()
	if err != nil {
		// A stale cache beats no index at all.
		if stale, ok := a.readCacheIgnoringTTL(); ok {
			a.log.Warn().Err(err).Msg("index fetch failed, using stale cache")
			a.names = stale
			a.loaded = true
			return nil
		}
		return err
	}
	a.names = names
	a.loaded = true
	a.writeCache(names)
	a.log.Info().Int("packages", len(names)).Msg("fetched package index")
	return nil
}

func (a *APKIndex) cachePath() string { return filepath.Join(a.cacheDir, cacheFileName) }

func (a *APKIndex) readCache() (map[string]struct{}, bool) {
	info, err := os.Stat(a.cachePath())
	if err != nil || time.Since(info.ModTime()) > a.ttl {
		return nil, false
	}
	return a.readCacheIgnoringTTL()
}

func (a *APKIndex) readCacheIgnoringTTL() (map[string]struct{}, bool) {
	data, err := os.ReadFile(a.cachePath())
	if err != nil {
		return nil, false
	}
	names := make(map[string]struct{})
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names[line] = struct{}{}
		}
	}
	if len(names) == 0 {
		return nil, false
	}
	return names, true
}

func (a *APKIndex) writeCache(names map[string]struct{}) {
	if err := os.MkdirAll(a.cacheDir, 0o755); err != nil {
		a.log.Warn().Err(err).Msg("cannot create index cache dir")
		return
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	if err := os.WriteFile(a.cachePath(), []byte(strings.Join(sorted, "\n")+"\n"), 0o644); err != nil {
		a.log.Warn().Err(err).Msg("cannot write index cache")
	}
}

// fetch downloads and parses the APKINDEX archive. Only package names are
// retained; per-package versions are encoded in the names themselves for
// versioned toolchains.
func (a *APKIndex) fetch() (map[string]struct{}, error) {
	resp, err := a.client.Get(a.url)
	if err != nil {
		return nil, fmt.Errorf("fetching APKINDEX: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching APKINDEX: unexpected status %s", resp.Status)
	}
	return ParseAPKIndexArchive(resp.Body)
}

// ParseAPKIndexArchive reads an APKINDEX.tar.gz stream and returns the set
// of package names (P: records).
func ParseAPKIndexArchive(r io.Reader) (map[string]struct{}, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing APKINDEX: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading APKINDEX archive: %w", err)
		}
		if filepath.Base(hdr.Name) != "APKINDEX" {
			continue
		}
		return parseAPKIndexText(tr)
	}
	return nil, fmt.Errorf("APKINDEX member not found in archive")
}

func parseAPKIndexText(r io.Reader) (map[string]struct{}, error) {
	names := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "P:") {
			if name := strings.TrimSpace(line[2:]); name != "" {
				names[name] = struct{}{}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning APKINDEX: %w", err)
	}
	return names, nil
}
