package cache

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"

	"github.com/oktatools/okta-creds/shared"
)

var jars map[string]*cookieJar

// CookieJar provides a file-backed cookie jar at the specified path.  This is the durable
// session store: the identity provider's session cookies are flushed to disk on every
// update, so a later run can resume an established session without re-authenticating.
var CookieJar = func(path string) *cookieJar {
	if jars == nil {
		jars = make(map[string]*cookieJar)
	}

	if j, ok := jars[path]; ok {
		return j
	}

	j, err := newCookieJar(path)
	if err != nil {
		panic(err)
	}

	jars[path] = j
	return j
}

type cookieJar struct {
	path   string
	mu     sync.RWMutex
	jar    *cookiejar.Jar
	logger shared.Logger
}

// WithLogger configures the logger used to report session store read/write problems.
func (c *cookieJar) WithLogger(l shared.Logger) *cookieJar {
	if l != nil {
		c.logger = l
	}
	return c
}

// access goes through CookieJar() so concurrent users of the same file share one lock.
func newCookieJar(path string) (*cookieJar, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	// this never errors
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	j := &cookieJar{path: path, jar: jar, logger: new(shared.DefaultLogger)}

	stored, err := loadCookieFile(path)
	if err != nil {
		return nil, err
	}

	for host, cookies := range stored {
		u, err := url.Parse(host)
		if err != nil {
			// stale or hand-edited key, skip it
			continue
		}
		j.jar.SetCookies(u, cookies)
	}

	return j, nil
}

// SetCookies is the implementation of the http.CookieJar interface which will add cookies to the
// in-memory jar and flush the update to the backing file.  Invalid url or empty cookie data is
// discarded without touching the file.
func (c *cookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if u == nil || !strings.HasPrefix(u.Scheme, "http") || len(cookies) < 1 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.jar.SetCookies(u, cookies)

	// the stdlib jar can't be dumped wholesale, so the file is read back first to keep
	// cookies stored for hosts other than the one being updated
	stored, err := loadCookieFile(c.path)
	if err != nil {
		c.logger.Warningf("failed to read session cookie store: %v", err)
		return
	}

	host := fmt.Sprintf("%s://%s", u.Scheme, u.Hostname())
	stored[host] = mergeCookies(stored[host], cookies)
	if err = writeCookieFile(c.path, stored); err != nil {
		c.logger.Warningf("failed to save session cookies: %v", err)
	}
}

// Cookies is the implementation of the http.CookieJar interface to retrieve cookies for the url.
func (c *cookieJar) Cookies(u *url.URL) []*http.Cookie {
	if u == nil {
		return []*http.Cookie{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.jar.Cookies(u)
}

// later values win on a (name, domain, path) collision.
func mergeCookies(existing, update []*http.Cookie) []*http.Cookie {
	byKey := make(map[string]*http.Cookie, len(existing)+len(update))
	for _, ck := range append(existing, update...) {
		byKey[strings.Join([]string{ck.Name, ck.Domain, ck.Path}, `|`)] = ck
	}

	merged := make([]*http.Cookie, 0, len(byKey))
	for _, ck := range byKey {
		merged = append(merged, ck)
	}
	return merged
}

func loadCookieFile(path string) (map[string][]*http.Cookie, error) {
	cookies := make(map[string][]*http.Cookie)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// no stored session yet
			return cookies, nil
		}
		return nil, err
	}

	// unparseable data is non-fatal, the next flush rewrites a fresh file
	if len(data) > 2 {
		_ = json.Unmarshal(data, &cookies)
	}

	return cookies, nil
}

func writeCookieFile(path string, data map[string][]*http.Cookie) error {
	// all callers hand in serializable data, so the encode never fails
	buf, _ := json.Marshal(data)
	return replaceFile(path, buf)
}
