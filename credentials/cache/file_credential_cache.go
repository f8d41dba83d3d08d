package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sts/types"

	"github.com/oktatools/okta-creds/credentials"
)

type fileCredentialCache struct {
	path string
	mu   sync.RWMutex
}

// NewFileCredentialCache creates a file-backed credential cache at the specified path.
func NewFileCredentialCache(path string) *fileCredentialCache {
	return &fileCredentialCache{path: path}
}

// Load returns the credentials stored at the cache path.  A missing, unreadable, or
// unparseable cache file is not an error, callers get an expired credential set and
// fall through to a fresh fetch.
func (f *fileCredentialCache) Load() *credentials.Credentials {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return new(credentials.Credentials)
	}

	var stsCreds types.Credentials
	if err := json.Unmarshal(data, &stsCreds); err != nil {
		return new(credentials.Credentials)
	}

	if creds := credentials.FromStsCredentials(&stsCreds); creds.Value().HasKeys() {
		return creds
	}
	return new(credentials.Credentials)
}

// Store serializes creds as JSON and writes them to the cache file.  Incomplete
// credentials are rejected so a failed fetch can never clobber a usable cache entry.
func (f *fileCredentialCache) Store(creds *credentials.Credentials) error {
	if creds == nil || !creds.Value().HasKeys() {
		return credentials.ErrInvalidCredentials
	}

	data, err := json.Marshal(creds.StsCredentials())
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return replaceFile(f.path, data)
}

// Clear removes the cache file.  A cache file which never existed counts as cleared.
func (f *fileCredentialCache) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return os.RemoveAll(f.path)
}

// replaceFile writes data beside path and renames it into place, so a reader only ever
// observes the previous complete record or the new one, never a torn write.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}

	// close before rename to keep Windows file handling happy
	if err = tmp.Close(); err != nil {
		return err
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	return os.Chmod(path, 0600)
}
