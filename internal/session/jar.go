package session

import (
	"fmt"
	"os"
	"path/filepath"

	cookiejar "github.com/juju/persistent-cookiejar"
)

// Jar holds the backend's session cookie. When opened with a file name the
// cookies survive between runs; Close writes them back.
type Jar struct {
	*cookiejar.Jar
	persist bool
}

// Open loads the jar stored at path. An empty path gives an in-memory jar.
func Open(path string) (*Jar, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create cookie dir: %w", err)
		}
	}
	jar, err := cookiejar.New(&cookiejar.Options{
		Filename:  path,
		NoPersist: path == "",
	})
	if err != nil {
		return nil, fmt.Errorf("open cookie jar: %w", err)
	}
	return &Jar{Jar: jar, persist: path != ""}, nil
}

// DefaultPath returns the cookie file location, <user config dir>/schedly/cookies.
// It can be overridden with SCHEDLY_COOKIEFILE.
func DefaultPath() string {
	if file := os.Getenv("SCHEDLY_COOKIEFILE"); file != "" {
		return file
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "schedly", "cookies")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".schedly", "cookies")
	}
	return filepath.Join(".schedly", "cookies")
}

// Close saves any cookies to the backing file.
func (j *Jar) Close() error {
	if !j.persist {
		return nil
	}
	if err := j.Save(); err != nil {
		return fmt.Errorf("cannot save cookie jar: %w", err)
	}
	return nil
}
