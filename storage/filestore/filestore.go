// Package filestore persists the client credentials of the command line
// front end in a YAML file.
package filestore

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-sweetshop"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the credential file inside the user config directory
const DefaultFileName = "credentials.yaml"

var _ sweetshop.Storage = &Store{}

type document struct {
	UpdatedAt time.Time         `yaml:"updated_at"`
	Values    map[string]string `yaml:"values"`
}

// Store is a sweetshop.Storage backed by a YAML file. The file is read on
// every Get so concurrent invocations observe each other's writes.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// New returns a store over the file at path. The file is created on the
// first write.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// DefaultPath returns <user config dir>/sweetshop/credentials.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "unable to locate user config directory")
	}
	return filepath.Join(dir, "sweetshop", DefaultFileName), nil
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", false
	}
	v, ok := doc.Values[key]
	return v, ok && v != ""
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		doc = document{}
	}
	if doc.Values == nil {
		doc.Values = map[string]string{}
	}
	doc.Values[key] = value
	return s.save(doc)
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}

	doc, err := s.load()
	if err != nil {
		doc = document{}
	}
	if _, ok := doc.Values[key]; !ok && err == nil {
		return nil
	}
	delete(doc.Values, key)
	return s.save(doc)
}

func (s *Store) load() (document, error) {
	var doc document
	data, err := os.ReadFile(s.path)
	if err != nil {
		return doc, errors.Wrap(err, errors.CategoryInternal, "unable to read credential file").
			WithMetadata(map[string]any{"path": s.path})
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return document{}, errors.Wrap(err, errors.CategoryBadInput, "credential file is corrupt").
			WithMetadata(map[string]any{"path": s.path})
	}
	return doc, nil
}

// save writes doc through a temp file so a crash never leaves a truncated
// credential file behind.
func (s *Store) save(doc document) error {
	doc.UpdatedAt = s.now().UTC()

	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to encode credential file")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to create credential directory").
			WithMetadata(map[string]any{"path": dir})
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to write credential file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.CategoryInternal, "unable to write credential file")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.CategoryInternal, "unable to protect credential file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to write credential file")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to replace credential file").
			WithMetadata(map[string]any{"path": s.path})
	}
	return nil
}
