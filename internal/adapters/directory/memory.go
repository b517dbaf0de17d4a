// Package directoryadapter provides UserDirectory and SubjectTopicDirectory
// implementations over an in-memory catalog or Postgres tables.
package directoryadapter

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/watchrank/watchrank/internal/domain/directory"
	"github.com/watchrank/watchrank/internal/domain/types"
)

// Catalog is the YAML shape the in-memory directory is seeded from.
type Catalog struct {
	Users    []types.User     `koanf:"users"`
	Subjects []CatalogSubject `koanf:"subjects"`
}

// CatalogSubject describes one subject and its topic ids.
type CatalogSubject struct {
	ID     string   `koanf:"id"`
	Title  string   `koanf:"title"`
	Topics []string `koanf:"topics"`
}

// LoadCatalog reads a catalog YAML file.
func LoadCatalog(path string) (Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Catalog{}, fmt.Errorf("load catalog %s: %w", path, err)
	}

	var cat Catalog
	if err := k.UnmarshalWithConf("", &cat, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return cat, nil
}

// Memory serves both directory contracts from catalog data. Reads only;
// safe for concurrent use.
type Memory struct {
	users  map[string]types.User
	topics map[string][]string
}

// NewMemory indexes a catalog for lookup.
func NewMemory(cat Catalog) *Memory {
	m := &Memory{
		users:  make(map[string]types.User, len(cat.Users)),
		topics: make(map[string][]string, len(cat.Subjects)),
	}
	for _, u := range cat.Users {
		m.users[u.ID] = u
	}
	for _, s := range cat.Subjects {
		m.topics[s.ID] = append([]string(nil), s.Topics...)
	}
	return m
}

// Lookup implements directory.UserDirectory.
func (m *Memory) Lookup(ctx context.Context, userID string) (types.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return types.User{}, fmt.Errorf("user %s: %w", userID, directory.ErrNotFound)
	}
	return u, nil
}

// TopicsOf implements directory.SubjectTopicDirectory.
func (m *Memory) TopicsOf(ctx context.Context, subjectID string) ([]string, error) {
	topics, ok := m.topics[subjectID]
	if !ok {
		return nil, fmt.Errorf("subject %s: %w", subjectID, directory.ErrNotFound)
	}
	return append([]string(nil), topics...), nil
}
