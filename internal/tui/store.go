package tui

import (
	"github.com/quasilyte/gdata"
)

const lastLevelKey = "last_level"

// Store remembers the last level the browser showed.
type Store interface {
	Last() string
	Remember(name string) error
}

type gdataStore struct {
	m *gdata.Manager
}

// OpenStore opens the per-user data directory of levelforge.
func OpenStore() (Store, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: "levelforge",
	})
	if err != nil {
		return nil, err
	}
	return &gdataStore{m: m}, nil
}

func (s *gdataStore) Last() string {
	data, err := s.m.LoadItem(lastLevelKey)
	if err != nil || len(data) == 0 {
		return ""
	}
	return string(data)
}

func (s *gdataStore) Remember(name string) error {
	return s.m.SaveItem(lastLevelKey, []byte(name))
}

type nopStore struct{}

func (nopStore) Last() string          { return "" }
func (nopStore) Remember(string) error { return nil }
