package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File names inside a level directory and at the levels root.
const (
	LevelFile    = "level.yaml"
	LoreFile     = "lore.json"
	MazeFile     = "maze.txt"
	MetaFile     = "meta.vim"
	SpiesFile    = "spies.vim"
	ManifestFile = "manifest.vim"

	// LevelDirPrefix marks a directory under the levels root as a level.
	LevelDirPrefix = "level"
)

// Artifacts are the rendered files of one level. Spies is empty when the
// level has no spies.
type Artifacts struct {
	Maze  string
	Meta  string
	Spies string
}

// DecodeLevel parses level.yaml content. Unknown keys are rejected.
func DecodeLevel(data []byte) (*Level, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var level Level
	if err := dec.Decode(&level); err != nil {
		return nil, &ConfigError{Field: LevelFile, Err: err}
	}
	return &level, nil
}

// LoadLevel reads level.yaml and the optional lore.json from dir.
func LoadLevel(dir string) (*Level, *Lore, error) {
	data, err := os.ReadFile(filepath.Join(dir, LevelFile))
	if err != nil {
		return nil, nil, err
	}
	level, err := DecodeLevel(data)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Level = dir
		}
		return nil, nil, err
	}

	lore := &Lore{}
	loreData, err := os.ReadFile(filepath.Join(dir, LoreFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, nil, err
	default:
		if err := json.Unmarshal(loreData, lore); err != nil {
			return nil, nil, &ConfigError{Level: dir, Field: LoreFile, Err: err}
		}
	}
	return level, lore, nil
}

// SaveLevel writes level.yaml into dir, creating it if needed.
func SaveLevel(dir string, level *Level) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(level)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, LevelFile), data, 0644)
}

// SaveLore writes lore.json into dir, creating it if needed.
func SaveLore(dir string, lore *Lore) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(lore, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, LoreFile), append(data, '\n'), 0644)
}

// WriteArtifacts writes maze.txt and meta.vim, and spies.vim when there are
// spies. A stale spies.vim is removed otherwise.
func WriteArtifacts(dir string, a *Artifacts) error {
	if err := os.WriteFile(filepath.Join(dir, MazeFile), []byte(a.Maze), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, MetaFile), []byte(a.Meta), 0644); err != nil {
		return err
	}

	spiesPath := filepath.Join(dir, SpiesFile)
	if a.Spies == "" {
		if err := os.Remove(spiesPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return os.WriteFile(spiesPath, []byte(a.Spies), 0644)
}

// ReadArtifacts loads whatever artifacts exist in dir. present records
// which files were found; missing ones are left empty.
func ReadArtifacts(dir string) (a Artifacts, present map[string]bool, err error) {
	present = make(map[string]bool)
	for name, dst := range map[string]*string{
		MazeFile:  &a.Maze,
		MetaFile:  &a.Meta,
		SpiesFile: &a.Spies,
	} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Artifacts{}, nil, fmt.Errorf("reading %s: %w", name, err)
		}
		*dst = string(data)
		present[name] = true
	}
	return a, present, nil
}

// ScanLevels lists the level directories under root in name order.
// A missing root yields no levels.
func ScanLevels(root string) ([]string, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var levels []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), LevelDirPrefix) {
			levels = append(levels, entry.Name())
		}
	}
	return levels, nil
}

// WriteManifest writes manifest.vim at the levels root.
func WriteManifest(root, manifest string) error {
	return os.WriteFile(filepath.Join(root, ManifestFile), []byte(manifest), 0644)
}
