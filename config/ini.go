package config

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// INIReader reads configparser-style INI documents. Values may span
// multiple indented lines, and directory-list values may contain glob
// patterns, which are expanded against the reader's filesystem.
type INIReader struct {
	file *ini.File
	fs   afero.Fs
}

var _ Reader = (*INIReader)(nil)

// NewINIReader parses the INI document at path on fsys. Directory lookups
// resolve against the same filesystem.
func NewINIReader(fsys afero.Fs, path string) (*INIReader, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file %s: %w", path, err)
	}

	file, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		IgnoreInlineComment:        true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("parsing configuration file %s: %w", path, err)
	}
	return &INIReader{file: file, fs: fsys}, nil
}

// HasSection reports whether the named section exists in the document.
func (r *INIReader) HasSection(section string) bool {
	if section == ini.DefaultSection {
		return false
	}
	_, err := r.file.GetSection(section)
	return err == nil
}

// Sections lists the named sections of the document, excluding the unnamed
// default section.
func (r *INIReader) Sections() []string {
	var names []string
	for _, name := range r.file.SectionStrings() {
		if name == ini.DefaultSection {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Get returns the value of key in section, or fallback when absent.
func (r *INIReader) Get(section, key, fallback string) string {
	sec, err := r.file.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return fallback
	}
	return sec.Key(key).String()
}

// Dirs interprets the key's value as a directory list. Entries are split on
// newlines, commas, and semicolons, glob patterns are expanded, and
// anything that is not an existing directory is dropped.
func (r *INIReader) Dirs(section, key string) []string {
	raw := r.Get(section, key, "")
	if raw == "" {
		return nil
	}

	var dirs []string
	for _, entry := range splitList(raw) {
		dirs = append(dirs, r.expand(entry)...)
	}
	return dirs
}

func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == ',' || r == ';'
	})

	var entries []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			entries = append(entries, f)
		}
	}
	return entries
}

func (r *INIReader) expand(entry string) []string {
	if !strings.ContainsAny(entry, "*?[") {
		if ok, err := afero.DirExists(r.fs, entry); err == nil && ok {
			return []string{entry}
		}
		return nil
	}

	matches, err := afero.Glob(r.fs, entry)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, match := range matches {
		if ok, err := afero.DirExists(r.fs, match); err == nil && ok {
			dirs = append(dirs, match)
		}
	}
	return dirs
}
