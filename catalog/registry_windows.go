//go:build windows

package catalog

import (
	"errors"

	"golang.org/x/sys/windows/registry"
)

// NewRegistryStore returns a Store rooted at the per-user hive
// (HKEY_CURRENT_USER) of the Windows registry.
func NewRegistryStore() Store {
	return registryStore{hive: registry.CURRENT_USER}
}

type registryStore struct {
	hive registry.Key
}

func (s registryStore) Open(path string) (Key, error) {
	k, err := registry.OpenKey(s.hive, path, registry.QUERY_VALUE|registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, mapRegistryError(err)
	}
	return registryKey{key: k}, nil
}

func (s registryStore) Create(path string) (Key, error) {
	k, _, err := registry.CreateKey(s.hive, path, registry.ALL_ACCESS)
	if err != nil {
		return nil, mapRegistryError(err)
	}
	return registryKey{key: k}, nil
}

type registryKey struct {
	key registry.Key
}

func (k registryKey) Subkeys() ([]string, error) {
	names, err := k.key.ReadSubKeyNames(-1)
	if err != nil {
		return nil, mapRegistryError(err)
	}
	return names, nil
}

func (k registryKey) Value(name string) (string, error) {
	value, _, err := k.key.GetStringValue(name)
	if err != nil {
		return "", mapRegistryError(err)
	}
	return value, nil
}

func (k registryKey) SetValue(name, value string) error {
	return mapRegistryError(k.key.SetStringValue(name, value))
}

func (k registryKey) Close() error {
	return k.key.Close()
}

func mapRegistryError(err error) error {
	if errors.Is(err, registry.ErrNotExist) {
		return ErrNotExist
	}
	return err
}
