package fsstorage

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/sgostarter/i/commerr"
	"github.com/sgostarter/i/stg"
	"github.com/sgostarter/libeasygo/pathutils"
	"github.com/sgostarter/libeasygo/stg/fs/rawfs"
	"github.com/sgostarter/libtemporal/recorder"
)

const fileExt = ".tv"

// NewStorage keeps one file per stream under root.
func NewStorage(root string) (*Storage, error) {
	if err := pathutils.MustDirExists(root); err != nil {
		return nil, err
	}

	return &Storage{
		root:    root,
		storage: rawfs.NewFSStorage(root),
	}, nil
}

type Storage struct {
	root    string
	storage stg.FileStorage
}

func (s *Storage) fileNameByKey(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: bad stream key %q", commerr.ErrInvalidArgument, key)
	}

	return key + fileExt, nil
}

func (s *Storage) Load(_ context.Context, key string) (d []byte, err error) {
	name, err := s.fileNameByKey(key)
	if err != nil {
		return
	}

	d, err = s.storage.ReadFile(name)
	if os.IsNotExist(err) {
		err = fmt.Errorf("%w: %s", recorder.ErrNoStream, key)
	}

	return
}

func (s *Storage) Save(_ context.Context, key string, d []byte) (err error) {
	name, err := s.fileNameByKey(key)
	if err != nil {
		return
	}

	err = s.storage.WriteFile(name, d)

	return
}

func (s *Storage) Remove(_ context.Context, key string) (err error) {
	name, err := s.fileNameByKey(key)
	if err != nil {
		return
	}

	err = os.Remove(path.Join(s.root, name))
	if os.IsNotExist(err) {
		err = nil
	}

	return
}

func (s *Storage) Keys(_ context.Context) (keys []string, err error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}

		keys = append(keys, strings.TrimSuffix(entry.Name(), fileExt))
	}

	sort.Strings(keys)

	return
}
