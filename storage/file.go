// Package storage provides durable mirrors for cart records.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"go-storefront/cart"
)

// FileMirror stores each record as <dir>/<key>.json.
type FileMirror struct {
	dir string
}

func NewFileMirror(dir string) (*FileMirror, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create cart directory %s", dir)
	}
	return &FileMirror{dir: dir}, nil
}

func (m *FileMirror) path(key string) string {
	return filepath.Join(m.dir, fileName(key)+".json")
}

const hexDigits = "0123456789abcdef"

// fileName keeps letters, digits and '-' and writes every other byte,
// '_' included, as _xx. Distinct keys map to distinct names.
func fileName(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		}
	}
	return b.String()
}

func (m *FileMirror) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(m.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, cart.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read cart %s", key)
	}
	return data, nil
}

// Save writes to a temporary file and renames it over the record so a
// reader never sees a half-written file.
func (m *FileMirror) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(m.dir, ".cart-*")
	if err != nil {
		return errors.Wrap(err, "create temp cart file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write cart %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close cart %s", key)
	}
	if err := os.Rename(tmp.Name(), m.path(key)); err != nil {
		return errors.Wrapf(err, "replace cart %s", key)
	}
	return nil
}
