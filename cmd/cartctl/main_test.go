package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-storefront/cart"
)

func runCartctl(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(zap.NewNop())
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"cartctl", "--dir", dir, "--tax-rate", "0.1"}, args...))
	return out.String(), err
}

func readCart(t *testing.T, dir string) cart.Cart {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "cart.json"))
	require.NoError(t, err)
	var c cart.Cart
	require.NoError(t, json.Unmarshal(data, &c))
	return c
}

func TestCartctl_Session(t *testing.T) {
	dir := t.TempDir()

	out, err := runCartctl(t, dir, "add", "--id", "1", "--name", "Guitar", "--price", "100", "--quantity", "2", "--category", "instruments")
	require.NoError(t, err)
	require.Contains(t, out, "Guitar")
	require.Contains(t, out, "220.00")

	_, err = runCartctl(t, dir, "add", "--id", "2", "--name", "Pick", "--price", "1", "--quantity", "10")
	require.NoError(t, err)

	c := readCart(t, dir)
	require.Equal(t, 12, c.ItemCount())
	item, ok := c.Find(1)
	require.True(t, ok)
	require.Equal(t, "instruments", item.Category())

	out, err = runCartctl(t, dir, "show")
	require.NoError(t, err)
	require.Contains(t, out, "210.00")
	require.Contains(t, out, "231.00")

	_, err = runCartctl(t, dir, "update", "1", "1")
	require.NoError(t, err)
	require.Equal(t, 11, readCart(t, dir).ItemCount())

	_, err = runCartctl(t, dir, "update", "2", "0")
	require.NoError(t, err)
	_, ok = readCart(t, dir).Find(2)
	require.False(t, ok)

	_, err = runCartctl(t, dir, "remove", "1")
	require.NoError(t, err)
	require.Equal(t, 0, readCart(t, dir).Len())

	_, err = runCartctl(t, dir, "add", "--id", "3", "--name", "Strap", "--price", "15")
	require.NoError(t, err)
	_, err = runCartctl(t, dir, "clear")
	require.NoError(t, err)
	require.Equal(t, 0, readCart(t, dir).Len())
}

func TestCartctl_ShowEmpty(t *testing.T) {
	out, err := runCartctl(t, t.TempDir(), "show")
	require.NoError(t, err)
	require.Contains(t, out, "total")
	require.Contains(t, out, "0.00")
}

func TestCartctl_MalformedRecordStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cart.json"), []byte(`{"not":"a cart"}`), 0o600))

	_, err := runCartctl(t, dir, "add", "--id", "1", "--name", "Guitar", "--price", "100")
	require.NoError(t, err)
	require.Equal(t, 1, readCart(t, dir).ItemCount())
}

func TestCartctl_BadInput(t *testing.T) {
	dir := t.TempDir()
	for name, args := range map[string][]string{
		"negative price": {"add", "--id", "1", "--name", "x", "--price", "-1"},
		"bad price":      {"add", "--id", "1", "--name", "x", "--price", "abc"},
		"missing id":     {"remove"},
		"bad quantity":   {"update", "1", "lots"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := runCartctl(t, dir, args...)
			require.Error(t, err)
		})
	}
	_, err := os.Stat(filepath.Join(dir, "cart.json"))
	require.True(t, os.IsNotExist(err))
}
