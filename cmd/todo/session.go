package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ayush/todolist/backend/internal/client"
)

func dataPath(name string) string {
	return filepath.Join(viper.GetString("data_dir"), name)
}

func readToken() string {
	b, err := os.ReadFile(dataPath("session"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func writeToken(token string) error {
	if err := os.MkdirAll(viper.GetString("data_dir"), 0o700); err != nil {
		return err
	}
	return os.WriteFile(dataPath("session"), []byte(token), 0o600)
}

func removeToken() error {
	if err := os.Remove(dataPath("session")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func newAPI() *client.API {
	return client.NewAPI(viper.GetString("server"))
}

// openMirror loads the list from the server when a session is stored, else
// from the local file. An expired session is dropped.
func openMirror(ctx context.Context) (*client.Mirror, error) {
	api := newAPI()
	m := client.NewMirror(api, client.NewLocalStore(dataPath("todos.json")))

	token := readToken()
	if token == "" {
		return m, m.SignOut()
	}
	api.SetToken(token)
	err := m.SignIn(ctx)

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		warn("session expired, using the local list (run `todo login` again)")
		if err := removeToken(); err != nil {
			return nil, err
		}
		return m, m.SignOut()
	}
	return m, err
}
