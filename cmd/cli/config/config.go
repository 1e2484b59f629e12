package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/crucial707/notes-api/internal/client"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".notes_token"
)

// ErrNotLoggedIn is returned when no saved token exists.
var ErrNotLoggedIn = errors.New("not logged in: run `notes login` first")

// APIURL returns the base URL for the notes API.
// It can be overridden with the NOTES_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("NOTES_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// TokenPath is ~/.notes_token unless NOTES_TOKEN_FILE is set.
func TokenPath() string {
	if v := os.Getenv("NOTES_TOKEN_FILE"); v != "" {
		return v
	}
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}

// ==========================
// Token Storage Helpers
// ==========================
func SaveToken(token string) error {
	return os.WriteFile(TokenPath(), []byte(token), 0600)
}

func LoadToken() (string, error) {
	data, err := os.ReadFile(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// RemoveToken deletes the saved token. It reports false when there was none.
func RemoveToken() (bool, error) {
	err := os.Remove(TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// ==========================
// API Clients
// ==========================

// Client returns an API client carrying the saved token.
func Client() (*client.Client, error) {
	token, err := LoadToken()
	if err != nil {
		return nil, err
	}
	return client.New(APIURL(), token), nil
}

// AnonymousClient returns an API client for register and login.
func AnonymousClient() *client.Client {
	return client.New(APIURL(), "")
}

// Prompt asks for a value on out and reads one line from in. It reads byte by
// byte so consecutive prompts can share a piped stdin.
func Prompt(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)

	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			sb.WriteByte(buf[0])
		}
		if errors.Is(err, io.EOF) {
			if sb.Len() == 0 {
				return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
			}
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
