package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned when neither an inline key nor a key file is
// provided.
var ErrNotConfigured = errors.New("gemini api key is not configured")

// APIKey resolves the Gemini API key from the inline config value or a key
// file. The file takes precedence when set, so a mounted credential always
// wins over a stale inline value. The returned key is trimmed.
func APIKey(value, file string) (string, error) {
	file = strings.TrimSpace(file)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading gemini api key file %q: %w", file, err)
		}
		key := strings.TrimSpace(string(data))
		if key == "" {
			return "", fmt.Errorf("gemini api key file %q is empty", file)
		}
		return key, nil
	}

	key := strings.TrimSpace(value)
	if key == "" {
		return "", ErrNotConfigured
	}
	return key, nil
}
