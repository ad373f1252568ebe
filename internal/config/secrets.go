package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ReadSecret читает секрет из файла dir/name (Docker secrets).
func ReadSecret(dir, name string) (string, error) {
	filePath := filepath.Join(dir, name)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// lookupSecret: сначала файл секрета, затем переменные окружения по порядку.
func lookupSecret(dir, name string, envKeys ...string) string {
	if secret, err := ReadSecret(dir, name); err == nil {
		return secret
	}
	for _, key := range envKeys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// Mask скрывает секрет, оставляя последние 4 символа для сверки.
func Mask(secret string) string {
	switch {
	case secret == "":
		return "[НЕ ЗАДАН]"
	case len(secret) <= 8:
		return "***"
	default:
		return "***" + secret[len(secret)-4:]
	}
}

func maskURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[НЕКОРРЕКТНЫЙ URL]"
	}
	return u.Redacted()
}
