// Package config содержит функции для работы с локальной конфигурацией CLI-клиента.
//
// Конфигурация хранит адрес сервера по умолчанию и размещается
// в домашней директории пользователя в файле:
//
//	~/.schedctl/config.json
//
// Путь можно переопределить переменной окружения SCHEDCTL_CONFIG.
package config

import (
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// EnvPath — переменная окружения с альтернативным путём к файлу настроек.
const EnvPath = "SCHEDCTL_CONFIG"

// DefaultServer — адрес сервера, если ни флаг, ни файл настроек его не задают.
const DefaultServer = "http://127.0.0.1:8080"

// Settings содержит настройки CLI-клиента.
type Settings struct {
	Server string `json:"server,omitempty"`
}

// DefaultPath возвращает путь к файлу настроек.
//
// Формат пути:
//
//	<home>/.schedctl/config.json
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".schedctl", "config.json"), nil
}

// Load загружает настройки из указанного файла.
//
// Если файл не существует, возвращает пустые настройки без ошибки.
// Если файл существует, но содержит некорректный JSON, возвращает ошибку.
func Load(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// дефолтный конфиг, если файла нет
			return &Settings{}, nil
		}
		return nil, err
	}
	var s Settings
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save сохраняет настройки в указанный файл в JSON формате.
//
// При необходимости создаёт директорию назначения с правами 0700.
// Файл записывается с правами 0600.
func Save(path string, s *Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// NormalizeServer проверяет адрес сервера (http/https и host) и обрезает завершающий "/".
func NormalizeServer(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("server URL must start with http:// or https://")
	}
	if u.Host == "" {
		return "", errors.New("server URL must contain a host")
	}
	return strings.TrimRight(raw, "/"), nil
}
