// loader.go — загрузка встроенных каталогов переводов.
package i18n

import (
	"fmt"
	"log/slog"
	"path"
	"strings"
)

// LoadFromEmbedFS читает все locales/*.json из встроенной ФС
// и регистрирует их в bundle; код языка — имя файла без расширения.
func LoadFromEmbedFS(bundle *Bundle, logger *slog.Logger) error {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("i18n: чтение locales: %w", err)
	}

	loaded := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return fmt.Errorf("i18n: чтение %s: %w", name, err)
		}

		lang := strings.TrimSuffix(name, ".json")
		if err := bundle.LoadMessages(lang, data); err != nil {
			return err
		}
		loaded++
	}

	if loaded == 0 {
		return fmt.Errorf("i18n: каталоги переводов не найдены")
	}

	logger.Info("i18n каталоги загружены", slog.Int("languages", loaded))
	return nil
}
