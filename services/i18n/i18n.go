package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
)

//go:embed *.json
var fs embed.FS

// translations stores flattened keys: "en" -> "autoreply.greeting" -> "Dear {clientName},"
var (
	translations = make(map[string]map[string]string)
	mutex        sync.RWMutex
	defaultLang  = "en"
	loadOnce     sync.Once
	loadErr      error
)

// SupportedLanguages lists the locales shipped with the binary.
var SupportedLanguages = []string{"en", "es"}

// Load initializes the translations from the embedded JSON files.
func Load() error {
	mutex.Lock()
	defer mutex.Unlock()

	entries, err := fs.ReadDir(".")
	if err != nil {
		return fmt.Errorf("failed to read embedded locales: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			lang := strings.TrimSuffix(entry.Name(), ".json")
			content, err := fs.ReadFile(entry.Name())
			if err != nil {
				return fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
			}

			var result map[string]interface{}
			if err := json.Unmarshal(content, &result); err != nil {
				return fmt.Errorf("failed to unmarshal locale %s: %w", entry.Name(), err)
			}

			flat := make(map[string]string)
			flatten("", result, flat)
			translations[lang] = flat
			zap.S().Debugw("Loaded locale", "lang", lang, "keys", len(flat))
		}
	}

	return nil
}

// EnsureLoaded loads the embedded locales once per process.
func EnsureLoaded() error {
	loadOnce.Do(func() {
		loadErr = Load()
	})
	return loadErr
}

// flatten recursively flattens a nested map into dot-notation keys.
func flatten(prefix string, nested map[string]interface{}, result map[string]string) {
	for k, v := range nested {
		newKey := k
		if prefix != "" {
			newKey = prefix + "." + k
		}

		switch child := v.(type) {
		case map[string]interface{}:
			flatten(newKey, child, result)
		case string:
			result[newKey] = child
		default:
			result[newKey] = fmt.Sprintf("%v", child)
		}
	}
}

// Translate retrieves a translation for a specific language code.
// Missing keys fall back to the default language, then to the key itself.
func Translate(lang, key string, args ...map[string]interface{}) string {
	mutex.RLock()
	defer mutex.RUnlock()

	if trans, ok := translations[lang]; ok {
		if val, ok := trans[key]; ok {
			return format(val, args...)
		}
	}

	if lang != defaultLang {
		if trans, ok := translations[defaultLang]; ok {
			if val, ok := trans[key]; ok {
				return format(val, args...)
			}
		}
	}

	return key
}

// Has reports whether key resolves in lang or the default language.
func Has(lang, key string) bool {
	mutex.RLock()
	defer mutex.RUnlock()

	if trans, ok := translations[lang]; ok {
		if _, ok := trans[key]; ok {
			return true
		}
	}
	if trans, ok := translations[defaultLang]; ok {
		_, ok := trans[key]
		return ok
	}
	return false
}

// Normalize maps a language tag such as "es-CO" to a supported language,
// returning fallback when nothing matches.
func Normalize(lang, fallback string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	for _, supported := range SupportedLanguages {
		if lang == supported {
			return lang
		}
	}
	return fallback
}

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// format replaces {var} placeholders with values from args in a single pass.
// Substituted values are never expanded again.
func format(text string, args ...map[string]interface{}) string {
	if len(args) == 0 || len(args[0]) == 0 {
		return text
	}

	vars := args[0]
	return placeholderRe.ReplaceAllStringFunc(text, func(placeholder string) string {
		if v, ok := vars[placeholder[1:len(placeholder)-1]]; ok {
			return fmt.Sprintf("%v", v)
		}
		return placeholder
	})
}
