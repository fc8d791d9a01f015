package middleware

import (
	"lexdesk/config"
	"lexdesk/services/i18n"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/language"
)

var supportedMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(i18n.SupportedLanguages))
	for i, lang := range i18n.SupportedLanguages {
		tags[i] = language.Make(lang)
	}
	return language.NewMatcher(tags)
}()

// Locale middleware picks the request language.
// Priority:
// 1. Query param "lang" (sets cookie)
// 2. Cookie "lang"
// 3. Accept-Language header
// 4. cfg.DefaultLocale
func Locale(cfg *config.Config) echo.MiddlewareFunc {
	fallback := i18n.Normalize(cfg.DefaultLocale, "en")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := ""
			if q := c.QueryParam("lang"); q != "" {
				lang = i18n.Normalize(q, fallback)

				cookie := new(http.Cookie)
				cookie.Name = "lang"
				cookie.Value = lang
				cookie.Expires = time.Now().Add(24 * 365 * time.Hour) // 1 year
				cookie.Path = "/"
				cookie.HttpOnly = true
				cookie.SameSite = http.SameSiteLaxMode
				cookie.Secure = cfg.IsProduction()
				c.SetCookie(cookie)
			} else if cookie, err := c.Cookie("lang"); err == nil {
				lang = i18n.Normalize(cookie.Value, fallback)
			}

			if lang == "" {
				lang = fromAcceptLanguage(c.Request().Header.Get("Accept-Language"), fallback)
			}

			c.Set("locale", lang)

			return next(c)
		}
	}
}

// fromAcceptLanguage returns the supported language that best matches the
// header, honoring q-weights.
func fromAcceptLanguage(header, fallback string) string {
	if header == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, index, confidence := supportedMatcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	return i18n.SupportedLanguages[index]
}

// GetLocale returns the current locale from context
func GetLocale(c echo.Context) string {
	if lang, ok := c.Get("locale").(string); ok {
		return lang
	}
	return "en"
}
