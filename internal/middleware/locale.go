package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/Nandakumartc/sonarqube/pkg/logger"
)

// ContextLocaleKey is the gin context key storing the negotiated locale.
const ContextLocaleKey = logger.LocaleKey

// Locale negotiates the response locale from the "locale" query parameter, then the
// Accept-Language header, against the supported locales. The first supported locale is the
// fallback.
func Locale(supported []string) gin.HandlerFunc {
	tags := make([]language.Tag, 0, len(supported))
	for _, locale := range supported {
		if tag, err := language.Parse(locale); err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		tags = append(tags, language.English)
	}
	matcher := language.NewMatcher(tags)

	return func(c *gin.Context) {
		candidates := []string{c.Query("locale"), c.GetHeader("Accept-Language")}
		_, index := language.MatchStrings(matcher, candidates...)
		base, _ := tags[index].Base()
		c.Set(ContextLocaleKey, base.String())
		c.Next()
	}
}

// LocaleFrom returns the negotiated locale, or fallback when Locale did not run.
func LocaleFrom(c *gin.Context, fallback string) string {
	if locale := c.GetString(ContextLocaleKey); locale != "" {
		return locale
	}
	return fallback
}
