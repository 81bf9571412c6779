package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sliramanoel/venda/internal/i18n"
	"golang.org/x/text/language"
)

const languageKey = "lang"

// Language negotiates the response language from Accept-Language
func Language(fallback language.Tag) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(languageKey, i18n.Match(c.GetHeader("Accept-Language"), fallback))
		c.Next()
	}
}

// LanguageFrom returns the negotiated language, Portuguese when none was negotiated
func LanguageFrom(c *gin.Context) language.Tag {
	if v, ok := c.Get(languageKey); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	return i18n.Portuguese
}

// Localize renders a catalog message in the request language
func Localize(c *gin.Context, key i18n.Key, args ...any) string {
	return i18n.Sprintf(LanguageFrom(c), key, args...)
}

// AbortWithError writes a localized {"error": ...} body and stops the chain
func AbortWithError(c *gin.Context, status int, key i18n.Key) {
	c.AbortWithStatusJSON(status, gin.H{"error": Localize(c, key)})
}
