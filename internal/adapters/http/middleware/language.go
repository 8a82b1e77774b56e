package middleware

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"

	"tarit-loan/internal/pkg/i18n"
)

const localLang = "lang"

// Language resolves the response language from ?lang= and Accept-Language
func Language() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localLang, i18n.Match(c.Query("lang"), c.Get(fiber.HeaderAcceptLanguage)))
		return c.Next()
	}
}

// Lang returns the resolved language, English when none was set
func Lang(c *fiber.Ctx) language.Tag {
	if tag, ok := c.Locals(localLang).(language.Tag); ok {
		return tag
	}
	return language.English
}
