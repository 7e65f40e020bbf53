package helpers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CookieManager writes the session cookie with deployment-wide settings.
type CookieManager struct {
	Name   string
	Domain string
	Secure bool
}

func NewCookieManager(name, domain string, secure bool) *CookieManager {
	return &CookieManager{Name: name, Domain: domain, Secure: secure}
}

// Set writes the session cookie. maxAge 0 yields a session-only cookie that
// dies with the browser.
func (m *CookieManager) Set(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.Name, value, maxAge, "/", m.Domain, m.Secure, true)
}

func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.Name, "", -1, "/", m.Domain, m.Secure, true)
}
