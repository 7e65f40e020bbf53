package templates

import (
	"bytes"
	"embed"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

// ResetPasswordData feeds the reset_password template. The link carries the
// user id and a time-limited signed token.
type ResetPasswordData struct {
	Name      string
	AppName   string
	ResetURL  string
	UID       string
	Token     string
	ExpiresIn string
}

var tmpl = htmpl.Must(htmpl.ParseFS(FS, "*.tmpl"))

// RenderHTML renders the named template with the given data.
func RenderHTML(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
