package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"mdc/common"
	"mdc/config"
	"mdc/content"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Title      string
	Language   string
	Format     string
	SourceFile string
	SourceDir  string
	DocumentID string
	Encoding   string
	Headers    []string
	Date       string
}

func expandTemplate(c *content.Content, name config.TemplateFieldName, field string, format common.OutputFmt, lang string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Title:      c.Title,
		Language:   lang,
		Format:     format.String(),
		SourceFile: strings.TrimSuffix(filepath.Base(c.SrcName), filepath.Ext(c.SrcName)),
		SourceDir:  filepath.ToSlash(filepath.Dir(c.SrcName)),
		DocumentID: c.ID.String(),
		Encoding:   c.Encoding,
		Headers:    c.Headers(),
		Date:       time.Now().Format("2006-01-02"),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
