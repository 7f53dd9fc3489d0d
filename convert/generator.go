package convert

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"mdc/common"
	"mdc/config"
	"mdc/content"
	"mdc/misc"
	"mdc/state"
)

//go:embed page.html.tmpl
var pageTemplate string

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

// pageValues are made available to page template.
type pageValues struct {
	Language   string
	Title      string
	Generator  string
	DocumentID string
	Style      string
	Body       string
}

// generate writes converted document in requested format.
func generate(w io.Writer, c *content.Content, env *state.LocalEnv, log *zap.Logger) error {
	switch env.Format {
	case common.OutputFmtFragment:
		_, err := io.WriteString(w, c.HTML())
		return err
	case common.OutputFmtPage:
		return writePage(w, c, env, log)
	default:
		return fmt.Errorf("unsupported output format %s", env.Format)
	}
}

func writePage(w io.Writer, c *content.Content, env *state.LocalEnv, log *zap.Logger) error {
	title := c.Title
	if tt := env.Cfg.Document.Page.TitleTemplate; len(tt) > 0 {
		expanded, err := expandTemplate(c, config.PageTitleTemplateFieldName, tt, env.Format, env.PageLanguage)
		if err != nil {
			log.Warn("Unable to prepare page title, using document title", zap.Error(err))
		} else if expanded = strings.TrimSpace(expanded); len(expanded) > 0 {
			title = expanded
		}
	}

	values := pageValues{
		Language:   env.PageLanguage,
		Title:      title,
		Generator:  misc.GetAppName() + " " + misc.GetVersion(),
		DocumentID: c.ID.String(),
		Style:      env.PageStyle,
		Body:       c.HTML(),
	}
	if err := pageTmpl.Execute(w, values); err != nil {
		return fmt.Errorf("unable to render page: %w", err)
	}
	return nil
}
