package core

import (
	"bytes"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/trezcool/releve/fs"
)

var (
	templates   tmplCache
	templateErr error
	tmplInit    sync.Once

	templateDir = "templates/email"
)

type (
	tmplCacheEntry struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}
	tmplCache map[string]*tmplCacheEntry // {name: entry}

	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Render executes the message templates. `strict` makes missing template keys an error.
func (m *EmailMessage) Render(frontendBaseURL string, strict bool) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	}
	if m.TemplateName == "" {
		return nil
	}

	tmplInit.Do(parseTemplates) // only execute once during first render
	if templateErr != nil {
		return templateErr
	}
	entry, ok := templates[m.TemplateName]
	if !ok {
		return errors.Errorf("email template %q not found", m.TemplateName)
	}
	data := ContextData{FrontendBaseURL: frontendBaseURL, Data: m.TemplateData}

	if entry.text != nil && m.BodyStr == "" {
		tmpl := entry.text
		if strict {
			tmpl = tmpl.Option("missingkey=error")
		}
		var buff bytes.Buffer
		if err := tmpl.Execute(&buff, data); err != nil {
			return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
		}
		m.TextContent = buff.String()
	}
	if entry.html != nil {
		tmpl := entry.html
		if strict {
			tmpl = tmpl.Option("missingkey=error")
		}
		var buff bytes.Buffer
		if err := tmpl.Execute(&buff, data); err != nil {
			return errors.Wrapf(err, "rendering %s.gohtml", m.TemplateName)
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

func parseTemplates() {
	templates = make(tmplCache)

	fps, err := fs.Glob(appfs.FS, path.Join(templateDir, "*"))
	if err != nil {
		templateErr = errors.Wrap(err, "listing email templates")
		return
	}

	for _, fp := range fps {
		fname := path.Base(fp)
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		entry, ok := templates[name]
		if !ok {
			entry = &tmplCacheEntry{}
			templates[name] = entry
		}
		if ext == ".txt" {
			tmpl, err := texttmpl.ParseFS(appfs.FS, path.Join(templateDir, "_base.txt"), fp)
			if err != nil {
				templateErr = errors.Wrapf(err, "parsing %s", fp)
				return
			}
			entry.text = tmpl
		} else {
			tmpl, err := htmltmpl.ParseFS(appfs.FS, path.Join(templateDir, "_base.gohtml"), fp)
			if err != nil {
				templateErr = errors.Wrapf(err, "parsing %s", fp)
				return
			}
			entry.html = tmpl
		}
	}
}
