package build

import (
	"context"
	"fmt"
	"os"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"cssb/config"
	"cssb/css"
	"cssb/state"
)

// generatePreview writes a standalone XHTML style guide page: the compiled
// stylesheet inlined in the head and a reference section in the body for
// every stylesheet item.
func generatePreview(ctx context.Context, c *job, outputPath string, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	log.Info("Generating preview", zap.String("output", outputPath))

	cssText, err := renderStylesheet(c, env)
	if err != nil {
		return err
	}

	doc := previewDocument(c, string(cssText), "", env, log)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer f.Close()

	if _, err := doc.WriteTo(f); err != nil {
		return fmt.Errorf("unable to write preview: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to finalize output file: %w", err)
	}
	return nil
}

// pageTitle expands the configured preview page title template, falling back
// to the document title.
func pageTitle(c *job, env *state.LocalEnv, log *zap.Logger) string {
	if field := env.Cfg.Document.Preview.PageTitleTemplate; field != "" {
		title, err := expandTemplate(c, config.PageTitleTemplateFieldName, field)
		if err != nil {
			log.Warn("Unable to prepare preview page title", zap.Error(err))
		} else if title != "" {
			return title
		}
	}
	if c.doc.Title != "" {
		return c.doc.Title
	}
	return "Stylesheet preview"
}

// previewDocument builds the XHTML page structure. Exactly one of inlineCSS
// or linkHref should be set: a standalone page inlines the stylesheet, a page
// packed next to its stylesheet links it.
func previewDocument(c *job, inlineCSS, linkHref string, env *state.LocalEnv, log *zap.Logger) *etree.Document {
	title := pageTitle(c, env, log)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")

	head := html.CreateElement("head")

	meta := head.CreateElement("meta")
	meta.CreateAttr("http-equiv", "Content-Type")
	meta.CreateAttr("content", "text/html; charset=utf-8")

	if linkHref != "" {
		link := head.CreateElement("link")
		link.CreateAttr("rel", "stylesheet")
		link.CreateAttr("type", "text/css")
		link.CreateAttr("href", linkHref)
	} else {
		style := head.CreateElement("style")
		style.CreateAttr("type", "text/css")
		style.SetText(inlineCSS)
	}

	titleElem := head.CreateElement("title")
	titleElem.SetText(title)

	body := html.CreateElement("body")

	heading := body.CreateElement("h1")
	heading.SetText(title)

	if sample := env.Cfg.Document.Preview.SampleText; sample != "" {
		p := body.CreateElement("p")
		p.CreateAttr("class", "preview-sample")
		p.SetText(sample)
	}

	for _, item := range c.style.Items {
		switch {
		case item.Import != nil:
			appendImportSection(body, *item.Import)
		case item.FontFace != nil:
			appendFontFaceSection(body, item.FontFace)
		case item.MediaBlock != nil:
			appendMediaSection(body, item.MediaBlock)
		case item.Rule != nil:
			appendRuleSection(body, item.Rule)
		}
	}

	return doc
}

func appendImportSection(parent *etree.Element, url string) {
	div := parent.CreateElement("div")
	div.CreateAttr("class", "preview-import")
	code := div.CreateElement("code")
	code.SetText(fmt.Sprintf("@import url(%q);", url))
}

func appendFontFaceSection(parent *etree.Element, ff *css.FontFace) {
	div := parent.CreateElement("div")
	div.CreateAttr("class", "preview-font-face")

	h := div.CreateElement("h2")
	h.SetText(ff.Family)

	appendDeclarations(div, ff.Declarations())
}

func appendRuleSection(parent *etree.Element, rule *css.Rule) {
	div := parent.CreateElement("div")
	div.CreateAttr("class", "preview-rule")

	h := div.CreateElement("h2")
	code := h.CreateElement("code")
	code.SetText(rule.SelectorText())

	appendDeclarations(div, rule.Declarations)
}

func appendMediaSection(parent *etree.Element, mb *css.MediaBlock) {
	div := parent.CreateElement("div")
	div.CreateAttr("class", "preview-media")

	h := div.CreateElement("h2")
	h.SetText("@media " + mb.Query)

	for i := range mb.Rules {
		appendRuleSection(div, &mb.Rules[i])
	}
}

func appendDeclarations(parent *etree.Element, decls []css.Declaration) {
	if len(decls) == 0 {
		return
	}
	dl := parent.CreateElement("dl")
	for _, d := range decls {
		dt := dl.CreateElement("dt")
		dt.SetText(d.Property)
		dd := dl.CreateElement("dd")
		dd.SetText(d.Value)
	}
}
