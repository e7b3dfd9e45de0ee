package build

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"cssb/common"
	"cssb/css"
	"cssb/sheet"
)

func styleForRender() *css.Stylesheet {
	imp := "base.css"
	return &css.Stylesheet{Items: []css.StylesheetItem{
		{Import: &imp},
		{Rule: &css.Rule{
			Selectors:    []string{"p.note"},
			Declarations: []css.Declaration{{Property: "margin", Value: "0"}},
		}},
	}}
}

func jobForRender(format common.OutputFmt) *job {
	return &job{
		srcName: "doc.yaml",
		format:  format,
		doc:     &sheet.Document{Version: 1, ID: "render-test", Title: "Render Test"},
		style:   styleForRender(),
	}
}

func TestRenderStylesheet_Pretty(t *testing.T) {
	_, env := setupTestEnv(t)

	data, err := renderStylesheet(jobForRender(common.OutputFmtCss), env)
	if err != nil {
		t.Fatalf("renderStylesheet() error = %v", err)
	}

	expected := "@import url(\"base.css\");\n\np.note {\n  margin: 0;\n}\n"
	if string(data) != expected {
		t.Errorf("renderStylesheet() = %q, want %q", data, expected)
	}
}

func TestRenderStylesheet_Compact(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Cfg.Document.Render = common.RenderModeCompact

	data, err := renderStylesheet(jobForRender(common.OutputFmtCss), env)
	if err != nil {
		t.Fatalf("renderStylesheet() error = %v", err)
	}

	expected := "@import url(\"base.css\");p.note{margin:0}"
	if string(data) != expected {
		t.Errorf("renderStylesheet() = %q, want %q", data, expected)
	}
}

func TestRenderStylesheet_Prelude(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Prelude = []byte("/* reset */\n\n")

	data, err := renderStylesheet(jobForRender(common.OutputFmtCss), env)
	if err != nil {
		t.Fatalf("renderStylesheet() error = %v", err)
	}

	expected := "/* reset */\n\n@import url(\"base.css\");\n\np.note {\n  margin: 0;\n}\n"
	if string(data) != expected {
		t.Errorf("renderStylesheet() = %q, want %q", data, expected)
	}
}

func TestGenerateCSS(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	outputPath := filepath.Join(t.TempDir(), "out.css")
	if err := generateCSS(ctx, jobForRender(common.OutputFmtCss), outputPath, logger); err != nil {
		t.Fatalf("generateCSS() error = %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	expected := "@import url(\"base.css\");\n\np.note {\n  margin: 0;\n}\n"
	if string(data) != expected {
		t.Errorf("generateCSS() output = %q, want %q", data, expected)
	}
}
