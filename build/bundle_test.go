package build

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	yaml "gopkg.in/yaml.v3"

	"cssb/common"
	"cssb/css"
	"cssb/sheet"
)

func jobForBundle(workDir string) *job {
	imp := "base.css"
	return &job{
		srcName: "path/to/doc.yaml",
		format:  common.OutputFmtBundle,
		workDir: workDir,
		doc:     &sheet.Document{Version: 1, ID: "bundle-test", Title: "Bundle Test"},
		style: &css.Stylesheet{Items: []css.StylesheetItem{
			{Import: &imp},
			{FontFace: &css.FontFace{
				Family: "Test Serif",
				Src:    `url("assets/myfont.woff")`,
				Weight: "400",
			}},
			{Rule: &css.Rule{
				Selectors:    []string{"p.note"},
				Declarations: []css.Declaration{{Property: "color", Value: "#333333"}},
			}},
		}},
	}
}

func readZipMember(t *testing.T, zr *zip.ReadCloser, name string) []byte {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open zip member %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read zip member %s: %v", name, err)
		}
		return data
	}
	t.Fatalf("zip member %s not found", name)
	return nil
}

func TestGenerateBundle(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	workDir := t.TempDir()
	c := jobForBundle(workDir)
	resources := fstest.MapFS{"assets/myfont.woff": {Data: woffFixture()}}

	outputPath := filepath.Join(t.TempDir(), "out.zip")
	if err := generateBundle(ctx, c, outputPath, resources, logger); err != nil {
		t.Fatalf("generateBundle() error = %v", err)
	}

	// The scratch copy in the working directory is cleaned up.
	if _, err := os.Stat(filepath.Join(workDir, "out.zip")); !os.IsNotExist(err) {
		t.Errorf("temporary bundle copy left behind: %v", err)
	}

	zr, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("open bundle: %v", err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	expected := []string{"styles.css", "fonts/myfont.woff", "preview.xhtml", "bundle.yaml"}
	if len(names) != len(expected) {
		t.Fatalf("bundle members = %v, want %v", names, expected)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("bundle member[%d] = %q, want %q", i, names[i], name)
		}
	}

	// Stylesheet references are rewritten to the packed copies.
	cssText := string(readZipMember(t, zr, "styles.css"))
	if !strings.Contains(cssText, `url("fonts/myfont.woff")`) {
		t.Errorf("styles.css = %q, want packed font reference", cssText)
	}
	if strings.Contains(cssText, "assets/myfont.woff") {
		t.Errorf("styles.css still references original location: %q", cssText)
	}
	if !strings.HasPrefix(cssText, `@import url("base.css");`) {
		t.Errorf("styles.css = %q, want import first", cssText)
	}

	// Preview links the packed stylesheet instead of inlining it.
	preview := etree.NewDocument()
	if err := preview.ReadFromBytes(readZipMember(t, zr, "preview.xhtml")); err != nil {
		t.Fatalf("preview.xhtml does not parse: %v", err)
	}
	link := preview.FindElement("/html/head/link")
	if link == nil {
		t.Fatal("preview has no stylesheet link")
	}
	if href := link.SelectAttrValue("href", ""); href != "styles.css" {
		t.Errorf("preview link href = %q, want styles.css", href)
	}

	var meta bundleMetadata
	if err := yaml.Unmarshal(readZipMember(t, zr, "bundle.yaml"), &meta); err != nil {
		t.Fatalf("bundle.yaml does not parse: %v", err)
	}
	if meta.ID != "bundle-test" || meta.Title != "Bundle Test" {
		t.Errorf("metadata identity = %q/%q, want bundle-test/Bundle Test", meta.ID, meta.Title)
	}
	if meta.Source != "doc.yaml" {
		t.Errorf("metadata source = %q, want doc.yaml", meta.Source)
	}
	if meta.Styles != "styles.css" || meta.Preview != "preview.xhtml" {
		t.Errorf("metadata members = %q/%q, want styles.css/preview.xhtml", meta.Styles, meta.Preview)
	}
	if len(meta.Fonts) != 1 || meta.Fonts[0] != "fonts/myfont.woff" {
		t.Errorf("metadata fonts = %v, want [fonts/myfont.woff]", meta.Fonts)
	}
	if meta.Generator == "" {
		t.Error("metadata generator is empty")
	}
	if _, err := time.Parse(time.RFC3339, meta.Created); err != nil {
		t.Errorf("metadata created %q is not RFC3339: %v", meta.Created, err)
	}
}

func TestGenerateBundle_NoResources(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	c := jobForBundle(t.TempDir())
	outputPath := filepath.Join(t.TempDir(), "out.zip")
	if err := generateBundle(ctx, c, outputPath, nil, logger); err != nil {
		t.Fatalf("generateBundle() error = %v", err)
	}

	zr, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("open bundle: %v", err)
	}
	defer zr.Close()

	if len(zr.File) != 3 {
		t.Errorf("bundle has %d members, want 3", len(zr.File))
	}

	var meta bundleMetadata
	if err := yaml.Unmarshal(readZipMember(t, zr, "bundle.yaml"), &meta); err != nil {
		t.Fatalf("bundle.yaml does not parse: %v", err)
	}
	if len(meta.Fonts) != 0 {
		t.Errorf("metadata fonts = %v, want none", meta.Fonts)
	}

	// Without a resolvable filesystem the reference stays as authored.
	cssText := string(readZipMember(t, zr, "styles.css"))
	if !strings.Contains(cssText, `url("assets/myfont.woff")`) {
		t.Errorf("styles.css = %q, want original font reference", cssText)
	}
}

func TestGenerateBundle_NoFixZip(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Cfg.Document.FixZip = false
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))

	c := jobForBundle(t.TempDir())
	outputPath := filepath.Join(t.TempDir(), "out.zip")
	if err := generateBundle(ctx, c, outputPath, nil, logger); err != nil {
		t.Fatalf("generateBundle() error = %v", err)
	}

	zr, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("open bundle: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 3 {
		t.Errorf("bundle has %d members, want 3", len(zr.File))
	}
}

func TestCopyZipWithoutDataDescriptors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.zip")
	dst := filepath.Join(dir, "dst.zip")

	f, err := os.Create(src)
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	zw := zip.NewWriter(f)
	entries := []struct{ name, content string }{
		{"a.txt", "alpha"},
		{"b/b.txt", "beta"},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(e.content)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close source: %v", err)
	}

	if err := copyZipWithoutDataDescriptors(src, dst); err != nil {
		t.Fatalf("copyZipWithoutDataDescriptors() error = %v", err)
	}

	zr, err := fixzip.OpenReader(dst)
	if err != nil {
		t.Fatalf("open destination: %v", err)
	}
	defer zr.Close()

	if len(zr.File) != 2 {
		t.Fatalf("destination has %d entries, want 2", len(zr.File))
	}
	for _, file := range zr.File {
		if file.Flags&fixzip.FlagDataDescriptor != 0 {
			t.Errorf("entry %s still carries the data descriptor flag", file.Name)
		}
	}

	// Content must survive the rewrite.
	check, err := zip.OpenReader(dst)
	if err != nil {
		t.Fatalf("reopen destination: %v", err)
	}
	defer check.Close()
	if got := string(readZipMember(t, check, "a.txt")); got != "alpha" {
		t.Errorf("a.txt = %q, want %q", got, "alpha")
	}
	if got := string(readZipMember(t, check, "b/b.txt")); got != "beta" {
		t.Errorf("b/b.txt = %q, want %q", got, "beta")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("file content for the copy test")
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile() error = %v", err)
	}

	copied, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(copied) != string(content) {
		t.Errorf("copied content = %q, want %q", copied, content)
	}
}
