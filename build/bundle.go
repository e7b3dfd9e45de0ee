package build

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"cssb/misc"
	"cssb/state"
)

// Fixed bundle member names.
const (
	bundleStylesName   = "styles.css"
	bundlePreviewName  = "preview.xhtml"
	bundleMetadataName = "bundle.yaml"
)

// bundleMetadata describes the bundle content, serialized as bundle.yaml.
type bundleMetadata struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title,omitempty"`
	Source    string   `yaml:"source"`
	Generator string   `yaml:"generator"`
	Created   string   `yaml:"created"`
	Styles    string   `yaml:"styles"`
	Preview   string   `yaml:"preview"`
	Fonts     []string `yaml:"fonts,omitempty"`
}

// generateBundle writes a zip package with the compiled stylesheet, packed
// font resources, a preview page linking the stylesheet and bundle metadata.
func generateBundle(ctx context.Context, c *job, outputPath string, resources fs.FS, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	log.Info("Generating bundle", zap.String("output", outputPath))

	_, tmpName := filepath.Split(outputPath)
	tmpName = filepath.Join(c.workDir, tmpName)

	f, err := os.Create(tmpName)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	loaded, mapping := collectResources(c, resources, &env.Cfg.Document.Resources, log)
	if len(mapping) > 0 {
		// switch stylesheet references to the packed copies
		c.style.RewriteURLs(func(u string) string {
			if packed, ok := mapping[u]; ok {
				return packed
			}
			return u
		})
	}

	cssText, err := renderStylesheet(c, env)
	if err != nil {
		return err
	}
	if err := writeDataToZip(zw, bundleStylesName, cssText); err != nil {
		return fmt.Errorf("unable to write stylesheet: %w", err)
	}

	for _, res := range loaded {
		if err := writeDataToZip(zw, res.Name, res.Data); err != nil {
			return fmt.Errorf("unable to write resource %s: %w", res.Name, err)
		}
		log.Debug("Packed resource", zap.String("file", res.Name), zap.String("mime", res.MimeType))
	}

	preview := previewDocument(c, "", bundleStylesName, env, log)
	if err := writeXMLToZip(zw, bundlePreviewName, preview); err != nil {
		return fmt.Errorf("unable to write preview: %w", err)
	}

	meta := bundleMetadata{
		ID:        c.doc.ID,
		Title:     c.doc.Title,
		Source:    filepath.Base(c.srcName),
		Generator: misc.GetAppName() + " " + misc.GetVersion(),
		Created:   time.Now().UTC().Format(time.RFC3339),
		Styles:    bundleStylesName,
		Preview:   bundlePreviewName,
	}
	for _, res := range loaded {
		meta.Fonts = append(meta.Fonts, res.Name)
	}
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("unable to marshal bundle metadata: %w", err)
	}
	if err := writeDataToZip(zw, bundleMetadataName, data); err != nil {
		return fmt.Errorf("unable to write bundle metadata: %w", err)
	}

	// make sure buffers are flushed before continuing
	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to finalize output file: %w", err)
	}

	// clean temporary file
	defer os.Remove(tmpName)

	if env.Cfg.Document.FixZip {
		return copyZipWithoutDataDescriptors(tmpName, outputPath)
	}
	return copyFile(tmpName, outputPath)
}

// writeDataToZip stores data in the archive under the given name.
func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// writeXMLToZip serializes an XML document into the archive.
func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes())
}

// copyZipWithoutDataDescriptors rewrites the archive dropping data
// descriptors - some tools cannot handle them even though they are part of
// the zip specification.
func copyZipWithoutDataDescriptors(from, to string) error {
	w, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create destination file: %w", err)
	}
	defer w.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read source file: %w", err)
	}
	defer r.Close()

	zw := fixzip.NewWriter(w)
	defer zw.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := zw.CopyFile(file); err != nil {
			return fmt.Errorf("unable to copy zip entry: %w", err)
		}
	}
	return nil
}

func copyFile(from, to string) error {
	r, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("unable to open source file: %w", err)
	}
	defer r.Close()

	w, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create destination file: %w", err)
	}
	defer w.Close()

	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("unable to copy file: %w", err)
	}
	return w.Close()
}
