package build

import (
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"cssb/config"
	"cssb/css"
)

// resource is a file referenced by the document, loaded and assigned a place
// inside the generated bundle.
type resource struct {
	OriginalURL string
	Name        string // path inside the bundle
	MimeType    string
	Data        []byte
}

// collectResources loads local url() references from the document's font
// faces out of fsys and assigns each a place under the configured fonts
// directory. Remote and data: references are left alone. Returns loaded
// resources along with the original URL to bundle path mapping for rewriting.
func collectResources(c *job, fsys fs.FS, cfg *config.ResourcesConfig, log *zap.Logger) ([]resource, map[string]string) {
	var refs []string
	seen := make(map[string]bool)
	for _, face := range c.style.FontFaces() {
		for _, u := range css.ExtractURLs(face.Src) {
			if !seen[u] {
				refs = append(refs, u)
				seen[u] = true
			}
		}
	}

	var loaded []resource
	mapping := make(map[string]string)
	used := make(map[string]bool)

	for _, ref := range refs {
		// data: references are already self contained
		if strings.HasPrefix(ref, "data:") {
			log.Debug("Skipping data URL in font face")
			continue
		}
		// remote references cannot be packed
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			log.Warn("External URL in font face cannot be packed into bundle", zap.String("url", ref))
			continue
		}
		if fsys == nil {
			log.Warn("No filesystem to resolve font resource against", zap.String("url", ref))
			continue
		}

		res := loadResource(ref, fsys, cfg, log)
		if res == nil {
			continue
		}

		// bundle member names must be unique
		name := res.Name
		for i := 1; used[res.Name]; i++ {
			ext := path.Ext(name)
			res.Name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), i, ext)
		}
		used[res.Name] = true

		loaded = append(loaded, *res)
		mapping[res.OriginalURL] = res.Name
	}
	return loaded, mapping
}

// loadResource reads a single reference from fsys and validates it. fs.FS
// path rules refuse rooted and dot-dot paths, which doubles as the guard
// against references escaping the document's directory.
func loadResource(ref string, fsys fs.FS, cfg *config.ResourcesConfig, log *zap.Logger) *resource {
	resourcePath := filepath.ToSlash(ref)

	data, err := fs.ReadFile(fsys, resourcePath)
	if err != nil {
		log.Warn("Unable to load font resource", zap.String("url", ref), zap.Error(err))
		return nil
	}

	// Detect MIME type - prefer extension based detection for fonts since
	// content sniffing does not know all of them
	mimeType := ""
	if ext := path.Ext(resourcePath); ext != "" {
		mimeType = extToMimeType(ext)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	if cfg.ValidateFonts && !validateFontResource(mimeType, data) {
		log.Warn("Loaded font resource failed validation",
			zap.String("url", ref), zap.String("mime", mimeType))
		return nil
	}

	name := path.Base(resourcePath)
	if path.Ext(name) == "" {
		name += mimeToExtension(mimeType)
	}
	name = path.Join(cfg.FontsDir, name)

	log.Info("Loaded font resource from file",
		zap.String("url", ref), zap.String("name", name),
		zap.String("mime", mimeType), zap.Int("size", len(data)))

	return &resource{
		OriginalURL: ref,
		Name:        name,
		MimeType:    mimeType,
		Data:        data,
	}
}

// validateFontResource performs format sanity check on loaded font data.
func validateFontResource(mimeType string, data []byte) bool {
	switch mimeType {
	case "font/woff", "application/font-woff":
		return filetype.Is(data, "woff")
	case "font/woff2", "application/font-woff2":
		return filetype.Is(data, "woff2")
	case "font/ttf", "application/x-font-ttf", "application/font-sfnt":
		return filetype.Is(data, "ttf")
	case "font/otf", "application/x-font-otf":
		return filetype.Is(data, "otf")
	}
	// not a format we know how to check
	return true
}

// extToMimeType maps common font file extensions to MIME types.
func extToMimeType(ext string) string {
	switch strings.ToLower(ext) {
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".ttf":
		return "font/ttf"
	case ".otf":
		return "font/otf"
	case ".eot":
		return "application/vnd.ms-fontobject"
	case ".svg":
		return "image/svg+xml"
	}
	return ""
}

// mimeToExtension maps MIME types back to file extensions for references
// that lack one.
func mimeToExtension(mimeType string) string {
	switch mimeType {
	case "font/woff", "application/font-woff":
		return ".woff"
	case "font/woff2", "application/font-woff2":
		return ".woff2"
	case "font/ttf", "application/x-font-ttf", "application/font-sfnt":
		return ".ttf"
	case "font/otf", "application/x-font-otf":
		return ".otf"
	case "application/vnd.ms-fontobject":
		return ".eot"
	case "image/svg+xml":
		return ".svg"
	}
	return ""
}
