package build

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"cssb/archive"
	"cssb/common"
	"cssb/css"
	"cssb/misc"
	"cssb/sheet"
	"cssb/state"
)

// Run is "build" command body.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return fmt.Errorf("unable to get absolute path for destination: %w", err)
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format, err := common.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown output format requested, using css", zap.String("format", cmd.String("to")))
		format = common.OutputFmtCss
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	if path := env.Cfg.Document.PreludePath; len(path) > 0 {
		if env.Prelude, err = os.ReadFile(path); err != nil {
			return fmt.Errorf("unable to read prelude stylesheet: %w", err)
		}
		log.Debug("Using prelude stylesheet", zap.String("file", path), zap.Int("size", len(env.Prelude)))
	}

	// Since zip "standard" does not specify file name encoding we may need
	// help reading names in old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			name, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", name))
		}
	}

	log.Info("Processing starting",
		zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, format, log)
}

// process handles the core pipeline logic independently of CLI framework. It
// determines what input actually is (directory, archive, single document or
// path inside an archive) and processes accordingly.
func process(ctx context.Context, src, dst string, format common.OutputFmt, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist - possibly path inside an archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have a tail - that would be a simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, format, log); err != nil {
				return errors.New("unable to process directory")
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			// we need to look inside to see if the rest of the path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, filepath.ToSlash(tail), "", dst, format, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		doc, enc, err := isDocumentFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if doc && len(tail) == 0 {
			// we have a document, it cannot have a tail
			if file, err := os.Open(head); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			} else {
				defer file.Close()
				if err := processDocument(ctx, selectReader(file, enc), os.DirFS(filepath.Dir(head)), filepath.Base(head), dst, format, log); err != nil {
					log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
				}
			}
			break
		}
		return fmt.Errorf("input was not recognized as stylesheet document (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks the directory tree collecting documents and archives,
// then processes them in natural sort order - walk order alone is not stable
// enough across platforms for reproducible batch runs.
func processDir(ctx context.Context, dir, dst string, format common.OutputFmt, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	type target struct {
		path    string
		archive bool
		enc     srcEncoding
	}
	var targets []target

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		arc, err := isArchiveFile(path)
		if err != nil {
			// checking format - but cannot open target file
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if arc {
			targets = append(targets, target{path: path, archive: true})
			return nil
		}

		doc, enc, err := isDocumentFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !doc {
			log.Debug("Skipping file, not recognized as document or archive", zap.String("file", path))
			return nil
		}
		targets = append(targets, target{path: path, enc: enc})
		return nil
	})
	if err != nil {
		return err
	}

	sort.Slice(targets, func(i, j int) bool { return natural.Less(targets[i].path, targets[j].path) })

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		count++

		src := strings.TrimPrefix(strings.TrimPrefix(t.path, dir), string(filepath.Separator))

		if t.archive {
			if err := processArchive(ctx, t.path, "", filepath.Dir(src), dst, format, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", t.path), zap.Error(err))
			}
			continue
		}

		file, err := os.Open(t.path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", t.path), zap.Error(err))
			continue
		}
		if err := processDocument(ctx, selectReader(file, t.enc), os.DirFS(filepath.Dir(t.path)), src, dst, format, log); err != nil {
			log.Error("Unable to process file", zap.String("file", t.path), zap.Error(err))
		}
		file.Close()
	}
	return nil
}

// processArchive walks files inside the archive under "pathIn" prefix and
// processes documents it finds, outputs go under "pathOut" relative to dst.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, format common.OutputFmt, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	env := state.EnvFromContext(ctx)

	// Second reader over the same archive serves font and other resources
	// referenced by documents inside it.
	zr, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer zr.Close()

	return archive.Walk(path, pathIn, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		doc, enc, err := isDocumentInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if !doc {
			log.Debug("Skipping file, not recognized as document",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		resources := archiveResourceFS(&zr.Reader, f.FileHeader.Name)

		pathInArchive := f.FileHeader.Name
		if cp := env.CodePage; cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		if err := processDocument(ctx, selectReader(r, enc), resources, filepath.Join(pathOut, pathInArchive), dst, format, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
}

// archiveResourceFS returns a filesystem rooted at the entry's directory so
// relative url() references resolve against archive content stored next to
// the document. The raw entry name anchors the filesystem - zip member
// lookups go by stored names, not decoded ones.
func archiveResourceFS(r *zip.Reader, name string) fs.FS {
	dir := "."
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		dir = name[:i]
	}
	sub, err := fs.Sub(r, dir)
	if err != nil {
		return nil
	}
	return sub
}

// job carries a single document through the pipeline stages.
type job struct {
	srcName string
	format  common.OutputFmt
	workDir string
	doc     *sheet.Document
	style   *css.Stylesheet
}

// prepare parses and compiles a stylesheet definition document and sets up
// scratch space for the rest of the pipeline.
func prepare(ctx context.Context, r io.Reader, srcName string, format common.OutputFmt, log *zap.Logger) (*job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	var srcData []byte
	if env.Rpt != nil {
		// keep decoded source text for the debug report
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("unable to read document: %w", err)
		}
		srcData = data
		r = bytes.NewReader(srcData)
	}

	doc, err := sheet.Load(r)
	if err != nil {
		return nil, fmt.Errorf("unable to load document: %w", err)
	}

	style, err := doc.Compile()
	if err != nil {
		return nil, fmt.Errorf("unable to compile document: %w", err)
	}
	log.Debug("Document compiled", zap.String("id", doc.ID), zap.Int("items", len(style.Items)))

	tmpDir, err := os.MkdirTemp("", misc.GetAppName()+"-")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary directory: %w", err)
	}
	env.Rpt.Store(fmt.Sprintf("%s-%s", misc.GetAppName(), doc.ID), tmpDir)

	// Save source document and its parsed structure for debugging
	if env.Rpt != nil {
		name := filepath.Base(srcName)
		if err := os.WriteFile(filepath.Join(tmpDir, name), srcData, 0644); err != nil {
			return nil, fmt.Errorf("unable to save source document for debugging: %w", err)
		}
		if err := os.WriteFile(filepath.Join(tmpDir, name+"_parsed"), []byte(doc.String()), 0644); err != nil {
			return nil, fmt.Errorf("unable to save parsed document for debugging: %w", err)
		}
	}

	return &job{
		srcName: srcName,
		format:  format,
		workDir: tmpDir,
		doc:     doc,
		style:   style,
	}, nil
}

// processDocument processes a single stylesheet definition document. "src" is
// the part of the source path (always including file name) relative to the
// original input: for a directly specified file it is just the base name,
// for directory or archive input it is the path inside. "dst" is the
// destination directory. "resources" serves files referenced by the
// document, rooted next to it, nil disables resource resolution.
func processDocument(ctx context.Context, r io.Reader, resources fs.FS, src, dst string, format common.OutputFmt, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var refID, outputName string

	log.Info("Build starting", zap.String("from", src))
	defer func(start time.Time) {
		// a single bad document must not stop a batch run
		if r := recover(); r != nil {
			log.Error("Build ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("build panic: %v", r)
		} else {
			log.Info("Build completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.String("ref_id", refID))
		}
	}(time.Now())

	c, err := prepare(ctx, r, src, format, log)
	if err != nil {
		return fmt.Errorf("unable to prepare stylesheet document (%s): %w", src, err)
	}
	if env.Rpt == nil {
		// scratch space goes into the debug report when one was requested,
		// otherwise it is ours to clean
		defer os.RemoveAll(c.workDir)
	}

	refID = c.doc.ID

	// Determine output file name and path based on input and configuration.
	outputName = buildOutputPath(c, dst, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	// Generate output in the requested format
	switch c.format {
	case common.OutputFmtCss:
		if err := generateCSS(ctx, c, outputName, log); err != nil {
			return fmt.Errorf("unable to generate output: %w", err)
		}
	case common.OutputFmtXhtml:
		if err := generatePreview(ctx, c, outputName, log); err != nil {
			return fmt.Errorf("unable to generate output: %w", err)
		}
	case common.OutputFmtBundle:
		if err := generateBundle(ctx, c, outputName, resources, log); err != nil {
			return fmt.Errorf("unable to generate output: %w", err)
		}
	}

	// Store build result for debugging
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", refID, filepath.Ext(outputName)), outputName)
	}

	return nil
}
