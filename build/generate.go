package build

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"cssb/state"
)

// renderStylesheet produces the final CSS text for a document: the configured
// prelude first, then the compiled stylesheet in the configured rendering
// mode.
func renderStylesheet(c *job, env *state.LocalEnv) ([]byte, error) {
	var buf bytes.Buffer

	if len(env.Prelude) > 0 {
		buf.Write(bytes.TrimRight(env.Prelude, "\n"))
		buf.WriteString("\n\n")
	}

	var err error
	if env.Cfg.Document.Render.IsCompact() {
		_, err = c.style.WriteCompact(&buf)
	} else {
		_, err = c.style.WriteTo(&buf)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to render stylesheet: %w", err)
	}
	return buf.Bytes(), nil
}

// generateCSS writes the compiled stylesheet as a plain CSS file.
func generateCSS(ctx context.Context, c *job, outputPath string, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	log.Info("Generating CSS", zap.String("output", outputPath))

	data, err := renderStylesheet(c, env)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	return nil
}
