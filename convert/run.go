// Package convert drives the conversion pipeline: scoped decompression,
// NBT decode, structural rewrite, NBT encode, recompression. Everything is
// materialized in memory - either a complete output file is produced or
// none of the written content is considered valid.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"schemconv/nbt"
	"schemconv/schem"
	"schemconv/state"
)

// ErrUsage is returned when the command line lacks the two required paths.
// Usage text is printed before it surfaces, so main suppresses its logging.
var ErrUsage = errors.New("two arguments required: input and output path")

func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	if cmd.Args().Len() < 2 {
		_ = cli.ShowAppHelp(cmd)
		return ErrUsage
	}
	src, dst := cmd.Args().Get(0), cmd.Args().Get(1)
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read input: %w", err)
	}
	body, comp, err := decompress(data)
	if err != nil {
		return fmt.Errorf("unable to decompress input '%s': %w", src, err)
	}
	log.Debug("Input loaded", zap.Int("file", len(data)), zap.Int("payload", len(body)), zap.Stringer("compression", comp))

	doc, err := nbt.DecodeWithLimit(body, env.Cfg.Converter.MaxNestingDepth)
	if err != nil {
		return fmt.Errorf("unable to decode input '%s': %w", src, err)
	}

	encoded := nbt.Encode(schem.Convert(doc, log))

	if err := writeCompressed(dst, encoded); err != nil {
		return fmt.Errorf("unable to write output '%s': %w", dst, err)
	}
	log.Info("Saved", zap.String("destination", dst), zap.Int("size", len(encoded)))

	// diagnostic only - failures are logged, never fatal
	selfCheck(dst, env.Cfg.Converter.MaxNestingDepth, log.Named("verify"))
	return nil
}

// selfCheck re-reads the just written file and reports a few structural
// invariants of the output dialect.
func selfCheck(path string, maxDepth int, log *zap.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Unable to re-read output", zap.Error(err))
		return
	}
	body, _, err := decompress(data)
	if err != nil {
		log.Warn("Unable to decompress output", zap.Error(err))
		return
	}
	doc, err := nbt.DecodeWithLimit(body, maxDepth)
	if err != nil {
		log.Warn("Unable to decode output", zap.Error(err))
		return
	}

	log.Debug("Root name", zap.String("name", doc.RootName), zap.Bool("expected", doc.RootName == "Schematic"))
	if v, ok := doc.Root.Find("Version"); ok {
		ver, _ := nbt.AsInt(v)
		log.Debug("Version", zap.Int64("version", ver), zap.Bool("expected", ver == 2))
	}
	log.Debug("Palette present", zap.Bool("present", doc.Root.Has("Palette")))
	log.Debug("BlockData present", zap.Bool("present", doc.Root.Has("BlockData")))
}
