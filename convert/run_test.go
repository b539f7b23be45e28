package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"schemconv/config"
	"schemconv/nbt"
	"schemconv/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) context.Context {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	env.Cfg = cfg
	return ctx
}

func runConvert(ctx context.Context, args ...string) error {
	cmd := &cli.Command{Name: "schemconv", ArgsUsage: "INPUT OUTPUT", Action: Run}
	return cmd.Run(ctx, append([]string{"schemconv"}, args...))
}

func v3SampleDoc() *nbt.Document {
	return &nbt.Document{
		RootName: "",
		Root: nbt.Compound{Entries: []nbt.Entry{
			{Name: "Schematic", Value: nbt.Compound{Entries: []nbt.Entry{
				{Name: "Version", Value: nbt.Int(3686)},
				{Name: "Width", Value: nbt.Short(1)},
				{Name: "Blocks", Value: nbt.Compound{Entries: []nbt.Entry{
					{Name: "Palette", Value: nbt.Compound{Entries: []nbt.Entry{
						{Name: "minecraft:stone", Value: nbt.Int(0)},
					}}},
					{Name: "Data", Value: nbt.ByteArray{0}},
					{Name: "BlockEntities", Value: nbt.List{Elem: nbt.KindCompound}},
				}}},
			}}},
		}},
	}
}

func TestRunEndToEnd(t *testing.T) {
	ctx := setupTestEnv(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "in.schem")
	dst := filepath.Join(dir, "out.schem")

	if err := writeCompressed(src, nbt.Encode(v3SampleDoc())); err != nil {
		t.Fatalf("prepare input: %v", err)
	}
	if err := runConvert(ctx, src, dst); err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	body, _, err := decompress(data)
	if err != nil {
		t.Fatalf("decompress output: %v", err)
	}
	doc, err := nbt.Decode(body)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}

	if doc.RootName != "Schematic" {
		t.Errorf("root name: %q", doc.RootName)
	}
	if v, _ := doc.Root.Find("Version"); v != nbt.Tag(nbt.Int(2)) {
		t.Errorf("Version: %#v", v)
	}
	if v, _ := doc.Root.Find("PaletteMax"); v != nbt.Tag(nbt.Int(1)) {
		t.Errorf("PaletteMax: %#v", v)
	}
	if !doc.Root.Has("Palette") || !doc.Root.Has("BlockData") || !doc.Root.Has("BlockEntities") {
		t.Errorf("derived entries missing: %#v", doc.Root)
	}
	if doc.Root.Has("Blocks") {
		t.Error("Blocks compound survived")
	}
}

func TestRunAcceptsUncompressedInput(t *testing.T) {
	ctx := setupTestEnv(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "in.schem")
	dst := filepath.Join(dir, "out.schem")

	if err := os.WriteFile(src, nbt.Encode(v3SampleDoc()), 0644); err != nil {
		t.Fatalf("prepare input: %v", err)
	}
	if err := runConvert(ctx, src, dst); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunUsage(t *testing.T) {
	ctx := setupTestEnv(t)
	for _, args := range [][]string{{}, {"only-one"}} {
		if err := runConvert(ctx, args...); !errors.Is(err, ErrUsage) {
			t.Errorf("args %v: want ErrUsage, got %v", args, err)
		}
	}
}

func TestRunMissingInput(t *testing.T) {
	ctx := setupTestEnv(t)
	dir := t.TempDir()
	err := runConvert(ctx, filepath.Join(dir, "nope.schem"), filepath.Join(dir, "out.schem"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}
}

func TestRunRejectsGarbageInput(t *testing.T) {
	ctx := setupTestEnv(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "in.schem")
	if err := os.WriteFile(src, []byte("not a schematic at all"), 0644); err != nil {
		t.Fatalf("prepare input: %v", err)
	}
	if err := runConvert(ctx, src, filepath.Join(dir, "out.schem")); err == nil {
		t.Fatal("garbage input accepted")
	}
}
