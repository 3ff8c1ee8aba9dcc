package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forgelabs/gameforge/internal/quality"
	"github.com/forgelabs/gameforge/internal/spec"
)

// AssetProvider renders one image for a prompt. Implementations wrap an
// image-generation service; a nil provider means placeholders only.
type AssetProvider interface {
	RenderImage(ctx context.Context, prompt string) ([]byte, error)
}

// requiredAssets lists the images every generated project ships with,
// paired with the prompt fragment describing each one.
var requiredAssets = []struct {
	Name   string
	Prompt string
}{
	{"icon", "app icon"},
	{"background", "full-screen game background"},
	{"player", "player character sprite"},
	{"obstacle", "obstacle sprite"},
	{"collectible", "collectible item sprite"},
}

// placeholderPNG is a valid 1x1 transparent PNG used when the provider
// fails or is absent.
var placeholderPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
	0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41, 0x54,
	0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00, 0x05,
	0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4,
	0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44,
	0xae, 0x42, 0x60, 0x82,
}

// StudioAssetGenerator produces the project's image assets. Each image is
// requested from the provider; a per-image failure degrades that image to a
// placeholder rather than failing the whole step.
type StudioAssetGenerator struct {
	provider AssetProvider
}

// NewStudioAssetGenerator returns an asset generator. provider may be nil,
// in which case every asset is a placeholder.
func NewStudioAssetGenerator(provider AssetProvider) *StudioAssetGenerator {
	return &StudioAssetGenerator{provider: provider}
}

// GenerateAssets implements AssetGenerator.
func (g *StudioAssetGenerator) GenerateAssets(ctx context.Context, design spec.DesignSpec, projectDir string, attempt *AttemptContext) (*quality.AssetManifest, error) {
	assetsDir := filepath.Join(projectDir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating assets dir: %w", err)
	}

	manifest := &quality.AssetManifest{}
	for _, asset := range requiredAssets {
		data := placeholderPNG
		if g.provider != nil {
			prompt := fmt.Sprintf("%s for %q, a %s game with a %s mood, palette %s/%s",
				asset.Prompt, design.Name, design.Genre, design.Mood,
				design.Palette.Primary, design.Palette.Accent)
			rendered, err := g.provider.RenderImage(ctx, prompt)
			if err != nil {
				attempt.RecordFailure("assets", fmt.Sprintf("provider failed for %s: %v", asset.Name, err))
			} else if len(rendered) > 0 {
				data = rendered
			}
		}

		rel := filepath.Join("assets", asset.Name+".png")
		if err := os.WriteFile(filepath.Join(projectDir, rel), data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", rel, err)
		}
		manifest.Images = append(manifest.Images, quality.AssetEntry{Name: asset.Name, Path: rel})
	}

	if err := WriteAssetManifest(projectDir, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// WriteAssetManifest serializes the manifest to <projectDir>/assets/manifest.json.
func WriteAssetManifest(projectDir string, manifest *quality.AssetManifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding asset manifest: %w", err)
	}
	path := filepath.Join(projectDir, "assets", "manifest.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
