package coin

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/coinring/pkg/models"
	"github.com/taigrr/coinring/pkg/remap"
	"github.com/taigrr/coinring/pkg/render"
)

// Model is a finished ring: the mesh with its materials bound, the
// remapped textures and their render-ready copies.
type Model struct {
	Mesh *models.Mesh

	Source  *remap.PixelBuffer // diffuse source as remapped, after squaring
	Diffuse *remap.PixelBuffer
	Bump    *remap.PixelBuffer // nil without a bump source

	SourceTexture  *render.Texture
	DiffuseTexture *render.Texture
	BumpTexture    *render.Texture
}

// texture is the output of one load, remap, bind chain.
type texture struct {
	source *remap.PixelBuffer
	out    *remap.PixelBuffer
	tex    *render.Texture
}

// Build runs the diffuse chain, the bump chain and the mesh build
// concurrently. The first failure cancels the others and is returned.
func Build(ctx context.Context, cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	rm := remap.New(
		remap.WithFilter(cfg.Filter),
		remap.WithEdge(cfg.Edge),
		remap.WithWorkers(cfg.Workers),
	)

	var diffuse, bump texture
	var mesh *models.Mesh

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		diffuse, err = cfg.chain(gctx, rm, "diffuse", cfg.Diffuse)
		return err
	})
	if cfg.Bump != nil {
		g.Go(func() (err error) {
			bump, err = cfg.chain(gctx, rm, "bump", cfg.Bump)
			return err
		})
	}
	g.Go(func() (err error) {
		mesh, err = cfg.buildMesh(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &Model{
		Mesh:           mesh,
		Source:         diffuse.source,
		Diffuse:        diffuse.out,
		Bump:           bump.out,
		SourceTexture:  newTexture(diffuse.source, cfg.Filter, render.WrapClamp),
		DiffuseTexture: diffuse.tex,
		BumpTexture:    bump.tex,
	}
	var bumpImg image.Image
	if m.Bump != nil {
		bumpImg = m.Bump.Image()
	}
	mesh.SetMaterialMaps(m.Diffuse.Image(), bumpImg)

	Logger().Info("ring built",
		"mesh", cfg.Mesh.String(),
		"triangles", mesh.TriangleCount(),
		"texture", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"bump", m.Bump != nil,
		"elapsed", time.Since(start))
	return m, nil
}

// chain loads src, optionally squares it, and remaps it to texture space.
func (c Config) chain(ctx context.Context, rm *remap.Remapper, name string, src Source) (texture, error) {
	log := Logger().With("texture", name)

	t0 := time.Now()
	pb, err := src.Load(ctx)
	if err != nil {
		return texture{}, fmt.Errorf("load %s: %w", name, err)
	}
	log.Debug("loaded", "width", pb.Width, "height", pb.Height, "elapsed", time.Since(t0))

	if c.SquareSource && pb.Width != pb.Height {
		if pb, err = remap.Square(pb); err != nil {
			return texture{}, fmt.Errorf("square %s: %w", name, err)
		}
		log.Debug("squared", "side", pb.Width)
	}

	t0 = time.Now()
	out, err := rm.Remap(ctx, pb, c.Width, c.Height)
	if err != nil {
		return texture{}, fmt.Errorf("remap %s: %w", name, err)
	}
	log.Debug("remapped", "width", out.Width, "height", out.Height, "workers", rm.Workers, "elapsed", time.Since(t0))

	return texture{
		source: pb,
		out:    out,
		tex:    newTexture(out, c.Filter, render.WrapRepeat),
	}, nil
}

// newTexture binds a buffer for rendering. U wraps around the ring seam
// with wrapU; V always clamps.
func newTexture(pb *remap.PixelBuffer, filter remap.FilterMode, wrapU render.WrapMode) *render.Texture {
	tex := render.TextureFromImage(pb.Image())
	tex.WrapU = wrapU
	tex.WrapV = render.WrapClamp
	if filter == remap.FilterBilinear {
		tex.FilterMode = render.FilterBilinear
	}
	return tex
}

func (c Config) buildMesh(ctx context.Context) (*models.Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t0 := time.Now()
	var (
		mesh *models.Mesh
		err  error
	)
	switch c.Mesh {
	case MeshCSG:
		mesh, err = models.NewRingCSG(c.Ring, c.CSGCells)
	default:
		mesh, err = models.NewRing(c.Ring)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s mesh: %w", c.Mesh, err)
	}
	Logger().Debug("mesh built", "kind", c.Mesh.String(),
		"vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount(), "elapsed", time.Since(t0))
	return mesh, nil
}

// SaveTextures writes diffuse.png, and bump.png when present, into dir and
// returns the paths written.
func (m *Model) SaveTextures(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var paths []string
	for _, t := range []struct {
		name string
		pb   *remap.PixelBuffer
	}{
		{"diffuse.png", m.Diffuse},
		{"bump.png", m.Bump},
	} {
		if t.pb == nil {
			continue
		}
		path := filepath.Join(dir, t.name)
		if err := writePNG(path, t.pb.Image()); err != nil {
			return paths, err
		}
		paths = append(paths, path)
		Logger().Info("texture written", "path", path)
	}
	return paths, nil
}

// SaveGLB exports the textured ring as binary glTF.
func (m *Model) SaveGLB(path string) error {
	if err := models.SaveGLB(path, m.Mesh); err != nil {
		return err
	}
	Logger().Info("glb written", "path", path)
	return nil
}

// LoadGLB reopens a ring written by SaveGLB. The remapped buffers are
// recovered from the embedded images; Source stays nil.
func LoadGLB(path string) (*Model, error) {
	mesh, mat, err := models.LoadGLBMaterial(path)
	if err != nil {
		return nil, err
	}
	if mat == nil {
		return nil, fmt.Errorf("%s: no textured material", path)
	}
	m := &Model{Mesh: mesh}
	if m.Diffuse, err = remap.FromImage(mat.BaseMap); err != nil {
		return nil, fmt.Errorf("base color texture: %w", err)
	}
	m.DiffuseTexture = newTexture(m.Diffuse, remap.FilterNearest, render.WrapRepeat)
	if mat.NormalMap != nil {
		if m.Bump, err = remap.FromImage(mat.NormalMap); err != nil {
			return nil, fmt.Errorf("normal texture: %w", err)
		}
		m.BumpTexture = newTexture(m.Bump, remap.FilterNearest, render.WrapRepeat)
	}
	Logger().Info("glb loaded", "path", path,
		"triangles", mesh.TriangleCount(), "bump", m.Bump != nil)
	return m, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
