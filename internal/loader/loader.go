/*
PURPOSE:
  Turns a simulation result and a visualization mode into registered scene objects.
  Every call is a full rebuild: clear the manager, resolve URLs, decode, build, register.

REQUIREMENTS:
  User-specified:
  - Single-model views resolve one URL from a lookup table; empty means nothing to show.
  - Streamline view loads the translucent geometry and the streamlines concurrently.
  - Cavitation and vortex views load a base geometry plus a field-coloured derived mesh.
  - Geometry views paint a flat gray shader on the _YAMI attribute.
  - A missing field attribute falls back to a translucent material with a warning.

  Implementation-discovered:
  - Every decoded mesh is rotated -pi/2 around X before anything else.
  - A load can outlive the slot that started it. Objects built after the context is
    done are released, never registered.

ARCHITECTURE INTEGRATION:
  - Called by: internal/viewer (one loader per slot)
  - Uses: internal/mesh (Decoder), internal/scene, internal/resource, internal/output
  - Lookup tables: internal/loader/table.go

ERROR HANDLING:
  - Sub-load failures (decode, network) are logged and swallowed; siblings still run.
  - LoadModel returns an error only when it cannot start (no manager, nil result,
    disposed manager) or when ctx was cancelled.

USAGE:
  l := loader.New(decoder)
  l.SetResourceManager(resource.NewManager(container.Scene))
  err := l.LoadModel(ctx, result, model.DefaultMode(result.Domain))

RELATED FILES:
  - internal/loader/table.go
  - internal/resource/manager.go
*/

package loader

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/daryltucker/turbine-viewer/internal/mesh"
	"github.com/daryltucker/turbine-viewer/internal/model"
	"github.com/daryltucker/turbine-viewer/internal/output"
	"github.com/daryltucker/turbine-viewer/internal/resource"
	"github.com/daryltucker/turbine-viewer/internal/scene"
)

var (
	ErrNoManager = errors.New("loader has no resource manager")
	ErrNilResult = errors.New("nil simulation result")
)

// ModelLoader builds scene objects for a result and hands them to its manager.
type ModelLoader struct {
	decoder mesh.Decoder

	mu      sync.Mutex
	manager *resource.Manager
}

func New(dec mesh.Decoder) *ModelLoader {
	return &ModelLoader{decoder: dec}
}

// SetResourceManager binds the manager that receives built objects.
func (l *ModelLoader) SetResourceManager(m *resource.Manager) {
	l.mu.Lock()
	l.manager = m
	l.mu.Unlock()
}

func (l *ModelLoader) resourceManager() *resource.Manager {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.manager
}

// LoadModel clears the manager and loads everything mode needs from result.
// It returns once every sub-load has finished or failed.
func (l *ModelLoader) LoadModel(ctx context.Context, result *model.SimulationResult, mode model.Mode) error {
	rm := l.resourceManager()
	if rm == nil {
		return ErrNoManager
	}
	if result == nil {
		return ErrNilResult
	}
	if rm.Disposed() {
		return resource.ErrDisposed
	}

	rm.ClearAll()

	strat := strategyFor(mode)
	output.Logger.Debug("Loading model", "result", result.ID, "mode", mode.String(), "strategy", strat.String())

	switch strat {
	case strategyStreamline:
		l.loadStreamline(ctx, rm, result)
	case strategyComposite:
		l.loadComposite(ctx, rm, result, compositeTable[mode.Card], mode.Button == model.ButtonGeometry)
	default:
		l.loadSingle(ctx, rm, result, mode)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("load %s: %w", mode, err)
	}
	output.Logger.Info("Model loaded", "result", result.ID, "mode", mode.String(), "resources", rm.Len())
	return nil
}

func (l *ModelLoader) loadSingle(ctx context.Context, rm *resource.Manager, r *model.SimulationResult, mode model.Mode) {
	url, tr := lookupSingle(r, mode)
	if url == "" {
		output.Logger.Debug("No model for mode", "mode", mode.String())
		return
	}

	data, err := l.fetch(ctx, url)
	if err != nil {
		logSubLoad("model", url, err)
		return
	}

	// Single-model views are recentred, except the structural geometry view.
	var obj *scene.Mesh
	if mode.Button == model.ButtonGeometry {
		obj = geometryObject(data, mode.Card.Domain() == model.DomainFluid)
	} else {
		obj = fieldObject(data, mode.Card.Attribute(), translucent(), true)
	}
	l.register(ctx, rm, obj, tr)
}

// loadStreamline runs the geometry and streamline loads side by side.
// Neither failure cancels the other.
func (l *ModelLoader) loadStreamline(ctx context.Context, rm *resource.Manager, r *model.SimulationResult) {
	parts := streamlineParts

	var g errgroup.Group
	g.Go(func() error {
		url := parts.base(r)
		if url == "" {
			return nil
		}
		data, err := l.fetch(ctx, url)
		if err != nil {
			logSubLoad("geometry", url, err)
			return nil
		}
		l.register(ctx, rm, scene.NewMesh(data, scene.NewBasicMaterial(translucent())), parts.transform)
		return nil
	})
	g.Go(func() error {
		url := parts.lines(r)
		if url == "" {
			return nil
		}
		data, err := l.fetch(ctx, url)
		if err != nil {
			logSubLoad("streamline", url, err)
			return nil
		}
		l.register(ctx, rm, streamlineObject(data), parts.transform)
		return nil
	})
	_ = g.Wait()
}

// loadComposite loads the base geometry, then the derived field mesh. The
// derived load runs even when the base failed.
func (l *ModelLoader) loadComposite(ctx context.Context, rm *resource.Manager, r *model.SimulationResult, spec compositeSpec, geometryOnly bool) {
	if url := spec.base(r); url != "" {
		data, err := l.fetch(ctx, url)
		if err != nil {
			logSubLoad("base", url, err)
		} else {
			if spec.boundBase {
				box := data.ComputeBoundingBox()
				output.Logger.Debug("Base bounds", "url", url, "min", box.Min, "max", box.Max, "center", box.Center())
			}
			var obj *scene.Mesh
			if geometryOnly {
				obj = geometryObject(data, false)
			} else {
				obj = scene.NewMesh(data, scene.NewBasicMaterial(translucent()))
			}
			l.register(ctx, rm, obj, spec.baseTransform)
		}
	}
	if geometryOnly {
		return
	}

	url := spec.derived(r)
	if url == "" {
		return
	}
	if ctx.Err() != nil {
		return
	}
	data, err := l.fetch(ctx, url)
	if err != nil {
		logSubLoad("derived", url, err)
		return
	}
	l.register(ctx, rm, fieldObject(data, spec.derivedAttr, warning(), false), spec.derivedTransform)
}

// fetch decodes url and puts the mesh into viewer orientation.
func (l *ModelLoader) fetch(ctx context.Context, url string) (*mesh.Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := l.decoder.Decode(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	data.RotateX(-math.Pi / 2)
	return data, nil
}

// register positions obj and hands it to rm, or releases it when the load
// was abandoned.
func (l *ModelLoader) register(ctx context.Context, rm *resource.Manager, obj *scene.Mesh, tr scene.Transform) {
	obj.SetTransform(tr)
	if ctx.Err() != nil {
		if err := resource.Release(obj); err != nil {
			output.Logger.Warn("Release of abandoned object failed", "object", obj.ID(), "error", err)
		}
		return
	}
	if err := rm.AddResource(obj); err != nil {
		output.Logger.Debug("Object dropped", "object", obj.ID(), "error", err)
	}
}

func logSubLoad(part, url string, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		output.Logger.Debug("Sub-load abandoned", "part", part, "url", url)
		return
	}
	output.Logger.Error("Sub-load failed", "part", part, "url", url, "error", err)
}

func translucent() scene.BasicOptions {
	return scene.BasicOptions{
		Color:       0x000000,
		Side:        scene.DoubleSide,
		Transparent: true,
		Opacity:     fallbackOpacity,
	}
}

func warning() scene.BasicOptions {
	return scene.BasicOptions{Color: warningColor, Side: scene.DoubleSide}
}

// geometryObject paints data flat gray, ignoring its field attributes.
func geometryObject(data *mesh.Data, center bool) *scene.Mesh {
	return scene.NewShaderMesh(data, GeometryAttribute, scene.ShaderOptions{
		MaterialType: scene.MeshLambertMaterial,
		ColorList:    []uint32{geometryColor},
		Center:       center,
	})
}

// fieldObject colours data by attr over its (min,max) range, or falls back
// to a plain material when the attribute or its range is missing. center
// applies to the shader path only.
func fieldObject(data *mesh.Data, attr string, fallback scene.BasicOptions, center bool) *scene.Mesh {
	if rng, ok := data.FieldRange(attr); ok {
		return scene.NewShaderMesh(data, attr, scene.ShaderOptions{
			MinValue:     rng.Min,
			MaxValue:     rng.Max,
			HasRange:     true,
			MaterialType: scene.MeshBasicMaterial,
			Center:       center,
		})
	}
	output.Logger.Warn("Field attribute missing, using fallback material", "attribute", attr, "url", data.URL)
	return scene.NewMesh(data, scene.NewBasicMaterial(fallback))
}

// streamlineObject draws streamlines in their own vertex colours when the mesh
// carries velocity data and a color attribute, white without colours, and red
// when the velocity data is missing.
func streamlineObject(data *mesh.Data) *scene.Mesh {
	if _, ok := data.FieldRange(model.CardVelocity.Attribute()); ok {
		return scene.NewLineSegments(data, scene.NewLineMaterial(lineColor, data.HasAttribute("color")))
	}
	return scene.NewLineSegments(data, scene.NewLineMaterial(warningColor, false))
}
