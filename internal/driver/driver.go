package driver

import (
	"context"
	"sync"

	"github.com/5l1v3r1/sw/internal/pkg"
	"github.com/5l1v3r1/sw/internal/swerr"
	"github.com/5l1v3r1/sw/internal/target"
)

// InputType names the shape of a detected source-tree input.
type InputType int

const (
	SpecificationFile InputType = iota
	DirectorySpecificationFile
	Directory
	InstalledPackage
)

func (t InputType) String() string {
	switch t {
	case SpecificationFile:
		return "specification_file"
	case DirectorySpecificationFile:
		return "directory_specification_file"
	case Directory:
		return "directory"
	case InstalledPackage:
		return "installed_package"
	default:
		return "unknown"
	}
}

// Input is a detected source-tree entry: a path, its type, and a
// driver-owned opaque payload the same driver will need again at load time.
type Input struct {
	Path     string
	Type     InputType
	Payload  any
	DriverId pkg.Id
}

// TargetEntryPoint is a lazy factory: package identity is not known
// before load for source-local inputs, so loading is deferred until a
// whitelist of PackageIds to actually build is known.
type TargetEntryPoint func(whitelist map[pkg.Id]bool) ([]*target.Target, error)

// Driver is the capability set a build input detector needs: detect
// whether a path looks like something this driver understands, and
// batch-load a set of
// previously detected inputs into target entry points. The registry keeps
// no state on a driver's behalf and passes nothing from one driver to
// another.
type Driver interface {
	DetectInputs(ctx context.Context, path string) ([]Input, error)
	LoadInputsBatch(ctx context.Context, inputs []Input) ([]TargetEntryPoint, error)
}

type registration struct {
	id     pkg.Id
	driver Driver
}

// Registry holds drivers keyed by the PackageId that owns them, in
// registration order — detection asks each driver in that order and
// collects every non-empty result.
type Registry struct {
	mu    sync.Mutex
	order []registration
	byId  map[pkg.Id]Driver
}

// NewRegistry returns an empty driver registry.
func NewRegistry() *Registry {
	return &Registry{byId: make(map[pkg.Id]Driver)}
}

// Register adds a driver under id. Panics on a duplicate id.
func (r *Registry) Register(id pkg.Id, d Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byId[id]; exists {
		panic("driver: duplicate registration for " + id.String())
	}
	r.byId[id] = d
	r.order = append(r.order, registration{id: id, driver: d})
}

// DetectInputs asks every registered driver, in registration order, whether
// it recognizes path, and returns the union of every non-empty result. An
// empty union is NoDriverForInput.
func (r *Registry) DetectInputs(ctx context.Context, path string) ([]Input, error) {
	r.mu.Lock()
	regs := append([]registration(nil), r.order...)
	r.mu.Unlock()

	var all []Input
	for _, reg := range regs {
		ins, err := reg.driver.DetectInputs(ctx, path)
		if err != nil {
			return nil, swerr.New(swerr.DriverLoadFailed, path, err)
		}
		for i := range ins {
			ins[i].DriverId = reg.id
		}
		all = append(all, ins...)
	}
	if len(all) == 0 {
		return nil, swerr.New(swerr.NoDriverForInput, path, nil)
	}
	return all, nil
}

// LoadInputsBatch groups inputs by the driver that detected them and asks
// each driver to load its own subset in one batch call, so a driver can
// amortize cross-input work.
func (r *Registry) LoadInputsBatch(ctx context.Context, inputs []Input) ([]TargetEntryPoint, error) {
	r.mu.Lock()
	byId := r.byId
	r.mu.Unlock()

	grouped := make(map[pkg.Id][]Input)
	var order []pkg.Id
	for _, in := range inputs {
		if _, seen := grouped[in.DriverId]; !seen {
			order = append(order, in.DriverId)
		}
		grouped[in.DriverId] = append(grouped[in.DriverId], in)
	}

	var out []TargetEntryPoint
	for _, id := range order {
		d, ok := byId[id]
		if !ok {
			return nil, swerr.New(swerr.DriverLoadFailed, id.String(), nil)
		}
		eps, err := d.LoadInputsBatch(ctx, grouped[id])
		if err != nil {
			return nil, swerr.New(swerr.DriverLoadFailed, id.String(), err)
		}
		out = append(out, eps...)
	}
	return out, nil
}
