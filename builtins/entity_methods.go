package builtins

import (
	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/broadcast"
	"github.com/InsightCenterNoodles/noodles-core/dispatch"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/registry"
)

// Entity built-in method names (spec.md §4.9).
const (
	MethodActivate              = "noo::activate"
	MethodGetActivationChoices  = "noo::get_activation_choices"
	MethodGetVarKeys            = "noo::get_var_keys"
	MethodGetVarOptions         = "noo::get_var_options"
	MethodGetVarValue           = "noo::get_var_value"
	MethodSetVarValue           = "noo::set_var_value"
	MethodSetPosition           = "noo::set_position"
	MethodSetRotation           = "noo::set_rotation"
	MethodSetScale              = "noo::set_scale"
	MethodSelectRegion          = "noo::select_region"
	MethodSelectSphere          = "noo::select_sphere"
	MethodSelectHalfPlane       = "noo::select_half_plane"
	MethodSelectHull            = "noo::select_hull"
	MethodProbeAt               = "noo::probe_at"
)

// SelectAction is the fixed int encoding decided for the select_* family
// (the bool-vs-int REDESIGN FLAG): -1 subtract, 0 replace, 1 add.
type SelectAction int

const (
	SelectSubtract SelectAction = -1
	SelectReplace  SelectAction = 0
	SelectAdd      SelectAction = 1
)

// EntityCallbacks is the application-implemented collaborator behind an
// entity's built-in methods (spec.md §6). An entity for which callbacksOf
// reports no implementation, or returns a nil one, gets InternalError
// (spec.md §4.9).
type EntityCallbacks interface {
	Activate(choice anyvar.AnyVar) error
	GetActivationChoices() []string
	GetVarKeys() []string
	GetVarOptions(key string) []anyvar.AnyVar
	GetVarValue(key string) anyvar.AnyVar
	SetVarValue(key string, value anyvar.AnyVar) error
	SetPosition(x, y, z float64) error
	SetRotation(x, y, z, w float64) error
	SetScale(x, y, z float64) error
	SelectRegion(min, max [3]float64, action SelectAction) error
	SelectSphere(center [3]float64, radius float64, action SelectAction) error
	SelectHalfPlane(point, normal [3]float64, action SelectAction) error
	SelectHull(points [][3]float64, triangleIndices []int64, action SelectAction) error
	ProbeAt(point [3]float64) (label string, hit [3]float64, ok bool)
}

// EntityBinding mirrors TableBinding for the fixed entity method set.
type EntityBinding struct {
	Activate, GetActivationChoices, GetVarKeys, GetVarOptions, GetVarValue,
	SetVarValue, SetPosition, SetRotation, SetScale,
	SelectRegion, SelectSphere, SelectHalfPlane, SelectHull, ProbeAt id.Id[id.MethodTag]
}

func (b EntityBinding) Methods() []id.Id[id.MethodTag] {
	return []id.Id[id.MethodTag]{
		b.Activate, b.GetActivationChoices, b.GetVarKeys, b.GetVarOptions, b.GetVarValue,
		b.SetVarValue, b.SetPosition, b.SetRotation, b.SetScale,
		b.SelectRegion, b.SelectSphere, b.SelectHalfPlane, b.SelectHull, b.ProbeAt,
	}
}

// AttachEntityMethods creates the fourteen built-in entity methods and
// wires them to cb, looked up per-invocation via callbacksOf (since the
// callbacks implementation is one-per-entity, resolved from the
// invocation's entity context, not captured at attach time).
func AttachEntityMethods(
	reg *registry.Registry,
	w broadcast.Writer,
	d *dispatch.Dispatcher,
	callbacksOf func(id.AnyID) (EntityCallbacks, bool),
) EntityBinding {
	var b EntityBinding
	b.Activate = reg.CreateMethod(w, registry.Method{Name: MethodActivate})
	b.GetActivationChoices = reg.CreateMethod(w, registry.Method{Name: MethodGetActivationChoices})
	b.GetVarKeys = reg.CreateMethod(w, registry.Method{Name: MethodGetVarKeys})
	b.GetVarOptions = reg.CreateMethod(w, registry.Method{Name: MethodGetVarOptions})
	b.GetVarValue = reg.CreateMethod(w, registry.Method{Name: MethodGetVarValue})
	b.SetVarValue = reg.CreateMethod(w, registry.Method{Name: MethodSetVarValue})
	b.SetPosition = reg.CreateMethod(w, registry.Method{Name: MethodSetPosition})
	b.SetRotation = reg.CreateMethod(w, registry.Method{Name: MethodSetRotation})
	b.SetScale = reg.CreateMethod(w, registry.Method{Name: MethodSetScale})
	b.SelectRegion = reg.CreateMethod(w, registry.Method{Name: MethodSelectRegion})
	b.SelectSphere = reg.CreateMethod(w, registry.Method{Name: MethodSelectSphere})
	b.SelectHalfPlane = reg.CreateMethod(w, registry.Method{Name: MethodSelectHalfPlane})
	b.SelectHull = reg.CreateMethod(w, registry.Method{Name: MethodSelectHull})
	b.ProbeAt = reg.CreateMethod(w, registry.Method{Name: MethodProbeAt})

	resolve := func(ctx id.AnyID) (EntityCallbacks, error) {
		cb, ok := callbacksOf(ctx)
		if !ok || cb == nil {
			return nil, dispatch.Internal(nil)
		}
		return cb, nil
	}

	d.Register(b.Activate, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		var choice anyvar.AnyVar
		if len(args) > 0 {
			choice = args[0]
		}
		return anyvar.Null, cb.Activate(choice)
	})

	d.Register(b.GetActivationChoices, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		choices := cb.GetActivationChoices()
		out := make([]anyvar.AnyVar, len(choices))
		for i, c := range choices {
			out[i] = anyvar.String(c)
		}
		return anyvar.List(out), nil
	})

	d.Register(b.GetVarKeys, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		keys := cb.GetVarKeys()
		out := make([]anyvar.AnyVar, len(keys))
		for i, k := range keys {
			out[i] = anyvar.String(k)
		}
		return anyvar.List(out), nil
	})

	d.Register(b.GetVarOptions, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		if len(args) < 1 {
			return anyvar.Null, dispatch.InvalidParams("get_var_options requires a key")
		}
		return anyvar.List(cb.GetVarOptions(args[0].ToString())), nil
	})

	d.Register(b.GetVarValue, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		if len(args) < 1 {
			return anyvar.Null, dispatch.InvalidParams("get_var_value requires a key")
		}
		return cb.GetVarValue(args[0].ToString()), nil
	})

	d.Register(b.SetVarValue, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		if len(args) < 2 {
			return anyvar.Null, dispatch.InvalidParams("set_var_value requires (value, key)")
		}
		return anyvar.Null, cb.SetVarValue(args[1].ToString(), args[0])
	})

	d.Register(b.SetPosition, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		x, y, z, ok := anyvar.CoerceVec3(firstOr(args))
		if !ok {
			return anyvar.Null, dispatch.InvalidParams("set_position requires a vec3")
		}
		return anyvar.Null, cb.SetPosition(x, y, z)
	})

	d.Register(b.SetRotation, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		x, y, z, w, ok := anyvar.CoerceVec4(firstOr(args))
		if !ok {
			return anyvar.Null, dispatch.InvalidParams("set_rotation requires a vec4 quaternion")
		}
		return anyvar.Null, cb.SetRotation(x, y, z, w)
	})

	d.Register(b.SetScale, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		x, y, z, ok := anyvar.CoerceVec3(firstOr(args))
		if !ok {
			return anyvar.Null, dispatch.InvalidParams("set_scale requires a vec3")
		}
		return anyvar.Null, cb.SetScale(x, y, z)
	})

	d.Register(b.SelectRegion, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		if len(args) < 3 {
			return anyvar.Null, dispatch.InvalidParams("select_region requires (min, max, action)")
		}
		return anyvar.Null, cb.SelectRegion(vec3Arr(args[0]), vec3Arr(args[1]), SelectAction(args[2].ToInt()))
	})

	d.Register(b.SelectSphere, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		if len(args) < 3 {
			return anyvar.Null, dispatch.InvalidParams("select_sphere requires (center, radius, action)")
		}
		return anyvar.Null, cb.SelectSphere(vec3Arr(args[0]), args[1].ToReal(), SelectAction(args[2].ToInt()))
	})

	d.Register(b.SelectHalfPlane, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		if len(args) < 3 {
			return anyvar.Null, dispatch.InvalidParams("select_half_plane requires (point, normal, action)")
		}
		return anyvar.Null, cb.SelectHalfPlane(vec3Arr(args[0]), vec3Arr(args[1]), SelectAction(args[2].ToInt()))
	})

	d.Register(b.SelectHull, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		if len(args) < 3 {
			return anyvar.Null, dispatch.InvalidParams("select_hull requires (points, triangle_indices, action)")
		}
		points := decodePoints(args[0])
		tris := anyvar.CoerceInt64List(args[1])
		return anyvar.Null, cb.SelectHull(points, tris, SelectAction(args[2].ToInt()))
	})

	d.Register(b.ProbeAt, func(ctx id.AnyID, args []anyvar.AnyVar) (anyvar.AnyVar, error) {
		cb, err := resolve(ctx)
		if err != nil {
			return anyvar.Null, err
		}
		if len(args) < 1 {
			return anyvar.Null, dispatch.InvalidParams("probe_at requires a point")
		}
		label, hit, ok := cb.ProbeAt(vec3Arr(args[0]))
		if !ok {
			return anyvar.Null, nil
		}
		return anyvar.List([]anyvar.AnyVar{anyvar.String(label), anyvar.Vec3(hit[0], hit[1], hit[2])}), nil
	})

	return b
}

func firstOr(args []anyvar.AnyVar) anyvar.AnyVar {
	if len(args) == 0 {
		return anyvar.Null
	}
	return args[0]
}

func vec3Arr(v anyvar.AnyVar) [3]float64 {
	x, y, z, _ := anyvar.CoerceVec3(v)
	return [3]float64{x, y, z}
}

func decodePoints(v anyvar.AnyVar) [][3]float64 {
	flat := anyvar.CoerceFloat64List(v)
	out := make([][3]float64, 0, len(flat)/3)
	for i := 0; i+2 < len(flat); i += 3 {
		out = append(out, [3]float64{flat[i], flat[i+1], flat[i+2]})
	}
	return out
}
