package client

import (
	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/registry"
	"github.com/InsightCenterNoodles/noodles-core/wire"
)

// The helpers in this file are the inverse of registry/encode.go: they
// pull a component's essential attributes back out of the AnyVar shapes
// a create/update message carries, so the mirror ends up holding the
// same typed state the server's registry does.

func stringsFromList(v anyvar.AnyVar) []string {
	items := v.ToList()
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ToString()
	}
	return out
}

func methodIDsFromList(v anyvar.AnyVar) []id.Id[id.MethodTag] {
	items := v.ToList()
	if items == nil {
		return nil
	}
	out := make([]id.Id[id.MethodTag], 0, len(items))
	for _, item := range items {
		if i, ok := id.ToMethod(item.ToID()); ok {
			out = append(out, i)
		}
	}
	return out
}

func signalIDsFromList(v anyvar.AnyVar) []id.Id[id.SignalTag] {
	items := v.ToList()
	if items == nil {
		return nil
	}
	out := make([]id.Id[id.SignalTag], 0, len(items))
	for _, item := range items {
		if i, ok := id.ToSignal(item.ToID()); ok {
			out = append(out, i)
		}
	}
	return out
}

func lightIDsFromList(v anyvar.AnyVar) []id.Id[id.LightTag] {
	items := v.ToList()
	if items == nil {
		return nil
	}
	out := make([]id.Id[id.LightTag], 0, len(items))
	for _, item := range items {
		if i, ok := id.ToLight(item.ToID()); ok {
			out = append(out, i)
		}
	}
	return out
}

func tableIDsFromList(v anyvar.AnyVar) []id.Id[id.TableTag] {
	items := v.ToList()
	if items == nil {
		return nil
	}
	out := make([]id.Id[id.TableTag], 0, len(items))
	for _, item := range items {
		if i, ok := id.ToTable(item.ToID()); ok {
			out = append(out, i)
		}
	}
	return out
}

func plotIDsFromList(v anyvar.AnyVar) []id.Id[id.PlotTag] {
	items := v.ToList()
	if items == nil {
		return nil
	}
	out := make([]id.Id[id.PlotTag], 0, len(items))
	for _, item := range items {
		if i, ok := id.ToPlot(item.ToID()); ok {
			out = append(out, i)
		}
	}
	return out
}

func intToBool(v anyvar.AnyVar) bool { return v.ToInt() != 0 }

func vec3FromAnyVar(v anyvar.AnyVar) [3]float64 {
	var out [3]float64
	for i, f := range v.ToPackedFloat64List() {
		if i >= len(out) {
			break
		}
		out[i] = f
	}
	return out
}

func vec4FromAnyVar(v anyvar.AnyVar) [4]float64 {
	var out [4]float64
	for i, f := range v.ToPackedFloat64List() {
		if i >= len(out) {
			break
		}
		out[i] = f
	}
	return out
}

func mat4FromAnyVar(v anyvar.AnyVar) [16]float64 {
	var out [16]float64
	for i, f := range v.ToPackedFloat64List() {
		if i >= len(out) {
			break
		}
		out[i] = f
	}
	return out
}

func aabb6FromAnyVar(v anyvar.AnyVar) [6]float64 {
	var out [6]float64
	for i, f := range v.ToPackedFloat64List() {
		if i >= len(out) {
			break
		}
		out[i] = f
	}
	return out
}

func transform9FromAnyVar(v anyvar.AnyVar) [9]float64 {
	var out [9]float64
	for i, f := range v.ToPackedFloat64List() {
		if i >= len(out) {
			break
		}
		out[i] = f
	}
	return out
}

func textureRefFromMap(v anyvar.AnyVar) registry.TextureRef {
	mp := v.ToMap()
	if mp == nil {
		return registry.TextureRef{}
	}
	tex, _ := id.ToTexture(mp["texture"].ToID())
	return registry.TextureRef{
		Texture:   tex,
		Transform: transform9FromAnyVar(mp["transform"]),
		UVSlot:    mp["uv_slot"].ToInt(),
	}
}

func materialFromMsg(msg wire.Message) registry.Material {
	return registry.Material{
		Name:              msg.Get("name").ToString(),
		BaseColorFactor:   vec4FromAnyVar(msg.Get("base_color_factor")),
		MetallicFactor:    msg.Get("metallic_factor").ToReal(),
		RoughnessFactor:   msg.Get("roughness_factor").ToReal(),
		EmissiveFactor:    vec3FromAnyVar(msg.Get("emissive_factor")),
		BaseColorTexture:  textureRefFromMap(msg.Get("base_color_texture")),
		MetalRoughTexture: textureRefFromMap(msg.Get("metal_rough_texture")),
		NormalTexture:     textureRefFromMap(msg.Get("normal_texture")),
		EmissiveTexture:   textureRefFromMap(msg.Get("emissive_texture")),
		OcclusionTexture:  textureRefFromMap(msg.Get("occlusion_texture")),
		AlphaMode:         msg.Get("alpha_mode").ToString(),
		DoubleSided:       intToBool(msg.Get("double_sided")),
	}
}

func geometryAttributeFromMap(v anyvar.AnyVar) registry.GeometryAttribute {
	mp := v.ToMap()
	if mp == nil {
		return registry.GeometryAttribute{}
	}
	view, _ := id.ToBufferView(mp["view"].ToID())
	return registry.GeometryAttribute{
		Semantic:  mp["semantic"].ToString(),
		View:      view,
		Format:    mp["format"].ToString(),
		Offset:    uint64(mp["offset"].ToInt()),
		Stride:    uint64(mp["stride"].ToInt()),
		Normalize: intToBool(mp["normalize"]),
	}
}

func geometryPatchFromMap(v anyvar.AnyVar) registry.GeometryPatch {
	mp := v.ToMap()
	if mp == nil {
		return registry.GeometryPatch{}
	}
	attrItems := mp["attributes"].ToList()
	attrs := make([]registry.GeometryAttribute, len(attrItems))
	for i, a := range attrItems {
		attrs[i] = geometryAttributeFromMap(a)
	}
	indices, _ := id.ToBufferView(mp["indices"].ToID())
	material, _ := id.ToMaterial(mp["material"].ToID())
	return registry.GeometryPatch{
		Attributes:    attrs,
		Indices:       indices,
		IndexCount:    uint64(mp["index_count"].ToInt()),
		PrimitiveType: mp["primitive_type"].ToString(),
		Material:      material,
	}
}

func geometryFromMsg(msg wire.Message) registry.Geometry {
	patchItems := msg.Get("patches").ToList()
	patches := make([]registry.GeometryPatch, len(patchItems))
	for i, p := range patchItems {
		patches[i] = geometryPatchFromMap(p)
	}
	return registry.Geometry{
		Name:    msg.Get("name").ToString(),
		Patches: patches,
	}
}

func lightKindFromString(s string) registry.LightKind {
	switch s {
	case "spot":
		return registry.LightSpot
	case "directional":
		return registry.LightDirectional
	default:
		return registry.LightPoint
	}
}

func lightFromMsg(msg wire.Message) registry.Light {
	color := vec3FromAnyVar(msg.Get("color"))
	return registry.Light{
		Name:      msg.Get("name").ToString(),
		Color:     color,
		Intensity: msg.Get("intensity").ToReal(),
		Kind:      lightKindFromString(msg.Get("kind").ToString()),
		Range:     msg.Get("range").ToReal(),
		InnerCone: msg.Get("inner_cone").ToReal(),
		OuterCone: msg.Get("outer_cone").ToReal(),
	}
}

func entityRepKindFromString(s string) registry.EntityRepKind {
	switch s {
	case "text":
		return registry.EntityRepText
	case "web":
		return registry.EntityRepWeb
	case "render":
		return registry.EntityRepRender
	default:
		return registry.EntityRepNone
	}
}

func entityRepresentationFromMap(v anyvar.AnyVar) registry.EntityRepresentation {
	mp := v.ToMap()
	if mp == nil {
		return registry.EntityRepresentation{}
	}
	geometry, _ := id.ToGeometry(mp["geometry"].ToID())
	instanceSource, _ := id.ToBufferView(mp["instance_source"].ToID())
	return registry.EntityRepresentation{
		Kind:   entityRepKindFromString(mp["kind"].ToString()),
		Text:   mp["text"].ToString(),
		WebURL: mp["web_url"].ToString(),
		Render: registry.EntityRenderRep{
			Geometry:       geometry,
			InstanceSource: instanceSource,
		},
	}
}

func entityFromMsg(msg wire.Message) registry.Entity {
	return registry.Entity{
		Name:           msg.Get("name").ToString(),
		Parent:         entityParentFromMsg(msg),
		Transform:      mat4FromAnyVar(msg.Get("transform")),
		Representation: entityRepresentationFromMap(msg.Get("representation")),
		Lights:         lightIDsFromList(msg.Get("lights")),
		Tables:         tableIDsFromList(msg.Get("tables")),
		Plots:          plotIDsFromList(msg.Get("plots")),
		Tags:           stringsFromList(msg.Get("tags")),
		Methods:        methodIDsFromList(msg.Get("methods")),
		Signals:        signalIDsFromList(msg.Get("signals")),
		InfluenceAABB:  aabb6FromAnyVar(msg.Get("influence_aabb")),
	}
}

func metadataFromMsg(v anyvar.AnyVar) map[string]anyvar.AnyVar {
	mp := v.ToMap()
	if mp == nil {
		return nil
	}
	return mp
}

func tableFromMsg(msg wire.Message) registry.Table {
	return registry.Table{
		Name:     msg.Get("name").ToString(),
		Methods:  methodIDsFromList(msg.Get("methods")),
		Signals:  signalIDsFromList(msg.Get("signals")),
		Metadata: metadataFromMsg(msg.Get("metadata")),
	}
}

func plotRepKindFromString(s string) registry.PlotRepKind {
	if s == "url" {
		return registry.PlotRepURL
	}
	return registry.PlotRepSimpleString
}

func plotFromMsg(msg wire.Message) registry.Plot {
	table, _ := id.ToTable(msg.Get("table").ToID())
	return registry.Plot{
		Name:    msg.Get("name").ToString(),
		Table:   table,
		RepKind: plotRepKindFromString(msg.Get("rep").ToString()),
		Text:    msg.Get("text").ToString(),
		URL:     msg.Get("url").ToString(),
		Methods: methodIDsFromList(msg.Get("methods")),
		Signals: signalIDsFromList(msg.Get("signals")),
	}
}

func documentFromMsg(msg wire.Message) registry.Document {
	return registry.Document{
		Methods:  methodIDsFromList(msg.Get("methods")),
		Signals:  signalIDsFromList(msg.Get("signals")),
		Metadata: metadataFromMsg(msg.Get("metadata")),
	}
}
