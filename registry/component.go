package registry

import (
	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/id"
)

// The component kinds below restate spec.md §3's table as Go structs,
// essential attributes and all, so every field a create/update message
// carries has a typed home here rather than an opaque attribute bag.
// Referential fields are typed ids so RefError checks are exhaustive at
// compile time.

type Method struct {
	Name        string
	Docs        string
	ArgDoc      []string
	ReturnDoc   string
}

type Signal struct {
	Name   string
	Docs   string
	ArgDoc []string
}

type Buffer struct {
	Size       uint64
	InlineData []byte
	URIBytes   string // set iff served via the asset sideband instead
}

type BufferView struct {
	Source   id.Id[id.BufferTag]
	Offset   uint64
	Length   uint64
	ViewKind string // e.g. "GEOMETRY", "IMAGE"
}

type Image struct {
	BufferSource id.Id[id.BufferViewTag]
	URISource    string
}

type Sampler struct {
	MagFilter string
	MinFilter string
	WrapS     string
	WrapT     string
}

type Texture struct {
	Image   id.Id[id.ImageTag]
	Sampler id.Id[id.SamplerTag]
}

// TextureRef is a material's optional pointer to a Texture, carrying the
// uv transform and slot spec.md §3's Material row calls for.
type TextureRef struct {
	Texture   id.Id[id.TextureTag] // Invalid if this slot is unused
	Transform [9]float64           // row-major 3x3 uv transform
	UVSlot    int64
}

// Valid reports whether this texture slot is populated.
func (t TextureRef) Valid() bool { return t.Texture.Valid() }

// Material is the PBR metallic-roughness material spec.md §3 calls for:
// base color/factors, up to five optional texture slots, and alpha mode.
type Material struct {
	Name              string
	BaseColorFactor   [4]float64
	MetallicFactor    float64
	RoughnessFactor   float64
	EmissiveFactor    [3]float64
	BaseColorTexture  TextureRef
	MetalRoughTexture TextureRef
	NormalTexture     TextureRef
	EmissiveTexture   TextureRef
	OcclusionTexture  TextureRef
	AlphaMode         string // "OPAQUE", "MASK", "BLEND"
	DoubleSided       bool
}

// GeometryAttribute is one vertex attribute stream within a patch:
// semantic, source view, and the layout needed to read it.
type GeometryAttribute struct {
	Semantic  string // "POSITION", "NORMAL", "TEXTURE", "COLOR", ...
	View      id.Id[id.BufferViewTag]
	Format    string // "VEC3", "U8VEC4", ...
	Offset    uint64
	Stride    uint64
	Normalize bool
}

// GeometryPatch is one draw call's worth of attribute streams, optional
// index buffer, primitive type, and material.
type GeometryPatch struct {
	Attributes    []GeometryAttribute
	Indices       id.Id[id.BufferViewTag] // Invalid if non-indexed
	IndexCount    uint64
	PrimitiveType string // "TRIANGLES", "LINES", "POINTS", ...
	Material      id.Id[id.MaterialTag]
}

type Geometry struct {
	Name    string
	Patches []GeometryPatch
}

// LightKind discriminates Light's one-of{point, spot, directional} arm.
type LightKind int

const (
	LightPoint LightKind = iota
	LightSpot
	LightDirectional
)

func (k LightKind) String() string {
	switch k {
	case LightSpot:
		return "spot"
	case LightDirectional:
		return "directional"
	default:
		return "point"
	}
}

type Light struct {
	Name      string
	Color     [3]float64
	Intensity float64
	Kind      LightKind
	Range     float64 // all three arms
	InnerCone float64 // spot only
	OuterCone float64 // spot only
}

// EntityRepKind discriminates Entity.Representation's one-of arms.
type EntityRepKind int

const (
	EntityRepNone EntityRepKind = iota
	EntityRepText
	EntityRepWeb
	EntityRepRender
)

func (k EntityRepKind) String() string {
	switch k {
	case EntityRepText:
		return "text"
	case EntityRepWeb:
		return "web"
	case EntityRepRender:
		return "render"
	default:
		return "null"
	}
}

// EntityRenderRep is the render{} arm: a geometry to draw plus an
// optional per-instance transform buffer for instanced drawing.
type EntityRenderRep struct {
	Geometry       id.Id[id.GeometryTag]
	InstanceSource id.Id[id.BufferViewTag] // Invalid if single-instance
}

// EntityRepresentation is Entity's one-of{null, text, web, render}
// visual representation.
type EntityRepresentation struct {
	Kind   EntityRepKind
	Text   string
	WebURL string
	Render EntityRenderRep
}

type Entity struct {
	Name           string
	Parent         id.Id[id.EntityTag] // Invalid32 sentinel if a root
	Transform      [16]float64
	Representation EntityRepresentation
	Lights         []id.Id[id.LightTag]
	Tables         []id.Id[id.TableTag]
	Plots          []id.Id[id.PlotTag]
	Tags           []string
	Methods        []id.Id[id.MethodTag]
	Signals        []id.Id[id.SignalTag]
	InfluenceAABB  [6]float64 // min xyz, max xyz; zero value means unset
}

type Table struct {
	Name     string
	Methods  []id.Id[id.MethodTag]
	Signals  []id.Id[id.SignalTag]
	Source   TableSource
	Metadata map[string]anyvar.AnyVar
}

// PlotRepKind discriminates Plot's one-of{simple-string, url} arm.
type PlotRepKind int

const (
	PlotRepSimpleString PlotRepKind = iota
	PlotRepURL
)

func (k PlotRepKind) String() string {
	if k == PlotRepURL {
		return "url"
	}
	return "simple_string"
}

type Plot struct {
	Name    string
	Table   id.Id[id.TableTag] // optional
	RepKind PlotRepKind
	Text    string // simple-string arm
	URL     string // url arm
	Methods []id.Id[id.MethodTag]
	Signals []id.Id[id.SignalTag]
}

// Document is the single always-present root component: the
// document-scope attached methods/signals, visible to every Active
// client implicitly (spec.md §4.8).
type Document struct {
	Methods  []id.Id[id.MethodTag]
	Signals  []id.Id[id.SignalTag]
	Metadata map[string]anyvar.AnyVar
}

// Updatable reports whether kind k accepts Registry.Update* calls.
// Registry has no Update* method for any other kind, so no Registry
// method returns UnsupportedUpdate. The client mirror does not call this:
// the wire only has update tags for these kinds.
func Updatable(k id.Kind) bool {
	switch k {
	case id.KindEntity, id.KindPlot, id.KindMaterial, id.KindLight, id.KindTable, id.KindDocument:
		return true
	default:
		return false
	}
}
