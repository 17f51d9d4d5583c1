/*

The schema builder: turns a decoded FlattenedSerializer message into a tree
of Field-typed Serializers, and assigns the decoder each leaf will use at
entity-update time (spec.md §4.5).

*/

package sendtables

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/csdemo-go/csdemo/wire"
)

// FieldType is the parsed shape of one var_type string: base (< generic >)? *? ([count])?
type FieldType struct {
	Base    string
	Generic string // "" if absent.
	Pointer bool
	Count   int32 // -1 if absent.
}

var fieldTypeRE = regexp.MustCompile(`^([^<*\[]+?)\s*(?:<\s*(.+?)\s*>)?\s*(\*)?\s*(?:\[\s*(\d+)\s*\])?$`)

// alwaysPointerBases are base-type names that are unconditionally pointer
// fields regardless of whether the string itself carries a trailing '*'.
var alwaysPointerBases = map[string]bool{
	"CBodyComponent":    true,
	"CLightComponent":   true,
	"CPhysicsComponent": true,
	"CRenderComponent":  true,
	"CPlayerLocalData":  true,
}

// parseFieldType resolves a var_type string through the grammar
// base (< generic >)? \*? (\[count\])?.
func parseFieldType(s string) FieldType {
	ft := FieldType{Count: -1}
	m := fieldTypeRE.FindStringSubmatch(s)
	if m == nil {
		ft.Base = s
		return ft
	}
	ft.Base = m[1]
	ft.Generic = m[2]
	ft.Pointer = m[3] == "*"
	if m[4] != "" {
		if n, err := strconv.Atoi(m[4]); err == nil {
			ft.Count = int32(n)
		}
	}
	if alwaysPointerBases[ft.Base] {
		ft.Pointer = true
	}
	return ft
}

// ConstructorField carries everything the category/decoder-assignment rules
// need about one field descriptor, resolved from symbols.
type ConstructorField struct {
	VarName        string
	VarType        string
	SendNode       string
	SerializerName string // "" if absent.
	SerializerVer  int32
	Encoder        string // "" if absent.
	EncodeFlags    int32
	BitCount       int32
	Low, High      float32
	Type           FieldType
}

func buildConstructorField(fs *wire.FlattenedSerializer, f wire.FlattenedSerializerField) ConstructorField {
	cf := ConstructorField{
		VarName:        fs.Symbol(f.VarNameSym),
		VarType:        fs.Symbol(f.VarTypeSym),
		SendNode:       fs.Symbol(f.SendNodeSym),
		SerializerName: fs.Symbol(f.FieldSerializerName),
		SerializerVer:  f.FieldSerializerVer,
		Encoder:        fs.Symbol(f.VarEncoderSym),
		EncodeFlags:    f.EncodeFlags,
		BitCount:       f.BitCount,
		Low:            f.LowValue,
		High:           f.HighValue,
	}
	cf.Type = parseFieldType(cf.VarType)
	return cf
}

// isArray reports whether cf should be wrapped in a fixed-length FieldArray:
// count is present and the element base isn't char (those are C strings).
func (cf ConstructorField) isArray() bool {
	return cf.Type.Count >= 0 && cf.Type.Base != "char"
}

// isVector reports whether cf should be wrapped in a variable-length
// FieldVector: it names an embedded serializer, or its base is one of the
// two CUtlVector spellings.
func (cf ConstructorField) isVector() bool {
	if cf.SerializerName != "" {
		return true
	}
	switch cf.Type.Base {
	case "CUtlVector", "CNetworkUtlVectorBase":
		return true
	}
	return false
}

// Builder assembles Field trees from a decoded FlattenedSerializer message
// and assigns prop-ids as each one completes.
type Builder struct {
	fs    *wire.FlattenedSerializer
	props *PropController

	built map[string]*Serializer // by "name#version", pre-clone.
}

// NewBuilder returns a Builder reading field/serializer descriptors out of fs
// and recording prop-ids into props.
func NewBuilder(fs *wire.FlattenedSerializer, props *PropController) *Builder {
	return &Builder{fs: fs, props: props, built: make(map[string]*Serializer)}
}

// BuildAll builds every named serializer in the message, keyed by name. Each
// entry is its own clone so mutating one (there is no mutation today, but
// the entity layer stores these long-lived) never aliases another's tree.
func (b *Builder) BuildAll() (map[string]*Serializer, error) {
	out := make(map[string]*Serializer, len(b.fs.Serializers))
	for _, def := range b.fs.Serializers {
		ser, err := b.buildSerializer(def)
		if err != nil {
			return nil, err
		}
		out[ser.Name] = ser
	}
	return out, nil
}

func (b *Builder) buildSerializer(def wire.FlattenedSerializerDef) (*Serializer, error) {
	name := b.fs.Symbol(def.NameSym)
	key := name + "#" + strconv.Itoa(int(def.Version))
	if existing, ok := b.built[key]; ok {
		return existing.Clone(), nil
	}

	ser := &Serializer{Name: name, Version: def.Version}
	// Placeholder entry so a serializer that (indirectly) embeds itself
	// terminates on the second visit instead of recursing forever; the
	// caller always receives a clone, never this live placeholder.
	b.built[key] = ser

	for _, idx := range def.FieldsIndex {
		if int(idx) < 0 || int(idx) >= len(b.fs.Fields) {
			continue
		}
		cf := buildConstructorField(b.fs, b.fs.Fields[int(idx)])
		field, err := b.buildField(ser, cf)
		if err != nil {
			return nil, err
		}
		ser.Fields = append(ser.Fields, field)
	}

	b.props.assign(ser)
	return ser.Clone(), nil
}

func (b *Builder) buildField(ser *Serializer, cf ConstructorField) (*Field, error) {
	switch {
	case cf.Type.Pointer:
		return b.buildPointerOrValue(ser, cf, FieldPointer)
	case cf.isVector():
		return b.buildWrapped(ser, cf, FieldVector)
	case cf.isArray():
		return b.buildWrapped(ser, cf, FieldArray)
	default:
		return b.buildValueField(ser, cf)
	}
}

// buildWrapped builds a vector or array wrapper around an element field that
// is itself resolved through the ordinary value/serializer rules (minus the
// wrapping one), matching spec.md §4.5 step 5's nesting.
func (b *Builder) buildWrapped(ser *Serializer, cf ConstructorField, cat FieldCategory) (*Field, error) {
	elemCF := cf
	elemCF.Type.Count = -1
	var elem *Field
	var err error
	if cf.SerializerName != "" {
		elem, err = b.buildEmbeddedSerializerField(ser, elemCF)
	} else {
		elem, err = b.buildValueField(ser, elemCF)
	}
	if err != nil {
		return nil, err
	}
	f := &Field{
		Category: cat,
		Name:     cf.VarName,
		FullName: ser.Name + "." + cf.VarName,
		Element:  elem,
		Length:   cf.Type.Count,
	}
	if cat == FieldVector {
		f.IndexDecoder = DecUnsigned
	}
	return f, nil
}

func (b *Builder) buildPointerOrValue(ser *Serializer, cf ConstructorField, cat FieldCategory) (*Field, error) {
	if cf.SerializerName == "" {
		return b.buildValueField(ser, cf)
	}
	f, err := b.buildEmbeddedSerializerField(ser, cf)
	if err != nil {
		return nil, err
	}
	f.Category = cat
	if f.Inner != nil && f.Inner.Name == "CCSGameModeRules" {
		f.PointerDecoder = DecGameModeRules
	} else {
		f.PointerDecoder = DecBoolean
	}
	return f, nil
}

func (b *Builder) buildEmbeddedSerializerField(ser *Serializer, cf ConstructorField) (*Field, error) {
	var inner *Serializer
	for _, def := range b.fs.Serializers {
		if b.fs.Symbol(def.NameSym) == cf.SerializerName {
			built, err := b.buildSerializer(def)
			if err != nil {
				return nil, err
			}
			inner = built
			break
		}
	}
	return &Field{
		Category: FieldSerializer,
		Name:     cf.VarName,
		FullName: ser.Name + "." + cf.VarName,
		Inner:    inner,
	}, nil
}

func (b *Builder) buildValueField(ser *Serializer, cf ConstructorField) (*Field, error) {
	f := &Field{
		Category:    FieldValue,
		Name:        cf.VarName,
		FullName:    ser.Name + "." + cf.VarName,
		ShouldParse: true,
	}
	f.Decoder = findDecoder(cf)
	if f.Decoder == DecQuantizedFloat {
		f.QuantizedFloat = NewQuantizedFloat(float64(cf.Low), float64(cf.High), uint(cf.BitCount), quantizedFlagsFromEncode(cf.EncodeFlags))
	}
	return f, nil
}

func quantizedFlagsFromEncode(encodeFlags int32) QuantizedFloatFlag {
	return QuantizedFloatFlag(encodeFlags)
}

// baseDecoders is the base-type -> decoder fallback table (spec.md §4.5
// step 4's "≈60 entries"). Unlisted bases fall back to DecUnsigned, which
// covers the long tail of plain integer enums/handles.
var baseDecoders = map[string]Decoder{
	"float32":                           DecNoscale,
	"CNetworkedQuantizedFloat":          DecQuantizedFloat,
	"GameTime_t":                        DecNoscale,
	"GameTick_t":                        DecUnsigned,
	"MatchID_t":                         DecUnsigned64,
	"uint64":                            DecUnsigned64,
	"uint64_t":                          DecUnsigned64,
	"itemid_t":                          DecUnsigned64,
	"int64":                             DecSigned,
	"int64_t":                           DecSigned,
	"bool":                              DecBoolean,
	"char":                              DecString,
	"Quaternion":                        DecNoscale,
	"CHandle":                           DecCEntityHandle,
	"CEntityHandle":                     DecCEntityHandle,
	"CBaseEntity":                       DecCEntityHandle,
	"CEntityIndex":                      DecSigned,
	"CStrongHandle":                     DecUnsigned64,
	"CGameSceneNodeHandle":              DecUnsigned,
	"Color":                             DecUnsigned,
	"color32":                           DecUnsigned,
	"HSequence":                         DecUnsigned,
	"AttachmentHandle_t":                DecUnsigned,
	"CUtlString":                        DecString,
	"CUtlSymbolLarge":                   DecString,
	"CUtlStringToken":                   DecUnsigned,
	"CUtlVector":                        DecUnsigned,
	"CNetworkUtlVectorBase":             DecUnsigned,
	"int32":                             DecSigned,
	"int":                               DecSigned,
	"int8":                              DecSigned,
	"int16":                             DecSigned,
	"uint32":                            DecUnsigned,
	"uint8":                             DecUnsigned,
	"uint16":                            DecUnsigned,
	"CBodyComponent":                    DecBoolean,
	"CPhysicsComponent":                 DecBoolean,
	"CLightComponent":                   DecBoolean,
	"CRenderComponent":                  DecBoolean,
	"CPlayerLocalData":                  DecBoolean,
	"WorldGroupId_t":                    DecUnsigned,
	"AmmoIndex_t":                       DecUnsigned,
	"MoveType_t":                        DecUnsigned,
	"MoveCollide_t":                     DecUnsigned,
	"RenderMode_t":                      DecUnsigned,
	"RenderFx_t":                        DecUnsigned,
	"SolidType_t":                       DecUnsigned,
	"SurroundingBoundsType_t":           DecUnsigned,
	"gender_t":                          DecUnsigned,
	"item_definition_index_t":           DecUnsigned,
	"style_index_t":                     DecUnsigned,
	"loadout_slot_t":                    DecSigned,
	"attributeprovidertypes_t":          DecUnsigned,
	"CSWeaponMode":                      DecUnsigned,
	"CSPlayerState":                     DecUnsigned,
	"CSPlayerBlockingUseAction_t":       DecUnsigned,
	"QuestProgress::Reason":             DecUnsigned,
	"MedalRank_t":                       DecUnsigned,
	"PlayerConnectedState":              DecUnsigned,
	"WeaponState_t":                     DecUnsigned,
	"EKillTypes_t":                      DecUnsigned,
	"ChickenActivity":                   DecUnsigned,
	"DoorState_t":                       DecUnsigned,
	"EntityDisolveType_t":               DecUnsigned,
	"PointWorldTextJustifyHorizontal_t": DecUnsigned,
	"fogparams_t":                       DecNoscale,
}

// varNameOverrides assigns a fixed decoder to specific leaf var-names,
// independent of their declared base type (spec.md §4.5 step 4).
var varNameOverrides = map[string]Decoder{
	"m_iClip1":           DecAmmo,
	"m_flSimulationTime": DecFloatSimulationTime,
	"m_flAnimTime":       DecFloatSimulationTime,
	"m_pGameModeRules":   DecGameModeRules,
}

// predictionCopyVarNames are the predicted/copied network-var collections
// that always decode Noscale (scalars) / VectorNoscale (vectors) regardless
// of their nominal base type, since the engine re-derives their real value
// client-side and only ships the raw bits across the wire.
var predictionCopyVarNames = map[string]bool{
	"m_vecX": true, "m_vecY": true, "m_vecZ": true,
	"m_vecBaseVelocity": true, "m_vecVelocity": true,
}

// encoderOverrides assigns a fixed decoder to scalar fields based on their
// encoder string, overriding the var-name and base-type rules. Vector and
// QAngle bases never reach this table: their dimensionality is fixed first
// and their encoder strings are interpreted inside findVectorDecoder /
// findQangleDecoder.
var encoderOverrides = map[string]Decoder{
	"coord":   DecFloatCoord,
	"fixed64": DecFixed64,
}

func findDecoder(cf ConstructorField) Decoder {
	// Multi-axis bases resolve their dimensionality before any scalar
	// encoder override can apply: a "coord"-encoded Vector is three
	// bit-coords, not one.
	switch cf.Type.Base {
	case "Vector", "Vector2D", "Vector4D", "CNetworkedVector":
		return findVectorDecoder(cf)
	case "QAngle", "CNetworkedQAngle":
		return findQangleDecoder(cf)
	}

	if enc := strings.TrimSpace(cf.Encoder); enc != "" {
		if d, ok := encoderOverrides[enc]; ok {
			return d
		}
	}
	if d, ok := varNameOverrides[cf.VarName]; ok {
		return d
	}
	if predictionCopyVarNames[cf.VarName] {
		return DecNoscale
	}
	if cf.BitCount > 0 && cf.BitCount < 32 && (cf.Type.Base == "float32" || cf.Type.Base == "CNetworkedQuantizedFloat") {
		return DecQuantizedFloat
	}
	if d, ok := baseDecoders[cf.Type.Base]; ok {
		return d
	}
	return DecUnsigned
}

func findVectorDecoder(cf ConstructorField) Decoder {
	if predictionCopyVarNames[cf.VarName] {
		return DecVectorNoscale
	}
	switch strings.TrimSpace(cf.Encoder) {
	case "coord":
		return DecVectorFloatCoord
	case "normal":
		return DecVectorNormal
	}
	return DecVectorNoscale
}

// findQangleDecoder picks among the four angle decoders: eye angles are the
// one pitch/yaw pair, a precise encoder selects the 20-bit presence-masked
// form, a declared bit count pins three raw floats, and everything else is
// the variable presence-masked coord form.
func findQangleDecoder(cf ConstructorField) Decoder {
	if strings.TrimSpace(cf.Encoder) == "qangle_precise" {
		return DecQanglePres
	}
	if cf.VarName == "m_angEyeAngles" {
		return DecQanglePitchYaw
	}
	if cf.BitCount != 0 {
		return DecQangle3
	}
	return DecQangleVar
}
