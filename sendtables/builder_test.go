package sendtables

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFieldTypeGrammar(t *testing.T) {
	tests := []struct {
		in   string
		want FieldType
	}{
		{"int32", FieldType{Base: "int32", Count: -1}},
		{"int32[64]", FieldType{Base: "int32", Count: 64}},
		{"CHandle< CBaseEntity >", FieldType{Base: "CHandle", Generic: "CBaseEntity", Count: -1}},
		{"CBodyComponent", FieldType{Base: "CBodyComponent", Pointer: true, Count: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseFieldType(tt.in)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseFieldTypeNestedGeneric(t *testing.T) {
	got := parseFieldType("CUtlVector< CHandle< CBaseEntity > >*")
	require.Equal(t, "CUtlVector", got.Base)
	require.Equal(t, "CHandle< CBaseEntity >", got.Generic)
	require.True(t, got.Pointer)
}

func TestConstructorFieldIsArray(t *testing.T) {
	cf := ConstructorField{Type: FieldType{Base: "int32", Count: 64}}
	require.True(t, cf.isArray())

	cf = ConstructorField{Type: FieldType{Base: "char", Count: 128}}
	require.False(t, cf.isArray(), "char arrays are C strings, not element arrays")
}

func TestConstructorFieldIsVector(t *testing.T) {
	require.True(t, ConstructorField{SerializerName: "CBasePlayerWeaponVData"}.isVector())
	require.True(t, ConstructorField{Type: FieldType{Base: "CUtlVector"}}.isVector())
	require.False(t, ConstructorField{Type: FieldType{Base: "int32"}}.isVector())
}

func TestFindDecoderVarNameOverride(t *testing.T) {
	cf := ConstructorField{VarName: "m_iClip1", Type: FieldType{Base: "int32"}}
	require.Equal(t, DecAmmo, findDecoder(cf))
}

func TestFindDecoderEncoderOverride(t *testing.T) {
	cf := ConstructorField{VarName: "m_vecOrigin", Encoder: "coord", Type: FieldType{Base: "float32"}}
	require.Equal(t, DecFloatCoord, findDecoder(cf))
}

func TestFindDecoderQangleGating(t *testing.T) {
	qangle := func(varName, encoder string, bitCount int32) ConstructorField {
		return ConstructorField{VarName: varName, Encoder: encoder, BitCount: bitCount, Type: FieldType{Base: "QAngle"}}
	}
	require.Equal(t, DecQanglePitchYaw, findDecoder(qangle("m_angEyeAngles", "", 0)))
	require.Equal(t, DecQangle3, findDecoder(qangle("m_angRotation", "", 13)))
	require.Equal(t, DecQangleVar, findDecoder(qangle("m_angRotation", "", 0)))
	require.Equal(t, DecQanglePres, findDecoder(qangle("m_angRotation", "qangle_precise", 0)))
}

func TestFindDecoderVectorEncoderKeepsDimensionality(t *testing.T) {
	// A "coord"-encoded Vector reads three bit-coords, never the scalar
	// coord decoder.
	cf := ConstructorField{VarName: "m_vecOrigin", Encoder: "coord", Type: FieldType{Base: "Vector"}}
	require.Equal(t, DecVectorFloatCoord, findDecoder(cf))

	cf = ConstructorField{VarName: "m_vecNormal", Encoder: "normal", Type: FieldType{Base: "Vector"}}
	require.Equal(t, DecVectorNormal, findDecoder(cf))

	cf = ConstructorField{VarName: "m_vecMins", Type: FieldType{Base: "Vector"}}
	require.Equal(t, DecVectorNoscale, findDecoder(cf))
}

func TestFindDecoderBaseFallback(t *testing.T) {
	cf := ConstructorField{VarName: "m_nSomeRandomField", Type: FieldType{Base: "bool"}}
	require.Equal(t, DecBoolean, findDecoder(cf))
}

func TestFindDecoderUnknownBaseDefaultsUnsigned(t *testing.T) {
	cf := ConstructorField{VarName: "m_whatever", Type: FieldType{Base: "SomeUnlistedEnum"}}
	require.Equal(t, DecUnsigned, findDecoder(cf))
}
