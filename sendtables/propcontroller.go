/*

The prop controller: a stable, cross-serializer numbering scheme for value
leaves, so the same logical property keeps the same id across every entity
class that carries it (spec.md §4.6).

*/

package sendtables

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dchest/siphash"
)

// siphash key pair for PropController.SortedPropInfos's ordering hash. Fixed
// (not random) so the same schema always produces the same debug-dump order
// across runs, matching siphash.Hash128's use in SnellerInc-sneller for a
// stable content key rather than a randomized one.
const (
	propOrderK0 = 0x636664656d6f2d31
	propOrderK1 = 0x2d70726f70636f6e
)

// PropInfo is one entry of the controller's id <-> name table.
type PropInfo struct {
	ID   int32
	Name string
}

// PropController assigns and remembers prop-ids across every serializer
// built from one demo's schema. It is owned by a single parser instance,
// not shared process-wide: unlike a versioned protocol definition reused
// across many replays of the same game build, a demo carries its schema
// inline, so there is nothing to usefully cache beyond one parse.
type PropController struct {
	counter int32 // Next id to hand out, starts at 1000.

	nameToID map[string]int32
	idToName map[int32]string
	pathName map[[7]int32]string
}

// NewPropController returns an empty controller with its counter at 1000.
func NewPropController() *PropController {
	return &PropController{
		counter:  1000,
		nameToID: make(map[string]int32),
		idToName: make(map[int32]string),
		pathName: make(map[[7]int32]string),
	}
}

// weaponPattern matches the first path segment (the serializer name) that
// should be dropped when forming a canonical name for weapon-class
// collapsing, e.g. "CWeaponAK47.m_iClip1" shares an id with
// "CWeaponM4A1.m_iClip1".
var weaponPattern = regexp.MustCompile(`Weapon|AK|Knife|CDEagle|C4|Molo|Inc|Infer`)
var grenadePattern = regexp.MustCompile(`Projectile|Grenade|Flash`)

func canonicalName(fullName string) string {
	segs := strings.SplitN(fullName, ".", 2)
	if len(segs) != 2 {
		return fullName
	}
	first, rest := segs[0], segs[1]
	if strings.Contains(first, "Player") {
		return fullName
	}
	if weaponPattern.MatchString(first) || grenadePattern.MatchString(first) {
		return rest
	}
	return fullName
}

// Reserved id bases for specific properties; the decode-time Lookup
// contextualises these further by path (per-slot weapon handles, per-group
// purchase counters, per-slot skin attributes).
const (
	idMyWeapons        int32 = 500000
	idEconRawValue     int32 = 10000000
	idPurchaseCount    int32 = 200000000
	idSellbackDefIdx   int32 = 300000000
	idSellbackCost     int32 = 400000000
	idSellbackItem     int32 = 500000000
	idPurchaseDefIndex int32 = 600000000
)

// reservedIDs overrides the counter-assigned id for specific properties,
// matched by leaf name or by full (serializer-qualified) name.
var reservedIDs = map[string]int32{
	"m_hMyWeapons":                          idMyWeapons,
	"WeaponPurchaseCount_t.m_nCount":        idPurchaseCount,
	"SellbackPurchaseEntry_t.m_unDefIdx":    idSellbackDefIdx,
	"SellbackPurchaseEntry_t.m_nCost":       idSellbackCost,
	"WeaponPurchaseCount_t.m_nItemDefIndex": idPurchaseDefIndex,
	"SellbackPurchaseEntry_t.m_hItem":       idSellbackItem,
	"CEconItemAttribute.m_iRawValue32":      idEconRawValue,
}

func reservedIDFor(f *Field) (int32, bool) {
	if id, ok := reservedIDs[f.FullName]; ok {
		return id, ok
	}
	id, ok := reservedIDs[f.Name]
	return id, ok
}

// assign walks every Value leaf in ser (recursing through Array/Vector
// wrappers, but not into embedded Serializer/Pointer fields) and assigns
// prop-ids, then records each leaf's static tree position, embedded
// serializers included, into the path -> name map.
func (pc *PropController) assign(ser *Serializer) {
	for _, f := range ser.Fields {
		pc.assignField(f)
	}
	var path [7]int32
	pc.recordPaths(ser, path, 0)
}

// recordPaths walks ser's full tree (including embedded serializers, which
// assignField deliberately skips for id assignment) and records each value
// leaf's static position as a path -> canonical-name entry. Array/Vector
// element indices are dynamic, so their leaves are recorded at the wrapper's
// own position.
func (pc *PropController) recordPaths(ser *Serializer, path [7]int32, depth int) {
	if ser == nil || depth >= len(path) {
		return
	}
	for i, f := range ser.Fields {
		path[depth] = int32(i)
		pc.recordFieldPath(f, path, depth)
	}
}

func (pc *PropController) recordFieldPath(f *Field, path [7]int32, depth int) {
	switch f.Category {
	case FieldValue:
		pc.pathName[path] = canonicalName(f.FullName)
	case FieldArray, FieldVector:
		if f.Element != nil {
			pc.recordFieldPath(f.Element, path, depth)
		}
	case FieldSerializer, FieldPointer:
		pc.recordPaths(f.Inner, path, depth+1)
	}
}

// PathName resolves a static schema-tree position to the canonical name of
// the value leaf recorded there, if any.
func (pc *PropController) PathName(path [7]int32) (string, bool) {
	name, ok := pc.pathName[path]
	return name, ok
}

func (pc *PropController) assignField(f *Field) {
	switch f.Category {
	case FieldValue:
		pc.assignLeaf(f)
	case FieldArray, FieldVector:
		if f.Element != nil {
			pc.assignField(f.Element)
		}
	case FieldSerializer, FieldPointer:
		// Inner was already walked when its own serializer was built; no
		// need to re-walk it through every embedding site.
	}
}

func (pc *PropController) assignLeaf(f *Field) {
	canon := canonicalName(f.FullName)

	id, known := pc.nameToID[canon]
	if !known {
		id = pc.counter
		pc.nameToID[canon] = id
		pc.idToName[id] = canon
	}
	pc.counter++

	if override, ok := reservedIDFor(f); ok {
		id = override
		pc.nameToID[canon] = id
		pc.idToName[id] = canon
	}

	f.PropID = id
}

// Lookup resolves id to its canonical name, contextualised by the leaf's
// path in the entity tree per spec.md §4.6's decode-time addendum: weapon
// slots, skin-attribute slots, and item-purchase groups fold an index out
// of the path into the id.
func (pc *PropController) Lookup(id int32, path [7]int32, pathLen int32) (PropInfo, bool) {
	name, ok := pc.idToName[id]
	if !ok {
		return PropInfo{}, false
	}

	adjusted := id
	switch id {
	case idMyWeapons:
		if pathLen > 2 {
			adjusted += path[2] + 1
		}
	case idEconRawValue:
		if pathLen > 1 {
			adjusted += path[1]
		}
	case idPurchaseCount, idPurchaseDefIndex, idSellbackDefIdx, idSellbackCost, idSellbackItem:
		if pathLen > 2 && path[1] != 1 {
			adjusted += path[2]
		}
	}

	return PropInfo{ID: adjusted, Name: name}, true
}

// SortedPropInfos returns every known (id, name) pair in a fixed, content-
// derived order rather than Go's randomized map iteration order, so debug
// dumps and golden-file tests are reproducible across runs. The order key
// is a SipHash-128 of the name under a fixed key, not the id itself, so the
// ordering doesn't just collapse back to numeric id order.
func (pc *PropController) SortedPropInfos() []PropInfo {
	out := make([]PropInfo, 0, len(pc.idToName))
	for id, name := range pc.idToName {
		out = append(out, PropInfo{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		hi, hj := propOrderHash(out[i].Name), propOrderHash(out[j].Name)
		if hi != hj {
			return hi < hj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func propOrderHash(name string) uint64 {
	lo, _ := siphash.Hash128(propOrderK0, propOrderK1, []byte(name))
	return lo
}
