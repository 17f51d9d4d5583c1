/*

StructuredView re-groups a FirstPassOutput's flat EntityStates by entity,
the shape most callers actually want instead of a raw per-tick update
stream.

*/

package parser

import "github.com/csdemo-go/csdemo/entities"

// StructuredView indexes a FirstPassOutput's entity states by entity id,
// keeping the most recently seen value of every prop each entity has had.
type StructuredView struct {
	ByEntity map[int32]*EntitySnapshot
}

// EntitySnapshot is the latest known state of one entity, with props
// indexed by name for direct lookup.
type EntitySnapshot struct {
	EntityID  int32
	ClassID   int32
	ClassName string
	Props     map[string]entities.EntityProp
}

// BuildStructuredView folds out.EntityStates into a StructuredView, in tick
// order: later updates overwrite earlier ones, and a Deleted state removes
// the entity entirely.
func BuildStructuredView(out *FirstPassOutput) *StructuredView {
	sv := &StructuredView{ByEntity: make(map[int32]*EntitySnapshot)}
	for _, te := range out.EntityStates {
		for _, st := range te.States {
			if st.Deleted {
				delete(sv.ByEntity, st.EntityID)
				continue
			}
			snap, ok := sv.ByEntity[st.EntityID]
			if !ok {
				snap = &EntitySnapshot{
					EntityID:  st.EntityID,
					ClassID:   st.ClassID,
					ClassName: st.ClassName,
					Props:     make(map[string]entities.EntityProp),
				}
				sv.ByEntity[st.EntityID] = snap
			}
			for _, p := range st.Props {
				snap.Props[p.Name] = p
			}
		}
	}
	return sv
}
