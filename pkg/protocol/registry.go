package protocol

import "fmt"

// Type describes one registered message type: a human-readable name, a
// compact wire id and either a fixed body layout (BodyLen) or, for
// general types, an external topic binding with an optional payload
// content type.
type Type struct {
	Name    string
	ID      uint8
	Kind    Kind
	BodyLen int // fixed body length in bytes, BodyLenVariable otherwise

	// General binding (Kind == KindGeneral only).
	Topic       string
	ContentType string
}

// Registry is the bidirectional name<->id mapping. It is populated once
// at startup (fixed types first, then general types from configuration)
// and read-only afterwards, so lookups need no locking.
type Registry struct {
	byName map[string]Type
	byID   map[uint8]Type
}

// NewRegistry returns a registry preloaded with the fixed types.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Type), byID: make(map[uint8]Type)}
	fixed := []Type{
		{Name: TypePositionRequest, ID: IDPositionRequest, BodyLen: PoseBodyLen},
		{Name: TypeBodyRequest, ID: IDBodyRequest, BodyLen: PoseBodyLen},
		{Name: TypeNav, ID: IDNav, BodyLen: NavBodyLen},
		{Name: TypeStringImage, ID: IDStringImage, BodyLen: BodyLenVariable},
		{Name: TypeAck, ID: IDAck, BodyLen: AckBodyLen},
		{Name: TypeRosMessage, ID: IDRosMessage, Kind: KindGeneral, BodyLen: BodyLenVariable},
		{Name: TypeRosService, ID: IDRosService, Kind: KindGeneral, BodyLen: BodyLenVariable},
	}
	for _, t := range fixed {
		if err := r.Register(t); err != nil {
			// ids and names above are compile-time constants
			panic(err)
		}
	}
	return r
}

// Register adds a type. It fails when the id is out of range or when
// either the id or the name is already taken.
func (r *Registry) Register(t Type) error {
	if t.ID == 0 {
		return fmt.Errorf("register %q: id must be in 1-255", t.Name)
	}
	if t.Name == "" {
		return fmt.Errorf("register id %d: empty name", t.ID)
	}
	if prev, ok := r.byID[t.ID]; ok {
		return fmt.Errorf("%w: id %d already bound to %q", ErrDuplicateIdentifier, t.ID, prev.Name)
	}
	if prev, ok := r.byName[t.Name]; ok {
		return fmt.Errorf("%w: name %q already bound to id %d", ErrDuplicateIdentifier, t.Name, prev.ID)
	}
	r.byID[t.ID] = t
	r.byName[t.Name] = t
	return nil
}

// ByID resolves a type by its wire id.
func (r *Registry) ByID(id uint8) (Type, error) {
	t, ok := r.byID[id]
	if !ok {
		return Type{}, fmt.Errorf("%w: id %d", ErrUnknownType, id)
	}
	return t, nil
}

// ByName resolves a type by name.
func (r *Registry) ByName(name string) (Type, error) {
	t, ok := r.byName[name]
	if !ok {
		return Type{}, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return t, nil
}

// Names returns the registered names (order unspecified).
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	return out
}
