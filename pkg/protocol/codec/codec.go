// Package codec provides payload codecs for general message bindings.
// The envelope layer never decodes general bodies; these codecs are used
// by producers to marshal typed values into the opaque passthrough body.
package codec

// Codec marshals typed values for cross-node exchange. Implementations
// should be deterministic.
type Codec interface {
	ContentType() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Registry maps content types to codecs.
type Registry struct{ byType map[string]Codec }

// NewRegistry constructs a registry preloaded with the codecs that need
// no initialization: JSON and Protobuf. CBOR is added explicitly via
// Register(CBOR()).
func NewRegistry() *Registry {
	r := &Registry{byType: make(map[string]Codec)}
	r.Register(JSON())
	r.Register(Proto())
	return r
}

// Register adds a codec.
func (r *Registry) Register(c Codec) { r.byType[c.ContentType()] = c }

// Get returns a codec by content type, or nil.
func (r *Registry) Get(contentType string) Codec { return r.byType[contentType] }
