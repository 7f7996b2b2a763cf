package prism

// Cloner allows types to provide deep copy logic.
//
// Projection copies structs shallowly and rebuilds slices, maps, and pointers
// that lead to models. Types holding other reference data (maps of scalars,
// byte buffers) that the caller may mutate after Send should implement Cloner
// so the processor starts from an isolated copy:
//
//	func (o Order) Clone() Order {
//	    tags := make(map[string]string, len(o.Tags))
//	    for k, v := range o.Tags {
//	        tags[k] = v
//	    }
//	    return Order{ID: o.ID, Tags: tags}
//	}
type Cloner[T any] interface {
	Clone() T
}
