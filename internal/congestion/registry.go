package congestion

import "fmt"

// registryMaxAlgorithms bounds the registry's fixed-capacity table,
// mirroring TEST_ALG_MAX_NB in register_cc_algo.c.
const registryMaxAlgorithms = 16

// Factory builds a fresh Algorithm instance, one per connection/path.
type Factory func() Algorithm

// registryEntry pairs an algorithm's string id with its factory, mirroring
// a picoquic_congestion_algorithm_t's congestion_algorithm_id and c4_init.
type registryEntry struct {
	id      string
	factory Factory
}

// Registry is a fixed-capacity, dedup-by-id table of congestion-control
// algorithm factories, mirroring picoquic_register_cc_algorithm: a newly
// registered id is prepended, and any previous entry sharing that id is
// dropped. Registration fails once the table is full.
type Registry struct {
	entries []registryEntry
}

// NewRegistry returns a registry holding only the C4 algorithm itself,
// pre-registered, mirroring the way c4_algorithm_struct is always present
// in picoquic's built-in table alongside whatever c4_ID names it ("c4").
func NewRegistry() *Registry {
	r := &Registry{}
	r.mustRegister(C4AlgorithmID, func() Algorithm {
		return newDefaultC4Sender()
	})
	return r
}

// Register adds alg under id, replacing any existing entry with the same
// id, and prepending it so the most recently registered algorithm is found
// first. It returns an error once the registry is full, mirroring
// picoquic_register_cc_algorithm's -1 return.
func (r *Registry) Register(id string, factory Factory) error {
	if len(r.entries) >= registryMaxAlgorithms {
		return fmt.Errorf("congestion: registry is full (max %d algorithms)", registryMaxAlgorithms)
	}
	next := make([]registryEntry, 0, registryMaxAlgorithms)
	next = append(next, registryEntry{id: id, factory: factory})
	for _, e := range r.entries {
		if e.id != id {
			next = append(next, e)
		}
	}
	r.entries = next
	return nil
}

func (r *Registry) mustRegister(id string, factory Factory) {
	if err := r.Register(id, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under id, if any.
func (r *Registry) Lookup(id string) (Factory, bool) {
	for _, e := range r.entries {
		if e.id == id {
			return e.factory, true
		}
	}
	return nil, false
}

// C4AlgorithmID is the string id C4 registers itself under, mirroring the
// c4_ID macro ("c4").
const C4AlgorithmID = "c4"
