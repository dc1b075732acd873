package distribution

import "gopkg.in/yaml.v3"

// doc is the self-describing document every strategy (de)serializes
// through: a type-tag plus strategy-specific fields, so that an object's
// distribution can be persisted and later reconstructed without the caller
// supplying the strategy out of band.
type doc struct {
	Type       int32    `yaml:"type"`
	BlockSize  uint64   `yaml:"block_size,omitempty"`
	StartIndex uint32   `yaml:"start_index,omitempty"`
	Weights    []uint32 `yaml:"weights,omitempty"`
}

// Serialize encodes the distribution's type and current parameters as a
// YAML document.
func (d *Distribution) Serialize() ([]byte, error) {
	return yaml.Marshal(d.impl.toDoc())
}

// Deserialize reconstructs a Distribution for serverCount servers from a
// document produced by Serialize. The strategy type is read from the
// document itself, so the caller need not already know it.
func Deserialize(data []byte, serverCount uint32) (*Distribution, error) {
	var parsed doc
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}

	typ := Type(parsed.Type)
	d := &Distribution{
		serverCount: serverCount,
		typ:         typ,
		impl:        newStrategy(typ, serverCount),
	}
	d.impl.fromDoc(parsed)

	return d, nil
}
