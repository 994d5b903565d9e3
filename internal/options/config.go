package options

import "sort"

// Config maps option keys to values. A partial Config holds only what the
// caller supplied; a normalized Config holds every recognized key.
type Config map[Key]Value

// Clone returns a shallow copy; Values are immutable so this is a full copy.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Has reports whether key has a value.
func (c Config) Has(key Key) bool {
	_, ok := c[key]
	return ok
}

// String returns the string payload of key.
func (c Config) String(key Key) string { return c[key].Str() }

// Bool returns the bool payload of key.
func (c Config) Bool(key Key) bool { return c[key].Bool() }

// Int returns the int payload of key.
func (c Config) Int(key Key) int { return c[key].Int() }

// Keys returns the present keys in normalization order, followed by any
// unrecognized keys sorted by name.
func (c Config) Keys() []Key {
	keys := make([]Key, 0, len(c))
	for _, s := range specs {
		if c.Has(s.Key) {
			keys = append(keys, s.Key)
		}
	}
	var extra []Key
	for k := range c {
		if _, ok := specByKey[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(keys, extra...)
}

// Missing returns the recognized keys that have no value.
func (c Config) Missing() []Key {
	var missing []Key
	for _, s := range specs {
		if !c.Has(s.Key) {
			missing = append(missing, s.Key)
		}
	}
	return missing
}
