package grid

// KeyPrefix namespaces persisted table configurations inside a shared store.
const KeyPrefix = "gridkit.table."

// StorageKey returns the namespaced store key for a table's storage key.
func StorageKey(key string) string {
	return KeyPrefix + key
}

// Config is the persisted subset of the view-state: which columns are shown
// and in what order.
type Config struct {
	Visible []string `json:"visible" yaml:"visible"`
	Order   []string `json:"order" yaml:"order"`
}

// DefaultConfig shows every column not hidden by default, in registry order.
func DefaultConfig(reg *Registry) Config {
	return Config{
		Visible: reg.DefaultVisible(),
		Order:   reg.Fields(),
	}
}

// Valid reports whether both lists are non-empty and only name registered fields.
func (c Config) Valid(reg *Registry) bool {
	if len(c.Visible) == 0 || len(c.Order) == 0 {
		return false
	}
	for _, f := range c.Visible {
		if !reg.Has(f) {
			return false
		}
	}
	for _, f := range c.Order {
		if !reg.Has(f) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	return Config{
		Visible: append([]string(nil), c.Visible...),
		Order:   append([]string(nil), c.Order...),
	}
}

// Equal reports element-wise equality of both lists.
func (c Config) Equal(o Config) bool {
	return equalStrings(c.Visible, o.Visible) && equalStrings(c.Order, o.Order)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
