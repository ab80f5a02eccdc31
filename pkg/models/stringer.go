package models

// toon encodes named string types through fmt.Stringer.

func (k UnitKind) String() string { return string(k) }
