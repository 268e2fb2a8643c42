package model

// Teacher is a teacher's name as it appears in the school's staffing data.
// The empty value means "no teacher resolved"; pseudo-subjects may carry
// placeholder names such as "欠課" that the conflict rules exempt.
type Teacher string

// IsZero reports whether no teacher is set.
func (t Teacher) IsZero() bool { return t == "" }

// String returns the raw teacher name.
func (t Teacher) String() string { return string(t) }
