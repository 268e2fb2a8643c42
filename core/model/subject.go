package model

// Subject is the name of a taught subject or pseudo-subject, as it appears
// in the school's own data ("数", "英", "自立", "欠", ...).
type Subject string

// IsZero reports whether the subject is unset.
func (s Subject) IsZero() bool { return s == "" }

// String returns the raw subject name.
func (s Subject) String() string { return string(s) }

// SubjectSet is a membership set of subject names.
type SubjectSet map[Subject]struct{}

// NewSubjectSet builds a set from the given names.
func NewSubjectSet(names ...Subject) SubjectSet {
	set := make(SubjectSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (ss SubjectSet) Contains(s Subject) bool {
	_, ok := ss[s]
	return ok
}

// Names returns the members in unspecified order.
func (ss SubjectSet) Names() []Subject {
	out := make([]Subject, 0, len(ss))
	for s := range ss {
		out = append(out, s)
	}
	return out
}

// SubjectCatalog classifies subjects into the scheduling categories the
// engine reasons about. The sets come from configuration; schools differ in
// their exact vocabulary.
type SubjectCatalog struct {
	fixed          SubjectSet // pinned pseudo-subjects, never auto-placed or moved
	selfReliance   SubjectSet // exchange/joint-only activities (自立 and kin)
	parentEligible SubjectSet // parent-class subjects valid under self-reliance
	core           SubjectSet // core academics
	skill          SubjectSet // skill and elective subjects
	pe             SubjectSet // physical education spellings
	testMarkers    SubjectSet // subjects denoting an exam sitting

	parentOrder []Subject // parentEligible in configured preference order
}

// CatalogSets carries the category membership lists used to build a catalog.
type CatalogSets struct {
	Fixed          []Subject
	SelfReliance   []Subject
	ParentEligible []Subject
	Core           []Subject
	Skill          []Subject
	PE             []Subject
	TestMarkers    []Subject
}

// NewSubjectCatalog builds a catalog from category membership lists.
func NewSubjectCatalog(sets CatalogSets) *SubjectCatalog {
	return &SubjectCatalog{
		fixed:          NewSubjectSet(sets.Fixed...),
		selfReliance:   NewSubjectSet(sets.SelfReliance...),
		parentEligible: NewSubjectSet(sets.ParentEligible...),
		core:           NewSubjectSet(sets.Core...),
		skill:          NewSubjectSet(sets.Skill...),
		pe:             NewSubjectSet(sets.PE...),
		testMarkers:    NewSubjectSet(sets.TestMarkers...),
		parentOrder:    append([]Subject(nil), sets.ParentEligible...),
	}
}

// ParentEligible lists the pairing-eligible subjects in configured
// preference order.
func (c *SubjectCatalog) ParentEligible() []Subject {
	return append([]Subject(nil), c.parentOrder...)
}

// IsFixed reports whether s is a fixed-protected pseudo-subject.
func (c *SubjectCatalog) IsFixed(s Subject) bool { return c.fixed.Contains(s) }

// IsSelfReliance reports whether s is a self-reliance family activity.
func (c *SubjectCatalog) IsSelfReliance(s Subject) bool { return c.selfReliance.Contains(s) }

// IsParentEligible reports whether a parent class showing s satisfies the
// self-reliance pairing rule.
func (c *SubjectCatalog) IsParentEligible(s Subject) bool { return c.parentEligible.Contains(s) }

// IsCore reports whether s is a core academic subject.
func (c *SubjectCatalog) IsCore(s Subject) bool { return c.core.Contains(s) }

// IsSkill reports whether s is a skill or elective subject.
func (c *SubjectCatalog) IsSkill(s Subject) bool { return c.skill.Contains(s) }

// IsPE reports whether s is a physical-education spelling.
func (c *SubjectCatalog) IsPE(s Subject) bool { return c.pe.Contains(s) }

// IsTestMarker reports whether s marks an exam sitting.
func (c *SubjectCatalog) IsTestMarker(s Subject) bool { return c.testMarkers.Contains(s) }

// IsProtected reports whether a cell holding s must never be reassigned by
// any automated step: fixed pseudo-subjects and exam markers.
func (c *SubjectCatalog) IsProtected(s Subject) bool {
	return c.IsFixed(s) || c.IsTestMarker(s)
}

// Fillable reports whether s may be introduced by automatic placement or
// filling: anything except fixed, exam and self-reliance pseudo-subjects.
func (c *SubjectCatalog) Fillable(s Subject) bool {
	return !s.IsZero() && !c.IsProtected(s) && !c.IsSelfReliance(s)
}
