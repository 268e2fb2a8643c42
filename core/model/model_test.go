package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	cases := map[string]Day{
		"Mon": Monday,
		"月":   Monday,
		"火曜日": Tuesday,
		"wed": Wednesday,
		"木":   Thursday,
		"fri": Friday,
	}
	for in, want := range cases {
		got, err := ParseDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	if _, err := ParseDay("Sat"); err == nil {
		t.Fatalf("expected error for Saturday")
	}
}

func TestTimeSlotValidation(t *testing.T) {
	if _, err := NewTimeSlot(Monday, 0); err == nil {
		t.Fatalf("period 0 accepted")
	}
	if _, err := NewTimeSlot(Friday, 7); err == nil {
		t.Fatalf("period 7 accepted")
	}
	slot, err := NewTimeSlot(Wednesday, 4)
	require.NoError(t, err)
	assert.Equal(t, "Wed-4", slot.String())
}

func TestAllSlotsOrdered(t *testing.T) {
	slots := AllSlots()
	require.Len(t, slots, 30)
	for i, s := range slots {
		if s.Index() != i {
			t.Fatalf("slot %s has index %d, want %d", s, s.Index(), i)
		}
	}
}

func TestClassRefKinds(t *testing.T) {
	reg, err := ParseClassRef("2-3")
	require.NoError(t, err)
	assert.True(t, reg.IsRegular())

	joint, err := ParseClassRef("1-5")
	require.NoError(t, err)
	assert.True(t, joint.IsJoint())
	assert.False(t, joint.IsExchange())

	ex, err := ParseClassRef("3-7")
	require.NoError(t, err)
	assert.True(t, ex.IsExchange())
	assert.False(t, ex.IsRegular())

	if _, err := ParseClassRef("4-1"); err == nil {
		t.Fatalf("grade 4 accepted")
	}
	if _, err := ParseClassRef("21"); err == nil {
		t.Fatalf("missing separator accepted")
	}
}

func TestCatalogCategories(t *testing.T) {
	cat := NewSubjectCatalog(CatalogSets{
		Fixed:          []Subject{"欠", "YT", "道"},
		SelfReliance:   []Subject{"自立", "作業"},
		ParentEligible: []Subject{"数", "英"},
		Core:           []Subject{"国", "数", "英", "理", "社"},
		Skill:          []Subject{"音", "美"},
		PE:             []Subject{"保"},
		TestMarkers:    []Subject{"テスト"},
	})

	assert.True(t, cat.IsFixed("欠"))
	assert.True(t, cat.IsProtected("テスト"))
	assert.False(t, cat.IsProtected("数"))
	assert.True(t, cat.IsSelfReliance("自立"))
	assert.True(t, cat.IsParentEligible("英"))
	assert.False(t, cat.IsParentEligible("理"))

	assert.True(t, cat.Fillable("数"))
	assert.False(t, cat.Fillable("自立"), "self-reliance is never a filler candidate")
	assert.False(t, cat.Fillable("欠"))
	assert.False(t, cat.Fillable(""))
}

func TestViolationSorting(t *testing.T) {
	slotA := TimeSlot{Day: Monday, Period: 1}
	slotB := TimeSlot{Day: Tuesday, Period: 2}
	vs := []Violation{
		{Constraint: "daily_duplicate", Priority: PriorityMedium, Cells: []Cell{{Slot: slotA, Class: ClassRef{1, 1}}}},
		{Constraint: "teacher_conflict", Priority: PriorityCritical, Cells: []Cell{{Slot: slotB, Class: ClassRef{2, 1}}}},
		{Constraint: "standard_hours", Priority: PriorityMedium, Cells: []Cell{{Slot: slotA, Class: ClassRef{1, 1}}}},
	}
	SortViolations(vs)
	assert.Equal(t, "teacher_conflict", vs[0].Constraint)
	assert.Equal(t, "daily_duplicate", vs[1].Constraint, "equal priority ties break on constraint name")

	counts := CountByPriority(vs)
	assert.Equal(t, 1, counts[PriorityCritical])
	assert.Equal(t, 2, counts[PriorityMedium])
}
