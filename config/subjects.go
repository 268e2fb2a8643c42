package config

import (
	"github.com/ktakeda47/jikanwari/core/model"
)

// SubjectsConfig names the subject categories the constraint rules key on.
// The defaults carry both the short and the long spellings seen in school
// data files, e.g. 道 and 道徳.
type SubjectsConfig struct {
	Fixed          []string `json:"fixed"`
	SelfReliance   []string `json:"self_reliance"`
	ParentEligible []string `json:"parent_eligible"`
	Core           []string `json:"core"`
	Skill          []string `json:"skill"`
	PE             []string `json:"pe"`
	TestMarkers    []string `json:"test_markers"`
}

// SetDefaults fills empty categories with the deployed Japanese sets.
func (c *SubjectsConfig) SetDefaults() {
	if len(c.Fixed) == 0 {
		c.Fixed = []string{"欠", "YT", "道", "道徳", "学", "学活", "学総", "総", "総合", "行"}
	}
	if len(c.SelfReliance) == 0 {
		c.SelfReliance = []string{"自立", "日生", "生単", "作業"}
	}
	if len(c.ParentEligible) == 0 {
		c.ParentEligible = []string{"数", "英"}
	}
	if len(c.Core) == 0 {
		c.Core = []string{"国", "数", "英", "理", "社"}
	}
	if len(c.Skill) == 0 {
		c.Skill = []string{"音", "美", "技", "家"}
	}
	if len(c.PE) == 0 {
		c.PE = []string{"保", "保健体育"}
	}
	if len(c.TestMarkers) == 0 {
		c.TestMarkers = []string{"test", "テスト", "定期テスト", "期末テスト", "中間テスト"}
	}
}

// Catalog builds the subject catalog the engine and rules consume.
func (c SubjectsConfig) Catalog() *model.SubjectCatalog {
	return model.NewSubjectCatalog(model.CatalogSets{
		Fixed:          subjects(c.Fixed),
		SelfReliance:   subjects(c.SelfReliance),
		ParentEligible: subjects(c.ParentEligible),
		Core:           subjects(c.Core),
		Skill:          subjects(c.Skill),
		PE:             subjects(c.PE),
		TestMarkers:    subjects(c.TestMarkers),
	})
}

func subjects(names []string) []model.Subject {
	out := make([]model.Subject, 0, len(names))
	for _, n := range names {
		out = append(out, model.Subject(n))
	}
	return out
}
