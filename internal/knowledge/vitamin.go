package knowledge

import (
	"strings"
	"time"
)

// Vitamin describes a vitamin or mineral. List-like facets (benefits,
// sources, deficiency and overdose signs) hold one item per line.
type Vitamin struct {
	Name             string     `json:"name" yaml:"name" bson:"name"`
	Aliases          []string   `json:"aliases,omitempty" yaml:"aliases,omitempty" bson:"aliases,omitempty"`
	Category         string     `json:"category,omitempty" yaml:"category,omitempty" bson:"category,omitempty"`
	ShortDescription string     `json:"short_description,omitempty" yaml:"short_description,omitempty" bson:"short_description,omitempty"`
	Description      string     `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	Benefits         string     `json:"benefits,omitempty" yaml:"benefits,omitempty" bson:"benefits,omitempty"`
	Sources          string     `json:"sources,omitempty" yaml:"sources,omitempty" bson:"sources,omitempty"`
	Deficiency       string     `json:"deficiency,omitempty" yaml:"deficiency,omitempty" bson:"deficiency,omitempty"`
	Overdose         string     `json:"overdose,omitempty" yaml:"overdose,omitempty" bson:"overdose,omitempty"`
	DailyIntake      string     `json:"daily_intake,omitempty" yaml:"daily_intake,omitempty" bson:"daily_intake,omitempty"`
	Confidence       Confidence `json:"confidence,omitempty" yaml:"confidence,omitempty" bson:"confidence,omitempty"`
	Source           Source     `json:"source,omitempty" yaml:"source,omitempty" bson:"source,omitempty"`
	LastUpdated      time.Time  `json:"last_updated" yaml:"-" bson:"last_updated"`
}

func (v *Vitamin) Kind() Kind { return KindVitamin }
func (v *Vitamin) DisplayName() string { return v.Name }
func (v *Vitamin) AliasNames() []string { return v.Aliases }
func (v *Vitamin) Touch(t time.Time) { v.LastUpdated = t.UTC() }

func (v *Vitamin) SearchText() string {
	return searchText(v.Name, strings.Join(v.Aliases, "\n"), v.ShortDescription, v.Description)
}

func (v *Vitamin) MergeFrom(o *Vitamin) bool {
	if o == nil {
		return false
	}
	changed := unionList(&v.Aliases, o.Aliases)
	changed = fillString(&v.Category, o.Category) || changed
	changed = fillString(&v.ShortDescription, o.ShortDescription) || changed
	changed = fillString(&v.Description, o.Description) || changed
	changed = fillString(&v.Benefits, o.Benefits) || changed
	changed = fillString(&v.Sources, o.Sources) || changed
	changed = fillString(&v.Deficiency, o.Deficiency) || changed
	changed = fillString(&v.Overdose, o.Overdose) || changed
	changed = fillString(&v.DailyIntake, o.DailyIntake) || changed
	changed = raiseConfidence(&v.Confidence, o.Confidence) || changed
	if v.Source == "" && o.Source != "" {
		v.Source = o.Source
		changed = true
	}
	return changed
}

func (v *Vitamin) Clone() *Vitamin {
	c := *v
	c.Aliases = cloneStrings(v.Aliases)
	return &c
}
