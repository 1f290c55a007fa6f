package knowledge

import (
	"strings"
	"time"
)

// CategoryWaste marks plant entries describing a kitchen-waste fertilizer
// rather than a plant species.
const CategoryWaste = "отходы"

// Care holds per-facet care instructions.
type Care struct {
	Watering    string `json:"watering,omitempty" yaml:"watering,omitempty" bson:"watering,omitempty"`
	Light       string `json:"light,omitempty" yaml:"light,omitempty" bson:"light,omitempty"`
	Temperature string `json:"temperature,omitempty" yaml:"temperature,omitempty" bson:"temperature,omitempty"`
	Soil        string `json:"soil,omitempty" yaml:"soil,omitempty" bson:"soil,omitempty"`
	Humidity    string `json:"humidity,omitempty" yaml:"humidity,omitempty" bson:"humidity,omitempty"`
	Fertilizing string `json:"fertilizing,omitempty" yaml:"fertilizing,omitempty" bson:"fertilizing,omitempty"`
	General     string `json:"general,omitempty" yaml:"general,omitempty" bson:"general,omitempty"`
}

// Empty reports whether no care facet is filled.
func (c Care) Empty() bool {
	return IsPlaceholder(c.Watering) && IsPlaceholder(c.Light) && IsPlaceholder(c.Temperature) &&
		IsPlaceholder(c.Soil) && IsPlaceholder(c.Humidity) && IsPlaceholder(c.Fertilizing) && IsPlaceholder(c.General)
}

func (c *Care) mergeFrom(o Care) bool {
	changed := fillString(&c.Watering, o.Watering)
	changed = fillString(&c.Light, o.Light) || changed
	changed = fillString(&c.Temperature, o.Temperature) || changed
	changed = fillString(&c.Soil, o.Soil) || changed
	changed = fillString(&c.Humidity, o.Humidity) || changed
	changed = fillString(&c.Fertilizing, o.Fertilizing) || changed
	changed = fillString(&c.General, o.General) || changed
	return changed
}

// Problem is a known issue with an optional fix.
type Problem struct {
	Label      string `json:"label" yaml:"label" bson:"label"`
	Resolution string `json:"resolution,omitempty" yaml:"resolution,omitempty" bson:"resolution,omitempty"`
}

// Plant is a plant species, or a waste-based fertilizer when Category is CategoryWaste.
type Plant struct {
	Name           string     `json:"name" yaml:"name" bson:"name"`
	Aliases        []string   `json:"aliases,omitempty" yaml:"aliases,omitempty" bson:"aliases,omitempty"`
	ScientificName string     `json:"scientific_name,omitempty" yaml:"scientific_name,omitempty" bson:"scientific_name,omitempty"`
	Category       string     `json:"category,omitempty" yaml:"category,omitempty" bson:"category,omitempty"`
	Description    string     `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	Origin         string     `json:"origin,omitempty" yaml:"origin,omitempty" bson:"origin,omitempty"`
	Care           Care       `json:"care" yaml:"care,omitempty" bson:"care"`
	Benefits       string     `json:"benefits,omitempty" yaml:"benefits,omitempty" bson:"benefits,omitempty"`
	Problems       []Problem  `json:"common_problems,omitempty" yaml:"common_problems,omitempty" bson:"common_problems,omitempty"`
	Tips           []string   `json:"tips,omitempty" yaml:"tips,omitempty" bson:"tips,omitempty"`
	Difficulty     string     `json:"difficulty,omitempty" yaml:"difficulty,omitempty" bson:"difficulty,omitempty"`
	Application    string     `json:"application,omitempty" yaml:"application,omitempty" bson:"application,omitempty"`
	SuitablePlants string     `json:"suitable_plants,omitempty" yaml:"suitable_plants,omitempty" bson:"suitable_plants,omitempty"`
	Precautions    string     `json:"precautions,omitempty" yaml:"precautions,omitempty" bson:"precautions,omitempty"`
	Confidence     Confidence `json:"confidence,omitempty" yaml:"confidence,omitempty" bson:"confidence,omitempty"`
	Source         Source     `json:"source,omitempty" yaml:"source,omitempty" bson:"source,omitempty"`
	ImageCount     int        `json:"image_count,omitempty" yaml:"-" bson:"image_count,omitempty"`
	LastUpdated    time.Time  `json:"last_updated" yaml:"-" bson:"last_updated"`
}

func (p *Plant) Kind() Kind { return KindPlant }
func (p *Plant) DisplayName() string { return p.Name }
func (p *Plant) AliasNames() []string { return p.Aliases }
func (p *Plant) Touch(t time.Time) { p.LastUpdated = t.UTC() }
func (p *Plant) IsWaste() bool { return p.Category == CategoryWaste }
func (p *Plant) HasScientificName() bool { return !IsPlaceholder(p.ScientificName) }

func (p *Plant) SearchText() string {
	return searchText(p.Name, strings.Join(p.Aliases, "\n"), p.ScientificName, p.Description)
}

// MergeFrom fills p's empty or placeholder fields from o. Populated fields are
// never overwritten.
func (p *Plant) MergeFrom(o *Plant) bool {
	if o == nil {
		return false
	}
	changed := unionList(&p.Aliases, o.Aliases)
	changed = fillString(&p.ScientificName, o.ScientificName) || changed
	changed = fillString(&p.Category, o.Category) || changed
	changed = fillString(&p.Description, o.Description) || changed
	changed = fillString(&p.Origin, o.Origin) || changed
	changed = p.Care.mergeFrom(o.Care) || changed
	changed = fillString(&p.Benefits, o.Benefits) || changed
	changed = p.mergeProblems(o.Problems) || changed
	changed = fillList(&p.Tips, o.Tips) || changed
	changed = fillString(&p.Difficulty, o.Difficulty) || changed
	changed = fillString(&p.Application, o.Application) || changed
	changed = fillString(&p.SuitablePlants, o.SuitablePlants) || changed
	changed = fillString(&p.Precautions, o.Precautions) || changed
	changed = raiseConfidence(&p.Confidence, o.Confidence) || changed
	if p.Source == "" && o.Source != "" {
		p.Source = o.Source
		changed = true
	}
	if o.ImageCount > p.ImageCount {
		p.ImageCount = o.ImageCount
		changed = true
	}
	return changed
}

func (p *Plant) mergeProblems(src []Problem) bool {
	if len(p.Problems) == 0 {
		for _, pr := range src {
			if !IsPlaceholder(pr.Label) {
				p.Problems = append(p.Problems, Problem{Label: strings.TrimSpace(pr.Label), Resolution: strings.TrimSpace(pr.Resolution)})
			}
		}
		return len(p.Problems) > 0
	}
	byLabel := make(map[string]string, len(src))
	for _, pr := range src {
		byLabel[NameKey(pr.Label)] = pr.Resolution
	}
	changed := false
	for i := range p.Problems {
		if res, ok := byLabel[NameKey(p.Problems[i].Label)]; ok {
			changed = fillString(&p.Problems[i].Resolution, res) || changed
		}
	}
	return changed
}

func (p *Plant) Clone() *Plant {
	c := *p
	c.Aliases = cloneStrings(p.Aliases)
	c.Tips = cloneStrings(p.Tips)
	if p.Problems != nil {
		c.Problems = append([]Problem(nil), p.Problems...)
	}
	return &c
}
