package domain

// Trait - одна из пяти характеристик ребенка.
type Trait string

const (
	TraitHappiness      Trait = "happiness"
	TraitGrowth         Trait = "growth"
	TraitSocial         Trait = "social"
	TraitCreativity     Trait = "creativity"
	TraitResponsibility Trait = "responsibility"
)

// Границы значений характеристик и изменений за раунд.
const (
	MinTrait = 0
	MaxTrait = 100
	MinDelta = -10
	MaxDelta = 10
)

// AllTraits возвращает характеристики в порядке отображения.
func AllTraits() []Trait {
	return []Trait{TraitHappiness, TraitGrowth, TraitSocial, TraitCreativity, TraitResponsibility}
}

// TraitInfo - подпись характеристики для UI.
type TraitInfo struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

var traitInfo = map[Trait]TraitInfo{
	TraitHappiness:      {Label: "Happiness", Emoji: "❤️"},
	TraitGrowth:         {Label: "Growth", Emoji: "📚"},
	TraitSocial:         {Label: "Social", Emoji: "👥"},
	TraitCreativity:     {Label: "Creativity", Emoji: "💡"},
	TraitResponsibility: {Label: "Responsibility", Emoji: "⚖️"},
}

// Info возвращает подпись характеристики.
func (t Trait) Info() TraitInfo {
	if info, ok := traitInfo[t]; ok {
		return info
	}
	return TraitInfo{Label: string(t)}
}

// Valid сообщает, является ли t одной из пяти характеристик.
func (t Trait) Valid() bool {
	_, ok := traitInfo[t]
	return ok
}

// Traits - текущие значения характеристик, каждое в [MinTrait, MaxTrait].
type Traits struct {
	Happiness      int `json:"happiness"`
	Growth         int `json:"growth"`
	Social         int `json:"social"`
	Creativity     int `json:"creativity"`
	Responsibility int `json:"responsibility"`
}

// DefaultTraits - стартовые значения новой сессии.
func DefaultTraits() Traits {
	return Traits{
		Happiness:      70,
		Growth:         50,
		Social:         60,
		Creativity:     55,
		Responsibility: 45,
	}
}

// Get возвращает значение характеристики; для неизвестной - (0, false).
func (t Traits) Get(trait Trait) (int, bool) {
	switch trait {
	case TraitHappiness:
		return t.Happiness, true
	case TraitGrowth:
		return t.Growth, true
	case TraitSocial:
		return t.Social, true
	case TraitCreativity:
		return t.Creativity, true
	case TraitResponsibility:
		return t.Responsibility, true
	}
	return 0, false
}

// With возвращает копию с новым значением характеристики.
// Неизвестная характеристика игнорируется.
func (t Traits) With(trait Trait, value int) Traits {
	switch trait {
	case TraitHappiness:
		t.Happiness = value
	case TraitGrowth:
		t.Growth = value
	case TraitSocial:
		t.Social = value
	case TraitCreativity:
		t.Creativity = value
	case TraitResponsibility:
		t.Responsibility = value
	}
	return t
}

// Sum - сумма всех пяти характеристик.
func (t Traits) Sum() int {
	return t.Happiness + t.Growth + t.Social + t.Creativity + t.Responsibility
}

// Effects - изменения характеристик за раунд, ключ - имя характеристики.
type Effects map[Trait]int

// ZeroEffects - нейтральный результат: все пять изменений равны нулю.
func ZeroEffects() Effects {
	e := make(Effects, len(traitInfo))
	for _, trait := range AllTraits() {
		e[trait] = 0
	}
	return e
}
