package domain

// AgeRange - диапазон возраста (включительно), к которому применим сценарий.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains сообщает, попадает ли возраст в диапазон.
func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// Scenario - неизменяемая ситуация из каталога.
type Scenario struct {
	Ages    AgeRange `json:"age_range"`
	Text    string   `json:"scenario"`
	Context string   `json:"context"`
}
