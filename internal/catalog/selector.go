package catalog

import (
	"math/rand"
	"sync"
	"time"

	"parenting-server/internal/domain"
)

// Selector выбирает сценарий для возраста, предпочитая еще не показанные.
// Безопасен для конкурентного использования.
type Selector struct {
	mu        sync.Mutex
	rng       *rand.Rand
	scenarios []domain.Scenario
}

// NewSelector создает Selector над каталогом по умолчанию.
// rng может быть nil - тогда используется источник, засеянный текущим временем.
func NewSelector(rng *rand.Rand) *Selector {
	return NewSelectorFor(scenarios, rng)
}

// NewSelectorFor создает Selector над произвольным набором сценариев.
func NewSelectorFor(list []domain.Scenario, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{
		rng:       rng,
		scenarios: append([]domain.Scenario(nil), list...),
	}
}

// Pick возвращает сценарий и его индекс.
//
// Сначала выбирает среди подходящих по возрасту и не входящих в used,
// затем среди всех подходящих, и если подходящих нет - из всего каталога.
// Пустой каталог - единственный случай, когда возвращается индекс -1.
func (s *Selector) Pick(age int, used []int) (domain.Scenario, int) {
	if len(s.scenarios) == 0 {
		return domain.Scenario{}, -1
	}

	usedSet := make(map[int]struct{}, len(used))
	for _, idx := range used {
		usedSet[idx] = struct{}{}
	}

	var eligible, unused []int
	for i, sc := range s.scenarios {
		if !sc.Ages.Contains(age) {
			continue
		}
		eligible = append(eligible, i)
		if _, seen := usedSet[i]; !seen {
			unused = append(unused, i)
		}
	}

	var idx int
	switch {
	case len(unused) > 0:
		idx = s.choice(unused)
	case len(eligible) > 0:
		idx = s.choice(eligible)
	default:
		idx = s.intn(len(s.scenarios))
	}
	return s.scenarios[idx], idx
}

func (s *Selector) choice(indices []int) int {
	return indices[s.intn(len(indices))]
}

func (s *Selector) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
