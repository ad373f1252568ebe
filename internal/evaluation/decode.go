package evaluation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"parenting-server/internal/domain"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedReply - ответ модели не удалось разобрать ни строго, ни мягко.
var ErrMalformedReply = errors.New("malformed model reply")

// UnspecifiedResponseType подставляется, если модель не указала тип ответа.
const UnspecifiedResponseType = "unspecified"

var validate = validator.New()

type wireEffects struct {
	Happiness      *int `json:"happiness" validate:"required,min=-10,max=10"`
	Growth         *int `json:"growth" validate:"required,min=-10,max=10"`
	Social         *int `json:"social" validate:"required,min=-10,max=10"`
	Creativity     *int `json:"creativity" validate:"required,min=-10,max=10"`
	Responsibility *int `json:"responsibility" validate:"required,min=-10,max=10"`
}

type wireReply struct {
	Effects      *wireEffects `json:"effects" validate:"required"`
	Feedback     string       `json:"feedback" validate:"required"`
	ResponseType string       `json:"response_type" validate:"required"`
}

// Decode разбирает ответ модели: сначала строго, затем мягко.
func Decode(raw string) (domain.Evaluation, error) {
	if ev, err := DecodeStrict(raw); err == nil {
		return ev, nil
	}
	return DecodeLenient(raw)
}

// DecodeStrict принимает только чистый JSON точно по схеме.
func DecodeStrict(raw string) (domain.Evaluation, error) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	dec.DisallowUnknownFields()

	var reply wireReply
	if err := dec.Decode(&reply); err != nil {
		return domain.Evaluation{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if dec.More() {
		return domain.Evaluation{}, fmt.Errorf("%w: trailing data after object", ErrMalformedReply)
	}
	if err := validate.Struct(reply); err != nil {
		return domain.Evaluation{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	e := reply.Effects
	return domain.Evaluation{
		Effects: domain.Effects{
			domain.TraitHappiness:      *e.Happiness,
			domain.TraitGrowth:         *e.Growth,
			domain.TraitSocial:         *e.Social,
			domain.TraitCreativity:     *e.Creativity,
			domain.TraitResponsibility: *e.Responsibility,
		},
		Feedback:     reply.Feedback,
		ResponseType: reply.ResponseType,
	}, nil
}

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_-]*\\n?")
	trailingFence = regexp.MustCompile("\\n?```$")
	plusSign      = regexp.MustCompile(`\+(\d+)`)
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	objectSpan    = regexp.MustCompile(`(?s)\{.*\}`)
)

// Clean применяет эвристики починки: убирает markdown-ограждение,
// знак "+" перед числами и запятые перед закрывающими скобками.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = plusSign.ReplaceAllString(s, "$1")
	s = trailingComma.ReplaceAllString(s, "$1")
	return s
}

type lenientReply struct {
	Effects      map[string]json.RawMessage `json:"effects"`
	Feedback     json.RawMessage            `json:"feedback"`
	ResponseType json.RawMessage            `json:"response_type"`
}

// DecodeLenient - запасной разбор для ответов, нарушающих формат.
// Недостающие изменения считаются нулем, лишние ключи отбрасываются,
// значения вне диапазона ограничиваются. Ответ без объекта effects - ошибка.
func DecodeLenient(raw string) (domain.Evaluation, error) {
	cleaned := Clean(raw)

	var (
		reply lenientReply
		err   error
	)
	if span := objectSpan.FindString(cleaned); span != "" {
		err = json.Unmarshal([]byte(span), &reply)
	}
	if reply.Effects == nil {
		reply = lenientReply{}
		err = json.Unmarshal([]byte(cleaned), &reply)
	}
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if reply.Effects == nil {
		return domain.Evaluation{}, fmt.Errorf("%w: no effects object", ErrMalformedReply)
	}

	effects := domain.ZeroEffects()
	for key, value := range reply.Effects {
		trait := domain.Trait(strings.ToLower(strings.TrimSpace(key)))
		if !trait.Valid() {
			continue
		}
		delta, ok := lenientInt(value)
		if !ok {
			continue
		}
		effects[trait] = delta
	}

	ev := domain.Evaluation{
		Effects:      effects,
		ResponseType: UnspecifiedResponseType,
	}
	if feedback, ok := lenientString(reply.Feedback); ok {
		ev.Feedback = feedback
	}
	if responseType, ok := lenientString(reply.ResponseType); ok && responseType != "" {
		ev.ResponseType = responseType
	}
	return ev, nil
}

// lenientInt понимает числа (в том числе дробные) и числа в строках.
// Результат уже ограничен [MinDelta, MaxDelta].
func lenientInt(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return clampDelta(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimPrefix(strings.TrimSpace(s), "+")
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return clampDelta(n)
		}
	}
	return 0, false
}

// clampDelta ограничивает значение до перевода в int.
func clampDelta(f float64) (int, bool) {
	if math.IsNaN(f) {
		return 0, false
	}
	f = math.Max(math.Min(math.Round(f), domain.MaxDelta), domain.MinDelta)
	return int(f), true
}

// lenientString принимает строку как есть, а число или bool - их текстом.
// null, объекты и массивы не подходят.
func lenientString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	if raw[0] == '{' || raw[0] == '[' {
		return "", false
	}
	return string(raw), true
}
