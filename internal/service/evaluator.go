package service

import (
	"context"
	"errors"
	"time"

	"parenting-server/internal/domain"
	"parenting-server/internal/evaluation"
	"parenting-server/pkg/ai"

	"go.uber.org/zap"
)

// Тексты уведомлений для нейтрального результата.
const (
	MalformedReplyFeedback   = "The evaluation came back in an unexpected format. Please try again."
	CompletionFailedFeedback = "The evaluation service is unavailable right now. Please try again in a moment."
)

// Evaluator оценивает ответ родителя. Никогда не возвращает ошибку:
// при любом сбое возвращается нейтральный результат.
type Evaluator interface {
	Evaluate(ctx context.Context, scenario domain.Scenario, age int, response string) domain.Evaluation
}

type responseEvaluator struct {
	client ai.Client
	logger *zap.Logger
}

// NewResponseEvaluator создает Evaluator поверх клиента модели.
func NewResponseEvaluator(client ai.Client, logger *zap.Logger) Evaluator {
	return &responseEvaluator{
		client: client,
		logger: logger.Named("ResponseEvaluator"),
	}
}

func (e *responseEvaluator) Evaluate(ctx context.Context, scenario domain.Scenario, age int, response string) domain.Evaluation {
	log := e.logger.With(zap.Int("age", age), zap.String("context", scenario.Context))
	start := time.Now()

	prompt, err := evaluation.BuildPrompt(scenario, age, response)
	if err != nil {
		log.Error("Failed to build evaluation prompt", zap.Error(err))
		evaluationsTotal.WithLabelValues(string(domain.FailureCompletionFailed)).Inc()
		return domain.NeutralEvaluation(domain.FailureCompletionFailed, CompletionFailedFeedback)
	}

	raw, usage, err := e.client.Complete(ctx, ai.Request{
		SystemPrompt: prompt.System,
		UserPrompt:   prompt.User,
	})
	if err != nil {
		level := zap.WarnLevel
		if errors.Is(err, ai.ErrAuthentication) {
			level = zap.ErrorLevel
		}
		log.Log(level, "Completion call failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		evaluationsTotal.WithLabelValues(string(domain.FailureCompletionFailed)).Inc()
		return domain.NeutralEvaluation(domain.FailureCompletionFailed, CompletionFailedFeedback)
	}

	ev, strictErr := evaluation.DecodeStrict(raw)
	if strictErr != nil {
		var lenientErr error
		ev, lenientErr = evaluation.DecodeLenient(raw)
		if lenientErr != nil {
			log.Warn("Model reply could not be decoded",
				zap.NamedError("strict", strictErr),
				zap.NamedError("lenient", lenientErr),
				zap.String("reply", truncate(raw, 500)),
			)
			evaluationsTotal.WithLabelValues(string(domain.FailureMalformedReply)).Inc()
			return domain.NeutralEvaluation(domain.FailureMalformedReply, MalformedReplyFeedback)
		}
		log.Debug("Model reply repaired by lenient decode", zap.NamedError("strict", strictErr))
		evaluationsTotal.WithLabelValues("lenient").Inc()
	} else {
		evaluationsTotal.WithLabelValues("strict").Inc()
	}

	log.Info("Response evaluated",
		zap.String("responseType", ev.ResponseType),
		zap.Int("totalTokens", usage.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return ev
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
