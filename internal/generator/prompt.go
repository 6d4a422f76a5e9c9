package generator

import (
	"context"
	"fmt"

	"github.com/opmodel/scaffold/internal/prompt"
)

// Prompt asks questions through the environment's adapter. Defaults of
// Store questions are prefilled from the global configuration, and answers
// that differ from their defaults are remembered there, unless the
// skip-cache option is set.
func (b *Base) Prompt(ctx context.Context, questions ...prompt.Question) (prompt.Answers, error) {
	useCache := !b.BoolOption(OptionSkipCache)

	asked := questions
	if useCache {
		prefilled, err := prompt.PrefillQuestions(b.GlobalConfig(), questions)
		if err != nil {
			return nil, err
		}
		asked = prefilled
	}

	answers, err := b.env.Adapter().Prompt(ctx, asked)
	if err != nil {
		return nil, fmt.Errorf("%s: prompting: %w", b.namespace, err)
	}

	if useCache {
		if err := prompt.StoreAnswers(b.GlobalConfig(), asked, answers, false); err != nil {
			return nil, err
		}
	}
	return answers, nil
}
