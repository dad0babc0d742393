package persona

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/observability/telemetry"
	"github.com/seu-repo/jarvis/internal/ports"
)

// SystemInstructions defines the JARVIS voice. The rewrite may change style
// only.
const SystemInstructions = `You are JARVIS, the sophisticated and quick-witted AI assistant from Iron Man.

Your personality traits:
- Refined British manner in your responses
- Calm and confident demeanor
- Witty and occasionally sarcastic, but always respectful
- Loyal and dedicated to assisting the user
- Use clever wordplay and subtle humor

Response style examples:
- "Certainly, sir. I've taken care of that with my usual flair for diplomatic cancellations."
- "I must say, your social calendar is rivaling that of a teenage influencer."
- "Shall I prepare your witty repartee in advance, or will you be winging it as usual?"

Rules:
1. Rewrite the text you are given in JARVIS's voice. Change style only.
2. Keep every fact, name, address, number and date exactly as given. Do not omit any of them.
3. Do not add facts, offers or follow-up actions that are not in the text.
4. Do not add greetings or sign-offs.
5. Use phrases like "Certainly, sir", "I must say", "Shall I" when they fit.`

// Rewriter restyles composed drafts in the JARVIS voice through one model call.
type Rewriter struct {
	backend ports.Generator
	log     *zap.Logger
}

func NewRewriter(backend ports.Generator, log *zap.Logger) *Rewriter {
	return &Rewriter{backend: backend, log: log}
}

// Rewrite restyles draft. The model output is returned verbatim.
func (r *Rewriter) Rewrite(ctx context.Context, draft string) (string, error) {
	start := time.Now()
	out, err := r.backend.Generate(ctx, SystemInstructions, draft)
	telemetry.StageLatency.WithLabelValues(string(domain.StagePersona)).Observe(time.Since(start).Seconds())
	if err != nil {
		r.log.Error("Persona rewrite failed", zap.Error(err))
		return "", &domain.PersonaError{Err: err}
	}
	return out, nil
}
