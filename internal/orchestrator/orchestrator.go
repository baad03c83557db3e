package orchestrator

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/danielpatrickdp/integrity-gate/internal/config"
	"github.com/danielpatrickdp/integrity-gate/internal/engine"
	"github.com/danielpatrickdp/integrity-gate/internal/inputgate"
	"github.com/danielpatrickdp/integrity-gate/internal/llm"
	"github.com/danielpatrickdp/integrity-gate/internal/outputgate"
)

// #region system prompt

const systemPrompt = `あなたは誠実さを最優先するアシスタントです。
以下の方針に従って回答してください。

- 事実と推測を明確に区別し、推測には「おそらく」「〜かもしれません」を付ける。
- 根拠のない断定（「必ず」「絶対に」「100%」など）を避ける。
- わからないことは正直に「わかりません」と答える。
- 誇張や煽りを避け、落ち着いた丁寧な言葉で回答する。`

// #endregion system prompt

// #region orchestrator

// Orchestrator runs the full gated generation pipeline: input screening,
// prompt rebuilding, generation with regeneration retries, output
// post-processing and the final disposition evaluation.
type Orchestrator struct {
	adapter llm.Adapter
	engine  *engine.Engine
	cfg     config.Config
}

func New(adapter llm.Adapter, eng *engine.Engine, cfg config.Config) *Orchestrator {
	return &Orchestrator{adapter: adapter, engine: eng, cfg: cfg}
}

// #endregion orchestrator

// #region process

// Process runs one user turn end to end. evalCtx may be nil, in which
// case a neutral evaluation context is used. Generation errors from the
// adapter and evaluation errors from the engine are returned as-is so
// callers can match them with errors.As.
func (o *Orchestrator) Process(ctx context.Context, text, domain string, evalCtx *engine.Context, maxTokens int) (Result, error) {
	inRes := inputgate.Analyze(text, o.cfg.InputWeights)

	adjTemp := clampTemp(o.cfg.BaseTemperature * inRes.TemperatureModifier)

	if inRes.RiskLevel == inputgate.LevelCritical {
		return coolDownResult(inRes), nil
	}

	prompt, _ := inputgate.RebuildPrompt(text, inRes)

	maxAttempts := o.cfg.MaxRegenAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		outRes      outputgate.Analysis
		response    string
		model       string
		attempts    int
		regenerated bool
	)
	for attempts < maxAttempts {
		attempts++
		gen, err := o.adapter.Generate(ctx, llm.Request{
			Prompt:       prompt,
			Temperature:  adjTemp,
			MaxTokens:    maxTokens,
			SystemPrompt: systemPrompt,
		})
		if err != nil {
			return Result{}, fmt.Errorf("generate attempt %d: %w", attempts, err)
		}
		response = gen.Text
		model = gen.Model

		outRes = outputgate.Analyze(response, o.cfg.OutputWeights)
		if outRes.PsiModifier >= o.cfg.PsiRegenThreshold {
			break
		}
		if attempts < maxAttempts {
			regenerated = true
			adjTemp = math.Max(0.1, adjTemp*0.6)
		}
	}

	annotated := false
	switch outRes.Action {
	case outputgate.ActionSoften:
		response = outputgate.Soften(response)
	case outputgate.ActionAnnotate:
		annotated = true
		response = "（注）不確実性が残るため、断定を避けています。\n\n" + response
	case outputgate.ActionRegenerate:
		// Retries exhausted without a clean pass.
		annotated = true
		response = "（警告）誠実度の観点で出力に問題がある可能性があります。\n\n" + response
	}

	ectx := engine.Context{Confidence: 0.7}
	if evalCtx != nil {
		ectx = *evalCtx
	}
	ectx.Domain = domain

	eval, err := o.engine.Evaluate(engine.EvaluationRequest{
		Inference: map[string]float64{"integrity": outRes.PsiModifier},
		Evidence:  map[string]engine.Evidence{"integrity": {Median: outRes.PsiModifier}},
		Context:   ectx,
	})
	if err != nil {
		return Result{}, fmt.Errorf("evaluate: %w", err)
	}

	sid := eval.SessionID
	out := outRes
	return Result{
		SessionID:       &sid,
		Response:        response,
		InputAnalysis:   inRes,
		OutputAnalysis:  &out,
		Evaluation:      &eval,
		TemperatureUsed: adjTemp,
		Attempts:        attempts,
		Regenerated:     regenerated,
		Annotated:       annotated,
		Model:           model,
	}, nil
}

// #endregion process

// #region cool down

// coolDownResult builds the non-generating response. No sampling happened,
// so the reported temperature is zero.
func coolDownResult(inRes inputgate.Analysis) Result {
	var b strings.Builder
	b.WriteString("-- 冷却モード --\n")
	b.WriteString("入力の分析結果、以下の点が検出されました：\n")
	if len(inRes.Warnings) == 0 {
		b.WriteString("  * (none)\n")
	}
	for _, w := range inRes.Warnings {
		b.WriteString("  * " + w + "\n")
	}
	b.WriteString("より具体的で冷静な質問に書き直していただけますか？\n")
	b.WriteString("正確で誠実な回答をするために、ご協力をお願いします。")
	return Result{
		SessionID:     nil,
		Response:      b.String(),
		InputAnalysis: inRes,
	}
}

func clampTemp(t float64) float64 {
	if t < 0.1 {
		return 0.1
	}
	if t > 1.0 {
		return 1.0
	}
	return t
}

// #endregion cool down
