package llm

import "context"

const dummyDefaultResponse = "これはダミー応答です。"

// #region dummy
// DummyAdapter returns a fixed response without any network call. Used for
// tests and for running the pipeline with no API keys configured.
type DummyAdapter struct {
	response string
}

// NewDummyAdapter builds a dummy adapter; an empty response uses the default.
func NewDummyAdapter(response string) *DummyAdapter {
	if response == "" {
		response = dummyDefaultResponse
	}
	return &DummyAdapter{response: response}
}

func (d *DummyAdapter) Name() string  { return "dummy" }
func (d *DummyAdapter) Model() string { return "dummy-v1" }

// Generate returns the fixed response.
func (d *DummyAdapter) Generate(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, &GenerationError{Kind: KindNetwork, Detail: "context done", Err: err}
	}
	return Result{Text: d.response, Model: d.Model()}, nil
}
// #endregion dummy
