package synth

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dheerajkumar69/AutoReadme/internal/diff"
	"github.com/Dheerajkumar69/AutoReadme/internal/lang"
	"github.com/Dheerajkumar69/AutoReadme/internal/llm"
	"github.com/Dheerajkumar69/AutoReadme/internal/types"
)

type stubGenerator struct {
	t        *testing.T
	answers  []string
	err      error
	onCall   func()
	requests []types.SynthesizeRequest
}

func (s *stubGenerator) Name() string { return "stub" }
func (s *stubGenerator) Online() bool { return true }

func (s *stubGenerator) Classify(ctx context.Context, req types.ClassifyRequest) (json.RawMessage, error) {
	s.t.Fatal("synthesizer must not classify")
	return nil, nil
}

func (s *stubGenerator) Synthesize(ctx context.Context, req types.SynthesizeRequest) (json.RawMessage, error) {
	s.requests = append(s.requests, req)
	if s.onCall != nil {
		s.onCall()
	}
	if s.err != nil {
		return nil, s.err
	}
	answer := s.answers[0]
	if len(s.answers) > 1 {
		s.answers = s.answers[1:]
	}
	return json.RawMessage(answer), nil
}

const (
	e2eOld = "function a(){}\n"
	e2eNew = "function a(){}\nfunction calcTax(amt, rate){ return amt*rate/100; }\n"
)

func TestSynthesize_EndToEnd(t *testing.T) {
	gen := &stubGenerator{t: t, answers: []string{
		`{"skip":false,"comment":"Applies the rate as a percentage of the amount.","confidence":0.9,"reasoning":"new helper"}`,
	}}
	s := New(gen, types.StyleShort, nil)

	suggestions, err := s.Synthesize(context.Background(), diff.Compute(e2eOld, e2eNew), e2eNew, lang.For("javascript"))
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	got := suggestions[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, 2, got.LineNumber)
	assert.Equal(t, "Applies the rate as a percentage of the amount.", got.Text)
	assert.Equal(t, types.StyleShort, got.Style)
	assert.Equal(t, 0.9, got.Confidence)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, types.TaskSynthesize, req.Task)
	assert.Equal(t, 2, req.LineNumber)
	assert.Equal(t, "javascript", req.Language)
	assert.Equal(t, "+function calcTax(amt, rate){ return amt*rate/100; }\n", req.Diff)
	assert.Equal(t, e2eNew, req.FullContent)
	assert.Equal(t, types.StyleShort.Directive(), req.StyleDirective)
	assert.Contains(t, req.Context, ChangeStartMarker+"\nfunction calcTax")
}

func TestSynthesize_SuggestionIDsAreUnique(t *testing.T) {
	gen := &stubGenerator{t: t, answers: []string{
		`{"skip":false,"comment":"Applies the rate as a percentage of the amount.","confidence":0.9}`,
	}}
	s := New(gen, types.StyleShort, nil)
	chunks := diff.Compute(e2eOld, e2eNew)

	first, err := s.Synthesize(context.Background(), chunks, e2eNew, lang.For("javascript"))
	require.NoError(t, err)
	second, err := s.Synthesize(context.Background(), chunks, e2eNew, lang.For("javascript"))
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)
}

func TestSynthesize_DropsUnusableAnswers(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		err    error
	}{
		{"generic comment despite high confidence", `{"skip":false,"comment":"Gets the user.","confidence":0.95}`, nil},
		{"generic long comment", `{"skip":false,"comment":"This function returns the computed tax value.","confidence":0.9}`, nil},
		{"skip signal", `{"skip":true,"reasoning":"self-explanatory"}`, nil},
		{"malformed answer", `I would write a comment here`, nil},
		{"transport failure", "", &llm.Error{Kind: llm.KindNetworkUnavailable, Message: "offline"}},
		{"client rejection", "", &llm.Error{Kind: llm.KindClientRejected, StatusCode: 400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{t: t, answers: []string{tt.answer}, err: tt.err}
			s := New(gen, types.StyleShort, nil)

			suggestions, err := s.Synthesize(context.Background(), diff.Compute(e2eOld, e2eNew), e2eNew, lang.For("javascript"))
			assert.NoError(t, err)
			assert.Empty(t, suggestions)
			assert.Len(t, gen.requests, 1)
		})
	}
}

func TestSynthesize_SkipsDocumentedDeclarations(t *testing.T) {
	newText := "function a(){}\n// Computes tax for an amount in percent.\nfunction calcTax(amt, rate){ return amt*rate/100; }\n"
	gen := &stubGenerator{t: t}
	s := New(gen, types.StyleShort, nil)

	suggestions, err := s.Synthesize(context.Background(), diff.Compute(e2eOld, newText), newText, lang.For("javascript"))
	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.Empty(t, gen.requests)
}

func TestSynthesize_SkipsTrivialChunks(t *testing.T) {
	oldText := "run();\n"
	newText := "run();\nconsole.log(state);\n\n"
	gen := &stubGenerator{t: t}
	s := New(gen, types.StyleShort, nil)

	suggestions, err := s.Synthesize(context.Background(), diff.Compute(oldText, newText), newText, lang.For("javascript"))
	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.Empty(t, gen.requests)
}

func twoChunks() []types.DiffChunk {
	return []types.DiffChunk{
		{StartLine: 3, EndLine: 3, Changes: []types.ChangeLine{
			{LineNumber: 3, Content: "total += item.price * item.qty", Kind: types.ChangeAdded},
		}},
		{StartLine: 20, EndLine: 20, Changes: []types.ChangeLine{
			{LineNumber: 20, Content: "cache.evict(staleAfter)", Kind: types.ChangeAdded},
		}},
	}
}

func TestSynthesize_IgnoresLineThatOnlyGainedNewline(t *testing.T) {
	gen := &stubGenerator{t: t, answers: []string{
		`{"skip":false,"comment":"Accumulate only once the batch is ready.","confidence":0.8}`,
	}}
	s := New(gen, types.StyleShort, nil)

	oldText := "x := load()"
	newText := "x := load()\nif ready {\n\ttotal += x\n}\n"
	suggestions, err := s.Synthesize(context.Background(), diff.Compute(oldText, newText), newText, lang.For("go"))
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, 2, suggestions[0].LineNumber)
}

func TestSynthesize_KeepsChunkOrder(t *testing.T) {
	gen := &stubGenerator{t: t, answers: []string{
		`{"skip":false,"comment":"Accumulates the line total for each item.","confidence":0.8}`,
		`{"skip":false,"comment":"Evicts entries older than the staleness window.","confidence":0.7}`,
	}}
	s := New(gen, types.StyleExplanatory, nil)

	suggestions, err := s.Synthesize(context.Background(), twoChunks(), "", lang.For("python"))
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, 3, suggestions[0].LineNumber)
	assert.Equal(t, 20, suggestions[1].LineNumber)
	assert.Equal(t, types.StyleExplanatory, suggestions[1].Style)
}

func TestSynthesize_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen := &stubGenerator{t: t, onCall: cancel, answers: []string{
		`{"skip":false,"comment":"Accumulates the line total for each item.","confidence":0.8}`,
	}}
	s := New(gen, types.StyleShort, nil)

	suggestions, err := s.Synthesize(ctx, twoChunks(), "", lang.For("python"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, suggestions, 1)
	assert.Len(t, gen.requests, 1)
}

func TestWindow(t *testing.T) {
	chunk := types.DiffChunk{
		ContextBefore: []string{"func a() {", "\tx := 1"},
		Changes: []types.ChangeLine{
			{LineNumber: 3, Content: "\tx = 2", Kind: types.ChangeRemoved},
			{LineNumber: 3, Content: "\tx++", Kind: types.ChangeAdded},
		},
		ContextAfter: []string{"}"},
	}

	expected := "func a() {\n\tx := 1\n" + ChangeStartMarker + "\n\tx++\n" + ChangeEndMarker + "\n}\n"
	assert.Equal(t, expected, Window(chunk))
}

func TestIsGeneric(t *testing.T) {
	tests := []struct {
		comment string
		generic bool
	}{
		{"Gets the user.", true},
		{"Sets the value", true},
		{"This function returns the total amount.", true},
		{"Loops through all items and sums them up.", true},
		{"Returns the result of the computation.", true},
		{"Helper function for parsing the header.", true},
		{"TODO: document this properly later", true},
		{"", true},
		{"Applies the rate as a percentage of the amount.", false},
		{"Retries with exponential backoff until the deadline passes.", false},
		{"Prices are stored in cents to avoid rounding drift.", false},
	}

	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			assert.Equal(t, tt.generic, IsGeneric(tt.comment))
		})
	}
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"// Computes the tax.":               "Computes the tax.",
		"# Computes the tax.":                "Computes the tax.",
		"/* Computes the tax. */":            "Computes the tax.",
		"/**\n * Computes the tax.\n */":     "Computes the tax.",
		`"Computes the tax."`:                "Computes the tax.",
		"\n\n  Computes the tax.  \n":        "Computes the tax.",
		"-- Computes the tax.":               "Computes the tax.",
		"Plain text stays as it is written.": "Plain text stays as it is written.",
	}

	for input, expected := range tests {
		assert.Equal(t, expected, Clean(input), "input %q", input)
	}
}
