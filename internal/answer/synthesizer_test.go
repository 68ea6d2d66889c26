package answer

import (
	"context"
	"strings"
	"testing"

	"github.com/jomohunter/DueDil/internal/ai"
	"github.com/jomohunter/DueDil/internal/matcher"
)

type fakeCompleter struct {
	respond func(req *ai.CompletionRequest) (*ai.CompletionResponse, error)
}

func (f *fakeCompleter) Complete(_ context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	return f.respond(req)
}

func matchedQuestion(id int, question string, chunkTexts ...string) matcher.QuestionMatches {
	qm := matcher.QuestionMatches{QuestionID: id, Question: question}
	for i, text := range chunkTexts {
		qm.Matches = append(qm.Matches, matcher.Match{ChunkID: i + 1, Text: text})
	}
	return qm
}

func TestGenerateAll(t *testing.T) {
	completer := &fakeCompleter{respond: func(req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
		if !strings.Contains(req.Prompt, "the fee is 2%") {
			t.Errorf("prompt missing context: %q", req.Prompt)
		}
		if !strings.Contains(req.Prompt, "What is the management fee?") {
			t.Errorf("prompt missing question: %q", req.Prompt)
		}
		if !strings.Contains(req.SystemPrompt, "ONLY the provided context") {
			t.Errorf("system prompt missing grounding instruction: %q", req.SystemPrompt)
		}
		return &ai.CompletionResponse{Content: "The management fee is 2%."}, nil
	}}

	s := New(DefaultConfig(), completer, nil)

	matched := []matcher.QuestionMatches{
		matchedQuestion(1, "What is the management fee?", "the fee is 2%", "other chunk"),
	}
	answers, err := s.GenerateAll(context.Background(), matched)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}

	if len(answers) != 1 {
		t.Fatalf("got %d answers, want 1", len(answers))
	}
	if answers[0].QuestionID != 1 {
		t.Errorf("QuestionID = %d, want 1", answers[0].QuestionID)
	}
	if answers[0].Answer != "The management fee is 2%." {
		t.Errorf("Answer = %q", answers[0].Answer)
	}
}

func TestGenerateAll_NoMatches(t *testing.T) {
	completer := &fakeCompleter{respond: func(req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
		t.Error("completer must not be called for questions without matches")
		return &ai.CompletionResponse{Content: "should not happen"}, nil
	}}

	s := New(DefaultConfig(), completer, nil)

	answers, err := s.GenerateAll(context.Background(), []matcher.QuestionMatches{
		{QuestionID: 4, Question: "Who audits the fund?"},
	})
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}

	if answers[0].Answer != InsufficientData {
		t.Errorf("Answer = %q, want sentinel", answers[0].Answer)
	}
}

func TestGenerateAll_CompletionFailure(t *testing.T) {
	completer := &fakeCompleter{respond: func(req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
		return nil, ai.NewProviderError(ai.ErrTypeValidation, "model refused", "fake")
	}}

	s := New(DefaultConfig(), completer, nil)

	answers, err := s.GenerateAll(context.Background(), []matcher.QuestionMatches{
		matchedQuestion(2, "Who are the founders?", "some context"),
	})
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}

	if !strings.HasPrefix(answers[0].Answer, "[answer generation failed:") {
		t.Errorf("Answer = %q, want failure sentinel", answers[0].Answer)
	}
}

func TestGenerateAll_EmptyCompletion(t *testing.T) {
	completer := &fakeCompleter{respond: func(req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
		return &ai.CompletionResponse{Content: "   \n"}, nil
	}}

	s := New(DefaultConfig(), completer, nil)

	answers, err := s.GenerateAll(context.Background(), []matcher.QuestionMatches{
		matchedQuestion(3, "What is the custody setup?", "some context"),
	})
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}

	if answers[0].Answer != InsufficientData {
		t.Errorf("Answer = %q, want sentinel", answers[0].Answer)
	}
}

func TestGenerateAll_PreservesOrder(t *testing.T) {
	completer := &fakeCompleter{respond: func(req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
		return &ai.CompletionResponse{Content: "ok"}, nil
	}}

	s := New(Config{Workers: 4, MaxTokens: 100}, completer, nil)

	var matched []matcher.QuestionMatches
	for i := 1; i <= 10; i++ {
		matched = append(matched, matchedQuestion(i, "question", "context"))
	}

	answers, err := s.GenerateAll(context.Background(), matched)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}

	for i, a := range answers {
		if a.QuestionID != i+1 {
			t.Errorf("answer %d has QuestionID %d", i, a.QuestionID)
		}
	}
}

func TestGenerateAll_Empty(t *testing.T) {
	s := New(DefaultConfig(), &fakeCompleter{}, nil)

	answers, err := s.GenerateAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	if answers != nil {
		t.Errorf("GenerateAll(nil) = %v, want nil", answers)
	}
}
