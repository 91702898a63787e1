package research

import (
	"testing"

	"github.com/mohammad-safakhou/deepdive/internal/genai"
)

func TestShapeDropsEmptyParts(t *testing.T) {
	var sh shaper
	shaped, _ := sh.shape([]genai.Part{{Text: ""}, {FunctionCall: &genai.FunctionCall{Name: "x"}}}, PhaseResearch, false, false)
	if len(shaped) != 0 {
		t.Fatalf("expected no shaped parts, got %d", len(shaped))
	}
}

func TestShapeThoughtToAnswerSeparator(t *testing.T) {
	var sh shaper
	shaped, hasAnswer := sh.shape([]genai.Part{
		{Text: "a", Thought: true},
		{Text: "b", Thought: false},
	}, PhaseFinal, false, false)
	if len(shaped) != 2 {
		t.Fatalf("expected 2 shaped parts, got %d", len(shaped))
	}
	if shaped[1].Text != "\nb" {
		t.Fatalf("expected thought->answer separator, got %q", shaped[1].Text)
	}
	if !hasAnswer {
		t.Fatalf("expected hasAnswer to be true")
	}
}

func TestShapeThoughtToAnswerAcrossChunks(t *testing.T) {
	var sh shaper
	sh.shape([]genai.Part{{Text: "a", Thought: true}}, PhaseFinal, false, false)
	shaped, _ := sh.shape([]genai.Part{{Text: "b", Thought: false}}, PhaseFinal, false, false)
	if shaped[0].Text != "\nb" {
		t.Fatalf("expected separator across chunks, got %q", shaped[0].Text)
	}

	// Answer back to thought gets no separator.
	shaped, _ = sh.shape([]genai.Part{{Text: "c", Thought: true}}, PhaseFinal, false, false)
	if shaped[0].Text != "c" {
		t.Fatalf("expected no separator, got %q", shaped[0].Text)
	}
}

func TestShapePhaseTransitionSeparator(t *testing.T) {
	var sh shaper
	sh.shape([]genai.Part{{Text: "clarifying", Thought: true}}, PhaseClarify, false, false)
	shaped, _ := sh.shape([]genai.Part{{Text: "planning", Thought: true}}, PhasePlan, false, false)
	if shaped[0].Text != "\n\nplanning" {
		t.Fatalf("expected phase-transition separator, got %q", shaped[0].Text)
	}

	// Same phase again: no separator.
	shaped, _ = sh.shape([]genai.Part{{Text: "more", Thought: true}}, PhasePlan, false, false)
	if shaped[0].Text != "more" {
		t.Fatalf("expected no separator within a phase, got %q", shaped[0].Text)
	}
}

func TestShapeNoSeparatorOnFirstPhase(t *testing.T) {
	var sh shaper
	shaped, _ := sh.shape([]genai.Part{{Text: "first"}}, PhaseClarify, false, false)
	if shaped[0].Text != "first" {
		t.Fatalf("expected untouched first emission, got %q", shaped[0].Text)
	}
}

func TestShapeForceFlags(t *testing.T) {
	var sh shaper
	shaped, hasAnswer := sh.shape([]genai.Part{{Text: "a", Thought: false}}, PhaseResearch, true, false)
	if !shaped[0].Thought || hasAnswer {
		t.Fatalf("forceThoughts should pin the thought flag")
	}

	shaped, hasAnswer = sh.shape([]genai.Part{{Text: "b", Thought: true}}, PhaseResearch, false, true)
	if shaped[0].Thought || !hasAnswer {
		t.Fatalf("forceAnswer should clear the thought flag")
	}
}

func TestShaperIsPerInstance(t *testing.T) {
	var a, b shaper
	a.shape([]genai.Part{{Text: "x"}}, PhaseClarify, false, false)
	shaped, _ := b.shape([]genai.Part{{Text: "y"}}, PhasePlan, false, false)
	if shaped[0].Text != "y" {
		t.Fatalf("shaper state leaked across instances: %q", shaped[0].Text)
	}
}
