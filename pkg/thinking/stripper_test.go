package thinking

import (
	"testing"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantCommentary string
		wantRemainder  string
	}{
		{
			name:           "no tags",
			text:           "Here is your scope of work.",
			wantCommentary: "",
			wantRemainder:  "Here is your scope of work.",
		},
		{
			name:           "thinking tag",
			text:           "<thinking>estimating hours</thinking>Here is the plan.",
			wantCommentary: "estimating hours",
			wantRemainder:  "Here is the plan.",
		},
		{
			name:           "short synonym",
			text:           "<think>check rates</think>Done.",
			wantCommentary: "check rates",
			wantRemainder:  "Done.",
		},
		{
			name:           "uppercase synonym case insensitive",
			text:           "<AI_THINK>internal</AI_THINK>Visible.",
			wantCommentary: "internal",
			wantRemainder:  "Visible.",
		},
		{
			name:           "mixed tags join in order of appearance",
			text:           "<think>first</think>middle<thinking>second</thinking>end",
			wantCommentary: "first\n\nsecond",
			wantRemainder:  "middleend",
		},
		{
			name:           "tool call removed entirely",
			text:           "before<tool_call>{\"name\":\"lookup\"}</tool_call>after",
			wantCommentary: "",
			wantRemainder:  "beforeafter",
		},
		{
			name:           "unclosed tag mid stream",
			text:           "Narrative so far.<thinking>still reasoning",
			wantCommentary: "still reasoning",
			wantRemainder:  "Narrative so far.",
		},
		{
			name:           "unclosed tool call dropped",
			text:           "Narrative.<tool_call>{\"partial\":",
			wantCommentary: "",
			wantRemainder:  "Narrative.",
		},
		{
			name:           "multiline commentary",
			text:           "<thinking>line one\nline two</thinking>Body.",
			wantCommentary: "line one\nline two",
			wantRemainder:  "Body.",
		},
		{
			name:           "empty tag contributes nothing",
			text:           "<thinking>   </thinking>Body.",
			wantCommentary: "",
			wantRemainder:  "Body.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Strip(tt.text)
			if got.Commentary != tt.wantCommentary {
				t.Errorf("Commentary = %q, want %q", got.Commentary, tt.wantCommentary)
			}
			if got.Remainder != tt.wantRemainder {
				t.Errorf("Remainder = %q, want %q", got.Remainder, tt.wantRemainder)
			}
		})
	}
}

func TestStripIdempotent(t *testing.T) {
	inputs := []string{
		"<thinking>a</thinking>keep<tool_call>x</tool_call>this",
		"plain text with no tags",
		"<think>partial",
	}

	for _, input := range inputs {
		first := Strip(input)
		second := Strip(first.Remainder)
		if second.Remainder != first.Remainder {
			t.Errorf("Strip not idempotent for %q: %q then %q", input, first.Remainder, second.Remainder)
		}
		if second.Commentary != "" {
			t.Errorf("second pass extracted commentary %q from %q", second.Commentary, input)
		}
	}
}
