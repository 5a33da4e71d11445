package analyzer

import (
	"strings"
	"testing"

	"github.com/nao1215/policyscan/internal/model"
)

func TestClassifyIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		question string
		want     Intent
	}{
		{"What is the most risky data?", IntentRisk},
		{"Is this app dangerous?", IntentRisk},
		{"How do I protect myself?", IntentProtection},
		{"Tell me about privacy here", IntentProtection},
		{"How can I delete my account?", IntentDeletion},
		{"Who do they share my data with?", IntentSharing},
		{"Do they work with a third party?", IntentSharing},
		{"What do they do?", IntentOther},
		{"", IntentOther},
		// risk outranks deletion
		{"Is it risky to delete my account?", IntentRisk},
		// protection outranks deletion
		{"How do I delete my privacy data?", IntentProtection},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			t.Parallel()

			if got := ClassifyIntent(tt.question); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAnswer(t *testing.T) {
	t.Parallel()

	a := New()

	t.Run("deletion mentions subject", func(t *testing.T) {
		t.Parallel()

		got := a.Answer("How do I delete my account?", ChatContext{Subject: "Acme"})
		if !strings.HasPrefix(got, "To delete your Acme data:") {
			t.Errorf("unexpected answer: %q", got)
		}
	})

	t.Run("risk lists risky data types", func(t *testing.T) {
		t.Parallel()

		ctx := a.ChatContextFor("TikTok")
		got := a.Answer("What's the most dangerous thing they collect?", ctx)
		if !strings.Contains(got, "Biometric Data, Location, Contacts") {
			t.Errorf("unexpected answer: %q", got)
		}
	})

	t.Run("risk without data types", func(t *testing.T) {
		t.Parallel()

		got := a.Answer("is it risky", ChatContext{Subject: "Acme"})
		if !strings.Contains(got, "personal information") {
			t.Errorf("unexpected answer: %q", got)
		}
	})

	t.Run("sharing uses profile", func(t *testing.T) {
		t.Parallel()

		got := a.Answer("Who do they share with?", a.ChatContextFor("WhatsApp"))
		if !strings.Contains(got, "Shares metadata with Meta companies") {
			t.Errorf("unexpected answer: %q", got)
		}
	})

	t.Run("catch-all names subject and a concern", func(t *testing.T) {
		t.Parallel()

		got := a.Answer("Tell me something", a.ChatContextFor("Tinder"))
		if !strings.Contains(got, "Tinder") || !strings.Contains(got, "Data retained indefinitely") {
			t.Errorf("unexpected answer: %q", got)
		}
	})

	t.Run("catch-all without concerns", func(t *testing.T) {
		t.Parallel()

		got := a.Answer("hello", ChatContext{Subject: "Acme"})
		if !strings.Contains(got, model.NoConcernsMessage) {
			t.Errorf("unexpected answer: %q", got)
		}
	})

	t.Run("context from result", func(t *testing.T) {
		t.Parallel()

		res := a.Analyze("We sell data to advertising partners and track your location.", "Acme")
		got := a.Answer("Who gets my data? Do they share it?", ChatContextFromResult(res))
		if !strings.Contains(got, "advertising and business partners") {
			t.Errorf("unexpected answer: %q", got)
		}
	})
}
