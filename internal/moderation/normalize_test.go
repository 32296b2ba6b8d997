package moderation_test

import (
	"strings"
	"testing"

	"github.com/gbg-hll/watchdog/internal/moderation"
	"github.com/stretchr/testify/assert"
)

const contactLink = "https://discord.gg/gbg-hll"

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input unchanged",
			input: "",
			want:  "",
		},
		{
			name:  "link appended to last line",
			input: "Hello Player,\nplease stop teamkilling.\nThanks.",
			want:  "Hello Player,\nplease stop teamkilling.\nThanks. " + contactLink,
		},
		{
			name:  "subject line dropped",
			input: "Betreff: Verwarnung\nHallo Player,\ndas war nicht ok.",
			want:  "Hallo Player,\ndas war nicht ok. " + contactLink,
		},
		{
			name:  "link moved to contact line",
			input: "Hallo Player,\nbei Fragen melde dich bei uns.\nViele Grüße",
			want:  "Hallo Player,\nbei Fragen melde dich bei uns. " + contactLink + "\nViele Grüße",
		},
		{
			name:  "english contact indicator",
			input: "Hello Player,\nfeel free to contact us.\nRegards",
			want:  "Hello Player,\nfeel free to contact us. " + contactLink + "\nRegards",
		},
		{
			name:  "duplicate links collapsed to one",
			input: "Hello " + contactLink + "\ncontact us " + contactLink,
			want:  "Hello\ncontact us " + contactLink,
		},
		{
			name:  "blank lines removed",
			input: "Hello Player,\n\n\nstop it.",
			want:  "Hello Player,\nstop it. " + contactLink,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			normalizer := moderation.NewMessageNormalizer(contactLink)
			assert.Equal(t, tt.want, normalizer.Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Hello Player,\nplease stop teamkilling.\nThanks.",
		"Betreff: Hinweis\nHallo,\nmelde dich bei uns.",
		"Hello " + contactLink + " there\ncontact us",
		"single line",
	}

	for _, input := range inputs {
		normalizer := moderation.NewMessageNormalizer(contactLink)

		once := normalizer.Normalize(input)
		twice := normalizer.Normalize(once)
		assert.Equal(t, once, twice, "input %q", input)
	}
}

func TestNormalizeContactLinkExactlyOnce(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Hello Player, stop it.",
		"Hallo, melde dich " + contactLink + " bitte.\n" + contactLink,
		"contact us\ncontact us again",
		"Betreff: x\ny",
	}

	for _, input := range inputs {
		normalizer := moderation.NewMessageNormalizer(contactLink)

		got := normalizer.Normalize(input)
		assert.Equal(t, 1, strings.Count(got, contactLink), "input %q got %q", input, got)
	}
}

// The normalizer does not police the banned domain; the prompt contract is
// the only guard. This pins the pass-through so the gap stays visible.
func TestNormalizeBannedDomainPassesThrough(t *testing.T) {
	t.Parallel()

	normalizer := moderation.NewMessageNormalizer(contactLink)

	got := normalizer.Normalize("Visit gbg-hll.com for details.")
	assert.Contains(t, got, "gbg-hll.com")
}

func TestNormalizeNeverAddsLines(t *testing.T) {
	t.Parallel()

	normalizer := moderation.NewMessageNormalizer(contactLink)

	input := "a\nb\n\nc\n"
	got := normalizer.Normalize(input)
	assert.LessOrEqual(t, len(strings.Split(got, "\n")), 3)
}
