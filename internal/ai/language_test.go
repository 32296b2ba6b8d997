package ai_test

import (
	"testing"

	"github.com/gbg-hll/watchdog/internal/ai"
	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "empty text is english",
			text: "",
			want: "en",
		},
		{
			name: "german markers dominate",
			text: "er hat mich und die anderen wegen nichts beleidigt, bitte sperrt ihn nicht zu lange",
			want: "de",
		},
		{
			name: "english markers dominate",
			text: "he insulted the whole squad and was not nice, please check because it happened twice",
			want: "en",
		},
		{
			name: "umlaut alone scores german",
			text: "ß",
			want: "de",
		},
		{
			name: "tie favors german",
			text: "player xyz",
			want: "de",
		},
		{
			name: "umlauts outweigh english markers",
			text: "he wrote böse words at the spawn and über voice too",
			want: "de",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ai.DetectLanguage(tt.text))
		})
	}
}
