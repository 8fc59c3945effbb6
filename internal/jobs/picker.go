package jobs

import (
	"math/rand/v2"

	voicerepo "campaign_audio_backend/internal/voices/repository"
)

// RandomVoicePicker picks uniformly among the group's active voices, so
// leads of one batch spread across the pool.
func RandomVoicePicker(voices []voicerepo.Voice) voicerepo.Voice {
	return voices[rand.IntN(len(voices))]
}
