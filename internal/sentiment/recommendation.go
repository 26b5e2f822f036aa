package sentiment

import "strings"

var positifAdvice = []string{
	"Luar biasa! Energi positif Anda sangat menginspirasi",
	"Terus jaga pikiran positif dan bagikan ke orang sekitar",
	"Luangkan waktu untuk hal-hal yang membuat Anda bahagia",
	"Momentum positif ini bisa dijadikan motivasi untuk pencapaian lebih besar",
}

var negatifAdvice = []string{
	"Anda tidak sendirian, cobalah berbicara dengan orang terdekat",
	"Pertimbangkan konsultasi dengan psikolog profesional",
	"Luangkan waktu untuk self-care dan aktivitas yang menenangkan",
	"Ingat, Anda berharga dan pantas mendapatkan bantuan serta perhatian",
}

var netralAdvice = []string{
	"Status menunjukkan sentimen yang seimbang",
	"Tetap pantau perasaan dan jangan ragu untuk berbagi cerita",
	"Jaga keseimbangan hidup, tetaplah reflektif dan terbuka",
	"Momen netral adalah kesempatan untuk introspeksi diri",
}

var defaultAdvice = map[string][]string{
	"POSITIF": positifAdvice,
	"NEGATIF": negatifAdvice,
	"NETRAL":  netralAdvice,
	"POSITIVE": {
		"Great! Your positive energy is inspiring",
		"Keep the positive mindset and share it with people around you",
		"Make time for the things that make you happy",
		"Use this momentum as motivation for bigger goals",
	},
	"NEGATIVE": {
		"You are not alone, try talking to someone close to you",
		"Consider talking to a professional counsellor",
		"Make time for self-care and calming activities",
		"Remember that you matter and deserve help and attention",
	},
	"NEUTRAL": {
		"Your status reads as balanced",
		"Keep an eye on how you feel and do not hesitate to share",
		"Stay reflective and open",
		"A neutral moment is a chance for introspection",
	},
}

// Recommender returns the advice lines shown next to a label. Labels without
// an entry fall back to the neutral advice.
type Recommender struct {
	advice map[string][]string
}

// NewRecommender layers overrides on top of the built-in advice. Keys are
// matched case-insensitively.
func NewRecommender(overrides map[string][]string) *Recommender {
	advice := make(map[string][]string, len(defaultAdvice)+len(overrides))
	for label, lines := range defaultAdvice {
		advice[label] = lines
	}
	for label, lines := range overrides {
		advice[strings.ToUpper(strings.TrimSpace(label))] = lines
	}
	return &Recommender{advice: advice}
}

func (r *Recommender) For(label string) []string {
	lines, ok := r.advice[strings.ToUpper(strings.TrimSpace(label))]
	if !ok {
		lines = netralAdvice
	}
	return append([]string(nil), lines...)
}
