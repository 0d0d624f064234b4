package sentiment

import (
	"math"
	"strings"
)

// polarity assigns each lexicon word a score in [-1,1]. The list is a compact
// general-purpose polarity lexicon tuned for conversational news discussion.
var polarity = map[string]float64{
	// positive
	"good": 0.6, "great": 0.8, "excellent": 1.0, "amazing": 0.9, "awesome": 0.9,
	"fantastic": 0.9, "wonderful": 0.9, "love": 0.8, "loved": 0.8, "like": 0.4,
	"liked": 0.4, "enjoy": 0.6, "enjoyed": 0.6, "interesting": 0.5, "insightful": 0.6,
	"helpful": 0.5, "best": 0.8, "better": 0.4, "nice": 0.5, "happy": 0.7,
	"glad": 0.6, "agree": 0.5, "agreed": 0.5, "right": 0.3, "correct": 0.4,
	"true": 0.3, "fair": 0.3, "impressive": 0.7, "brilliant": 0.9, "thanks": 0.4,
	"thank": 0.4, "fun": 0.5, "exciting": 0.7, "excited": 0.7, "cool": 0.4,
	"fascinating": 0.7, "curious": 0.4, "surprised": 0.3, "win": 0.5, "won": 0.5,
	"success": 0.6, "successful": 0.6, "perfect": 0.9, "beautiful": 0.7,
	"important": 0.3, "valuable": 0.5, "positive": 0.5, "optimistic": 0.6,

	// negative
	"bad": -0.6, "terrible": -1.0, "awful": -0.9, "horrible": -0.9, "worst": -0.9,
	"worse": -0.5, "hate": -0.8, "hated": -0.8, "dislike": -0.5, "disliked": -0.5,
	"disagree": -0.5, "disagreed": -0.5, "wrong": -0.5, "incorrect": -0.4,
	"false": -0.4, "unfair": -0.5, "boring": -0.5, "sad": -0.6, "angry": -0.7,
	"annoying": -0.6, "annoyed": -0.6, "disappointing": -0.7, "disappointed": -0.7,
	"poor": -0.5, "useless": -0.7, "stupid": -0.7, "dumb": -0.6, "ridiculous": -0.6,
	"lose": -0.4, "lost": -0.4, "loss": -0.4, "fail": -0.6, "failed": -0.6,
	"failure": -0.7, "problem": -0.4, "problems": -0.4, "concern": -0.3,
	"concerned": -0.4, "worried": -0.5, "worry": -0.5, "negative": -0.5,
	"misleading": -0.6, "biased": -0.5, "doubt": -0.3, "ugly": -0.6,
	"pessimistic": -0.6, "scandal": -0.6, "crisis": -0.5, "disaster": -0.8,
}

// negators flip the sign of the next polar word within the negation window.
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "nothing": true, "nobody": true,
	"neither": true, "cannot": true, "cant": true, "dont": true, "doesnt": true,
	"didnt": true, "wont": true, "isnt": true, "wasnt": true, "arent": true,
	"hardly": true, "barely": true,
}

// intensifiers amplify the next polar word.
var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "extremely": 1.5, "so": 1.2, "totally": 1.3,
	"completely": 1.3, "absolutely": 1.4, "quite": 1.1, "incredibly": 1.5,
}

// negationWindow is how many tokens a negator reaches forward.
const negationWindow = 3

// Lexical is the fast polarity heuristic. It produces a continuous score in
// [-1,1] from the lexicon, with negation and intensifier handling.
type Lexical struct{}

// NewLexical creates a new lexical analyzer.
func NewLexical() *Lexical {
	return &Lexical{}
}

// Score computes the polarity of text. Texts with no lexicon hits score 0.
func (l *Lexical) Score(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var sum float64
	hits := 0
	negateUntil := -1
	boost := 1.0

	for i, tok := range tokens {
		if negators[tok] {
			negateUntil = i + negationWindow
			continue
		}
		if f, ok := intensifiers[tok]; ok {
			boost = f
			continue
		}

		p, ok := polarity[tok]
		if !ok {
			boost = 1.0
			continue
		}

		p *= boost
		boost = 1.0
		if i <= negateUntil {
			p = -p
			negateUntil = -1
		}

		sum += p
		hits++
	}

	if hits == 0 {
		return 0
	}

	score := sum / float64(hits)

	// Exclamation marks sharpen whatever polarity is present.
	if strings.Contains(text, "!") && score != 0 {
		score *= 1.1
	}

	return clamp(score, -1, 1)
}

// LabelFor maps a continuous score onto a label using two symmetric thresholds
// around zero: strictly above positive → positive, strictly below negative →
// negative, else neutral.
func LabelFor(score, positiveThreshold, negativeThreshold float64) Label {
	switch {
	case score > positiveThreshold:
		return LabelPositive
	case score < negativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// tokenize lowercases and splits text, stripping punctuation from token edges
// and apostrophes from contractions ("don't" → "dont").
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, "'", "")
		f = strings.ReplaceAll(f, "’", "")
		f = strings.Trim(f, ".,!?;:\"()[]")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
