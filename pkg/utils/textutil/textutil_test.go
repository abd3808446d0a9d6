package textutil_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/veracity/pkg/utils/textutil"
)

func TestTokenize(t *testing.T) {
	tokens := textutil.Tokenize("I'm feeling, quite anxious today!")
	gt.Equal(t, tokens, []string{"i", "m", "feeling", "quite", "anxious", "today"})
}

func TestJaccard(t *testing.T) {
	gt.Equal(t, textutil.Jaccard("", ""), 0.0)
	gt.Equal(t, textutil.Jaccard("sleep trouble", "sleep trouble"), 1.0)
	gt.Equal(t, textutil.Jaccard("alpha beta", "gamma delta"), 0.0)

	// {a,b,c} vs {b,c,d}: 2 shared of 4 distinct.
	gt.Equal(t, textutil.Jaccard("a b c", "b c d"), 0.5)
}

func TestOverlapRatio(t *testing.T) {
	// All of the shorter text's tokens appear in the longer one.
	gt.Equal(t, textutil.OverlapRatio("sleep trouble", "I have sleep trouble every night"), 1.0)
	gt.Equal(t, textutil.OverlapRatio("", "anything"), 0.0)
}

func TestSplitSentences(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  int
	}{
		{"simple", "First one. Second one. Third one.", 3},
		{"mixed terminators", "Really? Yes! Good.", 3},
		{"no terminator", "trailing fragment without punctuation", 1},
		{"empty", "", 0},
		{"quoted", `He said "stop." Then left.`, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.A(t, textutil.SplitSentences(tc.input)).Length(tc.want)
		})
	}
}

func TestNGrams(t *testing.T) {
	grams := textutil.NGrams("i hear you are dealing with stress", 4)
	gt.A(t, grams).Length(4)
	gt.Equal(t, grams[0], "i hear you are")

	gt.A(t, textutil.NGrams("too short", 4)).Length(0)
}
