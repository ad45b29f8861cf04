package vectorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"Breaking: Secret government conspiracy exposed",
	"Aliens spotted near major cities worldwide",
	"Stock market reaches all-time high",
	"Official government records show growth",
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "ascii with stop words and short tokens",
			input: "The SECRET  of a Government-run program, x y 42!",
			want:  []string{"secret", "government", "run", "program", "42"},
		},
		{
			name:  "accented latin",
			input: "Naïve café réfugiés",
			want:  []string{"naïve", "café", "réfugiés"},
		},
		{
			name:  "cyrillic",
			input: "Москва новости правительство",
			want:  []string{"москва", "новости", "правительство"},
		},
		{
			name:  "cjk",
			input: "東京 ニュース",
			want:  []string{"東京", "ニュース"},
		},
		{
			name:  "underscores join words",
			input: "breaking_news é",
			want:  []string{"breaking_news"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestVectorizer_NonASCIIText(t *testing.T) {
	v := New(0)
	require.NoError(t, v.Fit([]string{
		"Москва новости правительство",
		"Naïve café réfugiés",
	}))
	assert.Contains(t, v.Terms(), "новости")
	assert.Contains(t, v.Terms(), "café")

	vec, err := v.Transform("Новости из Москвы")
	require.NoError(t, err)
	assert.Equal(t, 1, vec.Len())
	assert.InDelta(t, 1.0, vec.Norm(), 1e-12)
}

func TestVectorizer_TransformBeforeFit(t *testing.T) {
	v := New(0)
	_, err := v.Transform("anything at all")
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestVectorizer_FitVocabulary(t *testing.T) {
	v := New(0)
	require.NoError(t, v.Fit(corpus))

	terms := v.Terms()
	assert.Contains(t, terms, "government")
	assert.NotContains(t, terms, "the")
	assert.IsIncreasing(t, terms)
	assert.Equal(t, len(terms), v.Dim())
}

func TestVectorizer_MaxFeaturesKeepsMostFrequent(t *testing.T) {
	v := New(1)
	require.NoError(t, v.Fit(corpus))
	assert.Equal(t, []string{"government"}, v.Terms())
}

func TestVectorizer_TransformNormalised(t *testing.T) {
	v := New(0)
	require.NoError(t, v.Fit(corpus))

	vec, err := v.Transform("secret government conspiracy")
	require.NoError(t, err)
	assert.Equal(t, 3, vec.Len())
	assert.InDelta(t, 1.0, vec.Norm(), 1e-12)
	assert.IsIncreasing(t, vec.Indices)
}

func TestVectorizer_UnseenTermsIgnored(t *testing.T) {
	v := New(0)
	require.NoError(t, v.Fit(corpus))

	vec, err := v.Transform("completely unrelated vocabulary")
	require.NoError(t, err)
	assert.Equal(t, 0, vec.Len())
	assert.Equal(t, v.Dim(), vec.Dim)
}

func TestVectorizer_CaseAndWhitespaceInsensitive(t *testing.T) {
	v := New(0)
	require.NoError(t, v.Fit(corpus))

	a, err := v.Transform("Secret   Government\tCONSPIRACY")
	require.NoError(t, err)
	b, err := v.Transform("secret government conspiracy")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestVectorizer_RarerTermsWeighMore(t *testing.T) {
	v := New(0)
	require.NoError(t, v.Fit(corpus))

	vec, err := v.Transform("government aliens")
	require.NoError(t, err)
	dense := vec.Dense()
	idxGov := indexOf(v.Terms(), "government")
	idxAliens := indexOf(v.Terms(), "aliens")
	assert.Greater(t, dense[idxAliens], dense[idxGov])
}

func TestVectorizer_StateRoundTrip(t *testing.T) {
	v := New(0)
	require.NoError(t, v.Fit(corpus))

	restored, err := FromState(v.State())
	require.NoError(t, err)

	want, _ := v.Transform("aliens exposed government")
	got, err := restored.Transform("aliens exposed government")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFromState_Invalid(t *testing.T) {
	_, err := FromState(State{})
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = FromState(State{Terms: []string{"a", "b"}, IDF: []float64{1}})
	assert.Error(t, err)

	_, err = FromState(State{Terms: []string{"aa", "aa"}, IDF: []float64{1, 1}})
	assert.Error(t, err)
}

func TestFit_OnlyStopWords(t *testing.T) {
	v := New(0)
	assert.Error(t, v.Fit([]string{"the and of", "a an"}))
	assert.Error(t, v.Fit(nil))
}

func indexOf(terms []string, term string) int {
	for i, t := range terms {
		if t == term {
			return i
		}
	}
	return -1
}
