package dataset

import (
	"math/rand/v2"
	"time"

	"github.com/Veraticus/newscheck/internal/model"
)

// DefaultSamples is the size of a generated corpus.
const DefaultSamples = 1000

// GenerateOptions controls synthetic corpus generation.
type GenerateOptions struct {
	// Now anchors article dates; zero means time.Now().
	Now     time.Time
	Samples int
	Seed    uint64
}

type pool struct {
	titles   []string
	contents []string
	sources  []string
}

var fakePool = pool{
	titles: []string{
		"Breaking: Secret government conspiracy exposed",
		"Scientists discover miracle cure hidden by Big Pharma",
		"New study shows vaccines cause autism",
		"Celebrity reveals shocking truth about illuminati",
		"Aliens spotted near major cities worldwide",
		"Historic discovery: Ancient pyramids built by aliens",
		"Shocking video proves flat earth theory",
		"5G towers cause COVID-19 pandemic",
		"Hollywood stars part of secret pedophile ring",
		"Water fluoridation is mind control",
		"Moon landing was fake, NASA admits",
		"Reptilians control world governments",
	},
	contents: []string{
		"According to anonymous sources, the government has been hiding the truth",
		"Multiple conspiracy theories suggest...",
		"Unverified reports claim that...",
		"Alleged leaked documents show...",
		"Common rumors suggest...",
		"Based on speculation and hearsay...",
		"Internet claims that...",
		"Social media posts indicate...",
	},
	sources: []string{"RedditTruth", "ConspiracyDaily", "AlternativeNews", "TruthBombs", "HiddenReality"},
}

var realPool = pool{
	titles: []string{
		"New AI breakthrough improves healthcare diagnostics",
		"Stock market reaches all-time high",
		"Scientists develop renewable energy solution",
		"University research shows climate change impact",
		"Tech company announces new product line",
		"Global GDP growth expected this quarter",
		"Medical team completes successful surgery",
		"New infrastructure project begins construction",
		"Education reform bill passes parliament",
		"International trade agreement reaches agreement",
		"Space agency launches new satellite mission",
		"Public health initiative proves effective",
	},
	contents: []string{
		"According to peer-reviewed research published in...",
		"Official government records show that...",
		"Scientific studies conducted by universities demonstrate...",
		"Published data from credible sources indicates...",
		"Documented facts show that...",
		"Verified reports from news agencies confirm...",
		"Official statistics compiled by authorities show...",
		"Research institutions worldwide have confirmed...",
	},
	sources: []string{"Reuters", "BBC", "AP News", "The Guardian", "NPR", "Bloomberg", "CNN"},
}

// Generate builds a balanced synthetic corpus: Samples/2 real articles followed
// by Samples/2 fake ones, dated within the year before Now.
func Generate(opts GenerateOptions) []model.Article {
	if opts.Samples <= 0 {
		opts.Samples = DefaultSamples
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	today := time.Date(opts.Now.Year(), opts.Now.Month(), opts.Now.Day(), 0, 0, 0, 0, time.UTC)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed+1)) //nolint:gosec // synthetic data
	half := opts.Samples / 2
	articles := make([]model.Article, 0, 2*half)

	emit := func(p pool, label model.Label) {
		for range half {
			articles = append(articles, model.Article{
				Title:   p.titles[rng.IntN(len(p.titles))],
				Content: p.contents[rng.IntN(len(p.contents))],
				Source:  p.sources[rng.IntN(len(p.sources))],
				Date:    today.AddDate(0, 0, -rng.IntN(366)),
				Label:   label,
			})
		}
	}
	emit(realPool, model.LabelReal)
	emit(fakePool, model.LabelFake)

	return articles
}
