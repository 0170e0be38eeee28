package vlm

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"duplex/internal/config"
	"duplex/internal/logging"
)

type fakeRenderer struct {
	failPages map[int]bool
	rendered  []int
}

func (f *fakeRenderer) RenderPage(_ context.Context, _ string, page int) ([]byte, error) {
	f.rendered = append(f.rendered, page)
	if f.failPages[page] {
		return nil, errors.New("render failed")
	}
	return []byte(fmt.Sprintf("png-%d", page)), nil
}

type fakeClassifier struct {
	byPage map[int]string
	err    error
}

func (f *fakeClassifier) ClassifyPage(_ context.Context, image []byte) (PageVerdict, error) {
	if f.err != nil {
		return PageVerdict{}, f.err
	}
	var page int
	fmt.Sscanf(string(image), "png-%d", &page)
	lang, ok := f.byPage[page]
	if !ok {
		return PageVerdict{}, errors.New("unexpected page")
	}
	return PageVerdict{Language: lang, Confidence: 0.9}, nil
}

func TestSamplePages(t *testing.T) {
	cases := []struct {
		pages   int
		samples int
		want    []int
	}{
		{pages: 2, samples: 3, want: []int{1, 2}},
		{pages: 3, samples: 3, want: []int{1, 2, 3}},
		{pages: 10, samples: 3, want: []int{1, 5, 10}},
		{pages: 100, samples: 3, want: []int{1, 50, 100}},
		{pages: 9, samples: 1, want: []int{1}},
		{pages: 0, samples: 3, want: nil},
	}
	for _, tc := range cases {
		got := SamplePages(tc.pages, tc.samples)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("SamplePages(%d, %d) = %v, want %v", tc.pages, tc.samples, got, tc.want)
		}
		again := SamplePages(tc.pages, tc.samples)
		if !reflect.DeepEqual(got, again) {
			t.Fatalf("SamplePages(%d, %d) not deterministic: %v vs %v", tc.pages, tc.samples, got, again)
		}
	}
}

func TestProbeMajorityVote(t *testing.T) {
	renderer := &fakeRenderer{}
	classifier := &fakeClassifier{byPage: map[int]string{1: "zh", 5: "zh", 10: "en"}}
	prober := NewProber(classifier, renderer, config.Probe{SamplePages: 3}, logging.NewNop())

	report, err := prober.Probe(context.Background(), "/tmp/doc.pdf", 10)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if report.Votes["zh"] != 2 || report.Votes["en"] != 1 {
		t.Fatalf("votes = %v", report.Votes)
	}
	if !report.Dominates("zh") {
		t.Fatal("zh should dominate with 2 of 3 votes")
	}
	if report.Dominates("en") {
		t.Fatal("en should not dominate")
	}
}

func TestReportTieCountsForQueriedLanguage(t *testing.T) {
	report := Report{Votes: map[string]int{"zh": 1, "en": 1}, Sampled: 2}
	if !report.Dominates("zh") {
		t.Fatal("tie should count for the queried language")
	}
	if !report.Dominates("en") {
		t.Fatal("tie should count for the queried language")
	}
	if report.Dominates("de") {
		t.Fatal("language with zero votes never dominates")
	}
}

func TestProbeDropsFailedPages(t *testing.T) {
	renderer := &fakeRenderer{failPages: map[int]bool{5: true}}
	classifier := &fakeClassifier{byPage: map[int]string{1: "en", 10: "en"}}
	prober := NewProber(classifier, renderer, config.Probe{SamplePages: 3}, logging.NewNop())

	report, err := prober.Probe(context.Background(), "/tmp/doc.pdf", 10)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if report.Votes["en"] != 2 {
		t.Fatalf("votes = %v, want en:2", report.Votes)
	}
}

func TestProbeErrorsWhenNoVerdict(t *testing.T) {
	renderer := &fakeRenderer{}
	classifier := &fakeClassifier{err: errors.New("api down")}
	prober := NewProber(classifier, renderer, config.Probe{SamplePages: 3}, logging.NewNop())

	if _, err := prober.Probe(context.Background(), "/tmp/doc.pdf", 10); err == nil {
		t.Fatal("expected error when every sample fails")
	}
}
