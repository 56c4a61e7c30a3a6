package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/questline-backend/internal/config"
	"github.com/questline/questline-backend/internal/domain"
	"github.com/questline/questline-backend/pkg/cache"
)

func questionItem(id int64, title, body string) domain.ContentItem {
	return domain.ContentItem{
		Ref:   domain.ContentRef{Type: domain.ContentTypeQuestion, ID: id},
		Title: title,
		Body:  body,
	}
}

func newLocalService() *InterlinkService {
	return NewInterlinkService(config.DefaultScoring(), nil, nil, 0)
}

func TestSuggestInterlinks_BaseScore(t *testing.T) {
	svc := newLocalService()

	// source carries 3 tokens, target 4, 2 shared: 2*80/3 = 53
	source := questionItem(1, "alpha bravo charlie", "")
	target := questionItem(2, "alpha bravo delta echoes", "")

	out := svc.SuggestInterlinks(source, []domain.ContentItem{target}, 10)
	require.Len(t, out, 1)
	assert.Equal(t, 53, out[0].RelevanceScore)
	assert.Equal(t, 0, out[0].TitleBonus)
	assert.Equal(t, target.Title, out[0].AnchorText)
	assert.Equal(t, 0.53, out[0].CombinedScore)
}

func TestSuggestInterlinks_TitleBonus(t *testing.T) {
	svc := newLocalService()

	// same 2-of-3 overlap, plus the source title contained in the
	// target title: 53 + 20 = 73
	source := questionItem(1, "alpha", "bravo charlie")
	target := questionItem(2, "alpha quartz", "bravo zonked")

	out := svc.SuggestInterlinks(source, []domain.ContentItem{target}, 10)
	require.Len(t, out, 1)
	assert.Equal(t, 73, out[0].RelevanceScore)
	assert.Equal(t, 20, out[0].TitleBonus)
}

func TestSuggestInterlinks_BelowThresholdDropped(t *testing.T) {
	svc := newLocalService()

	// 1 of 3 shared tokens: 80/3 = 26, under the generic threshold
	source := questionItem(1, "alpha bravo charlie", "")
	weak := questionItem(2, "alpha quartz zonked", "")

	out := svc.SuggestInterlinks(source, []domain.ContentItem{weak}, 10)
	assert.Empty(t, out)
}

func TestSuggestInterlinks_ShortTokensIgnored(t *testing.T) {
	svc := newLocalService()

	// every word at or under the minimum length tokenizes to nothing,
	// so the pair has no denominator and scores zero
	source := questionItem(1, "the cat sat", "on a mat")
	target := questionItem(2, "the cat sat", "on a mat")

	out := svc.SuggestInterlinks(source, []domain.ContentItem{target}, 10)
	assert.Empty(t, out)
}

func TestSuggestInterlinks_ExcludesSelf(t *testing.T) {
	svc := newLocalService()

	source := questionItem(1, "alpha bravo charlie", "")
	self := questionItem(1, "alpha bravo charlie", "")

	out := svc.SuggestInterlinks(source, []domain.ContentItem{self}, 10)
	assert.Empty(t, out)
}

func TestSuggestInterlinks_DeterministicOrder(t *testing.T) {
	svc := newLocalService()

	source := questionItem(1, "alpha bravo charlie", "")
	full := questionItem(5, "charlie alpha bravo", "")
	tied1 := questionItem(9, "alpha bravo delta echoes", "")
	tied2 := questionItem(3, "alpha bravo faxed golfs", "")

	out := svc.SuggestInterlinks(source, []domain.ContentItem{tied1, full, tied2}, 10)
	require.Len(t, out, 3)
	assert.Equal(t, int64(5), out[0].Target.ID)
	// equal scores break ties on lower target id
	assert.Equal(t, int64(3), out[1].Target.ID)
	assert.Equal(t, int64(9), out[2].Target.ID)
}

func TestSuggestInterlinks_LimitApplied(t *testing.T) {
	svc := newLocalService()

	source := questionItem(1, "alpha bravo charlie", "")
	candidates := []domain.ContentItem{
		questionItem(2, "charlie alpha bravo", ""),
		questionItem(3, "charlie alpha bravo", ""),
		questionItem(4, "charlie alpha bravo", ""),
	}

	out := svc.SuggestInterlinks(source, candidates, 2)
	assert.Len(t, out, 2)
}

func TestSuggestInterlinksAugmented_CombinedScore(t *testing.T) {
	source := questionItem(1, "alpha bravo charlie", "some longer question text")
	target := questionItem(2, "charlie alpha bravo", "") // local score 80

	augment := func(_ context.Context, _ domain.ContentItem, _ []domain.ContentItem) ([]AugmentResult, error) {
		return []AugmentResult{{
			Target:              target.Ref,
			AnchorText:          "alpha bravo",
			SemanticSimilarity:  0.9,
			UserIntentAlignment: 0.8,
			SeoImpact:           0.5,
		}}, nil
	}
	svc := NewInterlinkService(config.DefaultScoring(), nil, augment, time.Second)

	out := svc.SuggestInterlinksAugmented(context.Background(), source, []domain.ContentItem{target}, 10)
	require.Len(t, out, 1)
	assert.Equal(t, 80, out[0].RelevanceScore)
	assert.Equal(t, "alpha bravo", out[0].AnchorText)
	// 0.8*0.6 + 0.9*0.15 + 0.8*0.15 + 0.5*0.1
	assert.InDelta(t, 0.785, out[0].CombinedScore, 1e-9)
}

func TestSuggestInterlinksAugmented_AnchorMustBeVerbatim(t *testing.T) {
	source := questionItem(1, "alpha bravo charlie", "")
	target := questionItem(2, "charlie alpha bravo", "")

	augment := func(_ context.Context, _ domain.ContentItem, _ []domain.ContentItem) ([]AugmentResult, error) {
		return []AugmentResult{{
			Target:     target.Ref,
			AnchorText: "phrase the source never says",
		}}, nil
	}
	svc := NewInterlinkService(config.DefaultScoring(), nil, augment, time.Second)

	out := svc.SuggestInterlinksAugmented(context.Background(), source, []domain.ContentItem{target}, 10)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSuggestInterlinksAugmented_HigherThreshold(t *testing.T) {
	// 73 clears the generic bar but not the augmented one
	source := questionItem(1, "alpha", "bravo charlie")
	target := questionItem(2, "alpha quartz", "bravo zonked")

	augment := func(_ context.Context, _ domain.ContentItem, _ []domain.ContentItem) ([]AugmentResult, error) {
		return []AugmentResult{{Target: target.Ref, AnchorText: "alpha"}}, nil
	}
	svc := NewInterlinkService(config.DefaultScoring(), nil, augment, time.Second)

	out := svc.SuggestInterlinksAugmented(context.Background(), source, []domain.ContentItem{target}, 10)
	assert.Empty(t, out)

	local := svc.SuggestInterlinks(source, []domain.ContentItem{target}, 10)
	assert.Len(t, local, 1)
}

func TestSuggestInterlinksAugmented_FailureReturnsEmpty(t *testing.T) {
	source := questionItem(1, "alpha bravo charlie", "")
	target := questionItem(2, "charlie alpha bravo", "")

	augment := func(_ context.Context, _ domain.ContentItem, _ []domain.ContentItem) ([]AugmentResult, error) {
		return nil, errors.New("upstream rejected the request")
	}
	svc := NewInterlinkService(config.DefaultScoring(), nil, augment, time.Second)

	out := svc.SuggestInterlinksAugmented(context.Background(), source, []domain.ContentItem{target}, 10)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSuggestInterlinksAugmented_TimeoutFallsBackToLocal(t *testing.T) {
	source := questionItem(1, "alpha bravo charlie", "")
	target := questionItem(2, "charlie alpha bravo", "")

	augment := func(ctx context.Context, _ domain.ContentItem, _ []domain.ContentItem) ([]AugmentResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	svc := NewInterlinkService(config.DefaultScoring(), nil, augment, 10*time.Millisecond)

	out := svc.SuggestInterlinksAugmented(context.Background(), source, []domain.ContentItem{target}, 10)
	require.Len(t, out, 1)
	// local path: anchor is the target title, no external sub-scores
	assert.Equal(t, target.Title, out[0].AnchorText)
	assert.Equal(t, 80, out[0].RelevanceScore)
	assert.Equal(t, 0.8, out[0].CombinedScore)
}

func TestSuggestInterlinksAugmented_ResultCached(t *testing.T) {
	source := questionItem(1, "alpha bravo charlie", "")
	target := questionItem(2, "charlie alpha bravo", "")

	calls := 0
	augment := func(_ context.Context, _ domain.ContentItem, _ []domain.ContentItem) ([]AugmentResult, error) {
		calls++
		return []AugmentResult{{Target: target.Ref, AnchorText: "alpha bravo", SemanticSimilarity: 1}}, nil
	}
	svc := NewInterlinkService(config.DefaultScoring(), cache.NewMemory(), augment, time.Second)

	first := svc.SuggestInterlinksAugmented(context.Background(), source, []domain.ContentItem{target}, 10)
	require.Len(t, first, 1)
	second := svc.SuggestInterlinksAugmented(context.Background(), source, []domain.ContentItem{target}, 10)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second call must be served from cache")
}

func TestSuggestInterlinksAugmented_CandidateEditMissesCache(t *testing.T) {
	source := questionItem(1, "alpha bravo charlie", "")
	target := questionItem(2, "charlie alpha bravo", "")

	calls := 0
	augment := func(_ context.Context, _ domain.ContentItem, cands []domain.ContentItem) ([]AugmentResult, error) {
		calls++
		return []AugmentResult{{Target: cands[0].Ref, AnchorText: "alpha bravo", SemanticSimilarity: 1}}, nil
	}
	svc := NewInterlinkService(config.DefaultScoring(), cache.NewMemory(), augment, time.Second)

	_ = svc.SuggestInterlinksAugmented(context.Background(), source, []domain.ContentItem{target}, 10)
	require.Equal(t, 1, calls)

	// same ref, new text: the cached scores no longer describe it
	target.Body = "a rewritten body about alpha bravo charlie topics"
	_ = svc.SuggestInterlinksAugmented(context.Background(), source, []domain.ContentItem{target}, 10)
	assert.Equal(t, 2, calls, "edited candidate must be rescored, not served stale")
}

func TestNewInterlinkService_KeepsCustomScoring(t *testing.T) {
	// a deliberately customized config with a zero MinTokenLen keeps
	// every token and its own thresholds
	custom := config.DefaultScoring()
	custom.MinTokenLen = 0
	custom.GenericThreshold = 10

	svc := NewInterlinkService(custom, nil, nil, 0)

	source := questionItem(1, "the cat sat", "on a mat")
	target := questionItem(2, "the cat sat", "on a mat")

	out := svc.SuggestInterlinks(source, []domain.ContentItem{target}, 10)
	require.Len(t, out, 1, "short tokens must count under the custom config")
	assert.Equal(t, 100, out[0].RelevanceScore)
}

func TestNewInterlinkService_ZeroConfigGetsDefaults(t *testing.T) {
	svc := NewInterlinkService(config.ScoringConfig{}, nil, nil, 0)

	source := questionItem(1, "the cat sat", "on a mat")
	target := questionItem(2, "the cat sat", "on a mat")

	out := svc.SuggestInterlinks(source, []domain.ContentItem{target}, 10)
	assert.Empty(t, out, "default minimum token length filters short words")
}

func TestSuggestInterlinksAugmented_NilAugmentUsesLocal(t *testing.T) {
	source := questionItem(1, "alpha bravo charlie", "")
	target := questionItem(2, "charlie alpha bravo", "")

	svc := NewInterlinkService(config.DefaultScoring(), nil, nil, 0)

	out := svc.SuggestInterlinksAugmented(context.Background(), source, []domain.ContentItem{target}, 10)
	require.Len(t, out, 1)
	assert.Equal(t, target.Title, out[0].AnchorText)
}
