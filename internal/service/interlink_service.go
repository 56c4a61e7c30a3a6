package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/questline/questline-backend/internal/config"
	"github.com/questline/questline-backend/internal/domain"
	"github.com/questline/questline-backend/pkg/cache"
	"github.com/questline/questline-backend/pkg/logger"
)

// AugmentResult is one candidate's externally-proposed anchor text and
// auxiliary sub-scores, each in [0, 1]
type AugmentResult struct {
	Target              domain.ContentRef `json:"target"`
	AnchorText          string            `json:"anchor_text"`
	SemanticSimilarity  float64           `json:"semantic_similarity"`
	UserIntentAlignment float64           `json:"user_intent_alignment"`
	SeoImpact           float64           `json:"seo_impact"`
}

// AugmentFunc is the injected external text-generation call. The
// engine invokes it but never implements it.
type AugmentFunc func(ctx context.Context, source domain.ContentItem, candidates []domain.ContentItem) ([]AugmentResult, error)

// InterlinkService scores and ranks candidate content pairs for
// interlinking. External augmentation is best-effort: failures degrade
// to local-only or empty results, never to an error for the caller.
type InterlinkService struct {
	scoring config.ScoringConfig
	cache   cache.Service
	augment AugmentFunc
	timeout time.Duration
	group   singleflight.Group
}

// NewInterlinkService creates a new InterlinkService. cacheService and
// augment may be nil; the service then skips memoization and the
// augmented path degrades to local scoring.
func NewInterlinkService(scoring config.ScoringConfig, cacheService cache.Service, augment AugmentFunc, timeout time.Duration) *InterlinkService {
	// only a fully zero config falls back to defaults; a caller that
	// sets any field keeps the rest, zeroes included
	if scoring == (config.ScoringConfig{}) {
		scoring = config.DefaultScoring()
	}
	return &InterlinkService{
		scoring: scoring,
		cache:   cacheService,
		augment: augment,
		timeout: timeout,
	}
}

// tokenize lower-cases the text and keeps tokens longer than the
// configured minimum; short function words fall out by length, not by
// dictionary
func (s *InterlinkService) tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if utf8.RuneCountInString(tok) > s.scoring.MinTokenLen {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// scorePair computes the lexical relevance score and title bonus for
// one (source, target) pair
func (s *InterlinkService) scorePair(source, target domain.ContentItem) (score, titleBonus int) {
	srcTokens := s.tokenize(source.Title + " " + source.Body)
	tgtTokens := s.tokenize(target.Title + " " + target.Body)

	denom := len(srcTokens)
	if len(tgtTokens) < denom {
		denom = len(tgtTokens)
	}

	base := 0
	if denom > 0 {
		matches := 0
		for tok := range srcTokens {
			if _, ok := tgtTokens[tok]; ok {
				matches++
			}
		}
		base = matches * 80 / denom
	}

	srcTitle := strings.ToLower(source.Title)
	tgtTitle := strings.ToLower(target.Title)
	if srcTitle != "" && tgtTitle != "" &&
		(strings.Contains(srcTitle, tgtTitle) || strings.Contains(tgtTitle, srcTitle)) {
		titleBonus = 20
	}

	score = base + titleBonus
	if score > 100 {
		score = 100
	}
	return score, titleBonus
}

func (s *InterlinkService) limit(limit int) int {
	if limit <= 0 {
		return s.scoring.DefaultLimit
	}
	return limit
}

// sortSuggestions orders by combined score, then raw score, then
// title bonus, then lower target id, so results are reproducible
func sortSuggestions(out []domain.InterlinkSuggestion) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CombinedScore != out[j].CombinedScore {
			return out[i].CombinedScore > out[j].CombinedScore
		}
		if out[i].RelevanceScore != out[j].RelevanceScore {
			return out[i].RelevanceScore > out[j].RelevanceScore
		}
		if out[i].TitleBonus != out[j].TitleBonus {
			return out[i].TitleBonus > out[j].TitleBonus
		}
		return out[i].Target.ID < out[j].Target.ID
	})
}

// SuggestInterlinks ranks candidates by lexical relevance alone.
// Candidates below the generic threshold are dropped; the rest are
// sorted deterministically and capped at limit.
func (s *InterlinkService) SuggestInterlinks(source domain.ContentItem, candidates []domain.ContentItem, limit int) []domain.InterlinkSuggestion {
	var out []domain.InterlinkSuggestion
	for _, cand := range candidates {
		if cand.Ref == source.Ref {
			continue
		}
		score, bonus := s.scorePair(source, cand)
		if score < s.scoring.GenericThreshold {
			continue
		}
		out = append(out, domain.InterlinkSuggestion{
			Target:         cand.Ref,
			TargetTitle:    cand.Title,
			AnchorText:     cand.Title,
			RelevanceScore: score,
			TitleBonus:     bonus,
			CombinedScore:  float64(score) / 100,
		})
	}

	sortSuggestions(out)
	if max := s.limit(limit); len(out) > max {
		out = out[:max]
	}
	return out
}

// SuggestInterlinksAugmented ranks candidates using the external
// augmentation call on top of local scoring. A proposed anchor text
// must occur verbatim in the source text or the suggestion is dropped
// no matter how well the external call scored it. On timeout the
// engine falls back to local-only scoring; on any other failure it
// returns an empty list.
func (s *InterlinkService) SuggestInterlinksAugmented(ctx context.Context, source domain.ContentItem, candidates []domain.ContentItem, limit int) []domain.InterlinkSuggestion {
	log := logger.WithComponent("interlink")
	max := s.limit(limit)

	params := s.cacheParams(source, candidates, max)
	if s.cache != nil && s.cache.IsAvailable() {
		var cached []domain.InterlinkSuggestion
		if err := s.cache.Get(ctx, cache.NSInterlink, params, &cached); err == nil {
			return cached
		}
	}

	key := cache.BuildKey(cache.NSInterlink, params)
	result, err, _ := s.group.Do(key, func() (any, error) {
		return s.computeAugmented(ctx, source, candidates, max), nil
	})
	if err != nil {
		// computeAugmented never errors; belt and braces
		log.Warn().Err(err).Msg("augmented suggestion computation failed")
		return []domain.InterlinkSuggestion{}
	}

	out := result.([]domain.InterlinkSuggestion)
	if s.cache != nil && len(out) > 0 {
		if err := s.cache.Set(ctx, cache.NSInterlink, params, out, cache.TTLRanking); err != nil {
			log.Warn().Err(err).Msg("failed to cache interlink suggestions")
		}
	}
	return out
}

// cacheParams keys on the content of both sides, not just ids, so an
// edited candidate misses the cache instead of serving stale scores
func (s *InterlinkService) cacheParams(source domain.ContentItem, candidates []domain.ContentItem, limit int) map[string]any {
	var b strings.Builder
	for _, cand := range candidates {
		fmt.Fprintf(&b, "%s:%d:%s;", cand.Ref.Type, cand.Ref.ID, cache.Fingerprint(cand.Title+cand.Body))
	}
	return map[string]any{
		"source":     fmt.Sprintf("%s:%d:%s", source.Ref.Type, source.Ref.ID, cache.Fingerprint(source.Title+source.Body)),
		"candidates": cache.Fingerprint(b.String()),
		"limit":      limit,
	}
}

func (s *InterlinkService) computeAugmented(ctx context.Context, source domain.ContentItem, candidates []domain.ContentItem, max int) []domain.InterlinkSuggestion {
	log := logger.WithComponent("interlink")

	if s.augment == nil {
		return s.sliceLocal(source, candidates, max)
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	results, err := s.augment(callCtx, source, candidates)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			// Interlinking is an enhancement; a slow augmentation call
			// downgrades to the local path instead of failing the request
			log.Warn().Err(err).Msg("augmentation timed out, falling back to local scoring")
			return s.sliceLocal(source, candidates, max)
		}
		log.Warn().Err(err).Msg("augmentation call failed")
		return []domain.InterlinkSuggestion{}
	}

	byRef := make(map[domain.ContentRef]domain.ContentItem, len(candidates))
	for _, cand := range candidates {
		byRef[cand.Ref] = cand
	}
	sourceText := source.Title + " " + source.Body

	var out []domain.InterlinkSuggestion
	for _, res := range results {
		cand, ok := byRef[res.Target]
		if !ok || res.AnchorText == "" {
			log.Debug().Str("anchor", res.AnchorText).Msg("augmentation result discarded")
			continue
		}
		// Local verification overrides the external signal
		if !strings.Contains(sourceText, res.AnchorText) {
			log.Debug().Str("anchor", res.AnchorText).Msg("anchor text not present verbatim in source")
			continue
		}

		score, bonus := s.scorePair(source, cand)
		if score < s.scoring.AugmentedThreshold {
			continue
		}

		combined := float64(score)/100*s.scoring.RelevanceWeight +
			res.SemanticSimilarity*s.scoring.SemanticWeight +
			res.UserIntentAlignment*s.scoring.IntentWeight +
			res.SeoImpact*s.scoring.SeoWeight

		out = append(out, domain.InterlinkSuggestion{
			Target:         cand.Ref,
			TargetTitle:    cand.Title,
			AnchorText:     res.AnchorText,
			RelevanceScore: score,
			TitleBonus:     bonus,
			CombinedScore:  combined,
		})
	}

	sortSuggestions(out)
	if len(out) > max {
		out = out[:max]
	}
	if out == nil {
		out = []domain.InterlinkSuggestion{}
	}
	return out
}

func (s *InterlinkService) sliceLocal(source domain.ContentItem, candidates []domain.ContentItem, max int) []domain.InterlinkSuggestion {
	out := s.SuggestInterlinks(source, candidates, max)
	if out == nil {
		out = []domain.InterlinkSuggestion{}
	}
	return out
}
