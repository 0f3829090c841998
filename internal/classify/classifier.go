package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"curator/internal/catalog"
	"curator/internal/config"
	"curator/internal/extract"
	"curator/internal/heuristics"
	"curator/internal/inference"
	"curator/internal/logging"
	"curator/internal/services"
	"curator/internal/taxonomy"
)

// reviewFloor is the 0-5 confidence below which a proposal is flagged for
// manual review even when classification succeeded.
const reviewFloor = 2.5

// missingContentCap is the highest confidence a proposal may carry when the
// file's content could not be extracted.
const missingContentCap = 2

// hintAgreementBoost rewards a model answer that lands on the same category
// the keyword heuristics suggested.
const hintAgreementBoost = 0.5

// Classifier produces a proposal for one item. Heuristics run first; the
// inference backend is only consulted when the heuristic score stays under
// the skip threshold. Every item gets exactly one proposal, falling back to
// the configured category when nothing better is available.
type Classifier struct {
	registry      *taxonomy.Registry
	engine        *heuristics.Engine
	backend       inference.Backend
	limiter       *rate.Limiter
	fallback      string
	skipThreshold float64
	maxChars      int
	logger        *slog.Logger
}

// New builds a classifier. backend may be nil, in which case heuristics and
// the fallback category cover everything.
func New(cfg *config.Config, registry *taxonomy.Registry, backend inference.Backend, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	var limiter *rate.Limiter
	if cfg.Inference.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Inference.RequestsPerSecond), 1)
	}
	return &Classifier{
		registry:      registry,
		engine:        heuristics.New(registry),
		backend:       backend,
		limiter:       limiter,
		fallback:      cfg.Taxonomy.FallbackCategory,
		skipThreshold: cfg.Heuristics.SkipThreshold,
		maxChars:      cfg.Inference.MaxContentChars,
		logger:        logger.With(logging.String(logging.FieldComponent, "classify")),
	}
}

// Classify evaluates one item and returns the proposal to record. The error
// return is reserved for context cancellation and unrecoverable configuration
// problems; every other failure mode degrades to a reviewable proposal. When
// content extraction fails the item still proceeds, but the resulting
// confidence is capped and the proposal is flagged for review.
func (c *Classifier) Classify(ctx context.Context, item *catalog.Item) (catalog.Proposal, error) {
	content, extracted := c.extractContent(item)

	proposal, err := c.classify(ctx, item, content)
	if err != nil {
		return catalog.Proposal{}, err
	}
	if !extracted {
		proposal = capMissingContent(proposal)
	}
	return proposal, nil
}

func (c *Classifier) classify(ctx context.Context, item *catalog.Item, content string) (catalog.Proposal, error) {
	candidate, matched := c.engine.Evaluate(heuristics.Input{
		Filename:   item.Filename,
		SourcePath: item.SourcePath,
		Content:    content,
	})
	if matched && candidate.Confidence >= c.skipThreshold {
		return c.heuristicProposal(item, candidate), nil
	}

	if c.backend == nil {
		return c.degradedProposal(item, candidate, matched, "no inference backend configured"), nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return catalog.Proposal{}, err
		}
	}

	hint := ""
	if matched {
		hint = candidate.Path
	}
	result, err := c.backend.Classify(ctx, inference.Request{
		Filename:   item.Filename,
		SourcePath: item.SourcePath,
		Content:    content,
		Hint:       hint,
		Categories: c.registry.PromptOutline(),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return catalog.Proposal{}, err
		}
		if !services.Recoverable(err) {
			// A misconfigured backend fails every item the same way.
			return catalog.Proposal{}, err
		}
		c.logger.Warn("inference failed",
			logging.String(logging.FieldItemID, item.ID),
			logging.Error(err))
		return c.degradedProposal(item, candidate, matched, "inference failed: "+err.Error()), nil
	}

	node, known := c.registry.Resolve(result.Category)
	if !known {
		// The model invented a category. Never trust the rest of the answer.
		c.logger.Warn("backend proposed unknown category",
			logging.String(logging.FieldItemID, item.ID),
			logging.String(logging.FieldCategory, result.Category))
		return c.fallbackProposal(item, fmt.Sprintf("model proposed unknown category %q", result.Category)), nil
	}

	return c.inferenceProposal(item, node, result, hint), nil
}

func (c *Classifier) extractContent(item *catalog.Item) (string, bool) {
	content, err := extract.Text(item.SourcePath, c.maxChars)
	if err != nil {
		if !errors.Is(err, extract.ErrUnsupportedFormat) {
			c.logger.Debug("content extraction failed",
				logging.String(logging.FieldItemID, item.ID),
				logging.Error(err))
		}
		return "", false
	}
	return content, true
}

func (c *Classifier) heuristicProposal(item *catalog.Item, candidate heuristics.Candidate) catalog.Proposal {
	node, _ := c.registry.Resolve(candidate.Path)
	return catalog.Proposal{
		Path:        candidate.Path,
		Subpath:     sanitizeSubpath(candidate.Subpath),
		Filename:    taxonomy.RenderFilename(node, item.Filename, candidate.Components),
		Confidence:  candidate.Confidence,
		Method:      catalog.MethodHeuristic,
		Reason:      candidate.Reason,
		NeedsReview: candidate.Confidence < reviewFloor,
	}
}

func (c *Classifier) inferenceProposal(item *catalog.Item, node *taxonomy.Node, result inference.Result, hint string) catalog.Proposal {
	confidence := result.Confidence01 * 5
	reason := result.Reason
	if hint != "" && hint == node.Path {
		// Independent keyword evidence agrees with the model.
		confidence += hintAgreementBoost
		if confidence > 5 {
			confidence = 5
		}
		reason = strings.TrimSpace(reason + "; keyword analysis agrees")
	}
	filename := taxonomy.SanitizeFilename(result.Filename)
	if filename == "" {
		filename = taxonomy.RenderFilename(node, item.Filename, nil)
	}
	return catalog.Proposal{
		Path:        node.Path,
		Subpath:     sanitizeSubpath(result.Subpath),
		Filename:    filename,
		Confidence:  confidence,
		Method:      catalog.MethodInference,
		Reason:      reason,
		NeedsReview: confidence < reviewFloor,
	}
}

// capMissingContent keeps a proposal made without file content out of
// auto-approval range. The category survives; a reviewer decides.
func capMissingContent(proposal catalog.Proposal) catalog.Proposal {
	if proposal.Confidence > missingContentCap {
		proposal.Confidence = missingContentCap
	}
	proposal.NeedsReview = true
	proposal.Reason = strings.TrimSpace(strings.TrimPrefix(
		proposal.Reason+"; no content extracted", "; "))
	return proposal
}

// degradedProposal covers backend failure and backend absence: a below-
// threshold heuristic candidate still beats the fallback category.
func (c *Classifier) degradedProposal(item *catalog.Item, candidate heuristics.Candidate, matched bool, note string) catalog.Proposal {
	if matched {
		proposal := c.heuristicProposal(item, candidate)
		proposal.NeedsReview = true
		proposal.Reason = strings.TrimSpace(proposal.Reason + "; " + note)
		return proposal
	}
	return c.fallbackProposal(item, note)
}

func (c *Classifier) fallbackProposal(item *catalog.Item, reason string) catalog.Proposal {
	return catalog.Proposal{
		Path:        c.fallback,
		Filename:    taxonomy.SanitizeFilename(item.Filename),
		Confidence:  0,
		Method:      catalog.MethodFallback,
		Reason:      reason,
		NeedsReview: true,
	}
}

// sanitizeSubpath cleans each segment and keeps the tree shallow.
func sanitizeSubpath(subpath string) string {
	if subpath == "" {
		return ""
	}
	var cleaned []string
	for _, segment := range strings.Split(subpath, "/") {
		segment = taxonomy.SanitizeFilename(segment)
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		cleaned = append(cleaned, segment)
		if len(cleaned) == 2 {
			break
		}
	}
	return strings.Join(cleaned, "/")
}
