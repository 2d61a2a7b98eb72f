package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Vovarama1992/orderbot/internal/ai"
	"github.com/Vovarama1992/orderbot/internal/menu"
	"github.com/Vovarama1992/orderbot/internal/metrics"
)

const (
	replyStateKept       = "\n(Your previous order state is maintained.)"
	replyExtractionMiss  = "Sorry, I couldn't update the order state. Please try rephrasing your request."
	replyMalformed       = "Internal error: AI returned improperly formatted order data (%v)."
	replySchemaViolation = "Internal error: AI returned invalid order data (%v)."
	replyEmpty           = "Sorry, I didn't get a response just now. Please try again."
	replyServerError     = "Sorry, an unexpected server error occurred. Please try again later."
	replyBlocked         = "Request blocked by AI safety filter: %s"

	noteSaveFailed  = " (Note: There was an issue saving the order to the database.)"
	noteStoreAbsent = " (Note: Order could not be saved to database due to connection issue.)"
)

type service struct {
	repo       Repo
	ai         ai.AI
	outbound   Outbound
	catalog    *menu.Catalog
	reconciler *Reconciler
	metrics    *metrics.Registry

	strict bool
	now    func() time.Time
	newID  func() string
}

type Option func(*service)

func WithMetrics(m *metrics.Registry) Option { return func(s *service) { s.metrics = m } }

// WithStrictMenu rejects proposed items that are not in the catalog.
func WithStrictMenu(strict bool) Option { return func(s *service) { s.strict = strict } }

func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

func WithIDGenerator(f func() string) Option { return func(s *service) { s.newID = f } }

// NewService wires a turn orchestrator. repo and outbound may be nil:
// without a repo finalized orders are reported as unsaved.
func NewService(repo Repo, aiClient ai.AI, outbound Outbound, catalog *menu.Catalog, opts ...Option) Service {
	s := &service{
		repo:     repo,
		ai:       aiClient,
		outbound: outbound,
		catalog:  catalog,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}
	s.reconciler = NewReconciler(catalog, s.strict)
	return s
}

func (s *service) HandleTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	log.Println("========== NEW TURN ==========")
	log.Printf("[svc] message=%q", short(req.Message))

	inbound, outcome, err := ParseOrDefault(req.Context, EmptyState())
	if err != nil {
		log.Printf("[svc] inbound context %s, using empty order: %v", outcome, err)
	}
	inbound, _ = Repair(inbound)
	// a client cannot claim a finalized order
	inbound.IsFinalized = false

	prompt := Compose(s.catalog.RenderForPrompt(), inbound, req.Message)

	start := time.Now()
	raw, err := s.ai.GetReply(ctx, prompt)
	s.metrics.GenerationSec.Observe(time.Since(start).Seconds())
	if err != nil {
		return s.generationFailed(inbound, err)
	}

	ex := Extract(raw)
	if !ex.Found {
		log.Printf("[svc] %v: %s", ErrExtractionMiss, short(raw))
		s.metrics.Turn(metrics.OutcomeExtractionMiss)
		return fallback(inbound, replyExtractionMiss), nil
	}

	rec, err := s.reconciler.Reconcile(ex.Fragment)
	if err != nil {
		log.Printf("[svc] fragment rejected: %v | fragment=%s", err, short(ex.Fragment))
		if errors.Is(err, ErrMalformedData) {
			s.metrics.Turn(metrics.OutcomeMalformed)
			return fallback(inbound, fmt.Sprintf(replyMalformed, err)), nil
		}
		s.metrics.Turn(metrics.OutcomeSchemaViolation)
		return fallback(inbound, fmt.Sprintf(replySchemaViolation, err)), nil
	}
	if rec.SubtotalRepaired {
		s.metrics.SubtotalRepairs.Inc()
	}

	reply := ex.Reply
	if rec.State.IsFinalized {
		log.Printf("[svc] order finalized: items=%v subtotal=%.2f", rec.State.ItemNames(), rec.State.Subtotal)
		reply += s.persist(ctx, rec.State)
		s.metrics.Turn(metrics.OutcomeFinalized)
	} else {
		s.metrics.Turn(metrics.OutcomeOK)
	}

	return TurnResult{Reply: reply, State: rec.State}, nil
}

func (s *service) generationFailed(inbound OrderState, err error) (TurnResult, error) {
	var blocked *ai.BlockedError
	switch {
	case errors.As(err, &blocked):
		log.Printf("[svc] generation blocked: %v", err)
		s.metrics.Turn(metrics.OutcomeBlocked)
		return TurnResult{Reply: fmt.Sprintf(replyBlocked, blocked.Message), State: inbound}, err
	case errors.Is(err, ai.ErrBlocked):
		s.metrics.Turn(metrics.OutcomeBlocked)
		return TurnResult{Reply: fmt.Sprintf(replyBlocked, "Blocked by safety filter."), State: inbound}, err
	case errors.Is(err, ai.ErrEmptyReply):
		log.Println("[svc] generation returned empty text")
		s.metrics.Turn(metrics.OutcomeEmpty)
		return TurnResult{Reply: replyEmpty, State: inbound}, nil
	default:
		log.Printf("[svc] generation error: %v", err)
		s.metrics.Turn(metrics.OutcomeGenerationError)
		return TurnResult{Reply: replyServerError, State: inbound}, nil
	}
}

// persist never fails the turn; the returned note is appended to the reply.
func (s *service) persist(ctx context.Context, st OrderState) string {
	if s.repo == nil {
		log.Println("[svc] order store not configured, finalized order not saved")
		s.metrics.OrderSaveFailures.Inc()
		return noteStoreAbsent
	}

	rec := NewRecord(st, s.newID(), s.now())
	id, err := s.repo.SaveOrder(ctx, rec)
	if err != nil {
		log.Printf("[svc] save order error: %v", err)
		s.metrics.OrderSaveFailures.Inc()
		return noteSaveFailed
	}
	rec.ID = id
	s.metrics.OrdersSaved.Inc()
	log.Printf("[svc] order saved id=%s", id)

	if s.outbound != nil {
		if err := s.outbound.PublishFinalized(ctx, rec); err != nil {
			log.Printf("[svc] publish order id=%s error: %v", id, err)
		}
	}
	return ""
}

func fallback(prior OrderState, msg string) TurnResult {
	return TurnResult{Reply: msg + replyStateKept, State: prior}
}

const logSnippetBytes = 180

// short trims s for log lines without splitting a rune.
func short(s string) string {
	if len(s) <= logSnippetBytes {
		return s
	}
	cut := logSnippetBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
