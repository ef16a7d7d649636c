package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"aroma-assistant-be/internal/constant"
	"aroma-assistant-be/internal/pkg/logger"
	"aroma-assistant-be/internal/repository/memory"
	"aroma-assistant-be/pkg/catalog"
	"aroma-assistant-be/pkg/llm"
	"aroma-assistant-be/pkg/rag/index"
	"aroma-assistant-be/pkg/rag/responder"
	"aroma-assistant-be/pkg/store"
)

// ReformulatePrompt turns a fuzzy lookup query into a best-guess target item
const ReformulatePrompt = `Determine which essential oil best fits the customer's request and reply with its name and the key terms describing it, nothing else.`

// Sender delivers plain-text replies to a user. The transport adapter owns
// chunking and any presentation escaping.
type Sender interface {
	Send(ctx context.Context, userID string, text string) error
}

// Commands are the verbatim, case-sensitive token spellings for this
// deployment.
type Commands struct {
	Greeting string
	Lookup   string
	Mixture  string
	Cancel   string
}

// IDialogueService routes one normalized inbound text event per call
type IDialogueService interface {
	HandleText(ctx context.Context, userID, text string) error
}

// dialogueService is the per-user dialogue state machine. It multiplexes the
// information-lookup flow, the mixture builder and the open-domain branch
// over one message stream, consulting the session store on every turn.
//
// Session state is only mutated after the turn's external calls have
// succeeded, so a failed turn leaves the user exactly where they were.
type dialogueService struct {
	sessions  *memory.SessionRepository
	idx       index.KnowledgeIndex // nil when the knowledge base failed to load
	cat       *catalog.Catalog
	llm       llm.LLMProvider
	responder responder.OpenDomainResponder
	sender    Sender
	commands  Commands
	logger    logger.ILogger

	similarityThreshold float64
	lookupReformulate   bool
}

func NewDialogueService(
	sessions *memory.SessionRepository,
	idx index.KnowledgeIndex,
	cat *catalog.Catalog,
	llmProvider llm.LLMProvider,
	openDomain responder.OpenDomainResponder,
	sender Sender,
	commands Commands,
	similarityThreshold float64,
	lookupReformulate bool,
	sysLogger logger.ILogger,
) IDialogueService {
	return &dialogueService{
		sessions:            sessions,
		idx:                 idx,
		cat:                 cat,
		llm:                 llmProvider,
		responder:           openDomain,
		sender:              sender,
		commands:            commands,
		similarityThreshold: similarityThreshold,
		lookupReformulate:   lookupReformulate,
		logger:              sysLogger,
	}
}

func (s *dialogueService) HandleText(ctx context.Context, userID, text string) error {
	text = strings.TrimSpace(text)
	mode, _ := s.sessions.Get(userID)

	s.logger.Debug("dialogue", "inbound turn", map[string]interface{}{
		"user_id": userID,
		"mode":    mode.String(),
	})

	// Commands win over any mode
	switch text {
	case s.commands.Greeting:
		return s.sender.Send(ctx, userID, constant.MsgGreeting)
	case s.commands.Lookup:
		return s.startLookup(ctx, userID)
	case s.commands.Mixture:
		return s.startMixture(ctx, userID)
	case s.commands.Cancel:
		return s.cancel(ctx, userID, mode)
	}

	switch mode {
	case store.ModeAwaitingItemName:
		return s.handleLookupQuery(ctx, userID, text)
	case store.ModeAwaitingNextItemOrStop:
		return s.handleItemSelection(ctx, userID, text)
	case store.ModeAwaitingQuantity:
		return s.handleQuantity(ctx, userID, text)
	default:
		return s.handleOpenDomain(ctx, userID, text)
	}
}

// --- Commands ---

func (s *dialogueService) startLookup(ctx context.Context, userID string) error {
	s.sessions.SetMode(userID, store.ModeAwaitingItemName)
	return s.sender.Send(ctx, userID, constant.MsgLookupPrompt)
}

// startMixture explicitly discards any mixture already in progress rather
// than silently keeping or dropping it, then opens a fresh accumulator.
func (s *dialogueService) startMixture(ctx context.Context, userID string) error {
	_, mixture := s.sessions.Get(userID)
	if mixture != nil && (len(mixture.Lines) > 0 || mixture.PendingItem != "") {
		s.sessions.DiscardMixture(userID)
		if err := s.sender.Send(ctx, userID, constant.MsgMixtureDiscarded); err != nil {
			return err
		}
	}
	s.sessions.StartMixture(userID)
	s.sessions.SetMode(userID, store.ModeAwaitingNextItemOrStop)
	return s.sender.Send(ctx, userID, constant.MsgMixturePrompt)
}

func (s *dialogueService) cancel(ctx context.Context, userID string, mode store.Mode) error {
	if mode != store.ModeNone {
		s.sessions.Clear(userID)
	}
	return s.sender.Send(ctx, userID, constant.MsgCancelled)
}

// --- Information lookup ---

func (s *dialogueService) handleLookupQuery(ctx context.Context, userID, text string) error {
	if s.idx == nil {
		return s.sender.Send(ctx, userID, constant.MsgSearchUnavailable)
	}

	query := strings.ToLower(text)

	scored, err := s.idx.SearchTopWithScore(ctx, query, 1)
	if err != nil {
		return s.failTurn(ctx, userID, "lookup search", err)
	}

	var reply string
	if len(scored) > 0 && scored[0].Distance < s.similarityThreshold {
		reply = fmt.Sprintf("Information about %s: %s", query, scored[0].Document.Content)
	} else {
		// The direct hit was not close enough; run a second query, either
		// reformulated by the model or on the raw input.
		target := query
		if s.lookupReformulate {
			target, err = llm.Ask(ctx, s.llm, ReformulatePrompt, query)
			if err != nil {
				return s.failTurn(ctx, userID, "lookup reformulation", err)
			}
		}
		docs, err := s.idx.SearchTop(ctx, target, 1)
		if err != nil {
			return s.failTurn(ctx, userID, "lookup fallback search", err)
		}
		if len(docs) == 0 {
			reply = constant.MsgItemNotFound
		} else {
			reply = fmt.Sprintf("The closest match for %s: %s", query, docs[0].Content)
		}
	}

	s.sessions.Clear(userID)
	return s.sender.Send(ctx, userID, reply)
}

// --- Mixture builder ---

func (s *dialogueService) handleItemSelection(ctx context.Context, userID, text string) error {
	if text == constant.MixtureStopToken {
		total, lines := s.sessions.TakeSnapshotAndClear(userID)
		return s.sender.Send(ctx, userID, mixtureSummary(lines, total, true))
	}

	entry, ok := s.cat.Lookup(text)
	if !ok {
		// Stay in the same state; no accumulator is touched
		return s.sender.Send(ctx, userID, constant.MsgItemNotFound)
	}

	s.sessions.SetPending(userID, entry.Name)
	s.sessions.SetMode(userID, store.ModeAwaitingQuantity)
	return s.sender.Send(ctx, userID, fmt.Sprintf("%s — %s", entry.Name, constant.MsgQuantityPrompt))
}

func (s *dialogueService) handleQuantity(ctx context.Context, userID, text string) error {
	compact := strings.ReplaceAll(text, " ", "")
	drops, err := strconv.Atoi(compact)
	if err != nil || drops < 0 {
		return s.sender.Send(ctx, userID, constant.MsgQuantityInvalid)
	}

	_, mixture := s.sessions.Get(userID)
	pending := ""
	if mixture != nil {
		pending = mixture.PendingItem
	}

	// PricePerDrop returns 0 when the item vanished from the catalog
	cost := float64(drops) * s.cat.PricePerDrop(pending)

	s.sessions.AddLine(userID, fmt.Sprintf("%s, %d drops", pending, drops), cost)
	s.sessions.SetMode(userID, store.ModeAwaitingNextItemOrStop)

	_, mixture = s.sessions.Get(userID)
	reply := mixtureSummary(mixture.Lines, mixture.RunningTotal, false)
	return s.sender.Send(ctx, userID, reply)
}

func mixtureSummary(lines []string, total float64, final bool) string {
	var b strings.Builder
	if final {
		b.WriteString("Your mixture is ready:\n")
	} else {
		b.WriteString("Added. Your mixture so far:\n")
	}
	for _, line := range lines {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total cost: %d", int(math.Floor(total)))
	if !final {
		b.WriteString("\n")
		b.WriteString(constant.MsgMixturePrompt)
	}
	return b.String()
}

// --- Open domain ---

func (s *dialogueService) handleOpenDomain(ctx context.Context, userID, text string) error {
	reply, err := s.responder.Respond(ctx, userID, text)
	if err != nil {
		if err == responder.ErrIndexUnavailable {
			return s.sender.Send(ctx, userID, constant.MsgSearchUnavailable)
		}
		return s.failTurn(ctx, userID, "open-domain answer", err)
	}
	return s.sender.Send(ctx, userID, reply)
}

// failTurn reports a failed external call to the user and surfaces the error
// to the dispatcher. Session state has not been touched at this point.
func (s *dialogueService) failTurn(ctx context.Context, userID, stage string, err error) error {
	s.logger.Error("dialogue", "turn failed", map[string]interface{}{
		"user_id": userID,
		"stage":   stage,
		"error":   err.Error(),
	})
	if sendErr := s.sender.Send(ctx, userID, constant.MsgGenericFailure); sendErr != nil {
		return fmt.Errorf("%s: %w (and reply failed: %v)", stage, err, sendErr)
	}
	return fmt.Errorf("%s: %w", stage, err)
}
