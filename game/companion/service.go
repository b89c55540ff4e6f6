package companion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kasuganosora/lifeos/game/action"
	"github.com/kasuganosora/lifeos/game/store"
	"github.com/kasuganosora/lifeos/model"
	"go.uber.org/zap"
)

const (
	ChatErrorText       = "Sorry, I encountered an error. Please try again."
	AnalyzingText       = "AI is analyzing your entry..."
	AnalysisFailedText  = "AI analysis failed. Please try again."
	PlanUnreadableText  = "The quest plan could not be read."
	analyzeChronicleKey = "analyzeChronicle"
)

var (
	ErrAnalysisFailed = errors.New("companion: analysis failed")
	ErrNoPlan         = errors.New("companion: message carries no quest plan")
)

// Service runs assistant conversations against a player's store. Failures
// of the assistant never reach the store as errors; they become toasts and
// fallback text.
type Service struct {
	companion Companion
	env       func() action.Env
	logger    *zap.Logger
	newID     func() string
}

// NewService wires c. env supplies the handler environment of each call.
func NewService(c Companion, env func() action.Env, logger *zap.Logger) *Service {
	return &Service{companion: c, env: env, logger: logger, newID: uuid.NewString}
}

// Chat appends the user's message and a loading placeholder to the
// transcript, asks the assistant and replaces the placeholder with its
// answer. It returns the final assistant message.
func (svc *Service) Chat(ctx context.Context, d *store.Dispatcher, message, screen string) (model.AIMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return model.AIMessage{}, fmt.Errorf("companion: empty message")
	}
	st := d.Store()
	if _, err := st.Apply(store.UpsertAIMessage{Message: model.AIMessage{ID: svc.newID(), Sender: model.SenderUser, Text: message}}); err != nil {
		return model.AIMessage{}, err
	}
	placeholder := model.AIMessage{ID: svc.newID(), Sender: model.SenderAI, IsLoading: true}
	if _, err := st.Apply(store.UpsertAIMessage{Message: placeholder}); err != nil {
		return model.AIMessage{}, err
	}

	c := BuildContext(st.Snapshot(), screen)
	reply, err := svc.ask(ctx, message, c)
	out := model.AIMessage{ID: placeholder.ID, Sender: model.SenderAI, Text: reply.Text, Plan: reply.Plan}
	switch {
	case err != nil && reply.Text == "":
		svc.logger.Warn("companion chat failed", zap.Error(err))
		out.Text = ChatErrorText
		d.Notify(model.ToastError, ChatErrorText)
	case err != nil:
		svc.logger.Info("companion plan rejected", zap.Error(err))
		d.Notify(model.ToastError, PlanUnreadableText)
	}
	if _, err := st.Apply(store.UpsertAIMessage{Message: out}); err != nil {
		return out, err
	}
	return out, nil
}

// ask calls the assistant and re-validates any plan it returns, whatever
// its implementation.
func (svc *Service) ask(ctx context.Context, prompt string, c Context) (reply Reply, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply, err = Reply{}, fmt.Errorf("companion panicked: %v", r)
		}
	}()
	reply, err = svc.companion.Ask(ctx, prompt, c)
	if err != nil || reply.Plan == nil {
		return reply, err
	}
	plan, perr := sanitize(planEnvelope{
		IsQuestPlan:      true,
		QuestName:        reply.Plan.Name,
		QuestDescription: reply.Plan.Description,
		QuestPurpose:     reply.Plan.Purpose,
		Objectives:       reply.Plan.Objectives,
	})
	if perr != nil {
		return Reply{Text: reply.Text}, perr
	}
	reply.Plan = &plan
	return reply, nil
}

// AnalyzeChronicle has the assistant grade entry and saves it with the
// awarded wisdom. An unusable grade only produces an error toast.
func (svc *Service) AnalyzeChronicle(ctx context.Context, d *store.Dispatcher, entry string) (uint64, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return svc.submit(ctx, d, model.ChronicleInput{})
	}
	release := d.Hold(analyzeChronicleKey)
	defer release()
	d.Notify(model.ToastInfo, AnalyzingText)

	c := BuildContext(d.Store().Snapshot(), "")
	c.Mode = ModeAnalysis
	reply, err := svc.ask(ctx, AnalysisPrompt(entry, c), c)
	var a Analysis
	if err == nil {
		a, err = ParseAnalysis(reply.Text)
	}
	if err != nil {
		svc.logger.Warn("chronicle analysis failed", zap.Error(err))
		d.Notify(model.ToastError, AnalysisFailedText)
		return d.Store().Version(), fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	return svc.submit(ctx, d, model.ChronicleInput{Content: entry, Summary: a.Summary, Wisdom: a.Wisdom})
}

func (svc *Service) submit(ctx context.Context, d *store.Dispatcher, in model.ChronicleInput) (uint64, error) {
	return d.Do(ctx, "submitChronicle", "submit_chronicle", store.Pure(func(s *model.GameState) model.Patch {
		return action.SubmitChronicleEntry(s, svc.env(), in)
	}))
}

// AcceptPlan turns the plan attached to a transcript message into a quest
// through the ordinary add-quest handler.
func (svc *Service) AcceptPlan(ctx context.Context, d *store.Dispatcher, messageID string) (uint64, error) {
	var plan *model.QuestPlan
	d.Store().Read(func(s *model.GameState) {
		for _, m := range s.AIConversation {
			if m.ID == messageID && m.Plan != nil {
				plan = m.Clone().Plan
			}
		}
	})
	if plan == nil {
		return 0, ErrNoPlan
	}
	return d.Do(ctx, "addQuest", "add_quest_from_plan", store.Pure(func(s *model.GameState) model.Patch {
		return action.AddQuestFromPlan(s, svc.env(), *plan, "")
	}))
}
