package usecase

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"LookupBot/internal/classifier"
	"LookupBot/internal/domain"
	"LookupBot/internal/ports"
	"LookupBot/internal/render"
)

const defaultHistoryLimit = 10

// BotDeps wires the collaborators of the chat handler. Repository and Assistant are optional.
type BotDeps struct {
	Retriever    *Retriever
	Messenger    ports.Messenger
	Repository   ports.Repository
	Assistant    *Assistant
	Metrics      ports.Metrics
	Logger       *slog.Logger
	HistoryLimit int
}

// Bot turns inbound chat messages into menu replies, lookups and assistant answers.
type Bot struct {
	retriever    *Retriever
	messenger    ports.Messenger
	repository   ports.Repository
	assistant    *Assistant
	metrics      ports.Metrics
	logger       *slog.Logger
	historyLimit int
}

// NewBot constructs the chat handler.
func NewBot(deps BotDeps) *Bot {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	limit := deps.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bot{
		retriever:    deps.Retriever,
		messenger:    deps.Messenger,
		repository:   deps.Repository,
		assistant:    deps.Assistant,
		metrics:      metrics,
		logger:       logger,
		historyLimit: limit,
	}
}

// Handle processes one inbound message. It never panics and always answers the user.
func (b *Bot) Handle(ctx context.Context, msg domain.Message) {
	log := b.logger.With("request_id", uuid.NewString(), "user_id", msg.From.ID, "chat_id", msg.ChatID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panic", "panic", r, "stack", string(debug.Stack()))
			b.send(ctx, log, msg.ChatID, render.ErrorText, render.BackMenu())
		}
	}()

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if b.repository != nil {
		if err := b.repository.UpsertUser(ctx, msg.From); err != nil {
			log.Warn("upsert user failed", "error", err)
		}
	}

	cmd, args := splitCommand(text)
	switch {
	case cmd == "/start":
		b.send(ctx, log, msg.ChatID, render.Greeting(), render.MainMenu())
	case cmd == "/help":
		b.send(ctx, log, msg.ChatID, render.Help(), render.BackMenu())
	case render.IsButton(text):
		b.press(ctx, log, msg, text)
	case cmd == "/history":
		b.showHistory(ctx, log, msg)
	case cmd == "/stats":
		b.showStats(ctx, log, msg)
	case cmd == "/ai":
		b.ask(ctx, log, msg, args)
	case cmd == "/clear":
		b.clear(ctx, log, msg)
	default:
		b.search(ctx, log, msg, text)
	}
}

// press answers a main-menu keyboard button.
func (b *Bot) press(ctx context.Context, log *slog.Logger, msg domain.Message, button string) {
	switch button {
	case render.ButtonSearch:
		b.send(ctx, log, msg.ChatID, render.SearchPrompt(), render.BackMenu())
	case render.ButtonInfo:
		b.send(ctx, log, msg.ChatID, render.ProjectInfo(), render.BackMenu())
	case render.ButtonMain:
		b.send(ctx, log, msg.ChatID, render.BackToMainText, render.MainMenu())
	case render.ButtonHistory:
		b.showHistory(ctx, log, msg)
	case render.ButtonStats:
		b.showStats(ctx, log, msg)
	}
}

func (b *Bot) search(ctx context.Context, log *slog.Logger, msg domain.Message, text string) {
	started := time.Now()

	statusID, err := b.messenger.Send(ctx, msg.ChatID, render.AnalyzingText, nil)
	if err != nil {
		log.Error("send status failed", "error", err)
		return
	}
	if err := b.messenger.Typing(ctx, msg.ChatID); err != nil {
		log.Debug("typing indicator failed", "error", err)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("search panic", "query", text, "panic", r, "stack", string(debug.Stack()))
			b.edit(ctx, log, msg.ChatID, statusID, render.ErrorText)
			b.send(ctx, log, msg.ChatID, render.TryAnotherText, render.BackMenu())
		}
	}()

	intent := classifier.Classify(text)
	log = log.With("kind", intent.Kind)
	log.Info("query classified", "query", text, "terms", intent.Terms)
	b.metrics.Query(intent.Kind)

	record := b.recorder(ctx, log, b.recordQuery(ctx, log, msg.From.ID, text, intent.Kind))
	b.edit(ctx, log, msg.ChatID, statusID, render.Status(intent))

	var (
		answer string
		found  bool
	)
	switch intent.Kind {
	case domain.IntentDifference:
		left, right := intent.Pair()
		cmp := b.retriever.Difference(ctx, left, right, record)
		answer, found = render.Comparison(cmp), cmp.Left.Result != nil || cmp.Right.Result != nil
	case domain.IntentHistory:
		res := b.retriever.History(ctx, intent.Term(), record)
		answer, found = render.History(intent.Term(), res), res != nil
	default:
		term := intent.Term()
		notify := func(step string) {
			b.edit(ctx, log, msg.ChatID, statusID, render.Progress(step, term))
		}
		res := b.retriever.GeneralWithDeadline(ctx, term, record, notify)
		answer, found = render.Answer(res), res != nil
	}

	b.metrics.AnswerDuration(intent.Kind, time.Since(started))
	log.Info("query answered", "found", found, "elapsed", time.Since(started))

	b.edit(ctx, log, msg.ChatID, statusID, answer)
	if found {
		b.send(ctx, log, msg.ChatID, render.MoreText, render.BackMenu())
	} else {
		b.send(ctx, log, msg.ChatID, render.RetryText, render.BackMenu())
	}
}

func (b *Bot) recordQuery(ctx context.Context, log *slog.Logger, userID int64, text string, kind domain.IntentKind) int64 {
	if b.repository == nil {
		return 0
	}
	id, err := b.repository.RecordQuery(ctx, userID, text, kind)
	if err != nil {
		log.Warn("record query failed", "error", err)
		return 0
	}
	return id
}

func (b *Bot) recorder(ctx context.Context, log *slog.Logger, queryID int64) Recorder {
	if b.repository == nil || queryID == 0 {
		return nil
	}
	return func(res domain.SourceResult) {
		err := b.repository.RecordResult(ctx, domain.ResultRecord{
			QueryID: queryID,
			Source:  res.Source,
			Title:   res.Title,
			Summary: res.Body,
			URL:     res.URL,
		})
		if err != nil {
			log.Warn("record result failed", "source", res.Source, "error", err)
		}
	}
}

func (b *Bot) showHistory(ctx context.Context, log *slog.Logger, msg domain.Message) {
	if b.repository == nil {
		b.send(ctx, log, msg.ChatID, render.UnavailableText, render.BackMenu())
		return
	}
	records, err := b.repository.History(ctx, msg.From.ID, b.historyLimit)
	if err != nil {
		log.Error("load history failed", "error", err)
		b.send(ctx, log, msg.ChatID, render.UnavailableText, render.BackMenu())
		return
	}
	b.send(ctx, log, msg.ChatID, render.SearchHistory(records), render.BackMenu())
}

func (b *Bot) showStats(ctx context.Context, log *slog.Logger, msg domain.Message) {
	if b.repository == nil {
		b.send(ctx, log, msg.ChatID, render.UnavailableText, render.BackMenu())
		return
	}
	stats, err := b.repository.Stats(ctx, msg.From.ID)
	if err != nil {
		log.Error("load stats failed", "error", err)
		b.send(ctx, log, msg.ChatID, render.UnavailableText, render.BackMenu())
		return
	}
	b.send(ctx, log, msg.ChatID, render.Stats(stats), render.BackMenu())
}

func (b *Bot) ask(ctx context.Context, log *slog.Logger, msg domain.Message, question string) {
	if b.assistant == nil {
		b.send(ctx, log, msg.ChatID, render.AssistantOffText, render.BackMenu())
		return
	}
	if question == "" {
		b.send(ctx, log, msg.ChatID, render.AssistantUsage, render.BackMenu())
		return
	}

	statusID, err := b.messenger.Send(ctx, msg.ChatID, render.ThinkingText, nil)
	if err != nil {
		log.Error("send status failed", "error", err)
		return
	}
	if err := b.messenger.Typing(ctx, msg.ChatID); err != nil {
		log.Debug("typing indicator failed", "error", err)
	}

	reply, err := b.assistant.Ask(ctx, msg.From.ID, question)
	if err != nil {
		log.Error("assistant failed", "error", err)
		b.edit(ctx, log, msg.ChatID, statusID, render.AssistantFailText)
		return
	}
	b.edit(ctx, log, msg.ChatID, statusID, render.AssistantReply(reply))
}

func (b *Bot) clear(ctx context.Context, log *slog.Logger, msg domain.Message) {
	if b.assistant == nil {
		b.send(ctx, log, msg.ChatID, render.AssistantOffText, render.BackMenu())
		return
	}
	b.assistant.Clear(msg.From.ID)
	b.send(ctx, log, msg.ChatID, render.ClearedText, render.BackMenu())
}

func (b *Bot) send(ctx context.Context, log *slog.Logger, chatID int64, text string, keyboard domain.Keyboard) {
	if _, err := b.messenger.Send(ctx, chatID, text, keyboard); err != nil {
		log.Error("send message failed", "error", err)
	}
}

// edit replaces the status message; when that fails the text is sent as a new message.
func (b *Bot) edit(ctx context.Context, log *slog.Logger, chatID, messageID int64, text string) {
	err := b.messenger.Edit(ctx, chatID, messageID, text)
	if err == nil {
		return
	}
	log.Warn("edit message failed", "message_id", messageID, "error", err)
	b.send(ctx, log, chatID, text, nil)
}

// splitCommand returns the lower-cased command (without a @bot suffix) and its argument text.
func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	cmd, args := text, ""
	if i := strings.IndexAny(text, " \t\n"); i > 0 {
		cmd, args = text[:i], text[i+1:]
	}
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(args)
}
