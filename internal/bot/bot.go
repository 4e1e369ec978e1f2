package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"training-log/internal/clock"
	"training-log/internal/config"
	"training-log/internal/errs"
	"training-log/internal/model"
	"training-log/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageExercise
	stageCount
	stageSets
	stageWeight
	stageDate
)

const (
	cbChartPrefix     = "chart:"
	cbDeleteRecPrefix = "rdel:"
	cbDeleteExPrefix  = "exdel:"
	cbMoveUpPrefix    = "exup:"
	cbMoveDownPrefix  = "exdn:"
)

const (
	btnKeepLast     = "⏭️ Keep last"
	btnNoWeight     = "Bodyweight"
	btnToday        = "Today"
	btnYesterday    = "Yesterday"
	btnConfirm      = "✅ Confirm"
	btnCancel       = "↩️ Cancel"
	btnCancelDialog = "⏪ Cancel entry"

	menuLabelLog       = "➕ Log training"
	menuLabelChart     = "📊 Chart"
	menuLabelHistory   = "📒 History"
	menuLabelExercises = "🏋️ Exercises"
	menuLabelExport    = "📤 Export"
	menuLabelHelp      = "ℹ️ Help"

	historyLimit = 15
)

// colorPalette backs /addex calls that leave the color out.
var colorPalette = []string{
	"#ef4444", "#f97316", "#f59e0b", "#84cc16", "#10b981",
	"#06b6d4", "#3b82f6", "#6366f1", "#8b5cf6", "#f65cee",
}

type conversationState struct {
	stage   conversationStage
	input   service.RecordInput
	prefill *model.TrainingRecord
}

type confirmationAction int

const (
	actionDeleteRecord confirmationAction = iota
	actionDeleteExercise
)

type confirmationRequest struct {
	action confirmationAction
	id     string
	label  string
}

// Bot aggregates the Telegram API with the training-log services. All
// business rules live below it; this layer only routes updates and formats
// replies.
type Bot struct {
	api           *tgbotapi.BotAPI
	catalog       *service.CatalogService
	records       *service.RecordService
	reports       *service.ReportService
	exports       *service.ExportService
	clock         clock.Clock
	config        *config.Config
	logger        *zap.Logger
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

func New(
	token string,
	catalog *service.CatalogService,
	records *service.RecordService,
	reports *service.ReportService,
	exports *service.ExportService,
	clk clock.Clock,
	cfg *config.Config,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:           api,
		catalog:       catalog,
		records:       records,
		reports:       reports,
		exports:       exports,
		clock:         clk,
		config:        cfg,
		logger:        logger,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.logger.Error("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.logger.Error("handle message", zap.Error(err))
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Entry cancelled. Pick something from the menu when ready.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.logger.Info("command",
			zap.Int64("from", msg.From.ID),
			zap.String("command", msg.Command()),
		)
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Use /log to record training or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "log":
		return b.startLogConversation(ctx, msg)
	case "chart":
		return b.sendChart(ctx, msg.Chat.ID, service.PeriodWeek, 0)
	case "history":
		return b.sendHistory(ctx, msg.Chat.ID)
	case "exercises":
		return b.sendExerciseList(ctx, msg.Chat.ID)
	case "addex":
		return b.handleAddExercise(ctx, msg)
	case "renameex":
		return b.handleRenameExercise(ctx, msg)
	case "export":
		return b.handleExport(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Entry cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I keep your training log.</b>\n\nCommands:\n"+
			"• /log — record a training set\n"+
			"• /chart — weekly load chart\n"+
			"• /history — recent records\n"+
			"• /exercises — manage the exercise list\n"+
			"• /export — download history as CSV\n"+
			"• /help — details\n"+
			"• /cancel — abort the current entry",
		escape(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Help</b>\n" +
		"• /log — record training step by step; answers are pre-filled from your last set of the same exercise\n" +
		"• /chart — stacked load chart; use the buttons to switch week/month and page into the past\n" +
		"• /history — recent records with delete buttons\n" +
		"• /exercises — reorder or remove exercises\n" +
		"• /addex <code>name #a1b2c3</code> — add an exercise (color optional)\n" +
		"• /renameex <code>old | new</code> — rename an exercise; history follows the new name\n" +
		"• /export — full history as a CSV file\n" +
		"• /cancel — abort the current entry"
	return b.sendText(msg.Chat.ID, text)
}

// --- record entry conversation ---

func (b *Bot) startLogConversation(ctx context.Context, msg *tgbotapi.Message) error {
	active, err := b.catalog.Active(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load exercises: %s", escape(err.Error())))
	}
	if len(active) == 0 {
		return b.sendText(msg.Chat.ID, "No exercises yet. Add one first: /addex Bench Press")
	}

	b.setConversation(msg.From.ID, &conversationState{stage: stageExercise})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🏋️ <b>Step 1:</b> which exercise?", exerciseKeyboard(active))
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageExercise:
		exercise, err := b.catalog.ByName(ctx, text)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				active, aErr := b.catalog.Active(ctx)
				if aErr != nil {
					return aErr
				}
				return b.sendWithReplyMarkup(msg.Chat.ID, "Pick an exercise from the keyboard.", exerciseKeyboard(active))
			}
			return err
		}
		state.input.ExerciseName = exercise.Name
		// Last record of this exercise pre-fills the remaining steps.
		if latest, lErr := b.records.LatestByExercise(ctx, exercise.Name); lErr == nil {
			state.prefill = latest
		}
		state.stage = stageCount
		return b.sendWithReplyMarkup(msg.Chat.ID, b.countPrompt(state), keepLastKeyboard(state.prefill != nil))
	case stageCount:
		if isKeepLastInput(text) && state.prefill != nil {
			state.input.Count = state.prefill.Count
		} else {
			count, err := strconv.Atoi(text)
			if err != nil || count <= 0 {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Reps must be a positive number.", keepLastKeyboard(state.prefill != nil))
			}
			state.input.Count = count
		}
		state.stage = stageSets
		return b.sendWithReplyMarkup(msg.Chat.ID, b.setsPrompt(state), keepLastKeyboard(state.prefill != nil))
	case stageSets:
		if isKeepLastInput(text) && state.prefill != nil {
			state.input.Sets = state.prefill.Sets
		} else {
			sets, err := strconv.Atoi(text)
			if err != nil || sets <= 0 {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Sets must be a positive number.", keepLastKeyboard(state.prefill != nil))
			}
			state.input.Sets = sets
		}
		state.stage = stageWeight
		return b.sendWithReplyMarkup(msg.Chat.ID, b.weightPrompt(state), weightKeyboard(state.prefill != nil))
	case stageWeight:
		switch {
		case isKeepLastInput(text) && state.prefill != nil:
			state.input.Weight = state.prefill.Weight
		case strings.EqualFold(text, btnNoWeight) || text == "-":
			state.input.Weight = nil
		default:
			weight, err := strconv.ParseFloat(text, 64)
			if err != nil || weight <= 0 {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Weight must be a positive number (kg), or «Bodyweight».", weightKeyboard(state.prefill != nil))
			}
			state.input.Weight = &weight
		}
		state.stage = stageDate
		return b.sendWithReplyMarkup(msg.Chat.ID,
			"📅 <b>Step 5:</b> which day? Pick a button or send <code>2024-06-03</code>.", dateKeyboard())
	case stageDate:
		switch {
		case strings.EqualFold(text, btnToday):
			state.input.Date = b.clock.Today()
		case strings.EqualFold(text, btnYesterday):
			today, _ := time.Parse(clock.DateFormat, b.clock.Today())
			state.input.Date = today.AddDate(0, 0, -1).Format(clock.DateFormat)
		default:
			if _, err := time.Parse(clock.DateFormat, text); err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Use the buttons or the <code>YYYY-MM-DD</code> format.", dateKeyboard())
			}
			state.input.Date = text
		}
		err := b.finishRecordEntry(ctx, msg.Chat.ID, state.input)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Entry reset. Start again with /log.")
	}
}

func (b *Bot) countPrompt(state *conversationState) string {
	if state.prefill != nil {
		return fmt.Sprintf("🔢 <b>Step 2:</b> how many reps? Last time: <b>%d</b>.", state.prefill.Count)
	}
	return "🔢 <b>Step 2:</b> how many reps?"
}

func (b *Bot) setsPrompt(state *conversationState) string {
	if state.prefill != nil {
		return fmt.Sprintf("🔁 <b>Step 3:</b> how many sets? Last time: <b>%d</b>.", state.prefill.Sets)
	}
	return "🔁 <b>Step 3:</b> how many sets?"
}

func (b *Bot) weightPrompt(state *conversationState) string {
	if state.prefill != nil && state.prefill.Weight != nil {
		return fmt.Sprintf("🏷 <b>Step 4:</b> weight in kg? Last time: <b>%s</b>.", formatWeight(state.prefill.Weight))
	}
	return "🏷 <b>Step 4:</b> weight in kg?"
}

func (b *Bot) finishRecordEntry(ctx context.Context, chatID int64, input service.RecordInput) error {
	record, err := b.records.Add(ctx, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save the record: %s", escape(userMessage(err))))
	}

	b.logger.Info("record created",
		zap.String("id", record.ID),
		zap.String("exercise", record.ExerciseName),
		zap.String("date", record.Date),
	)

	var summary strings.Builder
	summary.WriteString("✅ <b>Record saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Exercise:</b> %s\n", escape(record.ExerciseName)))
	summary.WriteString(fmt.Sprintf("• <b>Date:</b> %s\n", record.Date))
	summary.WriteString(fmt.Sprintf("• <b>Reps × sets:</b> %d × %d\n", record.Count, record.Sets))
	if record.Weight != nil {
		summary.WriteString(fmt.Sprintf("• <b>Weight:</b> %s kg\n", formatWeight(record.Weight)))
	}
	summary.WriteString(fmt.Sprintf("• <b>Load:</b> %d", service.Load(*record)))

	msg := tgbotapi.NewMessage(chatID, summary.String())
	msg.ReplyMarkup = mainMenuKeyboard()
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

// --- chart view ---

func (b *Bot) sendChart(ctx context.Context, chatID int64, period service.PeriodType, offset int) error {
	text, err := b.reports.PeriodSummary(ctx, period, offset)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not build the chart: %s", escape(err.Error())))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = chartKeyboard(period, offset)
	_, err = b.api.Send(msg)
	return err
}

func chartKeyboard(period service.PeriodType, offset int) tgbotapi.InlineKeyboardMarkup {
	code := "w"
	toggleLabel := "📆 Month view"
	toggleCode := "m"
	if period == service.PeriodMonth {
		code = "m"
		toggleLabel = "📆 Week view"
		toggleCode = "w"
	}

	nav := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("◀ Older", fmt.Sprintf("%s%s:%d", cbChartPrefix, code, offset-1)),
	}
	if offset < 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Newer ▶", fmt.Sprintf("%s%s:%d", cbChartPrefix, code, offset+1)))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		nav,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel, fmt.Sprintf("%s%s:0", cbChartPrefix, toggleCode)),
		),
	)
}

func parseChartCallback(data string) (service.PeriodType, int, error) {
	raw := strings.TrimPrefix(data, cbChartPrefix)
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed chart callback %q", data)
	}
	period := service.PeriodWeek
	if parts[0] == "m" {
		period = service.PeriodMonth
	}
	offset, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed chart offset %q", data)
	}
	if offset > 0 {
		offset = 0
	}
	return period, offset, nil
}

// --- history view ---

func (b *Bot) sendHistory(ctx context.Context, chatID int64) error {
	records, err := b.records.All(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load history: %s", escape(err.Error())))
	}
	if len(records) == 0 {
		return b.sendText(chatID, "No records yet. Start with /log.")
	}
	if len(records) > historyLimit {
		records = records[:historyLimit]
	}

	var builder strings.Builder
	builder.WriteString("📒 <b>Recent records</b>\n")
	builder.WriteString("Tap a button to delete an entry.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	lastDate := ""
	for _, record := range records {
		if record.Date != lastDate {
			builder.WriteString(fmt.Sprintf("<b>%s</b>\n", record.Date))
			lastDate = record.Date
		}
		builder.WriteString("   " + formatRecordLine(record) + "\n")
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 %s · %s", record.Date[5:], shortName(record.ExerciseName, 18)),
				cbDeleteRecPrefix+record.ID,
			),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func formatRecordLine(record model.TrainingRecord) string {
	line := fmt.Sprintf("%s %d×%d", escape(record.ExerciseName), record.Count, record.Sets)
	if record.Weight != nil {
		line += fmt.Sprintf(" @%s kg", formatWeight(record.Weight))
	}
	return line + fmt.Sprintf(" · load %d", service.Load(record))
}

// --- exercise management ---

func (b *Bot) sendExerciseList(ctx context.Context, chatID int64) error {
	active, err := b.catalog.Active(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load exercises: %s", escape(err.Error())))
	}
	if len(active) == 0 {
		return b.sendText(chatID, "The exercise list is empty. Add one: /addex Bench Press")
	}

	var builder strings.Builder
	builder.WriteString("🏋️ <b>Exercises</b>\n")
	builder.WriteString("Move entries with the arrows; deleting keeps past records.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for i, exercise := range active {
		builder.WriteString(fmt.Sprintf("%d. %s <code>%s</code>\n", i+1, escape(exercise.Name), exercise.Color))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬆️ "+shortName(exercise.Name, 12), cbMoveUpPrefix+exercise.ID),
			tgbotapi.NewInlineKeyboardButtonData("⬇️", cbMoveDownPrefix+exercise.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeleteExPrefix+exercise.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleAddExercise(ctx context.Context, msg *tgbotapi.Message) error {
	name, color := parseAddArgs(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Give the exercise a name: /addex Bench Press #3b82f6 (color optional)")
	}
	if color == "" {
		all, err := b.catalog.All(ctx)
		if err != nil {
			return err
		}
		color = colorPalette[len(all)%len(colorPalette)]
	}

	exercise, err := b.catalog.Add(ctx, name, color)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not add the exercise: %s", escape(userMessage(err))))
	}

	b.logger.Info("exercise added", zap.String("id", exercise.ID), zap.String("name", exercise.Name))
	if err := b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Exercise «%s» added.", escape(exercise.Name))); err != nil {
		return err
	}
	return b.sendExerciseList(ctx, msg.Chat.ID)
}

func (b *Bot) handleRenameExercise(ctx context.Context, msg *tgbotapi.Message) error {
	oldName, newName, ok := parseRenameArgs(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Format: /renameex old name | new name")
	}

	exercise, err := b.catalog.ByName(ctx, oldName)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("No active exercise named «%s».", escape(oldName)))
		}
		return err
	}

	updated, err := b.catalog.Update(ctx, exercise.ID, newName, exercise.Color)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not rename: %s", escape(userMessage(err))))
	}

	b.logger.Info("exercise renamed",
		zap.String("id", updated.ID),
		zap.String("from", oldName),
		zap.String("to", updated.Name),
	)
	return b.sendText(msg.Chat.ID,
		fmt.Sprintf("✅ «%s» is now «%s». Past records follow the new name.", escape(oldName), escape(updated.Name)))
}

// --- export ---

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) error {
	data, err := b.exports.BuildCSV(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the export: %s", escape(err.Error())))
	}

	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  b.exports.FileName(),
		Bytes: data,
	})
	doc.Caption = "Full training history"
	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("send export: %w", err)
	}
	return nil
}

// --- callbacks and confirmations ---

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack", zap.Error(err))
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(data, cbChartPrefix):
		period, offset, err := parseChartCallback(data)
		if err != nil {
			return nil
		}
		return b.sendChart(ctx, chatID, period, offset)
	case strings.HasPrefix(data, cbDeleteRecPrefix):
		return b.askRecordDeleteConfirmation(ctx, chatID, cb.From.ID, strings.TrimPrefix(data, cbDeleteRecPrefix))
	case strings.HasPrefix(data, cbDeleteExPrefix):
		return b.askExerciseDeleteConfirmation(ctx, chatID, cb.From.ID, strings.TrimPrefix(data, cbDeleteExPrefix))
	case strings.HasPrefix(data, cbMoveUpPrefix):
		return b.moveExerciseAndRefresh(ctx, chatID, strings.TrimPrefix(data, cbMoveUpPrefix), service.MoveUp)
	case strings.HasPrefix(data, cbMoveDownPrefix):
		return b.moveExerciseAndRefresh(ctx, chatID, strings.TrimPrefix(data, cbMoveDownPrefix), service.MoveDown)
	default:
		return nil
	}
}

func (b *Bot) askRecordDeleteConfirmation(ctx context.Context, chatID, userID int64, recordID string) error {
	record, err := b.records.ByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return b.sendText(chatID, "That record is already gone.")
		}
		return err
	}

	label := fmt.Sprintf("%s %s", record.Date, record.ExerciseName)
	b.setConfirmation(userID, confirmationRequest{action: actionDeleteRecord, id: recordID, label: label})
	return b.sendWithReplyMarkup(chatID,
		fmt.Sprintf("Delete the record «%s»?", escape(label)), confirmKeyboard())
}

func (b *Bot) askExerciseDeleteConfirmation(ctx context.Context, chatID, userID int64, exerciseID string) error {
	exercise, err := b.catalog.ByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return b.sendText(chatID, "That exercise is already gone.")
		}
		return err
	}

	b.setConfirmation(userID, confirmationRequest{action: actionDeleteExercise, id: exerciseID, label: exercise.Name})
	return b.sendWithReplyMarkup(chatID,
		fmt.Sprintf("Remove «%s» from the list? Past records stay in history.", escape(exercise.Name)),
		confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if req.action == actionDeleteExercise {
			return b.deleteExerciseAndRefresh(ctx, msg.Chat.ID, req)
		}
		return b.deleteRecordAndRefresh(ctx, msg.Chat.ID, req)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendMenuPlaceholder(msg.Chat.ID)
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the deletion.", confirmKeyboard())
	}
}

func (b *Bot) deleteRecordAndRefresh(ctx context.Context, chatID int64, req confirmationRequest) error {
	if err := b.records.Delete(ctx, req.id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return b.sendText(chatID, "That record is already gone.")
		}
		return b.sendText(chatID, fmt.Sprintf("Could not delete: %s", escape(err.Error())))
	}
	b.logger.Info("record deleted", zap.String("id", req.id))
	if err := b.sendText(chatID, fmt.Sprintf("🗑 Record «%s» deleted.", escape(req.label))); err != nil {
		return err
	}
	return b.sendHistory(ctx, chatID)
}

func (b *Bot) deleteExerciseAndRefresh(ctx context.Context, chatID int64, req confirmationRequest) error {
	if err := b.catalog.SoftDelete(ctx, req.id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return b.sendText(chatID, "That exercise is already gone.")
		}
		return b.sendText(chatID, fmt.Sprintf("Could not delete: %s", escape(err.Error())))
	}
	b.logger.Info("exercise removed", zap.String("id", req.id))
	if err := b.sendText(chatID, fmt.Sprintf("🗑 Exercise «%s» removed from the list.", escape(req.label))); err != nil {
		return err
	}
	return b.sendExerciseList(ctx, chatID)
}

func (b *Bot) moveExerciseAndRefresh(ctx context.Context, chatID int64, exerciseID string, direction service.MoveDirection) error {
	moved, err := b.catalog.Move(ctx, exerciseID, direction)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return b.sendText(chatID, "That exercise is already gone.")
		}
		return b.sendText(chatID, fmt.Sprintf("Could not move: %s", escape(err.Error())))
	}
	if !moved {
		// Boundary; list unchanged, nothing to redraw.
		return nil
	}
	return b.sendExerciseList(ctx, chatID)
}

// SendWeeklyReport pushes the current week's summary to the configured
// report chat. The scheduler drives it.
func (b *Bot) SendWeeklyReport(ctx context.Context) error {
	if b.config == nil || b.config.ReportChatID == 0 {
		return nil
	}
	text, err := b.reports.WeeklyReport(ctx)
	if err != nil {
		return err
	}
	return b.sendText(b.config.ReportChatID, text)
}

// --- plumbing ---

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelLog):
		return true, b.startLogConversation(ctx, msg)
	case strings.ToLower(menuLabelChart):
		return true, b.sendChart(ctx, msg.Chat.ID, service.PeriodWeek, 0)
	case strings.ToLower(menuLabelHistory):
		return true, b.sendHistory(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelExercises):
		return true, b.sendExerciseList(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelExport):
		return true, b.handleExport(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "🔹 Main menu")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

// --- keyboards ---

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelLog),
			tgbotapi.NewKeyboardButton(menuLabelChart),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelHistory),
			tgbotapi.NewKeyboardButton(menuLabelExercises),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelExport),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func exerciseKeyboard(active []model.Exercise) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(active); i += 2 {
		row := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(active[i].Name)}
		if i+1 < len(active) {
			row = append(row, tgbotapi.NewKeyboardButton(active[i+1].Name))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func keepLastKeyboard(hasPrefill bool) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	if hasPrefill {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnKeepLast)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func weightKeyboard(hasPrefill bool) tgbotapi.ReplyKeyboardMarkup {
	first := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(btnNoWeight)}
	if hasPrefill {
		first = append(first, tgbotapi.NewKeyboardButton(btnKeepLast))
	}
	kb := tgbotapi.NewReplyKeyboard(
		first,
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func dateKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnToday),
			tgbotapi.NewKeyboardButton(btnYesterday),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// --- input parsing ---

// parseAddArgs splits "/addex Bench Press #3b82f6" into name and optional
// trailing color token.
func parseAddArgs(args string) (string, string) {
	fields := strings.Fields(strings.TrimSpace(args))
	if len(fields) == 0 {
		return "", ""
	}
	last := fields[len(fields)-1]
	if strings.HasPrefix(last, "#") && len(fields) > 1 {
		return strings.Join(fields[:len(fields)-1], " "), last
	}
	return strings.Join(fields, " "), ""
}

// parseRenameArgs splits "old name | new name" on the pipe.
func parseRenameArgs(args string) (string, string, bool) {
	parts := strings.SplitN(args, "|", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	oldName := strings.TrimSpace(parts[0])
	newName := strings.TrimSpace(parts[1])
	if oldName == "" || newName == "" {
		return "", "", false
	}
	return oldName, newName, true
}

func shortName(name string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(name, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func formatWeight(weight *float64) string {
	if weight == nil {
		return "—"
	}
	return strconv.FormatFloat(*weight, 'f', -1, 64)
}

func isKeepLastInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnKeepLast) || value == "keep" || value == "same"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirm" || value == "yes" || value == "y"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "cancel" || value == "no" || value == "n"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "cancel entry"
}

// userMessage maps service errors to texts fit for the chat.
func userMessage(err error) string {
	switch {
	case errors.Is(err, errs.ErrDuplicateName):
		return "an exercise with that name is already on the list"
	case errors.Is(err, errs.ErrValidation):
		return err.Error()
	case errors.Is(err, errs.ErrNotFound):
		return "not found"
	default:
		return err.Error()
	}
}

func escape(s string) string {
	return html.EscapeString(s)
}
