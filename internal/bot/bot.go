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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jarvis-assistant/internal/model"
	"jarvis-assistant/internal/notify"
	"jarvis-assistant/internal/repository"
	"jarvis-assistant/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageDay
	stageTime
)

const (
	cbDeletePrefix    = "delete:"
	cbDelRecordPrefix = "delrec:"
)

const (
	btnSkip          = "⏭️ Өткізу"
	btnCancelDialog  = "⏪ Болдырмау"
	menuLabelNewTask = "➕ Жаңа тапсырма"
	menuLabelTasks   = "📋 Тапсырмалар"
	menuLabelFinance = "💰 Қаржы"
	menuLabelHelp    = "ℹ️ Көмек"
)

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

// Bot aggregates the Telegram API with the assistant services. It is
// also the notification dispatcher: every composed notification is
// delivered as one chat message.
type Bot struct {
	api           *tgbotapi.BotAPI
	log           *zap.Logger
	userRepo      *repository.UserRepository
	taskSvc       *service.TaskService
	reminderSvc   *service.ReminderService
	financeSvc    *service.FinanceService
	chatSvc       *service.ChatService
	adviceSvc     *service.AdviceService
	translator    service.Translator
	weather       service.WeatherProvider
	loc           *time.Location
	conversations map[int64]*conversationState
	mu            sync.Mutex
}

func New(
	token string,
	log *zap.Logger,
	userRepo *repository.UserRepository,
	taskSvc *service.TaskService,
	reminderSvc *service.ReminderService,
	financeSvc *service.FinanceService,
	chatSvc *service.ChatService,
	adviceSvc *service.AdviceService,
	translator service.Translator,
	weather service.WeatherProvider,
	loc *time.Location,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Info("bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:           api,
		log:           log,
		userRepo:      userRepo,
		taskSvc:       taskSvc,
		reminderSvc:   reminderSvc,
		financeSvc:    financeSvc,
		chatSvc:       chatSvc,
		adviceSvc:     adviceSvc,
		translator:    translator,
		weather:       weather,
		loc:           loc,
		conversations: make(map[int64]*conversationState),
	}, nil
}

// Dispatch implements notify.Dispatcher: one notification, one message.
func (b *Bot) Dispatch(_ context.Context, chatID int64, n notify.Notification) error {
	text := fmt.Sprintf("<b>%s</b>\n%s", escape(n.Title), escape(n.Body))
	return b.sendText(chatID, text)
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error("handle message", zap.Error(err))
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.Location != nil {
		return b.saveLocation(ctx, msg.Chat.ID, msg.From, msg.Location.Latitude, msg.Location.Longitude)
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Диалог тоқтатылды.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.log.Info("command",
			zap.Int64("from", msg.From.ID),
			zap.String("command", msg.Command()),
		)
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	// Free text goes to the chat assistant.
	return b.handleChatText(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "tasks":
		return b.handleListTasks(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "chat":
		return b.handleChatCommand(ctx, msg)
	case "translate":
		return b.handleTranslate(ctx, msg)
	case "setlocation":
		return b.handleSetLocation(ctx, msg)
	case "weather":
		return b.handleWeather(ctx, msg)
	case "advice":
		return b.handleAdvice(ctx, msg)
	case "finance":
		return b.handleFinance(ctx, msg)
	case "incomesetup":
		return b.handleIncomeSetup(ctx, msg)
	case "addincome":
		return b.handleAddIncome(ctx, msg)
	case "addexpense":
		return b.handleAddExpense(ctx, msg)
	case "report":
		return b.handleMonthlyReport(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Диалог тоқтатылды.")
	default:
		return b.sendText(msg.Chat.ID, "Бұл команда танылмады. /help қараңыз.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(user.FirstName)
	if name == "" {
		name = "досым"
	}

	text := fmt.Sprintf(
		"👋 Қош келдіңіз, %s!\n<b>Мен Jarvis — жеке көмекшіңіз.</b>\n\nКомандалар:\n"+
			"• /newtask — жаңа тапсырма қосу\n"+
			"• /tasks — барлық тапсырмалар\n"+
			"• /finance — қаржылық көмекші\n"+
			"• /incomesetup &lt;сома&gt; &lt;күн&gt; — айлық табысты орнату\n"+
			"• /translate &lt;тіл&gt; &lt;мәтін&gt; — аудармашы\n"+
			"• /advice — ақылды кеңес\n"+
			"• /help — толық тізім",
		escape(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Командалар</b>\n" +
		"• /newtask — тапсырма қосу қадам-қадаммен\n" +
		"• /tasks — тапсырмалар тізімі, батырмамен жою\n" +
		"• /delete &lt;id&gt; — тапсырманы жою\n" +
		"• /chat &lt;сұрақ&gt; — AI көмекшісіне сұрақ (жай мәтін де жарайды)\n" +
		"• /translate &lt;тіл&gt; &lt;мәтін&gt; — аудару (kk, ru, en, zh)\n" +
		"• /setlocation &lt;lat&gt; &lt;lon&gt; — орналасуды сақтау\n" +
		"• /weather — ауа райы мен киім кеңесі\n" +
		"• /advice — келесі тапсырмаға ақылды кеңес\n" +
		"• /finance — баланс және осы айдың жазбалары\n" +
		"• /incomesetup &lt;сома&gt; &lt;күн&gt; — айлық табыс (күн 1–28)\n" +
		"• /addincome &lt;сома&gt; [сипаттама] — кіріс қосу\n" +
		"• /addexpense &lt;сома&gt; &lt;сипаттама&gt; — шығыс қосу\n" +
		"• /report — айлық қаржы есебі\n" +
		"• /cancel — ағымдағы диалогты тоқтату"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Жаңа тапсырма.\n<b>1-қадам:</b> атауы қандай?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Атауы бос болмауы керек.", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Қысқаша сипаттама («Өткізу» де болады).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = text
		}
		state.stage = stageDay
		return b.sendWithReplyMarkup(msg.Chat.ID, "📆 Күнін көрсетіңіз, пішімі <code>21.04.2025</code>.", cancelKeyboard())
	case stageDay:
		if _, err := time.ParseInLocation("02.01.2006", text, b.loc); err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Күнді танымадым. Пішімі: <code>21.04.2025</code>.", cancelKeyboard())
		}
		state.input.Day = text
		state.stage = stageTime
		return b.sendWithReplyMarkup(msg.Chat.ID, "🕓 Уақытын көрсетіңіз, пішімі <code>09:00</code>.", cancelKeyboard())
	case stageTime:
		if _, err := time.Parse("15:04", text); err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Уақытты танымадым. Пішімі: <code>09:00</code>.", cancelKeyboard())
		}
		state.input.Time = text
		err := b.finishTaskCreation(ctx, msg.From, state.input, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Диалог қайта басталды. /newtask деп көріңіз.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, from *tgbotapi.User, input service.TaskInput, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.CreateTask(ctx, user, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Тапсырманы сақтау мүмкін болмады: %s", escape(err.Error())))
	}

	b.log.Info("task created", zap.String("task", task.ID), zap.Uint("user", user.ID))

	// The AI tip and the hour-before reminder are best-effort and must
	// not block the reply.
	go func() {
		tipCtx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()
		b.taskSvc.PlanHourBeforeReminder(tipCtx, task, func(n notify.Notification) {
			if err := b.Dispatch(context.Background(), chatID, n); err != nil {
				b.log.Error("dispatch hour-before reminder", zap.Error(err))
			}
		})
	}()

	var summary strings.Builder
	summary.WriteString("✅ <b>Тапсырма сақталды</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Атауы:</b> %s\n", escape(task.Title)))
	if task.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Сипаттама:</b> %s\n", escape(task.Description)))
	}
	summary.WriteString(fmt.Sprintf("• <b>Күні:</b> %s, %s\n", task.Day, task.Time))
	summary.WriteString("⏰ Басталуына 1 сағат қалғанда еске саламын.")

	reply := tgbotapi.NewMessage(chatID, summary.String())
	reply.ReplyMarkup = mainMenuKeyboard()
	reply.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleListTasks(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	tasks, err := b.taskSvc.ListAll(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Тапсырмаларды алу мүмкін болмады: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "Тапсырмалар әзірге жоқ. /newtask арқылы қосыңыз.")
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Барлық тапсырмалар</b>\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		builder.WriteString(fmt.Sprintf("📌 <b>%s</b>\n   🗓 %s · 🕓 %s\n", escape(task.Title), task.Day, task.Time))
		if task.Description != "" {
			builder.WriteString(fmt.Sprintf("   📝 %s\n", escape(task.Description)))
		}
		builder.WriteByte('\n')
		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 %s", shortTitle(task.Title, 24)),
				cbDeletePrefix+task.ID,
			),
		})
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(builder.String()))
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	reply.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}

	switch {
	case strings.HasPrefix(cb.Data, cbDeletePrefix):
		taskID := strings.TrimPrefix(cb.Data, cbDeletePrefix)
		return b.deleteTask(ctx, cb.Message.Chat.ID, cb.From, taskID)
	case strings.HasPrefix(cb.Data, cbDelRecordPrefix):
		recordID := strings.TrimPrefix(cb.Data, cbDelRecordPrefix)
		return b.deleteFinanceRecord(ctx, cb.Message.Chat.ID, cb.From, recordID)
	default:
		return nil
	}
}

func (b *Bot) deleteFinanceRecord(ctx context.Context, chatID int64, from *tgbotapi.User, recordID string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	if err := b.financeSvc.DeleteRecord(ctx, user.ID, recordID); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Жою мүмкін болмады: %s", escape(err.Error())))
	}
	return b.sendText(chatID, "🗑 Жазба жойылды.")
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID := strings.TrimSpace(msg.CommandArguments())
	if taskID == "" {
		return b.sendText(msg.Chat.ID, "Тапсырма ID-ін көрсетіңіз: /delete &lt;id&gt;")
	}
	return b.deleteTask(ctx, msg.Chat.ID, msg.From, taskID)
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, from *tgbotapi.User, taskID string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.GetTask(ctx, user, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(chatID, "Тапсырма табылмады немесе жойылған.")
		}
		return b.sendText(chatID, fmt.Sprintf("Қате: %s", escape(err.Error())))
	}

	if err := b.taskSvc.DeleteTask(ctx, user, taskID); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Жою мүмкін болмады: %s", escape(err.Error())))
	}

	b.log.Info("task deleted", zap.String("task", taskID), zap.Uint("user", user.ID))
	return b.sendText(chatID, fmt.Sprintf("🗑 «%s» тапсырмасы жойылды.", escape(task.Title)))
}

func (b *Bot) handleChatCommand(ctx context.Context, msg *tgbotapi.Message) error {
	question := strings.TrimSpace(msg.CommandArguments())
	if question == "" {
		return b.sendText(msg.Chat.ID, "Сұрағыңызды жазыңыз: /chat Қалың қалай?")
	}
	return b.replyWithChat(ctx, msg, question)
}

func (b *Bot) handleChatText(ctx context.Context, msg *tgbotapi.Message) error {
	return b.replyWithChat(ctx, msg, strings.TrimSpace(msg.Text))
}

func (b *Bot) replyWithChat(ctx context.Context, msg *tgbotapi.Message, question string) error {
	if question == "" {
		return nil
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	reply := b.chatSvc.Reply(ctx, user.ID, question)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🤖 %s", escape(reply)))
}

func (b *Bot) handleTranslate(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 2)
	if len(args) < 2 {
		return b.sendText(msg.Chat.ID, "Пішімі: /translate en Сәлем әлем")
	}
	target, text := args[0], args[1]

	translated, err := b.translator.Translate(ctx, text, "", target)
	if err != nil || translated == "" {
		if err != nil {
			b.log.Warn("translate failed", zap.Error(err))
		}
		return b.sendText(msg.Chat.ID, "Аудару мүмкін болмады 😢")
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🌐 %s", escape(translated)))
}

func (b *Bot) handleSetLocation(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return b.sendText(msg.Chat.ID, "Пішімі: /setlocation 43.25 76.91")
	}
	lat, errLat := strconv.ParseFloat(args[0], 64)
	lon, errLon := strconv.ParseFloat(args[1], 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return b.sendText(msg.Chat.ID, "Координаттар дұрыс емес.")
	}
	return b.saveLocation(ctx, msg.Chat.ID, msg.From, lat, lon)
}

func (b *Bot) saveLocation(ctx context.Context, chatID int64, from *tgbotapi.User, lat, lon float64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	city, err := b.weather.CityName(ctx, lat, lon)
	if err != nil {
		b.log.Warn("reverse geocode failed", zap.Error(err))
		city = ""
	}
	if city == "" {
		city = "Беймәлім"
	}

	if err := b.userRepo.SetLocation(ctx, user.ID, lat, lon, city); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Сақтау қатесі: %s", escape(err.Error())))
	}
	return b.sendText(chatID, fmt.Sprintf("📍 Орналасу сақталды: %s", escape(city)))
}

func (b *Bot) handleWeather(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	if !user.HasLocation() {
		return b.sendText(msg.Chat.ID, "Алдымен орналасуды сақтаңыз: /setlocation 43.25 76.91")
	}

	temp, err := b.weather.CurrentTemperature(ctx, *user.Latitude, *user.Longitude)
	if err != nil {
		b.log.Warn("weather fetch failed", zap.Error(err))
		return b.sendText(msg.Chat.ID, "Ауа райын алу мүмкін болмады 😢")
	}

	hint := "🧣 Суық, жылы киініңіз."
	if temp > 25 {
		hint = "👕 Жеңіл киім жеткілікті."
	} else if temp > 10 {
		hint = "🧥 Жеңіл күрте кисеңіз болады."
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📍 %s\n🌡 Температура: %.1f°C\n%s", escape(user.City), temp, hint))
}

func (b *Bot) handleAdvice(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	var temp *float64
	if user.HasLocation() {
		if t, err := b.weather.CurrentTemperature(ctx, *user.Latitude, *user.Longitude); err != nil {
			b.log.Warn("weather fetch failed", zap.Error(err))
		} else {
			temp = &t
		}
	}

	advice := b.adviceSvc.SmartAdvice(ctx, user.ID, temp, time.Now().In(b.loc))
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🤖 <b>Jarvis кеңесі</b>\n%s", escape(advice)))
}

// handleFinance is the dashboard: opening it also runs the payday
// check, the way the original app did on every dashboard mount.
func (b *Bot) handleFinance(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	now := time.Now().In(b.loc)
	if posted, err := b.financeSvc.CheckAndPostMonthlyIncome(ctx, user.ID, now); err != nil {
		b.log.Warn("income check failed", zap.Uint("user", user.ID), zap.Error(err))
	} else if posted {
		if err := b.sendText(msg.Chat.ID, "✅ Айлық табыс автоматты түрде қосылды."); err != nil {
			return err
		}
	}

	sum, err := b.financeSvc.Summarize(ctx, user.ID, now)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Қаржы деректерін алу мүмкін болмады: %s", escape(err.Error())))
	}

	var builder strings.Builder
	builder.WriteString("💰 <b>Қаржылық көмекші</b>\n")
	builder.WriteString(fmt.Sprintf("Баланс: <b>₸%s</b>\n", sum.Balance.String()))
	builder.WriteString(fmt.Sprintf("Кіріс: +₸%s · Шығыс: -₸%s\n\n", sum.IncomeTotal.String(), sum.ExpenseTotal.String()))

	if len(sum.Records) == 0 {
		builder.WriteString("Бұл айда жазбалар жоқ.")
		return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
	}

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, rec := range sum.Records {
		title := rec.Title
		if title == "" {
			title = model.AutoIncomeTitle
		}
		sign := "+"
		if !rec.IsIncome() {
			sign = "-"
		}
		builder.WriteString(fmt.Sprintf("• %s %s₸%s\n", escape(title), sign, rec.Amount.String()))
		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 %s %s₸%s", shortTitle(title, 18), sign, rec.Amount.String()),
				cbDelRecordPrefix+rec.ID,
			),
		})
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, strings.TrimSpace(builder.String()))
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	reply.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(reply); err != nil {
		return err
	}
	return nil
}

func (b *Bot) handleIncomeSetup(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return b.sendText(msg.Chat.ID, "Пішімі: /incomesetup 300000 5 (сома және айлық күні 1–28)")
	}

	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "Сома сан болуы керек, мысалы 300000.")
	}
	payday, err := strconv.Atoi(args[1])
	if err != nil {
		return b.sendText(msg.Chat.ID, "Күн 1 мен 28 арасындағы сан болуы керек.")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	if err := b.financeSvc.SetupMonthlyIncome(ctx, user.ID, amount, payday, time.Now().In(b.loc)); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Сақтау мүмкін болмады: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, "✅ Айлық табыс пен күн сәтті сақталды!")
}

func (b *Bot) handleAddIncome(ctx context.Context, msg *tgbotapi.Message) error {
	return b.addFinanceRecord(ctx, msg, model.RecordIncome)
}

func (b *Bot) handleAddExpense(ctx context.Context, msg *tgbotapi.Message) error {
	return b.addFinanceRecord(ctx, msg, model.RecordExpense)
}

func (b *Bot) addFinanceRecord(ctx context.Context, msg *tgbotapi.Message, recordType string) error {
	args := strings.SplitN(strings.TrimSpace(msg.CommandArguments()), " ", 2)
	if args[0] == "" {
		return b.sendText(msg.Chat.ID, "Пішімі: /addincome 10000 сипаттама немесе /addexpense 1200 Кофе")
	}

	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "Сома сан болуы керек, мысалы 1200.")
	}
	title := ""
	if len(args) == 2 {
		title = strings.TrimSpace(args[1])
	}
	if recordType == model.RecordExpense && title == "" {
		return b.sendText(msg.Chat.ID, "Шығысқа сипаттама қажет: /addexpense 1200 Кофе")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	now := time.Now().In(b.loc)
	if recordType == model.RecordExpense {
		err = b.financeSvc.AddExpense(ctx, user.ID, amount, title, now)
	} else {
		err = b.financeSvc.AddIncome(ctx, user.ID, amount, title, now)
	}
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Сақтау мүмкін болмады: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, "✅ Сақталды!")
}

func (b *Bot) handleMonthlyReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	now := time.Now().In(b.loc)
	sum, err := b.financeSvc.Summarize(ctx, user.ID, now)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Есепті құру мүмкін болмады: %s", escape(err.Error())))
	}

	tip := b.financeSvc.MonthlyTip(ctx, sum)

	text := fmt.Sprintf(
		"📊 <b>Айлық есеп (%s)</b>\n"+
			"Кіріс: +₸%s (%d жазба)\n"+
			"Шығыс: -₸%s (%d жазба)\n"+
			"Баланс: <b>₸%s</b>\n\n"+
			"💡 %s",
		sum.Month,
		sum.IncomeTotal.String(), sum.IncomeCount,
		sum.ExpenseTotal.String(), sum.ExpenseCount,
		sum.Balance.String(),
		escape(tip),
	)
	return b.sendText(msg.Chat.ID, text)
}

// SendMorningSummaries delivers the morning notification to every
// known user, fetching per-user weather when a location is stored.
func (b *Bot) SendMorningSummaries(ctx context.Context) error {
	return b.forEachUser(ctx, func(user model.User) {
		now := time.Now().In(b.loc)

		weather := ""
		if user.HasLocation() {
			if temp, err := b.weather.CurrentTemperature(ctx, *user.Latitude, *user.Longitude); err != nil {
				b.log.Warn("morning weather fetch failed", zap.Uint("user", user.ID), zap.Error(err))
			} else {
				weather = fmt.Sprintf("%.1f°C", temp)
				if temp <= 0 {
					alert := b.reminderSvc.WeatherAlert("Бүгін суық! Жылы киінуді ұмытпаңыз.")
					if err := b.Dispatch(ctx, user.TelegramID, alert); err != nil {
						b.log.Error("dispatch weather alert", zap.Int64("chat", user.TelegramID), zap.Error(err))
					}
				}
			}
		}

		n := b.reminderSvc.MorningSummary(ctx, user.ID, now, weather)
		if err := b.Dispatch(ctx, user.TelegramID, n); err != nil {
			b.log.Error("dispatch morning summary", zap.Int64("chat", user.TelegramID), zap.Error(err))
		}
	})
}

// SendEveningSummaries delivers the evening notification (today's
// tasks, falling back to tomorrow's) to every known user.
func (b *Bot) SendEveningSummaries(ctx context.Context) error {
	return b.forEachUser(ctx, func(user model.User) {
		n := b.reminderSvc.EveningSummary(ctx, user.ID, time.Now().In(b.loc))
		if err := b.Dispatch(ctx, user.TelegramID, n); err != nil {
			b.log.Error("dispatch evening summary", zap.Int64("chat", user.TelegramID), zap.Error(err))
		}
	})
}

// RunIncomeChecks evaluates the payday rule for every known user.
func (b *Bot) RunIncomeChecks(ctx context.Context) error {
	return b.forEachUser(ctx, func(user model.User) {
		posted, err := b.financeSvc.CheckAndPostMonthlyIncome(ctx, user.ID, time.Now().In(b.loc))
		if err != nil {
			b.log.Warn("income check failed", zap.Uint("user", user.ID), zap.Error(err))
			return
		}
		if posted {
			n := notify.Notification{Title: "💰 Қаржылық көмекші", Body: "Айлық табыс автоматты түрде қосылды."}
			if err := b.Dispatch(ctx, user.TelegramID, n); err != nil {
				b.log.Error("dispatch income notice", zap.Int64("chat", user.TelegramID), zap.Error(err))
			}
		}
	})
}

func (b *Bot) forEachUser(ctx context.Context, fn func(user model.User)) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		fn(user)
	}
	return nil
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(msg.Text)
	switch text {
	case menuLabelNewTask:
		return true, b.startNewTaskConversation(ctx, msg)
	case menuLabelTasks:
		return true, b.handleListTasks(ctx, msg)
	case menuLabelFinance:
		return true, b.handleFinance(ctx, msg)
	case menuLabelHelp:
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
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

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelFinance),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "өткізу" || value == "skip"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "болдырмау" || value == "отмена"
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
