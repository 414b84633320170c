package render

import (
	"fmt"
	"strings"

	"LookupBot/internal/domain"
)

// Button captions of the reply keyboards.
const (
	ButtonSearch  = "🔎 Поиск"
	ButtonHistory = "📜 История поиска"
	ButtonStats   = "📊 Моя статистика"
	ButtonInfo    = "ℹ️ Информация о проекте"
	ButtonMain    = "🏠 Главное меню"
)

// MainMenu is shown after /start and when returning to the menu.
func MainMenu() domain.Keyboard {
	return domain.Keyboard{
		{ButtonSearch},
		{ButtonHistory, ButtonStats},
		{ButtonInfo},
	}
}

// BackMenu offers a single way back to the main menu.
func BackMenu() domain.Keyboard {
	return domain.Keyboard{{ButtonMain}}
}

// IsButton reports whether text is one of the keyboard captions.
func IsButton(text string) bool {
	switch text {
	case ButtonSearch, ButtonHistory, ButtonStats, ButtonInfo, ButtonMain:
		return true
	}
	return false
}

func Greeting() string {
	return "👋 Привет! Я твой главный помощник в поиске информации 0w0. Выбери действие:"
}

func SearchPrompt() string {
	return "Напишите что хотите узнать, и я найду самую важную информацию!\n\n" +
		"Например:\n" +
		"• Разница между iPhone и Android\n" +
		"• История Microsoft\n" +
		"• Сравнение Python и Java\n" +
		"• Что такое искусственный интеллект\n" +
		"• Или просто вписываете слова"
}

func ProjectInfo() string {
	return "✨ <b>Brend AI</b> ✨\n\n" +
		"ИИ-ассистент который поможет вам узнать всю важную и нужную информацию.\n" +
		"📖 Вы узнаете историю, важные факты и отличия между вещами.\n" +
		"🧠 Если хотите узнать что-то новое и полезное — вам сюда!\n" +
		"(ИИ-ассистент разработан Fram1se)"
}

func Help() string {
	return "ℹ️ <b>Помощь</b>\n\n" +
		"Напишите любой термин или вопрос, и я найду краткую справку.\n\n" +
		"<b>Доступные команды:</b>\n" +
		"/start - начать работу\n" +
		"/help - показать эту справку\n" +
		"/history - история поиска\n" +
		"/stats - моя статистика\n" +
		"/ai &lt;вопрос&gt; - спросить ИИ-ассистента\n" +
		"/clear - очистить диалог с ИИ-ассистентом"
}

var kindOrder = []domain.IntentKind{domain.IntentGeneral, domain.IntentDifference, domain.IntentHistory}

// KindName is the human label of a query type.
func KindName(kind domain.IntentKind) string {
	switch kind {
	case domain.IntentGeneral:
		return "Обычный поиск"
	case domain.IntentDifference:
		return "Сравнение"
	case domain.IntentHistory:
		return "История"
	default:
		return string(kind)
	}
}

// KindIcon marks a query type in the history list.
func KindIcon(kind domain.IntentKind) string {
	switch kind {
	case domain.IntentDifference:
		return "⚖️"
	case domain.IntentHistory:
		return "📚"
	default:
		return "🔍"
	}
}

// Stats renders the user's totals, counts per query type and the first search date.
func Stats(stats domain.UserStats) string {
	var b strings.Builder
	b.WriteString("📊 <b>Ваша статистика</b>\n\n")
	fmt.Fprintf(&b, "🔍 Всего поисков: <b>%d</b>\n", stats.TotalSearches)

	if len(stats.ByKind) > 0 {
		b.WriteString("\n<b>По типам запросов:</b>\n")
		for _, kind := range kindOrder {
			if n, ok := stats.ByKind[kind]; ok {
				fmt.Fprintf(&b, "• %s: %d\n", KindName(kind), n)
			}
		}
	}

	if stats.FirstSearch != nil {
		fmt.Fprintf(&b, "\n📅 Первый поиск: %s", stats.FirstSearch.Format("2006-01-02"))
	}
	return b.String()
}

// SearchHistory renders the most recent queries, newest first.
func SearchHistory(records []domain.QueryRecord) string {
	if len(records) == 0 {
		return NoHistoryText
	}

	var b strings.Builder
	b.WriteString("📜 <b>Ваша история поиска</b>\n\n")
	for i, rec := range records {
		fmt.Fprintf(&b, "%d. %s <code>%s</code>\n", i+1, KindIcon(rec.Kind), esc(rec.Text))
		fmt.Fprintf(&b, "   📅 %s | 📊 %d рез.\n\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.ResultCount)
	}
	return b.String()
}
