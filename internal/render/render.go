// Package render builds every user-facing message in Telegram's HTML parse mode.
package render

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"LookupBot/internal/domain"
)

// MaxMessageLength is Telegram's limit on message text, in UTF-16 code units after entity parsing.
const MaxMessageLength = 4096

const (
	NotFoundText      = "😔 К сожалению, я не нашёл достаточно информации."
	ErrorText         = "❌ Произошла ошибка при поиске информации."
	AnalyzingText     = "🔎 Анализирую запрос..."
	MoreText          = "Хотите узнать что-то ещё?"
	RetryText         = "Хотите попробовать другой запрос?"
	TryAnotherText    = "Попробуйте другой запрос."
	MissingSideText   = "Информация не найдена"
	NoHistoryText     = "📜 Вы еще не совершали поисковых запросов."
	UnavailableText   = "⚠️ История и статистика сейчас недоступны."
	BackToMainText    = "👋 Вы снова в главном меню!"
	ThinkingText      = "🤔 Думаю..."
	AssistantOffText  = "❌ ИИ-ассистент не настроен."
	AssistantUsage    = "Напишите вопрос после команды, например:\n/ai Объясни квантовую физику простыми словами"
	AssistantFailText = "❌ Не удалось получить ответ от ИИ-ассистента."
	ClearedText       = "🧹 История диалога с ИИ-ассистентом очищена."
)

// Answer renders a general lookup hit. Sources without a page link get a bare tag.
func Answer(r *domain.SourceResult) string {
	if r == nil {
		return NotFoundText
	}
	return fmt.Sprintf("<b>%s</b>\n\n%s\n\n%s", esc(r.Title), esc(r.Body), link(r))
}

// Comparison renders both sides. Bullets are added only when both sides were found.
func Comparison(c domain.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Сравнение: %s vs %s</b>\n\n", esc(c.Left.Term), esc(c.Right.Term))
	writeSide(&b, c.Left)
	writeSide(&b, c.Right)
	if c.Complete() {
		b.WriteString("🔍 <b>Ключевые различия:</b>\n")
		b.WriteString("• Это разные понятия/объекты/явления\n")
		b.WriteString("• Имеют различное происхождение и применение\n")
		b.WriteString("• Отличаются по характеристикам и свойствам\n")
	}
	return b.String()
}

func writeSide(b *strings.Builder, side domain.ComparisonSide) {
	body := MissingSideText
	if side.Result != nil && side.Result.Body != "" {
		body = esc(side.Result.Body)
	}
	fmt.Fprintf(b, "<b>%s:</b>\n%s\n\n", esc(side.Term), body)
}

// History renders the filtered historical sentences for term.
func History(term string, r *domain.SourceResult) string {
	if r == nil {
		return HistoryNotFound(term)
	}
	return fmt.Sprintf("<b>История: %s</b>\n\n%s\n\n%s", esc(term), esc(r.Body), link(r))
}

// HistoryNotFound is shown when no sentence looked historical.
func HistoryNotFound(term string) string {
	return fmt.Sprintf("❌ Не удалось найти историческую информацию о '%s'", esc(term))
}

// Progress is one frame of the waiting animation.
func Progress(step, term string) string {
	return fmt.Sprintf("%s\n\n<b>%s</b>", esc(step), esc(term))
}

// Status describes what the bot is doing for the classified intent.
func Status(intent domain.Intent) string {
	switch intent.Kind {
	case domain.IntentDifference:
		a, b := intent.Pair()
		return fmt.Sprintf("🔍 Сравниваю '%s' и '%s'...", esc(a), esc(b))
	case domain.IntentHistory:
		return fmt.Sprintf("📚 Ищу историю '%s'...", esc(intent.Term()))
	default:
		return fmt.Sprintf("🔎 Ищу информацию о '%s'...", esc(intent.Original))
	}
}

// AssistantReply escapes a model reply and clips it to fit into one message.
func AssistantReply(reply string) string {
	return esc(clip(reply, MaxMessageLength))
}

// clip cuts s so that it plus a trailing ellipsis stays within limit UTF-16 units.
func clip(s string, limit int) string {
	units, cut := 0, 0
	for i, r := range s {
		units += utf16.RuneLen(r)
		if units > limit {
			return strings.TrimRight(s[:cut], " \t\n") + "…"
		}
		if units < limit {
			cut = i + utf8.RuneLen(r)
		}
	}
	return s
}

func link(r *domain.SourceResult) string {
	label := r.Label
	if r.URL == "" {
		if label == "" {
			label = r.Source
		}
		return "🔗 " + esc(label)
	}
	if label == "" {
		label = "Подробнее"
	}
	return fmt.Sprintf("🔗 <a href='%s'>%s</a>", esc(r.URL), esc(label))
}

func esc(s string) string {
	return html.EscapeString(s)
}
