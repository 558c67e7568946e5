// Package bot implements the dialogue dispatcher: a pure function of
// (inbound event, session) to (next session, ordered reply instructions).
// It performs no network I/O; the webhook layer delivers the instructions
// and persists the next session only after delivery succeeds.
package bot

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/paragraphhotels/messenger-bot-go/internal/classify"
	apperrors "github.com/paragraphhotels/messenger-bot-go/internal/errors"
	"github.com/paragraphhotels/messenger-bot-go/internal/logger"
	"github.com/paragraphhotels/messenger-bot-go/internal/messenger"
	"github.com/paragraphhotels/messenger-bot-go/internal/metrics"
	"github.com/paragraphhotels/messenger-bot-go/internal/reply"
	"github.com/paragraphhotels/messenger-bot-go/internal/session"
)

// Result is the outcome of dispatching one event: the replies to deliver,
// in order, and the session record to persist once delivery succeeded.
type Result struct {
	Messages []messenger.Instruction
	Next     session.Session
}

// Dispatcher applies the conversation state machine.
type Dispatcher struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(log *logger.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		logger:  log.WithModule("dispatcher"),
		metrics: m,
	}
}

// Dispatch processes one normalized event against the current session.
// displayName personalizes the greeting when onboarding; empty degrades to
// the unnamed form.
func (d *Dispatcher) Dispatch(ev messenger.Event, sess session.Session, displayName string) Result {
	// Receipts and other non-actionable events produce no replies.
	if ev.IsEmpty() {
		return Result{Next: sess}
	}

	// A user who explicitly ended the chat gets no further replies.
	if sess.Ended {
		return Result{Next: sess}
	}

	if ev.Postback != "" {
		return d.dispatchPostback(ev.Postback, sess, displayName)
	}

	if ev.Action != "" {
		return d.dispatchAction(ev.Action, sess, displayName)
	}

	return d.dispatchText(ev.Text, sess, displayName)
}

func (d *Dispatcher) dispatchPostback(payload string, sess session.Session, displayName string) Result {
	switch payload {
	case messenger.ActionGetStarted, messenger.ActionStartAgain:
		return d.onboard(sess.ID, displayName)
	default:
		// Closed action set: anything else is a client-side anomaly.
		d.logger.WithError(apperrors.ErrUnknownAction).WithField("payload", payload).Debug("Unknown postback payload, ignoring")
		return Result{Next: sess}
	}
}

func (d *Dispatcher) dispatchAction(action string, sess session.Session, displayName string) Result {
	switch action {
	case messenger.ActionStartAgain:
		return d.onboard(sess.ID, displayName)

	case messenger.ActionLangEN, messenger.ActionLangKA:
		lang := classify.LanguageEnglish
		if action == messenger.ActionLangKA {
			lang = classify.LanguageGeorgian
		}
		// Idempotent: re-selecting a language re-sends the menu.
		sess.Language = lang
		sess.Greeted = true
		sess.State = session.StateMenu
		return Result{Messages: d.menu(lang), Next: sess}

	case messenger.ActionLodging, messenger.ActionDining, messenger.ActionWellness:
		if !sess.Greeted {
			// Stale buttons from before a reset; restart onboarding.
			return d.onboard(sess.ID, displayName)
		}
		template := topicTemplate(action)
		sess.State = session.StateAwaitingFollowup
		return Result{Messages: d.topicReply(template, sess.Language), Next: sess}

	case messenger.ActionGoBack:
		if !sess.Greeted {
			return d.onboard(sess.ID, displayName)
		}
		sess.State = session.StateMenu
		return Result{Messages: d.menu(sess.Language), Next: sess}

	case messenger.ActionMoreQuestions:
		return Result{
			Messages: []messenger.Instruction{{Text: reply.Render(reply.TemplateFallback, sess.Language)}},
			Next:     sess,
		}

	default:
		d.logger.WithError(apperrors.ErrUnknownAction).WithField("action", action).Debug("Unknown quick-reply action, ignoring")
		return Result{Next: sess}
	}
}

func (d *Dispatcher) dispatchText(text string, sess session.Session, displayName string) Result {
	// First contact: any free text triggers onboarding.
	if sess.State == session.StateNew {
		return d.onboard(sess.ID, displayName)
	}

	// Language not chosen yet: prompt again instead of guessing.
	if sess.State == session.StateAwaitingLanguage {
		return Result{
			Messages: []messenger.Instruction{{
				Text:         reply.Render(reply.TemplateChooseLanguageFirst, sess.Language),
				QuickReplies: reply.LanguageOptions(),
			}},
			Next: sess,
		}
	}

	normalized := classify.Normalize(text)

	// Render in the session language; fall back to the detected one while
	// the language is unset (should not happen past onboarding).
	lang := sess.Language
	if lang == classify.LanguageUnset {
		lang = classify.DetectLanguage(text)
	}

	category, matched := classify.Classify(text)
	d.recordClassification(category, matched)

	var messages []messenger.Instruction
	switch {
	case !matched:
		messages = []messenger.Instruction{{Text: reply.Render(reply.TemplateFallback, lang)}}
	case category == classify.CategoryGratitude:
		messages = []messenger.Instruction{{Text: reply.Render(reply.TemplateThanks, lang)}}
	default:
		messages = d.topicReply(categoryTemplate(category), lang)
		sess.State = session.StateAwaitingFollowup
	}

	// Duplicate suppression: the same consecutive input producing the same
	// reply is answered once.
	hash := replyHash(messages)
	if normalized != "" && normalized == sess.LastInput && hash == sess.LastReplyHash {
		d.logger.Debug("Suppressing duplicate consecutive input")
		return Result{Next: sess}
	}

	sess.LastInput = normalized
	sess.LastReplyHash = hash
	return Result{Messages: messages, Next: sess}
}

// onboard resets the conversation and sends the greeting plus the language
// prompt, preserving the two-message order of the original flow.
func (d *Dispatcher) onboard(id, displayName string) Result {
	next := session.New(id)
	next.State = session.StateAwaitingLanguage

	return Result{
		Messages: []messenger.Instruction{
			{Text: reply.Greeting(displayName)},
			{
				Text:         reply.Render(reply.TemplateLanguagePrompt, classify.LanguageUnset),
				QuickReplies: reply.LanguageOptions(),
			},
		},
		Next: next,
	}
}

func (d *Dispatcher) menu(lang classify.Language) []messenger.Instruction {
	return []messenger.Instruction{{
		Text:         reply.Render(reply.TemplateMenu, lang),
		QuickReplies: reply.MenuOptions(lang),
	}}
}

func (d *Dispatcher) topicReply(template reply.TemplateID, lang classify.Language) []messenger.Instruction {
	return []messenger.Instruction{
		{Text: reply.Render(template, lang)},
		{
			Text:         reply.Render(reply.TemplateFollowup, lang),
			QuickReplies: reply.FollowupOptions(lang),
		},
	}
}

func (d *Dispatcher) recordClassification(category classify.Category, matched bool) {
	if d.metrics == nil {
		return
	}
	if !matched {
		d.metrics.RecordClassification("none")
		return
	}
	d.metrics.RecordClassification(string(category))
}

func topicTemplate(action string) reply.TemplateID {
	switch action {
	case messenger.ActionLodging:
		return reply.TemplateLodging
	case messenger.ActionDining:
		return reply.TemplateDining
	default:
		return reply.TemplateWellness
	}
}

func categoryTemplate(category classify.Category) reply.TemplateID {
	switch category {
	case classify.CategoryLodging:
		return reply.TemplateLodging
	case classify.CategoryDining:
		return reply.TemplateDining
	default:
		return reply.TemplateWellness
	}
}

// replyHash fingerprints a reply for duplicate suppression.
func replyHash(messages []messenger.Instruction) string {
	h := sha256.New()
	for _, m := range messages {
		h.Write([]byte(m.Text))
		for _, qr := range m.QuickReplies {
			h.Write([]byte(qr.Action))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
