// Package chat is the FinlyChat advisor: a thin wrapper over a language
// model that answers personal finance questions in Indonesian. It never
// reads or writes the ledger.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"finly/internal/log"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	SystemPrompt = "Kamu adalah FinlyChat, asisten AI untuk konsultasi keuangan pribadi dalam bahasa Indonesia. " +
		"Berikan saran yang praktis, mudah dipahami, dan sesuai untuk rumah tangga dan karyawan Indonesia. " +
		"Fokus pada perencanaan keuangan, budgeting, investasi sederhana, dan tips mengatur uang. " +
		"Gunakan bahasa yang ramah dan tidak terlalu teknis."

	WelcomeMessage = "Halo! Saya FinlyChat, asisten AI untuk konsultasi keuangan pribadi. " +
		"Ada yang bisa saya bantu terkait perencanaan keuangan Anda?"

	FallbackMessage = "Maaf, terjadi kesalahan. Silakan coba lagi nanti."

	DefaultTimeout = 30 * time.Second
)

var ErrEmptyInput = errors.New("chat: empty input")

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Reply is the advisor's answer. Fallback is set when Text is the canned
// apology rather than a model answer.
type Reply struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// Completer produces the next assistant turn for a conversation.
type Completer interface {
	Complete(ctx context.Context, system string, history []Message) (string, error)
}

type Advisor struct {
	completer Completer
	timeout   time.Duration
	logger    *log.Logger
}

type Option func(*Advisor)

func WithTimeout(d time.Duration) Option {
	return func(a *Advisor) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(a *Advisor) { a.logger = logger.WithComponent(log.ComponentChat) }
}

// NewAdvisor wraps completer. A nil completer makes every answer the fallback,
// which is how the server runs without an API key.
func NewAdvisor(completer Completer, opts ...Option) *Advisor {
	a := &Advisor{
		completer: completer,
		timeout:   DefaultTimeout,
		logger:    log.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enabled reports whether a model is configured.
func (a *Advisor) Enabled() bool { return a.completer != nil }

// Ask sends input after history. Model failures are not returned as errors;
// they become the fallback reply. Only blank input is an error.
func (a *Advisor) Ask(ctx context.Context, history []Message, input string) (Reply, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Reply{}, ErrEmptyInput
	}
	if a.completer == nil {
		a.logger.WarnContext(ctx, "Chat requested without a configured model")
		return Reply{Text: FallbackMessage, Fallback: true}, nil
	}

	conv := make([]Message, 0, len(history)+1)
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		conv = append(conv, m)
	}
	conv = append(conv, Message{Role: RoleUser, Content: input})

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	text, err := a.completer.Complete(ctx, SystemPrompt, conv)
	if err != nil {
		a.logger.ErrorContext(ctx, "Chat completion failed",
			log.FieldError, err,
			log.FieldDuration, time.Since(start).Milliseconds(),
		)
		return Reply{Text: FallbackMessage, Fallback: true}, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		a.logger.WarnContext(ctx, "Chat completion returned no text")
		return Reply{Text: FallbackMessage, Fallback: true}, nil
	}
	a.logger.DebugContext(ctx, "Chat completion",
		log.FieldDuration, time.Since(start).Milliseconds(),
		"turns", len(conv),
	)
	return Reply{Text: text}, nil
}
