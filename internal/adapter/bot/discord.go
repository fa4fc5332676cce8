package bot

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"aptutor/internal/usecase"
)

const (
	ackMessage      = "📚 Searching resources and querying the model... (you will get a DM shortly)"
	sentMessage     = "📬 Sent you a DM with the AP answer!"
	noDMMessage     = "❌ I couldn't DM you. Please enable DMs from server members."
	emptyAnswer     = "The model returned an empty answer."
	defaultMaxRunes = 2000
)

// Asker answers a question end to end.
type Asker interface {
	Ask(ctx context.Context, question string) (*usecase.Answer, error)
}

// Messenger is the slice of the Discord session the bot talks through.
type Messenger interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Options configures command parsing and delivery.
type Options struct {
	Prefix        string
	Command       string
	MaxMessageLen int
	Timeout       time.Duration
}

// Bot relays ".ap <question>" commands to the ask use case and answers by DM.
type Bot struct {
	session *discordgo.Session
	asker   Asker
	opts    Options
	log     *logrus.Entry
}

// New creates a bot for token. Call Open to connect.
func New(token string, asker Asker, opts Options, log *logrus.Entry) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	if opts.MaxMessageLen <= 0 {
		opts.MaxMessageLen = defaultMaxRunes
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b := &Bot{
		session: session,
		asker:   asker,
		opts:    opts,
		log:     log,
	}
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.WithField("user", r.User.Username).Info("discord bot connected")
	})
	return b, nil
}

func (b *Bot) Open() error {
	return b.session.Open()
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	ctx := context.Background()
	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}
	b.Handle(ctx, s, m.ChannelID, m.Author.ID, m.Content)
}

// Handle processes one incoming message. Messages that are not the
// command are ignored.
func (b *Bot) Handle(ctx context.Context, msgr Messenger, channelID, authorID, content string) {
	question, ok := ParseCommand(content, b.opts.Prefix, b.opts.Command)
	if !ok {
		return
	}
	log := b.log.WithFields(logrus.Fields{"channel": channelID, "author": authorID})

	if question == "" {
		b.send(log, msgr, channelID, fmt.Sprintf("Usage: %s%s <question>", b.opts.Prefix, b.opts.Command))
		return
	}

	b.send(log, msgr, channelID, ackMessage)

	answer, err := b.asker.Ask(ctx, question)
	if err != nil {
		log.WithError(err).Error("ask failed")
		b.send(log, msgr, channelID, "❌ Error from model: "+err.Error())
		return
	}

	if err := b.deliver(msgr, authorID, answer.Text); err != nil {
		log.WithError(err).Warn("direct message failed")
		b.send(log, msgr, channelID, noDMMessage)
		return
	}
	b.send(log, msgr, channelID, sentMessage)
}

func (b *Bot) deliver(msgr Messenger, authorID, text string) error {
	dm, err := msgr.UserChannelCreate(authorID)
	if err != nil {
		return err
	}
	pieces := SplitMessage(text, b.opts.MaxMessageLen)
	if len(pieces) == 0 {
		pieces = []string{emptyAnswer}
	}
	for _, piece := range pieces {
		if _, err := msgr.ChannelMessageSend(dm.ID, piece); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) send(log *logrus.Entry, msgr Messenger, channelID, content string) {
	if _, err := msgr.ChannelMessageSend(channelID, content); err != nil {
		log.WithError(err).Warn("channel message failed")
	}
}

// ParseCommand reports whether content invokes prefix+command and returns
// the trimmed remainder as the question.
func ParseCommand(content, prefix, command string) (string, bool) {
	content = strings.TrimSpace(content)
	rest, ok := strings.CutPrefix(content, prefix+command)
	if !ok {
		return "", false
	}
	if rest != "" {
		r, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsSpace(r) {
			return "", false
		}
	}
	return strings.TrimSpace(rest), true
}

// SplitMessage cuts text into pieces of at most limit runes each.
func SplitMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		limit = defaultMaxRunes
	}
	runes := []rune(text)
	pieces := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}
