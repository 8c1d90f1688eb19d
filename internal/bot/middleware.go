package bot

import (
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"brain-arcade/internal/config"
)

// memberSet remembers players seen in whitelisted groups so they may also
// talk to the bot privately.
type memberSet struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

func newMemberSet() *memberSet {
	return &memberSet{ids: make(map[int64]struct{})}
}

func (m *memberSet) add(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = struct{}{}
}

func (m *memberSet) has(id int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.ids[id]
	return ok
}

// admit decides whether an update is processed. Group members of
// whitelisted chats are remembered as a side effect.
func admit(cfg *config.Config, members *memberSet, chatType tele.ChatType, chatID, userID int64) bool {
	if chatType == tele.ChatPrivate {
		return len(cfg.Whitelist.Chats) == 0 || members.has(userID)
	}
	if !cfg.IsChatAllowed(chatID) {
		return false
	}
	members.add(userID)
	return true
}

// WhitelistMiddleware drops updates from chats that are not whitelisted.
func WhitelistMiddleware(cfg *config.Config, members *memberSet) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			sender := c.Sender()
			if chat == nil || sender == nil {
				return nil
			}

			if !admit(cfg, members, chat.Type, chat.ID, sender.ID) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Int64("user_id", sender.ID).
					Msg("Ignoring update from non-whitelisted chat")
				return nil
			}
			return next(c)
		}
	}
}

// AdminMiddleware rejects senders that are not moderators.
func AdminMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}
			if !cfg.IsAdmin(sender.ID) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Reply("❌ Moderators only")
			}
			return next(c)
		}
	}
}

// LoggingMiddleware logs every incoming update at debug level.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			ev := log.Debug()
			if sender := c.Sender(); sender != nil {
				ev = ev.Int64("user_id", sender.ID).Str("username", sender.Username)
			}
			if chat := c.Chat(); chat != nil {
				ev = ev.Int64("chat_id", chat.ID).Str("chat_type", string(chat.Type))
			}
			ev.Str("text", c.Text()).Msg("Received message")
			return next(c)
		}
	}
}

// RecoveryMiddleware turns a handler panic into a logged error and a reply.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("text", c.Text()).Msg("Recovered from panic in handler")
					err = c.Reply("❌ Internal error, please try again later")
				}
			}()
			return next(c)
		}
	}
}
