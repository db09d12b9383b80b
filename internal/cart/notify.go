package cart

import (
	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

type NoticeKind string

const (
	NoticeAdded           NoticeKind = "added"
	NoticeQuantityUpdated NoticeKind = "quantity_updated"
	NoticeLimited         NoticeKind = "limited"
	NoticeRemoved         NoticeKind = "removed"
	NoticeCleared         NoticeKind = "cleared"
)

// Notice is a user-facing message about a cart change.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	ProductID int64      `json:"product_id,omitempty"`
	Message   string     `json:"message"`
}

type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

var nopNotifier = NotifierFunc(func(Notice) {})

// TopicNotice is the bus topic carrying (sessionID string, Notice).
const TopicNotice = "cart:notice"

// BusNotifier publishes one session's notices on bus.
func BusNotifier(bus EventBus.Bus, sessionID string) Notifier {
	return NotifierFunc(func(n Notice) {
		bus.Publish(TopicNotice, sessionID, n)
	})
}

// SubscribeNotices logs and counts every published notice.
func SubscribeNotices(bus EventBus.Bus, log *zap.Logger, m *Metrics) error {
	log = kit.OrNop(log)
	return bus.Subscribe(TopicNotice, func(sessionID string, n Notice) {
		log.Info("cart notice",
			zap.String("session_id", sessionID),
			zap.String("kind", string(n.Kind)),
			zap.Int64("product_id", n.ProductID),
			zap.String("message", n.Message),
		)
		if m != nil {
			m.Notices.WithLabelValues(string(n.Kind)).Inc()
		}
	})
}
