// Package notify delivers registration confirmations to members via
// Web Push and email. Both senders are best-effort: failures are
// logged and returned, never fatal to the caller.
package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/runclubno/runclub-backend/internal/model"
)

// PushSender sends VAPID-signed Web Push messages.
type PushSender struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string // contact mailto/URL advertised to push services
}

// NewPushSender builds a sender from the VAPID key pair. subscriber is
// the contact address push services may use to reach the operator.
func NewPushSender(publicKey, privateKey, subscriber string) *PushSender {
	return &PushSender{vapidPublicKey: publicKey, vapidPrivateKey: privateKey, subscriber: subscriber}
}

// PushMessage is the JSON payload shown by the service worker.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// Send pushes a message to one subscription. The bool result reports
// whether the subscription is dead (push service returned 404/410) and
// should be pruned.
func (s *PushSender) Send(sub model.PushSubscription, msg PushMessage) (dead bool, err error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return false, fmt.Errorf("marshal push message: %w", err)
	}
	resp, err := webpush.SendNotification(body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.vapidPublicKey,
		VAPIDPrivateKey: s.vapidPrivateKey,
		TTL:             3600,
	})
	if err != nil {
		return false, fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		log.Printf("webpush: subscription %d is gone (status %d)", sub.ID, resp.StatusCode)
		return true, nil
	}
	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("push service status %d", resp.StatusCode)
	}
	return false, nil
}
