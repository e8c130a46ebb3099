package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	accountdomain "invoiceai-backend/internal/account/domain"
	syncdomain "invoiceai-backend/internal/sync/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc = accountdomain.TokenUpdateFunc

type Service struct {
	clientID     string
	clientSecret string
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			log.Printf("[Gmail] Failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// GetGmailService creates Gmail service with user's access token
func (s *Service) GetGmailService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if refreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	tokenSource := config.TokenSource(ctx, token)

	// Wrap token source to detect refreshes
	wrappedSource := &notifyTokenSource{
		src:      tokenSource,
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}

	return srv, nil
}

// ListHistory fetches the change-history feed starting at startHistoryID and
// flattens it into ChangeEvents. Only messageAdded and messageDeleted record
// types are requested. Returns the mailbox's current history id alongside the
// events; callers advance their cursor with it only after the events have
// been processed.
func (s *Service) ListHistory(ctx context.Context, accessToken, refreshToken, startHistoryID string, onTokenRefresh TokenUpdateFunc) ([]syncdomain.ChangeEvent, string, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, "", err
	}

	user := "me"

	start, err := strconv.ParseUint(startHistoryID, 10, 64)
	if err != nil {
		return nil, "", fmt.Errorf("invalid history id %q: %v", startHistoryID, err)
	}

	call := srv.Users.History.List(user).
		StartHistoryId(start).
		HistoryTypes("messageAdded", "messageDeleted").
		MaxResults(100)

	var events []syncdomain.ChangeEvent
	latest := start

	err = call.Pages(ctx, func(page *gmail.ListHistoryResponse) error {
		if page.HistoryId > latest {
			latest = page.HistoryId
		}
		for _, history := range page.History {
			if history.Id > latest {
				latest = history.Id
			}
			for _, added := range history.MessagesAdded {
				if added.Message == nil {
					continue
				}
				events = append(events, syncdomain.ChangeEvent{
					Kind:      syncdomain.EventMessageAdded,
					MessageID: added.Message.Id,
					ThreadID:  added.Message.ThreadId,
					LabelIDs:  added.Message.LabelIds,
				})
			}
			for _, deleted := range history.MessagesDeleted {
				if deleted.Message == nil {
					continue
				}
				events = append(events, syncdomain.ChangeEvent{
					Kind:      syncdomain.EventMessageDeleted,
					MessageID: deleted.Message.Id,
					ThreadID:  deleted.Message.ThreadId,
					LabelIDs:  deleted.Message.LabelIds,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("unable to list history: %v", err)
	}

	return events, strconv.FormatUint(latest, 10), nil
}

// GetThreadMessageIDs retrieves the ids of all messages in a thread,
// oldest first (Gmail's thread order).
func (s *Service) GetThreadMessageIDs(ctx context.Context, accessToken, refreshToken, threadID string, onTokenRefresh TokenUpdateFunc) ([]string, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	user := "me"
	thread, err := srv.Users.Threads.Get(user, threadID).Format("minimal").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve thread: %v", err)
	}

	ids := make([]string, 0, len(thread.Messages))
	for _, msg := range thread.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, nil
}

// GetRawMessage retrieves the full RFC822 bytes of a message
func (s *Service) GetRawMessage(ctx context.Context, accessToken, refreshToken, messageID string, onTokenRefresh TokenUpdateFunc) ([]byte, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	user := "me"
	msg, err := srv.Users.Messages.Get(user, messageID).Format("raw").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message: %v", err)
	}
	if msg.Raw == "" {
		return nil, errors.New("message has no raw payload")
	}

	raw, err := base64.URLEncoding.DecodeString(msg.Raw)
	if err != nil {
		return nil, fmt.Errorf("unable to decode raw message: %v", err)
	}
	return raw, nil
}

// SendReply sends a raw MIME message scoped to an existing thread, so the
// reply lands in the same conversation. Returns the sent message id.
func (s *Service) SendReply(ctx context.Context, accessToken, refreshToken, threadID string, rawMime []byte, onTokenRefresh TokenUpdateFunc) (string, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return "", err
	}

	user := "me"
	msg := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString(rawMime),
		ThreadId: threadID,
	}

	sent, err := srv.Users.Messages.Send(user, msg).Do()
	if err != nil {
		return "", fmt.Errorf("unable to send message: %v", err)
	}

	return sent.Id, nil
}

// GetProfile returns the mailbox address and its current history id,
// used to seed the cursor when no notification token is available.
func (s *Service) GetProfile(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (string, string, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return "", "", err
	}

	profile, err := srv.Users.GetProfile("me").Do()
	if err != nil {
		return "", "", fmt.Errorf("unable to retrieve profile: %v", err)
	}

	return profile.EmailAddress, strconv.FormatUint(profile.HistoryId, 10), nil
}

// Watch sets up push notifications for the user's mailbox.
// Returns the watch expiration and the history id at watch time.
func (s *Service) Watch(ctx context.Context, accessToken, refreshToken string, topicName string, onTokenRefresh TokenUpdateFunc) (time.Time, string, error) {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return time.Time{}, "", err
	}

	// Stop any existing watch first to avoid "Only one user push
	// notification client allowed" errors. Failure here is harmless.
	_ = srv.Users.Stop("me").Do()

	req := &gmail.WatchRequest{
		TopicName: topicName,
		LabelIds:  []string{"INBOX"},
	}

	log.Printf("[Gmail] Starting watch on topic: %s", topicName)
	resp, err := srv.Users.Watch("me", req).Do()
	if err != nil {
		log.Printf("[Gmail] Watch API error: %v", err)
		return time.Time{}, "", fmt.Errorf("unable to watch mailbox: %v", err)
	}

	expiry := time.UnixMilli(resp.Expiration)
	log.Printf("[Gmail] Watch started. Expiration: %s, HistoryId: %d", expiry.Format(time.RFC3339), resp.HistoryId)

	return expiry, strconv.FormatUint(resp.HistoryId, 10), nil
}

// Stop stops push notifications for the user's mailbox
func (s *Service) Stop(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) error {
	srv, err := s.GetGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return err
	}

	err = srv.Users.Stop("me").Do()
	if err != nil {
		return fmt.Errorf("unable to stop mailbox watch: %v", err)
	}

	return nil
}
