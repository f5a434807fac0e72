package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"markethub/internal/domain"
	"markethub/internal/feed"
	"markethub/internal/livesync"
)

// Terminal chat client. Logs in, opens a live subscription on the messages
// table and mirrors it into a collection; typed lines are sent with a
// correlation id and rendered optimistically until the feed echo lands.
func main() {
	server := flag.String("server", "http://localhost:8080", "API base URL")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "login password")
	peer := flag.Int64("peer", 0, "user id to chat with")
	flag.Parse()

	if *email == "" || *password == "" || *peer == 0 {
		flag.Usage()
		os.Exit(2)
	}

	token, me, err := login(*server, *email, *password)
	if err != nil {
		log.Fatal().Err(err).Msg("login")
	}

	conn, err := dial(*server, token)
	if err != nil {
		log.Fatal().Err(err).Msg("connect websocket")
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{
		"action": "subscribe",
		"sub_id": "inbox",
		"table":  "messages",
	}); err != nil {
		log.Fatal().Err(err).Msg("subscribe")
	}

	// Message threads append at the bottom.
	inbox := livesync.NewCollection(true)
	go readFrames(conn, inbox, me, *peer)

	fmt.Printf("chatting with user %d, type a message and press enter\n", *peer)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		send(*server, token, inbox, me, *peer, text)
		render(inbox, me, *peer)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func login(server, email, password string) (token string, userID int64, err error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(server+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", 0, err
	}
	if !env.Success {
		if env.Error != nil {
			return "", 0, fmt.Errorf("login failed: %s", env.Error.Message)
		}
		return "", 0, fmt.Errorf("login failed: status %d", resp.StatusCode)
	}

	var data struct {
		Token string       `json:"token"`
		User  *domain.User `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", 0, err
	}
	return data.Token, data.User.ID, nil
}

func dial(server, token string) (*websocket.Conn, error) {
	u, err := url.Parse(server)
	if err != nil {
		return nil, err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	wsURL := fmt.Sprintf("%s://%s/api/v1/ws?token=%s", scheme, u.Host, url.QueryEscape(token))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	return conn, err
}

// serverFrame is the gateway frame with message rows decoded concretely.
type serverFrame struct {
	Type  string           `json:"type"`
	SubID string           `json:"sub_id"`
	Rows  []domain.Message `json:"rows"`
	Event *struct {
		Type     feed.EventType  `json:"type"`
		ID       int64           `json:"id"`
		ClientID string          `json:"client_id"`
		Row      *domain.Message `json:"row"`
	} `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func readFrames(conn *websocket.Conn, inbox *livesync.Collection, me, peer int64) {
	for {
		var frame serverFrame
		if err := conn.ReadJSON(&frame); err != nil {
			log.Fatal().Err(err).Msg("connection lost")
		}

		switch frame.Type {
		case "snapshot":
			rows := make([]feed.Row, 0, len(frame.Rows))
			for i := range frame.Rows {
				rows = append(rows, &frame.Rows[i])
			}
			inbox.SetSnapshot(rows)

		case "change":
			if frame.Event == nil {
				continue
			}
			evt := feed.Event{
				Table:    feed.TableMessages,
				Type:     frame.Event.Type,
				ID:       frame.Event.ID,
				ClientID: frame.Event.ClientID,
			}
			if frame.Event.Row != nil {
				evt.Row = frame.Event.Row
			}
			inbox.Apply(evt)

		case "error":
			log.Fatal().Str("code", frame.Code).Str("message", frame.Message).Msg("subscription error")
		}

		render(inbox, me, peer)
	}
}

func send(server, token string, inbox *livesync.Collection, me, peer int64, text string) {
	clientID := uuid.NewString()
	inbox.AddPending(clientID, &domain.Message{
		ClientID:    clientID,
		SenderID:    me,
		RecipientID: peer,
		Content:     text,
		Type:        domain.MessageText,
		CreatedAt:   time.Now(),
	})

	body, _ := json.Marshal(map[string]any{
		"recipient_id": peer,
		"content":      text,
		"client_id":    clientID,
	})
	req, _ := http.NewRequest(http.MethodPost, server+"/api/v1/chat/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil || resp.StatusCode >= 400 {
		inbox.DropPending(clientID)
		log.Warn().Err(err).Msg("send failed, message rolled back")
	}
	if resp != nil {
		resp.Body.Close()
	}
}

func render(inbox *livesync.Collection, me, peer int64) {
	fmt.Print("\033[H\033[2J")
	for _, r := range inbox.Rows() {
		m, ok := r.(*domain.Message)
		if !ok {
			continue
		}
		if m.SenderID != peer && m.RecipientID != peer {
			continue
		}

		who := "them"
		if m.SenderID == me {
			who = "you"
			if m.ID == 0 {
				who = "you (sending)"
			}
		}
		fmt.Printf("[%s] %s\n", who, m.Content)
	}
	fmt.Print("> ")
}
