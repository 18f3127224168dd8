package server

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"

	"duochat/internal/chat"
	"duochat/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"
)

// maxUploadSize bounds the in-memory part of a multipart media upload.
const maxUploadSize = 10 << 20

type parsers struct {
	syncUserPool         fastjson.ParserPool
	createChatPool       fastjson.ParserPool
	createMessagePool    fastjson.ParserPool
	chatsByUserIDPool    fastjson.ParserPool
	messagesByChatIDPool fastjson.ParserPool
	markSeenPool         fastjson.ParserPool
}

type handler struct {
	logger   *zap.SugaredLogger
	service  *chat.Service
	registry *realtime.Registry
	upgrader websocket.Upgrader
	parsers  parsers
}

// stringField extracts a required non-empty string field from a parsed JSON
// value. The second return carries a client-facing complaint when the field
// is missing or unusable.
func stringField(v *fastjson.Value, name string) (string, string) {
	if !v.Exists(name) {
		return "", "Missing Field \"" + name + "\""
	}

	value := v.Get(name)
	if value.Type() != fastjson.TypeString {
		return "", "Field \"" + name + "\" must be a string"
	}

	s := strings.Trim(string(value.MarshalTo(nil)), `"`)
	if len(s) == 0 {
		return "", "Field \"" + name + "\" must have non-zero length"
	}

	return s, ""
}

// syncUser handles HTTP requests on "/users/sync" endpoint
func (h *handler) syncUser(w http.ResponseWriter, r *http.Request) {
	body, _ := ioutil.ReadAll(r.Body)

	parser := h.parsers.syncUserPool.Get()
	defer h.parsers.syncUserPool.Put(parser)
	v, _ := parser.ParseBytes(body)

	if _, complaint := stringField(v, "sub"); complaint != "" {
		http.Error(w, complaint, http.StatusBadRequest)
		return
	}

	var claims chat.Claims
	if err := json.Unmarshal(body, &claims); err != nil {
		http.Error(w, "Malformed JSON", http.StatusBadRequest)
		return
	}

	user, err := h.service.SyncUser(r.Context(), claims)
	if err != nil {
		h.logger.Error(err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, user)
}

// createChat handles HTTP requests on "/chats/add" endpoint
func (h *handler) createChat(w http.ResponseWriter, r *http.Request) {
	body, _ := ioutil.ReadAll(r.Body)

	parser := h.parsers.createChatPool.Get()
	defer h.parsers.createChatPool.Put(parser)
	v, _ := parser.ParseBytes(body)

	sender, complaint := stringField(v, "sender")
	if complaint != "" {
		http.Error(w, complaint, http.StatusBadRequest)
		return
	}

	receiver, complaint := stringField(v, "receiver")
	if complaint != "" {
		http.Error(w, complaint, http.StatusBadRequest)
		return
	}

	id, err := h.service.GetOrCreateChat(r.Context(), sender, receiver)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrSameParticipants):
			http.Error(w, "Sender and receiver must be distinct users", http.StatusBadRequest)
		case errors.Is(err, chat.ErrUserNotExist):
			http.Error(w, "User with provided id does not exist", http.StatusBadRequest)
		default:
			h.logger.Error(err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.writeRaw(w, http.StatusCreated, []byte(`{"id":"`+id+`"}`))
}

// chatsByUserID handles HTTP requests on "/chats/get" endpoint
func (h *handler) chatsByUserID(w http.ResponseWriter, r *http.Request) {
	body, _ := ioutil.ReadAll(r.Body)

	parser := h.parsers.chatsByUserIDPool.Get()
	defer h.parsers.chatsByUserIDPool.Put(parser)
	v, _ := parser.ParseBytes(body)

	user, complaint := stringField(v, "user")
	if complaint != "" {
		http.Error(w, complaint, http.StatusBadRequest)
		return
	}

	chats, err := h.service.ChatsForUser(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrUserNotExist):
			http.Error(w, "User does not exist", http.StatusBadRequest)
		default:
			h.logger.Error(err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, chats)
}

// createMessage handles HTTP requests on "/messages/add" endpoint
func (h *handler) createMessage(w http.ResponseWriter, r *http.Request) {
	body, _ := ioutil.ReadAll(r.Body)

	parser := h.parsers.createMessagePool.Get()
	defer h.parsers.createMessagePool.Put(parser)
	v, _ := parser.ParseBytes(body)

	chatID, complaint := stringField(v, "chat")
	if complaint != "" {
		http.Error(w, complaint, http.StatusBadRequest)
		return
	}

	sender, complaint := stringField(v, "sender")
	if complaint != "" {
		http.Error(w, complaint, http.StatusBadRequest)
		return
	}

	receiver, complaint := stringField(v, "receiver")
	if complaint != "" {
		http.Error(w, complaint, http.StatusBadRequest)
		return
	}

	content, complaint := stringField(v, "content")
	if complaint != "" {
		http.Error(w, complaint, http.StatusBadRequest)
		return
	}

	id, err := h.service.SendMessage(r.Context(), chat.SendMessageRequest{
		ChatID:     chatID,
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
	})
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrChatNotExist):
			http.Error(w, "Chat with provided id does not exist", http.StatusBadRequest)
		case errors.Is(err, chat.ErrUserNotExist):
			http.Error(w, "User with provided id does not exist", http.StatusBadRequest)
		default:
			h.logger.Error(err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.writeRaw(w, http.StatusCreated, []byte(`{"id":`+strconv.FormatInt(id, 10)+`}`))
}

// messagesByChatID handles HTTP requests on "/messages/get" endpoint
func (h *handler) messagesByChatID(w http.ResponseWriter, r *http.Request) {
	body, _ := ioutil.ReadAll(r.Body)

	parser := h.parsers.messagesByChatIDPool.Get()
	defer h.parsers.messagesByChatIDPool.Put(parser)
	v, _ := parser.ParseBytes(body)

	chatID, complaint := stringField(v, "chat")
	if complaint != "" {
		http.Error(w, complaint, http.StatusBadRequest)
		return
	}

	messages, err := h.service.MessagesByChat(r.Context(), chatID)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrChatNotExist):
			http.Error(w, "Chat does not exist", http.StatusBadRequest)
		default:
			h.logger.Error(err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, messages)
}

// markSeen handles HTTP requests on "/messages/seen" endpoint
func (h *handler) markSeen(w http.ResponseWriter, r *http.Request) {
	body, _ := ioutil.ReadAll(r.Body)

	parser := h.parsers.markSeenPool.Get()
	defer h.parsers.markSeenPool.Put(parser)
	v, _ := parser.ParseBytes(body)

	chatID, complaint := stringField(v, "chat")
	if complaint != "" {
		http.Error(w, complaint, http.StatusBadRequest)
		return
	}

	user, complaint := stringField(v, "user")
	if complaint != "" {
		http.Error(w, complaint, http.StatusBadRequest)
		return
	}

	if err := h.service.MarkSeen(r.Context(), chatID, user); err != nil {
		switch {
		case errors.Is(err, chat.ErrChatNotExist):
			http.Error(w, "Chat does not exist", http.StatusBadRequest)
		default:
			h.logger.Error(err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.writeRaw(w, http.StatusOK, []byte(`{}`))
}

// uploadMedia handles multipart HTTP requests on "/media/add" endpoint
func (h *handler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.Header().Set("Allow", "POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Malformed multipart body", http.StatusBadRequest)
		return
	}

	chatID := r.FormValue("chat")
	if chatID == "" {
		http.Error(w, "Missing Field \"chat\"", http.StatusBadRequest)
		return
	}

	user := r.FormValue("user")
	if user == "" {
		http.Error(w, "Missing Field \"user\"", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file part \"file\"", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := ioutil.ReadAll(file)
	if err != nil {
		http.Error(w, "Can not read file part", http.StatusBadRequest)
		return
	}

	id, err := h.service.UploadMedia(r.Context(), chatID, user, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrChatNotExist):
			http.Error(w, "Chat does not exist", http.StatusBadRequest)
		case errors.Is(err, chat.ErrUserNotExist):
			http.Error(w, "User does not exist", http.StatusBadRequest)
		case errors.Is(err, chat.ErrUnknownAttachment):
			http.Error(w, "Unsupported attachment type", http.StatusUnsupportedMediaType)
		default:
			h.logger.Error(err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.writeRaw(w, http.StatusCreated, []byte(`{"id":`+strconv.FormatInt(id, 10)+`}`))
}

// serveWS handles websocket upgrades on "/ws" endpoint and registers the
// connection as the user's active one.
func (h *handler) serveWS(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		http.Error(w, "Missing query parameter \"user\"", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorf("upgrading connection for user (id: %s): %v", user, err)
		return
	}

	h.registry.Register(user, conn)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error(err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.writeRaw(w, status, data)
}

func (h *handler) writeRaw(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		h.logger.Errorf("writing marshaled data to ResponseWriter: %v", err)
	}
}
