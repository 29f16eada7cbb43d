// Package chat implements the greeting and echo routes. The handler is not
// tied to a listener, so a composition can mount it under any prefix.
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/playperu/echochat/internal/httpjson"
)

const (
	WelcomeMessage = "Welcome to the chat server (router)!"
	echoPrefix     = "Message received: "

	maxBodyBytes = 1 << 20
)

// ChatMessage is the body accepted by POST /chat. Message is a pointer so that
// an absent field and an empty string stay distinguishable.
type ChatMessage struct {
	Message *string `json:"message" validate:"required" required:"true"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type WelcomeResponse struct {
	Message string `json:"message"`
}

// Echo formats the reply for a chat message.
func Echo(message string) ChatResponse {
	return ChatResponse{Response: echoPrefix + message}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.welcome)
	r.Post("/chat", h.chat)
	return r
}

func (h *Handler) welcome(w http.ResponseWriter, _ *http.Request) {
	httpjson.Write(w, http.StatusOK, WelcomeResponse{Message: WelcomeMessage})
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	msg, err := decodeChatMessage(w, r)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			h.logger.Debug("rejected chat message", "error", verr)
			httpjson.Write(w, http.StatusUnprocessableEntity, verr.Response())
			return
		}
		h.logger.Error("reading chat message", "error", err)
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, Echo(*msg.Message))
}

// decodeChatMessage reads and validates the request body. Every failure caused
// by the client is returned as *ValidationError. Field names match exactly;
// encoding/json alone would accept "Message" or "MESSAGE".
func decodeChatMessage(w http.ResponseWriter, r *http.Request) (ChatMessage, error) {
	var fields map[string]json.RawMessage
	if err := httpjson.Read(w, r, maxBodyBytes, &fields); err != nil {
		return ChatMessage{}, decodeError(err)
	}
	if fields == nil {
		// literal null body
		return ChatMessage{}, &ValidationError{Fields: []FieldError{{
			Field:  "body",
			Reason: "expected object, got null",
		}}}
	}

	var msg ChatMessage
	if raw, ok := fields["message"]; ok {
		if err := json.Unmarshal(raw, &msg.Message); err != nil {
			verr := decodeError(err)
			verr.Fields[0].Field = "message"
			return ChatMessage{}, verr
		}
	}

	if err := validate.Struct(msg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ChatMessage{}, fmt.Errorf("validating chat message: %w", err)
		}
		return ChatMessage{}, &ValidationError{
			Fields: lo.Map(verrs, func(fe validator.FieldError, _ int) FieldError {
				return FieldError{Field: fe.Field(), Reason: reasonFor(fe.Tag())}
			}),
		}
	}
	return msg, nil
}

func decodeError(err error) *ValidationError {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		sizeErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &ValidationError{Fields: []FieldError{{
			Field:  field,
			Reason: fmt.Sprintf("expected %s, got %s", jsonKind(typeErr.Type), typeErr.Value),
		}}}
	case errors.As(err, &sizeErr):
		return &ValidationError{Fields: []FieldError{{
			Field:  "body",
			Reason: fmt.Sprintf("exceeds %d bytes", sizeErr.Limit),
		}}}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, httpjson.ErrTrailingData):
		return &ValidationError{Fields: []FieldError{{Field: "body", Reason: "invalid JSON"}}}
	case errors.Is(err, io.EOF):
		return &ValidationError{Fields: []FieldError{{Field: "body", Reason: "required"}}}
	default:
		return &ValidationError{Fields: []FieldError{{Field: "body", Reason: err.Error()}}}
	}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.Kind().String()
	}
}

func reasonFor(tag string) string {
	if tag == "required" {
		return "required"
	}
	return "failed " + tag
}
