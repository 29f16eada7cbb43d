package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/echochat/internal/config"
	"github.com/playperu/echochat/internal/handler/chat"
	"github.com/playperu/echochat/internal/handler/health"
	"github.com/playperu/echochat/internal/handler/static"
	"github.com/playperu/echochat/internal/httpjson"
)

type assetRequest struct {
	Path string `path:"path" description:"File path relative to the static directory."`
}

func newOpenAPISpec(cfg *config.Config) *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Chat API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Chat echo backend serving a single-page application.")

	// GET /
	getIndex, _ := r.NewOperationContext(http.MethodGet, "/")
	getIndex.SetSummary("Application entry")
	getIndex.SetDescription("Serves the SPA entry file, or a JSON notice when it is missing.")
	getIndex.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/html"))
	getIndex.AddRespStructure(static.IndexNotFoundResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getIndex)

	// GET {api}/
	getWelcome, _ := r.NewOperationContext(http.MethodGet, cfg.APIPrefix+"/")
	getWelcome.SetSummary("Greeting")
	getWelcome.SetDescription("Returns a static welcome message.")
	getWelcome.AddRespStructure(chat.WelcomeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getWelcome)

	// POST {api}/chat
	postChat, _ := r.NewOperationContext(http.MethodPost, cfg.APIPrefix+"/chat")
	postChat.SetSummary("Send chat message")
	postChat.SetDescription("Echoes the message back as \"Message received: <message>\".")
	postChat.AddReqStructure(chat.ChatMessage{})
	postChat.AddRespStructure(chat.ChatResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postChat.AddRespStructure(chat.ValidationErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postChat)

	// GET {static}/{path}
	getAsset, _ := r.NewOperationContext(http.MethodGet, cfg.StaticPrefix+"/{path}")
	getAsset.SetSummary("Static asset")
	getAsset.SetDescription("Streams a file from the static directory with a content type inferred from its name.")
	getAsset.AddReqStructure(assetRequest{})
	getAsset.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("application/octet-stream"))
	getAsset.AddRespStructure(httpjson.ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getAsset)

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of server dependencies.")
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	return r.Spec
}

func handleOpenAPI(cfg *config.Config) http.HandlerFunc {
	spec := newOpenAPISpec(cfg)
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
