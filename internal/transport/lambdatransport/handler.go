package lambdatransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/awmpietro/quantum-dilemma/internal/app"
	"github.com/awmpietro/quantum-dilemma/internal/transport/sessiondto"
)

type Handler struct {
	svc    app.SessionService
	logger *zap.Logger
}

func NewHandler(svc app.SessionService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Handle routes an API Gateway v2 request by its route key, falling back to
// method and raw path for $default routes.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method, path := route(req)

	switch path {
	case "/session/start":
		return h.post(method, req, h.start), nil
	case "/session/choice":
		return h.post(method, req, h.choose), nil
	case "/session/reset":
		return h.post(method, req, h.reset), nil
	case "/session/query":
		return h.post(method, req, h.query), nil
	case "/narrative":
		if method != http.MethodGet {
			return methodNotAllowed(), nil
		}
		info, err := h.svc.Narrative("")
		if err != nil {
			return h.fail("narrative failed", err), nil
		}
		return jsonResp(http.StatusOK, sessiondto.NewNarrativeResponse(info)), nil
	case "/healthz":
		if method != http.MethodGet {
			return methodNotAllowed(), nil
		}
		return jsonResp(http.StatusOK, map[string]string{"status": "ok"}), nil
	}
	return jsonResp(http.StatusNotFound, sessiondto.ErrorResponse{Error: "route not found", Code: "NOT_FOUND", Details: method + " " + path}), nil
}

func (h *Handler) post(method string, req events.APIGatewayV2HTTPRequest, fn func(body []byte) events.APIGatewayV2HTTPResponse) events.APIGatewayV2HTTPResponse {
	if method != http.MethodPost {
		return methodNotAllowed()
	}
	body, err := readBody(req)
	if err != nil {
		return jsonResp(http.StatusBadRequest, sessiondto.BadRequest("invalid body", err))
	}
	return fn(body)
}

func (h *Handler) start(body []byte) events.APIGatewayV2HTTPResponse {
	var in sessiondto.StartRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResp(http.StatusBadRequest, sessiondto.BadRequest("invalid json", err))
	}
	out, err := h.svc.Start(in.GraphDOT)
	if err != nil {
		return h.fail("start failed", err)
	}
	return jsonResp(http.StatusOK, sessiondto.NewSessionResponse(out))
}

func (h *Handler) choose(body []byte) events.APIGatewayV2HTTPResponse {
	var in sessiondto.ChoiceRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResp(http.StatusBadRequest, sessiondto.BadRequest("invalid json", err))
	}
	out, err := h.svc.Choose(in.GraphDOT, in.Timelines, in.TimelineID, in.ChoiceID)
	if err != nil {
		return h.fail("choice failed", err)
	}
	return jsonResp(http.StatusOK, sessiondto.NewSessionResponse(out))
}

func (h *Handler) reset(body []byte) events.APIGatewayV2HTTPResponse {
	var in sessiondto.StartRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResp(http.StatusBadRequest, sessiondto.BadRequest("invalid json", err))
	}
	out, err := h.svc.Reset(in.GraphDOT)
	if err != nil {
		return h.fail("reset failed", err)
	}
	return jsonResp(http.StatusOK, sessiondto.NewSessionResponse(out))
}

func (h *Handler) query(body []byte) events.APIGatewayV2HTTPResponse {
	var in sessiondto.QueryRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResp(http.StatusBadRequest, sessiondto.BadRequest("invalid json", err))
	}
	matches, err := h.svc.Query(in.GraphDOT, in.Timelines, in.Where)
	if err != nil {
		return h.fail("query failed", err)
	}
	return jsonResp(http.StatusOK, sessiondto.NewQueryResponse(matches))
}

func (h *Handler) fail(summary string, err error) events.APIGatewayV2HTTPResponse {
	status, body := sessiondto.NewErrorResponse(summary, err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(summary, zap.Error(err))
	}
	return jsonResp(status, body)
}

func route(req events.APIGatewayV2HTTPRequest) (method, path string) {
	if m, p, ok := strings.Cut(req.RouteKey, " "); ok {
		return strings.ToUpper(m), p
	}
	method = req.RequestContext.HTTP.Method
	path = req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}
	return strings.ToUpper(method), path
}

func readBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	if req.Body == "" {
		return []byte("{}"), nil
	}
	return []byte(req.Body), nil
}

func methodNotAllowed() events.APIGatewayV2HTTPResponse {
	return jsonResp(http.StatusMethodNotAllowed, sessiondto.ErrorResponse{Error: "method not allowed", Code: "INVALID_ARGUMENT"})
}

func jsonResp(status int, body any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(b),
	}
}
