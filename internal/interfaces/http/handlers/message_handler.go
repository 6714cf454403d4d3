package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gin-gonic/gin"

	appmessage "github.com/nodenorm/node-normalizer/internal/application/message"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/pkg/errors"
	"github.com/nodenorm/node-normalizer/pkg/types"
)

// queryRequest is the body of POST /query: a TRAPI message wrapped in the
// standard "message" envelope, plus the conflation flags spec.md §4.F takes
// from the query body rather than the URL.
type queryRequest struct {
	Message              *types.Message `json:"message"`
	ConflateGeneProtein  bool           `json:"conflate,omitempty"`
	ConflateDrugChemical bool           `json:"drug_chemical_conflate,omitempty"`
}

// asyncQueryRequest is the body of POST /asyncquery: a queryRequest plus the
// callback URL the normalized result is POSTed to once ready.
type asyncQueryRequest struct {
	queryRequest
	Callback string `json:"callback"`
}

// queryResponse wraps a normalized Message in the TRAPI envelope.
type queryResponse struct {
	Message *types.Message `json:"message"`
}

// callbackPoster posts a normalized message to a caller-supplied URL,
// retrying on 429 and 5xx responses.
type callbackPoster interface {
	Post(ctx context.Context, url string, body []byte) error
}

// MessageHandler serves POST /query and POST /asyncquery (spec.md §4.F,
// supplemented async behavior per the original's callback contract).
type MessageHandler struct {
	normalizer *appmessage.Normalizer
	poster     callbackPoster
	logger     logging.Logger
}

// NewMessageHandler builds a MessageHandler over the given Normalizer. The
// callback HTTP client defaults to one with a 30s per-attempt timeout.
func NewMessageHandler(n *appmessage.Normalizer, log logging.Logger) *MessageHandler {
	return &MessageHandler{
		normalizer: n,
		poster:     newHTTPCallbackPoster(&http.Client{Timeout: 30 * time.Second}),
		logger:     log,
	}
}

// Query handles POST /query: synchronous TRAPI message normalization.
func (h *MessageHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAppError(c, errors.Wrap(err, errors.CodeValidationError, "malformed request body"))
		return
	}
	if req.Message == nil {
		writeAppError(c, errors.New(errors.CodeValidationError, "message is required"))
		return
	}

	out, err := h.normalizer.Normalize(c.Request.Context(), req.Message, appmessage.Options{
		ConflateGeneProtein:  req.ConflateGeneProtein,
		ConflateDrugChemical: req.ConflateDrugChemical,
	})
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, queryResponse{Message: out})
}

// AsyncQuery handles POST /asyncquery: it validates the request, answers
// immediately, and normalizes plus POSTs the result to the callback URL in
// the background, matching the original's "Query commenced" contract.
func (h *MessageHandler) AsyncQuery(c *gin.Context) {
	var req asyncQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAppError(c, errors.Wrap(err, errors.CodeValidationError, "malformed request body"))
		return
	}
	if req.Message == nil {
		writeAppError(c, errors.New(errors.CodeValidationError, "message is required"))
		return
	}
	if req.Callback == "" {
		writeAppError(c, errors.New(errors.CodeValidationError, "callback is required"))
		return
	}

	go h.runAsync(req)

	c.JSON(http.StatusOK, gin.H{
		"description": fmt.Sprintf("Query commenced. Will send result to %s", req.Callback),
	})
}

// runAsync performs the normalization and callback POST outside the
// request's lifetime, since the request's context is canceled the moment
// AsyncQuery returns its immediate response.
func (h *MessageHandler) runAsync(req asyncQueryRequest) {
	ctx := context.Background()

	out, err := h.normalizer.Normalize(ctx, req.Message, appmessage.Options{
		ConflateGeneProtein:  req.ConflateGeneProtein,
		ConflateDrugChemical: req.ConflateDrugChemical,
	})
	if err != nil {
		h.logger.Error("async normalization failed", logging.String("callback", req.Callback), logging.Err(err))
		return
	}

	body, err := json.Marshal(queryResponse{Message: out})
	if err != nil {
		h.logger.Error("failed to marshal async result", logging.String("callback", req.Callback), logging.Err(err))
		return
	}

	if err := h.poster.Post(ctx, req.Callback, body); err != nil {
		h.logger.Error("failed to deliver async callback", logging.String("callback", req.Callback), logging.Err(err))
		return
	}
	h.logger.Info("successfully delivered async callback", logging.String("callback", req.Callback))
}

// httpCallbackPoster is the production callbackPoster, retrying on 429 and
// 5xx responses with an exponential backoff (factor 3, 3 attempts total),
// matching the original's callback test expectations.
type httpCallbackPoster struct {
	client *http.Client
}

func newHTTPCallbackPoster(client *http.Client) *httpCallbackPoster {
	return &httpCallbackPoster{client: client}
}

func (p *httpCallbackPoster) Post(ctx context.Context, url string, body []byte) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("callback %s returned status %d", url, resp.StatusCode)
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("callback %s returned status %d", url, resp.StatusCode))
		default:
			return nil
		}
	}

	b := backoff.NewExponentialBackOff()
	b.Multiplier = 3
	return backoff.Retry(operation, backoff.WithMaxRetries(b, 2))
}
