// Package api exposes verification over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"addressproof/internal/logger"
	"addressproof/internal/upload"
	"addressproof/internal/verifier"
)

const (
	// ServiceName is reported by the health endpoint.
	ServiceName = "addressproof"

	formFieldDocument = "document"
	formFieldName     = "name"

	// StatusClientClosedRequest is returned when the caller went away mid-verification.
	StatusClientClosedRequest = 499

	// multipartOverhead is allowed on top of the document size for form fields and boundaries.
	multipartOverhead = 64 << 10
)

// Verifier runs a verification.
type Verifier interface {
	Verify(ctx context.Context, req *verifier.Request) (*verifier.Result, error)
}

// VerifyResponse is the JSON body returned by POST /api/v1/verify.
type VerifyResponse struct {
	RequestID          string                   `json:"request_id"`
	IsValid            bool                     `json:"is_valid"`
	Message            string                   `json:"message"`
	FoundLocations     []string                 `json:"found_locations"`
	LocationMatches    []verifier.LocationMatch `json:"location_matches,omitempty"`
	NameMatched        bool                     `json:"name_matched"`
	ExtractedName      string                   `json:"extracted_name,omitempty"`
	HasAddressKeywords bool                     `json:"has_address_keywords"`
	OCRConfidence      float32                  `json:"ocr_confidence"`
	FailureKind        string                   `json:"failure_kind,omitempty"`
	FailureReason      string                   `json:"failure_reason,omitempty"`
	RawText            string                   `json:"raw_text,omitempty"`
}

// HealthResponse is the JSON body returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// Handler serves the verification API.
type Handler struct {
	verifier Verifier
	policy   upload.Policy
	gatherer prometheus.Gatherer
	started  time.Time
}

// NewHandler creates a handler. A nil gatherer disables GET /metrics.
func NewHandler(v Verifier, policy upload.Policy, gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		verifier: v,
		policy:   policy,
		gatherer: gatherer,
		started:  time.Now(),
	}
}

// Router builds the gin engine with middleware and routes.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestIDMiddleware(), LoggerMiddleware())

	router.GET("/health", h.Health)
	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	v1.POST("/verify", h.Verify)

	return router
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: ServiceName,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

// Verify handles POST /api/v1/verify. The document is sent as the multipart file
// field "document", the optional expected name as the field "name". Pass
// ?raw=true to include the OCR text in the response.
func (h *Handler) Verify(c *gin.Context) {
	log := logger.WithContext(c.Request.Context())
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.policy.Limit()+multipartOverhead)

	fileHeader, err := c.FormFile(formFieldDocument)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			abortWithError(c, http.StatusBadRequest, upload.ErrTooLarge)
			return
		}
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("document file is required: %w", err))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if _, err := h.policy.Validate(contentType, fileHeader.Size); err != nil {
		log.Debug().Err(err).Str("filename", fileHeader.Filename).Msg("Upload rejected")
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	data, err := readFormFile(fileHeader)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	req, err := verifier.NewRequest(data, contentType, c.PostForm(formFieldName),
		verifier.WithRequestID(c.GetString(requestIDKey)))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	result, err := h.verifier.Verify(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) {
			status = StatusClientClosedRequest
		}
		abortWithError(c, status, err)
		return
	}

	resp := newVerifyResponse(req.ID(), result)
	if c.Query("raw") == "true" {
		resp.RawText = result.RawExtractedText
	}
	c.JSON(http.StatusOK, resp)
}

func newVerifyResponse(requestID string, r *verifier.Result) VerifyResponse {
	return VerifyResponse{
		RequestID:          requestID,
		IsValid:            r.IsValid,
		Message:            r.Message(),
		FoundLocations:     r.FoundLocations,
		LocationMatches:    r.LocationMatches,
		NameMatched:        r.NameMatched,
		ExtractedName:      r.ExtractedNameFragment,
		HasAddressKeywords: r.HasAddressKeywords,
		OCRConfidence:      r.OCRConfidence,
		FailureKind:        string(r.FailureKind),
		FailureReason:      r.FailureReason,
	}
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded document: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded document: %w", err)
	}
	return data, nil
}

func abortWithError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
