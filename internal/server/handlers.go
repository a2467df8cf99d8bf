package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/flags"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/normalizer"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/rpc"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Decoder       *service.Decoder   // Normalization pipeline
	Flags         *flags.Store       // Redis-backed feature flags store (optional)
	Options       normalizer.Options // Base decode options from config
	DecodeTimeout time.Duration      // Per-request decode timeout
	DevMode       bool               // Enable detailed error responses in development
	Logger        *logrus.Logger     // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// DecodeTransaction normalizes a raw getTransaction response from the request body
func (h *Handlers) DecodeTransaction(c echo.Context) error {
	raw, err := rpc.DecodeTransactionResponse(c.Request().Body)
	if err != nil {
		return h.inputErr(c, err)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), h.DecodeTimeout)
	defer cancel()

	opts, err := h.options(ctx, c)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid query parameter", map[string]any{"err": err.Error()})
	}

	tx, err := h.Decoder.DecodeTransaction(ctx, raw, opts)
	if err != nil {
		return h.decodeErr(c, err)
	}
	return c.JSON(http.StatusOK, TransactionResponse{Transaction: tx})
}

// DecodeBlock normalizes a raw getBlock response from the request body
// Accepts policy (fail_fast|skip) and strict (bool) query parameters
func (h *Handlers) DecodeBlock(c echo.Context) error {
	raw, err := rpc.DecodeBlockResponse(c.Request().Body)
	if err != nil {
		return h.inputErr(c, err)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), h.DecodeTimeout)
	defer cancel()

	opts, err := h.options(ctx, c)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid query parameter", map[string]any{"err": err.Error()})
	}

	out, err := h.Decoder.DecodeBlock(ctx, raw, opts)
	if err != nil {
		return h.decodeErr(c, err)
	}

	skipped := make([]SkippedTransaction, 0, len(out.Skipped))
	for _, s := range out.Skipped {
		skipped = append(skipped, SkippedTransaction{Index: s.Index, Signature: s.Signature, Error: s.Err.Error()})
	}
	return c.JSON(http.StatusOK, BlockResponse{Block: out.Block, Stats: out.Stats, Skipped: skipped})
}

// options resolves decode options: config, then flags, then query parameters
func (h *Handlers) options(ctx context.Context, c echo.Context) (normalizer.Options, error) {
	opts := h.Options
	if h.Flags != nil {
		flagged, err := h.Flags.DecodeOptions(ctx, opts)
		if err != nil {
			h.Logger.WithError(err).Warn("failed to read decode flags, using config defaults")
		} else {
			opts = flagged
		}
	}

	if p := c.QueryParam("policy"); p != "" {
		policy, err := normalizer.ParsePolicy(p)
		if err != nil {
			return opts, fmt.Errorf("policy: %w", err)
		}
		opts.Policy = policy
	}
	if s := c.QueryParam("strict"); s != "" {
		strict, err := strconv.ParseBool(s)
		if err != nil {
			return opts, fmt.Errorf("strict must be a boolean: %w", err)
		}
		opts.StrictIndices = strict
	}
	return opts, nil
}

// inputErr maps loader failures to HTTP errors
func (h *Handlers) inputErr(c echo.Context, err error) error {
	var rpcErr *rpc.RPCError
	switch {
	case errors.As(err, &rpcErr):
		return h.err(c, http.StatusUnprocessableEntity, "rpc error response", map[string]any{"code": rpcErr.Code, "message": rpcErr.Message})
	case errors.Is(err, rpc.ErrEmptyResult):
		return h.err(c, http.StatusNotFound, "empty result", nil)
	case errors.Is(err, rpc.ErrMissingTransaction):
		return h.err(c, http.StatusBadRequest, "invalid input", map[string]any{"err": err.Error()})
	default:
		return h.err(c, http.StatusBadRequest, "invalid json", map[string]any{"err": err.Error()})
	}
}

// decodeErr maps validation and normalization failures to HTTP errors
func (h *Handlers) decodeErr(c echo.Context, err error) error {
	details := map[string]any{"err": err.Error()}
	var txErr *normalizer.TransactionError
	if errors.As(err, &txErr) {
		details["index"] = txErr.Index
		if txErr.Signature != "" {
			details["signature"] = txErr.Signature
		}
	}

	var valErr *rpc.ValidationError
	if errors.As(err, &valErr) {
		details["field"] = valErr.Field
		return h.err(c, http.StatusBadRequest, "invalid input", details)
	}

	var mf *normalizer.MissingFieldError
	if errors.As(err, &mf) {
		details["field"] = mf.Field
	}

	h.Logger.WithError(err).Debug("normalization failed")
	return h.err(c, http.StatusUnprocessableEntity, "normalization failed", details)
}

// FlagsUpsert creates or updates a feature flag with the given key and value
func (h *Handlers) FlagsUpsert(c echo.Context) error {
	var req FlagUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := flags.ValidateKey(req.Key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, req.Key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to upsert flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsUpdate updates an existing feature flag with the given key
func (h *Handlers) FlagsUpdate(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}
	var req FlagUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Upsert(ctx, key, req.Value)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to update flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsGet retrieves a feature flag by its key
// Returns 404 if flag doesn't exist
func (h *Handlers) FlagsGet(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Flags.Get(ctx, key)
	if err != nil {
		if errors.Is(err, flags.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "flag not found", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get flag", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// FlagsList returns all feature flags
func (h *Handlers) FlagsList(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Flags.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list flags", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// FlagsDelete removes a feature flag by its key
func (h *Handlers) FlagsDelete(c echo.Context) error {
	key := c.Param("key")
	if err := flags.ValidateKey(key); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid key", map[string]any{"key": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Flags.Delete(ctx, key); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to delete flag", nil)
	}
	return c.NoContent(http.StatusNoContent)
}
