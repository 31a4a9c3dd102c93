package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/wanirfan/atlast/internal/agent/core"
	"github.com/wanirfan/atlast/utils"
)

const sessionHeader = "X-Session-ID"

type askRequest struct {
	Query    string `json:"query"`
	ImageB64 string `json:"image_base64,omitempty"`
	Document string `json:"document,omitempty"`
}

type askResponse struct {
	SessionID string `json:"session_id"`
	core.AnswerResult
}

// handleAsk runs one QA episode for the domain in the path. The answer
// body keeps the stable result shape; only failures of the transport
// contract itself map to non-200 statuses.
func (s *Server) handleAsk(c echo.Context) error {
	domain, err := core.ParseDomain(c.Param("domain"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if !s.engine.DomainLoaded(domain) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "system not loaded")
	}

	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	sessionID := c.Request().Header.Get(sessionHeader)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx := c.Request().Context()
	history, err := s.store.History(ctx, sessionID, domain)
	if err != nil {
		s.logger.Printf("history load failed for %s: %v", sessionID, err)
		history = nil // degrade to a fresh conversation
	}

	result, err := s.engine.Ask(ctx, core.AskRequest{
		Domain:   domain,
		Query:    req.Query,
		History:  history,
		ImageB64: req.ImageB64,
		Document: req.Document,
	})
	switch {
	case errors.Is(err, core.ErrDomainNotLoaded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "system not loaded")
	case errors.Is(err, core.ErrNoInput), errors.Is(err, core.ErrDocumentUnsupported):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return err
	}

	// Web clients render HTML, so bold markdown converts on the way out
	result.Answer = utils.MarkdownBoldToHTML(result.Answer)

	if req.Query != "" {
		if err := s.store.Append(ctx, sessionID, domain,
			core.Message{Role: "user", Content: req.Query},
			core.Message{Role: "assistant", Content: result.Answer},
		); err != nil {
			s.logger.Printf("history append failed for %s: %v", sessionID, err)
		}
	}

	c.Response().Header().Set(sessionHeader, sessionID)
	return c.JSON(http.StatusOK, askResponse{SessionID: sessionID, AnswerResult: result})
}

// handleHistory returns the session's conversation for the domain
func (s *Server) handleHistory(c echo.Context) error {
	domain, err := core.ParseDomain(c.Param("domain"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	sessionID := c.Request().Header.Get(sessionHeader)
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing "+sessionHeader+" header")
	}

	history, err := s.store.History(c.Request().Context(), sessionID, domain)
	if err != nil {
		return err
	}
	if history == nil {
		history = []core.Message{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"session_id": sessionID, "history": history})
}

// handleClear drops the session's conversation for the domain
func (s *Server) handleClear(c echo.Context) error {
	domain, err := core.ParseDomain(c.Param("domain"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	sessionID := c.Request().Header.Get(sessionHeader)
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing "+sessionHeader+" header")
	}

	if err := s.store.Clear(c.Request().Context(), sessionID, domain); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}
