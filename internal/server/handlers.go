package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/petasbytes/form-agent/internal/runner"
	"github.com/petasbytes/form-agent/schema"
	"github.com/petasbytes/form-agent/session"
	"github.com/petasbytes/form-agent/tools"
)

type createSessionRequest struct {
	Language string `json:"language"`
}

func (s *Server) createSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	sess := session.New(req.Language)
	if err := s.save(c, sess); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to save session")
	}
	return c.JSON(http.StatusCreated, map[string]any{"sessionId": sess.ID, "session": sess})
}

func (s *Server) getSession(c echo.Context) error {
	sess, ok, err := s.load(c, c.Param("id"))
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, sess)
}

func (s *Server) deleteSession(c echo.Context) error {
	id := c.Param("id")
	unlock := s.locks.Lock(id)
	defer unlock()
	if err := s.store.Delete(c.Request().Context(), id); err != nil {
		s.logger.Error("delete session", "session", id, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "failed to delete session")
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) getSchema(c echo.Context) error {
	sess, ok, err := s.load(c, c.Param("id"))
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, sess.SchemaState)
}

type putSchemaRequest struct {
	JSONSchema map[string]any `json:"jsonSchema"`
	UISchema   map[string]any `json:"uiSchema"`
}

// putSchema replaces the document wholesale. The replacement is validated
// like any edit and bumps the version.
func (s *Server) putSchema(c echo.Context) error {
	var req putSchemaRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	id := c.Param("id")
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, ok, err := s.load(c, id)
	if !ok {
		return err
	}
	doc, err := schema.Replace(sess.SchemaState, req.JSONSchema, req.UISchema)
	if err != nil {
		resp := map[string]any{"error": err.Error()}
		if ve, isVE := err.(*schema.ValidationError); isVE {
			resp["errors"] = ve.Messages()
		}
		return c.JSON(http.StatusUnprocessableEntity, resp)
	}
	sess = sess.WithDocument(doc)
	if err := s.save(c, sess); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to save session")
	}
	return c.JSON(http.StatusOK, sess.SchemaState)
}

type toolRequest struct {
	ToolName string         `json:"toolName"`
	Args     map[string]any `json:"args"`
}

type toolResponse struct {
	tools.Result
	SchemaState          schema.Document        `json:"schemaState"`
	PendingClarification *session.Clarification `json:"pendingClarification,omitempty"`
}

// executeTool runs one tool call on behalf of a client that executes tools
// itself. Router failures are data, so the status is 200 either way.
func (s *Server) executeTool(c echo.Context) error {
	var req toolRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.ToolName == "" {
		return errorJSON(c, http.StatusBadRequest, "toolName is required")
	}
	id := c.Param("id")
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, ok, err := s.load(c, id)
	if !ok {
		return err
	}
	// each request is its own turn
	turn := tools.Turn{Logger: s.logger.With("session", id)}
	res := turn.Execute(req.ToolName, req.Args, sess)
	if res.OK {
		if err := s.save(c, res.Session); err != nil {
			return errorJSON(c, http.StatusInternalServerError, "failed to save session")
		}
	}
	return c.JSON(http.StatusOK, toolResponse{
		Result:               res,
		SchemaState:          res.Session.SchemaState,
		PendingClarification: res.Session.PendingClarification,
	})
}

type clarificationRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) answerClarification(c echo.Context) error {
	var req clarificationRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	id := c.Param("id")
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, ok, err := s.load(c, id)
	if !ok {
		return err
	}
	if sess.PendingClarification == nil {
		return errorJSON(c, http.StatusConflict, "no pending clarification")
	}
	sess = sess.ClearClarification()
	if answer := strings.TrimSpace(req.Answer); answer != "" {
		sess = sess.AppendMessages(session.Message{Role: "user", Content: answer})
	}
	if err := s.save(c, sess); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to save session")
	}
	return c.JSON(http.StatusOK, sess)
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Text                 string                 `json:"text"`
	Tools                []runner.ToolOutcome   `json:"tools"`
	SchemaState          schema.Document        `json:"schemaState"`
	PendingClarification *session.Clarification `json:"pendingClarification,omitempty"`
}

func (s *Server) chat(c echo.Context) error {
	if s.runner == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "chat is not configured")
	}
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" || strings.TrimSpace(req.Message) == "" {
		return errorJSON(c, http.StatusBadRequest, "sessionId and message are required")
	}
	unlock := s.locks.Lock(req.SessionID)
	defer unlock()

	sess, ok, err := s.load(c, req.SessionID)
	if !ok {
		return err
	}
	res, runErr := s.runner.RunTurn(c.Request().Context(), sess, req.Message)
	// committed edits are kept even when the turn failed part way
	if err := s.save(c, res.Session); err != nil {
		return errorJSON(c, http.StatusInternalServerError, "failed to save session")
	}
	if runErr != nil {
		s.logger.Error("agent turn failed", "session", sess.ID, "error", runErr)
		return errorJSON(c, http.StatusBadGateway, runErr.Error())
	}
	outcomes := res.Tools
	if outcomes == nil {
		outcomes = []runner.ToolOutcome{}
	}
	return c.JSON(http.StatusOK, chatResponse{
		Text:                 res.Text,
		Tools:                outcomes,
		SchemaState:          res.Session.SchemaState,
		PendingClarification: res.Session.PendingClarification,
	})
}
