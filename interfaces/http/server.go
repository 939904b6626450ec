// interfaces/http/server.go
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"screener/internal/common/errors"
	"screener/internal/common/logger"
	"screener/internal/interview/session"
	"screener/internal/models"
)

// Server exposes the interview workflow over HTTP. All state lives in the
// session store, so handlers are stateless request translators around the
// controller.
type Server struct {
	controller *session.Controller
	logger     logger.Logger
}

func NewServer(controller *session.Controller, log logger.Logger) *Server {
	return &Server{
		controller: controller,
		logger:     log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/sessions", s.startSession)
		v1.GET("/sessions/:id", s.getSession)
		v1.GET("/sessions/:id/evaluation", s.getEvaluation)
		v1.POST("/sessions/:id/intake", s.submitIntake)
		v1.PUT("/sessions/:id/answer", s.setAnswer)
		v1.POST("/sessions/:id/previous", s.previous)
		v1.POST("/sessions/:id/next", s.next)
		v1.POST("/sessions/:id/submit", s.submitAnswers)
		v1.POST("/sessions/:id/chat", s.chat)
		v1.POST("/sessions/:id/complete", s.complete)
		v1.POST("/sessions/:id/reset", s.reset)
		v1.POST("/sessions/:id/end", s.end)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) startSession(c *gin.Context) {
	sess, err := s.controller.Start(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionView(sess))
}

func (s *Server) getSession(c *gin.Context) {
	sess, err := s.controller.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(sess))
}

func (s *Server) getEvaluation(c *gin.Context) {
	sess, err := s.controller.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	if sess.Evaluation == nil {
		s.renderError(c, errors.NewInvalidPhaseTransitionError(string(sess.Phase), "get_evaluation"))
		return
	}
	c.JSON(http.StatusOK, evaluationView(sess.Evaluation))
}

func (s *Server) submitIntake(c *gin.Context) {
	var profile models.CandidateProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		s.renderError(c, errors.NewValidationFailedError(err.Error()))
		return
	}
	sess, err := s.controller.SubmitIntake(c.Request.Context(), c.Param("id"), profile)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(sess))
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) setAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, errors.NewValidationFailedError(err.Error()))
		return
	}
	sess, err := s.controller.SetAnswer(c.Request.Context(), c.Param("id"), req.Answer)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(sess))
}

func (s *Server) previous(c *gin.Context) {
	s.transition(c, s.controller.Previous)
}

func (s *Server) next(c *gin.Context) {
	s.transition(c, s.controller.Next)
}

type submitRequest struct {
	// Answer is the in-flight text for the last question. A null or
	// missing field keeps the stored answer; an empty string clears it.
	Answer *string `json:"answer"`
}

// submitAnswers accepts an optional body carrying the in-flight answer
// for the last question, so the client does not need a separate save.
func (s *Server) submitAnswers(c *gin.Context) {
	var req submitRequest
	_ = c.ShouldBindJSON(&req)

	sess, err := s.controller.SubmitAnswers(c.Request.Context(), c.Param("id"), req.Answer)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(sess))
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply      string           `json:"reply"`
	Transcript []models.Message `json:"transcript"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, errors.NewValidationFailedError(err.Error()))
		return
	}
	sess, err := s.controller.Discuss(c.Request.Context(), c.Param("id"), req.Message)
	if err != nil {
		s.renderError(c, err)
		return
	}
	reply := ""
	if len(sess.Transcript) > 0 {
		reply = sess.Transcript[len(sess.Transcript)-1].Content
	}
	c.JSON(http.StatusOK, chatResponse{Reply: reply, Transcript: sess.Transcript})
}

func (s *Server) complete(c *gin.Context) {
	sess, err := s.controller.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"phase":  sess.Phase,
		"report": sess.Report,
	})
}

func (s *Server) reset(c *gin.Context) {
	s.transition(c, s.controller.Reset)
}

func (s *Server) end(c *gin.Context) {
	s.transition(c, s.controller.End)
}

func (s *Server) transition(c *gin.Context, op func(ctx context.Context, id string) (*models.Session, error)) {
	sess, err := op(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(sess))
}

// renderError maps coded errors onto HTTP statuses; anything uncoded is a
// plain 500.
func (s *Server) renderError(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	status := http.StatusInternalServerError

	switch code {
	case errors.ErrCodeValidationFailed:
		status = http.StatusBadRequest
	case errors.ErrCodeSessionNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidPhaseTransition:
		status = http.StatusConflict
	case errors.ErrCodeRoleProfileNotFound:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeGenerationFormatInvalid,
		errors.ErrCodeGenerationUnavailable,
		errors.ErrCodeGenerationTimeout:
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"path":  c.FullPath(),
			"error": err.Error(),
		})
	}

	c.JSON(status, gin.H{
		"code":    string(code),
		"message": err.Error(),
	})
}
