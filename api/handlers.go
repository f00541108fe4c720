package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dhvanilabs/sadhana/pkg/bhav"
	"github.com/dhvanilabs/sadhana/pkg/chant"
	"github.com/dhvanilabs/sadhana/pkg/eventlog"
	"github.com/dhvanilabs/sadhana/pkg/projection"
	"github.com/dhvanilabs/sadhana/pkg/session"
	"github.com/dhvanilabs/sadhana/pkg/stage"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleStartSession(c *fiber.Ctx) error {
	var params session.StartParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	started, err := s.manager.Start(c.Context(), params)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(started)
}

type acknowledgeRequest struct {
	Stage chant.Stage `json:"stage"`
}

func (s *Server) handleAcknowledge(c *fiber.Ctx) error {
	var req acknowledgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if err := s.manager.Acknowledge(c.Context(), c.Params("id"), req.Stage); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"stage": req.Stage, "acknowledged": true})
}

func (s *Server) handleEvaluate(c *fiber.Ctx) error {
	var params session.EvaluateParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	params.SessionID = c.Params("id")

	result, err := s.manager.Evaluate(c.Context(), params)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(result)
}

func (s *Server) handleVoiceWindow(c *fiber.Ctx) error {
	var params session.VoiceWindowParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	params.SessionID = c.Params("id")

	result, err := s.manager.RecordVoiceWindow(c.Context(), params)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(result)
}

func (s *Server) handlePartnerSignal(c *fiber.Ctx) error {
	var params session.PartnerSignalParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	params.SessionID = c.Params("id")

	result, err := s.manager.RecordPartnerSignal(c.Context(), params)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(result)
}

func (s *Server) handleAdapt(c *fiber.Ctx) error {
	var params session.AdaptParams
	if err := parseOptionalBody(c, &params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	params.SessionID = c.Params("id")

	decision, err := s.manager.Adapt(c.Context(), params)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(decision)
}

func (s *Server) handleEnd(c *fiber.Ctx) error {
	var params session.EndParams
	if err := parseOptionalBody(c, &params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	params.SessionID = c.Params("id")

	summary, err := s.manager.End(c.Context(), params)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(summary)
}

func (s *Server) handleSummary(c *fiber.Ctx) error {
	summary, err := s.manager.Summary(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(summary)
}

func (s *Server) handleProgress(c *fiber.Ctx) error {
	progress, err := s.manager.Progress(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(progress)
}

// parseOptionalBody parses the request body when one was sent. Requests
// with no body keep the zero-value params.
func parseOptionalBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

// fail maps a domain error to an HTTP status and error body.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	var (
		notFound     session.NotFoundError
		projMissing  projection.NotFoundError
		locked       stage.StageLockedError
		ended        session.EndedError
		unknownStage stage.UnknownStageError
		notScored    stage.NotScoreableError
		notAcked     stage.NotAcknowledgeableError
		badLineage   bhav.UnknownLineageError
		badProfile   bhav.UnknownProfileError
		badStage     bhav.UnsupportedStageError
		badEvent     eventlog.InvalidEventError
	)

	status := fiber.StatusInternalServerError
	switch {
	case errors.As(err, &notFound), errors.As(err, &projMissing):
		status = fiber.StatusNotFound
	case errors.As(err, &locked), errors.As(err, &ended):
		status = fiber.StatusConflict
	case errors.As(err, &unknownStage), errors.As(err, &notScored),
		errors.As(err, &notAcked), errors.As(err, &badLineage),
		errors.As(err, &badProfile), errors.As(err, &badStage),
		errors.As(err, &badEvent):
		status = fiber.StatusBadRequest
	default:
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}
