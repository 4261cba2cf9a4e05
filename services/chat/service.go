// Package chat is the orchestrator: it glues the retriever, the answer
// generator, the field extractor and the session manager together for
// each incoming message.
package chat

import (
	"context"

	"medibook/models"
	"medibook/services/extraction"
	"medibook/services/rag"
	"medibook/services/session"
	"medibook/utils"

	"go.uber.org/zap"
)

const degradedReply = "Sorry, I'm having trouble answering right now. Please try again in a moment."

// Service handles one chat turn end to end.
type Service struct {
	retriever rag.Retriever
	generator rag.Generator
	extractor *extraction.Extractor
	sessions  *session.Manager
	topK      int
}

func NewService(
	retriever rag.Retriever,
	generator rag.Generator,
	extractor *extraction.Extractor,
	sessions *session.Manager,
	topK int,
) *Service {
	if topK <= 0 {
		topK = 3
	}
	return &Service{
		retriever: retriever,
		generator: generator,
		extractor: extractor,
		sessions:  sessions,
		topK:      topK,
	}
}

// HandleMessage produces the assistant reply for a user message and
// updates booking state. Upstream failures yield a degraded reply and
// skip every session mutation for the turn, so a failed turn can never
// corrupt the partial record.
func (s *Service) HandleMessage(ctx context.Context, token, message string) (*models.ChatResponse, error) {
	logger := utils.GetLogger()

	sess, err := s.sessions.GetOrCreate(ctx, token)
	if err != nil {
		return nil, err
	}

	passages, err := s.retriever.Query(ctx, message, s.topK)
	if err != nil {
		logger.Warn("Retriever unavailable", zap.Error(err))
		return &models.ChatResponse{Reply: degradedReply, Degraded: true}, nil
	}

	prompt := buildPrompt(passages, sess.History, message)
	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("Generator unavailable", zap.Error(err))
		return &models.ChatResponse{Reply: degradedReply, Degraded: true}, nil
	}

	missing := sess.Record.Missing(s.sessions.Required())
	result := s.extractor.Extract(message, missing)

	becameReady := false
	if len(result.Candidates) > 0 {
		if _, ready, err := s.sessions.MergeBookingFields(ctx, token, result.Candidates); err != nil {
			logger.Error("Failed to merge booking fields", zap.Error(err))
		} else {
			becameReady = ready
		}
	}

	if sentence := clarificationSentence(result.Clarify); sentence != "" {
		reply = reply + "\n\n" + sentence
	}

	resp := &models.ChatResponse{
		Reply:   reply,
		Clarify: result.Clarify,
	}
	if becameReady {
		resp.BookingReady = true
		resp.BookingURL = "/book"
		resp.Reply += "\n\nI have everything I need for your appointment. You can review and confirm your booking now."
	}

	if err := s.sessions.ApplyTurn(ctx, token, message, resp.Reply); err != nil {
		logger.Error("Failed to record turn", zap.Error(err))
	}

	return resp, nil
}
