package service

import (
	"context"

	"github.com/yourorg/crypto-dashboard/internal/model"

	"go.uber.org/zap"
)

// AnalyzerGateway is the remote AI analysis surface.
type AnalyzerGateway interface {
	RequestAnalysis(ctx context.Context, req model.AnalysisRequest) error
	RequestAutofetch(ctx context.Context, req model.AnalysisRequest) error
	FetchTranscript(ctx context.Context, videoURL string) (string, error)
}

// LocalTranscriptSource fetches transcripts without the remote service.
type LocalTranscriptSource interface {
	Fetch(ctx context.Context, videoURL string) (string, error)
}

// AnalysisService delegates analysis work to the external microservice and
// publishes a matching event for each accepted request.
type AnalysisService struct {
	analyzer  AnalyzerGateway
	local     LocalTranscriptSource
	publisher EventPublisher
	topic     string
	logger    *zap.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	analyzer AnalyzerGateway,
	local LocalTranscriptSource,
	publisher EventPublisher,
	topic string,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		analyzer:  analyzer,
		local:     local,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// AnalyzeVideo delegates a single-video analysis. Fire and forget: success
// means the analyzer accepted the job.
func (s *AnalysisService) AnalyzeVideo(ctx context.Context, req model.AnalysisRequest) error {
	if err := s.analyzer.RequestAnalysis(ctx, req); err != nil {
		return err
	}
	s.publishEvent(ctx, "analysis.requested", req.URL)
	return nil
}

// Autofetch delegates a channel scan for new videos.
func (s *AnalysisService) Autofetch(ctx context.Context, req model.AnalysisRequest) error {
	if err := s.analyzer.RequestAutofetch(ctx, req); err != nil {
		return err
	}
	s.publishEvent(ctx, "autofetch.requested", "")
	return nil
}

// Transcript fetches a video transcript, trying the local caption fetcher
// before delegating to the remote service.
func (s *AnalysisService) Transcript(ctx context.Context, videoURL string) (*model.TranscriptResult, error) {
	if s.local != nil {
		transcript, err := s.local.Fetch(ctx, videoURL)
		if err != nil {
			s.logger.Debug("Local transcript fetch failed, delegating",
				zap.Error(err),
				zap.String("url", videoURL))
		} else if transcript != "" {
			return &model.TranscriptResult{Transcript: transcript, Source: "local"}, nil
		}
	}

	transcript, err := s.analyzer.FetchTranscript(ctx, videoURL)
	if err != nil {
		return nil, err
	}
	return &model.TranscriptResult{Transcript: transcript, Source: "analyzer"}, nil
}

func (s *AnalysisService) publishEvent(ctx context.Context, eventType, url string) {
	if s.publisher == nil {
		return
	}
	event := map[string]interface{}{"type": eventType}
	if url != "" {
		event["url"] = url
	}
	if err := s.publisher.Publish(ctx, s.topic, eventType, event); err != nil {
		s.logger.Warn("Failed to publish analysis event", zap.Error(err))
	}
}
