package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"dubber/internal/config"
	"dubber/internal/export"
	"dubber/internal/lipsync"
	"dubber/internal/logging"
	"dubber/internal/media/ffmpeg"
	"dubber/internal/services"
	"dubber/internal/services/gemini"
	"dubber/internal/session"
	"dubber/internal/speech"
	"dubber/internal/stage"
	"dubber/internal/subtitles"
	"dubber/internal/textdetect"
	"dubber/internal/transcription"
	"dubber/internal/translation"
)

// Outcome summarizes one run. Fields after the failing stage stay zero.
type Outcome struct {
	SessionID  string
	SessionDir string
	Status     session.Status
	FinalPath  string

	TranscriptStatus transcription.Status
	Transcript       string
	Translation      string
	AudioPath        string
	SyncedPath       string
	LipSyncMethod    lipsync.Method
	FallbackReason   string

	DetectionStatus textdetect.Status
	FramesSampled   int
	FramesDetected  int
	SubtitlePath    string
	SubtitleIssues  []string
	SubtitlesBurned bool

	ExportURI string
	Artifacts []session.Artifact
	Elapsed   time.Duration
}

// Pipeline runs the dubbing stages for one input video per call.
type Pipeline struct {
	cfg    *config.Config
	store  *session.Store
	stages Stages
	logger *slog.Logger
}

// New constructs a Pipeline from explicit adapters.
func New(cfg *config.Config, store *session.Store, stages Stages, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		store:  store,
		stages: stages,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// NewFromConfig wires the production adapters. Missing credentials do not fail
// construction; the affected stage fails when it runs.
func NewFromConfig(ctx context.Context, cfg *config.Config, store *session.Store, logger *slog.Logger) (*Pipeline, error) {
	tool := ffmpeg.New(cfg.Tools.FFmpeg)

	var gen translation.Generator
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			BaseURL: cfg.Gemini.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		gen = client
	}

	stages := Stages{
		Transcriber: transcription.New(cfg, tool, transcription.NewWhisperXEngine(cfg), logger),
		Translator:  translation.New(cfg, gen, logger),
		Synthesizer: speech.New(cfg, speech.NewElevenLabsBackend(cfg), logger),
		LipSyncer:   lipsync.NewFromConfig(cfg, tool, logger),
		Detector:    textdetect.NewFromConfig(cfg, tool, logger),
		Burner:      subtitles.NewBurner(tool),
	}
	exporter, err := export.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		stages.Exporter = exporter
	}
	return New(cfg, store, stages, logger), nil
}

// Health reports readiness of the stages that can check themselves, in
// pipeline order.
func (p *Pipeline) Health(ctx context.Context) []stage.Health {
	candidates := []any{
		p.stages.Transcriber,
		p.stages.Translator,
		p.stages.Synthesizer,
		p.stages.LipSyncer,
		p.stages.Detector,
		p.stages.Burner,
		p.stages.Exporter,
	}
	var health []stage.Health
	for _, candidate := range candidates {
		if checker, ok := candidate.(stage.Checker); ok {
			health = append(health, checker.HealthCheck(ctx))
		}
	}
	return health
}

// Run dubs inputPath inside a fresh session. The returned Outcome is populated
// up to the failing stage; the error is a *StageError.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (Outcome, error) {
	started := time.Now()
	if err := validateInput(inputPath); err != nil {
		return Outcome{}, err
	}

	ws, err := session.Start(ctx, p.store, p.cfg.Paths.SessionsDir, inputPath)
	if err != nil {
		return Outcome{}, services.Wrap(services.ErrConfiguration, "pipeline", "start session", "", err)
	}
	defer func() {
		if err := ws.Close(); err != nil {
			p.logger.Warn("session close failed", logging.String(logging.FieldSessionID, ws.ID), logging.Error(err))
		}
	}()

	ctx = services.WithSessionID(ctx, ws.ID)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("session started",
		logging.String(logging.FieldEventType, "session_start"),
		logging.String("input", inputPath),
		logging.String("dir", ws.Dir),
	)

	run := &runState{p: p, ws: ws, input: inputPath, out: Outcome{SessionID: ws.ID, SessionDir: ws.Dir}}
	err = run.execute(ctx)
	run.out.Artifacts = ws.Artifacts()
	run.out.Elapsed = time.Since(started)
	if err != nil {
		run.out.Status = services.FailureStatus(err)
		return run.out, err
	}
	run.out.Status = session.StatusCompleted
	logger.Info("session completed",
		logging.String(logging.FieldEventType, "session_complete"),
		logging.String("final", run.out.FinalPath),
		logging.Bool("subtitles_burned", run.out.SubtitlesBurned),
		logging.Duration("elapsed", run.out.Elapsed),
	)
	return run.out, nil
}

func validateInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "pipeline", "validate input", path, err)
	}
	if !info.Mode().IsRegular() {
		return services.Wrap(services.ErrValidation, "pipeline", "validate input", path+" is not a regular file", nil)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrValidation, "pipeline", "validate input", path+" is empty", nil)
	}
	return nil
}

type runState struct {
	p     *Pipeline
	ws    *session.Workspace
	input string
	out   Outcome
}

func (r *runState) execute(ctx context.Context) error {
	stages := r.p.stages

	source, err := r.ws.ImportSource(ctx, r.input)
	if err != nil {
		return r.fail(ctx, StageUpload, "upload failed", err)
	}

	var transcript transcription.Result
	if err := r.stage(ctx, StageTranscription, func(ctx context.Context) error {
		transcript = stages.Transcriber.Transcribe(ctx, source.Path)
		if transcript.Text == "" {
			return errors.New("empty transcript")
		}
		return nil
	}); err != nil {
		return r.fail(ctx, StageTranscription, "transcription failed", err)
	}
	r.out.TranscriptStatus = transcript.Status
	r.out.Transcript = transcript.Text

	if err := r.stage(ctx, StageTranslation, func(ctx context.Context) error {
		translated, err := stages.Translator.Translate(ctx, transcript.Text, r.p.cfg.Gemini.TargetLanguage)
		r.out.Translation = translated
		return err
	}); err != nil {
		return r.fail(ctx, StageTranslation, "translation failed", err)
	}

	if err := r.stage(ctx, StageSynthesis, func(ctx context.Context) error {
		audio, err := stages.Synthesizer.Synthesize(ctx, r.out.Translation, r.ws.Dir)
		if err != nil {
			return err
		}
		r.out.AudioPath = audio
		_, err = r.ws.Record(ctx, session.KindAudio, StageSynthesis, audio)
		return err
	}); err != nil {
		return r.fail(ctx, StageSynthesis, "speech synthesis failed", err)
	}

	if err := r.stage(ctx, StageLipSync, func(ctx context.Context) error {
		result, err := stages.LipSyncer.Sync(ctx, source.Path, r.out.AudioPath, r.ws.Path(SyncedFileName))
		if err != nil {
			return err
		}
		r.out.SyncedPath = result.Path
		r.out.LipSyncMethod = result.Method
		r.out.FallbackReason = result.FallbackReason
		_, err = r.ws.Record(ctx, session.KindVideo, StageLipSync, result.Path)
		return err
	}); err != nil {
		return r.fail(ctx, StageLipSync, "lip-sync failed", err)
	}

	detection, err := r.detect(ctx, source.Path)
	if err != nil {
		return r.fail(ctx, StageDetection, "text detection failed", err)
	}

	r.out.FinalPath = r.out.SyncedPath
	if detection.Status == textdetect.StatusDetected {
		if err := r.burn(ctx, detection); err != nil {
			return err
		}
	} else {
		logging.WarnWithContext(logging.WithContext(ctx, r.p.logger), "no on-screen text; final video has no subtitles", "subtitles_skipped",
			logging.String("detection_status", string(detection.Status)),
			logging.String(logging.FieldErrorHint, "none required when the video has no on-screen text"),
			logging.String(logging.FieldImpact, "final video is the lip-synced video without burned subtitles"),
		)
	}

	if err := r.ws.Complete(ctx, r.out.FinalPath); err != nil {
		return r.fail(ctx, StageComplete, "session completion failed", err)
	}

	r.export(ctx)
	return nil
}

func (r *runState) detect(ctx context.Context, videoPath string) (textdetect.Result, error) {
	var result textdetect.Result
	err := r.stage(ctx, StageDetection, func(ctx context.Context) error {
		scratch, err := r.ws.ScratchDir()
		if err != nil {
			return err
		}
		result = r.p.stages.Detector.Detect(ctx, videoPath, scratch)
		return nil
	})
	if err != nil {
		return result, err
	}
	r.out.DetectionStatus = result.Status
	r.out.FramesSampled = result.Sampled
	r.out.FramesDetected = len(result.Frames)
	if result.Status == textdetect.StatusFailed && r.p.cfg.Detection.HaltOnFailure {
		return result, services.Wrap(services.ErrExternalTool, StageDetection, "detect", "", result.Err)
	}
	return result, nil
}

func (r *runState) burn(ctx context.Context, detection textdetect.Result) error {
	items := subtitles.ItemsFromFrames(detection.Frames, r.p.stages.Detector.Interval())

	if err := r.stage(ctx, StageSubtitles, func(ctx context.Context) error {
		track, err := subtitles.GenerateTrack(items, r.ws.Path(TrackFileName))
		if err != nil {
			return err
		}
		r.out.SubtitlePath = track
		if _, err := r.ws.Record(ctx, session.KindSubtitleTrack, StageSubtitles, track); err != nil {
			return err
		}
		r.out.SubtitleIssues = subtitles.ValidateTrack(track, float64(detection.Sampled)*r.p.stages.Detector.Interval().Seconds())
		if len(r.out.SubtitleIssues) > 0 {
			logging.WarnWithContext(logging.WithContext(ctx, r.p.logger), "subtitle track has issues", "subtitle_validation",
				logging.Any("issues", r.out.SubtitleIssues),
				logging.String(logging.FieldImpact, "burned subtitles may display incorrectly"),
			)
		}
		return nil
	}); err != nil {
		return r.fail(ctx, StageSubtitles, "subtitle generation failed", err)
	}

	if err := r.stage(ctx, StageBurn, func(ctx context.Context) error {
		final, err := r.p.stages.Burner.Burn(ctx, r.out.SyncedPath, r.out.SubtitlePath, r.ws.Path(FinalFileName))
		if err != nil {
			return err
		}
		if _, err := r.ws.Record(ctx, session.KindVideo, StageBurn, final); err != nil {
			return err
		}
		r.out.FinalPath = final
		r.out.SubtitlesBurned = true
		return nil
	}); err != nil {
		return r.fail(ctx, StageBurn, "subtitle burn failed", err)
	}
	return nil
}

// export publishes the final video. Failure is logged and does not fail the run.
func (r *runState) export(ctx context.Context) {
	if r.p.stages.Exporter == nil {
		return
	}
	err := r.stage(ctx, StageExport, func(ctx context.Context) error {
		uri, err := r.p.stages.Exporter.Publish(ctx, r.ws.ID, r.out.FinalPath)
		r.out.ExportURI = uri
		return err
	})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.p.logger), "export failed", "export_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.String(logging.FieldImpact, "final video is only available locally"),
		)
	}
}

func (r *runState) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx = services.WithStage(ctx, name)
	logger := logging.WithContext(ctx, r.p.logger)
	start := time.Now()
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := fn(ctx); err != nil {
		return err
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(start)),
	)
	return nil
}

func (r *runState) fail(ctx context.Context, stage, message string, err error) error {
	stageErr := newStageError(r.ws.ID, stage, message, err)
	status := services.FailureStatus(stageErr)

	logCtx := services.WithStage(ctx, stage)
	logging.ErrorWithContext(logging.WithContext(logCtx, r.p.logger), message, "stage_failure",
		logging.Error(stageErr.Err),
		logging.String("status", string(status)),
		logging.String(logging.FieldErrorHint, services.Hint(stageErr)),
	)

	persist := context.WithoutCancel(ctx)
	if persistErr := r.ws.Fail(persist, status, stage, stageErr.Error()); persistErr != nil {
		r.p.logger.Error("persist session failure", logging.Error(persistErr))
	}
	return fmt.Errorf("session %s: %w", r.ws.ID, stageErr)
}
