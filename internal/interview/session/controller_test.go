// internal/interview/session/controller_test.go
package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "screener/internal/common/errors"
	"screener/internal/common/logger"
	"screener/internal/models"
	"screener/internal/storage"
)

// memoryRepo keeps sessions in a map; deep-copy semantics are not needed
// because the controller always saves before returning.
type memoryRepo struct {
	sessions map[string]*models.Session
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sessions: make(map[string]*models.Session)}
}

func (r *memoryRepo) Create(_ context.Context, s *models.Session) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *memoryRepo) Get(_ context.Context, id string) (*models.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, stderrors.NewSessionNotFoundError(id)
	}
	return s, nil
}

func (r *memoryRepo) Save(_ context.Context, s *models.Session) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

type fakeQuestions struct {
	qs    []models.Question
	err   error
	calls int
}

func (f *fakeQuestions) Build(context.Context, []string) ([]models.Question, error) {
	f.calls++
	return f.qs, f.err
}

type fakeScorer struct {
	eval  *models.Evaluation
	calls int
}

func (f *fakeScorer) Evaluate(_ context.Context, _ []models.Question, _ []string, _ *models.RoleProfile) *models.Evaluation {
	f.calls++
	return f.eval
}

type fakeComposer struct {
	report string
	calls  int
}

func (f *fakeComposer) Compose(context.Context, models.CandidateProfile, []models.Question, *models.Evaluation) string {
	f.calls++
	return f.report
}

type fakeRoles struct {
	profile *models.RoleProfile
}

func (f *fakeRoles) Lookup(context.Context, string) (*models.RoleProfile, error) {
	return f.profile, nil
}

type fakeGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(context.Context, string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeSink struct {
	responses []storage.ResponseRecord
	reports   []storage.ReportRecord
	err       error
}

func (f *fakeSink) Name() string { return "fake" }

func (f *fakeSink) AppendResponse(_ context.Context, r storage.ResponseRecord) error {
	if f.err != nil {
		return f.err
	}
	f.responses = append(f.responses, r)
	return nil
}

func (f *fakeSink) AppendReport(_ context.Context, r storage.ReportRecord) error {
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, r)
	return nil
}

type fakeNotifier struct {
	sent int
	err  error
}

func (f *fakeNotifier) SendReport(context.Context, models.CandidateProfile, string) error {
	f.sent++
	return f.err
}

type fixture struct {
	controller *Controller
	repo       *memoryRepo
	questions  *fakeQuestions
	scorer     *fakeScorer
	composer   *fakeComposer
	sink       *fakeSink
	notifier   *fakeNotifier
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		repo: newMemoryRepo(),
		questions: &fakeQuestions{qs: []models.Question{
			{Text: "What is a goroutine?", Type: models.QuestionTypeText},
			{Text: "Explain channels.", Type: models.QuestionTypeText},
			{Text: "Reverse a slice.", Type: models.QuestionTypeCode},
		}},
		scorer: &fakeScorer{eval: &models.Evaluation{
			Score:         3,
			TotalPossible: 4,
			Feedback: []models.QuestionFeedback{
				{Index: 0, Verdict: models.VerdictCorrect, Points: 1, Explanation: "Good."},
				{Index: 1, Verdict: models.VerdictIncorrect, Points: 0, Explanation: "Vague."},
				{Index: 2, Verdict: models.VerdictCorrect, Points: 2, Explanation: "Works."},
			},
		}},
		composer: &fakeComposer{report: "REPORT BODY"},
		sink:     &fakeSink{},
		notifier: &fakeNotifier{},
	}
	f.controller = NewController(
		f.repo, f.questions, f.scorer, f.composer,
		&fakeRoles{}, &fakeGenerator{reply: "Happy to explain."},
		f.sink, f.notifier, opts, logger.NewNoOpLogger(),
	)
	return f
}

func strPtr(s string) *string { return &s }

func validProfile() models.CandidateProfile {
	return models.CandidateProfile{
		FullName:          "Jordan Blake",
		Email:             "jordan.blake@example.com",
		DesiredPosition:   "Backend Engineer",
		YearsOfExperience: 5,
		TechStack:         []string{"Go", "Postgres"},
	}
}

// startAnswering walks a fresh session through intake.
func startAnswering(t *testing.T, f *fixture) string {
	t.Helper()
	ctx := context.Background()
	s, err := f.controller.Start(ctx)
	require.NoError(t, err)
	s, err = f.controller.SubmitIntake(ctx, s.ID, validProfile())
	require.NoError(t, err)
	require.Equal(t, models.PhaseAnswering, s.Phase)
	return s.ID
}

// submitAll walks the cursor to the last question and submits.
func submitAll(t *testing.T, f *fixture, id string) {
	t.Helper()
	ctx := context.Background()
	for {
		s, err := f.controller.Get(ctx, id)
		require.NoError(t, err)
		if s.AtLastQuestion() {
			break
		}
		_, err = f.controller.Next(ctx, id)
		require.NoError(t, err)
	}
	_, err := f.controller.SubmitAnswers(ctx, id, nil)
	require.NoError(t, err)
}

// =============================================================================
// Full walkthrough
// =============================================================================

func TestController_FullInterviewFlow(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)

	for i := 0; i < 3; i++ {
		_, err := f.controller.SetAnswer(ctx, id, fmt.Sprintf("answer %d", i+1))
		require.NoError(t, err)
		if i < 2 {
			_, err = f.controller.Next(ctx, id)
			require.NoError(t, err)
		}
	}

	s, err := f.controller.SubmitAnswers(ctx, id, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseEvaluating, s.Phase)
	require.NotNil(t, s.Evaluation)
	assert.Equal(t, 3, s.Evaluation.Score)
	assert.Equal(t, []string{"answer 1", "answer 2", "answer 3"}, s.Answers)

	s, err = f.controller.Discuss(ctx, id, "Why did I lose a point?")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseDiscussion, s.Phase)
	require.Len(t, s.Transcript, 2)
	assert.Equal(t, models.RoleUser, s.Transcript[0].Role)
	assert.Equal(t, "Happy to explain.", s.Transcript[1].Content)

	s, err = f.controller.Complete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCompleted, s.Phase)
	assert.Equal(t, "REPORT BODY", s.Report)
	assert.Len(t, f.sink.responses, 1)
	assert.Len(t, f.sink.reports, 1)
	assert.Equal(t, 1, f.notifier.sent)
}

// =============================================================================
// Intake
// =============================================================================

func TestSubmitIntake_InvalidProfile(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	s, err := f.controller.Start(ctx)
	require.NoError(t, err)

	profile := validProfile()
	profile.TechStack = nil
	_, err = f.controller.SubmitIntake(ctx, s.ID, profile)
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeValidationFailed))
	assert.Equal(t, 0, f.questions.calls)

	got, err := f.controller.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseIntake, got.Phase)
}

func TestSubmitIntake_GenerationFailureKeepsIntake(t *testing.T) {
	f := newFixture(Options{})
	f.questions.err = stderrors.NewGenerationUnavailableError(errors.New("backend down"))
	ctx := context.Background()
	s, err := f.controller.Start(ctx)
	require.NoError(t, err)

	_, err = f.controller.SubmitIntake(ctx, s.ID, validProfile())
	require.Error(t, err)

	got, err := f.controller.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseIntake, got.Phase)
	assert.Empty(t, got.Questions)
}

func TestSubmitIntake_RequireRoleProfile(t *testing.T) {
	f := newFixture(Options{RequireRoleProfile: true})
	ctx := context.Background()
	s, err := f.controller.Start(ctx)
	require.NoError(t, err)

	_, err = f.controller.SubmitIntake(ctx, s.ID, validProfile())
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeRoleProfileNotFound))
}

func TestSubmitIntake_MissingRoleProfileIsFineByDefault(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	s, err := f.controller.Start(ctx)
	require.NoError(t, err)

	s, err = f.controller.SubmitIntake(ctx, s.ID, validProfile())
	require.NoError(t, err)
	assert.Nil(t, s.Role)
	assert.Len(t, s.Answers, 3)
}

// =============================================================================
// Cursor navigation
// =============================================================================

func TestCursor_ClampsAtBounds(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)

	s, err := f.controller.Previous(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Cursor)

	for i := 0; i < 5; i++ {
		s, err = f.controller.Next(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, s.Cursor)
	assert.True(t, s.AtLastQuestion())
}

func TestSetAnswer_OverwritesDraftUnderCursor(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)

	_, err := f.controller.SetAnswer(ctx, id, "first draft")
	require.NoError(t, err)
	s, err := f.controller.SetAnswer(ctx, id, "second draft")
	require.NoError(t, err)
	assert.Equal(t, "second draft", s.Answers[0])

	_, err = f.controller.Next(ctx, id)
	require.NoError(t, err)
	s, err = f.controller.SetAnswer(ctx, id, "for question two")
	require.NoError(t, err)
	assert.Equal(t, "second draft", s.Answers[0])
	assert.Equal(t, "for question two", s.Answers[1])
}

// =============================================================================
// Completion
// =============================================================================

func TestSubmitAnswers_RequiresLastQuestion(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)

	_, err := f.controller.SubmitAnswers(ctx, id, strPtr("early"))
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeInvalidPhaseTransition))
	assert.Equal(t, 0, f.scorer.calls)
}

func TestSubmitAnswers_FlushesInFlightAnswer(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)

	for i := 0; i < 2; i++ {
		_, err := f.controller.Next(ctx, id)
		require.NoError(t, err)
	}
	s, err := f.controller.SubmitAnswers(ctx, id, strPtr("typed but never saved"))
	require.NoError(t, err)
	assert.Equal(t, "typed but never saved", s.Answers[2])
}

func TestSubmitAnswers_EmptyFlushClearsLastAnswer(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)

	for i := 0; i < 2; i++ {
		_, err := f.controller.Next(ctx, id)
		require.NoError(t, err)
	}
	_, err := f.controller.SetAnswer(ctx, id, "second thoughts")
	require.NoError(t, err)

	s, err := f.controller.SubmitAnswers(ctx, id, strPtr(""))
	require.NoError(t, err)
	assert.Equal(t, "", s.Answers[2])
}

func TestComplete_IsIdempotent(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)

	submitAll(t, f, id)

	first, err := f.controller.Complete(ctx, id)
	require.NoError(t, err)
	second, err := f.controller.Complete(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, first.Report, second.Report)
	assert.Equal(t, 1, f.composer.calls)
	assert.Len(t, f.sink.responses, 1)
	assert.Len(t, f.sink.reports, 1)
	assert.Equal(t, 1, f.notifier.sent)
}

func TestComplete_ArchiveFailureIsNonFatal(t *testing.T) {
	f := newFixture(Options{})
	f.sink.err = stderrors.NewPersistenceAppendFailedError(errors.New("disk full"))
	ctx := context.Background()
	id := startAnswering(t, f)

	submitAll(t, f, id)

	s, err := f.controller.Complete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCompleted, s.Phase)
	assert.Equal(t, "REPORT BODY", s.Report)
	assert.Empty(t, f.sink.responses)

	// A client retry after the sink recovers must not produce late rows.
	f.sink.err = nil
	_, err = f.controller.Complete(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, f.sink.responses)
	assert.Empty(t, f.sink.reports)
	assert.Equal(t, 1, f.notifier.sent)
}

func TestComplete_PartialSinkFailureDoesNotDuplicate(t *testing.T) {
	f := newFixture(Options{})
	good := &fakeSink{}
	bad := &fakeSink{err: stderrors.NewPersistenceAppendFailedError(errors.New("disk full"))}
	f.controller.archive = storage.NewMultiSink(logger.NewNoOpLogger(), good, bad)
	ctx := context.Background()
	id := startAnswering(t, f)

	submitAll(t, f, id)

	s, err := f.controller.Complete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCompleted, s.Phase)
	assert.Len(t, good.responses, 1)
	assert.Len(t, good.reports, 1)

	// Retrying once the broken sink is healthy again appends nowhere:
	// the session is already completed and returns the stored report.
	bad.err = nil
	s, err = f.controller.Complete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "REPORT BODY", s.Report)
	assert.Len(t, good.responses, 1)
	assert.Len(t, good.reports, 1)
	assert.Empty(t, bad.responses)
	assert.Empty(t, bad.reports)
}

func TestComplete_NotifierFailureIsNonFatal(t *testing.T) {
	f := newFixture(Options{})
	f.notifier.err = errors.New("ses throttled")
	ctx := context.Background()
	id := startAnswering(t, f)

	submitAll(t, f, id)

	s, err := f.controller.Complete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCompleted, s.Phase)
}

// =============================================================================
// Discussion
// =============================================================================

func TestDiscuss_FallbackOnGenerationFailure(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)
	submitAll(t, f, id)

	f.controller.generator = &fakeGenerator{err: errors.New("backend down")}
	s, err := f.controller.Discuss(ctx, id, "What should I study?")
	require.NoError(t, err)
	require.Len(t, s.Transcript, 2)
	assert.Equal(t, discussionFallback, s.Transcript[1].Content)
}

func TestDiscuss_PersonalDataQueryGetsCannedReply(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)
	submitAll(t, f, id)

	gen := &fakeGenerator{reply: "should not be used"}
	f.controller.generator = gen

	s, err := f.controller.Discuss(ctx, id, "Can you show me my email and phone number?")
	require.NoError(t, err)
	require.Len(t, s.Transcript, 2)
	assert.Equal(t, privacyReply, s.Transcript[1].Content)
	assert.Zero(t, gen.calls)

	s, err = f.controller.Discuss(ctx, id, "How did I do on the goroutine question?")
	require.NoError(t, err)
	assert.Equal(t, "should not be used", s.Transcript[3].Content)
	assert.Equal(t, 1, gen.calls)
}

func TestDiscuss_EmptyMessageRejected(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)
	submitAll(t, f, id)

	_, err := f.controller.Discuss(ctx, id, "   ")
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeValidationFailed))
}

// =============================================================================
// Reset and End
// =============================================================================

func TestReset_KeepsProfileAndTranscript(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)
	submitAll(t, f, id)
	_, err := f.controller.Discuss(ctx, id, "Why?")
	require.NoError(t, err)

	s, err := f.controller.Reset(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, models.PhaseIntake, s.Phase)
	assert.Empty(t, s.Questions)
	assert.Empty(t, s.Answers)
	assert.Equal(t, 0, s.Cursor)
	assert.Nil(t, s.Evaluation)
	assert.Empty(t, s.Report)
	assert.Equal(t, "Jordan Blake", s.Profile.FullName)
	assert.Len(t, s.Transcript, 2)
}

func TestReset_AllowsFreshEvaluation(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)
	submitAll(t, f, id)

	_, err := f.controller.Reset(ctx, id)
	require.NoError(t, err)

	_, err = f.controller.SubmitIntake(ctx, id, validProfile())
	require.NoError(t, err)
	submitAll(t, f, id)
	assert.Equal(t, 2, f.scorer.calls)
}

func TestEnd_IsAbsorbing(t *testing.T) {
	f := newFixture(Options{})
	ctx := context.Background()
	id := startAnswering(t, f)

	s, err := f.controller.End(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseEnded, s.Phase)

	s, err = f.controller.End(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseEnded, s.Phase)

	_, err = f.controller.SetAnswer(ctx, id, "late answer")
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeInvalidPhaseTransition))
}

// =============================================================================
// Phase gates
// =============================================================================

func TestPhaseGates(t *testing.T) {
	tests := []struct {
		name string
		call func(f *fixture, ctx context.Context, id string) error
	}{
		{"submit intake twice", func(f *fixture, ctx context.Context, id string) error {
			_, err := f.controller.SubmitIntake(ctx, id, validProfile())
			return err
		}},
		{"discuss before evaluation", func(f *fixture, ctx context.Context, id string) error {
			_, err := f.controller.Discuss(ctx, id, "hello")
			return err
		}},
		{"complete before evaluation", func(f *fixture, ctx context.Context, id string) error {
			_, err := f.controller.Complete(ctx, id)
			return err
		}},
		{"reset while answering", func(f *fixture, ctx context.Context, id string) error {
			_, err := f.controller.Reset(ctx, id)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Options{})
			id := startAnswering(t, f)

			err := tt.call(f, context.Background(), id)
			require.Error(t, err)
			assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeInvalidPhaseTransition))
		})
	}
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(Options{})

	_, err := f.controller.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeSessionNotFound))
}
