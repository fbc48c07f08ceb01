package sessionmanager

import (
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/ququiz-api/internal/domain/entity"
	"github.com/yourusername/ququiz-api/internal/domain/repository"
	"github.com/yourusername/ququiz-api/internal/notify"
	apperrors "github.com/yourusername/ququiz-api/internal/pkg/errors"
)

// In-memory фейки повторяют семантику Postgres-реализаций, включая
// условные UPDATE и уникальные индексы, чтобы тесты движка проверяли
// те же инварианты без реальной БД.

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeQuizRepo struct {
	mu      sync.Mutex
	quizzes map[uint]*entity.Quiz
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: make(map[uint]*entity.Quiz)}
}

func (r *fakeQuizRepo) Create(quiz *entity.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if quiz.ID == 0 {
		quiz.ID = uint(len(r.quizzes) + 1)
	}
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r *fakeQuizRepo) GetByID(id uint) (*entity.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return quiz, nil
}

func (r *fakeQuizRepo) GetWithQuestions(id uint) (*entity.Quiz, error) {
	return r.GetByID(id)
}

func (r *fakeQuizRepo) ListByOwner(ownerID uint, limit, offset int) ([]entity.Quiz, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Quiz
	for _, q := range r.quizzes {
		if q.OwnerID == ownerID {
			out = append(out, *q)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeQuizRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.quizzes, id)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uint]*entity.Session
	nextID   uint

	players *fakePlayerRepo
	answers *fakeAnswerRepo
}

func newFakeSessionRepo(players *fakePlayerRepo, answers *fakeAnswerRepo) *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[uint]*entity.Session),
		nextID:   1,
		players:  players,
		answers:  answers,
	}
}

func (r *fakeSessionRepo) Create(session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == 0 {
		session.ID = r.nextID
		r.nextID++
	}
	if session.Status == "" {
		session.Status = entity.SessionStatusWaiting
	}
	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByID(id uint) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) ListByQuiz(quizID uint) ([]entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Session
	for _, s := range r.sessions {
		if s.QuizID == quizID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) StartSession(sessionID uint, firstQuestionID uint, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.Status != entity.SessionStatusWaiting {
		return fmt.Errorf("%w: session #%d", repository.ErrSessionNotWaiting, sessionID)
	}
	s.Status = entity.SessionStatusPlaying
	s.Started = true
	s.CurrentQuestionID = &firstQuestionID
	t := startedAt
	s.QuestionStartedAt = &t
	return nil
}

func (r *fakeSessionRepo) AdvanceCursor(sessionID uint, fromQuestionID uint, toQuestionID *uint, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.Status != entity.SessionStatusPlaying ||
		s.CurrentQuestionID == nil || *s.CurrentQuestionID != fromQuestionID {
		return fmt.Errorf("%w: session #%d", repository.ErrCursorMoved, sessionID)
	}
	if toQuestionID == nil {
		s.Status = entity.SessionStatusFinished
		s.CurrentQuestionID = nil
		s.QuestionStartedAt = nil
		return nil
	}
	next := *toQuestionID
	s.CurrentQuestionID = &next
	t := startedAt
	s.QuestionStartedAt = &t
	return nil
}

func (r *fakeSessionRepo) FinishSession(sessionID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.Status == entity.SessionStatusFinished {
		return fmt.Errorf("%w: session #%d", repository.ErrSessionAlreadyFinished, sessionID)
	}
	s.Status = entity.SessionStatusFinished
	s.CurrentQuestionID = nil
	s.QuestionStartedAt = nil
	return nil
}

func (r *fakeSessionRepo) FinishIfPlaying(sessionID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.Status != entity.SessionStatusPlaying {
		return false, nil
	}
	s.Status = entity.SessionStatusFinished
	s.CurrentQuestionID = nil
	s.QuestionStartedAt = nil
	return true, nil
}

func (r *fakeSessionRepo) ResetSession(sessionID uint) error {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		return apperrors.ErrNotFound
	}
	s.Status = entity.SessionStatusWaiting
	s.Started = false
	s.CurrentQuestionID = nil
	s.QuestionStartedAt = nil
	r.mu.Unlock()

	r.answers.deleteBySession(sessionID)
	r.players.deleteBySession(sessionID)
	return nil
}

func (r *fakeSessionRepo) FindWaitingByShortID(shortID string) (*entity.Session, error) {
	return nil, apperrors.ErrNotFound
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players []entity.Player
	nextID  uint

	// sessions нужен условной вставке CreateInWaiting (статус-guard,
	// как в Postgres-реализации); выставляется в newTestEnv
	sessions *fakeSessionRepo

	// afterGetByCode вызывается после успешного поиска игрока - точка
	// для моделирования конкурентных изменений между проверкой и записью
	afterGetByCode func()
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{nextID: 1}
}

func (r *fakePlayerRepo) CreateInWaiting(player *entity.Player) error {
	session, err := r.sessions.GetByID(player.SessionID)
	if err != nil || session.Status != entity.SessionStatusWaiting {
		return fmt.Errorf("%w: session #%d", repository.ErrSessionNotWaiting, player.SessionID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.SessionID == player.SessionID && p.PlayerCode == player.PlayerCode {
			return fmt.Errorf("%w: %s", repository.ErrPlayerCodeTaken, player.PlayerCode)
		}
	}
	player.ID = r.nextID
	r.nextID++
	r.players = append(r.players, *player)
	return nil
}

func (r *fakePlayerRepo) GetByCode(sessionID uint, playerCode string) (*entity.Player, error) {
	r.mu.Lock()
	for i := range r.players {
		if r.players[i].SessionID == sessionID && r.players[i].PlayerCode == playerCode {
			cp := r.players[i]
			r.mu.Unlock()
			if r.afterGetByCode != nil {
				r.afterGetByCode()
			}
			return &cp, nil
		}
	}
	r.mu.Unlock()
	return nil, apperrors.ErrNotFound
}

func (r *fakePlayerRepo) ListBySession(sessionID uint) ([]entity.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Player
	for _, p := range r.players {
		if p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) ListByScore(sessionID uint) ([]entity.Player, error) {
	players, _ := r.ListBySession(sessionID)
	// score DESC, id ASC; исходный срез уже в порядке id ASC
	for i := 1; i < len(players); i++ {
		for j := i; j > 0 && players[j].Score > players[j-1].Score; j-- {
			players[j], players[j-1] = players[j-1], players[j]
		}
	}
	return players, nil
}

func (r *fakePlayerRepo) CountBySession(sessionID uint) (int64, error) {
	players, _ := r.ListBySession(sessionID)
	return int64(len(players)), nil
}

func (r *fakePlayerRepo) CountUnfinished(sessionID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.players {
		if p.SessionID == sessionID && !p.Finished {
			n++
		}
	}
	return n, nil
}

// addScore прибавляет очки напрямую (сидинг лидерборда и начисление
// внутри fakeAnswerRepo.SaveAndScore)
func (r *fakePlayerRepo) addScore(sessionID uint, playerCode string, delta int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.players {
		if r.players[i].SessionID == sessionID && r.players[i].PlayerCode == playerCode {
			r.players[i].Score += delta
			return true
		}
	}
	return false
}

func (r *fakePlayerRepo) exists(sessionID uint, playerCode string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.players {
		if r.players[i].SessionID == sessionID && r.players[i].PlayerCode == playerCode {
			return true
		}
	}
	return false
}

func (r *fakePlayerRepo) MarkFinished(sessionID uint, playerCode string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.players {
		if r.players[i].SessionID == sessionID && r.players[i].PlayerCode == playerCode {
			if r.players[i].Finished {
				return false, nil
			}
			r.players[i].Finished = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePlayerRepo) deleteBySession(sessionID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []entity.Player
	for _, p := range r.players {
		if p.SessionID != sessionID {
			kept = append(kept, p)
		}
	}
	r.players = kept
}

type fakeAnswerRepo struct {
	mu      sync.Mutex
	answers []entity.Answer
	nextID  uint
	players *fakePlayerRepo

	// failNextScore подменяет результат следующего начисления очков;
	// как и в транзакции, сбой не оставляет ни ответа, ни очков
	failNextScore error
}

func newFakeAnswerRepo(players *fakePlayerRepo) *fakeAnswerRepo {
	return &fakeAnswerRepo{nextID: 1, players: players}
}

func (r *fakeAnswerRepo) SaveAndScore(answer *entity.Answer, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.answers {
		if a.SessionID == answer.SessionID && a.QuestionID == answer.QuestionID &&
			a.PlayerCode == answer.PlayerCode {
			return fmt.Errorf("%w", repository.ErrAnswerExists)
		}
	}
	if !r.players.exists(answer.SessionID, answer.PlayerCode) {
		return fmt.Errorf("%w: %s", repository.ErrPlayerMissing, answer.PlayerCode)
	}
	if points > 0 {
		if err := r.failNextScore; err != nil {
			r.failNextScore = nil
			return err
		}
		r.players.addScore(answer.SessionID, answer.PlayerCode, points)
	}
	answer.ID = r.nextID
	r.nextID++
	r.answers = append(r.answers, *answer)
	return nil
}

func (r *fakeAnswerRepo) CountByPlayer(sessionID uint, playerCode string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.answers {
		if a.SessionID == sessionID && a.PlayerCode == playerCode {
			n++
		}
	}
	return n, nil
}

func (r *fakeAnswerRepo) ListByQuestion(sessionID uint, questionID uint) ([]entity.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Answer
	for _, a := range r.answers {
		if a.SessionID == sessionID && a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) CountByOption(sessionID uint, questionID uint, optionCount int) ([]int64, error) {
	answers, _ := r.ListByQuestion(sessionID, questionID)
	counts := make([]int64, optionCount)
	for _, a := range answers {
		if a.SelectedIndex >= 0 && a.SelectedIndex < optionCount {
			counts[a.SelectedIndex]++
		}
	}
	return counts, nil
}

func (r *fakeAnswerRepo) deleteBySession(sessionID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []entity.Answer
	for _, a := range r.answers {
		if a.SessionID != sessionID {
			kept = append(kept, a)
		}
	}
	r.answers = kept
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) PublishEvent(event notify.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}

// testEnv собирает движок с фейковыми зависимостями
type testEnv struct {
	quizzes   *fakeQuizRepo
	sessions  *fakeSessionRepo
	players   *fakePlayerRepo
	answers   *fakeAnswerRepo
	publisher *recordingPublisher
	clock     *fakeClock

	deps     *Dependencies
	loader   *QuizLoader
	cursor   *CursorController
	detector *CompletionDetector
	ingest   *AnswerProcessor
}

func newTestEnv() *testEnv {
	players := newFakePlayerRepo()
	answers := newFakeAnswerRepo(players)
	env := &testEnv{
		quizzes:   newFakeQuizRepo(),
		sessions:  newFakeSessionRepo(players, answers),
		players:   players,
		answers:   answers,
		publisher: &recordingPublisher{},
		clock:     newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	players.sessions = env.sessions

	config := DefaultConfig()
	env.deps = &Dependencies{
		QuizRepo:    env.quizzes,
		SessionRepo: env.sessions,
		PlayerRepo:  env.players,
		AnswerRepo:  env.answers,
		CacheRepo:   nil,
		Publisher:   env.publisher,
		Clock:       env.clock,
		Config:      config,
	}
	env.loader = NewQuizLoader(env.deps)
	env.cursor = NewCursorController(config, env.deps, env.loader)
	env.detector = NewCompletionDetector(config, env.deps)
	env.ingest = NewAnswerProcessor(config, env.deps, env.loader, env.detector)
	return env
}

func intPtr(v int) *int { return &v }

// seedQuiz создает викторину с тремя вопросами: два обычных и один опросный
func (env *testEnv) seedQuiz() *entity.Quiz {
	quiz := &entity.Quiz{
		ID:      1,
		OwnerID: 10,
		Title:   "Столицы мира",
		ShortID: "4242",
		Questions: []entity.Question{
			{ID: 101, QuizID: 1, Position: 0, Text: "Столица Франции?",
				Options:       entity.OptionArray{{Text: "Париж"}, {Text: "Лион"}},
				CorrectOption: intPtr(0), DurationSec: 10},
			{ID: 102, QuizID: 1, Position: 1, Text: "Столица Японии?",
				Options:       entity.OptionArray{{Text: "Осака"}, {Text: "Токио"}},
				CorrectOption: intPtr(1), DurationSec: 20},
			{ID: 103, QuizID: 1, Position: 2, Text: "Любимый сезон?",
				Options:     entity.OptionArray{{Text: "Лето"}, {Text: "Зима"}},
				DurationSec: 15},
		},
	}
	_ = env.quizzes.Create(quiz)
	return quiz
}

func (env *testEnv) seedSession(quizID uint) *entity.Session {
	session := &entity.Session{QuizID: quizID}
	_ = env.sessions.Create(session)
	return session
}

func (env *testEnv) seedPlayer(sessionID uint, code string) {
	_ = env.players.CreateInWaiting(&entity.Player{SessionID: sessionID, PlayerCode: code})
}
