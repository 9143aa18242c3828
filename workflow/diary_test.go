package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	dbpkg "haru/db"
	"haru/models"
	"haru/tools"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- doubles ---

type fakeGenerator struct {
	draft tools.DiaryDraft
	err   error
	calls int
}

func (f *fakeGenerator) GenerateDiary(ctx context.Context, conversation any) (tools.DiaryDraft, error) {
	f.calls++
	if f.err != nil {
		return tools.DiaryDraft{}, f.err
	}
	return f.draft, nil
}

type fakeClassifier struct {
	result   tools.SentimentResult
	err      error
	lastText string
	calls    int
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (tools.SentimentResult, error) {
	f.calls++
	f.lastText = text
	if f.err != nil {
		return tools.SentimentResult{}, f.err
	}
	return f.result, nil
}

// --- helpers ---

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.LogMode(false)
	dbpkg.AutoMigrate(conn)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newTestUser(t *testing.T, conn *gorm.DB, kakaoID int64) models.User {
	t.Helper()
	user := models.User{KakaoID: kakaoID, Nickname: "tester"}
	require.NoError(t, conn.Create(&user).Error)
	return user
}

func countRows(t *testing.T, conn *gorm.DB, model any) int {
	t.Helper()
	var n int
	require.NoError(t, conn.Model(model).Count(&n).Error)
	return n
}

// --- tests ---

func TestCreateFromConversation_EndToEnd(t *testing.T) {
	conn := newTestDB(t)
	user := newTestUser(t, conn, 1001)

	gen := &fakeGenerator{draft: tools.DiaryDraft{Title: "A Great Day", Content: "Today was wonderful."}}
	cls := &fakeClassifier{result: tools.SentimentResult{Sentiment: "positive", Score: 0.9}}
	w := New(gen, cls)

	conversation := []map[string]string{{"role": "user", "text": "Had a great day"}}
	result, err := w.CreateFromConversation(context.Background(), conn, user, conversation)
	require.NoError(t, err)
	require.NoError(t, result.SentimentErr)

	assert.Equal(t, "A Great Day", result.Diary.Title)
	assert.Equal(t, "Today was wonderful.", result.Diary.Content)
	assert.Equal(t, user.ID, result.Diary.UserID)
	assert.Equal(t, "happy", result.Emoji)
	require.NotNil(t, result.Sentiment)
	assert.Equal(t, "positive", result.Sentiment.Sentiment)
	assert.InDelta(t, 0.9, result.Sentiment.Score, 1e-9)

	// o classificador recebe o conteúdo do diário, nunca a conversa
	assert.Equal(t, "Today was wonderful.", cls.lastText)

	assert.Equal(t, 1, countRows(t, conn, &models.Diary{}))
	assert.Equal(t, 1, countRows(t, conn, &models.SentimentAnalysis{}))
}

func TestCreateFromConversation_GeneratorFailurePersistsNothing(t *testing.T) {
	conn := newTestDB(t)
	user := newTestUser(t, conn, 1002)

	gen := &fakeGenerator{err: &tools.DiaryParseError{Raw: "oops", Err: errors.New("invalid json")}}
	cls := &fakeClassifier{}
	w := New(gen, cls)

	_, err := w.CreateFromConversation(context.Background(), conn, user, "conversa")
	require.Error(t, err)

	var perr *tools.DiaryParseError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, 0, countRows(t, conn, &models.Diary{}))
	assert.Equal(t, 0, countRows(t, conn, &models.SentimentAnalysis{}))
	assert.Zero(t, cls.calls)
}

func TestCreateFromConversation_EmptyConversation(t *testing.T) {
	conn := newTestDB(t)
	user := newTestUser(t, conn, 1003)

	// payload presente porém vazio rejeita igual a payload ausente
	cases := map[string]any{
		"nil":          nil,
		"empty string": "",
		"empty slice":  []any{},
		"empty map":    map[string]any{},
	}
	for name, conversation := range cases {
		t.Run(name, func(t *testing.T) {
			gen := &fakeGenerator{}
			w := New(gen, &fakeClassifier{})

			_, err := w.CreateFromConversation(context.Background(), conn, user, conversation)
			require.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, gen.calls, "gerador não deve ser chamado sem conversa")
		})
	}
	assert.Equal(t, 0, countRows(t, conn, &models.Diary{}))
}

func TestCreateFromConversation_RequiresUser(t *testing.T) {
	conn := newTestDB(t)

	w := New(&fakeGenerator{}, &fakeClassifier{})
	_, err := w.CreateFromConversation(context.Background(), conn, models.User{}, "conversa")
	require.ErrorIs(t, err, ErrAuthRequired)
}

func TestSave_RoundTrip(t *testing.T) {
	conn := newTestDB(t)
	user := newTestUser(t, conn, 1004)

	diary := models.Diary{UserID: user.ID, Title: "old", Content: "old content"}
	require.NoError(t, conn.Create(&diary).Error)
	createdAt := *diary.CreatedAt

	cls := &fakeClassifier{result: tools.SentimentResult{Sentiment: "neutral", Score: 0.5}}
	w := New(&fakeGenerator{}, cls)

	time.Sleep(10 * time.Millisecond)
	result, err := w.Save(context.Background(), conn, user, diary.ID, "T", "C")
	require.NoError(t, err)
	require.NoError(t, result.SentimentErr)

	var reloaded models.Diary
	require.NoError(t, conn.First(&reloaded, diary.ID).Error)
	assert.Equal(t, "T", reloaded.Title)
	assert.Equal(t, "C", reloaded.Content)
	assert.Equal(t, createdAt.Unix(), reloaded.CreatedAt.Unix())
	assert.True(t, reloaded.UpdatedAt.After(createdAt), "UpdatedAt deve ser renovado no save")
	assert.Equal(t, "C", cls.lastText)
}

func TestSave_NotOwnedIsNotFound(t *testing.T) {
	conn := newTestDB(t)
	owner := newTestUser(t, conn, 1005)
	intruder := newTestUser(t, conn, 1006)

	diary := models.Diary{UserID: owner.ID, Title: "mine", Content: "secret"}
	require.NoError(t, conn.Create(&diary).Error)

	w := New(&fakeGenerator{}, &fakeClassifier{})

	// diário de outro usuário e diário inexistente são indistinguíveis
	_, err := w.Save(context.Background(), conn, intruder, diary.ID, "T", "C")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = w.Save(context.Background(), conn, owner, diary.ID+999, "T", "C")
	require.ErrorIs(t, err, ErrNotFound)

	var reloaded models.Diary
	require.NoError(t, conn.First(&reloaded, diary.ID).Error)
	assert.Equal(t, "mine", reloaded.Title)
}

func TestSave_ClassifierFailureIsPartialSuccess(t *testing.T) {
	conn := newTestDB(t)
	user := newTestUser(t, conn, 1007)

	diary := models.Diary{UserID: user.ID, Title: "old", Content: "old"}
	require.NoError(t, conn.Create(&diary).Error)

	cls := &fakeClassifier{err: &tools.ClovaError{Status: 500, Body: "down"}}
	w := New(&fakeGenerator{}, cls)

	result, err := w.Save(context.Background(), conn, user, diary.ID, "T", "C")
	require.NoError(t, err, "falha de sentimento não desfaz o save do diário")
	require.Error(t, result.SentimentErr)
	assert.Nil(t, result.Sentiment)
	assert.Equal(t, "neutral", result.Emoji)

	var reloaded models.Diary
	require.NoError(t, conn.First(&reloaded, diary.ID).Error)
	assert.Equal(t, "T", reloaded.Title)
	assert.Equal(t, 0, countRows(t, conn, &models.SentimentAnalysis{}))
}

func TestClassify_UpsertIsIdempotent(t *testing.T) {
	conn := newTestDB(t)
	user := newTestUser(t, conn, 1008)

	diary := models.Diary{UserID: user.ID, Title: "t", Content: "c"}
	require.NoError(t, conn.Create(&diary).Error)

	cls := &fakeClassifier{result: tools.SentimentResult{Sentiment: "positive", Score: 0.9}}
	w := New(&fakeGenerator{}, cls)

	first, emoji, err := w.Classify(context.Background(), conn, user, diary.ID)
	require.NoError(t, err)
	assert.Equal(t, "happy", emoji)
	assert.Equal(t, "positive", first.Sentiment)

	cls.result = tools.SentimentResult{Sentiment: "sad", Score: 0.6}
	second, emoji, err := w.Classify(context.Background(), conn, user, diary.ID)
	require.NoError(t, err)
	assert.Equal(t, "sad", emoji)

	// exatamente um registro por diário, refletindo a segunda classificação
	assert.Equal(t, 1, countRows(t, conn, &models.SentimentAnalysis{}))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "sad", second.Sentiment)
	assert.InDelta(t, 0.6, second.Score, 1e-9)
}

func TestUpsertSentiment_SurvivesInsertRace(t *testing.T) {
	conn := newTestDB(t)
	user := newTestUser(t, conn, 1013)

	diary := models.Diary{UserID: user.ID, Title: "t", Content: "c"}
	require.NoError(t, conn.Create(&diary).Error)

	// simula um escritor concorrente: logo antes do INSERT do upsert, outro
	// registro ganha o unique index de diary_id; o upsert cai no retry de
	// update e o último escritor vence.
	raced := false
	conn.Callback().Create().Before("gorm:create").Register("diary_race", func(scope *gorm.Scope) {
		if raced {
			return
		}
		if _, ok := scope.Value.(*models.SentimentAnalysis); !ok {
			return
		}
		raced = true
		now := time.Now()
		require.NoError(t, scope.NewDB().Exec(
			"INSERT INTO sentiment_analyses (diary_id, sentiment, score, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			diary.ID, "sad", 0.2, now, now,
		).Error)
	})
	defer conn.Callback().Create().Remove("diary_race")

	sa, err := upsertSentiment(conn, diary.ID, tools.SentimentResult{Sentiment: "positive", Score: 0.9})
	require.NoError(t, err)
	require.True(t, raced, "o INSERT concorrente deveria ter ocorrido")

	assert.Equal(t, 1, countRows(t, conn, &models.SentimentAnalysis{}))
	assert.Equal(t, "positive", sa.Sentiment)
	assert.InDelta(t, 0.9, sa.Score, 1e-9)
}

func TestClassify_NotOwnedIsNotFound(t *testing.T) {
	conn := newTestDB(t)
	owner := newTestUser(t, conn, 1009)
	intruder := newTestUser(t, conn, 1010)

	diary := models.Diary{UserID: owner.ID, Title: "t", Content: "c"}
	require.NoError(t, conn.Create(&diary).Error)

	w := New(&fakeGenerator{}, &fakeClassifier{})
	_, _, err := w.Classify(context.Background(), conn, intruder, diary.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestList_AnnotatesEmoji(t *testing.T) {
	conn := newTestDB(t)
	user := newTestUser(t, conn, 1011)

	analyzed := models.Diary{UserID: user.ID, Title: "bom dia", Content: "c1"}
	require.NoError(t, conn.Create(&analyzed).Error)
	require.NoError(t, conn.Create(&models.SentimentAnalysis{
		DiaryID: analyzed.ID, Sentiment: "positive", Score: 0.8,
	}).Error)

	pending := models.Diary{UserID: user.ID, Title: "sem análise", Content: "c2"}
	require.NoError(t, conn.Create(&pending).Error)

	other := newTestUser(t, conn, 1012)
	require.NoError(t, conn.Create(&models.Diary{UserID: other.ID, Title: "alheio", Content: "x"}).Error)

	w := New(&fakeGenerator{}, &fakeClassifier{})
	summaries, err := w.List(conn, user)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byTitle := map[string]Summary{}
	for _, s := range summaries {
		byTitle[s.Title] = s
	}
	assert.Equal(t, "happy", byTitle["bom dia"].Emoji)
	assert.Equal(t, "neutral", byTitle["sem análise"].Emoji)
	assert.NotEmpty(t, byTitle["bom dia"].Date)
}
