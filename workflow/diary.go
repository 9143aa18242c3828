package workflow

import (
	"context"
	"fmt"
	"log"
	"reflect"

	"haru/models"
	"haru/tools"

	"github.com/jinzhu/gorm"
)

// Generator distills a conversation transcript into a diary draft.
type Generator interface {
	GenerateDiary(ctx context.Context, conversation any) (tools.DiaryDraft, error)
}

// Classifier returns the resolved sentiment verdict for a text.
type Classifier interface {
	Classify(ctx context.Context, text string) (tools.SentimentResult, error)
}

// Workflow runs the diary pipeline: generate (creation path only), persist
// the diary, classify its final content, map the emotion tag and upsert the
// verdict keyed by diary. Clients are injected so tests can swap doubles.
type Workflow struct {
	Generator  Generator
	Classifier Classifier
}

func New(generator Generator, classifier Classifier) *Workflow {
	return &Workflow{Generator: generator, Classifier: classifier}
}

// Result is the combined outcome of a create/save run. SentimentErr set with
// a zero Sentiment means the diary was committed but its classification
// failed (partial success); the diary write is never rolled back for that.
type Result struct {
	Diary        models.Diary
	Sentiment    *models.SentimentAnalysis
	Emoji        string
	SentimentErr error
}

// Summary is one item of the read-only listing, annotated with the emotion
// tag derived from the stored verdict (neutral when none exists yet).
type Summary struct {
	DiaryID int64  `json:"diaryId"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Content string `json:"content"`
	Emoji   string `json:"emoji"`
}

// CreateFromConversation generates a diary from the transcript and persists
// it owned by user, then runs the sentiment tail. Generation is
// all-or-nothing: a generator or parse failure persists nothing.
func (w *Workflow) CreateFromConversation(ctx context.Context, db *gorm.DB, user models.User, conversation any) (Result, error) {
	if user.ID == 0 {
		return Result{}, ErrAuthRequired
	}
	if isEmptyConversation(conversation) {
		return Result{}, fmt.Errorf("%w: conversation data is required", ErrValidation)
	}

	draft, err := w.Generator.GenerateDiary(ctx, conversation)
	if err != nil {
		return Result{}, err
	}

	diary := models.Diary{
		UserID:  user.ID,
		Title:   draft.Title,
		Content: draft.Content,
	}

	tx := db.Begin()
	if err := tx.Create(&diary).Error; err != nil {
		tx.Rollback()
		return Result{}, err
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return Result{}, err
	}

	return w.finishWithSentiment(ctx, db, diary), nil
}

// Save rewrites title/content of an owned diary (no generation step) and
// runs the sentiment tail. CreatedAt stays untouched; gorm refreshes
// UpdatedAt on the save.
func (w *Workflow) Save(ctx context.Context, db *gorm.DB, user models.User, diaryID int64, title, content string) (Result, error) {
	diary, err := w.FindOwned(db, user, diaryID)
	if err != nil {
		return Result{}, err
	}

	diary.Title = title
	diary.Content = content
	if err := db.Save(&diary).Error; err != nil {
		return Result{}, err
	}

	return w.finishWithSentiment(ctx, db, diary), nil
}

// Classify re-analyzes the current content of an owned diary on demand and
// upserts the verdict. Unlike the create/save tail, a classifier failure here
// is the whole operation failing.
func (w *Workflow) Classify(ctx context.Context, db *gorm.DB, user models.User, diaryID int64) (models.SentimentAnalysis, string, error) {
	diary, err := w.FindOwned(db, user, diaryID)
	if err != nil {
		return models.SentimentAnalysis{}, "", err
	}

	verdict, err := w.Classifier.Classify(ctx, diary.Content)
	if err != nil {
		return models.SentimentAnalysis{}, "", err
	}

	sa, err := upsertSentiment(db, diary.ID, verdict)
	if err != nil {
		return models.SentimentAnalysis{}, "", err
	}
	return sa, tools.EmotionForSentiment(sa.Sentiment), nil
}

// List returns the user's diaries annotated with the stored verdict's
// emotion tag, newest first.
func (w *Workflow) List(db *gorm.DB, user models.User) ([]Summary, error) {
	if user.ID == 0 {
		return nil, ErrAuthRequired
	}

	var diaries []models.Diary
	if err := db.Where("user_id = ?", user.ID).Order("created_at desc, id desc").Find(&diaries).Error; err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(diaries))
	for _, d := range diaries {
		emoji := tools.EMOTION_NEUTRAL
		var sa models.SentimentAnalysis
		if err := db.Where("diary_id = ?", d.ID).First(&sa).Error; err == nil {
			emoji = tools.EmotionForSentiment(sa.Sentiment)
		}

		date := ""
		if d.CreatedAt != nil {
			date = d.CreatedAt.Format("2006-01-02")
		}

		out = append(out, Summary{
			DiaryID: d.ID,
			Title:   d.Title,
			Date:    date,
			Content: d.Content,
			Emoji:   emoji,
		})
	}
	return out, nil
}

// isEmptyConversation treats a present-but-empty payload ("", [], {}) the
// same as a missing one: there is nothing for the generator to work with.
func isEmptyConversation(conversation any) bool {
	if conversation == nil {
		return true
	}
	if s, ok := conversation.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(conversation)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

// FindOwned loads a diary only when it belongs to user. Missing and
// not-owned both come back as ErrNotFound.
func (w *Workflow) FindOwned(db *gorm.DB, user models.User, diaryID int64) (models.Diary, error) {
	if user.ID == 0 {
		return models.Diary{}, ErrAuthRequired
	}

	var diary models.Diary
	if err := db.Where("id = ? AND user_id = ?", diaryID, user.ID).First(&diary).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return models.Diary{}, ErrNotFound
		}
		return models.Diary{}, err
	}
	return diary, nil
}

// finishWithSentiment runs the classification tail after the diary row is
// already committed. Diary and sentiment persistence are independent: a
// failure here surfaces in Result.SentimentErr, the diary stays saved.
func (w *Workflow) finishWithSentiment(ctx context.Context, db *gorm.DB, diary models.Diary) Result {
	res := Result{Diary: diary, Emoji: tools.EMOTION_NEUTRAL}

	verdict, err := w.Classifier.Classify(ctx, diary.Content)
	if err != nil {
		log.Printf("diary workflow: sentiment classify error (diary %d): %v", diary.ID, err)
		res.SentimentErr = err
		return res
	}

	sa, err := upsertSentiment(db, diary.ID, verdict)
	if err != nil {
		log.Printf("diary workflow: sentiment upsert error (diary %d): %v", diary.ID, err)
		res.SentimentErr = err
		return res
	}

	res.Sentiment = &sa
	res.Emoji = tools.EmotionForSentiment(sa.Sentiment)
	return res
}

// upsertSentiment enforces the one-verdict-per-diary invariant: update the
// existing row first (RowsAffected tells us whether it was there), insert
// when absent. When a concurrent insert wins the unique index on diary_id,
// the loser falls back to an update, so the last writer wins.
func upsertSentiment(db *gorm.DB, diaryID int64, verdict tools.SentimentResult) (models.SentimentAnalysis, error) {
	fields := map[string]any{
		"sentiment": verdict.Sentiment,
		"score":     verdict.Score,
	}

	res := db.Model(&models.SentimentAnalysis{}).Where("diary_id = ?", diaryID).Updates(fields)
	if res.Error != nil {
		return models.SentimentAnalysis{}, res.Error
	}

	if res.RowsAffected == 0 {
		sa := models.SentimentAnalysis{
			DiaryID:   diaryID,
			Sentiment: verdict.Sentiment,
			Score:     verdict.Score,
		}
		if err := db.Create(&sa).Error; err != nil {
			retry := db.Model(&models.SentimentAnalysis{}).Where("diary_id = ?", diaryID).Updates(fields)
			if retry.Error != nil || retry.RowsAffected == 0 {
				return models.SentimentAnalysis{}, err
			}
		}
	}

	var sa models.SentimentAnalysis
	if err := db.Where("diary_id = ?", diaryID).First(&sa).Error; err != nil {
		return models.SentimentAnalysis{}, err
	}
	return sa, nil
}
