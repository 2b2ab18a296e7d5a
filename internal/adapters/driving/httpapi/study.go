package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

type quizRequest struct {
	DocumentID   string `json:"documentId"`
	NumQuestions int    `json:"numQuestions"`
	Difficulty   string `json:"difficulty"`
	Title        string `json:"title"`
}

type submitRequest struct {
	Answers         map[string]int `json:"answers"`
	DurationSeconds int            `json:"durationSeconds"`
}

type flashcardRequest struct {
	DocumentID string `json:"documentId"`
	NumCards   int    `json:"numCards"`
	Title      string `json:"title"`
}

type saveFlashcardsRequest struct {
	Title      string             `json:"title"`
	DocumentID string             `json:"documentId"`
	Cards      []domain.Flashcard `json:"cards"`
}

type masteryRequest struct {
	Level *int `json:"level"`
}

type reviewRequest struct {
	Rating *int `json:"rating"`
}

func (h *handler) generateQuiz(c *gin.Context) {
	var body quizRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	quiz, err := h.svc.Study.GenerateQuiz(c.Request.Context(), ownerFrom(c), driving.QuizRequest{
		DocumentID:   body.DocumentID,
		NumQuestions: body.NumQuestions,
		Difficulty:   domain.Difficulty(body.Difficulty),
		Title:        body.Title,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toQuiz(quiz))
}

func (h *handler) listQuizzes(c *gin.Context) {
	quizzes, err := h.svc.Study.ListQuizzes(c.Request.Context(), ownerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]quizJSON, len(quizzes))
	for i := range quizzes {
		out[i] = toQuiz(&quizzes[i])
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": out})
}

func (h *handler) getQuiz(c *gin.Context) {
	quiz, err := h.svc.Study.GetQuiz(c.Request.Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuiz(quiz))
}

func (h *handler) submitQuiz(c *gin.Context) {
	var body submitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if body.DurationSeconds < 0 {
		badRequest(c, "durationSeconds must not be negative")
		return
	}

	attempt, err := h.svc.Study.SubmitQuiz(c.Request.Context(), ownerFrom(c), c.Param("id"),
		body.Answers, time.Duration(body.DurationSeconds)*time.Second)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAttempt(attempt))
}

func (h *handler) listQuizAttempts(c *gin.Context) {
	attempts, err := h.svc.Study.ListQuizAttempts(c.Request.Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]attemptJSON, len(attempts))
	for i := range attempts {
		out[i] = toAttempt(&attempts[i])
	}
	c.JSON(http.StatusOK, gin.H{"attempts": out})
}

func (h *handler) previewFlashcards(c *gin.Context) {
	var body flashcardRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	cards, err := h.svc.Study.PreviewFlashcards(c.Request.Context(), ownerFrom(c), driving.FlashcardRequest{
		DocumentID: body.DocumentID,
		NumCards:   body.NumCards,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

func (h *handler) generateFlashcards(c *gin.Context) {
	var body flashcardRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	set, err := h.svc.Study.GenerateFlashcards(c.Request.Context(), ownerFrom(c), driving.FlashcardRequest{
		DocumentID: body.DocumentID,
		NumCards:   body.NumCards,
		Title:      body.Title,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlashcardSet(set))
}

func (h *handler) saveFlashcardSet(c *gin.Context) {
	var body saveFlashcardsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	set, err := h.svc.Study.SaveFlashcardSet(c.Request.Context(), ownerFrom(c), driving.NewFlashcardSet{
		Title:      body.Title,
		DocumentID: body.DocumentID,
		Cards:      body.Cards,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlashcardSet(set))
}

func (h *handler) listFlashcardSets(c *gin.Context) {
	sets, err := h.svc.Study.ListFlashcardSets(c.Request.Context(), ownerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]flashcardSetJSON, len(sets))
	for i := range sets {
		out[i] = toFlashcardSet(&sets[i])
	}
	c.JSON(http.StatusOK, gin.H{"sets": out})
}

func (h *handler) getFlashcardSet(c *gin.Context) {
	set, err := h.svc.Study.GetFlashcardSet(c.Request.Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlashcardSet(set))
}

func (h *handler) updateMastery(c *gin.Context) {
	var body masteryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if body.Level == nil {
		badRequest(c, "level is required")
		return
	}

	if err := h.svc.Study.UpdateFlashcardMastery(c.Request.Context(), ownerFrom(c), c.Param("id"), *body.Level); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "masteryLevel": domain.ClampMastery(*body.Level)})
}

func (h *handler) reviewCard(c *gin.Context) {
	var body reviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if body.Rating == nil {
		badRequest(c, "rating is required")
		return
	}

	review, err := h.svc.Study.ReviewFlashcard(c.Request.Context(), ownerFrom(c), c.Param("id"), *body.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
