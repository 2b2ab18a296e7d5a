package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

type retrieveRequest struct {
	Query      string `json:"query"`
	DocumentID string `json:"documentId"`
	Limit      int    `json:"limit"`
}

type chatRequest struct {
	Message    string            `json:"message"`
	DocumentID string            `json:"documentId"`
	History    []domain.ChatTurn `json:"history"`
}

func (h *handler) retrieve(c *gin.Context) {
	var body retrieveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	chunks, err := h.svc.RAG.Retrieve(c.Request.Context(), ownerFrom(c), driving.RetrieveRequest{
		Query:      body.Query,
		DocumentID: body.DocumentID,
		Limit:      body.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chunks": toChunks(chunks)})
}

func (h *handler) chat(c *gin.Context) {
	var body chatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	for _, turn := range body.History {
		if !turn.Role.IsValid() {
			badRequest(c, "invalid history role: "+string(turn.Role))
			return
		}
	}

	answer, err := h.svc.RAG.Answer(c.Request.Context(), ownerFrom(c), driving.AnswerRequest{
		Query:      body.Message,
		DocumentID: body.DocumentID,
		History:    body.History,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answer":   answer.Text,
		"grounded": answer.Grounded(),
		"sources":  toChunks(answer.UsedChunks),
	})
}
