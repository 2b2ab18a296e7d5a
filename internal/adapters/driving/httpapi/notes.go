package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

type noteRequest struct {
	DocumentID string `json:"documentId"`
	Style      string `json:"style"`
	Title      string `json:"title"`
}

type updateNoteRequest struct {
	Content *string `json:"content"`
}

func (h *handler) generateNotes(c *gin.Context) {
	var body noteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	note, err := h.svc.Study.GenerateNotes(c.Request.Context(), ownerFrom(c), driving.NoteRequest{
		DocumentID: body.DocumentID,
		Style:      domain.NoteStyle(body.Style),
		Title:      body.Title,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toNote(note))
}

func (h *handler) listNotes(c *gin.Context) {
	notes, err := h.svc.Study.ListNotes(c.Request.Context(), ownerFrom(c), c.Query("documentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]noteJSON, len(notes))
	for i := range notes {
		out[i] = toNote(&notes[i])
	}
	c.JSON(http.StatusOK, gin.H{"notes": out})
}

// getNote returns JSON, or sanitised HTML with ?format=html.
func (h *handler) getNote(c *gin.Context) {
	if c.Query("format") == "html" {
		if h.svc.Notes == nil {
			c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{"error": "html rendering is not available"})
			return
		}
		html, err := h.svc.Notes.RenderNoteHTML(c.Request.Context(), ownerFrom(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	note, err := h.svc.Study.GetNote(c.Request.Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toNote(note))
}

func (h *handler) updateNote(c *gin.Context) {
	var body updateNoteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if body.Content == nil {
		badRequest(c, "content is required")
		return
	}

	owner := ownerFrom(c)
	if err := h.svc.Study.UpdateNote(c.Request.Context(), owner, c.Param("id"), *body.Content); err != nil {
		respondError(c, err)
		return
	}
	note, err := h.svc.Study.GetNote(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toNote(note))
}

func (h *handler) deleteNote(c *gin.Context) {
	if err := h.svc.Study.DeleteNote(c.Request.Context(), ownerFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
