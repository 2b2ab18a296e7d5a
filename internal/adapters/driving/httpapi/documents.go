package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

type ingestRequest struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// ingestDocument accepts JSON for text and url sources, or a multipart
// form with a "file" field for uploads.
func (h *handler) ingestDocument(c *gin.Context) {
	var req driving.IngestRequest

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)
		fh, err := c.FormFile("file")
		if err != nil {
			badRequest(c, "missing file: "+err.Error())
			return
		}
		f, err := fh.Open()
		if err != nil {
			badRequest(c, "unreadable file: "+err.Error())
			return
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		if err != nil {
			badRequest(c, "unreadable file: "+err.Error())
			return
		}
		req = driving.IngestRequest{
			Kind:     domain.SourceKindUpload,
			Label:    c.PostForm("label"),
			FileName: fh.Filename,
			MIMEType: fh.Header.Get("Content-Type"),
			Content:  content,
		}
	} else {
		var body ingestRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid request body: "+err.Error())
			return
		}
		kind := domain.SourceKind(body.Kind)
		if kind != domain.SourceKindText && kind != domain.SourceKindURL {
			badRequest(c, "kind must be text or url; upload files as multipart")
			return
		}
		req = driving.IngestRequest{Kind: kind, Label: body.Label, Text: body.Text, URL: body.URL}
	}

	res, err := h.svc.Ingest.Ingest(c.Request.Context(), ownerFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"document":   toDocument(res.Document),
		"chunkCount": res.ChunkCount,
	})
}

func (h *handler) listDocuments(c *gin.Context) {
	docs, err := h.svc.Library.ListDocuments(c.Request.Context(), ownerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]documentJSON, len(docs))
	for i := range docs {
		out[i] = toDocumentSummary(docs[i])
	}
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

func (h *handler) getDocument(c *gin.Context) {
	doc, err := h.svc.Library.GetDocument(c.Request.Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocument(*doc))
}

func (h *handler) getDocumentText(c *gin.Context) {
	chunks, err := h.svc.Library.GetDocumentText(c.Request.Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"documentId": c.Param("id"),
		"chunkCount": len(chunks),
		"text":       domain.JoinChunks(chunks),
	})
}

func (h *handler) deleteDocument(c *gin.Context) {
	if err := h.svc.Library.DeleteDocument(c.Request.Context(), ownerFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
