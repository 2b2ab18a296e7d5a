package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driving"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question   string `json:"question" jsonschema:"the question to answer from the user's documents"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"restrict the answer to one document"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string        `json:"answer"`
	Grounded bool          `json:"grounded"`
	Sources  []ChunkOutput `json:"sources"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query      string `json:"query" jsonschema:"text to find similar passages for"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"restrict the search to one document"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of chunks to return (default 8)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Distance   float64 `json:"distance"`
	Text       string  `json:"text"`
}

// IngestTextInput is the input schema for the ingest_text tool.
type IngestTextInput struct {
	Text  string `json:"text" jsonschema:"the study material to add to the library"`
	Label string `json:"label,omitempty" jsonschema:"library label (default Pasted text)"`
}

// IngestOutput is the output schema for the ingest_text tool.
type IngestOutput struct {
	DocumentID string `json:"document_id"`
	Label      string `json:"label"`
	ChunkCount int    `json:"chunk_count"`
}

// ListDocumentsInput is the (empty) input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a library entry.
type DocumentOutput struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Kind       string `json:"kind"`
	ChunkCount int    `json:"chunk_count"`
	Quizzes    int    `json:"quizzes"`
	Flashcards int    `json:"flashcard_sets"`
	Notes      int    `json:"notes"`
}

// GenerateQuizInput is the input schema for the generate_quiz tool.
type GenerateQuizInput struct {
	DocumentID   string `json:"document_id" jsonschema:"the document to build the quiz from"`
	NumQuestions int    `json:"num_questions,omitempty" jsonschema:"number of questions (default 5)"`
	Difficulty   string `json:"difficulty,omitempty" jsonschema:"easy, medium or hard (default medium)"`
}

// QuizOutput is the output schema for the generate_quiz tool.
type QuizOutput struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Questions []QuestionOutput `json:"questions"`
}

// QuestionOutput is one multiple-choice question.
type QuestionOutput struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Explanation   string   `json:"explanation,omitempty"`
}

// GenerateNotesInput is the input schema for the generate_notes tool.
type GenerateNotesInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document to summarise"`
	Style      string `json:"style,omitempty" jsonschema:"outline, summary or detailed (default summary)"`
}

// NoteOutput is the output schema for the generate_notes tool.
type NoteOutput struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the user's ingested documents",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the document passages most similar to a query",
	}, s.handleRetrieve)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_text",
			Description: "Add pasted text to the user's library",
		}, s.handleIngestText)
	}

	if s.ports.Library != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List the documents in the user's library",
		}, s.handleListDocuments)
	}

	if s.ports.Study != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "generate_quiz",
			Description: "Generate and save a multiple-choice quiz for a document",
		}, s.handleGenerateQuiz)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "generate_notes",
			Description: "Generate and save Markdown study notes for a document",
		}, s.handleGenerateNotes)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.RAG.Answer(ctx, s.ports.Owner, driving.AnswerRequest{
		Query:      input.Question,
		DocumentID: input.DocumentID,
	})
	if err != nil {
		return nil, AskOutput{}, toolError("ask", err)
	}

	return nil, AskOutput{
		Answer:   answer.Text,
		Grounded: answer.Grounded(),
		Sources:  chunkOutputs(answer.UsedChunks),
	}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	chunks, err := s.ports.RAG.Retrieve(ctx, s.ports.Owner, driving.RetrieveRequest{
		Query:      input.Query,
		DocumentID: input.DocumentID,
		Limit:      input.Limit,
	})
	if err != nil {
		return nil, RetrieveOutput{}, toolError("retrieve", err)
	}

	return nil, RetrieveOutput{Chunks: chunkOutputs(chunks), Count: len(chunks)}, nil
}

func (s *Server) handleIngestText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestTextInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	res, err := s.ports.Ingest.Ingest(ctx, s.ports.Owner, driving.IngestRequest{
		Kind:  domain.SourceKindText,
		Label: input.Label,
		Text:  input.Text,
	})
	if err != nil {
		return nil, IngestOutput{}, toolError("ingest_text", err)
	}

	return nil, IngestOutput{
		DocumentID: res.Document.ID,
		Label:      res.Document.Label,
		ChunkCount: res.ChunkCount,
	}, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Library.ListDocuments(ctx, s.ports.Owner)
	if err != nil {
		return nil, ListDocumentsOutput{}, toolError("list_documents", err)
	}

	out := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		out.Documents[i] = DocumentOutput{
			ID:         docs[i].ID,
			Label:      docs[i].Label,
			Kind:       docs[i].Kind.String(),
			ChunkCount: docs[i].ChunkCount,
			Quizzes:    docs[i].QuizCount,
			Flashcards: docs[i].FlashcardCount,
			Notes:      docs[i].NoteCount,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGenerateQuiz(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateQuizInput,
) (*mcp.CallToolResult, QuizOutput, error) {
	quiz, err := s.ports.Study.GenerateQuiz(ctx, s.ports.Owner, driving.QuizRequest{
		DocumentID:   input.DocumentID,
		NumQuestions: input.NumQuestions,
		Difficulty:   domain.Difficulty(input.Difficulty),
	})
	if err != nil {
		return nil, QuizOutput{}, toolError("generate_quiz", err)
	}

	out := QuizOutput{
		ID:        quiz.ID,
		Title:     quiz.Title,
		Questions: make([]QuestionOutput, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		out.Questions[i] = QuestionOutput{
			ID:            q.ID,
			Question:      q.Text,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGenerateNotes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateNotesInput,
) (*mcp.CallToolResult, NoteOutput, error) {
	note, err := s.ports.Study.GenerateNotes(ctx, s.ports.Owner, driving.NoteRequest{
		DocumentID: input.DocumentID,
		Style:      domain.NoteStyle(input.Style),
	})
	if err != nil {
		return nil, NoteOutput{}, toolError("generate_notes", err)
	}

	return nil, NoteOutput{ID: note.ID, Title: note.Title, Content: note.Content}, nil
}

func chunkOutputs(chunks []domain.RetrievedChunk) []ChunkOutput {
	out := make([]ChunkOutput, len(chunks))
	for i := range chunks {
		out[i] = ChunkOutput{
			DocumentID: chunks[i].DocumentID,
			ChunkIndex: chunks[i].Index,
			Distance:   chunks[i].Distance,
			Text:       chunks[i].Text,
		}
	}
	return out
}
