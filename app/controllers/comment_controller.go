package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"commentd/app/middleware"
	"commentd/app/models"
	"commentd/app/repositories"
	"commentd/app/services"

	"github.com/gorilla/mux"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
	logger         *slog.Logger
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService, logger *slog.Logger) *CommentController {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentController{
		commentService: commentService,
		logger:         logger,
	}
}

// Index lists comments, filtered by the optional task_id query parameter
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	// An unparsable task_id is ignored and the full list returned.
	var filter models.CommentFilter
	if taskID, err := strconv.Atoi(r.URL.Query().Get("task_id")); err == nil {
		filter.TaskID = &taskID
	}

	comments, err := cc.commentService.ListComments(r.Context(), filter)
	if err != nil {
		cc.sendServiceError(w, r, err)
		return
	}
	cc.sendJSON(w, http.StatusOK, comments)
}

// Show returns a single comment
func (cc *CommentController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := cc.commentID(w, r)
	if !ok {
		return
	}

	comment, err := cc.commentService.GetComment(r.Context(), id)
	if err != nil {
		cc.sendServiceError(w, r, err)
		return
	}
	cc.sendJSON(w, http.StatusOK, comment)
}

// Create handles creating a new comment
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCommentRequest
	if err := decodeBody(w, r, &req); err != nil {
		cc.sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	comment, err := cc.commentService.CreateComment(r.Context(), &req)
	if err != nil {
		cc.sendServiceError(w, r, err)
		return
	}

	cc.logger.Debug("comment created",
		"id", comment.ID,
		"task_id", comment.TaskID,
		"request_id", middleware.RequestIDFromContext(r.Context()),
	)
	cc.sendJSON(w, http.StatusCreated, comment)
}

// Edit handles PUT and PATCH. Only author and content are updatable.
// A missing comment is reported before the body is looked at, and a body
// that is not a single JSON object is treated as an empty patch.
func (cc *CommentController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := cc.commentID(w, r)
	if !ok {
		return
	}

	if _, err := cc.commentService.GetComment(r.Context(), id); err != nil {
		cc.sendServiceError(w, r, err)
		return
	}

	var req models.UpdateCommentRequest
	if err := decodeBody(w, r, &req); err != nil {
		cc.logger.Debug("ignoring unreadable update body",
			"id", id,
			"error", err,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
		req = models.UpdateCommentRequest{}
	}

	comment, err := cc.commentService.UpdateComment(r.Context(), id, &req)
	if err != nil {
		cc.sendServiceError(w, r, err)
		return
	}
	cc.sendJSON(w, http.StatusOK, comment)
}

// Delete handles deleting a comment
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := cc.commentID(w, r)
	if !ok {
		return
	}

	if err := cc.commentService.DeleteComment(r.Context(), id); err != nil {
		cc.sendServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (cc *CommentController) commentID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		cc.sendError(w, "Comment not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// errTrailingData rejects bodies holding more than one JSON value
var errTrailingData = errors.New("unexpected data after JSON value")

// decodeBody reads a single JSON value into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// Helper methods for consistent response handling

func (cc *CommentController) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		cc.logger.Error("failed to encode response", "error", err)
	}
}

func (cc *CommentController) sendError(w http.ResponseWriter, message string, status int) {
	cc.sendJSON(w, status, map[string]string{"error": message})
}

func (cc *CommentController) sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		cc.sendError(w, "Comment not found", http.StatusNotFound)
	case services.IsValidationError(err):
		cc.sendError(w, err.Error(), http.StatusBadRequest)
	default:
		cc.logger.Error("comment request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
		cc.sendError(w, "internal server error", http.StatusInternalServerError)
	}
}
