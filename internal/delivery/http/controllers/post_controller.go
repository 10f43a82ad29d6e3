package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"volunteerhub/internal/delivery/http/helpers"
	"volunteerhub/internal/delivery/http/middleware"
	"volunteerhub/internal/domain"
)

// uuidRegexPost matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegexPost = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type PostController struct {
	Logger *slog.Logger
	Posts  domain.PostService
	Likes  domain.LikeService
}

func NewPostController(logger *slog.Logger, posts domain.PostService, likes domain.LikeService) *PostController {
	return &PostController{
		Logger: logger,
		Posts:  posts,
		Likes:  likes,
	}
}

func (c *PostController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "post not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "not allowed")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// PostRequest is the request body for creating and updating posts.
type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate implements helpers.Validator.
func (p PostRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		errs = append(errs, "content is required")
	}
	return errs
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PostRequest true "Post data"
// @Success 201 {object} helpers.APIResponse "data contains the created post"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /posts [post]
func (c *PostController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req PostRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	post := &domain.Post{Title: strings.TrimSpace(req.Title), Content: req.Content}
	if err := c.Posts.CreatePost(r.Context(), post, userID); err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, post)
}

// ListPostsResponse is the response body for GET /posts.
type ListPostsResponse struct {
	Posts      []*domain.Post         `json:"posts"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// List godoc
// @Summary List posts
// @Tags posts
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains ListPostsResponse"
// @Router /posts [get]
func (c *PostController) List(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	posts, total, err := c.Posts.ListPosts(r.Context(), params)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListPostsResponse{
		Posts:      posts,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Get godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param postID path string true "Post ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the post"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID} [get]
func (c *PostController) Get(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postID")
	if !uuidRegexPost.MatchString(postID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid postID")
		return
	}
	post, err := c.Posts.GetPost(r.Context(), postID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, post)
}

// Update godoc
// @Summary Update a post
// @Description Only the author or an admin may update.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postID path string true "Post ID (UUID)"
// @Param body body PostRequest true "Post data"
// @Success 200 {object} helpers.APIResponse "data contains the updated post"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID} [put]
func (c *PostController) Update(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postID")
	if !uuidRegexPost.MatchString(postID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid postID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req PostRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	post := &domain.Post{ID: postID, Title: strings.TrimSpace(req.Title), Content: req.Content}
	updated, err := c.Posts.UpdatePost(r.Context(), post, userID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, updated)
}

// Delete godoc
// @Summary Delete a post
// @Description Only the author or an admin may delete.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postID path string true "Post ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID} [delete]
func (c *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postID")
	if !uuidRegexPost.MatchString(postID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid postID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Posts.DeletePost(r.Context(), postID, userID); err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postID path string true "Post ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains ToggleLikeResponse"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /posts/{postID}/like [post]
func (c *PostController) ToggleLike(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postID")
	if !uuidRegexPost.MatchString(postID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid postID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	liked, likes, err := c.Likes.TogglePostLike(r.Context(), postID, userID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ToggleLikeResponse{Liked: liked, Likes: likes})
}
