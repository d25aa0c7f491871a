package controller

import (
	"errors"
	"strconv"

	"havenmind_backend/internal/service"
	"havenmind_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StoryController struct {
	StoryService *service.StoryService
	ImageService *service.ImageService
}

func NewStoryController(storyService *service.StoryService, imageService *service.ImageService) *StoryController {
	return &StoryController{
		StoryService: storyService,
		ImageService: imageService,
	}
}

type GenerateStoryRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Style     string `json:"style"`
	Theme     string `json:"theme"`
}

type GenerateStoryImageRequest struct {
	StoryContent string `json:"story_content" binding:"required"`
	StoryTitle   string `json:"story_title"`
	Style        string `json:"style"`
	Theme        string `json:"theme"`
}

// @Summary Generate a story
// @Description Generates a personalized therapeutic story from the session's emotional journey
// @Tags Stories
// @Accept json
// @Produce json
// @Param request body GenerateStoryRequest true "Generation request"
// @Success 201 {object} util.Response
// @Router /api/story/generate [post]
func (c *StoryController) Generate(ctx *gin.Context) {
	var req GenerateStoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	story, err := c.StoryService.Generate(ctx.Request.Context(), req.SessionID, req.Style, req.Theme)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, story)
}

// @Summary Generate a story illustration
// @Description Generates an illustration for existing story content
// @Tags Stories
// @Accept json
// @Produce json
// @Param request body GenerateStoryImageRequest true "Illustration request"
// @Success 200 {object} util.Response
// @Router /api/story/generate-image [post]
func (c *StoryController) GenerateImage(ctx *gin.Context) {
	var req GenerateStoryImageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Style == "" {
		req.Style = "fantasy-art"
	}
	if req.Theme == "" {
		req.Theme = "adventure"
	}

	imageURL := c.ImageService.StoryImage(ctx.Request.Context(), req.StoryContent, req.StoryTitle, req.Style, req.Theme)

	util.Success(ctx, gin.H{
		"image_url": imageURL,
		"status":    "generated",
		"style":     req.Style,
		"theme":     req.Theme,
	})
}

// @Summary Story history
// @Description Returns a session's generated stories, newest first
// @Tags Stories
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param limit query int false "Max stories" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} util.Response
// @Router /api/story/history/{sessionId} [get]
func (c *StoryController) History(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")

	limit := 20
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	offset := 0
	if offsetStr := ctx.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	stories, err := c.StoryService.History(sessionID, limit, offset)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"session_id": sessionID,
		"stories":    stories,
		"count":      len(stories),
	})
}

// @Summary Story recommendation
// @Description Recommends a style and theme based on recent emotional patterns
// @Tags Stories
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/story/recommend/{sessionId} [get]
func (c *StoryController) Recommend(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")

	recommendation, err := c.StoryService.Recommend(sessionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, recommendation)
}

// @Summary List story styles
// @Description Lists every available narrative style
// @Tags Stories
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/story/styles [get]
func (c *StoryController) Styles(ctx *gin.Context) {
	util.Success(ctx, gin.H{"styles": service.StoryStyles})
}

// @Summary List story themes
// @Description Lists every available story theme
// @Tags Stories
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/story/themes [get]
func (c *StoryController) Themes(ctx *gin.Context) {
	util.Success(ctx, gin.H{"themes": service.StoryThemes})
}

// @Summary Delete a story
// @Description Removes one story from the session's history
// @Tags Stories
// @Produce json
// @Param storyId path int true "Story ID"
// @Success 200 {object} util.Response
// @Router /api/story/{storyId} [delete]
func (c *StoryController) Delete(ctx *gin.Context) {
	storyID, err := strconv.Atoi(ctx.Param("storyId"))
	if err != nil {
		util.BadRequest(ctx, "Invalid story ID")
		return
	}

	err = c.StoryService.Delete(uint(storyID))
	if errors.Is(err, util.ErrStoryNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Story deleted"})
}
