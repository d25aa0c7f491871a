package controller

import (
	"errors"
	"strconv"

	"havenmind_backend/internal/service"
	"havenmind_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SanctuaryController struct {
	SanctuaryService *service.SanctuaryService
	CompanionService *service.CompanionService
}

func NewSanctuaryController(sanctuaryService *service.SanctuaryService, companionService *service.CompanionService) *SanctuaryController {
	return &SanctuaryController{
		SanctuaryService: sanctuaryService,
		CompanionService: companionService,
	}
}

type JournalEntryRequest struct {
	Content   string `json:"content" binding:"required"`
	SessionID string `json:"session_id"`
}

// @Summary Submit a journal entry
// @Description Analyzes the entry, stores it and grows the sanctuary in the background
// @Tags Sanctuary
// @Accept json
// @Produce json
// @Param entry body JournalEntryRequest true "Journal entry"
// @Success 201 {object} util.Response
// @Router /api/sanctuary/journal-entry [post]
func (c *SanctuaryController) CreateJournalEntry(ctx *gin.Context) {
	var req JournalEntryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SanctuaryService.CreateJournalEntry(ctx.Request.Context(), req.SessionID, req.Content)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// @Summary List sanctuary elements
// @Description Returns every visual element of a session's sanctuary
// @Tags Sanctuary
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/sanctuary/elements/{sessionId} [get]
func (c *SanctuaryController) GetElements(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")

	elements, err := c.SanctuaryService.Elements(sessionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"session_id": sessionID,
		"elements":   elements,
		"count":      len(elements),
	})
}

// @Summary List journal entries
// @Description Returns a session's journal entries, newest first
// @Tags Sanctuary
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param limit query int false "Max entries" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} util.Response
// @Router /api/sanctuary/journal/{sessionId} [get]
func (c *SanctuaryController) GetJournalEntries(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")

	limit := 50
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

	entries, err := c.SanctuaryService.Entries(sessionID, limit, offset)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"session_id": sessionID,
		"entries":    entries,
		"count":      len(entries),
	})
}

// @Summary Sanctuary statistics
// @Description Aggregates element counts and emotional distribution for a session
// @Tags Sanctuary
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/sanctuary/stats/{sessionId} [get]
func (c *SanctuaryController) GetStats(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")

	stats, err := c.SanctuaryService.Stats(ctx.Request.Context(), sessionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// @Summary Delete a sanctuary element
// @Description Removes one element from the sanctuary
// @Tags Sanctuary
// @Produce json
// @Param elementId path int true "Element ID"
// @Success 200 {object} util.Response
// @Router /api/sanctuary/elements/{elementId} [delete]
func (c *SanctuaryController) DeleteElement(ctx *gin.Context) {
	elementID, err := strconv.Atoi(ctx.Param("elementId"))
	if err != nil {
		util.BadRequest(ctx, "Invalid element ID")
		return
	}

	err = c.SanctuaryService.DeleteElement(ctx.Request.Context(), uint(elementID))
	if errors.Is(err, util.ErrElementNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Element deleted"})
}

// @Summary Start a new session
// @Description Mints a new anonymous session id with a welcome message
// @Tags Sanctuary
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/sanctuary/session/new [get]
func (c *SanctuaryController) NewSession(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"session_id":      c.SanctuaryService.NewSessionID(),
		"welcome_message": c.CompanionService.WelcomeMessage(false),
	})
}
