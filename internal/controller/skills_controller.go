package controller

import (
	"errors"
	"strconv"

	"havenmind_backend/internal/model"
	"havenmind_backend/internal/service"
	"havenmind_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SkillsController struct {
	SkillsService *service.SkillsService
}

func NewSkillsController(skillsService *service.SkillsService) *SkillsController {
	return &SkillsController{SkillsService: skillsService}
}

type PracticeSkillRequest struct {
	SessionID        string        `json:"session_id" binding:"required"`
	SkillName        string        `json:"skill_name" binding:"required"`
	DurationMinutes  int           `json:"duration_minutes" binding:"required,min=1"`
	CompletionRating *int          `json:"completion_rating" binding:"omitempty,min=1,max=5"`
	Notes            string        `json:"notes"`
	EmotionsBefore   model.JSONMap `json:"emotions_before"`
	EmotionsAfter    model.JSONMap `json:"emotions_after"`
}

// @Summary Get session skills
// @Description Returns every skill with unlock state and mastery progress
// @Tags Skills
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/skills/{sessionId} [get]
func (c *SkillsController) GetSkills(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")

	skills, err := c.SkillsService.GetUserSkills(sessionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"session_id": sessionID,
		"skills":     skills,
	})
}

// @Summary Record a practice session
// @Description Stores a practice session and awards experience toward mastery
// @Tags Skills
// @Accept json
// @Produce json
// @Param practice body PracticeSkillRequest true "Practice session"
// @Success 200 {object} util.Response
// @Router /api/skills/practice [post]
func (c *SkillsController) Practice(ctx *gin.Context) {
	var req PracticeSkillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SkillsService.PracticeSkill(
		req.SessionID,
		req.SkillName,
		req.DurationMinutes,
		req.CompletionRating,
		req.Notes,
		req.EmotionsBefore,
		req.EmotionsAfter,
	)
	if errors.Is(err, util.ErrUnknownSkill) {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary Skill guidance
// @Description Returns a practice plan for a skill, adjusted to current emotion, stress and time
// @Tags Skills
// @Produce json
// @Param skillName path string true "Skill name"
// @Param mastery_level query int false "Mastery level" default(0)
// @Param current_emotion query string false "Current emotion"
// @Param stress_level query string false "Stress level"
// @Param time_available query string false "Time available (short/long)"
// @Success 200 {object} util.Response
// @Router /api/skills/guidance/{skillName} [get]
func (c *SkillsController) Guidance(ctx *gin.Context) {
	skillName := ctx.Param("skillName")

	masteryLevel := 0
	if levelStr := ctx.Query("mastery_level"); levelStr != "" {
		if l, err := strconv.Atoi(levelStr); err == nil && l >= 0 {
			masteryLevel = l
		}
	}

	guidance := c.SkillsService.Guidance(skillName, masteryLevel, service.GuidanceContext{
		CurrentEmotion: ctx.Query("current_emotion"),
		StressLevel:    ctx.Query("stress_level"),
		TimeAvailable:  ctx.Query("time_available"),
	})

	util.Success(ctx, gin.H{
		"skill_name":    skillName,
		"mastery_level": masteryLevel,
		"guidance":      guidance,
	})
}

// @Summary Practice statistics
// @Description Aggregates practice time, streaks and mastery distribution for a session
// @Tags Skills
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/skills/statistics/{sessionId} [get]
func (c *SkillsController) Statistics(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")

	stats, err := c.SkillsService.Statistics(sessionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// @Summary Skill recommendations
// @Description Suggests up to three skills to practice next
// @Tags Skills
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/skills/recommendations/{sessionId} [get]
func (c *SkillsController) Recommendations(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")

	recommendations, err := c.SkillsService.Recommendations(sessionID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"session_id":      sessionID,
		"recommendations": recommendations,
	})
}

// @Summary Skill catalog
// @Description Lists every available skill with category, difficulty and benefits
// @Tags Skills
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/skills/available/list [get]
func (c *SkillsController) Available(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"skills": c.SkillsService.Catalog(),
	})
}

// @Summary Unlock a skill
// @Description Unlocks a skill directly, bypassing the pattern checks
// @Tags Skills
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param skill_name query string true "Skill name"
// @Success 200 {object} util.Response
// @Router /api/skills/unlock/{sessionId} [post]
func (c *SkillsController) Unlock(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")
	skillName := ctx.Query("skill_name")
	if skillName == "" {
		util.BadRequest(ctx, "skill_name is required")
		return
	}

	err := c.SkillsService.ForceUnlock(sessionID, skillName)
	if errors.Is(err, util.ErrUnknownSkill) {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"session_id": sessionID,
		"skill_name": skillName,
		"unlocked":   true,
	})
}
