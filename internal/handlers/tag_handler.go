package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/pagination"
	"ledgerly/internal/services"
)

// TagHandler handles tag-related requests.
type TagHandler struct {
	tagService services.TagServicer
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService services.TagServicer) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// CreateTagRequest represents the request payload for creating a tag.
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=50"`
	Color string `json:"color" binding:"omitempty,hex_color"`
}

// CreateTag handles the creation of a new tag.
func (h *TagHandler) CreateTag(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tag, err := h.tagService.CreateTag(c.Request.Context(), teamID, req.Name, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tag": tag})
}

// GetTeamTags handles listing the team's tags.
func (h *TagHandler) GetTeamTags(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.tagService.GetTeamTags(c.Request.Context(), teamID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTagByID handles the retrieval of a specific tag.
func (h *TagHandler) GetTagByID(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tagID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tag, err := h.tagService.GetTagByID(c.Request.Context(), teamID, tagID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag": tag})
}

// DeleteTag handles soft-deleting an unused tag.
func (h *TagHandler) DeleteTag(c *gin.Context) {
	teamID, err := getTeamID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tagID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.tagService.DeleteTag(c.Request.Context(), teamID, tagID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
